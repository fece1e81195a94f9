// Package standards holds the catalog of preset regulatory standards an
// audit can be run against without uploading a standard document.
package standards

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed standards.yaml
var catalogYAML []byte

// Standard is a preset regulatory framework
type Standard struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	ShortName       string   `yaml:"short_name" json:"short_name"`
	Category        string   `yaml:"category" json:"category"`
	Description     string   `yaml:"description" json:"description"`
	KeyRequirements []string `yaml:"key_requirements" json:"key_requirements"`
	Requirements    string   `yaml:"requirements" json:"-"`
}

// Text returns the standard as the document text fed to the audit prompt
func (s Standard) Text() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(s.Requirements))
	if len(s.KeyRequirements) > 0 {
		b.WriteString("\n\nKEY REQUIREMENTS:\n")
		for _, req := range s.KeyRequirements {
			b.WriteString("- ")
			b.WriteString(req)
			b.WriteString("\n")
		}
	}
	return b.String()
}

var (
	catalog []Standard
	byID    map[string]Standard
)

func init() {
	parsed, err := parse(catalogYAML)
	if err != nil {
		panic(err)
	}
	catalog = parsed
	byID = make(map[string]Standard, len(parsed))
	for _, s := range parsed {
		byID[s.ID] = s
	}
}

func parse(data []byte) ([]Standard, error) {
	var out []Standard
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse standards catalog: %w", err)
	}
	seen := map[string]bool{}
	for i, s := range out {
		if s.ID == "" || s.Name == "" || strings.TrimSpace(s.Requirements) == "" {
			return nil, fmt.Errorf("standards catalog entry %d is incomplete", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate standard id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return out, nil
}

// All returns the catalog in display order
func All() []Standard {
	out := make([]Standard, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a preset by ID, ignoring case
func Lookup(id string) (Standard, bool) {
	s, ok := byID[strings.ToLower(strings.TrimSpace(id))]
	return s, ok
}
