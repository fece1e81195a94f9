package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RiskLevel is the severity the model assigns to a gap
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// Known reports whether r is one of the documented levels.
// Unknown levels are still carried through unchanged.
func (r RiskLevel) Known() bool {
	switch r {
	case RiskCritical, RiskHigh, RiskMedium, RiskLow:
		return true
	}
	return false
}

// AnalysisResult is the decoded gap analysis of one audit
type AnalysisResult struct {
	HealthScore       int             `json:"health_score"`
	TotalLiabilityUSD float64         `json:"total_liability_usd"`
	Gaps              []ComplianceGap `json:"gaps"`
}

// ComplianceGap is a single deficiency found by the model
type ComplianceGap struct {
	RiskLevel           RiskLevel `json:"risk_level"`
	Category            string    `json:"category"`
	OriginalClause      string    `json:"original_clause"`
	RegulationReference string    `json:"regulation_reference"`
	Explanation         string    `json:"explanation"`
	LiabilityUSD        float64   `json:"liability_usd"`
	CompliantRewrite    string    `json:"compliant_rewrite,omitempty"`
}

// wireResult mirrors AnalysisResult with lenient field types so that any
// syntactically valid object decodes.
type wireResult struct {
	HealthScore       looseNumber     `json:"health_score"`
	TotalLiabilityUSD looseNumber     `json:"total_liability_usd"`
	Gaps              json.RawMessage `json:"gaps"`
}

type wireGap struct {
	RiskLevel           looseString `json:"risk_level"`
	Category            looseString `json:"category"`
	OriginalClause      looseString `json:"original_clause"`
	RegulationReference looseString `json:"regulation_reference"`
	Explanation         looseString `json:"explanation"`
	LiabilityUSD        looseNumber `json:"liability_usd"`
	CompliantRewrite    looseString `json:"compliant_rewrite"`
}

// looseNumber accepts numbers, numeric strings ("$1,200") and null. Anything
// else decodes to 0.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	*n = 0
	text := strings.TrimSpace(string(data))
	if text == "" || text == "null" {
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		text = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	*n = looseNumber(f)
	return nil
}

// looseString accepts strings, null and scalars. Objects and arrays keep
// their raw JSON text.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	*s = ""
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		var v string
		if err := json.Unmarshal(trimmed, &v); err == nil {
			*s = looseString(v)
		}
		return nil
	}
	*s = looseString(trimmed)
	return nil
}

// decode turns a syntactically valid JSON object into an AnalysisResult.
// It reports false when the text is not valid JSON or not an object.
func decode(candidate string) (AnalysisResult, bool) {
	data := []byte(candidate)
	if !json.Valid(data) {
		return AnalysisResult{}, false
	}

	var wire wireResult
	if err := json.Unmarshal(data, &wire); err != nil {
		return AnalysisResult{}, false
	}

	result := AnalysisResult{
		HealthScore:       clampScore(float64(wire.HealthScore)),
		TotalLiabilityUSD: nonNegative(float64(wire.TotalLiabilityUSD)),
		Gaps:              make([]ComplianceGap, 0),
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(wire.Gaps, &elements); err != nil {
		// gaps absent, null or not an array
		return result, true
	}

	for _, element := range elements {
		trimmed := bytes.TrimSpace(element)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var g wireGap
		if err := json.Unmarshal(trimmed, &g); err != nil {
			continue
		}
		result.Gaps = append(result.Gaps, ComplianceGap{
			RiskLevel:           RiskLevel(g.RiskLevel),
			Category:            string(g.Category),
			OriginalClause:      string(g.OriginalClause),
			RegulationReference: string(g.RegulationReference),
			Explanation:         string(g.Explanation),
			LiabilityUSD:        nonNegative(float64(g.LiabilityUSD)),
			CompliantRewrite:    string(g.CompliantRewrite),
		})
	}

	return result, true
}

func clampScore(v float64) int {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
