package standards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	all := All()
	ids := make([]string, 0, len(all))
	for _, s := range all {
		ids = append(ids, s.ID)
		assert.NotEmpty(t, s.KeyRequirements, s.ID)
		assert.NotEmpty(t, s.Category, s.ID)
	}
	assert.Equal(t, []string{"gdpr", "soc2", "hipaa", "ccpa", "gsf", "iso14001", "paris-agreement", "leed", "epa-caa"}, ids)
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].ID = "changed"
	assert.Equal(t, "gdpr", All()[0].ID)
}

func TestLookup(t *testing.T) {
	s, ok := Lookup(" GDPR ")
	require.True(t, ok)
	assert.Equal(t, "General Data Protection Regulation", s.Name)
	assert.Contains(t, s.Text(), "72 hours")
	assert.Contains(t, s.Text(), "- Privacy by design\n")

	_, ok = Lookup("pci-dss")
	assert.False(t, ok)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	_, err := parse([]byte("- id: a\n  name: A\n"))
	assert.ErrorContains(t, err, "incomplete")

	_, err = parse([]byte("- {id: a, name: A, requirements: x}\n- {id: a, name: B, requirements: y}\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = parse([]byte("not: [valid"))
	assert.Error(t, err)
}
