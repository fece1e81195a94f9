package analysis_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"auditease-backend/analysis"
)

func TestClip(t *testing.T) {
	assert.Equal(t, "short", analysis.Clip("short", 10))
	assert.Equal(t, "abc...(truncated)", analysis.Clip("abcdef", 3))
	assert.Equal(t, "żół...(truncated)", analysis.Clip("żółw!", 3))
}

func TestAuditPromptClipsEachDocument(t *testing.T) {
	standard := strings.Repeat("¶", analysis.MaxDocumentRunes+50)
	subject := strings.Repeat("µ", 120)

	prompt := analysis.AuditPrompt(standard, subject)

	assert.Equal(t, analysis.MaxDocumentRunes, strings.Count(prompt, "¶"))
	assert.Contains(t, prompt, strings.Repeat("µ", 120))
	assert.Contains(t, prompt, "...(truncated)")
	assert.Contains(t, prompt, `"health_score"`)
	assert.Contains(t, prompt, `"liability_usd"`)
}

func TestRewritePromptDefaults(t *testing.T) {
	prompt := analysis.RewritePrompt("", "", "The contract.")

	assert.Contains(t, prompt, "the standard")
	assert.Contains(t, prompt, "Comply with best practices.")
	assert.Contains(t, prompt, "The contract.")
}
