package analysis

import (
	"fmt"
	"unicode/utf8"
)

const (
	// MaxDocumentRunes bounds each document embedded in the audit prompt
	MaxDocumentRunes = 8000
	// MaxGaps is the number of gaps the model is asked to report
	MaxGaps = 5

	// Generation settings for the audit call. The token ceiling is what makes
	// truncated responses possible in the first place.
	AuditTemperature     = 0.1
	AuditMaxOutputTokens = 8192
	// RewriteTemperature is used for full-contract rewrites
	RewriteTemperature = 0.2
)

const auditPromptTemplate = `Analyze this contract for compliance gaps against the regulation. Respond with JSON only.

REGULATION:
%s

CONTRACT:
%s

Return JSON with this exact structure (identify the TOP %d CRITICAL gaps at most):
{
  "health_score": <0-100>,
  "total_liability_usd": <number>,
  "gaps": [
    {
      "risk_level": "critical|high|medium|low",
      "category": "string",
      "original_clause": "string or Missing",
      "regulation_reference": "string",
      "explanation": "concise explanation",
      "liability_usd": <number>,
      "compliant_rewrite": "brief suggested fix"
    }
  ]
}

Respond with ONLY the JSON. Keep explanations to two sentences at most. Limit the list to the %d most critical gaps.`

const rewritePromptTemplate = `You are an expert legal auditor. Rewrite this ENTIRE contract so that it complies with %s.

STANDARD REQUIREMENTS:
%s

ORIGINAL CONTRACT:
%s

INSTRUCTIONS:
1. Keep the original structure and parties.
2. Change ONLY the clauses that do not comply with the standard.
3. Output the FULL corrected contract in Markdown.`

// AuditPrompt builds the gap-analysis prompt for a standard and a subject document
func AuditPrompt(standardText, subjectText string) string {
	return fmt.Sprintf(auditPromptTemplate,
		Clip(standardText, MaxDocumentRunes),
		Clip(subjectText, MaxDocumentRunes),
		MaxGaps, MaxGaps,
	)
}

// RewritePrompt builds the prompt that asks for a fully compliant contract
func RewritePrompt(standardName, standardText, subjectText string) string {
	if standardName == "" {
		standardName = "the standard"
	}
	if standardText == "" {
		standardText = "Comply with best practices."
	}
	return fmt.Sprintf(rewritePromptTemplate, standardName, standardText, subjectText)
}

// Clip shortens s to at most n runes and marks the cut
func Clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "...(truncated)"
}
