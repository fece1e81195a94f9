package analysis

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	// FallbackCategory marks the placeholder gap produced when nothing could be parsed
	FallbackCategory = "AI Response Error"

	fallbackHealthScore = 50
	rawPreviewRunes     = 500
)

// Repair stages, reported in logs.
const (
	stageDirect     = "direct"
	stageStructural = "structural"
	stageCounted    = "brace_count"
	stageNested     = "nested_close"
	stageFallback   = "fallback"
)

// Extractor recovers AnalysisResult values from raw model completions
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an extractor that logs repair attempts to logger.
// A nil logger disables logging.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

var defaultExtractor = NewExtractor(nil)

// Extract decodes raw with a silent extractor. See Extractor.Extract.
func Extract(raw string) AnalysisResult {
	return defaultExtractor.Extract(raw)
}

// Extract converts a model completion into an AnalysisResult. It never fails:
// when no repair strategy yields valid JSON the terminal fallback is returned,
// carrying a preview of raw in its single gap.
func (e *Extractor) Extract(raw string) AnalysisResult {
	result, stage := e.extract(raw)
	if stage != stageDirect && stage != stageFallback {
		e.logger.Info("analysis response repaired",
			zap.String("stage", stage),
			zap.Int("raw_length", len(raw)),
			zap.Int("gaps", len(result.Gaps)),
		)
	}
	for i, gap := range result.Gaps {
		if !gap.RiskLevel.Known() {
			e.logger.Warn("unknown risk level passed through",
				zap.Int("gap_index", i),
				zap.String("risk_level", string(gap.RiskLevel)),
			)
		}
	}
	return result
}

func (e *Extractor) extract(raw string) (AnalysisResult, string) {
	cleaned := stripFences(raw)

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		e.logger.Debug("no JSON object found in response")
		return Fallback(raw), stageFallback
	}

	candidate := cleaned[start:]
	if end := strings.LastIndexByte(cleaned, '}'); end > start {
		if result, ok := decode(cleaned[start : end+1]); ok {
			return result, stageDirect
		}
		e.logger.Debug("direct parse failed, attempting repair")
	}

	if result, ok := repairStructural(candidate); ok {
		return result, stageStructural
	}

	if result, ok := decode(candidate + countedClosers(candidate)); ok {
		return result, stageCounted
	}

	if repaired, ok := closeNested(candidate); ok {
		if result, ok := decode(repaired); ok {
			return result, stageNested
		}
	}

	e.logger.Warn("analysis response could not be repaired", zap.Int("raw_length", len(raw)))
	return Fallback(raw), stageFallback
}

// Fallback builds the placeholder result used when a response is unusable
func Fallback(raw string) AnalysisResult {
	return AnalysisResult{
		HealthScore:       fallbackHealthScore,
		TotalLiabilityUSD: 0,
		Gaps: []ComplianceGap{
			{
				RiskLevel:           RiskHigh,
				Category:            FallbackCategory,
				OriginalClause:      "Analysis Interrupted",
				RegulationReference: "N/A",
				Explanation:         "The AI analysis was truncated. Here is the raw output received: " + preview(raw, rawPreviewRunes) + "...",
				LiabilityUSD:        0,
				CompliantRewrite:    "Please retry the analysis.",
			},
		},
	}
}

// IsFallback reports whether r is the placeholder produced by Fallback
func IsFallback(r AnalysisResult) bool {
	return len(r.Gaps) == 1 && r.Gaps[0].Category == FallbackCategory
}

// stripFences removes a leading ``` or ```json marker and a trailing ``` marker.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

// repairStructural cuts the candidate after the last completed array element
// and closes the gaps array and the outer object.
func repairStructural(candidate string) (AnalysisResult, bool) {
	idx := strings.LastIndex(candidate, "},")
	if idx < 0 {
		return AnalysisResult{}, false
	}
	head := candidate[:idx+1]
	if result, ok := decode(head + "]}"); ok {
		return result, true
	}
	return decode(head + "}")
}

// countedClosers returns the closing brackets then closing braces needed to
// balance the raw symbol counts of s.
func countedClosers(s string) string {
	brackets := strings.Count(s, "[") - strings.Count(s, "]")
	braces := strings.Count(s, "{") - strings.Count(s, "}")
	var b strings.Builder
	for i := 0; i < brackets; i++ {
		b.WriteByte(']')
	}
	for i := 0; i < braces; i++ {
		b.WriteByte('}')
	}
	return b.String()
}

// closeNested walks s outside of string literals and remembers the last point
// where a container was opened with '[' or one was closed. It cuts s there and
// appends closers in true nesting order. This recovers truncations inside a
// gap object, which counted closing cannot.
func closeNested(s string) (string, bool) {
	var (
		stack    []byte
		cut      = -1
		cutStack []byte
		inString bool
		escaped  bool
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
			cut, cutStack = i+1, append(cutStack[:0], stack...)
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[:i+1], true
			}
			cut, cutStack = i+1, append(cutStack[:0], stack...)
		}
	}

	if cut < 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(s[:cut])
	for i := len(cutStack) - 1; i >= 0; i-- {
		b.WriteByte(cutStack[i])
	}
	return b.String(), true
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
