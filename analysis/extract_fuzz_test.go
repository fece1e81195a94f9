package analysis_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"auditease-backend/analysis"
)

func FuzzExtract(f *testing.F) {
	seeds := []string{
		"",
		"I cannot help with that.",
		wellFormed,
		analysis.DemoResponse,
		"```json\n{\"health_score\":90,\"total_liability_usd\":0,\"gaps\":[]}\n```",
		`{"gaps":[{"a":{"b":[1,2`,
		`{"gaps":[}]`,
		`}{`,
		`{"health_score":"A","gaps":[{"risk_level":"\"}],"}]}`,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		result := analysis.Extract(raw)

		if result.Gaps == nil {
			t.Fatalf("Extract(%q) returned nil gaps", raw)
		}
		if result.HealthScore < 0 || result.HealthScore > 100 {
			t.Fatalf("Extract(%q) health score %d out of range", raw, result.HealthScore)
		}
		if result.TotalLiabilityUSD < 0 {
			t.Fatalf("Extract(%q) negative total liability", raw)
		}
		for i, gap := range result.Gaps {
			if gap.LiabilityUSD < 0 {
				t.Fatalf("Extract(%q) gap %d has negative liability", raw, i)
			}
		}
	})
}

// FuzzExtractTruncated cuts a complete response at arbitrary offsets. Whatever
// repair stage wins, the recovered gaps must be an exact prefix of the
// original list: partial gap objects are never surfaced.
func FuzzExtractTruncated(f *testing.F) {
	full := analysis.Extract(analysis.DemoResponse)
	if len(full.Gaps) == 0 {
		f.Fatal("demo response has no gaps")
	}

	for _, cut := range []uint16{0, 1, 40, 120, 400, 900, 1500, 2000, uint16(len(analysis.DemoResponse))} {
		f.Add(cut)
	}

	f.Fuzz(func(t *testing.T, cut uint16) {
		n := int(cut) % (len(analysis.DemoResponse) + 1)
		truncated := analysis.DemoResponse[:n]

		result := analysis.Extract(truncated)
		if analysis.IsFallback(result) {
			return
		}

		if len(result.Gaps) > len(full.Gaps) {
			t.Fatalf("cut %d recovered %d gaps, more than %d", n, len(result.Gaps), len(full.Gaps))
		}
		for i, gap := range result.Gaps {
			if diff := cmp.Diff(full.Gaps[i], gap); diff != "" {
				t.Fatalf("cut %d gap %d is not a complete original gap (-want +got):\n%s", n, i, diff)
			}
		}
		if n == len(analysis.DemoResponse) && len(result.Gaps) != len(full.Gaps) {
			t.Fatalf("complete response lost gaps: got %d want %d", len(result.Gaps), len(full.Gaps))
		}
	})
}
