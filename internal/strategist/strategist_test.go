package strategist

import (
	"context"
	"errors"
	"testing"
	"time"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/generator"
	"NewsVerifier/internal/random"
)

type fakeBackend struct {
	reply string
	err   error
}

func (f fakeBackend) Name() string { return "fake" }
func (f fakeBackend) Usable() bool { return true }
func (f fakeBackend) Complete(ctx context.Context, prompt generator.Prompt) (string, error) {
	return f.reply, f.err
}

func TestPriorityFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status     domain.VerdictStatus
		confidence int
		want       domain.Priority
	}{
		{domain.VerdictFalse, 80, domain.PriorityCritical},
		{domain.VerdictFalse, 95, domain.PriorityCritical},
		{domain.VerdictFalse, 79, domain.PriorityHigh},
		{domain.VerdictMixed, 99, domain.PriorityMedium},
		{domain.VerdictUnverified, 60, domain.PriorityMedium},
		{domain.VerdictTrue, 99, domain.PriorityLow},
	}
	for _, tc := range cases {
		got := PriorityFor(domain.Verdict{Status: tc.status, Confidence: tc.confidence})
		if got != tc.want {
			t.Fatalf("%s/%d: got %s want %s", tc.status, tc.confidence, got, tc.want)
		}
	}
}

func TestSummarizeFallback(t *testing.T) {
	t.Parallel()

	article := domain.Article{
		Title:       "Bridge collapse disrupts traffic",
		Body:        "A bridge collapsed overnight. No injuries were reported. Repairs will take months. Detours are in place.",
		PublishedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	verdict := domain.Verdict{Status: domain.VerdictFalse, Confidence: 90, CheckedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)}

	svc := New(Deps{Random: random.New(11)})
	for i := 0; i < 20; i++ {
		summary := svc.Summarize(context.Background(), article, verdict)
		if summary.TrustScore < 80 || summary.TrustScore > 99 {
			t.Fatalf("trust score out of range: %d", summary.TrustScore)
		}
		if summary.Confidence < 85 || summary.Confidence > 99 {
			t.Fatalf("confidence out of range: %d", summary.Confidence)
		}
		if summary.TLDR != "A bridge collapsed overnight." {
			t.Fatalf("unexpected tldr %q", summary.TLDR)
		}
		if len(summary.KeyPoints) != 3 {
			t.Fatalf("unexpected key points %v", summary.KeyPoints)
		}
		if summary.Priority != domain.PriorityCritical || summary.Tier != domain.TierSynthetic {
			t.Fatalf("unexpected priority/tier %s/%s", summary.Priority, summary.Tier)
		}
		if len(summary.Timeline) != 2 || summary.Timeline[0].Date != "2024-03-01" {
			t.Fatalf("unexpected timeline %+v", summary.Timeline)
		}
	}
}

func TestSummarizeBackend(t *testing.T) {
	t.Parallel()

	backend := fakeBackend{reply: `{"tldr":"Short.","keyPoints":["a"],"trustScore":140,"priority":"URGENT","confidence":70}`}
	svc := New(Deps{Generator: generator.New(nil, backend, nil)})

	summary := svc.Summarize(context.Background(), domain.Article{Title: "t"}, domain.Verdict{Status: domain.VerdictTrue})
	if summary.TLDR != "Short." || summary.Tier != domain.TierSecondary {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.TrustScore != 100 || summary.Priority != domain.PriorityMedium {
		t.Fatalf("expected clamped trust and normalized priority, got %d %s", summary.TrustScore, summary.Priority)
	}
}

func TestStrategizeFallbackAndBackend(t *testing.T) {
	t.Parallel()

	verdict := domain.Verdict{ArticleID: "a-9", Status: domain.VerdictFalse, Confidence: 85}

	fallback := New(Deps{Generator: generator.New(fakeBackend{err: errors.New("401")}, nil, nil)}).Strategize(context.Background(), verdict)
	if fallback.Tier != domain.TierSynthetic || fallback.Priority != domain.PriorityCritical {
		t.Fatalf("unexpected fallback %+v", fallback)
	}
	if fallback.ArticleID != "a-9" || fallback.Summary == "" || len(fallback.Actions) == 0 {
		t.Fatalf("incomplete fallback %+v", fallback)
	}

	backend := fakeBackend{reply: `{"summary":"Issue a correction.","actions":["Correct","Correct","Notify"],"priority":"high"}`}
	planned := New(Deps{Generator: generator.New(backend, nil, nil)}).Strategize(context.Background(), verdict)
	if planned.Tier != domain.TierPrimary || planned.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected strategy %+v", planned)
	}
	if len(planned.Actions) != 2 {
		t.Fatalf("expected deduplicated actions, got %v", planned.Actions)
	}
}
