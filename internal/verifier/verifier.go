// Package verifier scores claims against retrieved context with a generative
// backend, degrading to a synthetic verdict on any failure.
package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/generator"
	"NewsVerifier/internal/logging"
	"NewsVerifier/internal/ports"
	"NewsVerifier/internal/random"
	"NewsVerifier/internal/textutil"
)

const (
	maxKeywords     = 3
	minCitations    = 2
	maxContextChars = 600
)

const systemPrompt = `You are a professional fact-checker. Assess the claim using the supplied context.
Respond with a single JSON object:
{"status": "true|false|mixed|unverified", "confidence": 0-100, "reasoning": "...", "citations": ["url"], "redFlags": ["label"]}`

var factCheckSites = []string{
	"https://www.snopes.com",
	"https://www.factcheck.org",
	"https://www.politifact.com",
	"https://fullfact.org",
}

type weightedStatus struct {
	status domain.VerdictStatus
	weight int
}

var statusDistribution = []weightedStatus{
	{domain.VerdictTrue, 40},
	{domain.VerdictFalse, 25},
	{domain.VerdictMixed, 20},
	{domain.VerdictUnverified, 15},
}

var cannedReasoning = map[domain.VerdictStatus]string{
	domain.VerdictTrue:       "The claim is consistent with established reporting and the retrieved background material.",
	domain.VerdictFalse:      "The claim contradicts established reporting; no credible source supports it.",
	domain.VerdictMixed:      "Parts of the claim are supported while other parts lack evidence or are misleading.",
	domain.VerdictUnverified: "There is not enough independent evidence to confirm or refute the claim.",
}

var cannedRedFlags = map[domain.VerdictStatus][]string{
	domain.VerdictTrue:       nil,
	domain.VerdictFalse:      {"contradicts_known_facts", "no_credible_source"},
	domain.VerdictMixed:      {"missing_context", "partial_evidence"},
	domain.VerdictUnverified: {"insufficient_evidence"},
}

// Deps wires the collaborators of a Verifier.
type Deps struct {
	Retriever ports.ContextRetriever
	Generator *generator.Generator
	Random    *random.Source
	Logger    *slog.Logger
	Now       func() time.Time
}

// Verifier produces exactly one verdict per call and never fails.
type Verifier struct {
	retriever ports.ContextRetriever
	generator *generator.Generator
	rnd       *random.Source
	logger    *slog.Logger
	now       func() time.Time
}

// New builds a Verifier.
func New(deps Deps) *Verifier {
	rnd := deps.Random
	if rnd == nil {
		rnd = random.New(0)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		retriever: deps.Retriever,
		generator: deps.Generator,
		rnd:       rnd,
		logger:    logging.OrDiscard(deps.Logger),
		now:       now,
	}
}

type backendVerdict struct {
	Status     string   `json:"status"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Citations  []string `json:"citations"`
	RedFlags   []string `json:"redFlags"`
}

// VerifyArticle verifies the article's headline claim and binds the verdict to it.
func (v *Verifier) VerifyArticle(ctx context.Context, article domain.Article) domain.Verdict {
	claim := strings.TrimSpace(article.Title)
	if first := textutil.FirstSentence(article.Body); first != "" {
		if claim != "" {
			claim += ". "
		}
		claim += first
	}

	verdict := v.Verify(ctx, claim)
	verdict.ArticleID = article.ID
	return verdict
}

// Verify assesses a free-text claim.
func (v *Verifier) Verify(ctx context.Context, claim string) domain.Verdict {
	entries := v.gatherContext(ctx, claim)

	citations := make([]string, 0, len(entries))
	sources := make([]string, 0, len(entries))
	for _, e := range entries {
		citations = append(citations, e.URL)
		sources = append(sources, e.Source)
	}
	citations = textutil.MergeUnique(nil, citations...)
	sources = textutil.MergeUnique(nil, sources...)

	verdict := domain.Verdict{
		ID:             uuid.NewString(),
		Claim:          claim,
		ContextSources: sources,
		CheckedAt:      v.now().UTC(),
	}

	var reply backendVerdict
	tier, err := v.generator.Generate(ctx, generator.Prompt{
		System: systemPrompt,
		User:   buildUserPrompt(claim, entries),
	}, &reply)
	if err == nil && strings.TrimSpace(reply.Status) == "" {
		err = errors.New("reply missing status")
	}
	if err != nil {
		v.logFallback(claim, err)
		return v.synthetic(verdict, citations)
	}

	verdict.Status = domain.ParseVerdictStatus(reply.Status)
	verdict.Confidence = normalizeConfidence(reply.Confidence)
	verdict.Reasoning = strings.TrimSpace(reply.Reasoning)
	verdict.Citations = textutil.MergeUnique(reply.Citations, citations...)
	verdict.RedFlags = textutil.MergeUnique(nil, reply.RedFlags...)
	verdict.Tier = tier
	return verdict
}

func (v *Verifier) gatherContext(ctx context.Context, claim string) []domain.ContextEntry {
	if v.retriever == nil {
		return nil
	}

	keywords := textutil.Keywords(claim, maxKeywords)
	perKeyword := make([][]domain.ContextEntry, len(keywords))

	g, gctx := errgroup.WithContext(ctx)
	for i, kw := range keywords {
		i, kw := i, kw
		g.Go(func() error {
			perKeyword[i] = v.retriever.Retrieve(gctx, kw)
			return nil
		})
	}
	_ = g.Wait()

	var entries []domain.ContextEntry
	for _, list := range perKeyword {
		for _, e := range list {
			if !e.Empty() {
				entries = append(entries, e)
			}
		}
	}
	return entries
}

func (v *Verifier) synthetic(verdict domain.Verdict, citations []string) domain.Verdict {
	status := v.pickStatus()

	verdict.Status = status
	verdict.Confidence = v.rnd.Between(60, 99)
	verdict.Reasoning = cannedReasoning[status]
	verdict.RedFlags = append([]string(nil), cannedRedFlags[status]...)
	verdict.Tier = domain.TierSynthetic

	cited := textutil.MergeUnique(nil, citations...)
	for _, site := range factCheckSites {
		if len(cited) >= minCitations {
			break
		}
		cited = textutil.MergeUnique(cited, site)
	}
	verdict.Citations = cited
	return verdict
}

func (v *Verifier) pickStatus() domain.VerdictStatus {
	total := 0
	for _, w := range statusDistribution {
		total += w.weight
	}
	roll := v.rnd.IntN(total)
	for _, w := range statusDistribution {
		if roll < w.weight {
			return w.status
		}
		roll -= w.weight
	}
	return domain.VerdictUnverified
}

func (v *Verifier) logFallback(claim string, err error) {
	if errors.Is(err, generator.ErrNoBackend) {
		v.logger.Debug("no backend configured, synthetic verdict", "claim", textutil.Truncate(claim, 80))
		return
	}
	v.logger.Warn("verification backend failed, synthetic verdict", "claim", textutil.Truncate(claim, 80), "error", err)
}

func buildUserPrompt(claim string, entries []domain.ContextEntry) string {
	type contextItem struct {
		Source  string `json:"source"`
		Title   string `json:"title"`
		Summary string `json:"summary"`
		URL     string `json:"url,omitempty"`
	}
	items := make([]contextItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, contextItem{
			Source:  e.Source,
			Title:   e.Title,
			Summary: textutil.Truncate(e.Summary, maxContextChars),
			URL:     e.URL,
		})
	}

	payload, err := json.Marshal(items)
	if err != nil {
		payload = []byte("[]")
	}
	return fmt.Sprintf("Claim: %s\n\nContext: %s", claim, payload)
}

// normalizeConfidence accepts both 0-1 and 0-100 scales.
func normalizeConfidence(value float64) int {
	if value > 0 && value <= 1 {
		value *= 100
	}
	return domain.ClampScore(int(value + 0.5))
}
