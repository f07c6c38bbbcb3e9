// Package strategist turns an article and its verdict into a narrative summary
// and a recommended response.
package strategist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/generator"
	"NewsVerifier/internal/logging"
	"NewsVerifier/internal/random"
	"NewsVerifier/internal/textutil"
)

const (
	criticalConfidence = 80
	maxKeyPoints       = 3
	maxRelatedTopics   = 5
)

const summaryPrompt = `You are a news analyst. Summarize the article in light of its verification verdict.
Respond with a single JSON object:
{"tldr": "...", "keyPoints": ["..."], "timeline": [{"date": "...", "event": "..."}], "context": "...",
 "implications": "...", "trustScore": 0-100, "recommendations": ["..."], "priority": "low|medium|high|critical",
 "relatedTopics": ["..."], "confidence": 0-100}`

const strategyPrompt = `You are a communications strategist handling possible misinformation.
Given a verification verdict, respond with a single JSON object:
{"summary": "...", "actions": ["..."], "priority": "low|medium|high|critical"}`

var implications = map[domain.VerdictStatus]string{
	domain.VerdictTrue:       "The report is consistent with available evidence and can be shared with normal care.",
	domain.VerdictFalse:      "The report spreads claims that contradict available evidence and may mislead readers.",
	domain.VerdictMixed:      "The report mixes accurate and inaccurate statements; readers may draw wrong conclusions.",
	domain.VerdictUnverified: "The report cannot yet be confirmed; conclusions drawn from it are premature.",
}

var strategySummaries = map[domain.VerdictStatus]string{
	domain.VerdictTrue:       "Claim appears accurate; no intervention needed beyond routine monitoring.",
	domain.VerdictFalse:      "Claim appears false; counter-messaging and source review are recommended.",
	domain.VerdictMixed:      "Claim is partially accurate; add context before amplification.",
	domain.VerdictUnverified: "Claim is unverified; hold amplification until corroborated.",
}

var strategyActions = map[domain.VerdictStatus][]string{
	domain.VerdictTrue: {
		"Share with attribution to original sources",
		"Monitor for later corrections",
	},
	domain.VerdictFalse: {
		"Publish a correction citing reliable sources",
		"Flag the originating source for review",
		"Alert the editorial team",
	},
	domain.VerdictMixed: {
		"Add clarifying context to the story",
		"Separate verified statements from unverified ones",
	},
	domain.VerdictUnverified: {
		"Seek independent corroboration",
		"Label the story as unconfirmed",
	},
}

// PriorityFor derives the response priority from a verdict.
func PriorityFor(verdict domain.Verdict) domain.Priority {
	switch verdict.Status {
	case domain.VerdictFalse:
		if verdict.Confidence >= criticalConfidence {
			return domain.PriorityCritical
		}
		return domain.PriorityHigh
	case domain.VerdictTrue:
		return domain.PriorityLow
	default:
		return domain.PriorityMedium
	}
}

// Deps wires the collaborators of a Service.
type Deps struct {
	Generator *generator.Generator
	Random    *random.Source
	Logger    *slog.Logger
	Now       func() time.Time
}

// Service implements summarization and strategy planning.
type Service struct {
	generator *generator.Generator
	rnd       *random.Source
	logger    *slog.Logger
	now       func() time.Time
}

// New builds a Service.
func New(deps Deps) *Service {
	rnd := deps.Random
	if rnd == nil {
		rnd = random.New(0)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		generator: deps.Generator,
		rnd:       rnd,
		logger:    logging.OrDiscard(deps.Logger),
		now:       now,
	}
}

// Summarize builds the narrative bundle for an article.
func (s *Service) Summarize(ctx context.Context, article domain.Article, verdict domain.Verdict) domain.Summary {
	var reply domain.Summary
	tier, err := s.generator.Generate(ctx, generator.Prompt{
		System: summaryPrompt,
		User:   articlePayload(article, verdict),
	}, &reply)
	if err == nil && strings.TrimSpace(reply.TLDR) == "" {
		err = errors.New("reply missing tldr")
	}
	if err != nil {
		s.logFallback("summary", err)
		return s.fallbackSummary(article, verdict)
	}

	reply.TrustScore = domain.ClampScore(reply.TrustScore)
	reply.Confidence = domain.ClampScore(reply.Confidence)
	reply.Priority = domain.ParsePriority(string(reply.Priority))
	reply.Tier = tier
	return reply
}

// Strategize plans the response to a verdict.
func (s *Service) Strategize(ctx context.Context, verdict domain.Verdict) domain.Strategy {
	strategy := domain.Strategy{
		ID:        uuid.NewString(),
		ArticleID: verdict.ArticleID,
		CreatedAt: s.now().UTC(),
	}

	var reply struct {
		Summary  string   `json:"summary"`
		Actions  []string `json:"actions"`
		Priority string   `json:"priority"`
	}
	tier, err := s.generator.Generate(ctx, generator.Prompt{
		System: strategyPrompt,
		User:   verdictPayload(verdict),
	}, &reply)
	if err == nil && strings.TrimSpace(reply.Summary) == "" {
		err = errors.New("reply missing summary")
	}
	if err != nil {
		s.logFallback("strategy", err)
		strategy.Summary = strategySummaries[statusOf(verdict)]
		strategy.Actions = append([]string(nil), strategyActions[statusOf(verdict)]...)
		strategy.Priority = PriorityFor(verdict)
		strategy.Tier = domain.TierSynthetic
		return strategy
	}

	strategy.Summary = strings.TrimSpace(reply.Summary)
	strategy.Actions = textutil.MergeUnique(nil, reply.Actions...)
	strategy.Priority = domain.ParsePriority(reply.Priority)
	strategy.Tier = tier
	return strategy
}

func (s *Service) fallbackSummary(article domain.Article, verdict domain.Verdict) domain.Summary {
	status := statusOf(verdict)

	tldr := textutil.FirstSentence(article.Body)
	if tldr == "" {
		tldr = article.Title
	}

	keyPoints := textutil.Sentences(article.Body)
	if len(keyPoints) > maxKeyPoints {
		keyPoints = keyPoints[:maxKeyPoints]
	}
	if len(keyPoints) == 0 && article.Title != "" {
		keyPoints = []string{article.Title}
	}

	var timeline []domain.TimelineEntry
	if !article.PublishedAt.IsZero() {
		timeline = append(timeline, domain.TimelineEntry{Date: article.PublishedAt.UTC().Format("2006-01-02"), Event: article.Title})
	}
	timeline = append(timeline, domain.TimelineEntry{Date: verdict.CheckedAt.UTC().Format("2006-01-02"), Event: "Claim verification completed"})

	return domain.Summary{
		TLDR:            textutil.Truncate(tldr, 280),
		KeyPoints:       keyPoints,
		Timeline:        timeline,
		Context:         fmt.Sprintf("Verification status: %s with %d%% confidence.", status, verdict.Confidence),
		Implications:    implications[status],
		TrustScore:      s.rnd.Between(80, 99),
		Recommendations: append([]string(nil), strategyActions[status]...),
		Priority:        PriorityFor(verdict),
		RelatedTopics:   textutil.Keywords(article.Title+" "+article.Body, maxRelatedTopics),
		Confidence:      s.rnd.Between(85, 99),
		Tier:            domain.TierSynthetic,
	}
}

func (s *Service) logFallback(kind string, err error) {
	if errors.Is(err, generator.ErrNoBackend) {
		s.logger.Debug("no backend configured, synthetic "+kind)
		return
	}
	s.logger.Warn("strategist backend failed, synthetic "+kind, "error", err)
}

func statusOf(verdict domain.Verdict) domain.VerdictStatus {
	if _, ok := implications[verdict.Status]; ok {
		return verdict.Status
	}
	return domain.VerdictUnverified
}

func articlePayload(article domain.Article, verdict domain.Verdict) string {
	payload, err := json.Marshal(map[string]any{
		"title":      article.Title,
		"body":       textutil.Truncate(article.Body, 2000),
		"source":     article.Source,
		"status":     verdict.Status,
		"confidence": verdict.Confidence,
		"reasoning":  verdict.Reasoning,
		"citations":  verdict.Citations,
	})
	if err != nil {
		return article.Title
	}
	return string(payload)
}

func verdictPayload(verdict domain.Verdict) string {
	payload, err := json.Marshal(map[string]any{
		"claim":      verdict.Claim,
		"status":     verdict.Status,
		"confidence": verdict.Confidence,
		"reasoning":  verdict.Reasoning,
		"redFlags":   verdict.RedFlags,
	})
	if err != nil {
		return verdict.Claim
	}
	return string(payload)
}
