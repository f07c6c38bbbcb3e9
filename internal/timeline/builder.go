// Package timeline assembles a ranked chronology of a topic from metasearch
// results.
package timeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/generator"
	"NewsVerifier/internal/logging"
	"NewsVerifier/internal/ports"
	"NewsVerifier/internal/textutil"
)

const (
	// MaxEvents caps the number of events in a timeline.
	MaxEvents = 10

	resultsPerQuery  = 3
	defaultRelevance = 0.5
)

var queryTemplates = []string{
	`"%s" timeline chronology`,
	`"%s" history development`,
	`when did "%s" start`,
	`"%s" latest developments`,
}

const analysisPrompt = `You are a news historian. Given a chronological list of events, identify recurring patterns,
cause and effect pairs and short predictions. Respond with a single JSON object:
{"patterns": ["..."], "causeEffect": [{"cause": "...", "effect": "..."}], "predictions": ["..."]}`

// Deps wires the collaborators of a Builder.
type Deps struct {
	Searcher  ports.Searcher
	Generator *generator.Generator
	Logger    *slog.Logger
}

// Builder produces timelines and never fails.
type Builder struct {
	searcher  ports.Searcher
	generator *generator.Generator
	logger    *slog.Logger
}

// New builds a Builder.
func New(deps Deps) *Builder {
	return &Builder{
		searcher:  deps.Searcher,
		generator: deps.Generator,
		logger:    logging.OrDiscard(deps.Logger),
	}
}

// Build queries every template, ranks the merged events and analyses them.
func (b *Builder) Build(ctx context.Context, topic string) domain.Timeline {
	topic = strings.TrimSpace(topic)
	events := b.collect(ctx, topic)
	return domain.Timeline{
		Topic:    topic,
		Events:   events,
		Analysis: b.analyze(ctx, topic, events),
	}
}

func (b *Builder) collect(ctx context.Context, topic string) []domain.TimelineEvent {
	if b.searcher == nil || topic == "" {
		return nil
	}

	perQuery := make([][]domain.TimelineEvent, len(queryTemplates))
	g, gctx := errgroup.WithContext(ctx)
	for i, tmpl := range queryTemplates {
		i, query := i, fmt.Sprintf(tmpl, topic)
		g.Go(func() error {
			set := b.searcher.Search(gctx, query, "news")
			perQuery[i] = toEvents(topic, set)
			return nil
		})
	}
	_ = g.Wait()

	var merged []domain.TimelineEvent
	for _, events := range perQuery {
		merged = append(merged, events...)
	}
	return Rank(merged)
}

func toEvents(topic string, set domain.SearchResultSet) []domain.TimelineEvent {
	out := make([]domain.TimelineEvent, 0, resultsPerQuery)
	for _, res := range set.Results {
		if len(out) == resultsPerQuery {
			break
		}
		event := domain.TimelineEvent{
			Topic:       topic,
			Title:       res.Title,
			Description: res.Content,
			Source:      textutil.Domain(res.URL),
			URL:         res.URL,
			Relevance:   relevance(res.Score),
		}
		if res.PublishedAt != nil {
			event.Date = res.PublishedAt.UTC()
		}
		out = append(out, event)
	}
	return out
}

func relevance(score *float64) float64 {
	if score == nil {
		return defaultRelevance
	}
	switch v := *score; {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Rank deduplicates events by URL, keeping the most relevant copy, sorts them
// by descending relevance with earlier dates first on ties, and caps the list.
func Rank(events []domain.TimelineEvent) []domain.TimelineEvent {
	byURL := make(map[string]int, len(events))
	out := make([]domain.TimelineEvent, 0, len(events))
	for _, e := range events {
		key := strings.TrimSpace(e.URL)
		if key == "" {
			out = append(out, e)
			continue
		}
		if idx, ok := byURL[key]; ok {
			if e.Relevance > out[idx].Relevance {
				out[idx] = e
			}
			continue
		}
		byURL[key] = len(out)
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		return earlier(out[i].Date, out[j].Date)
	})

	if len(out) > MaxEvents {
		out = out[:MaxEvents]
	}
	return out
}

// earlier orders dated events before undated ones.
func earlier(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	default:
		return a.Before(b)
	}
}

func (b *Builder) analyze(ctx context.Context, topic string, events []domain.TimelineEvent) domain.TimelineAnalysis {
	var reply domain.TimelineAnalysis
	tier, err := b.generator.Generate(ctx, generator.Prompt{
		System: analysisPrompt,
		User:   eventsPayload(topic, events),
	}, &reply)
	if err == nil && len(reply.Patterns) == 0 {
		err = errors.New("reply missing patterns")
	}
	if err != nil {
		if errors.Is(err, generator.ErrNoBackend) {
			b.logger.Debug("no backend configured, canned timeline analysis", "topic", topic)
		} else {
			b.logger.Warn("timeline analysis failed, canned analysis", "topic", topic, "error", err)
		}
		return cannedAnalysis(topic, events)
	}
	reply.Tier = tier
	return reply
}

func cannedAnalysis(topic string, events []domain.TimelineEvent) domain.TimelineAnalysis {
	analysis := domain.TimelineAnalysis{
		Patterns: []string{
			fmt.Sprintf("Coverage of %s clusters around major announcements", topic),
			"Follow-up reporting tends to refine initial claims",
		},
		CauseEffect: []domain.CauseEffect{},
		Predictions: []string{
			fmt.Sprintf("Further developments on %s are likely to draw renewed coverage", topic),
		},
		Tier: domain.TierSynthetic,
	}
	if len(events) >= 2 {
		analysis.CauseEffect = append(analysis.CauseEffect, domain.CauseEffect{
			Cause:  events[len(events)-1].Title,
			Effect: events[0].Title,
		})
	}
	return analysis
}

func eventsPayload(topic string, events []domain.TimelineEvent) string {
	type item struct {
		Date  string `json:"date,omitempty"`
		Title string `json:"title"`
		Note  string `json:"note,omitempty"`
	}
	items := make([]item, 0, len(events))
	for _, e := range events {
		it := item{Title: e.Title, Note: e.Description}
		if !e.Date.IsZero() {
			it.Date = e.Date.Format("2006-01-02")
		}
		items = append(items, it)
	}
	payload, err := json.Marshal(map[string]any{"topic": topic, "events": items})
	if err != nil {
		return topic
	}
	return string(payload)
}
