// Package retrieval gathers topical background from the encyclopedia and the
// search gateway in parallel.
package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/logging"
	"NewsVerifier/internal/ports"
)

const searchResultsPerTopic = 3

// Deps wires the collaborators of a Retriever. Cache is optional.
type Deps struct {
	Encyclopedia ports.EncyclopediaClient
	Searcher     ports.Searcher
	Cache        ports.ContextCache
	CacheTTL     time.Duration
	Logger       *slog.Logger
}

// Retriever implements ports.ContextRetriever.
type Retriever struct {
	encyclopedia ports.EncyclopediaClient
	searcher     ports.Searcher
	cache        ports.ContextCache
	cacheTTL     time.Duration
	logger       *slog.Logger
}

var _ ports.ContextRetriever = (*Retriever)(nil)

// New builds a Retriever.
func New(deps Deps) *Retriever {
	return &Retriever{
		encyclopedia: deps.Encyclopedia,
		searcher:     deps.Searcher,
		cache:        deps.Cache,
		cacheTTL:     deps.CacheTTL,
		logger:       logging.OrDiscard(deps.Logger),
	}
}

// Retrieve returns non-empty context entries for topic: the encyclopedia entry
// first, then search hits. Provider failures only shrink the result.
func (r *Retriever) Retrieve(ctx context.Context, topic string) []domain.ContextEntry {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}

	var (
		encyclopedic *domain.ContextEntry
		searched     []domain.ContextEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		encyclopedic = r.lookup(gctx, topic)
		return nil
	})
	g.Go(func() error {
		searched = r.search(gctx, topic)
		return nil
	})
	_ = g.Wait()

	entries := make([]domain.ContextEntry, 0, 1+len(searched))
	if encyclopedic != nil {
		entries = append(entries, *encyclopedic)
	}
	entries = append(entries, searched...)

	filtered := entries[:0]
	for _, e := range entries {
		if !e.Empty() {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func (r *Retriever) lookup(ctx context.Context, topic string) *domain.ContextEntry {
	if r.encyclopedia == nil {
		return nil
	}

	key := strings.ToLower(topic)
	if r.cache != nil {
		entry, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("context cache read failed", "topic", topic, "error", err)
		} else if ok {
			return entry
		}
	}

	entry, err := r.encyclopedia.TopicContext(ctx, topic)
	if err != nil {
		r.logger.Warn("encyclopedia lookup failed", "topic", topic, "error", err)
		return nil
	}
	if entry == nil {
		return nil
	}

	if r.cache != nil && r.cacheTTL > 0 {
		if err := r.cache.Set(ctx, key, *entry, r.cacheTTL); err != nil {
			r.logger.Warn("context cache write failed", "topic", topic, "error", err)
		}
	}
	return entry
}

func (r *Retriever) search(ctx context.Context, topic string) []domain.ContextEntry {
	if r.searcher == nil {
		return nil
	}

	set := r.searcher.Search(ctx, topic, "general")
	out := make([]domain.ContextEntry, 0, searchResultsPerTopic)
	for _, res := range set.Results {
		if len(out) == searchResultsPerTopic {
			break
		}
		out = append(out, domain.ContextEntry{
			Source:  set.Source,
			Title:   res.Title,
			Summary: res.Content,
			URL:     res.URL,
		})
	}
	return out
}
