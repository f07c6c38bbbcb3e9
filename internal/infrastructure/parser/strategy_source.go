package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"NewsVerifier/internal/config"
	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/ports"
	"NewsVerifier/internal/scanner"
)

// SourceName labels articles produced by the scraping tier.
const SourceName = "scraper"

// StrategySource implements the scraping tier via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.ArticleProvider = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// Name identifies the tier.
func (s *StrategySource) Name() string {
	return SourceName
}

// Fetch runs every source configured for sector until count articles are
// collected. A failing source is skipped; the call fails only when no source
// for the sector produced anything.
func (s *StrategySource) Fetch(ctx context.Context, sector string, count int) (domain.FetchResult, error) {
	if s.registry == nil {
		return domain.FetchResult{}, fmt.Errorf("scanner registry is not configured")
	}

	matched := s.sourcesFor(sector)
	if len(matched) == 0 {
		return domain.FetchResult{}, fmt.Errorf("no sources configured for sector %s", sector)
	}
	s.debug("fetch sector", "sector", sector, "sources", len(matched), "count", count)

	var (
		aggregated []domain.RawArticle
		errs       []error
	)
	for _, src := range matched {
		if count > 0 && len(aggregated) >= count {
			break
		}

		strategy, err := s.registry.Resolve(src.Scanner)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src.Name, err))
			continue
		}

		req := scanner.Request{
			SourceName: src.Name,
			Sector:     sector,
			URL:        src.URL,
			Options:    src.Options,
		}
		if count > 0 {
			req.Limit = count - len(aggregated)
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			s.warn("source scan failed", "source", src.Name, "error", err)
			errs = append(errs, fmt.Errorf("scan source %s: %w", src.Name, err))
			continue
		}

		for i := range results {
			if results[i].Source == "" {
				results[i].Source = src.Name
			}
		}
		s.debug("source produced articles", "source", src.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	if len(aggregated) == 0 {
		if len(errs) > 0 {
			return domain.FetchResult{}, errors.Join(errs...)
		}
		return domain.FetchResult{}, fmt.Errorf("sources for sector %s returned no articles", sector)
	}

	return domain.FetchResult{Articles: aggregated, Source: SourceName}, nil
}

func (s *StrategySource) sourcesFor(sector string) []config.SourceConfig {
	var out []config.SourceConfig
	for _, src := range s.sources {
		if strings.EqualFold(src.Sector, sector) {
			out = append(out, src)
		}
	}
	return out
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
