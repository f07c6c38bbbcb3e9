package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/logging"
	"NewsVerifier/internal/ports"
)

const defaultArticlesPerSector = 10

// PipelineDeps wires all driven adapters into the ingestion pipeline. Providers
// are tried in order; Notifier and Runner are optional.
type PipelineDeps struct {
	Providers         []ports.ArticleProvider
	Articles          ports.ArticleRepository
	Evidence          ports.EvidenceRepository
	Images            ports.ImageAssessor
	Verifier          ports.ClaimVerifier
	Strategist        ports.Strategist
	Notifier          ports.Notifier
	Runner            ports.TaskRunner
	ArticlesPerSector int
	Logger            *slog.Logger
	Now               func() time.Time
}

// Pipeline implements the article-ingestion workflow.
type Pipeline struct {
	providers  []ports.ArticleProvider
	articles   ports.ArticleRepository
	evidence   ports.EvidenceRepository
	images     ports.ImageAssessor
	verifier   ports.ClaimVerifier
	strategist ports.Strategist
	notifier   ports.Notifier
	runner     ports.TaskRunner
	perSector  int
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	perSector := deps.ArticlesPerSector
	if perSector <= 0 {
		perSector = defaultArticlesPerSector
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		providers:  deps.Providers,
		articles:   deps.Articles,
		evidence:   deps.Evidence,
		images:     deps.Images,
		verifier:   deps.Verifier,
		strategist: deps.Strategist,
		notifier:   deps.Notifier,
		runner:     deps.Runner,
		perSector:  perSector,
		logger:     logging.OrDiscard(deps.Logger),
		now:        now,
	}
}

// Ingest fetches candidates for sector from the first tier that yields any,
// stores the new ones and schedules their verification in the background. It
// fails only when the repository cannot answer the duplicate check.
func (p *Pipeline) Ingest(ctx context.Context, sector string) ([]domain.Article, error) {
	sector = strings.ToLower(strings.TrimSpace(sector))
	result := p.fetch(ctx, sector)

	var (
		stored  []domain.Article
		skipped int
	)
	for _, raw := range result.Articles {
		if strings.TrimSpace(raw.Title) == "" || strings.TrimSpace(raw.Description) == "" || raw.URL == "" {
			skipped++
			continue
		}

		if p.articles != nil {
			exists, err := p.articles.ExistsByURL(ctx, raw.URL)
			if err != nil {
				return stored, fmt.Errorf("check article %s: %w", raw.URL, err)
			}
			if exists {
				skipped++
				continue
			}
		}

		article := p.toArticle(raw, sector, result.Source)
		if p.articles != nil {
			if err := p.articles.SaveArticle(ctx, article); err != nil {
				p.logger.Warn("persist article failed", "url", article.URL, "error", err)
				continue
			}
		}

		stored = append(stored, article)
		p.dispatch(article)
	}

	p.logger.Info("ingestion finished",
		"sector", sector,
		"tier", result.Source,
		"fetched", len(result.Articles),
		"stored", len(stored),
		"skipped", skipped,
	)
	return stored, nil
}

// IngestAll runs Ingest for every sector, continuing past failures.
func (p *Pipeline) IngestAll(ctx context.Context, sectors []string) (int, error) {
	var (
		total   int
		lastErr error
	)
	for _, sector := range sectors {
		articles, err := p.Ingest(ctx, sector)
		total += len(articles)
		if err != nil {
			p.logger.Error("sector ingestion failed", "sector", sector, "error", err)
			lastErr = err
		}
	}
	return total, lastErr
}

func (p *Pipeline) fetch(ctx context.Context, sector string) domain.FetchResult {
	for _, provider := range p.providers {
		result, err := provider.Fetch(ctx, sector, p.perSector)
		if err != nil {
			p.logger.Warn("article tier failed", "tier", provider.Name(), "sector", sector, "error", err)
			continue
		}
		if len(result.Articles) == 0 {
			p.logger.Warn("article tier returned nothing", "tier", provider.Name(), "sector", sector)
			continue
		}
		if result.Source == "" {
			result.Source = provider.Name()
		}
		return result
	}
	return domain.FetchResult{}
}

func (p *Pipeline) toArticle(raw domain.RawArticle, sector, tier string) domain.Article {
	now := p.now().UTC()
	source := raw.Source
	if source == "" {
		source = tier
	}
	article := domain.Article{
		ID:          uuid.NewString(),
		URL:         raw.URL,
		Title:       strings.TrimSpace(raw.Title),
		Body:        strings.TrimSpace(raw.Description),
		ImageURL:    raw.ImageURL,
		Sector:      sector,
		Source:      source,
		PublishedAt: now,
		IngestedAt:  now,
	}
	if raw.PublishedAt != nil {
		article.PublishedAt = raw.PublishedAt.UTC()
	}
	return article
}

func (p *Pipeline) dispatch(article domain.Article) {
	if article.HasImage() && p.images != nil {
		p.submit("assess-image:"+article.ID, func(ctx context.Context) error {
			assessment := p.images.Assess(ctx, article.ImageURL)
			assessment.ArticleID = article.ID
			if p.evidence == nil {
				return nil
			}
			if err := p.evidence.SaveAssessment(ctx, assessment); err != nil {
				return fmt.Errorf("save assessment: %w", err)
			}
			return nil
		})
	}

	if p.verifier != nil {
		p.submit("verify:"+article.ID, func(ctx context.Context) error {
			return p.verifyAndPlan(ctx, article)
		})
	}
}

func (p *Pipeline) verifyAndPlan(ctx context.Context, article domain.Article) error {
	verdict := p.verifier.VerifyArticle(ctx, article)
	if p.evidence != nil {
		if err := p.evidence.SaveVerdict(ctx, verdict); err != nil {
			return fmt.Errorf("save verdict: %w", err)
		}
	}

	if p.strategist == nil {
		return nil
	}
	strategy := p.strategist.Strategize(ctx, verdict)
	strategy.ArticleID = article.ID
	if p.evidence != nil {
		if err := p.evidence.SaveStrategy(ctx, strategy); err != nil {
			return fmt.Errorf("save strategy: %w", err)
		}
	}

	if strategy.Priority == domain.PriorityCritical && p.notifier != nil {
		if err := p.notifier.PublishAlert(ctx, alertMessage(article, verdict, strategy)); err != nil {
			return fmt.Errorf("publish alert: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) submit(name string, fn func(ctx context.Context) error) {
	if p.runner != nil && p.runner.Submit(name, fn) {
		return
	}
	if p.runner != nil {
		p.logger.Warn("background runner rejected task", "task", name)
		return
	}
	if err := fn(context.Background()); err != nil {
		p.logger.Warn("inline task failed", "task", name, "error", err)
	}
}

func alertMessage(article domain.Article, verdict domain.Verdict, strategy domain.Strategy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Critical: likely misinformation (%s, %d%% confidence)\n", verdict.Status, verdict.Confidence)
	fmt.Fprintf(&b, "%s\n%s\n\n%s\n", article.Title, article.URL, strategy.Summary)
	for _, action := range strategy.Actions {
		fmt.Fprintf(&b, "- %s\n", action)
	}
	return b.String()
}
