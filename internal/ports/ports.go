package ports

import (
	"context"
	"errors"
	"time"

	"NewsVerifier/internal/domain"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// ArticleProvider is one tier of the ingestion degrade chain.
type ArticleProvider interface {
	Name() string
	Fetch(ctx context.Context, sector string, count int) (domain.FetchResult, error)
}

// ArticleRepository persists ingested articles and answers the dedup query.
type ArticleRepository interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	SaveArticle(ctx context.Context, article domain.Article) error
	GetArticleByURL(ctx context.Context, url string) (domain.Article, error)
	ListArticles(ctx context.Context, sector string, limit int) ([]domain.Article, error)
}

// EvidenceRepository stores the append-only verification outputs.
type EvidenceRepository interface {
	SaveVerdict(ctx context.Context, verdict domain.Verdict) error
	GetVerdict(ctx context.Context, articleID string) (domain.Verdict, error)
	SaveAssessment(ctx context.Context, assessment domain.ImageAssessment) error
	SaveStrategy(ctx context.Context, strategy domain.Strategy) error
}

// Searcher issues metasearch queries. Implementations never fail.
type Searcher interface {
	Search(ctx context.Context, query string, categories ...string) domain.SearchResultSet
}

// EncyclopediaClient looks up topical background. A nil entry means no match.
type EncyclopediaClient interface {
	TopicContext(ctx context.Context, topic string) (*domain.ContextEntry, error)
}

// ContextRetriever gathers background material for a topic.
type ContextRetriever interface {
	Retrieve(ctx context.Context, topic string) []domain.ContextEntry
}

// ContextCache memoizes encyclopedic lookups between runs.
type ContextCache interface {
	Get(ctx context.Context, key string) (*domain.ContextEntry, bool, error)
	Set(ctx context.Context, key string, entry domain.ContextEntry, ttl time.Duration) error
}

// MatchCounter reports external corroboration for an image.
type MatchCounter interface {
	CountMatches(ctx context.Context, imageURL string) int
}

// Notifier streams alerts to Telegram or other channels.
type Notifier interface {
	PublishAlert(ctx context.Context, message string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// ImageAssessor scores the authenticity of an article image.
type ImageAssessor interface {
	Assess(ctx context.Context, imageURL string) domain.ImageAssessment
}

// ClaimVerifier produces the verdict for an article.
type ClaimVerifier interface {
	VerifyArticle(ctx context.Context, article domain.Article) domain.Verdict
}

// Strategist plans the response to a verdict.
type Strategist interface {
	Strategize(ctx context.Context, verdict domain.Verdict) domain.Strategy
}

// TaskRunner executes fire-and-forget background work.
type TaskRunner interface {
	Submit(name string, fn func(ctx context.Context) error) bool
}
