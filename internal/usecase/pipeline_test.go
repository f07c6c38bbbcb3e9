package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/ports"
	"NewsVerifier/internal/worker"
)

type memoryStore struct {
	mu          sync.Mutex
	articles    map[string]domain.Article
	verdicts    map[string]domain.Verdict
	assessments map[string]domain.ImageAssessment
	strategies  map[string]domain.Strategy
	existsErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		articles:    map[string]domain.Article{},
		verdicts:    map[string]domain.Verdict{},
		assessments: map[string]domain.ImageAssessment{},
		strategies:  map[string]domain.Strategy{},
	}
}

func (m *memoryStore) ExistsByURL(ctx context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.articles[url]
	return ok, nil
}

func (m *memoryStore) SaveArticle(ctx context.Context, a domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[a.URL]; !ok {
		m.articles[a.URL] = a
	}
	return nil
}

func (m *memoryStore) GetArticleByURL(ctx context.Context, url string) (domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[url]
	if !ok {
		return domain.Article{}, errors.New("not found")
	}
	return a, nil
}

func (m *memoryStore) ListArticles(ctx context.Context, sector string, limit int) ([]domain.Article, error) {
	return nil, nil
}

func (m *memoryStore) SaveVerdict(ctx context.Context, v domain.Verdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts[v.ArticleID] = v
	return nil
}

func (m *memoryStore) GetVerdict(ctx context.Context, articleID string) (domain.Verdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verdicts[articleID], nil
}

func (m *memoryStore) SaveAssessment(ctx context.Context, a domain.ImageAssessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assessments[a.ArticleID] = a
	return nil
}

func (m *memoryStore) SaveStrategy(ctx context.Context, s domain.Strategy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies[s.ArticleID] = s
	return nil
}

type stubProvider struct {
	name   string
	result domain.FetchResult
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Fetch(ctx context.Context, sector string, count int) (domain.FetchResult, error) {
	s.calls++
	return s.result, s.err
}

type stubAssessor struct{}

func (stubAssessor) Assess(ctx context.Context, imageURL string) domain.ImageAssessment {
	return domain.ImageAssessment{ID: "img", ImageURL: imageURL, AuthenticityScore: 90, Status: domain.AssessmentVerified}
}

type stubVerifier struct{ status domain.VerdictStatus }

func (s stubVerifier) VerifyArticle(ctx context.Context, a domain.Article) domain.Verdict {
	return domain.Verdict{ID: "v-" + a.ID, ArticleID: a.ID, Status: s.status, Confidence: 95}
}

type stubStrategist struct{}

func (stubStrategist) Strategize(ctx context.Context, v domain.Verdict) domain.Strategy {
	priority := domain.PriorityLow
	if v.Status == domain.VerdictFalse {
		priority = domain.PriorityCritical
	}
	return domain.Strategy{ID: "s-" + v.ArticleID, Summary: "plan", Priority: priority}
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) PublishAlert(ctx context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func candidates() []domain.RawArticle {
	return []domain.RawArticle{
		{Title: "Dam breaks upstream", Description: "Flooding expected.", URL: "https://n/1", ImageURL: "https://n/1.jpg"},
		{Title: "No description", URL: "https://n/2"},
		{Title: "Council votes", Description: "Budget approved.", URL: "https://n/3"},
	}
}

func TestIngestIsIdempotentByURL(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	provider := &stubProvider{name: "scraper", result: domain.FetchResult{Articles: candidates(), Source: "scraper"}}
	p := NewPipeline(PipelineDeps{Providers: []ports.ArticleProvider{provider}, Articles: store, Evidence: store})

	first, err := p.Ingest(context.Background(), "Politics")
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 stored articles, got %d", len(first))
	}
	if first[0].Sector != "politics" || first[0].Source != "scraper" || first[0].ID == "" {
		t.Fatalf("unexpected article %+v", first[0])
	}

	second, err := p.Ingest(context.Background(), "politics")
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected no new articles, got %d", len(second))
	}
	if len(store.articles) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(store.articles))
	}
}

func TestIngestFallsThroughTiers(t *testing.T) {
	t.Parallel()

	failing := &stubProvider{name: "scraper", err: errors.New("blocked")}
	empty := &stubProvider{name: "newsapi"}
	synthetic := &stubProvider{name: "synthetic", result: domain.FetchResult{Articles: candidates()[:1]}}
	unused := &stubProvider{name: "unused", result: domain.FetchResult{Articles: candidates()}}

	p := NewPipeline(PipelineDeps{Providers: []ports.ArticleProvider{failing, empty, synthetic, unused}})
	articles, err := p.Ingest(context.Background(), "health")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(articles) != 1 || articles[0].Source != "synthetic" {
		t.Fatalf("unexpected articles %+v", articles)
	}
	if failing.calls != 1 || empty.calls != 1 || synthetic.calls != 1 || unused.calls != 0 {
		t.Fatalf("unexpected calls %d %d %d %d", failing.calls, empty.calls, synthetic.calls, unused.calls)
	}
}

func TestIngestDispatchesBackgroundWork(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	notifier := &recordingNotifier{}
	pool := worker.New(2, 4, nil)
	pool.Start()

	p := NewPipeline(PipelineDeps{
		Providers:  []ports.ArticleProvider{&stubProvider{name: "scraper", result: domain.FetchResult{Articles: candidates()}}},
		Articles:   store,
		Evidence:   store,
		Images:     stubAssessor{},
		Verifier:   stubVerifier{status: domain.VerdictFalse},
		Strategist: stubStrategist{},
		Notifier:   notifier,
		Runner:     pool,
		Now:        func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	})

	articles, err := p.Ingest(context.Background(), "world")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := pool.Close(context.Background()); err != nil {
		t.Fatalf("close pool: %v", err)
	}

	if len(store.verdicts) != len(articles) || len(store.strategies) != len(articles) {
		t.Fatalf("expected verdict and strategy per article, got %d/%d", len(store.verdicts), len(store.strategies))
	}
	if len(store.assessments) != 1 {
		t.Fatalf("expected one image assessment, got %d", len(store.assessments))
	}
	for id, s := range store.strategies {
		if s.ArticleID != id {
			t.Fatalf("strategy not bound to article: %+v", s)
		}
	}
	if len(notifier.messages) != len(articles) {
		t.Fatalf("expected critical alerts, got %d", len(notifier.messages))
	}
}

func TestIngestFailsWhenDedupUnavailable(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.existsErr = errors.New("database is locked")
	p := NewPipeline(PipelineDeps{
		Providers: []ports.ArticleProvider{&stubProvider{name: "scraper", result: domain.FetchResult{Articles: candidates()}}},
		Articles:  store,
	})

	if _, err := p.Ingest(context.Background(), "tech"); err == nil {
		t.Fatalf("expected storage error")
	}
}

func TestIngestAllContinuesPastFailures(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	provider := &stubProvider{name: "scraper", result: domain.FetchResult{Articles: candidates()}}
	p := NewPipeline(PipelineDeps{Providers: []ports.ArticleProvider{provider}, Articles: store})

	total, err := p.IngestAll(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("ingest all: %v", err)
	}
	if total != 2 || provider.calls != 2 {
		t.Fatalf("unexpected totals %d calls %d", total, provider.calls)
	}
}
