package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsVerifier/internal/domain"
)

func openTestRepo(t *testing.T) *SQLRepository {
	t.Helper()
	repo, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "news.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestArticleRoundTripAndUniqueness(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	published := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	article := domain.Article{
		ID: "a-1", URL: "https://example.com/story", Title: "Story", Body: "Body.",
		Sector: "technology", Source: "rss", PublishedAt: published, IngestedAt: published.Add(time.Hour),
	}
	if err := repo.SaveArticle(ctx, article); err != nil {
		t.Fatalf("save: %v", err)
	}

	duplicate := article
	duplicate.ID = "a-2"
	duplicate.Title = "Other"
	if err := repo.SaveArticle(ctx, duplicate); err != nil {
		t.Fatalf("duplicate save must be ignored, got %v", err)
	}

	exists, err := repo.ExistsByURL(ctx, article.URL)
	if err != nil || !exists {
		t.Fatalf("expected article to exist: %v %v", exists, err)
	}
	if exists, _ := repo.ExistsByURL(ctx, "https://example.com/missing"); exists {
		t.Fatalf("unexpected article")
	}

	got, err := repo.GetArticleByURL(ctx, article.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "a-1" || got.Title != "Story" || !got.PublishedAt.Equal(published) {
		t.Fatalf("unexpected article %+v", got)
	}

	if _, err := repo.GetArticleByURL(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListArticlesFiltersBySector(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, sector := range []string{"health", "technology", "health"} {
		a := domain.Article{
			ID: string(rune('a' + i)), URL: "https://x/" + string(rune('a'+i)), Title: "t",
			Sector: sector, IngestedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.SaveArticle(ctx, a); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	health, err := repo.ListArticles(ctx, "health", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(health) != 2 || health[0].ID != "c" {
		t.Fatalf("unexpected health list %+v", health)
	}

	all, err := repo.ListArticles(ctx, "", 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("unexpected list %d %v", len(all), err)
	}
}

func TestEvidenceOncePerArticle(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	first := domain.Verdict{
		ID: "v-1", ArticleID: "a-1", Claim: "c", Status: domain.VerdictFalse, Confidence: 88,
		Citations: []string{"https://snopes.com"}, RedFlags: []string{"x"}, Tier: domain.TierSynthetic, CheckedAt: now,
	}
	second := first
	second.ID = "v-2"
	second.Status = domain.VerdictTrue

	if err := repo.SaveVerdict(ctx, first); err != nil {
		t.Fatalf("save verdict: %v", err)
	}
	if err := repo.SaveVerdict(ctx, second); err != nil {
		t.Fatalf("second verdict must be ignored, got %v", err)
	}

	got, err := repo.GetVerdict(ctx, "a-1")
	if err != nil {
		t.Fatalf("get verdict: %v", err)
	}
	if got.ID != "v-1" || got.Status != domain.VerdictFalse || len(got.Citations) != 1 || !got.CheckedAt.Equal(now) {
		t.Fatalf("unexpected verdict %+v", got)
	}
	if _, err := repo.GetVerdict(ctx, "a-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	assessment := domain.ImageAssessment{ID: "i-1", ArticleID: "a-1", ImageURL: "https://img", AuthenticityScore: 75, Status: domain.AssessmentSuspicious, Fallback: true, AssessedAt: now}
	if err := repo.SaveAssessment(ctx, assessment); err != nil {
		t.Fatalf("save assessment: %v", err)
	}
	assessment.ID = "i-2"
	if err := repo.SaveAssessment(ctx, assessment); err != nil {
		t.Fatalf("duplicate assessment must be ignored, got %v", err)
	}

	strategy := domain.Strategy{ID: "s-1", ArticleID: "a-1", Summary: "s", Actions: []string{"a"}, Priority: domain.PriorityCritical, Tier: domain.TierSynthetic, CreatedAt: now}
	if err := repo.SaveStrategy(ctx, strategy); err != nil {
		t.Fatalf("save strategy: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "mysql", "dsn"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestPlaceholderFormatPerDriver(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		DriverPostgres: "SELECT 1 FROM articles WHERE url = $1",
		DriverSQLite:   "SELECT 1 FROM articles WHERE url = ?",
	}
	for driver, want := range cases {
		query, args, err := NewSQLRepository(nil, driver).sb.
			Select("1").From("articles").Where(sq.Eq{"url": "https://x.example"}).ToSql()
		if err != nil {
			t.Fatalf("%s: build query: %v", driver, err)
		}
		if query != want || len(args) != 1 {
			t.Fatalf("%s: got %q %v, want %q", driver, query, args, want)
		}
	}
}
