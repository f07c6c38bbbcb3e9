package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/ports"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = ports.ErrNotFound

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultListLimit = 50
)

// SQLRepository persists articles and verification evidence in SQLite or Postgres.
type SQLRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var (
	_ ports.ArticleRepository  = (*SQLRepository)(nil)
	_ ports.EvidenceRepository = (*SQLRepository)(nil)
)

// Open connects to the database and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*SQLRepository, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	repo := NewSQLRepository(db, driver)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLRepository wires an existing sql.DB.
func NewSQLRepository(db *sql.DB, driver string) *SQLRepository {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		placeholder = sq.Dollar
	}
	return &SQLRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// Migrate creates missing tables.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// ExistsByURL reports whether an article with this URL is stored.
func (r *SQLRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	query, args, err := r.sb.Select("1").From("articles").Where(sq.Eq{"url": url}).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	switch err := r.db.QueryRowContext(ctx, query, args...).Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query exists: %w", err)
	default:
		return true, nil
	}
}

// SaveArticle inserts the article; an existing URL is left untouched.
func (r *SQLRepository) SaveArticle(ctx context.Context, a domain.Article) error {
	query, args, err := r.sb.Insert("articles").
		Columns("id", "url", "title", "body", "image_url", "sector", "source", "published_at", "ingested_at").
		Values(a.ID, a.URL, a.Title, a.Body, a.ImageURL, a.Sector, a.Source, formatTime(a.PublishedAt), formatTime(a.IngestedAt)).
		Suffix("ON CONFLICT (url) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build article insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

var articleColumns = []string{"id", "url", "title", "body", "image_url", "sector", "source", "published_at", "ingested_at"}

// GetArticleByURL loads a stored article.
func (r *SQLRepository) GetArticleByURL(ctx context.Context, url string) (domain.Article, error) {
	query, args, err := r.sb.Select(articleColumns...).From("articles").Where(sq.Eq{"url": url}).ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build article query: %w", err)
	}

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, ErrNotFound
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("scan article: %w", err)
	}
	return article, nil
}

// ListArticles returns the newest articles, optionally limited to one sector.
func (r *SQLRepository) ListArticles(ctx context.Context, sector string, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	builder := r.sb.Select(articleColumns...).From("articles").OrderBy("ingested_at DESC", "id").Limit(uint64(limit))
	if sector != "" {
		builder = builder.Where(sq.Eq{"sector": sector})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// SaveVerdict stores the first verdict for an article; later ones are ignored.
func (r *SQLRepository) SaveVerdict(ctx context.Context, v domain.Verdict) error {
	citations, err := encodeList(v.Citations)
	if err != nil {
		return err
	}
	redFlags, err := encodeList(v.RedFlags)
	if err != nil {
		return err
	}
	sources, err := encodeList(v.ContextSources)
	if err != nil {
		return err
	}

	query, args, err := r.sb.Insert("verdicts").
		Columns("id", "article_id", "claim", "status", "confidence", "reasoning", "citations", "red_flags", "context_sources", "tier", "checked_at").
		Values(v.ID, v.ArticleID, v.Claim, string(v.Status), v.Confidence, v.Reasoning, citations, redFlags, sources, string(v.Tier), formatTime(v.CheckedAt)).
		Suffix("ON CONFLICT (article_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build verdict insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert verdict: %w", err)
	}
	return nil
}

// GetVerdict loads the verdict attached to an article.
func (r *SQLRepository) GetVerdict(ctx context.Context, articleID string) (domain.Verdict, error) {
	query, args, err := r.sb.
		Select("id", "article_id", "claim", "status", "confidence", "reasoning", "citations", "red_flags", "context_sources", "tier", "checked_at").
		From("verdicts").
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("build verdict query: %w", err)
	}

	var (
		v                            domain.Verdict
		status, tier, checked        string
		citations, redFlags, sources string
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&v.ID, &v.ArticleID, &v.Claim, &status, &v.Confidence, &v.Reasoning,
		&citations, &redFlags, &sources, &tier, &checked,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Verdict{}, ErrNotFound
	}
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("scan verdict: %w", err)
	}

	v.Status = domain.VerdictStatus(status)
	v.Tier = domain.Tier(tier)
	v.CheckedAt = parseTime(checked)
	if err := decodeJSON(citations, &v.Citations); err != nil {
		return domain.Verdict{}, err
	}
	if err := decodeJSON(redFlags, &v.RedFlags); err != nil {
		return domain.Verdict{}, err
	}
	if err := decodeJSON(sources, &v.ContextSources); err != nil {
		return domain.Verdict{}, err
	}
	return v, nil
}

// SaveAssessment stores the first image assessment for an article.
func (r *SQLRepository) SaveAssessment(ctx context.Context, a domain.ImageAssessment) error {
	signals, err := json.Marshal(a.Signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}
	fallback := 0
	if a.Fallback {
		fallback = 1
	}

	query, args, err := r.sb.Insert("image_assessments").
		Columns("id", "article_id", "image_url", "match_count", "score", "status", "signals", "reasoning", "fallback", "assessed_at").
		Values(a.ID, a.ArticleID, a.ImageURL, a.MatchCount, a.AuthenticityScore, string(a.Status), string(signals), a.Reasoning, fallback, formatTime(a.AssessedAt)).
		Suffix("ON CONFLICT (article_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build assessment insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

// SaveStrategy stores the first strategy for an article.
func (r *SQLRepository) SaveStrategy(ctx context.Context, s domain.Strategy) error {
	actions, err := encodeList(s.Actions)
	if err != nil {
		return err
	}

	query, args, err := r.sb.Insert("strategies").
		Columns("id", "article_id", "summary", "actions", "priority", "tier", "created_at").
		Values(s.ID, s.ArticleID, s.Summary, actions, string(s.Priority), string(s.Tier), formatTime(s.CreatedAt)).
		Suffix("ON CONFLICT (article_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build strategy insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert strategy: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		a                   domain.Article
		published, ingested string
	)
	if err := row.Scan(&a.ID, &a.URL, &a.Title, &a.Body, &a.ImageURL, &a.Sector, &a.Source, &published, &ingested); err != nil {
		return domain.Article{}, err
	}
	a.PublishedAt = parseTime(published)
	a.IngestedAt = parseTime(ingested)
	return a, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal list: %w", err)
	}
	return string(payload), nil
}

func decodeJSON(payload string, out any) error {
	if payload == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("decode stored json: %w", err)
	}
	return nil
}
