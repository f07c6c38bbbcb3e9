// Package synthetic produces placeholder articles when every real provider
// is unavailable.
package synthetic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/ports"
	"NewsVerifier/internal/random"
)

// SourceName labels articles produced by this tier.
const SourceName = "synthetic"

const baseURL = "https://synthetic.newsverifier.local"

var subjects = map[string][]string{
	"technology": {"a chipmaker", "an open-source foundation", "a cloud provider", "a robotics startup"},
	"politics":   {"the parliament", "a coalition government", "the election commission", "a city council"},
	"health":     {"the health ministry", "a vaccine developer", "a university hospital", "regional clinics"},
	"business":   {"the central bank", "a retail chain", "an airline", "a logistics group"},
	"science":    {"a space agency", "a research institute", "an oceanography team", "a physics lab"},
	"sports":     {"the national team", "a football club", "the tournament organizers", "an Olympic committee"},
}

var actions = []string{
	"announces a new initiative",
	"reports quarterly results",
	"faces criticism over recent decision",
	"publishes long-awaited study",
	"confirms leadership change",
	"responds to viral claims",
}

var details = []string{
	"Officials said further details would be released in the coming weeks.",
	"Independent observers urged caution until the figures are verified.",
	"The announcement drew mixed reactions on social media.",
	"Experts noted that similar claims have circulated before.",
}

// Generator implements the last-resort tier. It never fails.
type Generator struct {
	rnd *random.Source
	now func() time.Time
}

var _ ports.ArticleProvider = (*Generator)(nil)

// NewGenerator builds a generator; nil now uses time.Now.
func NewGenerator(rnd *random.Source, now func() time.Time) *Generator {
	if rnd == nil {
		rnd = random.New(0)
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{rnd: rnd, now: now}
}

// Name identifies the tier in ingestion logs.
func (g *Generator) Name() string { return SourceName }

// Fetch fabricates count articles. URLs are stable per sector and day so
// repeated runs stay idempotent.
func (g *Generator) Fetch(ctx context.Context, sector string, count int) (domain.FetchResult, error) {
	if count <= 0 {
		count = 1
	}
	sector = strings.ToLower(strings.TrimSpace(sector))
	if sector == "" {
		sector = "general"
	}

	pool, ok := subjects[sector]
	if !ok {
		pool = []string{"local authorities", "an industry group", "a nonprofit", "a regional agency"}
	}

	now := g.now().UTC()
	day := now.Format("20060102")
	articles := make([]domain.RawArticle, 0, count)
	for i := 0; i < count; i++ {
		subject := pool[g.rnd.IntN(len(pool))]
		action := actions[g.rnd.IntN(len(actions))]
		published := now.Add(-time.Duration(g.rnd.Between(5, 360)) * time.Minute)

		article := domain.RawArticle{
			Title:       fmt.Sprintf("%s %s", capitalize(subject), action),
			Description: fmt.Sprintf("In %s news, %s %s. %s", sector, subject, action, details[g.rnd.IntN(len(details))]),
			URL:         fmt.Sprintf("%s/%s/%s-%d", baseURL, sector, day, i+1),
			Source:      SourceName,
			PublishedAt: &published,
		}
		if i%2 == 0 {
			article.ImageURL = fmt.Sprintf("%s/%s/%s-%d.jpg", baseURL, sector, day, i+1)
		}
		articles = append(articles, article)
	}

	return domain.FetchResult{Articles: articles, Source: SourceName}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
