package synthetic

import (
	"context"
	"strings"
	"testing"
	"time"

	"NewsVerifier/internal/random"
)

func TestFetchProducesCompleteArticles(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC) }
	gen := NewGenerator(random.New(5), now)

	result, err := gen.Fetch(context.Background(), "Health", 4)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if result.Source != SourceName || len(result.Articles) != 4 {
		t.Fatalf("unexpected result %+v", result)
	}

	seen := map[string]bool{}
	for i, a := range result.Articles {
		if a.Title == "" || a.Description == "" || a.PublishedAt == nil {
			t.Fatalf("incomplete article %+v", a)
		}
		if !strings.HasPrefix(a.URL, "https://synthetic.newsverifier.local/health/20240704-") {
			t.Fatalf("unexpected url %s", a.URL)
		}
		if seen[a.URL] {
			t.Fatalf("duplicate url %s", a.URL)
		}
		seen[a.URL] = true
		if (i%2 == 0) != (a.ImageURL != "") {
			t.Fatalf("unexpected image presence at %d", i)
		}
	}

	again, _ := NewGenerator(random.New(99), now).Fetch(context.Background(), "health", 4)
	for i := range again.Articles {
		if again.Articles[i].URL != result.Articles[i].URL {
			t.Fatalf("urls must be stable per day")
		}
	}
}
