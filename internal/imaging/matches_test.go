package imaging

import (
	"context"
	"testing"

	"NewsVerifier/internal/domain"
)

type stubSearcher struct{ set domain.SearchResultSet }

func (s stubSearcher) Search(ctx context.Context, query string, categories ...string) domain.SearchResultSet {
	return s.set
}

func TestSearchMatchCounter(t *testing.T) {
	t.Parallel()

	real := stubSearcher{set: domain.SearchResultSet{Source: "searxng", Results: make([]domain.SearchResult, 3)}}
	if got := NewSearchMatchCounter(real).CountMatches(context.Background(), "https://img"); got != 3 {
		t.Fatalf("expected 3 matches, got %d", got)
	}

	mock := stubSearcher{set: domain.SearchResultSet{Source: domain.SearchSourceMock, Results: make([]domain.SearchResult, 3)}}
	if got := NewSearchMatchCounter(mock).CountMatches(context.Background(), "https://img"); got != 0 {
		t.Fatalf("mock results must count as 0, got %d", got)
	}
}
