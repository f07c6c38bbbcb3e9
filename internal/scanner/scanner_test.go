package scanner

import (
	"context"
	"strings"
	"testing"

	"NewsVerifier/internal/domain"
)

type namedScanner string

func (n namedScanner) Name() string { return string(n) }
func (n namedScanner) Scan(ctx context.Context, req Request) ([]domain.RawArticle, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(namedScanner("rss"), namedScanner("html"))
	if _, err := reg.Resolve("rss"); err != nil {
		t.Fatalf("resolve rss: %v", err)
	}
	if _, err := reg.Resolve("arxiv"); err == nil || !strings.Contains(err.Error(), "known: html, rss") {
		t.Fatalf("expected error listing known scanners, got %v", err)
	}
	if names := reg.Names(); len(names) != 2 || names[0] != "html" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestRequestOption(t *testing.T) {
	t.Parallel()

	req := Request{Options: map[string]string{"link_selector": "h2 a", "empty": ""}}
	if req.Option("link_selector", "a") != "h2 a" || req.Option("empty", "x") != "x" || req.Option("missing", "y") != "y" {
		t.Fatalf("unexpected option resolution")
	}
}
