// Package generator selects the generative backend for a request and decodes
// its JSON answer. Callers own the synthetic fallback.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/logging"
)

// ErrNoBackend reports that neither backend is configured.
var ErrNoBackend = errors.New("no generative backend configured")

// Prompt is a single system/user exchange.
type Prompt struct {
	System string
	User   string
}

// Backend is a chat-style text generation provider.
type Backend interface {
	Name() string
	// Usable reports whether the backend has a real credential.
	Usable() bool
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Generator applies strict primary-then-secondary precedence.
type Generator struct {
	primary   Backend
	secondary Backend
	logger    *slog.Logger
}

// New builds a Generator. Either backend may be nil.
func New(primary, secondary Backend, logger *slog.Logger) *Generator {
	return &Generator{
		primary:   primary,
		secondary: secondary,
		logger:    logging.OrDiscard(logger),
	}
}

// Select returns the backend that must serve the next request.
func (g *Generator) Select() (Backend, domain.Tier, bool) {
	if g == nil {
		return nil, domain.TierSynthetic, false
	}
	if g.primary != nil && g.primary.Usable() {
		return g.primary, domain.TierPrimary, true
	}
	if g.secondary != nil && g.secondary.Usable() {
		return g.secondary, domain.TierSecondary, true
	}
	return nil, domain.TierSynthetic, false
}

// Generate runs prompt against the selected backend and decodes the JSON reply
// into out. A failing backend is never retried against the other one.
func (g *Generator) Generate(ctx context.Context, prompt Prompt, out any) (domain.Tier, error) {
	backend, tier, ok := g.Select()
	if !ok {
		return domain.TierSynthetic, ErrNoBackend
	}

	raw, err := backend.Complete(ctx, prompt)
	if err != nil {
		return tier, fmt.Errorf("%s completion: %w", backend.Name(), err)
	}

	if err := DecodeJSON(raw, out); err != nil {
		return tier, fmt.Errorf("%s reply: %w", backend.Name(), err)
	}

	g.logger.Debug("generated content", "backend", backend.Name(), "tier", tier)
	return tier, nil
}

// DecodeJSON extracts the outermost JSON object from raw, tolerating code
// fences and surrounding prose.
func DecodeJSON(raw string, out any) error {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return errors.New("no json object in reply")
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
