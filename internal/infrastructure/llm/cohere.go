package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"NewsVerifier/internal/config"
	"NewsVerifier/internal/generator"
)

// CohereBackend implements generator.Backend with the Cohere chat API.
type CohereBackend struct {
	client      *cohereclient.Client
	model       string
	apiKey      string
	temperature float64
}

var _ generator.Backend = (*CohereBackend)(nil)

// NewCohereBackend builds a backend from configuration.
func NewCohereBackend(cfg config.SecondaryConfig) *CohereBackend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := cohereclient.NewClient(
		cohereclient.WithToken(cfg.APIKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	return &CohereBackend{
		client:      client,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
	}
}

// Name identifies the backend in logs.
func (b *CohereBackend) Name() string { return "cohere" }

// Usable reports whether a real Cohere API key is configured.
func (b *CohereBackend) Usable() bool {
	return b != nil && config.UsableKey(b.apiKey)
}

// Complete sends the user message with the system prompt as preamble.
func (b *CohereBackend) Complete(ctx context.Context, prompt generator.Prompt) (string, error) {
	if !b.Usable() {
		return "", fmt.Errorf("cohere backend misconfigured")
	}

	req := &cohere.ChatRequest{
		Message:     prompt.User,
		Temperature: &b.temperature,
	}
	if system := strings.TrimSpace(prompt.System); system != "" {
		req.Preamble = &system
	}
	if b.model != "" {
		model := b.model
		req.Model = &model
	}

	resp, err := b.client.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("cohere chat: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("cohere returned empty reply")
	}

	return resp.Text, nil
}
