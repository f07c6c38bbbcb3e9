package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"NewsVerifier/internal/config"
	"NewsVerifier/internal/generator"
)

const defaultTimeout = 30 * time.Second

// OpenAIBackend implements generator.Backend backed by OpenAI-compatible APIs.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	apiKey      string
	temperature float32
}

var _ generator.Backend = (*OpenAIBackend)(nil)

// NewOpenAIBackend builds a backend from configuration.
func NewOpenAIBackend(cfg config.PrimaryConfig) *OpenAIBackend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIBackend{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
	}
}

// Name identifies the backend in logs.
func (b *OpenAIBackend) Name() string { return "openai" }

// Usable reports whether a real credential and model are configured.
func (b *OpenAIBackend) Usable() bool {
	return b != nil && b.model != "" && config.UsableKey(b.apiKey)
}

// Complete sends the prompt as a JSON-mode chat completion.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt generator.Prompt) (string, error) {
	if !b.Usable() {
		return "", fmt.Errorf("openai backend misconfigured")
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system := strings.TrimSpace(prompt.System); system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt.User})

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    messages,
		Temperature: b.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
