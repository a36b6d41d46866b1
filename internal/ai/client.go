// Package ai is the boundary to the external LLM completion service used for
// maintenance advice. It is a pass-through: prompt in, text out, no retries
// and no session memory.
package ai

import (
	"context"
	"errors"

	"github.com/careops/equiptrack/internal/config"
)

// ErrNotConfigured is returned by New when no credential pair is present
var ErrNotConfigured = errors.New("no LLM credentials configured")

// RequestTimeout bounds every upstream call. Exceeding it is treated as an
// upstream failure.
const RequestTimeout = 30 // seconds

// GenOptions tunes a single completion request
type GenOptions struct {
	MaxTokens   int
	Temperature float32
}

// Client generates a completion for a system prompt + user message pair
type Client interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts GenOptions) (string, error)
	Name() string
	Close()
}

// New selects a provider from the configured credentials: Gemini when a
// Gemini key is present, otherwise an OpenAI-compatible endpoint.
func New(ctx context.Context, cfg config.ChatConfig) (Client, error) {
	if cfg.GeminiAPIKey != "" {
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.OpenAIAPIKey != "" {
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	return nil, ErrNotConfigured
}
