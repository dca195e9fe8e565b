// Package ai wraps the generative-search backends that discover and validate leads.
//
// Everything above this package talks to an Oracle: one prompt in, one block
// of model text out. Backends differ in transport and in how they ground
// answers in web search, but callers never see that. Responses are untrusted
// free text; ParseArray turns them into loosely-typed JSON for the discovery
// and validation clients to check field by field.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Provider names accepted in configuration.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Default models per provider. Discovery needs search grounding and careful
// extraction; validation is a quick consistency check and can use the
// cheaper model.
const (
	ModelSonnet = "claude-sonnet-4-5-20250929"
	ModelHaiku  = "claude-3-5-haiku-20241022"

	ModelGeminiPro   = "gemini-3-pro-preview"
	ModelGeminiFlash = "gemini-3-flash-preview"
)

// ErrEmptyResponse is returned by a backend that answered without any text.
var ErrEmptyResponse = errors.New("oracle returned an empty response")

// Request is a single call to the oracle.
type Request struct {
	// Operation names the call in logs and errors ("discovery", "validation").
	Operation string

	// Prompt is the full user prompt.
	Prompt string

	// Schema is an optional JSON schema the answer must follow.
	Schema json.RawMessage

	// WebSearch lets the backend ground the answer in live search results.
	WebSearch bool

	// Model overrides the backend's default model when non-empty.
	Model string

	// MaxTokens caps the answer length (0 = backend default).
	MaxTokens int
}

// Oracle is the external generative-search service.
type Oracle interface {
	// Generate sends one request and returns the raw model text.
	Generate(ctx context.Context, req Request) (string, error)

	// Name identifies the backend for provenance tags ("anthropic", "gemini").
	Name() string
}

// Config selects and configures a backend.
type Config struct {
	Provider string // anthropic (default) or gemini
	APIKey   string // resolved by the caller (flag, env or keyring)
	BaseURL  string // optional endpoint override, mostly for tests

	// DiscoveryModel and ValidationModel override the per-operation defaults.
	DiscoveryModel  string
	ValidationModel string

	// MaxSearches caps web-search tool uses per discovery call (anthropic only).
	MaxSearches int

	Gate GateConfig
}

// New builds the configured backend wrapped in a Gate.
func New(cfg Config) (Oracle, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderAnthropic
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key not set", provider)
	}

	var backend Oracle
	switch provider {
	case ProviderAnthropic:
		backend = NewAnthropicOracle(cfg)
	case ProviderGemini:
		g, err := NewGeminiOracle(cfg)
		if err != nil {
			return nil, err
		}
		backend = g
	default:
		return nil, fmt.Errorf("unknown provider %q (want %s or %s)", cfg.Provider, ProviderAnthropic, ProviderGemini)
	}

	return NewGate(backend, cfg.Gate)
}

// APIKeyEnv returns the environment variable conventionally holding the
// provider's key.
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "ANTHROPIC_API_KEY"
	}
}

// APIKeyFromEnv reads the provider's key from the environment.
// Gemini also honours GOOGLE_API_KEY.
func APIKeyFromEnv(provider string) string {
	if key := os.Getenv(APIKeyEnv(provider)); key != "" {
		return key
	}
	if strings.EqualFold(provider, ProviderGemini) {
		return os.Getenv("GOOGLE_API_KEY")
	}
	return ""
}

// truncate shortens s for log lines and error messages.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
