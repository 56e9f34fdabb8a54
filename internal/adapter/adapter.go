// Package adapter provides a unified interface for LLM providers.
package adapter

import (
	"context"
	"fmt"
	"strings"
)

// Provider name constants.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Limits accepted by CompletionRequest.Validate.
const (
	MaxCompletionTokens = 32768
	MaxTemperature      = 2.0
)

// CompletionRequest holds the parameters for a completion call.
type CompletionRequest struct {
	SystemPrompt string
	UserMessage  string
	// Model overrides the adapter's default model when set.
	Model       string
	MaxTokens   int
	Temperature float64
}

// Validate checks the generation parameters before a request is sent.
func (r CompletionRequest) Validate() error {
	if r.MaxTokens < 1 || r.MaxTokens > MaxCompletionTokens {
		return fmt.Errorf("adapter: max tokens must be in [1, %d], got %d", MaxCompletionTokens, r.MaxTokens)
	}
	if r.Temperature < 0 || r.Temperature > MaxTemperature {
		return fmt.Errorf("adapter: temperature must be in [0, %.0f], got %g", MaxTemperature, r.Temperature)
	}
	if strings.TrimSpace(r.UserMessage) == "" {
		return fmt.Errorf("adapter: empty user message")
	}
	return nil
}

// ModelInfo describes the model an adapter talks to.
type ModelInfo struct {
	Name             string
	Provider         string
	MaxContextWindow int
}

// LLMAdapter is the common interface all provider adapters implement.
type LLMAdapter interface {
	// Complete sends a prompt and returns the full response text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Info returns metadata about the adapter/model.
	Info() ModelInfo
}

// New constructs the LLMAdapter for the named provider.
//
//   - provider: "claude", "openai", "groq", "gemini", "ollama"
//   - model: default model name; empty picks the provider default
//   - apiKey: provider API key (empty = read from env in the concrete adapter)
//   - ollamaHost: base URL for the Ollama server (used only when provider == "ollama")
func New(provider, model, apiKey, ollamaHost string) (LLMAdapter, error) {
	switch strings.ToLower(provider) {
	case ProviderClaude, "anthropic":
		return NewClaude(apiKey, model), nil
	case ProviderOpenAI:
		return NewOpenAI(apiKey, model), nil
	case ProviderGroq:
		return NewGroq(apiKey, model), nil
	case ProviderGemini:
		return NewGemini(apiKey, model), nil
	case ProviderOllama:
		host := ollamaHost
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllama(host, model), nil
	default:
		return nil, fmt.Errorf("adapter: unknown provider %q; valid providers: claude, openai, groq, gemini, ollama", provider)
	}
}

func pickModel(reqModel, adapterModel string) string {
	if reqModel != "" {
		return reqModel
	}
	return adapterModel
}
