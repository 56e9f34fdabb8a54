package adapter

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel = "gpt-4o"
	defaultGroqModel   = "llama-3.1-8b-instant"

	// GroqBaseURL is Groq's OpenAI-compatible endpoint.
	GroqBaseURL = "https://api.groq.com/openai/v1"
)

// openaiAdapter implements LLMAdapter for OpenAI and OpenAI-compatible APIs.
type openaiAdapter struct {
	client   *openai.Client
	model    string
	provider string
	window   int
}

// NewOpenAI creates an OpenAI adapter. If apiKey is empty, OPENAI_API_KEY is used.
func NewOpenAI(apiKey, model string) LLMAdapter {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openaiAdapter{
		client:   openai.NewClient(apiKey),
		model:    model,
		provider: ProviderOpenAI,
		window:   128000,
	}
}

// NewGroq creates an adapter for Groq's OpenAI-compatible API. If apiKey is
// empty, GROQ_API_KEY is used.
func NewGroq(apiKey, model string) LLMAdapter {
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if model == "" {
		model = defaultGroqModel
	}
	return newOpenAICompatible(apiKey, GroqBaseURL, model, ProviderGroq, 8192)
}

func newOpenAICompatible(apiKey, baseURL, model, provider string, window int) *openaiAdapter {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &openaiAdapter{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		provider: provider,
		window:   window,
	}
}

func (o *openaiAdapter) Info() ModelInfo {
	return ModelInfo{
		Name:             o.model,
		Provider:         o.provider,
		MaxContextWindow: o.window,
	}
}

func (o *openaiAdapter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	messages := []openai.ChatCompletionMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserMessage,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       pickModel(req.Model, o.model),
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%s complete: %w", o.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s complete: no choices in response", o.provider)
	}
	return resp.Choices[0].Message.Content, nil
}
