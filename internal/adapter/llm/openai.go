package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"docqa/internal/domain"
)

// OpenAIGenerator answers prompts through an OpenAI-compatible chat
// completion API. One synchronous attempt per call; failures surface as
// domain.BackendError.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenAIGenerator(apiKeyEnv, model, baseURL string, temperature float32) (*OpenAIGenerator, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &domain.BackendError{Backend: "generation", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.BackendError{Backend: "generation", Err: fmt.Errorf("no choices in response")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *OpenAIGenerator) ModelName() string { return g.model }
