package embedding

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"docqa/internal/domain"
)

// OpenAIEmbedder generates embeddings through an OpenAI-compatible API.
// Batch-oriented, single attempt per call; network failures surface as
// domain.BackendError and retry policy stays with the caller.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
}

// NewOpenAIEmbedder reads the API key from the named environment variable.
// baseURL overrides the default endpoint for compatible providers; pass ""
// for api.openai.com.
func NewOpenAIEmbedder(apiKeyEnv, model, baseURL string) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	dimension := 1536
	switch model {
	case "text-embedding-3-small":
		dimension = 1536
	case "text-embedding-3-large":
		dimension = 3072
	case "text-embedding-ada-002":
		dimension = 1536
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		dimension: dimension,
	}, nil
}

func (e *OpenAIEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, &domain.BackendError{Backend: "embedding", Err: err}
	}
	if len(resp.Data) != len(texts) {
		return nil, &domain.BackendError{
			Backend: "embedding",
			Err:     fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(texts)),
		}
	}

	// The API may return items out of order; Index is authoritative.
	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			continue
		}
		v := make([]float32, len(item.Embedding))
		for i := range item.Embedding {
			v[i] = float32(item.Embedding[i])
		}
		vectors[item.Index] = v
	}
	for i, v := range vectors {
		if v == nil {
			return nil, &domain.BackendError{
				Backend: "embedding",
				Err:     fmt.Errorf("missing embedding for input %d", i),
			}
		}
	}

	return vectors, nil
}

func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

func (e *OpenAIEmbedder) ModelName() string { return e.model }
