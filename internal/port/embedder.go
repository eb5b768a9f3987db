package port

import "context"

// Embedder converts text into fixed-dimensionality vectors.
type Embedder interface {
	// Encode returns one vector per input text, same length and order as
	// the input. Every vector from one instance has the same dimension.
	Encode(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
