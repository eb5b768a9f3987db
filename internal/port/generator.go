package port

import "context"

// Generator is the text-generation capability. Single synchronous attempt,
// no streaming; timeout policy belongs to the caller's context.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the generation model.
	ModelName() string
}
