package embedding

import (
	"context"
	"math"
)

// LocalEmbedder produces deterministic vectors without any network
// dependency: each text's bytes are hashed into fixed buckets and the
// result is L2-normalized. Retrieval quality is crude but stable, which is
// what offline setups and tests need.
type LocalEmbedder struct {
	dimension int
}

func NewLocalEmbedder(dimension int) *LocalEmbedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &LocalEmbedder{dimension: dimension}
}

func (e *LocalEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *LocalEmbedder) embed(text string) []float32 {
	v := make([]float32, e.dimension)

	// Hash overlapping byte trigrams so nearby texts land near each other.
	b := []byte(text)
	for i := 0; i < len(b); i++ {
		h := uint32(b[i])
		if i+1 < len(b) {
			h = h*31 + uint32(b[i+1])
		}
		if i+2 < len(b) {
			h = h*31 + uint32(b[i+2])
		}
		v[h%uint32(e.dimension)] += 1
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range v {
			v[i] *= inv
		}
	}
	return v
}

func (e *LocalEmbedder) Dimension() int { return e.dimension }

func (e *LocalEmbedder) ModelName() string { return "local-trigram" }
