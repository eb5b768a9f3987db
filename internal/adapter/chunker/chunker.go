package chunker

import (
	"docqa/internal/domain"
)

const (
	DefaultChunkSize = 1200
	DefaultOverlap   = 200
)

// Chunker splits document text into overlapping fixed-size chunks with
// stable byte offsets. Character-based; chunk boundaries ignore word and
// sentence structure.
type Chunker struct {
	chunkSize int
	overlap   int
}

func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, &domain.ConfigError{Field: "chunk_size", Reason: "must be > 0"}
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, &domain.ConfigError{Field: "overlap", Reason: "must be in [0, chunk_size)"}
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunk walks text in a single forward pass. Each chunk spans
// [i, min(i+chunkSize, len(text))) and the next chunk starts
// chunkSize-overlap bytes later, so consecutive chunks share overlap bytes
// and together the chunks cover every byte of text. The final chunk always
// ends at len(text). Empty text yields no chunks.
func (c *Chunker) Chunk(docName, text string) []domain.Chunk {
	n := len(text)
	if n == 0 {
		return nil
	}

	// Step is clamped so the walk always advances even for pathological
	// size/overlap pairs.
	step := c.chunkSize - c.overlap
	if step < 1 {
		step = 1
	}

	var chunks []domain.Chunk
	for i := 0; i < n; {
		end := i + c.chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, domain.Chunk{
			DocName: docName,
			ChunkID: len(chunks),
			Text:    text[i:end],
			Start:   i,
			End:     end,
		})
		if end == n {
			break
		}

		next := i + step
		if next <= i {
			// Safeguard: never revisit a start position.
			next = end
		}
		i = next
	}
	return chunks
}

// ChunkSize returns the configured nominal chunk size in bytes.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap in bytes.
func (c *Chunker) Overlap() int { return c.overlap }
