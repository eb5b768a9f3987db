package domain

// Document is one ingested file: its display name, where it came from, and
// the extracted raw text. Produced by a DocumentSource, never mutated.
type Document struct {
	Name string
	Path string
	Text string
}

// Chunk is a bounded substring of a document used as the unit of embedding
// and citation. ChunkID is a zero-based sequence number within the document;
// Start and End are byte offsets into the document text, Start < End.
type Chunk struct {
	DocName string
	ChunkID int
	Text    string
	Start   int
	End     int
}

// ChunkRecord is the metadata row persisted alongside one vector row.
// Record order in the metadata file is identical to vector row order.
type ChunkRecord struct {
	DocName string `json:"doc_name"`
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
}

// QueryResult is one nearest-neighbor hit. Distance is a squared Euclidean
// distance, so lower means closer.
type QueryResult struct {
	Distance float64 `json:"distance"`
	DocName  string  `json:"doc_name"`
	ChunkID  int     `json:"chunk_id"`
	Text     string  `json:"text"`
}

// Citation identifies a chunk the answer drew from.
type Citation struct {
	DocName string `json:"doc_name"`
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
}

// Answer is the final grounded response for one question.
type Answer struct {
	Text      string     `json:"answer"`
	Sources   []Citation `json:"sources"`
	LatencyMS int64      `json:"latency_ms"`
}
