package domain

import "time"

// Chunk is a bounded span of a document's normalized text, embedded and
// indexed independently. Identity is (DocumentID, Index).
type Chunk struct {
	DocumentID  string
	Index       int
	Content     string
	StartOffset int
	EndOffset   int
	Page        int
	Embedding   []float32
	CreatedAt   time.Time
}

// ChunkMatch is a chunk returned from a similarity search. Score is raw
// cosine similarity in [-1, 1]; the same value is used for threshold
// filtering and shown to callers unchanged.
type ChunkMatch struct {
	Chunk    Chunk
	Filename string
	Score    float32
}
