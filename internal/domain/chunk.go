package domain

import "fmt"

// Chunk is the relational anchor for one indexed unit of a reference's
// content. Its ID is the join key used by both the content store and the
// vector index. ChunkNumber is 0-based and TotalChunks is identical across
// all chunks of one reference.
type Chunk struct {
	ID          string
	ReferenceID string
	ChunkNumber int
	TotalChunks int
}

// ChunkContent is the content store document holding a chunk's text body,
// keyed 1:1 by chunk ID.
type ChunkContent struct {
	ChunkID string
	Content string
}

// ChunkVector is the vector index record for a chunk. ReferenceID is
// denormalized so similarity searches can be filtered to a caller-specified
// reference set without a join.
type ChunkVector struct {
	ChunkID     string
	ReferenceID string
	Embedding   []float32
}

// ValidateChunk validates a Chunk instance
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("chunk ID is required")
	}

	if c.ReferenceID == "" {
		return fmt.Errorf("chunk ReferenceID is required")
	}

	if c.ChunkNumber < 0 {
		return fmt.Errorf("chunk ChunkNumber cannot be negative")
	}

	if c.TotalChunks <= c.ChunkNumber {
		return fmt.Errorf("chunk TotalChunks must be greater than ChunkNumber")
	}

	return nil
}
