package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/telemetry"
	"github.com/you-education/examref/internal/vectorindex"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChunkRepositoryInterface defines the catalog operations on chunk rows
type ChunkRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Chunk) error
	GetByID(ctx context.Context, id string) (*domain.Chunk, error)
	ListByReference(ctx context.Context, referenceID string) ([]*domain.Chunk, error)
	CountByReference(ctx context.Context, referenceID string) (int, error)
	DeleteByReference(ctx context.Context, referenceID string) (int, error)
}

// ContentStoreInterface defines the content document operations
type ContentStoreInterface interface {
	Insert(ctx context.Context, referenceID string, content *domain.ChunkContent) error
	Get(ctx context.Context, chunkID string) (*domain.ChunkContent, error)
	Delete(ctx context.Context, chunkID string) error
	DeleteByReference(ctx context.Context, referenceID string) (int, error)
}

// VectorIndexInterface defines the vector record operations
type VectorIndexInterface interface {
	Insert(ctx context.Context, v *domain.ChunkVector) error
	Search(ctx context.Context, embedding []float32, referenceIDs []string, limit int) ([]vectorindex.Match, error)
	DeleteByChunk(ctx context.Context, chunkID string) error
	DeleteByReference(ctx context.Context, referenceID string) (int, error)
}

// UUIDGenerator generates UUIDs (interface for testability)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// IngestionCoordinator persists every segment of a reference across the
// catalog, content store and vector index. The fan-out is a saga: each
// segment runs catalog insert, content insert, embed, vector insert in
// order, and the first failure rolls the whole reference back so no partial
// reference is ever queryable.
type IngestionCoordinator struct {
	chunkRepo ChunkRepositoryInterface
	content   ContentStoreInterface
	embedder  EmbeddingClient
	vectors   VectorIndexInterface
	uuidGen   UUIDGenerator
}

func NewIngestionCoordinator(
	chunkRepo ChunkRepositoryInterface,
	content ContentStoreInterface,
	embedder EmbeddingClient,
	vectors VectorIndexInterface,
	uuidGen UUIDGenerator,
) *IngestionCoordinator {
	return &IngestionCoordinator{
		chunkRepo: chunkRepo,
		content:   content,
		embedder:  embedder,
		vectors:   vectors,
		uuidGen:   uuidGen,
	}
}

// Ingest persists the ordered segments of a reference and returns how many
// chunks were written. Any failure aborts the whole ingestion and removes
// every chunk row, content document and vector record already written for
// this reference.
func (c *IngestionCoordinator) Ingest(ctx context.Context, referenceID string, segments []string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestionCoordinator.Ingest", telemetry.SpanAttributes{
		ReferenceID: referenceID,
		Operation:   "ingest",
	})
	defer span.End()

	total := len(segments)
	if total == 0 {
		return 0, nil
	}

	for i, segment := range segments {
		if err := ctx.Err(); err != nil {
			c.rollback(ctx, referenceID)
			return 0, err
		}

		chunk := &domain.Chunk{
			ID:          c.uuidGen.NewString(),
			ReferenceID: referenceID,
			ChunkNumber: i,
			TotalChunks: total,
		}
		if err := c.chunkRepo.Create(ctx, chunk); err != nil {
			c.rollback(ctx, referenceID)
			return 0, wrapIngestionErr(domain.ErrCatalogWriteFailed, err)
		}

		if err := c.content.Insert(ctx, referenceID, &domain.ChunkContent{ChunkID: chunk.ID, Content: segment}); err != nil {
			c.rollback(ctx, referenceID)
			return 0, wrapIngestionErr(domain.ErrContentWriteFailed, err)
		}

		embedding, err := c.embedder.GenerateEmbedding(ctx, segment)
		if err != nil {
			c.rollback(ctx, referenceID)
			return 0, wrapIngestionErr(domain.ErrEmbeddingUnavailable, err)
		}

		if err := c.vectors.Insert(ctx, &domain.ChunkVector{
			ChunkID:     chunk.ID,
			ReferenceID: referenceID,
			Embedding:   embedding,
		}); err != nil {
			c.rollback(ctx, referenceID)
			return 0, wrapIngestionErr(domain.ErrVectorWriteFailed, err)
		}
	}

	return total, nil
}

// rollback removes everything written for the reference so far. It runs on
// a context detached from the caller's cancellation, otherwise a canceled
// ingestion could never clean up after itself.
func (c *IngestionCoordinator) rollback(ctx context.Context, referenceID string) {
	cleanupCtx := context.WithoutCancel(ctx)

	if _, err := c.vectors.DeleteByReference(cleanupCtx, referenceID); err != nil {
		log.Printf("ingestion rollback: failed to delete vectors for reference %s: %v", referenceID, err)
	}
	if _, err := c.content.DeleteByReference(cleanupCtx, referenceID); err != nil {
		log.Printf("ingestion rollback: failed to delete content for reference %s: %v", referenceID, err)
	}
	if _, err := c.chunkRepo.DeleteByReference(cleanupCtx, referenceID); err != nil {
		log.Printf("ingestion rollback: failed to delete chunk rows for reference %s: %v", referenceID, err)
	}
}

// wrapIngestionErr keeps already-tagged domain errors as-is and tags raw
// store errors with the step's sentinel.
func wrapIngestionErr(sentinel *domain.DomainError, err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	return domain.WrapDomainError(sentinel, err)
}
