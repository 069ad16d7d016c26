package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/you-education/examref/internal/domain"
)

// ChunkRepository persists the relational chunk rows that anchor content
// documents and vector records.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// Create inserts one chunk row. The (reference_id, chunk_number) uniqueness
// constraint rejects duplicate rows under concurrent retries.
func (r *ChunkRepository) Create(ctx context.Context, c *domain.Chunk) error {
	if err := domain.ValidateChunk(c); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO chunks (id, reference_id, chunk_number, total_chunks)
		 VALUES ($1, $2, $3, $4)`,
		c.ID, c.ReferenceID, c.ChunkNumber, c.TotalChunks,
	)
	if isUniqueViolation(err) {
		return domain.WrapDomainError(domain.ErrCatalogWriteFailed, err)
	}
	return err
}

func (r *ChunkRepository) GetByID(ctx context.Context, id string) (*domain.Chunk, error) {
	var c domain.Chunk
	err := r.db.QueryRow(ctx,
		`SELECT id, reference_id, chunk_number, total_chunks FROM chunks WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.ReferenceID, &c.ChunkNumber, &c.TotalChunks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByReference returns a reference's chunk rows in chunk_number order.
// Downstream consumers concatenate content in this order, so it must match
// the order the segmenter produced.
func (r *ChunkRepository) ListByReference(ctx context.Context, referenceID string) ([]*domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, reference_id, chunk_number, total_chunks
		 FROM chunks WHERE reference_id = $1 ORDER BY chunk_number`,
		referenceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.ReferenceID, &c.ChunkNumber, &c.TotalChunks); err != nil {
			return nil, err
		}
		results = append(results, &c)
	}
	return results, rows.Err()
}

func (r *ChunkRepository) CountByReference(ctx context.Context, referenceID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE reference_id = $1`,
		referenceID,
	).Scan(&count)
	return count, err
}

// DeleteByReference removes all chunk rows of a reference and returns how
// many were deleted. Deleting zero rows is not an error.
func (r *ChunkRepository) DeleteByReference(ctx context.Context, referenceID string) (int, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM chunks WHERE reference_id = $1`,
		referenceID,
	)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
