package vectorindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/you-education/examref/internal/domain"
)

// Match is one similarity search hit. Distance is cosine distance, so lower
// means more similar and 0 means identical direction.
type Match struct {
	ChunkID  string
	Distance float64
}

// Index stores and searches chunk embeddings in the chunk_vectors table.
// Rows are not foreign-keyed to the catalog: the coordinators own the
// lifecycle of each record explicitly.
type Index struct {
	pool       *pgxpool.Pool
	dimensions int
}

func NewIndex(pool *pgxpool.Pool, dimensions int) *Index {
	return &Index{pool: pool, dimensions: dimensions}
}

// Insert writes one embedding record. The dimension check fails fast before
// the database rejects a mismatched vector.
func (i *Index) Insert(ctx context.Context, v *domain.ChunkVector) error {
	if len(v.Embedding) != i.dimensions {
		return domain.WrapDomainError(domain.ErrVectorWriteFailed,
			fmt.Errorf("embedding has %d dimensions, index expects %d", len(v.Embedding), i.dimensions))
	}
	_, err := i.pool.Exec(ctx,
		`INSERT INTO chunk_vectors (chunk_id, reference_id, embedding) VALUES ($1, $2, $3)`,
		v.ChunkID, v.ReferenceID, pgvector.NewVector(v.Embedding),
	)
	if err != nil {
		return domain.WrapDomainError(domain.ErrVectorWriteFailed, err)
	}
	return nil
}

// Search returns the closest matches among the given reference ids, ordered
// by ascending cosine distance. An empty reference id set matches nothing.
func (i *Index) Search(ctx context.Context, embedding []float32, referenceIDs []string, limit int) ([]Match, error) {
	if len(referenceIDs) == 0 {
		return nil, nil
	}

	rows, err := i.pool.Query(ctx,
		`SELECT chunk_id, embedding <=> $1 AS distance
		 FROM chunk_vectors
		 WHERE reference_id = ANY($2)
		 ORDER BY distance
		 LIMIT $3`,
		pgvector.NewVector(embedding), referenceIDs, limit,
	)
	if err != nil {
		return nil, domain.WrapDomainError(domain.ErrRetrievalUnavailable, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ChunkID, &m.Distance); err != nil {
			return nil, domain.WrapDomainError(domain.ErrRetrievalUnavailable, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapDomainError(domain.ErrRetrievalUnavailable, err)
	}
	return matches, nil
}

// DeleteByChunk removes one chunk's record. Missing records are ignored.
func (i *Index) DeleteByChunk(ctx context.Context, chunkID string) error {
	_, err := i.pool.Exec(ctx, `DELETE FROM chunk_vectors WHERE chunk_id = $1`, chunkID)
	return err
}

// DeleteByReference removes every record of a reference and returns how many
// were deleted.
func (i *Index) DeleteByReference(ctx context.Context, referenceID string) (int, error) {
	cmdTag, err := i.pool.Exec(ctx, `DELETE FROM chunk_vectors WHERE reference_id = $1`, referenceID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
