package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/you-education/examref/internal/domain"
)

// ReferenceRepository persists the reference rows of the catalog.
type ReferenceRepository struct {
	db dbtx
}

func NewReferenceRepository(pool *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{db: pool}
}

func NewReferenceRepositoryWithTx(tx pgx.Tx) *ReferenceRepository {
	return &ReferenceRepository{db: tx}
}

func (r *ReferenceRepository) Create(ctx context.Context, ref *domain.Reference) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO exam_references (id, exam_id, kind, name) VALUES ($1, $2, $3, $4)`,
		ref.ID, ref.ExamID, ref.Kind, ref.Name,
	)
	if isUniqueViolation(err) {
		return domain.ErrReferenceAlreadyExists
	}
	return err
}

func (r *ReferenceRepository) GetByID(ctx context.Context, id string) (*domain.Reference, error) {
	var ref domain.Reference
	err := r.db.QueryRow(ctx,
		`SELECT id, exam_id, kind, name FROM exam_references WHERE id = $1`,
		id,
	).Scan(&ref.ID, &ref.ExamID, &ref.Kind, &ref.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReferenceNotFound
		}
		return nil, err
	}
	return &ref, nil
}

// GetByExamAndID resolves a reference within one exam, so callers cannot
// reach another exam's references by guessing IDs.
func (r *ReferenceRepository) GetByExamAndID(ctx context.Context, examID, id string) (*domain.Reference, error) {
	var ref domain.Reference
	err := r.db.QueryRow(ctx,
		`SELECT id, exam_id, kind, name FROM exam_references WHERE id = $1 AND exam_id = $2`,
		id, examID,
	).Scan(&ref.ID, &ref.ExamID, &ref.Kind, &ref.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReferenceNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func (r *ReferenceRepository) ExistsByName(ctx context.Context, examID, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM exam_references WHERE exam_id = $1 AND name = $2)`,
		examID, name,
	).Scan(&exists)
	return exists, err
}

func (r *ReferenceRepository) ListByExam(ctx context.Context, examID string) ([]*domain.Reference, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, exam_id, kind, name FROM exam_references WHERE exam_id = $1 ORDER BY name, id`,
		examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReferenceRows(rows)
}

// ListByExamAndIDs returns the subset of ids that exist and belong to the
// exam, in name order. Callers compare lengths to detect foreign or missing
// references.
func (r *ReferenceRepository) ListByExamAndIDs(ctx context.Context, examID string, ids []string) ([]*domain.Reference, error) {
	if len(ids) == 0 {
		return []*domain.Reference{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, exam_id, kind, name FROM exam_references
		 WHERE exam_id = $1 AND id = ANY($2) ORDER BY name, id`,
		examID, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReferenceRows(rows)
}

// Delete removes a reference row; its chunk rows cascade.
func (r *ReferenceRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM exam_references WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrReferenceNotFound
	}
	return nil
}

func scanReferenceRows(rows pgx.Rows) ([]*domain.Reference, error) {
	var results []*domain.Reference
	for rows.Next() {
		var ref domain.Reference
		if err := rows.Scan(&ref.ID, &ref.ExamID, &ref.Kind, &ref.Name); err != nil {
			return nil, err
		}
		results = append(results, &ref)
	}
	return results, rows.Err()
}
