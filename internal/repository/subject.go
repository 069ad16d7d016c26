package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/you-education/examref/internal/domain"
)

type SubjectRepository struct {
	db dbtx
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{db: pool}
}

func (r *SubjectRepository) Create(ctx context.Context, s *domain.Subject) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO subjects (id, name, color) VALUES ($1, $2, $3)`,
		s.ID, s.Name, s.Color,
	)
	if isUniqueViolation(err) {
		return domain.ErrSubjectAlreadyExists
	}
	return err
}

func (r *SubjectRepository) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	var s domain.Subject
	err := r.db.QueryRow(ctx,
		`SELECT id, name, color FROM subjects WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Name, &s.Color)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubjectNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SubjectRepository) List(ctx context.Context) ([]*domain.Subject, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, color FROM subjects ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Subject
	for rows.Next() {
		var s domain.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Color); err != nil {
			return nil, err
		}
		results = append(results, &s)
	}
	return results, rows.Err()
}

func (r *SubjectRepository) Update(ctx context.Context, s *domain.Subject) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE subjects SET name = $1, color = $2 WHERE id = $3`,
		s.Name, s.Color, s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSubjectAlreadyExists
		}
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSubjectNotFound
	}
	return nil
}

// Delete removes a subject. Its exams, their references and chunk rows go
// with it via cascade.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM subjects WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSubjectNotFound
	}
	return nil
}
