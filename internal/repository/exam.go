package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/pagination"
)

type ExamPageResult struct {
	Items      []*domain.Exam
	NextCursor string
	HasMore    bool
}

type ExamRepository struct {
	db dbtx
}

func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{db: pool}
}

func (r *ExamRepository) Create(ctx context.Context, e *domain.Exam) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO exams (id, subject_id, name, description, exam_at, total_hours)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.SubjectID, e.Name, nullableString(e.Description), e.ExamAt, e.TotalHours,
	)
	if isUniqueViolation(err) {
		return domain.ErrExamAlreadyExists
	}
	return err
}

func (r *ExamRepository) GetByID(ctx context.Context, id string) (*domain.Exam, error) {
	var e domain.Exam
	var description *string
	err := r.db.QueryRow(ctx,
		`SELECT id, subject_id, name, description, exam_at, total_hours
		 FROM exams WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.SubjectID, &e.Name, &description, &e.ExamAt, &e.TotalHours)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExamNotFound
		}
		return nil, err
	}
	if description != nil {
		e.Description = *description
	}
	return &e, nil
}

func (r *ExamRepository) ListBySubject(ctx context.Context, subjectID string) ([]*domain.Exam, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, subject_id, name, description, exam_at, total_hours
		 FROM exams WHERE subject_id = $1 ORDER BY exam_at, id`,
		subjectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExamRows(rows)
}

// ListBySubjectWithCursor pages exams ordered by exam date using a keyset
// cursor, soonest exam first.
func (r *ExamRepository) ListBySubjectWithCursor(ctx context.Context, subjectID string, cursor *pagination.Cursor, limit int) (*ExamPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, subject_id, name, description, exam_at, total_hours
			 FROM exams
			 WHERE subject_id = $1 AND (exam_at, id) > ($2, $3)
			 ORDER BY exam_at, id
			 LIMIT $4`,
			subjectID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, subject_id, name, description, exam_at, total_hours
			 FROM exams
			 WHERE subject_id = $1
			 ORDER BY exam_at, id
			 LIMIT $2`,
			subjectID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanExamRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.ExamAt)
	}

	return &ExamPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *ExamRepository) Update(ctx context.Context, e *domain.Exam) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE exams SET name = $1, description = $2, exam_at = $3, total_hours = $4
		 WHERE id = $5`,
		e.Name, nullableString(e.Description), e.ExamAt, e.TotalHours, e.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrExamAlreadyExists
		}
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrExamNotFound
	}
	return nil
}

// Delete removes an exam and, via cascade, its references and chunk rows.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM exams WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrExamNotFound
	}
	return nil
}

func scanExamRows(rows pgx.Rows) ([]*domain.Exam, error) {
	var results []*domain.Exam
	for rows.Next() {
		var e domain.Exam
		var description *string
		if err := rows.Scan(&e.ID, &e.SubjectID, &e.Name, &description, &e.ExamAt, &e.TotalHours); err != nil {
			return nil, err
		}
		if description != nil {
			e.Description = *description
		}
		results = append(results, &e)
	}
	return results, rows.Err()
}
