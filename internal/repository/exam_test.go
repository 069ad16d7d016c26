//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/pagination"
	"github.com/you-education/examref/internal/testutil"
)

func createTestSubject(ctx context.Context, t *testing.T, pool *pgxpool.Pool) *domain.Subject {
	t.Helper()
	s := &domain.Subject{
		ID:    uuid.NewString(),
		Name:  "Subject " + uuid.NewString(),
		Color: "336699",
	}
	require.NoError(t, NewSubjectRepository(pool).Create(ctx, s))
	return s
}

func TestExamRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	subject := createTestSubject(ctx, t, pool)
	repo := NewExamRepository(pool)

	e := &domain.Exam{
		ID:          uuid.NewString(),
		SubjectID:   subject.ID,
		Name:        "Algorithms Final",
		Description: "Covers sorting and graphs",
		ExamAt:      time.Now().Add(48 * time.Hour).UTC().Truncate(time.Microsecond),
		TotalHours:  30,
	}
	require.NoError(t, repo.Create(ctx, e))

	retrieved, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, retrieved.ID)
	assert.Equal(t, e.SubjectID, retrieved.SubjectID)
	assert.Equal(t, e.Name, retrieved.Name)
	assert.Equal(t, e.Description, retrieved.Description)
	assert.True(t, e.ExamAt.Equal(retrieved.ExamAt))
	assert.Equal(t, e.TotalHours, retrieved.TotalHours)
}

func TestExamRepository_DuplicateNamePerSubject(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	subject := createTestSubject(ctx, t, pool)
	repo := NewExamRepository(pool)

	examAt := time.Now().Add(24 * time.Hour).UTC()
	require.NoError(t, repo.Create(ctx, &domain.Exam{
		ID: uuid.NewString(), SubjectID: subject.ID, Name: "Midterm", ExamAt: examAt, TotalHours: 10,
	}))

	err := repo.Create(ctx, &domain.Exam{
		ID: uuid.NewString(), SubjectID: subject.ID, Name: "Midterm", ExamAt: examAt, TotalHours: 12,
	})
	assert.ErrorIs(t, err, domain.ErrExamAlreadyExists)
}

func TestExamRepository_ListBySubjectWithCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	subject := createTestSubject(ctx, t, pool)
	repo := NewExamRepository(pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Exam{
			ID:         uuid.NewString(),
			SubjectID:  subject.ID,
			Name:       fmt.Sprintf("Exam %d", i),
			ExamAt:     base.Add(time.Duration(i) * 24 * time.Hour),
			TotalHours: 5,
		}))
	}

	page1, err := repo.ListBySubjectWithCursor(ctx, subject.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	assert.NotEmpty(t, page1.NextCursor)
	assert.Equal(t, "Exam 0", page1.Items[0].Name)
	assert.Equal(t, "Exam 1", page1.Items[1].Name)

	cursor, err := pagination.DecodeCursor(page1.NextCursor)
	require.NoError(t, err)

	page2, err := repo.ListBySubjectWithCursor(ctx, subject.ID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.True(t, page2.HasMore)
	assert.Equal(t, "Exam 2", page2.Items[0].Name)
	assert.Equal(t, "Exam 3", page2.Items[1].Name)

	cursor, err = pagination.DecodeCursor(page2.NextCursor)
	require.NoError(t, err)

	page3, err := repo.ListBySubjectWithCursor(ctx, subject.ID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.NextCursor)
	assert.Equal(t, "Exam 4", page3.Items[0].Name)
}

func TestExamRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	subject := createTestSubject(ctx, t, pool)
	repo := NewExamRepository(pool)

	e := &domain.Exam{
		ID:         uuid.NewString(),
		SubjectID:  subject.ID,
		Name:       "Linear Algebra",
		ExamAt:     time.Now().Add(24 * time.Hour).UTC().Truncate(time.Microsecond),
		TotalHours: 15,
	}
	require.NoError(t, repo.Create(ctx, e))

	e.Name = "Linear Algebra II"
	e.TotalHours = 25
	require.NoError(t, repo.Update(ctx, e))

	retrieved, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra II", retrieved.Name)
	assert.Equal(t, 25.0, retrieved.TotalHours)

	require.NoError(t, repo.Delete(ctx, e.ID))
	_, err = repo.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrExamNotFound)

	err = repo.Delete(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrExamNotFound)
}
