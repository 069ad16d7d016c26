//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/testutil"
)

func TestSubjectRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSubjectRepository(pool)

	s := &domain.Subject{
		ID:    uuid.NewString(),
		Name:  "Computer Science",
		Color: "FF5733",
	}
	require.NoError(t, repo.Create(ctx, s))

	retrieved, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, retrieved.ID)
	assert.Equal(t, s.Name, retrieved.Name)
	assert.Equal(t, s.Color, retrieved.Color)
}

func TestSubjectRepository_DuplicateName(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSubjectRepository(pool)

	require.NoError(t, repo.Create(ctx, &domain.Subject{ID: uuid.NewString(), Name: "Math", Color: "000000"}))

	err := repo.Create(ctx, &domain.Subject{ID: uuid.NewString(), Name: "Math", Color: "FFFFFF"})
	assert.ErrorIs(t, err, domain.ErrSubjectAlreadyExists)
}

func TestSubjectRepository_GetNotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSubjectRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
}

func TestSubjectRepository_ListOrdersByName(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSubjectRepository(pool)

	require.NoError(t, repo.Create(ctx, &domain.Subject{ID: uuid.NewString(), Name: "Physics", Color: "111111"}))
	require.NoError(t, repo.Create(ctx, &domain.Subject{ID: uuid.NewString(), Name: "Biology", Color: "222222"}))
	require.NoError(t, repo.Create(ctx, &domain.Subject{ID: uuid.NewString(), Name: "Chemistry", Color: "333333"}))

	subjects, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 3)
	assert.Equal(t, "Biology", subjects[0].Name)
	assert.Equal(t, "Chemistry", subjects[1].Name)
	assert.Equal(t, "Physics", subjects[2].Name)
}

func TestSubjectRepository_Update(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSubjectRepository(pool)

	s := &domain.Subject{ID: uuid.NewString(), Name: "History", Color: "ABCDEF"}
	require.NoError(t, repo.Create(ctx, s))

	s.Name = "World History"
	s.Color = "123456"
	require.NoError(t, repo.Update(ctx, s))

	retrieved, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "World History", retrieved.Name)
	assert.Equal(t, "123456", retrieved.Color)

	err = repo.Update(ctx, &domain.Subject{ID: uuid.NewString(), Name: "Missing", Color: "000000"})
	assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
}

func TestSubjectRepository_DeleteCascadesToExams(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	subjectRepo := NewSubjectRepository(pool)
	examRepo := NewExamRepository(pool)

	s := &domain.Subject{ID: uuid.NewString(), Name: "Economics", Color: "654321"}
	require.NoError(t, subjectRepo.Create(ctx, s))

	e := &domain.Exam{
		ID:         uuid.NewString(),
		SubjectID:  s.ID,
		Name:       "Macro Final",
		ExamAt:     time.Now().Add(72 * time.Hour).UTC().Truncate(time.Microsecond),
		TotalHours: 20,
	}
	require.NoError(t, examRepo.Create(ctx, e))

	require.NoError(t, subjectRepo.Delete(ctx, s.ID))

	_, err := examRepo.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrExamNotFound)

	err = subjectRepo.Delete(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
}
