//go:build integration

package contentstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/testutil"
)

func newTestMindmapStore(ctx context.Context, t *testing.T) (*MindmapStore, func()) {
	t.Helper()
	mc := testutil.NewMongoContainer(ctx, t)
	db, disconnect := testutil.NewTestMongoDatabase(ctx, t, mc, "examref_test")

	store := NewMindmapStore(db, "mindmaps")
	require.NoError(t, store.EnsureIndexes(ctx))

	cleanup := func() {
		disconnect()
		_ = mc.Terminate(ctx)
	}
	return store, cleanup
}

func TestMindmapStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newTestMindmapStore(ctx, t)
	defer cleanup()

	examID := uuid.NewString()
	require.NoError(t, store.Save(ctx, examID, `{"title":"Algorithms"}`))

	mindmap, err := store.Get(ctx, examID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Algorithms"}`, mindmap)
}

func TestMindmapStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newTestMindmapStore(ctx, t)
	defer cleanup()

	examID := uuid.NewString()
	require.NoError(t, store.Save(ctx, examID, `{"title":"v1"}`))
	require.NoError(t, store.Save(ctx, examID, `{"title":"v2"}`))

	mindmap, err := store.Get(ctx, examID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"v2"}`, mindmap)
}

func TestMindmapStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newTestMindmapStore(ctx, t)
	defer cleanup()

	_, err := store.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrMindmapNotFound)
}

func TestMindmapStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newTestMindmapStore(ctx, t)
	defer cleanup()

	examID := uuid.NewString()
	require.NoError(t, store.Save(ctx, examID, `{"title":"gone soon"}`))

	require.NoError(t, store.Delete(ctx, examID))
	require.NoError(t, store.Delete(ctx, examID))

	_, err := store.Get(ctx, examID)
	assert.ErrorIs(t, err, domain.ErrMindmapNotFound)
}
