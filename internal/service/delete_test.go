package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/you-education/examref/internal/domain"
)

func newTestDeletionCoordinator() (*DeletionCoordinator, *MockChunkRepository, *MockContentStore, *MockVectorIndex, *MockReferenceRepository, *MockChunkRepository) {
	chunkRepo := new(MockChunkRepository)
	content := new(MockContentStore)
	vectors := new(MockVectorIndex)
	txRefs := new(MockReferenceRepository)
	txChunks := new(MockChunkRepository)
	coord := NewDeletionCoordinator(chunkRepo, content, vectors, &fakeTxRunner{refs: txRefs, chunks: txChunks})
	return coord, chunkRepo, content, vectors, txRefs, txChunks
}

func TestDeletionCoordinator_DeleteReference_Success(t *testing.T) {
	coord, chunkRepo, content, vectors, txRefs, txChunks := newTestDeletionCoordinator()
	chunks := []*domain.Chunk{
		{ID: "chunk-a", ReferenceID: "ref-1", ChunkNumber: 0, TotalChunks: 2},
		{ID: "chunk-b", ReferenceID: "ref-1", ChunkNumber: 1, TotalChunks: 2},
	}

	chunkRepo.On("ListByReference", mock.Anything, "ref-1").Return(chunks, nil)
	vectors.On("DeleteByChunk", mock.Anything, "chunk-a").Return(nil)
	vectors.On("DeleteByChunk", mock.Anything, "chunk-b").Return(nil)
	content.On("Delete", mock.Anything, "chunk-a").Return(nil)
	content.On("Delete", mock.Anything, "chunk-b").Return(nil)
	txChunks.On("DeleteByReference", mock.Anything, "ref-1").Return(2, nil)
	txRefs.On("Delete", mock.Anything, "ref-1").Return(nil)

	outcome, err := coord.DeleteReference(context.Background(), "ref-1")

	require.NoError(t, err)
	assert.Equal(t, 2, outcome.ChunksRemoved)
	assert.True(t, outcome.FullyDeleted())
	vectors.AssertExpectations(t)
	content.AssertExpectations(t)
	txChunks.AssertExpectations(t)
	txRefs.AssertExpectations(t)
}

func TestDeletionCoordinator_DeleteReference_VectorStoreDown(t *testing.T) {
	coord, chunkRepo, content, vectors, txRefs, txChunks := newTestDeletionCoordinator()
	chunks := []*domain.Chunk{
		{ID: "chunk-a", ReferenceID: "ref-1"},
		{ID: "chunk-b", ReferenceID: "ref-1"},
	}

	chunkRepo.On("ListByReference", mock.Anything, "ref-1").Return(chunks, nil)
	vectors.On("DeleteByChunk", mock.Anything, mock.Anything).Return(errors.New("index unreachable"))
	content.On("Delete", mock.Anything, mock.Anything).Return(nil)
	txChunks.On("DeleteByReference", mock.Anything, "ref-1").Return(2, nil)
	txRefs.On("Delete", mock.Anything, "ref-1").Return(nil)

	outcome, err := coord.DeleteReference(context.Background(), "ref-1")

	require.NoError(t, err)
	assert.Equal(t, []string{StoreVectorIndex}, outcome.FailedStores)
	assert.False(t, outcome.FullyDeleted())
	// Catalog rows still go even when a store is down.
	txChunks.AssertCalled(t, "DeleteByReference", mock.Anything, "ref-1")
	txRefs.AssertCalled(t, "Delete", mock.Anything, "ref-1")
}

func TestDeletionCoordinator_DeleteReference_BothStoresDown(t *testing.T) {
	coord, chunkRepo, content, vectors, txRefs, txChunks := newTestDeletionCoordinator()
	chunks := []*domain.Chunk{{ID: "chunk-a", ReferenceID: "ref-1"}}

	chunkRepo.On("ListByReference", mock.Anything, "ref-1").Return(chunks, nil)
	vectors.On("DeleteByChunk", mock.Anything, "chunk-a").Return(errors.New("index unreachable"))
	content.On("Delete", mock.Anything, "chunk-a").Return(errors.New("mongo unreachable"))
	txChunks.On("DeleteByReference", mock.Anything, "ref-1").Return(1, nil)
	txRefs.On("Delete", mock.Anything, "ref-1").Return(nil)

	outcome, err := coord.DeleteReference(context.Background(), "ref-1")

	require.NoError(t, err)
	assert.Equal(t, []string{StoreVectorIndex, StoreContentStore}, outcome.FailedStores)
}

func TestDeletionCoordinator_DeleteReference_Idempotent(t *testing.T) {
	coord, chunkRepo, content, vectors, txRefs, txChunks := newTestDeletionCoordinator()

	chunkRepo.On("ListByReference", mock.Anything, "ref-1").Return([]*domain.Chunk{}, nil)
	txChunks.On("DeleteByReference", mock.Anything, "ref-1").Return(0, nil)
	txRefs.On("Delete", mock.Anything, "ref-1").Return(domain.ErrReferenceNotFound)

	outcome, err := coord.DeleteReference(context.Background(), "ref-1")

	require.NoError(t, err)
	assert.Equal(t, 0, outcome.ChunksRemoved)
	assert.True(t, outcome.FullyDeleted())
	vectors.AssertNotCalled(t, "DeleteByChunk", mock.Anything, mock.Anything)
	content.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeletionCoordinator_DeleteReference_CatalogFailure(t *testing.T) {
	coord, chunkRepo, _, _, _, txChunks := newTestDeletionCoordinator()

	chunkRepo.On("ListByReference", mock.Anything, "ref-1").Return([]*domain.Chunk{}, nil)
	txChunks.On("DeleteByReference", mock.Anything, "ref-1").Return(0, errors.New("db down"))

	outcome, err := coord.DeleteReference(context.Background(), "ref-1")

	require.Error(t, err)
	assert.Nil(t, outcome)
}

func TestDeletionCoordinator_DeleteReference_ListFailure(t *testing.T) {
	coord, chunkRepo, _, vectors, _, _ := newTestDeletionCoordinator()

	chunkRepo.On("ListByReference", mock.Anything, "ref-1").Return(nil, errors.New("db down"))

	_, err := coord.DeleteReference(context.Background(), "ref-1")

	require.Error(t, err)
	vectors.AssertNotCalled(t, "DeleteByChunk", mock.Anything, mock.Anything)
}
