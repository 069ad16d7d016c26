package service

import (
	"context"
	"errors"
	"log"

	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/telemetry"
)

// Store names reported in deletion outcomes.
const (
	StoreVectorIndex  = "vector_index"
	StoreContentStore = "content_store"
)

// DeletionOutcome reports how a reference deletion went. FailedStores lists
// the stores whose cleanup failed; catalog rows are removed regardless.
type DeletionOutcome struct {
	ChunksRemoved int
	FailedStores  []string
}

// FullyDeleted reports whether every store was cleaned up.
func (o *DeletionOutcome) FullyDeleted() bool {
	return len(o.FailedStores) == 0
}

// DeletionCoordinator tears a reference's chunks down across the three
// stores. Vector records are deleted before content documents for each
// chunk, failures are collected rather than thrown, and the catalog rows
// are always removed so no content-less reference stays exam-visible.
type DeletionCoordinator struct {
	chunkRepo ChunkRepositoryInterface
	content   ContentStoreInterface
	vectors   VectorIndexInterface
	tx        TxRunner
}

func NewDeletionCoordinator(
	chunkRepo ChunkRepositoryInterface,
	content ContentStoreInterface,
	vectors VectorIndexInterface,
	tx TxRunner,
) *DeletionCoordinator {
	return &DeletionCoordinator{
		chunkRepo: chunkRepo,
		content:   content,
		vectors:   vectors,
		tx:        tx,
	}
}

// DeleteReference removes every chunk of the reference together with the
// reference row itself. Calling it for an already-deleted reference is a
// no-op reporting a fully-deleted outcome.
func (c *DeletionCoordinator) DeleteReference(ctx context.Context, referenceID string) (*DeletionOutcome, error) {
	ctx, span := telemetry.StartSpan(ctx, "DeletionCoordinator.DeleteReference", telemetry.SpanAttributes{
		ReferenceID: referenceID,
		Operation:   "delete",
	})
	defer span.End()

	chunks, err := c.chunkRepo.ListByReference(ctx, referenceID)
	if err != nil {
		return nil, err
	}

	outcome := &DeletionOutcome{ChunksRemoved: len(chunks)}
	vectorFailed := false
	contentFailed := false

	for _, chunk := range chunks {
		if err := c.vectors.DeleteByChunk(ctx, chunk.ID); err != nil {
			log.Printf("delete reference %s: vector delete failed for chunk %s: %v", referenceID, chunk.ID, err)
			vectorFailed = true
		}
		if err := c.content.Delete(ctx, chunk.ID); err != nil {
			log.Printf("delete reference %s: content delete failed for chunk %s: %v", referenceID, chunk.ID, err)
			contentFailed = true
		}
	}

	if vectorFailed {
		outcome.FailedStores = append(outcome.FailedStores, StoreVectorIndex)
	}
	if contentFailed {
		outcome.FailedStores = append(outcome.FailedStores, StoreContentStore)
	}

	// Catalog rows go last and unconditionally, in one transaction.
	err = c.tx.WithTx(ctx, func(repos TxRepositories) error {
		if _, err := repos.Chunks().DeleteByReference(ctx, referenceID); err != nil {
			return err
		}
		if err := repos.References().Delete(ctx, referenceID); err != nil {
			if errors.Is(err, domain.ErrReferenceNotFound) {
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}
