package service

import (
	"context"
	"errors"
	"log"

	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/telemetry"
)

// RetrievedChunk is one ranked retrieval hit with its content.
type RetrievedChunk struct {
	ChunkID  string
	Content  string
	Distance float64
}

// overfetchFactor widens the index query so the distance filter still
// leaves k survivors.
const overfetchFactor = 3

// Retriever serves similarity-ranked chunk content restricted to an allowed
// reference set. Distance is 1 - cosine_similarity, lower is better.
type Retriever struct {
	embedder EmbeddingClient
	vectors  VectorIndexInterface
	content  ContentStoreInterface
}

func NewRetriever(embedder EmbeddingClient, vectors VectorIndexInterface, content ContentStoreInterface) *Retriever {
	return &Retriever{embedder: embedder, vectors: vectors, content: content}
}

// Retrieve embeds the query, searches the vector index among the allowed
// references and returns up to k chunks whose distance is below maxDistance,
// in similarity order. An empty allowed set returns empty without touching
// the index.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, allowedReferenceIDs []string, k int, maxDistance float64) ([]RetrievedChunk, error) {
	if len(allowedReferenceIDs) == 0 {
		return nil, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "Retriever.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	if k <= 0 {
		k = 5
	}

	embedding, err := r.embedder.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return nil, domain.WrapDomainError(domain.ErrEmbeddingUnavailable, err)
	}

	matches, err := r.vectors.Search(ctx, embedding, allowedReferenceIDs, overfetchFactor*k)
	if err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, domain.WrapDomainError(domain.ErrRetrievalUnavailable, err)
	}

	results := make([]RetrievedChunk, 0, k)
	for _, m := range matches {
		if len(results) == k {
			break
		}
		if m.Distance >= maxDistance {
			continue
		}

		content, err := r.content.Get(ctx, m.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrChunkContentNotFound) {
				// A chunk that was deleted between search and fetch is an
				// acceptable eventual-consistency gap.
				log.Printf("retrieve: no content document for chunk %s, skipping", m.ChunkID)
				continue
			}
			return nil, err
		}

		results = append(results, RetrievedChunk{
			ChunkID:  m.ChunkID,
			Content:  content.Content,
			Distance: m.Distance,
		})
	}

	return results, nil
}
