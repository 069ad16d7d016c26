package contentstore

import (
	"context"
	"errors"

	"github.com/you-education/examref/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type chunkDocument struct {
	ChunkID     string `bson:"chunk_id"`
	ReferenceID string `bson:"reference_id"`
	Content     string `bson:"content"`
}

// ChunkStore holds chunk text in MongoDB, keyed by the relational chunk id.
type ChunkStore struct {
	coll *mongo.Collection
}

func NewChunkStore(db *mongo.Database, collection string) *ChunkStore {
	return &ChunkStore{coll: db.Collection(collection)}
}

// EnsureIndexes creates the unique chunk_id index. Safe to call on every
// startup.
func (s *ChunkStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chunk_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "reference_id", Value: 1}},
		},
	})
	return err
}

func (s *ChunkStore) Insert(ctx context.Context, referenceID string, content *domain.ChunkContent) error {
	doc := chunkDocument{
		ChunkID:     content.ChunkID,
		ReferenceID: referenceID,
		Content:     content.Content,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return domain.WrapDomainError(domain.ErrContentWriteFailed, err)
	}
	return nil
}

func (s *ChunkStore) Get(ctx context.Context, chunkID string) (*domain.ChunkContent, error) {
	var doc chunkDocument
	err := s.coll.FindOne(ctx, bson.M{"chunk_id": chunkID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChunkContentNotFound
		}
		return nil, err
	}
	return &domain.ChunkContent{ChunkID: doc.ChunkID, Content: doc.Content}, nil
}

// Delete removes the document for a chunk. Deleting a chunk that has no
// document is not an error, so retries converge.
func (s *ChunkStore) Delete(ctx context.Context, chunkID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"chunk_id": chunkID})
	return err
}

// DeleteByReference removes every document belonging to a reference and
// returns how many were deleted.
func (s *ChunkStore) DeleteByReference(ctx context.Context, referenceID string) (int, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"reference_id": referenceID})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}
