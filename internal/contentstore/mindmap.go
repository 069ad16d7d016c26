package contentstore

import (
	"context"
	"errors"
	"time"

	"github.com/you-education/examref/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mindmapDocument struct {
	ExamID    string    `bson:"exam_id"`
	Mindmap   string    `bson:"mindmap"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MindmapStore caches generated mindmap documents per exam. A cached entry
// is the serialized JSON tree returned to clients verbatim.
type MindmapStore struct {
	coll *mongo.Collection
}

func NewMindmapStore(db *mongo.Database, collection string) *MindmapStore {
	return &MindmapStore{coll: db.Collection(collection)}
}

func (s *MindmapStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "exam_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MindmapStore) Get(ctx context.Context, examID string) (string, error) {
	var doc mindmapDocument
	err := s.coll.FindOne(ctx, bson.M{"exam_id": examID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrMindmapNotFound
		}
		return "", err
	}
	return doc.Mindmap, nil
}

// Save upserts the cached mindmap for an exam.
func (s *MindmapStore) Save(ctx context.Context, examID, mindmap string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"exam_id": examID},
		bson.M{"$set": mindmapDocument{ExamID: examID, Mindmap: mindmap, UpdatedAt: time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MindmapStore) Delete(ctx context.Context, examID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"exam_id": examID})
	return err
}
