package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/openai"
	"github.com/you-education/examref/internal/segment"
	"github.com/you-education/examref/internal/vectorindex"
	"github.com/you-education/examref/internal/youtube"
)

// MockChunkRepository is a mock implementation of ChunkRepositoryInterface
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) Create(ctx context.Context, c *domain.Chunk) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockChunkRepository) GetByID(ctx context.Context, id string) (*domain.Chunk, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) ListByReference(ctx context.Context, referenceID string) ([]*domain.Chunk, error) {
	args := m.Called(ctx, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) CountByReference(ctx context.Context, referenceID string) (int, error) {
	args := m.Called(ctx, referenceID)
	return args.Int(0), args.Error(1)
}

func (m *MockChunkRepository) DeleteByReference(ctx context.Context, referenceID string) (int, error) {
	args := m.Called(ctx, referenceID)
	return args.Int(0), args.Error(1)
}

// MockContentStore is a mock implementation of ContentStoreInterface
type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) Insert(ctx context.Context, referenceID string, content *domain.ChunkContent) error {
	args := m.Called(ctx, referenceID, content)
	return args.Error(0)
}

func (m *MockContentStore) Get(ctx context.Context, chunkID string) (*domain.ChunkContent, error) {
	args := m.Called(ctx, chunkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChunkContent), args.Error(1)
}

func (m *MockContentStore) Delete(ctx context.Context, chunkID string) error {
	args := m.Called(ctx, chunkID)
	return args.Error(0)
}

func (m *MockContentStore) DeleteByReference(ctx context.Context, referenceID string) (int, error) {
	args := m.Called(ctx, referenceID)
	return args.Int(0), args.Error(1)
}

// MockVectorIndex is a mock implementation of VectorIndexInterface
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) Insert(ctx context.Context, v *domain.ChunkVector) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVectorIndex) Search(ctx context.Context, embedding []float32, referenceIDs []string, limit int) ([]vectorindex.Match, error) {
	args := m.Called(ctx, embedding, referenceIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vectorindex.Match), args.Error(1)
}

func (m *MockVectorIndex) DeleteByChunk(ctx context.Context, chunkID string) error {
	args := m.Called(ctx, chunkID)
	return args.Error(0)
}

func (m *MockVectorIndex) DeleteByReference(ctx context.Context, referenceID string) (int, error) {
	args := m.Called(ctx, referenceID)
	return args.Int(0), args.Error(1)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockReferenceRepository is a mock implementation of ReferenceRepositoryInterface
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) Create(ctx context.Context, r *domain.Reference) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReferenceRepository) GetByID(ctx context.Context, id string) (*domain.Reference, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reference), args.Error(1)
}

func (m *MockReferenceRepository) GetByExamAndID(ctx context.Context, examID, id string) (*domain.Reference, error) {
	args := m.Called(ctx, examID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reference), args.Error(1)
}

func (m *MockReferenceRepository) ExistsByName(ctx context.Context, examID, name string) (bool, error) {
	args := m.Called(ctx, examID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockReferenceRepository) ListByExam(ctx context.Context, examID string) ([]*domain.Reference, error) {
	args := m.Called(ctx, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reference), args.Error(1)
}

func (m *MockReferenceRepository) ListByExamAndIDs(ctx context.Context, examID string, ids []string) ([]*domain.Reference, error) {
	args := m.Called(ctx, examID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reference), args.Error(1)
}

func (m *MockReferenceRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockExamGetter is a mock implementation of ExamGetter
type MockExamGetter struct {
	mock.Mock
}

func (m *MockExamGetter) GetByID(ctx context.Context, id string) (*domain.Exam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Exam), args.Error(1)
}

// MockSubjectGetter is a mock implementation of SubjectGetter
type MockSubjectGetter struct {
	mock.Mock
}

func (m *MockSubjectGetter) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

// MockSegmentRegistry is a mock implementation of SegmentRegistry
type MockSegmentRegistry struct {
	mock.Mock
}

func (m *MockSegmentRegistry) Supports(kind domain.ReferenceKind) bool {
	args := m.Called(kind)
	return args.Bool(0)
}

func (m *MockSegmentRegistry) Segment(ctx context.Context, desc segment.Descriptor) ([]string, error) {
	args := m.Called(ctx, desc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockIngestor is a mock implementation of Ingestor
type MockIngestor struct {
	mock.Mock
}

func (m *MockIngestor) Ingest(ctx context.Context, referenceID string, segments []string) (int, error) {
	args := m.Called(ctx, referenceID, segments)
	return args.Int(0), args.Error(1)
}

// MockChunkDeleter is a mock implementation of ChunkDeleter
type MockChunkDeleter struct {
	mock.Mock
}

func (m *MockChunkDeleter) DeleteReference(ctx context.Context, referenceID string) (*DeletionOutcome, error) {
	args := m.Called(ctx, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DeletionOutcome), args.Error(1)
}

// MockStorageClient is a mock implementation of StorageClientInterface
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) UploadObject(ctx context.Context, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockStorageClient) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorageClient) HeadObject(ctx context.Context, key string) (*ObjectMetadata, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ObjectMetadata), args.Error(1)
}

// MockRetriever is a mock implementation of ChunkRetriever
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, queryText string, allowedReferenceIDs []string, k int, maxDistance float64) ([]RetrievedChunk, error) {
	args := m.Called(ctx, queryText, allowedReferenceIDs, k, maxDistance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RetrievedChunk), args.Error(1)
}

// MockChatCompleter is a mock implementation of ChatCompleter
type MockChatCompleter struct {
	mock.Mock
	deltas []string
}

func (m *MockChatCompleter) StreamCompletion(ctx context.Context, messages []openai.ChatMessage, fn func(delta string) error) error {
	args := m.Called(ctx, messages)
	for _, d := range m.deltas {
		if err := fn(d); err != nil {
			return err
		}
	}
	return args.Error(0)
}

// MockJSONCompleter is a mock implementation of JSONCompleter
type MockJSONCompleter struct {
	mock.Mock
}

func (m *MockJSONCompleter) CompleteJSON(ctx context.Context, messages []openai.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

// MockMindmapCache is a mock implementation of MindmapCache
type MockMindmapCache struct {
	mock.Mock
}

func (m *MockMindmapCache) Get(ctx context.Context, examID string) (string, error) {
	args := m.Called(ctx, examID)
	return args.String(0), args.Error(1)
}

func (m *MockMindmapCache) Save(ctx context.Context, examID, mindmap string) error {
	args := m.Called(ctx, examID, mindmap)
	return args.Error(0)
}

func (m *MockMindmapCache) Delete(ctx context.Context, examID string) error {
	args := m.Called(ctx, examID)
	return args.Error(0)
}

// MockVideoSearcher is a mock implementation of VideoSearcher
type MockVideoSearcher struct {
	mock.Mock
}

func (m *MockVideoSearcher) Search(ctx context.Context, query string, maxResults int64) ([]youtube.VideoMetadata, error) {
	args := m.Called(ctx, query, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]youtube.VideoMetadata), args.Error(1)
}

// MockUUIDGenerator returns a fixed sequence of UUIDs
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		uuid := m.uuids[m.callCount]
		m.callCount++
		return uuid
	}
	return "default-uuid"
}

// fakeTxRunner executes the transaction function directly against the
// provided repositories.
type fakeTxRunner struct {
	refs   ReferenceRepositoryInterface
	chunks ChunkRepositoryInterface
	err    error
}

func (r *fakeTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	if r.err != nil {
		return r.err
	}
	return fn(&fakeTxRepos{refs: r.refs, chunks: r.chunks})
}

type fakeTxRepos struct {
	refs   ReferenceRepositoryInterface
	chunks ChunkRepositoryInterface
}

func (r *fakeTxRepos) References() ReferenceRepositoryInterface { return r.refs }
func (r *fakeTxRepos) Chunks() ChunkRepositoryInterface         { return r.chunks }
