package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/segment"
	"github.com/you-education/examref/internal/telemetry"
)

// ReferenceRepositoryInterface defines the catalog operations on references
type ReferenceRepositoryInterface interface {
	Create(ctx context.Context, r *domain.Reference) error
	GetByID(ctx context.Context, id string) (*domain.Reference, error)
	GetByExamAndID(ctx context.Context, examID, id string) (*domain.Reference, error)
	ExistsByName(ctx context.Context, examID, name string) (bool, error)
	ListByExam(ctx context.Context, examID string) ([]*domain.Reference, error)
	ListByExamAndIDs(ctx context.Context, examID string, ids []string) ([]*domain.Reference, error)
	Delete(ctx context.Context, id string) error
}

// ExamGetter looks up exams for existence checks
type ExamGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Exam, error)
}

// SegmentRegistry turns a reference payload into ordered text segments
type SegmentRegistry interface {
	Supports(kind domain.ReferenceKind) bool
	Segment(ctx context.Context, desc segment.Descriptor) ([]string, error)
}

// Ingestor persists segments across the stores
type Ingestor interface {
	Ingest(ctx context.Context, referenceID string, segments []string) (int, error)
}

// ChunkDeleter tears down a reference's chunks across the stores
type ChunkDeleter interface {
	DeleteReference(ctx context.Context, referenceID string) (*DeletionOutcome, error)
}

// ObjectMetadata contains metadata about a stored object
type ObjectMetadata struct {
	ContentLength int64
	ContentType   string
	ETag          string
}

// StorageClientInterface defines object storage operations for original
// reference files
type StorageClientInterface interface {
	UploadObject(ctx context.Context, key string, body io.Reader, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
	HeadObject(ctx context.Context, key string) (*ObjectMetadata, error)
}

// ReferenceService manages the lifecycle of exam references: upload or URL
// registration, ingestion into the chunk pipeline, download URLs and
// deletion.
type ReferenceService struct {
	referenceRepo ReferenceRepositoryInterface
	exams         ExamGetter
	registry      SegmentRegistry
	ingestor      Ingestor
	deleter       ChunkDeleter
	storage       StorageClientInterface
	uuidGen       UUIDGenerator
}

func NewReferenceService(
	referenceRepo ReferenceRepositoryInterface,
	exams ExamGetter,
	registry SegmentRegistry,
	ingestor Ingestor,
	deleter ChunkDeleter,
	storage StorageClientInterface,
	uuidGen UUIDGenerator,
) *ReferenceService {
	return &ReferenceService{
		referenceRepo: referenceRepo,
		exams:         exams,
		registry:      registry,
		ingestor:      ingestor,
		deleter:       deleter,
		storage:       storage,
		uuidGen:       uuidGen,
	}
}

// UploadInput is a file reference upload.
type UploadInput struct {
	ExamID   string
	Filename string
	Data     []byte
}

// Upload stores an uploaded file as a reference: catalog row, object
// storage copy, then segmentation and ingestion. If ingestion fails the
// reference row and the stored object are removed again, so a failed upload
// leaves no trace.
func (s *ReferenceService) Upload(ctx context.Context, input UploadInput) (*domain.Reference, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReferenceService.Upload", telemetry.SpanAttributes{
		ExamID:    input.ExamID,
		Operation: "upload",
	})
	defer span.End()

	if _, err := s.exams.GetByID(ctx, input.ExamID); err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(filepath.Ext(input.Filename), ".")
	kind, err := domain.KindFromExtension(ext)
	if err != nil {
		return nil, err
	}
	if !s.registry.Supports(kind) {
		return nil, domain.ErrUnsupportedKind
	}

	exists, err := s.referenceRepo.ExistsByName(ctx, input.ExamID, input.Filename)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrReferenceAlreadyExists
	}

	ref := &domain.Reference{
		ID:     s.uuidGen.NewString(),
		ExamID: input.ExamID,
		Kind:   kind,
		Name:   input.Filename,
	}
	if err := s.referenceRepo.Create(ctx, ref); err != nil {
		return nil, err
	}

	objectUploaded := false
	if s.storage != nil {
		if err := s.storage.UploadObject(ctx, objectKey(ref), bytes.NewReader(input.Data), kind.ContentType()); err != nil {
			s.cleanupFailedIngestion(ctx, ref, false)
			return nil, domain.WrapDomainError(domain.ErrStorageOperationFail, err)
		}
		objectUploaded = true
	}

	segments, err := s.registry.Segment(ctx, segment.Descriptor{
		Kind: kind,
		Name: input.Filename,
		Data: input.Data,
	})
	if err != nil {
		s.cleanupFailedIngestion(ctx, ref, objectUploaded)
		return nil, err
	}

	if _, err := s.ingestor.Ingest(ctx, ref.ID, segments); err != nil {
		s.cleanupFailedIngestion(ctx, ref, objectUploaded)
		return nil, err
	}

	return ref, nil
}

// RegisterURLInput is a URL reference registration.
type RegisterURLInput struct {
	ExamID string
	Kind   domain.ReferenceKind
	URL    string
}

// RegisterURL registers a website or video URL as a reference and ingests
// its extracted text. A failed ingestion removes the reference row again.
func (s *ReferenceService) RegisterURL(ctx context.Context, input RegisterURLInput) (*domain.Reference, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReferenceService.RegisterURL", telemetry.SpanAttributes{
		ExamID:    input.ExamID,
		Operation: "register_url",
	})
	defer span.End()

	if _, err := s.exams.GetByID(ctx, input.ExamID); err != nil {
		return nil, err
	}

	if !input.Kind.IsURLKind() {
		return nil, domain.ErrInvalidReferenceKind
	}
	if !s.registry.Supports(input.Kind) {
		return nil, domain.ErrUnsupportedKind
	}

	exists, err := s.referenceRepo.ExistsByName(ctx, input.ExamID, input.URL)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrReferenceAlreadyExists
	}

	ref := &domain.Reference{
		ID:     s.uuidGen.NewString(),
		ExamID: input.ExamID,
		Kind:   input.Kind,
		Name:   input.URL,
	}
	if err := s.referenceRepo.Create(ctx, ref); err != nil {
		return nil, err
	}

	segments, err := s.registry.Segment(ctx, segment.Descriptor{
		Kind: input.Kind,
		Name: input.URL,
		URL:  input.URL,
	})
	if err != nil {
		s.cleanupFailedIngestion(ctx, ref, false)
		return nil, err
	}

	if _, err := s.ingestor.Ingest(ctx, ref.ID, segments); err != nil {
		s.cleanupFailedIngestion(ctx, ref, false)
		return nil, err
	}

	return ref, nil
}

// List returns the references of an exam.
func (s *ReferenceService) List(ctx context.Context, examID string) ([]*domain.Reference, error) {
	if _, err := s.exams.GetByID(ctx, examID); err != nil {
		return nil, err
	}
	return s.referenceRepo.ListByExam(ctx, examID)
}

// GetDownloadURL resolves where a reference can be fetched from. URL kinds
// return the stored URL itself, file kinds return a presigned object URL.
func (s *ReferenceService) GetDownloadURL(ctx context.Context, examID, referenceID string) (string, error) {
	ref, err := s.referenceRepo.GetByExamAndID(ctx, examID, referenceID)
	if err != nil {
		return "", err
	}

	if ref.Kind.IsURLKind() {
		return ref.Name, nil
	}

	if s.storage == nil {
		return "", domain.NewDomainError(domain.ErrCodeInvalidOperation, "object storage not configured")
	}

	if _, err := s.storage.HeadObject(ctx, objectKey(ref)); err != nil {
		return "", domain.WrapDomainError(domain.ErrStorageOperationFail, fmt.Errorf("reference file missing from storage: %w", err))
	}

	return s.storage.GenerateDownloadURL(ctx, objectKey(ref))
}

// Delete removes a reference, its chunks and its stored file. Deleting a
// reference that no longer exists reports a fully-deleted outcome.
func (s *ReferenceService) Delete(ctx context.Context, examID, referenceID string) (*DeletionOutcome, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReferenceService.Delete", telemetry.SpanAttributes{
		ExamID:      examID,
		ReferenceID: referenceID,
		Operation:   "delete",
	})
	defer span.End()

	ref, err := s.referenceRepo.GetByExamAndID(ctx, examID, referenceID)
	if err != nil {
		if errors.Is(err, domain.ErrReferenceNotFound) {
			return &DeletionOutcome{}, nil
		}
		return nil, err
	}

	if s.storage != nil && !ref.Kind.IsURLKind() {
		if err := s.storage.DeleteObject(ctx, objectKey(ref)); err != nil {
			log.Printf("delete reference %s: failed to delete stored object: %v", ref.ID, err)
		}
	}

	return s.deleter.DeleteReference(ctx, ref.ID)
}

// cleanupFailedIngestion undoes the catalog row and stored object of a
// reference whose ingestion failed.
func (s *ReferenceService) cleanupFailedIngestion(ctx context.Context, ref *domain.Reference, objectUploaded bool) {
	cleanupCtx := context.WithoutCancel(ctx)

	if err := s.referenceRepo.Delete(cleanupCtx, ref.ID); err != nil {
		log.Printf("ingestion cleanup: failed to delete reference %s: %v", ref.ID, err)
	}
	if objectUploaded && s.storage != nil {
		if err := s.storage.DeleteObject(cleanupCtx, objectKey(ref)); err != nil {
			log.Printf("ingestion cleanup: failed to delete object for reference %s: %v", ref.ID, err)
		}
	}
}

func objectKey(ref *domain.Reference) string {
	return ref.ExamID + "/" + ref.Name
}
