package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same sentinel DomainError. Sentinels are
// compared by code and message so that copies created with WrapDomainError
// still match via errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// WrapDomainError returns a copy of the sentinel carrying err as its cause.
func WrapDomainError(sentinel *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    sentinel.Code,
		Message: sentinel.Message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnavailable      = "UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidReferenceKind = NewDomainError(ErrCodeValidation, "invalid reference kind")
	ErrInvalidSubjectColor  = NewDomainError(ErrCodeValidation, "subject color must be a 6-digit hex code")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrSubjectNotFound      = NewDomainError(ErrCodeNotFound, "subject not found")
	ErrExamNotFound         = NewDomainError(ErrCodeNotFound, "exam not found")
	ErrReferenceNotFound    = NewDomainError(ErrCodeNotFound, "reference not found")
	ErrChunkNotFound        = NewDomainError(ErrCodeNotFound, "chunk not found")
	ErrChunkContentNotFound = NewDomainError(ErrCodeNotFound, "chunk content not found")
	ErrMindmapNotFound      = NewDomainError(ErrCodeNotFound, "no cached mindmap for exam")
)

// Already exists errors
var (
	ErrSubjectAlreadyExists   = NewDomainError(ErrCodeAlreadyExists, "subject already exists")
	ErrExamAlreadyExists      = NewDomainError(ErrCodeAlreadyExists, "exam already exists for this subject")
	ErrReferenceAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "reference already exists for this exam")
)

// Segmentation errors
var (
	ErrUnsupportedKind  = NewDomainError(ErrCodeValidation, "no segmenter registered for reference kind")
	ErrExtractionFailed = NewDomainError(ErrCodeValidation, "failed to extract text from reference payload")
)

// Ingestion path errors. Any of these aborts the whole reference ingestion.
var (
	ErrCatalogWriteFailed   = NewDomainError(ErrCodeInternalError, "catalog chunk write failed")
	ErrContentWriteFailed   = NewDomainError(ErrCodeInternalError, "content store write failed")
	ErrEmbeddingUnavailable = NewDomainError(ErrCodeUnavailable, "embedding provider unavailable")
	ErrVectorWriteFailed    = NewDomainError(ErrCodeInternalError, "vector index write failed")
)

// Search path errors
var (
	ErrRetrievalUnavailable = NewDomainError(ErrCodeUnavailable, "vector index unavailable for retrieval")
)

// Storage errors
var (
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "object storage operation failed")
)
