package domain

import (
	"fmt"
	"strings"
)

// ReferenceKind represents the kind of a study reference
type ReferenceKind string

const (
	ReferenceKindTXT     ReferenceKind = "txt"
	ReferenceKindPDF     ReferenceKind = "pdf"
	ReferenceKindPPT     ReferenceKind = "ppt"
	ReferenceKindDOCX    ReferenceKind = "docx"
	ReferenceKindMD      ReferenceKind = "md"
	ReferenceKindYouTube ReferenceKind = "yt_video_url"
	ReferenceKindWebsite ReferenceKind = "website_url"
)

// Reference represents a user-attached study source (file or URL) scoped to
// one exam. Name holds the original file name for file kinds and the full
// URL for URL kinds.
type Reference struct {
	ID     string
	ExamID string
	Kind   ReferenceKind
	Name   string
}

// NewReference creates a new Reference instance
func NewReference(id, examID string, kind ReferenceKind, name string) *Reference {
	return &Reference{
		ID:     id,
		ExamID: examID,
		Kind:   kind,
		Name:   name,
	}
}

// IsURLKind reports whether the reference is identified by a URL rather
// than an uploaded file.
func (k ReferenceKind) IsURLKind() bool {
	return k == ReferenceKindYouTube || k == ReferenceKindWebsite
}

// ContentType returns the MIME type used when storing the original file
// bytes. URL kinds have no stored payload and return "".
func (k ReferenceKind) ContentType() string {
	switch k {
	case ReferenceKindTXT:
		return "text/plain"
	case ReferenceKindPDF:
		return "application/pdf"
	case ReferenceKindPPT:
		return "application/vnd.ms-powerpoint"
	case ReferenceKindDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ReferenceKindMD:
		return "text/markdown"
	default:
		return ""
	}
}

// KindFromExtension maps a file extension (without dot, any case) to its
// reference kind. Returns ErrInvalidReferenceKind for unsupported extensions.
func KindFromExtension(ext string) (ReferenceKind, error) {
	switch strings.ToLower(ext) {
	case "txt":
		return ReferenceKindTXT, nil
	case "pdf":
		return ReferenceKindPDF, nil
	case "ppt", "pptx":
		return ReferenceKindPPT, nil
	case "docx":
		return ReferenceKindDOCX, nil
	case "md":
		return ReferenceKindMD, nil
	default:
		return "", ErrInvalidReferenceKind
	}
}

// ValidateReference validates a Reference instance
func ValidateReference(r *Reference) error {
	if r == nil {
		return fmt.Errorf("reference cannot be nil")
	}

	if r.ID == "" {
		return fmt.Errorf("reference ID is required")
	}

	if r.ExamID == "" {
		return fmt.Errorf("reference ExamID is required")
	}

	if r.Name == "" {
		return fmt.Errorf("reference Name is required")
	}

	if !isValidReferenceKind(r.Kind) {
		return fmt.Errorf("reference Kind is invalid: %s", r.Kind)
	}

	return nil
}

func isValidReferenceKind(k ReferenceKind) bool {
	switch k {
	case ReferenceKindTXT, ReferenceKindPDF, ReferenceKindPPT,
		ReferenceKindDOCX, ReferenceKindMD, ReferenceKindYouTube, ReferenceKindWebsite:
		return true
	}
	return false
}
