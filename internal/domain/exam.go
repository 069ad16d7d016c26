package domain

import (
	"fmt"
	"time"
)

// Exam represents an upcoming exam within a subject. Exam identity is the
// join key used by references.
type Exam struct {
	ID          string
	SubjectID   string
	Name        string
	Description string // optional
	ExamAt      time.Time
	TotalHours  float64 // total hours the user wants to dedicate
}

// NewExam creates a new Exam instance
func NewExam(id, subjectID, name, description string, examAt time.Time, totalHours float64) *Exam {
	return &Exam{
		ID:          id,
		SubjectID:   subjectID,
		Name:        name,
		Description: description,
		ExamAt:      examAt,
		TotalHours:  totalHours,
	}
}

// ValidateExam validates an Exam instance
func ValidateExam(e *Exam) error {
	if e == nil {
		return fmt.Errorf("exam cannot be nil")
	}

	if e.ID == "" {
		return fmt.Errorf("exam ID is required")
	}

	if e.SubjectID == "" {
		return fmt.Errorf("exam SubjectID is required")
	}

	if e.Name == "" {
		return fmt.Errorf("exam Name is required")
	}

	if e.ExamAt.IsZero() {
		return fmt.Errorf("exam ExamAt is required")
	}

	if e.TotalHours <= 0 {
		return fmt.Errorf("exam TotalHours must be greater than 0")
	}

	return nil
}
