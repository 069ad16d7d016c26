package domain

import "fmt"

// Subject represents a study subject that groups exams
type Subject struct {
	ID    string
	Name  string
	Color string // 6-digit hex color code without the leading '#'
}

// NewSubject creates a new Subject instance
func NewSubject(id, name, color string) *Subject {
	return &Subject{
		ID:    id,
		Name:  name,
		Color: color,
	}
}

// ValidateSubject validates a Subject instance
func ValidateSubject(s *Subject) error {
	if s == nil {
		return fmt.Errorf("subject cannot be nil")
	}

	if s.ID == "" {
		return fmt.Errorf("subject ID is required")
	}

	if s.Name == "" {
		return fmt.Errorf("subject Name is required")
	}

	if !isValidHexColor(s.Color) {
		return ErrInvalidSubjectColor
	}

	return nil
}

func isValidHexColor(color string) bool {
	if len(color) != 6 {
		return false
	}
	for _, c := range color {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
