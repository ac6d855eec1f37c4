package section

import (
	"errors"
	"strings"
)

// MaxNameLength bounds section names.
const MaxNameLength = 255

// Domain errors
var (
	ErrEmptyName         = errors.New("section name cannot be empty")
	ErrNameTooLong       = errors.New("section name cannot exceed 255 characters")
	ErrMissingGradeLevel = errors.New("section must belong to a grade level")
	ErrNotFound          = errors.New("section not found")
	ErrGradeLevelUnknown = errors.New("grade level does not exist")
	ErrDuplicateName     = errors.New("a section with this name already exists in the grade level")
)

// GradeLevel is reference data used to classify sections.
type GradeLevel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Section is a named subdivision of a grade level.
// GradeLevel is populated on reads and ignored on writes.
type Section struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	GradeLevelID int64       `json:"grade_level_id"`
	GradeLevel   *GradeLevel `json:"grade_level"`
}

// Normalize trims the name in place.
func (s *Section) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
}

// Validate checks if the Section has valid data.
// PRE: Section struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Section) Validate() error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if s.GradeLevelID <= 0 {
		return ErrMissingGradeLevel
	}
	return nil
}

// GradeLevelName returns the grade level's name, or "" when it is not loaded.
func (s Section) GradeLevelName() string {
	if s.GradeLevel == nil {
		return ""
	}
	return s.GradeLevel.Name
}
