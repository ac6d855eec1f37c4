package orchestrators

import (
	"context"
	"errors"
	"fmt"

	"schooladmin/internal/application/validation"
	"schooladmin/internal/domain/section"
)

// SectionInput carries the editable fields of a section form.
type SectionInput struct {
	Name         string `json:"name" validate:"notblank,max=255"`
	GradeLevelID int64  `json:"grade_level_id" validate:"required"`
}

// Field messages for section writes.
const (
	MsgNameTaken         = "The name has already been taken."
	MsgGradeLevelInvalid = "The selected grade level id is invalid."
	sectionFieldName     = "name"
	sectionFieldGradeLvl = "grade_level_id"
)

// sectionRefChecker looks up the references a section write depends on.
type sectionRefChecker interface {
	GetGradeLevel(ctx context.Context, id int64) (section.GradeLevel, error)
	NameTaken(ctx context.Context, gradeLevelID int64, name string, excludeID int64) (bool, error)
}

// prepareSection validates input and checks grade level and name uniqueness.
// POST: returns a normalized section or validation.FieldErrors
func prepareSection(ctx context.Context, input SectionInput, excludeID int64, store sectionRefChecker) (section.Section, error) {
	if err := validation.Struct(input); err != nil {
		return section.Section{}, err
	}
	sec := section.Section{ID: excludeID, Name: input.Name, GradeLevelID: input.GradeLevelID}
	sec.Normalize()
	if err := sec.Validate(); err != nil {
		return section.Section{}, domainFieldError(err)
	}

	if _, err := store.GetGradeLevel(ctx, sec.GradeLevelID); err != nil {
		if errors.Is(err, section.ErrGradeLevelUnknown) {
			return section.Section{}, validation.FieldErrors{sectionFieldGradeLvl: MsgGradeLevelInvalid}
		}
		return section.Section{}, fmt.Errorf("load grade level: %w", err)
	}

	taken, err := store.NameTaken(ctx, sec.GradeLevelID, sec.Name, excludeID)
	if err != nil {
		return section.Section{}, fmt.Errorf("check section name: %w", err)
	}
	if taken {
		return section.Section{}, validation.FieldErrors{sectionFieldName: MsgNameTaken}
	}
	return sec, nil
}

// domainFieldError maps store and domain errors onto form fields. Errors that
// do not belong to a field are returned unchanged.
func domainFieldError(err error) error {
	switch {
	case errors.Is(err, section.ErrDuplicateName):
		return validation.FieldErrors{sectionFieldName: MsgNameTaken}
	case errors.Is(err, section.ErrGradeLevelUnknown):
		return validation.FieldErrors{sectionFieldGradeLvl: MsgGradeLevelInvalid}
	case errors.Is(err, section.ErrEmptyName):
		return validation.FieldErrors{sectionFieldName: "The name field is required."}
	case errors.Is(err, section.ErrNameTooLong):
		return validation.FieldErrors{sectionFieldName: "The name may not be greater than 255 characters."}
	case errors.Is(err, section.ErrMissingGradeLevel):
		return validation.FieldErrors{sectionFieldGradeLvl: "The grade level id field is required."}
	}
	return err
}

// mutationOutcome labels a section write for metrics.
func mutationOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	if _, ok := validation.AsFieldErrors(err); ok {
		return "invalid"
	}
	if errors.Is(err, section.ErrNotFound) {
		return "not_found"
	}
	return "error"
}
