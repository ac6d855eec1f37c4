package sections

import (
	"strings"

	"schooladmin/internal/application/validation"
)

// Draft is the editable part of a section.
type Draft struct {
	Name         string
	GradeLevelID int64
}

// check applies the presence checks the inputs enforce before anything is sent.
func (d Draft) check() validation.FieldErrors {
	fe := validation.FieldErrors{}
	if strings.TrimSpace(d.Name) == "" {
		fe.Add("name", "The name field is required.")
	}
	if d.GradeLevelID <= 0 {
		fe.Add("grade_level_id", "The grade level id field is required.")
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// CreateSlot is the "new section" form. It is never touched by edits.
type CreateSlot struct {
	Draft
	Errors validation.FieldErrors
}

// EditSlot is the inline editor for exactly one section.
type EditSlot struct {
	SectionID int64
	Draft
	Errors validation.FieldErrors
}

func cloneErrors(fe validation.FieldErrors) validation.FieldErrors {
	if fe == nil {
		return nil
	}
	out := make(validation.FieldErrors, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}
