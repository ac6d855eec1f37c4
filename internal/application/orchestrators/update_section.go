package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"schooladmin/internal/domain/section"
	"schooladmin/internal/metrics"
)

// SectionStoreForUpdate defines the store interface needed by UpdateSection.
type SectionStoreForUpdate interface {
	sectionRefChecker
	GetByID(ctx context.Context, id int64) (section.Section, error)
	Update(ctx context.Context, s section.Section) error
}

// UpdateSectionInput identifies the section and carries its new values.
type UpdateSectionInput struct {
	ID int64
	SectionInput
}

// UpdateSectionDeps holds dependencies for UpdateSection.
type UpdateSectionDeps struct {
	SectionStore SectionStoreForUpdate
}

// ExecuteUpdateSection renames a section or moves it to another grade level.
// PRE: none; input problems come back as validation.FieldErrors
// POST: section.ErrNotFound when the ID is unknown; otherwise the stored section
// INVARIANT: concurrent updates are last-write-wins
func ExecuteUpdateSection(ctx context.Context, input UpdateSectionInput, deps UpdateSectionDeps) (sec section.Section, err error) {
	defer func() { metrics.SectionMutation("update", mutationOutcome(err)) }()

	before, err := deps.SectionStore.GetByID(ctx, input.ID)
	if err != nil {
		return section.Section{}, err
	}

	sec, err = prepareSection(ctx, input.SectionInput, input.ID, deps.SectionStore)
	if err != nil {
		return section.Section{}, err
	}
	if err := deps.SectionStore.Update(ctx, sec); err != nil {
		return section.Section{}, domainFieldError(err)
	}

	updated, err := deps.SectionStore.GetByID(ctx, input.ID)
	if err != nil {
		return section.Section{}, fmt.Errorf("reload updated section: %w", err)
	}
	slog.Info("section_event", "event", "updated", "section_id", input.ID,
		"name_before", before.Name, "name", updated.Name, "grade_level_id", updated.GradeLevelID)
	return updated, nil
}
