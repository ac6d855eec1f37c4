package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"schooladmin/internal/domain/section"
	"schooladmin/internal/metrics"
)

// SectionStoreForCreate defines the store interface needed by CreateSection.
type SectionStoreForCreate interface {
	sectionRefChecker
	Create(ctx context.Context, s section.Section) (int64, error)
	GetByID(ctx context.Context, id int64) (section.Section, error)
}

// CreateSectionDeps holds dependencies for CreateSection.
type CreateSectionDeps struct {
	SectionStore SectionStoreForCreate
}

// ExecuteCreateSection adds a section to a grade level.
// PRE: none; input problems come back as validation.FieldErrors
// POST: the stored section is returned with its grade level loaded
// INVARIANT: section names are unique within a grade level
func ExecuteCreateSection(ctx context.Context, input SectionInput, deps CreateSectionDeps) (sec section.Section, err error) {
	defer func() { metrics.SectionMutation("create", mutationOutcome(err)) }()

	sec, err = prepareSection(ctx, input, 0, deps.SectionStore)
	if err != nil {
		return section.Section{}, err
	}

	id, err := deps.SectionStore.Create(ctx, sec)
	if err != nil {
		return section.Section{}, domainFieldError(err)
	}

	created, err := deps.SectionStore.GetByID(ctx, id)
	if err != nil {
		return section.Section{}, fmt.Errorf("reload created section: %w", err)
	}
	slog.Info("section_event", "event", "created", "section_id", id, "name", created.Name, "grade_level_id", created.GradeLevelID)
	return created, nil
}
