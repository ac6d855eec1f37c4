package orchestrators

import (
	"context"
	"log/slog"

	"schooladmin/internal/domain/section"
	"schooladmin/internal/metrics"
)

// SectionStoreForDelete defines the store interface needed by DeleteSection.
type SectionStoreForDelete interface {
	GetByID(ctx context.Context, id int64) (section.Section, error)
	Delete(ctx context.Context, id int64) error
}

// DeleteSectionDeps holds dependencies for DeleteSection.
type DeleteSectionDeps struct {
	SectionStore SectionStoreForDelete
}

// ExecuteDeleteSection removes a section.
// POST: section.ErrNotFound when the ID is unknown
func ExecuteDeleteSection(ctx context.Context, id int64, deps DeleteSectionDeps) (err error) {
	defer func() { metrics.SectionMutation("delete", mutationOutcome(err)) }()

	sec, err := deps.SectionStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := deps.SectionStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("section_event", "event", "deleted", "section_id", id, "name", sec.Name)
	return nil
}
