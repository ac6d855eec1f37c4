package projections

import (
	"context"
	"fmt"

	"schooladmin/internal/domain/archive"
)

// GetArchivesQuery carries query parameters.
type GetArchivesQuery struct{}

// GetArchivesResult carries the archive browser payload.
type GetArchivesResult struct {
	Groups []archive.Group
}

// GetArchivesDeps holds dependencies for GetArchives.
type GetArchivesDeps struct {
	ArchiveStore ArchiveStore
}

// QueryGetArchives loads every archived school year with its records.
// POST: Groups is non-nil and ordered most recent year first
func QueryGetArchives(ctx context.Context, _ GetArchivesQuery, deps GetArchivesDeps) (GetArchivesResult, error) {
	years, err := deps.ArchiveStore.ListArchivedSchoolYears(ctx)
	if err != nil {
		return GetArchivesResult{}, err
	}
	groups := make([]archive.Group, 0, len(years))
	for _, y := range years {
		g, err := loadGroup(ctx, y, deps.ArchiveStore)
		if err != nil {
			return GetArchivesResult{}, err
		}
		groups = append(groups, g)
	}
	return GetArchivesResult{Groups: groups}, nil
}

// GetArchiveQuery selects one archived school year.
type GetArchiveQuery struct {
	SchoolYearID int64
}

// QueryGetArchive loads a single archived school year with its records.
// POST: archive.ErrSchoolYearNotFound when the year is missing or not archived
func QueryGetArchive(ctx context.Context, query GetArchiveQuery, deps GetArchivesDeps) (archive.Group, error) {
	y, err := deps.ArchiveStore.GetArchivedSchoolYear(ctx, query.SchoolYearID)
	if err != nil {
		return archive.Group{}, err
	}
	return loadGroup(ctx, y, deps.ArchiveStore)
}

func loadGroup(ctx context.Context, y archive.SchoolYear, store ArchiveStore) (archive.Group, error) {
	students, err := store.ListStudents(ctx, y.ID)
	if err != nil {
		return archive.Group{}, fmt.Errorf("students for %s: %w", y.Name, err)
	}
	payments, err := store.ListPayments(ctx, y.ID)
	if err != nil {
		return archive.Group{}, fmt.Errorf("payments for %s: %w", y.Name, err)
	}
	donations, err := store.ListDonations(ctx, y.ID)
	if err != nil {
		return archive.Group{}, fmt.Errorf("donations for %s: %w", y.Name, err)
	}
	return archive.Group{SchoolYear: y, Students: students, Payments: payments, Donations: donations}, nil
}
