package projections

import (
	"context"

	"schooladmin/internal/domain/archive"
	"schooladmin/internal/domain/section"
)

// ArchiveStore interface for archive queries.
type ArchiveStore interface {
	ListArchivedSchoolYears(ctx context.Context) ([]archive.SchoolYear, error)
	GetArchivedSchoolYear(ctx context.Context, id int64) (archive.SchoolYear, error)
	ListStudents(ctx context.Context, schoolYearID int64) ([]archive.Student, error)
	ListPayments(ctx context.Context, schoolYearID int64) ([]archive.Payment, error)
	ListDonations(ctx context.Context, schoolYearID int64) ([]archive.Donation, error)
}

// SectionStore interface for section queries.
type SectionStore interface {
	List(ctx context.Context) ([]section.Section, error)
	ListGradeLevels(ctx context.Context) ([]section.GradeLevel, error)
}
