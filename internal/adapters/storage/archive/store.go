package archive

import (
	"context"

	domain "schooladmin/internal/domain/archive"
)

// Store reads archived school years and their records.
type Store interface {
	ListArchivedSchoolYears(ctx context.Context) ([]domain.SchoolYear, error)
	GetArchivedSchoolYear(ctx context.Context, id int64) (domain.SchoolYear, error)
	ListStudents(ctx context.Context, schoolYearID int64) ([]domain.Student, error)
	ListPayments(ctx context.Context, schoolYearID int64) ([]domain.Payment, error)
	ListDonations(ctx context.Context, schoolYearID int64) ([]domain.Donation, error)
}

// Writer inserts archive records. Used by seeding and tests only; the admin
// screens never mutate archives.
type Writer interface {
	CreateSchoolYear(ctx context.Context, year domain.SchoolYear, archived bool) (int64, error)
	FindSchoolYearByName(ctx context.Context, name string) (domain.SchoolYear, error)
	AddStudent(ctx context.Context, schoolYearID int64, s domain.Student) (int64, error)
	AddPayment(ctx context.Context, schoolYearID int64, p domain.Payment) (int64, error)
	AddDonation(ctx context.Context, schoolYearID int64, d domain.Donation) (int64, error)
}
