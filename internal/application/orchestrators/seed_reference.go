package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"schooladmin/internal/domain/archive"
)

// GradeLevelSeeder inserts grade levels idempotently.
type GradeLevelSeeder interface {
	EnsureGradeLevel(ctx context.Context, name string, position int) (int64, error)
}

// GradeLevelNames lists the seeded grade levels in display order.
var GradeLevelNames = []string{"Grade 7", "Grade 8", "Grade 9", "Grade 10", "Grade 11", "Grade 12"}

// ExecuteSeedGradeLevels ensures every grade level exists.
// POST: running twice leaves one row per name
func ExecuteSeedGradeLevels(ctx context.Context, store GradeLevelSeeder) error {
	for i, name := range GradeLevelNames {
		if _, err := store.EnsureGradeLevel(ctx, name, i+7); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveSeeder writes archive records.
type ArchiveSeeder interface {
	CreateSchoolYear(ctx context.Context, year archive.SchoolYear, archived bool) (int64, error)
	FindSchoolYearByName(ctx context.Context, name string) (archive.SchoolYear, error)
	AddStudent(ctx context.Context, schoolYearID int64, s archive.Student) (int64, error)
	AddPayment(ctx context.Context, schoolYearID int64, p archive.Payment) (int64, error)
	AddDonation(ctx context.Context, schoolYearID int64, d archive.Donation) (int64, error)
}

// DemoSchoolYear is the name of the sample archived year.
const DemoSchoolYear = "2023-2024"

// ExecuteSeedDemoArchive adds one archived school year with sample records for
// local development. It does nothing when the year already exists.
// POST: includes a payment without a student and one without a date
func ExecuteSeedDemoArchive(ctx context.Context, store ArchiveSeeder) error {
	if _, err := store.FindSchoolYearByName(ctx, DemoSchoolYear); err == nil {
		return nil
	}

	yearID, err := store.CreateSchoolYear(ctx, archive.SchoolYear{
		Name:    DemoSchoolYear,
		Remarks: "Closed **June 2024**. Totals reconciled with the cashier's ledger.",
	}, true)
	if err != nil {
		return fmt.Errorf("create demo school year: %w", err)
	}

	ids := make([]int64, 0, 3)
	for _, s := range []archive.Student{
		{FirstName: "Ana", LastName: "Santos"},
		{FirstName: "Ben", LastName: "Cruz"},
		{FirstName: "Carla", LastName: "Reyes"},
	} {
		id, err := store.AddStudent(ctx, yearID, s)
		if err != nil {
			return fmt.Errorf("add demo student: %w", err)
		}
		ids = append(ids, id)
	}

	peso := func(v float64) *float64 { return &v }
	payments := []archive.Payment{
		{Student: &archive.Student{ID: ids[0]}, AmountPaid: peso(1000), PaymentDate: archive.NewDate(2023, time.June, 5)},
		{Student: &archive.Student{ID: ids[1]}, AmountPaid: peso(2500.5), PaymentDate: archive.NewDate(2023, time.July, 12)},
		{Student: &archive.Student{ID: ids[2]}, AmountPaid: peso(750)},
		{AmountPaid: peso(300), PaymentDate: archive.NewDate(2023, time.August, 30)},
	}
	for _, p := range payments {
		if _, err := store.AddPayment(ctx, yearID, p); err != nil {
			return fmt.Errorf("add demo payment: %w", err)
		}
	}

	donations := []archive.Donation{
		{DonatedBy: "Parent-Teacher Association", DonationAmount: peso(15000), DonationDate: archive.NewDate(2023, time.September, 1)},
		{DonatedBy: "Alumni Batch 1999"},
	}
	for _, d := range donations {
		if _, err := store.AddDonation(ctx, yearID, d); err != nil {
			return fmt.Errorf("add demo donation: %w", err)
		}
	}

	slog.Info("seed_event", "event", "demo_archive", "school_year", DemoSchoolYear)
	return nil
}
