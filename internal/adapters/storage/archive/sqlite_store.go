package archive

import (
	"context"
	"database/sql"
	"errors"

	"schooladmin/internal/adapters/storage"
	domain "schooladmin/internal/domain/archive"
)

// SQLiteStore implements Store and Writer using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ArchiveStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListArchivedSchoolYears returns archived years, most recent first.
func (s *SQLiteStore) ListArchivedSchoolYears(ctx context.Context) ([]domain.SchoolYear, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, remarks FROM school_year WHERE archived = 1 ORDER BY name DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.SchoolYear{}
	for rows.Next() {
		var y domain.SchoolYear
		if err := rows.Scan(&y.ID, &y.Name, &y.Remarks); err != nil {
			return nil, err
		}
		results = append(results, y)
	}
	return results, rows.Err()
}

// GetArchivedSchoolYear returns one archived year.
// POST: domain.ErrSchoolYearNotFound when missing or not archived
func (s *SQLiteStore) GetArchivedSchoolYear(ctx context.Context, id int64) (domain.SchoolYear, error) {
	var y domain.SchoolYear
	err := s.db.QueryRowContext(ctx, "SELECT id, name, remarks FROM school_year WHERE id = ? AND archived = 1", id).
		Scan(&y.ID, &y.Name, &y.Remarks)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SchoolYear{}, domain.ErrSchoolYearNotFound
	}
	return y, err
}

// ListStudents returns the year's students by last then first name.
func (s *SQLiteStore) ListStudents(ctx context.Context, schoolYearID int64) ([]domain.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, first_name, last_name FROM student WHERE school_year_id = ? ORDER BY last_name COLLATE NOCASE, first_name COLLATE NOCASE",
		schoolYearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Student{}
	for rows.Next() {
		var st domain.Student
		if err := rows.Scan(&st.ID, &st.FirstName, &st.LastName); err != nil {
			return nil, err
		}
		results = append(results, st)
	}
	return results, rows.Err()
}

// ListPayments returns the year's payments in date order, with payers attached when known.
func (s *SQLiteStore) ListPayments(ctx context.Context, schoolYearID int64) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.id, p.amount_paid, p.payment_date, st.id, st.first_name, st.last_name
		FROM payment p LEFT JOIN student st ON st.id = p.student_id
		WHERE p.school_year_id = ? ORDER BY p.payment_date, p.id`, schoolYearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		var amount sql.NullFloat64
		var date, first, last sql.NullString
		var studentID sql.NullInt64
		if err := rows.Scan(&p.ID, &amount, &date, &studentID, &first, &last); err != nil {
			return nil, err
		}
		p.AmountPaid = floatPtr(amount)
		p.PaymentDate = domain.ParseDate(date.String)
		if studentID.Valid {
			p.Student = &domain.Student{ID: studentID.Int64, FirstName: first.String, LastName: last.String}
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// ListDonations returns the year's donations in date order.
func (s *SQLiteStore) ListDonations(ctx context.Context, schoolYearID int64) ([]domain.Donation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, donated_by, donation_amount, donation_date FROM donation WHERE school_year_id = ? ORDER BY donation_date, id",
		schoolYearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Donation{}
	for rows.Next() {
		var d domain.Donation
		var amount sql.NullFloat64
		var date sql.NullString
		if err := rows.Scan(&d.ID, &d.DonatedBy, &amount, &date); err != nil {
			return nil, err
		}
		d.DonationAmount = floatPtr(amount)
		d.DonationDate = domain.ParseDate(date.String)
		results = append(results, d)
	}
	return results, rows.Err()
}

// CreateSchoolYear inserts a school year.
func (s *SQLiteStore) CreateSchoolYear(ctx context.Context, year domain.SchoolYear, archived bool) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO school_year (name, remarks, archived) VALUES (?, ?, ?)",
		year.Name, year.Remarks, archived)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FindSchoolYearByName looks a year up regardless of archive state.
func (s *SQLiteStore) FindSchoolYearByName(ctx context.Context, name string) (domain.SchoolYear, error) {
	var y domain.SchoolYear
	err := s.db.QueryRowContext(ctx, "SELECT id, name, remarks FROM school_year WHERE name = ?", name).
		Scan(&y.ID, &y.Name, &y.Remarks)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SchoolYear{}, domain.ErrSchoolYearNotFound
	}
	return y, err
}

// AddStudent inserts a student into a year.
func (s *SQLiteStore) AddStudent(ctx context.Context, schoolYearID int64, st domain.Student) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO student (school_year_id, first_name, last_name) VALUES (?, ?, ?)",
		schoolYearID, st.FirstName, st.LastName)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AddPayment inserts a payment; a nil Student stores no payer.
func (s *SQLiteStore) AddPayment(ctx context.Context, schoolYearID int64, p domain.Payment) (int64, error) {
	var studentID any
	if p.Student != nil {
		studentID = p.Student.ID
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO payment (school_year_id, student_id, amount_paid, payment_date) VALUES (?, ?, ?, ?)",
		schoolYearID, studentID, nullableFloat(p.AmountPaid), nullableDate(p.PaymentDate))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AddDonation inserts a donation.
func (s *SQLiteStore) AddDonation(ctx context.Context, schoolYearID int64, d domain.Donation) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO donation (school_year_id, donated_by, donation_amount, donation_date) VALUES (?, ?, ?, ?)",
		schoolYearID, d.DonatedBy, nullableFloat(d.DonationAmount), nullableDate(d.DonationDate))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableDate(d domain.Date) any {
	if !d.Valid() {
		return nil
	}
	return d.String()
}
