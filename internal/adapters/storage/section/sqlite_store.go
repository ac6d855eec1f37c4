package section

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"schooladmin/internal/adapters/storage"
	domain "schooladmin/internal/domain/section"
)

const selectSections = `SELECT s.id, s.name, s.grade_level_id, g.id, g.name
	FROM section s LEFT JOIN grade_level g ON g.id = s.grade_level_id`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new SectionStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// GetByID retrieves a Section with its grade level.
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Section, error) {
	row := s.db.QueryRowContext(ctx, selectSections+" WHERE s.id = ?", id)
	sec, err := scanSection(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Section{}, domain.ErrNotFound
	}
	return sec, err
}

// List retrieves all Sections ordered by grade level then name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Section, error) {
	rows, err := s.db.QueryContext(ctx, selectSections+" ORDER BY g.position, g.name, s.name COLLATE NOCASE")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Section{}
	for rows.Next() {
		sec, err := scanSection(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, sec)
	}
	return results, rows.Err()
}

// Create inserts a Section and returns its ID.
// PRE: entity has been validated
// POST: domain.ErrDuplicateName or domain.ErrGradeLevelUnknown on constraint failures
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Section) (int64, error) {
	now := s.now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO section (name, grade_level_id, created_at, updated_at) VALUES (?, ?, ?, ?)",
		entity.Name, entity.GradeLevelID, now, now,
	)
	if err != nil {
		return 0, translateConstraint(err)
	}
	return res.LastInsertId()
}

// Update overwrites a Section's name and grade level. Last write wins.
// POST: domain.ErrNotFound when no row has the ID
func (s *SQLiteStore) Update(ctx context.Context, entity domain.Section) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE section SET name = ?, grade_level_id = ?, updated_at = ? WHERE id = ?",
		entity.Name, entity.GradeLevelID, s.now().UTC().Format(time.RFC3339), entity.ID,
	)
	if err != nil {
		return translateConstraint(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a Section.
// POST: domain.ErrNotFound when no row has the ID
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM section WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// NameTaken reports whether another section in the grade level already uses name.
func (s *SQLiteStore) NameTaken(ctx context.Context, gradeLevelID int64, name string, excludeID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM section WHERE grade_level_id = ? AND name = ? COLLATE NOCASE AND id != ?",
		gradeLevelID, name, excludeID,
	).Scan(&n)
	return n > 0, err
}

// ListGradeLevels retrieves grade levels in display order.
func (s *SQLiteStore) ListGradeLevels(ctx context.Context) ([]domain.GradeLevel, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM grade_level ORDER BY position, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.GradeLevel{}
	for rows.Next() {
		var g domain.GradeLevel
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		results = append(results, g)
	}
	return results, rows.Err()
}

// GetGradeLevel retrieves one grade level.
// POST: domain.ErrGradeLevelUnknown when missing
func (s *SQLiteStore) GetGradeLevel(ctx context.Context, id int64) (domain.GradeLevel, error) {
	var g domain.GradeLevel
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM grade_level WHERE id = ?", id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GradeLevel{}, domain.ErrGradeLevelUnknown
	}
	return g, err
}

// EnsureGradeLevel inserts the grade level if its name is new and returns its ID.
// POST: idempotent by name
func (s *SQLiteStore) EnsureGradeLevel(ctx context.Context, name string, position int) (int64, error) {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO grade_level (name, position) VALUES (?, ?) ON CONFLICT(name) DO NOTHING", name, position,
	); err != nil {
		return 0, fmt.Errorf("ensure grade level %q: %w", name, err)
	}
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM grade_level WHERE name = ?", name).Scan(&id)
	return id, err
}

func scanSection(scan func(dest ...any) error) (domain.Section, error) {
	var sec domain.Section
	var gID sql.NullInt64
	var gName sql.NullString
	if err := scan(&sec.ID, &sec.Name, &sec.GradeLevelID, &gID, &gName); err != nil {
		return domain.Section{}, err
	}
	if gID.Valid {
		sec.GradeLevel = &domain.GradeLevel{ID: gID.Int64, Name: gName.String}
	}
	return sec, nil
}

func translateConstraint(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return domain.ErrDuplicateName
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return domain.ErrGradeLevelUnknown
	}
	return err
}
