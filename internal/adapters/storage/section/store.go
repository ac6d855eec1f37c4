package section

import (
	"context"

	domain "schooladmin/internal/domain/section"
)

// Store persists Section state and reads grade level reference data.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Section, error)
	List(ctx context.Context) ([]domain.Section, error)
	Create(ctx context.Context, value domain.Section) (int64, error)
	Update(ctx context.Context, value domain.Section) error
	Delete(ctx context.Context, id int64) error
	NameTaken(ctx context.Context, gradeLevelID int64, name string, excludeID int64) (bool, error)
	GradeLevelStore
}

// GradeLevelStore reads and seeds grade levels.
type GradeLevelStore interface {
	ListGradeLevels(ctx context.Context) ([]domain.GradeLevel, error)
	GetGradeLevel(ctx context.Context, id int64) (domain.GradeLevel, error)
	EnsureGradeLevel(ctx context.Context, name string, position int) (int64, error)
}
