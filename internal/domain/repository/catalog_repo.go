package repository

import (
	"context"

	"github.com/yourusername/univio-api/internal/domain/entity"
)

// CourseFilter narrows ListCourses. Empty fields are ignored.
type CourseFilter struct {
	// InstitutionName is matched case-insensitively as a substring.
	InstitutionName string
	InstitutionID   string
}

// CatalogRepository provides access to institutions, majors and courses.
type CatalogRepository interface {
	ListInstitutions(ctx context.Context, limit int) ([]entity.Institution, error)
	CountInstitutions(ctx context.Context) (int64, error)
	CreateInstitutions(ctx context.Context, institutions []entity.Institution) error

	ListMajors(ctx context.Context, limit int) ([]entity.Major, error)
	CountMajors(ctx context.Context) (int64, error)
	CreateMajors(ctx context.Context, majors []entity.Major) error

	// CreateCourse returns apperrors.ErrConflict when the institution already lists the course code.
	CreateCourse(ctx context.Context, course *entity.Course) error
	ListCourses(ctx context.Context, filter CourseFilter) ([]entity.Course, error)
}

// AcademicProfileRepository stores one academic profile per user.
type AcademicProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.AcademicProfile, error)
	Create(ctx context.Context, profile *entity.AcademicProfile) error
	UpdateByUserID(ctx context.Context, userID string, updates map[string]interface{}) (*entity.AcademicProfile, error)
}

// HealthRepository backs the database diagnostics.
type HealthRepository interface {
	Ping(ctx context.Context) error
	// ProbeTable returns the row count of table, or an error if it cannot be read.
	ProbeTable(ctx context.Context, table string) (int64, error)
}
