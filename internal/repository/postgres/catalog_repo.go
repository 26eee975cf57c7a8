package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/domain/repository"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"gorm.io/gorm"
)

// CatalogRepo implements repository.CatalogRepository
type CatalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) ListInstitutions(ctx context.Context, limit int) ([]entity.Institution, error) {
	var institutions []entity.Institution
	q := r.db.WithContext(ctx).Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&institutions).Error; err != nil {
		return nil, fmt.Errorf("failed to list institutions: %w", err)
	}
	return institutions, nil
}

func (r *CatalogRepo) CountInstitutions(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Institution{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count institutions: %w", err)
	}
	return count, nil
}

func (r *CatalogRepo) CreateInstitutions(ctx context.Context, institutions []entity.Institution) error {
	if len(institutions) == 0 {
		return nil
	}
	for i := range institutions {
		if institutions[i].ID == "" {
			institutions[i].ID = uuid.NewString()
		}
	}
	if err := r.db.WithContext(ctx).Create(&institutions).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: institution already exists", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create institutions: %w", err)
	}
	return nil
}

func (r *CatalogRepo) ListMajors(ctx context.Context, limit int) ([]entity.Major, error) {
	var majors []entity.Major
	q := r.db.WithContext(ctx).Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&majors).Error; err != nil {
		return nil, fmt.Errorf("failed to list majors: %w", err)
	}
	return majors, nil
}

func (r *CatalogRepo) CountMajors(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Major{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count majors: %w", err)
	}
	return count, nil
}

func (r *CatalogRepo) CreateMajors(ctx context.Context, majors []entity.Major) error {
	if len(majors) == 0 {
		return nil
	}
	for i := range majors {
		if majors[i].ID == "" {
			majors[i].ID = uuid.NewString()
		}
	}
	if err := r.db.WithContext(ctx).Create(&majors).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: major already exists", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create majors: %w", err)
	}
	return nil
}

func (r *CatalogRepo) CreateCourse(ctx context.Context, course *entity.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Omit("Institution").Create(course).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: course %s already exists at this institution", apperrors.ErrConflict, course.CourseCode)
		}
		return fmt.Errorf("failed to create course %s: %w", course.CourseCode, err)
	}
	return nil
}

func (r *CatalogRepo) ListCourses(ctx context.Context, filter repository.CourseFilter) ([]entity.Course, error) {
	var courses []entity.Course
	q := r.db.WithContext(ctx).
		Joins("Institution").
		Order("courses.subject_area ASC, courses.course_code ASC")

	if filter.InstitutionID != "" {
		q = q.Where("courses.institution_id = ?", filter.InstitutionID)
	}
	if filter.InstitutionName != "" {
		q = q.Where("courses.institution_name ILIKE ?", "%"+filter.InstitutionName+"%")
	}

	if err := q.Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}
