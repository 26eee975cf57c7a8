package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/univio-api/internal/domain/entity"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"gorm.io/gorm"
)

type AcademicProfileRepo struct {
	db *gorm.DB
}

func NewAcademicProfileRepo(db *gorm.DB) *AcademicProfileRepo {
	return &AcademicProfileRepo{db: db}
}

func (r *AcademicProfileRepo) GetByUserID(ctx context.Context, userID string) (*entity.AcademicProfile, error) {
	var profile entity.AcademicProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get academic profile: %w", err)
	}
	return &profile, nil
}

func (r *AcademicProfileRepo) Create(ctx context.Context, profile *entity.AcademicProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: academic profile already exists", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create academic profile: %w", err)
	}
	return nil
}

func (r *AcademicProfileRepo) UpdateByUserID(ctx context.Context, userID string, updates map[string]interface{}) (*entity.AcademicProfile, error) {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&entity.AcademicProfile{}).
		Where("user_id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update academic profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.GetByUserID(ctx, userID)
}
