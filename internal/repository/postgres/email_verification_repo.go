package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/univio-api/internal/domain/entity"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WriteStrategy selects how Upsert replaces an existing record.
type WriteStrategy int

const (
	// WriteStandard deletes the previous record and inserts the new one in a transaction.
	WriteStandard WriteStrategy = iota
	// WriteFast issues a single INSERT ... ON CONFLICT (email) DO UPDATE.
	WriteFast
)

func (s WriteStrategy) String() string {
	if s == WriteFast {
		return "fast"
	}
	return "standard"
}

// WriteStrategyFromFlag maps the USE_FAST_VERIFICATION_TEMPLATES flag to a strategy.
func WriteStrategyFromFlag(fast bool) WriteStrategy {
	if fast {
		return WriteFast
	}
	return WriteStandard
}

type EmailVerificationRepo struct {
	db       *gorm.DB
	strategy WriteStrategy
}

func NewEmailVerificationRepo(db *gorm.DB, strategy WriteStrategy) *EmailVerificationRepo {
	return &EmailVerificationRepo{db: db, strategy: strategy}
}

// Strategy returns the configured write strategy.
func (r *EmailVerificationRepo) Strategy() WriteStrategy {
	return r.strategy
}

func (r *EmailVerificationRepo) Upsert(ctx context.Context, record *entity.EmailVerification) error {
	if record == nil || record.Email == "" {
		return fmt.Errorf("%w: verification record requires an email", apperrors.ErrValidation)
	}

	var err error
	switch r.strategy {
	case WriteFast:
		err = r.upsertStatement(r.db.WithContext(ctx), record).Error
	default:
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("email = ?", record.Email).Delete(&entity.EmailVerification{}).Error; err != nil {
				return err
			}
			return tx.Create(record).Error
		})
	}
	if err != nil {
		return fmt.Errorf("failed to store verification code (%s): %w", r.strategy, err)
	}
	return nil
}

func (r *EmailVerificationRepo) upsertStatement(db *gorm.DB, record *entity.EmailVerification) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "purpose", "attempts", "created_at", "expires_at"}),
	}).Create(record)
}

func (r *EmailVerificationRepo) GetByEmail(ctx context.Context, email string) (*entity.EmailVerification, error) {
	var record entity.EmailVerification
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get verification code: %w", err)
	}
	return &record, nil
}

func (r *EmailVerificationRepo) IncrementAttempts(ctx context.Context, email string) error {
	err := r.db.WithContext(ctx).Model(&entity.EmailVerification{}).
		Where("email = ?", email).
		Update("attempts", gorm.Expr("attempts + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment verification attempts: %w", err)
	}
	return nil
}

func (r *EmailVerificationRepo) Delete(ctx context.Context, email string) (int64, error) {
	result := r.db.WithContext(ctx).Where("email = ?", email).Delete(&entity.EmailVerification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete verification code: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *EmailVerificationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&entity.EmailVerification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired verification codes: %w", result.Error)
	}
	return result.RowsAffected, nil
}
