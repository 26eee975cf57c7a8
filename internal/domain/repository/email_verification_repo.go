package repository

import (
	"context"
	"time"

	"github.com/yourusername/univio-api/internal/domain/entity"
)

// EmailVerificationRepository persists the one outstanding code per email.
// Implementations receive already normalized addresses.
type EmailVerificationRepository interface {
	// Upsert writes the record, replacing any existing record for the same email.
	Upsert(ctx context.Context, record *entity.EmailVerification) error
	// GetByEmail returns apperrors.ErrNotFound when no record exists.
	GetByEmail(ctx context.Context, email string) (*entity.EmailVerification, error)
	IncrementAttempts(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) (int64, error)
	// DeleteExpired removes every record with expires_at before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
