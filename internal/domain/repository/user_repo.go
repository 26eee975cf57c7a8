package repository

import (
	"context"

	"github.com/yourusername/univio-api/internal/domain/entity"
)

// UserRepository stores registered users. Email lookups are case-insensitive.
type UserRepository interface {
	// Create returns apperrors.ErrConflict when the email or edu email is taken.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByEduEmail(ctx context.Context, eduEmail string) (*entity.User, error)
}
