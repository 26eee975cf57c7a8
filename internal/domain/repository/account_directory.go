package repository

import (
	"context"

	"github.com/yourusername/univio-api/internal/domain/entity"
)

// AccountDirectory reads and updates accounts held by the identity platform.
// Lookups return apperrors.ErrNotFound when no account matches.
type AccountDirectory interface {
	// FindByMetadataField returns the first account whose metadata[key] equals value exactly.
	FindByMetadataField(ctx context.Context, key, value string) (*entity.Account, error)
	// FindByEmail matches the login email case-insensitively.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	// UpdateMetadata replaces the account's metadata with the given map.
	UpdateMetadata(ctx context.Context, id string, metadata map[string]interface{}) error
	// ConfirmEmail marks the login email as confirmed.
	ConfirmEmail(ctx context.Context, id string) error
}

// IdentityAuth covers the password flows delegated to the identity platform.
type IdentityAuth interface {
	SignInWithPassword(ctx context.Context, email, password string) (*entity.Session, error)
	SendRecoveryEmail(ctx context.Context, email, redirectTo string) error
}
