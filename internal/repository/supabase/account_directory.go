package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/univio-api/internal/domain/entity"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"github.com/yourusername/univio-api/pkg/supabase"
	"go.uber.org/zap"
)

// AuthAPI is the subset of the Supabase auth client used here.
type AuthAPI interface {
	ListUsers(ctx context.Context, page, perPage int) ([]supabase.User, error)
	GetUser(ctx context.Context, id string) (*supabase.User, error)
	UpdateUserMetadata(ctx context.Context, id string, metadata map[string]interface{}) (*supabase.User, error)
	ConfirmEmail(ctx context.Context, id string) (*supabase.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.TokenResponse, error)
	Recover(ctx context.Context, email, redirectTo string) error
}

// AccountDirectory implements repository.AccountDirectory and repository.IdentityAuth
// on top of the Supabase admin API.
type AccountDirectory struct {
	api     AuthAPI
	perPage int
	log     *zap.Logger
}

func NewAccountDirectory(api AuthAPI, log *zap.Logger) *AccountDirectory {
	return &AccountDirectory{api: api, perPage: supabase.DefaultPerPage, log: log.Named("account_directory")}
}

// FindByMetadataField pages through every user until one has metadata[key] == value.
// The admin API has no metadata filter, so this is a full scan.
func (d *AccountDirectory) FindByMetadataField(ctx context.Context, key, value string) (*entity.Account, error) {
	return d.scan(ctx, func(u *supabase.User) bool {
		v, ok := u.UserMetadata[key].(string)
		return ok && v == value
	})
}

func (d *AccountDirectory) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return d.scan(ctx, func(u *supabase.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (d *AccountDirectory) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	user, err := d.api.GetUser(ctx, id)
	if err != nil {
		if supabase.IsNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get user %s: %v", apperrors.ErrUpstream, id, err)
	}
	return toAccount(user), nil
}

func (d *AccountDirectory) UpdateMetadata(ctx context.Context, id string, metadata map[string]interface{}) error {
	if _, err := d.api.UpdateUserMetadata(ctx, id, metadata); err != nil {
		if supabase.IsNotFound(err) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: update metadata of user %s: %v", apperrors.ErrUpstream, id, err)
	}
	return nil
}

func (d *AccountDirectory) ConfirmEmail(ctx context.Context, id string) error {
	if _, err := d.api.ConfirmEmail(ctx, id); err != nil {
		if supabase.IsNotFound(err) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: confirm email of user %s: %v", apperrors.ErrUpstream, id, err)
	}
	return nil
}

func (d *AccountDirectory) SignInWithPassword(ctx context.Context, email, password string) (*entity.Session, error) {
	token, err := d.api.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	return &entity.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    token.ExpiresIn,
		User:         toAccount(token.User),
	}, nil
}

func (d *AccountDirectory) SendRecoveryEmail(ctx context.Context, email, redirectTo string) error {
	if err := d.api.Recover(ctx, email, redirectTo); err != nil {
		return fmt.Errorf("%w: recover: %v", apperrors.ErrUpstream, err)
	}
	return nil
}

func (d *AccountDirectory) scan(ctx context.Context, match func(*supabase.User) bool) (*entity.Account, error) {
	scanned := 0
	for page := 1; ; page++ {
		users, err := d.api.ListUsers(ctx, page, d.perPage)
		if err != nil {
			return nil, fmt.Errorf("%w: list users page %d: %v", apperrors.ErrUpstream, page, err)
		}
		for i := range users {
			if match(&users[i]) {
				return toAccount(&users[i]), nil
			}
		}
		scanned += len(users)
		if len(users) < d.perPage {
			d.log.Debug("account scan finished without match", zap.Int("scanned", scanned))
			return nil, apperrors.ErrNotFound
		}
	}
}

func toAccount(u *supabase.User) *entity.Account {
	if u == nil {
		return nil
	}
	metadata := u.UserMetadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return &entity.Account{
		ID:               u.ID,
		Email:            u.Email,
		Metadata:         metadata,
		EmailConfirmedAt: u.EmailConfirmedAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
