package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/domain/repository"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"go.uber.org/zap"
)

// IdentityService writes verification results into account metadata.
type IdentityService struct {
	accounts repository.AccountDirectory
	log      *zap.Logger
	now      func() time.Time
}

func NewIdentityService(accounts repository.AccountDirectory, log *zap.Logger) *IdentityService {
	return &IdentityService{
		accounts: accounts,
		log:      log.Named("identity"),
		now:      time.Now,
	}
}

// MarkEduEmailVerified flags the account whose metadata edu_email equals eduEmail.
// It is best effort: failures are logged and never returned.
func (s *IdentityService) MarkEduEmailVerified(ctx context.Context, eduEmail string) {
	account, err := s.accounts.FindByMetadataField(ctx, entity.MetaEduEmail, eduEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.log.Info("no account linked to edu email yet", zap.String("edu_email", eduEmail))
			return
		}
		s.log.Error("failed to look up account by edu email", zap.String("edu_email", eduEmail), zap.Error(err))
		return
	}

	if err := s.markVerified(ctx, account, nil); err != nil {
		s.log.Error("failed to update edu verification metadata",
			zap.String("user_id", account.ID),
			zap.String("edu_email", eduEmail),
			zap.Error(err))
		return
	}
	s.log.Info("edu email marked verified", zap.String("user_id", account.ID), zap.String("edu_email", eduEmail))
}

// ForceEduEmailVerified marks the edu email of the account with loginEmail as verified.
// eduEmail may be empty, in which case the stored edu_email is used.
func (s *IdentityService) ForceEduEmailVerified(ctx context.Context, loginEmail, eduEmail string) (*entity.Account, error) {
	if strings.TrimSpace(loginEmail) == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}

	account, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(loginEmail))
	if err != nil {
		return nil, err
	}

	// An explicit edu email is stored as given; otherwise the linked one is kept untouched.
	eduEmail = strings.TrimSpace(eduEmail)
	var extra map[string]interface{}
	if eduEmail != "" {
		extra = map[string]interface{}{entity.MetaEduEmail: eduEmail}
	} else {
		eduEmail = account.MetaString(entity.MetaEduEmail)
	}
	if eduEmail == "" {
		return nil, fmt.Errorf("%w: no edu email found for this account", apperrors.ErrValidation)
	}

	if err := s.markVerified(ctx, account, extra); err != nil {
		return nil, err
	}
	s.log.Info("edu email verification forced", zap.String("user_id", account.ID), zap.String("edu_email", eduEmail))
	return account, nil
}

// markVerified writes edu_email_verified and edu_email_verified_at plus any extra keys.
func (s *IdentityService) markVerified(ctx context.Context, account *entity.Account, extra map[string]interface{}) error {
	updates := map[string]interface{}{
		entity.MetaEduEmailVerified:   true,
		entity.MetaEduEmailVerifiedAt: s.now().UTC().Format(time.RFC3339),
	}
	for k, v := range extra {
		updates[k] = v
	}
	metadata := entity.MergeMetadata(account.Metadata, updates)
	if err := s.accounts.UpdateMetadata(ctx, account.ID, metadata); err != nil {
		return err
	}
	account.Metadata = metadata
	return nil
}
