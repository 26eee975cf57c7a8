package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/domain/repository"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"go.uber.org/zap"
)

// AuthDebugReport is the outcome of a diagnostic sign-in.
type AuthDebugReport struct {
	UserID             string `json:"user_id"`
	Email              string `json:"email"`
	Confirmed          bool   `json:"confirmed"`
	EduEmail           string `json:"edu_email,omitempty"`
	EduEmailVerified   bool   `json:"edu_email_verified"`
	ProfileReadable    bool   `json:"profile_readable"`
	ProfileFound       bool   `json:"profile_found"`
	ProfileLookupError string `json:"profile_error,omitempty"`
}

// AccountService handles password flows delegated to the identity platform.
type AccountService struct {
	accounts  repository.AccountDirectory
	auth      repository.IdentityAuth
	profiles  repository.AcademicProfileRepository
	appDomain string
	log       *zap.Logger
}

func NewAccountService(
	accounts repository.AccountDirectory,
	auth repository.IdentityAuth,
	profiles repository.AcademicProfileRepository,
	appDomain string,
	log *zap.Logger,
) *AccountService {
	return &AccountService{
		accounts:  accounts,
		auth:      auth,
		profiles:  profiles,
		appDomain: strings.TrimRight(appDomain, "/"),
		log:       log.Named("account"),
	}
}

// ResetRedirectURL is where the recovery link lands.
func (s *AccountService) ResetRedirectURL() string {
	return s.appDomain + "/auth/reset-password"
}

// SendPasswordReset triggers a recovery email when the account exists.
// Unknown addresses and lookup failures return nil so callers cannot probe for accounts.
func (s *AccountService) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: valid email address is required", apperrors.ErrValidation)
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.log.Info("password reset requested for unknown email", zap.String("email", email))
		} else {
			s.log.Error("failed to check account for password reset", zap.String("email", email), zap.Error(err))
		}
		return nil
	}

	if err := s.auth.SendRecoveryEmail(ctx, email, s.ResetRedirectURL()); err != nil {
		s.log.Error("failed to send password reset email", zap.String("email", email), zap.Error(err))
		return err
	}
	s.log.Info("password reset email sent", zap.String("email", email))
	return nil
}

// DebugSignIn signs in with a password and reports what the account can reach.
func (s *AccountService) DebugSignIn(ctx context.Context, email, password string) (*AuthDebugReport, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperrors.ErrValidation)
	}

	session, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if session.User == nil {
		return nil, fmt.Errorf("%w: no user returned from auth", apperrors.ErrUnauthorized)
	}

	report := &AuthDebugReport{
		UserID:           session.User.ID,
		Email:            session.User.Email,
		Confirmed:        session.User.EmailConfirmedAt != nil,
		EduEmail:         session.User.MetaString(entity.MetaEduEmail),
		EduEmailVerified: session.User.EduEmailVerified(),
	}

	_, err = s.profiles.GetByUserID(ctx, session.User.ID)
	switch {
	case err == nil:
		report.ProfileReadable = true
		report.ProfileFound = true
	case errors.Is(err, apperrors.ErrNotFound):
		report.ProfileReadable = true
	default:
		report.ProfileLookupError = err.Error()
	}
	return report, nil
}
