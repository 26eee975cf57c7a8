package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/domain/repository"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"go.uber.org/zap"
)

// DefaultVerificationTTL is the lifetime of an issued code.
const DefaultVerificationTTL = 10 * time.Minute

// VerificationService issues and checks one-time email codes.
type VerificationService struct {
	store repository.EmailVerificationRepository
	ttl   time.Duration
	log   *zap.Logger
	now   func() time.Time
}

func NewVerificationService(store repository.EmailVerificationRepository, ttl time.Duration, log *zap.Logger) (*VerificationService, error) {
	if store == nil {
		return nil, fmt.Errorf("email verification repository is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}
	return &VerificationService{
		store: store,
		ttl:   ttl,
		log:   log.Named("verification"),
		now:   time.Now,
	}, nil
}

// TTL returns the configured code lifetime.
func (s *VerificationService) TTL() time.Duration {
	return s.ttl
}

// Issue generates a new code for email and replaces any outstanding one.
func (s *VerificationService) Issue(ctx context.Context, email string, purpose entity.VerificationPurpose) (*entity.EmailVerification, error) {
	key := entity.NormalizeEmail(email)
	if key == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	now := s.now()
	record := &entity.EmailVerification{
		Email:     key,
		Code:      code,
		Purpose:   purpose,
		Attempts:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		s.log.Error("failed to store verification code", zap.String("email", key), zap.Error(err))
		return nil, err
	}

	s.log.Info("verification code issued",
		zap.String("email", key),
		zap.String("purpose", string(purpose)),
		zap.Time("expires_at", record.ExpiresAt))
	return record, nil
}

// Check validates code against the stored record for email.
// A successful check consumes the record.
func (s *VerificationService) Check(ctx context.Context, email, code string) error {
	key := entity.NormalizeEmail(email)
	if key == "" || strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: email and code are required", apperrors.ErrValidation)
	}

	record, err := s.store.GetByEmail(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrVerificationNotFound
		}
		return fmt.Errorf("failed to load verification code: %w", err)
	}

	// Expired and locked records are left in place; cleanup or a reissue removes them.
	if record.IsExpired(s.now()) {
		return ErrVerificationExpired
	}
	if record.IsLocked() {
		return ErrVerificationAttemptsExceeded
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(record.Code)) != 1 {
		if err := s.store.IncrementAttempts(ctx, key); err != nil {
			return fmt.Errorf("failed to record verification attempt: %w", err)
		}
		left := record.AttemptsRemaining() - 1
		s.log.Info("invalid verification code", zap.String("email", key), zap.Int("attempts_left", left))
		return &InvalidCodeError{Remaining: left}
	}

	if _, err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}
	s.log.Info("email verified", zap.String("email", key))
	return nil
}

// Clear drops any outstanding code for email.
func (s *VerificationService) Clear(ctx context.Context, email string) (int64, error) {
	key := entity.NormalizeEmail(email)
	if key == "" {
		return 0, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}
	n, err := s.store.Delete(ctx, key)
	if err != nil {
		return 0, err
	}
	s.log.Info("verification code cleared", zap.String("email", key), zap.Int64("deleted", n))
	return n, nil
}

// CleanupExpired deletes every expired record.
func (s *VerificationService) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired verification codes removed", zap.Int64("deleted", n))
	}
	return n, nil
}

// RunCleanup calls CleanupExpired every interval until ctx is cancelled.
func (s *VerificationService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("verification cleanup started", zap.Duration("interval", interval))
	for {
		select {
		case <-ticker.C:
			if _, err := s.CleanupExpired(ctx); err != nil {
				s.log.Error("verification cleanup failed", zap.Error(err))
			}
		case <-ctx.Done():
			s.log.Info("verification cleanup stopped")
			return
		}
	}
}

func generateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
