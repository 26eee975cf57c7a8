package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/domain/repository"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrEmailRegistered    = fmt.Errorf("%w: an account with this email already exists", apperrors.ErrConflict)
	ErrEduEmailRegistered = fmt.Errorf("%w: this .edu email is already registered", apperrors.ErrConflict)

	ErrRegistrationIncomplete = fmt.Errorf("%w: email, first name, and edu email are required", apperrors.ErrValidation)
	ErrInvalidEmailFormat     = fmt.Errorf("%w: invalid email format", apperrors.ErrValidation)
	ErrNotEduEmail            = fmt.Errorf("%w: please use your college .edu email address", apperrors.ErrValidation)
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is a registration form.
type RegisterInput struct {
	Email          string
	FirstName      string
	LastName       string
	EduEmail       string
	University     string
	Major          string
	GraduationYear *int
}

// FixUserReport describes an account after FixUser.
type FixUserReport struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"emailConfirmed"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
}

// UserService manages the users table alongside identity accounts.
type UserService struct {
	users    repository.UserRepository
	accounts repository.AccountDirectory
	profiles repository.AcademicProfileRepository
	emails   EmailService
	log      *zap.Logger
}

func NewUserService(
	users repository.UserRepository,
	accounts repository.AccountDirectory,
	profiles repository.AcademicProfileRepository,
	emails EmailService,
	log *zap.Logger,
) *UserService {
	return &UserService{
		users:    users,
		accounts: accounts,
		profiles: profiles,
		emails:   emails,
		log:      log.Named("user"),
	}
}

// Register stores a new user and sends the welcome email. A failed welcome email
// does not fail the registration.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.EduEmail = strings.TrimSpace(in.EduEmail)

	if in.Email == "" || in.FirstName == "" || in.EduEmail == "" {
		return nil, ErrRegistrationIncomplete
	}
	if !emailPattern.MatchString(in.Email) || !emailPattern.MatchString(in.EduEmail) {
		return nil, ErrInvalidEmailFormat
	}
	if !strings.Contains(strings.ToLower(in.EduEmail), ".edu") {
		return nil, ErrNotEduEmail
	}

	if taken, err := s.exists(ctx, s.users.GetByEmail, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailRegistered
	}
	for _, lookup := range []func(context.Context, string) (*entity.User, error){s.users.GetByEmail, s.users.GetByEduEmail} {
		taken, err := s.exists(ctx, lookup, in.EduEmail)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEduEmailRegistered
		}
	}

	user := &entity.User{
		Email:          in.Email,
		FirstName:      in.FirstName,
		LastName:       strings.TrimSpace(in.LastName),
		EduEmail:       in.EduEmail,
		University:     strings.TrimSpace(in.University),
		Major:          strings.TrimSpace(in.Major),
		GraduationYear: in.GraduationYear,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, ErrEmailRegistered
		}
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("email", user.Email))

	if _, err := s.emails.Send(ctx, EmailRequest{
		Kind:      EmailWelcome,
		To:        user.Email,
		FirstName: user.FirstName,
		EduEmail:  user.EduEmail,
	}); err != nil {
		s.log.Warn("failed to send welcome email", zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

func (s *UserService) exists(ctx context.Context, lookup func(context.Context, string) (*entity.User, error), email string) (bool, error) {
	_, err := lookup(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// FixUser repairs an identity account that cannot sign in: it confirms the email,
// creates the missing users row and stores the academic profile found in signup
// metadata. Only the account lookup can fail the call; later steps are logged.
func (s *UserService) FixUser(ctx context.Context, email string) (*FixUserReport, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	log := s.log.With(zap.String("user_id", account.ID))

	confirmed := account.EmailConfirmedAt != nil
	if !confirmed {
		if err := s.accounts.ConfirmEmail(ctx, account.ID); err != nil {
			log.Error("failed to confirm email", zap.Error(err))
		} else {
			confirmed = true
			log.Info("email confirmed")
		}
	}

	firstName := firstMeta(account, "first_name", "firstName")
	if firstName == "" {
		firstName = "User"
	}
	lastName := firstMeta(account, "last_name", "lastName")

	_, err = s.users.GetByID(ctx, account.ID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		user := &entity.User{
			ID:               account.ID,
			Email:            account.Email,
			FirstName:        firstName,
			LastName:         lastName,
			EduEmail:         account.MetaString(entity.MetaEduEmail),
			EduEmailVerified: account.EduEmailVerified(),
			IsActive:         true,
			IsVerified:       confirmed,
			CreatedAt:        account.CreatedAt,
		}
		if err := s.users.Create(ctx, user); err != nil {
			log.Warn("failed to create users row", zap.Error(err))
		} else {
			log.Info("users row created")
		}
	default:
		log.Warn("failed to look up users row", zap.Error(err))
	}

	if account.MetaString(metaCurrentInstitution) != "" && account.MetaString(metaCurrentMajor) != "" {
		if err := s.upsertProfile(ctx, metadataProfile(account)); err != nil {
			log.Warn("failed to store academic profile", zap.Error(err))
		}
	}

	return &FixUserReport{
		ID:             account.ID,
		Email:          account.Email,
		EmailConfirmed: confirmed,
		FirstName:      firstName,
		LastName:       lastName,
	}, nil
}

func (s *UserService) upsertProfile(ctx context.Context, profile *entity.AcademicProfile) error {
	_, err := s.profiles.GetByUserID(ctx, profile.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return s.profiles.Create(ctx, profile)
	}
	if err != nil {
		return err
	}
	_, err = s.profiles.UpdateByUserID(ctx, profile.UserID, map[string]interface{}{
		"current_institution_name":  profile.CurrentInstitutionName,
		"current_major_name":        profile.CurrentMajorName,
		"current_gpa":               profile.CurrentGPA,
		"expected_transfer_year":    profile.ExpectedTransferYear,
		"expected_transfer_quarter": profile.ExpectedTransferQuarter,
		"target_institution_name":   profile.TargetInstitutionName,
		"target_major_name":         profile.TargetMajorName,
	})
	return err
}

func firstMeta(account *entity.Account, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(account.MetaString(k)); v != "" {
			return v
		}
	}
	return ""
}
