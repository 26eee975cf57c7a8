package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/domain/repository"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"go.uber.org/zap"
)

// ProfileUser is the account summary returned with the profile.
type ProfileUser struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	EduEmail         string    `json:"edu_email,omitempty"`
	EduEmailVerified bool      `json:"edu_email_verified"`
	IsVerified       bool      `json:"is_verified"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserProfile combines the account and its academic profile.
type UserProfile struct {
	User            ProfileUser             `json:"user"`
	AcademicProfile *entity.AcademicProfile `json:"academic_profile"`
}

// AcademicProfileInput is the editable part of an academic profile.
type AcademicProfileInput struct {
	CurrentInstitution      string
	CurrentMajor            string
	TargetInstitution       string
	ExpectedTransferYear    *int
	ExpectedTransferQuarter string
}

type ProfileService struct {
	accounts repository.AccountDirectory
	profiles repository.AcademicProfileRepository
	log      *zap.Logger
}

func NewProfileService(accounts repository.AccountDirectory, profiles repository.AcademicProfileRepository, log *zap.Logger) *ProfileService {
	return &ProfileService{accounts: accounts, profiles: profiles, log: log.Named("profile")}
}

// GetProfile returns the account and its academic profile, which is nil when none exists yet.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &UserProfile{
		User: ProfileUser{
			ID:               account.ID,
			Email:            account.Email,
			Name:             account.DisplayName(),
			EduEmail:         account.MetaString(entity.MetaEduEmail),
			EduEmailVerified: account.EduEmailVerified(),
			IsVerified:       account.EmailConfirmedAt != nil,
			CreatedAt:        account.CreatedAt,
			UpdatedAt:        account.UpdatedAt,
		},
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		result.AcademicProfile = profile
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		s.log.Warn("academic profile lookup failed", zap.String("user_id", userID), zap.Error(err))
	}
	return result, nil
}

// UpdateAcademicProfile updates the user's profile, creating it with planning defaults if absent.
func (s *ProfileService) UpdateAcademicProfile(ctx context.Context, userID string, in AcademicProfileInput) (*entity.AcademicProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", apperrors.ErrValidation)
	}

	_, err := s.profiles.GetByUserID(ctx, userID)
	if err == nil {
		return s.profiles.UpdateByUserID(ctx, userID, map[string]interface{}{
			"current_institution_name":  in.CurrentInstitution,
			"current_major_name":        in.CurrentMajor,
			"target_institution_name":   in.TargetInstitution,
			"expected_transfer_year":    in.ExpectedTransferYear,
			"expected_transfer_quarter": in.ExpectedTransferQuarter,
		})
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	profile := &entity.AcademicProfile{
		UserID:                  userID,
		CurrentInstitutionName:  in.CurrentInstitution,
		CurrentMajorName:        in.CurrentMajor,
		TargetInstitutionName:   in.TargetInstitution,
		ExpectedTransferYear:    in.ExpectedTransferYear,
		ExpectedTransferQuarter: in.ExpectedTransferQuarter,
		IsComplete:              true,
		MaxUnitsPerQuarter:      entity.DefaultMaxUnitsPerQuarter,
		PreferredStudyIntensity: entity.DefaultStudyIntensity,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	s.log.Info("academic profile created", zap.String("user_id", userID))
	return profile, nil
}

// Signup metadata keys carrying academic details.
const (
	metaCurrentInstitution      = "current_institution"
	metaCurrentMajor            = "current_major"
	metaCurrentGPA              = "current_gpa"
	metaExpectedTransferYear    = "expected_transfer_year"
	metaExpectedTransferQuarter = "expected_transfer_quarter"
	metaTargetInstitution       = "target_institution"
	metaTargetMajor             = "target_major"
)

// Values used by EnsureAcademicProfile when signup metadata lacks them.
const (
	defaultCurrentInstitution      = "De Anza College"
	defaultMajor                   = "Computer Science"
	defaultExpectedTransferYear    = 2025
	defaultExpectedTransferQuarter = "Fall"
	defaultTargetInstitution       = "UC Berkeley"
)

// EnsureAcademicProfile creates the academic profile of the account with email from its
// signup metadata when none exists. created is false when a profile was already there.
func (s *ProfileService) EnsureAcademicProfile(ctx context.Context, email string) (profile *entity.AcademicProfile, created bool, err error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.profiles.GetByUserID(ctx, account.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	profile = metadataProfile(account)
	if profile.CurrentInstitutionName == "" {
		profile.CurrentInstitutionName = defaultCurrentInstitution
	}
	if profile.CurrentMajorName == "" {
		profile.CurrentMajorName = defaultMajor
	}
	if profile.ExpectedTransferYear == nil {
		year := defaultExpectedTransferYear
		profile.ExpectedTransferYear = &year
	}
	if profile.ExpectedTransferQuarter == "" {
		profile.ExpectedTransferQuarter = defaultExpectedTransferQuarter
	}
	if profile.TargetInstitutionName == "" {
		profile.TargetInstitutionName = defaultTargetInstitution
	}
	if profile.TargetMajorName == "" {
		profile.TargetMajorName = profile.CurrentMajorName
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, false, err
	}
	s.log.Info("academic profile created from signup metadata", zap.String("user_id", account.ID))
	return profile, true, nil
}

// metadataProfile maps signup metadata onto a new profile with planning defaults.
func metadataProfile(account *entity.Account) *entity.AcademicProfile {
	return &entity.AcademicProfile{
		UserID:                  account.ID,
		CurrentInstitutionName:  account.MetaString(metaCurrentInstitution),
		CurrentMajorName:        account.MetaString(metaCurrentMajor),
		CurrentGPA:              metaFloat(account.Metadata[metaCurrentGPA]),
		ExpectedTransferYear:    metaInt(account.Metadata[metaExpectedTransferYear]),
		ExpectedTransferQuarter: account.MetaString(metaExpectedTransferQuarter),
		TargetInstitutionName:   account.MetaString(metaTargetInstitution),
		TargetMajorName:         account.MetaString(metaTargetMajor),
		IsComplete:              true,
		MaxUnitsPerQuarter:      entity.DefaultMaxUnitsPerQuarter,
		PreferredStudyIntensity: entity.DefaultStudyIntensity,
	}
}

// metaFloat reads a JSON number or numeric string. Zero and unparsable values are nil.
func metaFloat(v interface{}) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if f == 0 {
		return nil
	}
	return &f
}

func metaInt(v interface{}) *int {
	f := metaFloat(v)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}
