package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/handler/dto"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"github.com/yourusername/univio-api/internal/service"
	"go.uber.org/zap"
)

// Users registers students and repairs half-created accounts.
type Users interface {
	Register(ctx context.Context, in service.RegisterInput) (*entity.User, error)
	FixUser(ctx context.Context, email string) (*service.FixUserReport, error)
}

// ProfileRepairer creates missing academic profiles.
type ProfileRepairer interface {
	EnsureAcademicProfile(ctx context.Context, email string) (*entity.AcademicProfile, bool, error)
}

type UserHandler struct {
	users    Users
	profiles ProfileRepairer
	log      *zap.Logger
}

func NewUserHandler(users Users, profiles ProfileRepairer, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, profiles: profiles, log: log.Named("user_handler")}
}

// Register handles POST /api/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Invalid request body")
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		EduEmail:       req.EduEmail,
		University:     req.University,
		Major:          req.Major,
		GraduationYear: req.GraduationYear,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEduEmailRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": "This .edu email is already registered", "error_type": "conflict"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists", "error_type": "conflict"})
		case errors.Is(err, apperrors.ErrValidation):
			bindingError(c, registerValidationMessage(err))
		default:
			handleError(c, h.log, err, "Failed to create account. Please try again.")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		Success: true,
		Message: "Account created successfully",
		User: dto.RegisteredUser{
			ID:               user.ID,
			Email:            user.Email,
			FirstName:        user.FirstName,
			LastName:         user.LastName,
			EduEmail:         user.EduEmail,
			EduEmailVerified: user.EduEmailVerified,
			University:       user.University,
			Major:            user.Major,
			GraduationYear:   user.GraduationYear,
		},
	})
}

func registerValidationMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidEmailFormat):
		return "Invalid email format"
	case errors.Is(err, service.ErrNotEduEmail):
		return "Please use your college .edu email address"
	default:
		return "Email, first name, and edu email are required"
	}
}

// FixUser handles POST /api/auth/fix-user
func (h *UserHandler) FixUser(c *gin.Context) {
	var req dto.AccountEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Email is required")
		return
	}

	report, err := h.users.FixUser(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found in authentication system", "error_type": "not_found"})
		case errors.Is(err, apperrors.ErrValidation):
			bindingError(c, "Email is required")
		default:
			handleError(c, h.log, err, "Failed to check user status")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User account has been fixed. You can now sign in.",
		"user":    report,
	})
}

// FixMissingProfile handles POST /api/fix-missing-profile
func (h *UserHandler) FixMissingProfile(c *gin.Context) {
	var req dto.AccountEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Email is required")
		return
	}

	profile, created, err := h.profiles.EnsureAcademicProfile(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "error_type": "not_found"})
		case errors.Is(err, apperrors.ErrValidation):
			bindingError(c, "Email is required")
		default:
			handleError(c, h.log, err, "Failed to create academic profile")
		}
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "Academic profile already exists",
			"profile_id": profile.ID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Academic profile created successfully",
		"profile": profile,
	})
}
