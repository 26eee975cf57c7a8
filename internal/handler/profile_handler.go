package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/handler/dto"
	"github.com/yourusername/univio-api/internal/service"
	"go.uber.org/zap"
)

// Profiles reads and updates a user's academic profile.
type Profiles interface {
	GetProfile(ctx context.Context, userID string) (*service.UserProfile, error)
	UpdateAcademicProfile(ctx context.Context, userID string, in service.AcademicProfileInput) (*entity.AcademicProfile, error)
}

type ProfileHandler struct {
	profiles Profiles
	log      *zap.Logger
}

func NewProfileHandler(profiles Profiles, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, log: log.Named("profile_handler")}
}

// GetProfile handles GET /api/users/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	profile, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.log, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/users/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err.Error())
		return
	}

	profile, err := h.profiles.UpdateAcademicProfile(c.Request.Context(), userID, service.AcademicProfileInput{
		CurrentInstitution:      req.CurrentInstitution,
		CurrentMajor:            req.CurrentMajor,
		TargetInstitution:       req.TargetInstitution,
		ExpectedTransferYear:    req.ExpectedTransferYear,
		ExpectedTransferQuarter: req.ExpectedTransferQuarter,
	})
	if err != nil {
		handleError(c, h.log, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "academic_profile": profile})
}
