package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/handler/dto"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"go.uber.org/zap"
)

const msgPasswordResetSent = "If an account with this email exists, you will receive a password reset link shortly."

// PasswordResetter triggers recovery emails.
type PasswordResetter interface {
	SendPasswordReset(ctx context.Context, email string) error
}

// EduVerificationFixer forces the edu verification flag of an account.
type EduVerificationFixer interface {
	ForceEduEmailVerified(ctx context.Context, loginEmail, eduEmail string) (*entity.Account, error)
}

// AccountHandler serves password recovery and account repair.
type AccountHandler struct {
	accounts PasswordResetter
	identity EduVerificationFixer
	log      *zap.Logger
}

func NewAccountHandler(accounts PasswordResetter, identity EduVerificationFixer, log *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, identity: identity, log: log.Named("account_handler")}
}

// SendPasswordReset handles POST /api/auth/send-password-reset
func (h *AccountHandler) SendPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Valid email address is required")
		return
	}

	if err := h.accounts.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		handleError(c, h.log, err, "Failed to send password reset email. Please try again.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgPasswordResetSent})
}

// FixEduVerification handles POST /api/auth/fix-edu-verification
func (h *AccountHandler) FixEduVerification(c *gin.Context) {
	var req dto.FixEduVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Email is required")
		return
	}

	account, err := h.identity.ForceEduEmailVerified(c.Request.Context(), req.Email, req.EduEmail)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "error_type": "not_found"})
		case errors.Is(err, apperrors.ErrValidation):
			bindingError(c, "No edu email found to verify. Please provide one.")
		default:
			handleError(c, h.log, err, "Failed to update verification status")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Edu email verification status has been fixed",
		"eduEmail": account.MetaString(entity.MetaEduEmail),
		"user_id":  account.ID,
	})
}
