package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"github.com/yourusername/univio-api/internal/service"
	"go.uber.org/zap"
)

const msgInternalError = "Internal server error"

// verificationErrorResponse maps a Check error to status and a user-facing message.
// ok is false for errors that are not verification outcomes.
func verificationErrorResponse(err error) (status int, message string, ok bool) {
	var codeErr *service.InvalidCodeError
	switch {
	case errors.Is(err, service.ErrVerificationExpired):
		return http.StatusGone, "Verification code has expired. Please request a new one.", true
	case errors.Is(err, service.ErrVerificationAttemptsExceeded):
		return http.StatusTooManyRequests, "Too many failed attempts. Please request a new verification code.", true
	case errors.Is(err, service.ErrVerificationNotFound):
		return http.StatusNotFound, "No verification code found. Please request a new one.", true
	case errors.As(err, &codeErr):
		return http.StatusBadRequest, fmt.Sprintf("Invalid verification code. %d attempts remaining.", codeErr.Remaining), true
	case errors.Is(err, service.ErrInvalidVerificationCode):
		return http.StatusBadRequest, "Invalid verification code.", true
	}
	return 0, "", false
}

// handleError writes the response for err. Upstream and unknown failures are logged and
// answered with safeMessage so provider and store errors never reach the client.
func handleError(c *gin.Context, log *zap.Logger, err error, safeMessage string) {
	if status, message, ok := verificationErrorResponse(err); ok {
		c.JSON(status, gin.H{"error": message, "error_type": errorType(err)})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, service.ErrInvalidEmailRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	default:
		if safeMessage == "" {
			safeMessage = msgInternalError
		}
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": safeMessage, "error_type": "internal"})
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, service.ErrVerificationExpired):
		return "expired"
	case errors.Is(err, service.ErrVerificationAttemptsExceeded):
		return "too_many_attempts"
	case errors.Is(err, service.ErrVerificationNotFound):
		return "not_found"
	default:
		return "invalid_code"
	}
}

// bindingError answers a failed ShouldBindJSON.
func bindingError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "error_type": "validation"})
}
