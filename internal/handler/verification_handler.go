package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/handler/dto"
	"github.com/yourusername/univio-api/internal/service"
	"go.uber.org/zap"
)

const (
	msgPrepareFailed = "Failed to prepare verification. Please try again."
	msgSendFailed    = "Failed to send verification email. Please try again."
)

// VerificationCodes issues and checks one-time codes.
type VerificationCodes interface {
	Issue(ctx context.Context, email string, purpose entity.VerificationPurpose) (*entity.EmailVerification, error)
	Check(ctx context.Context, email, code string) error
	TTL() time.Duration
}

// EduVerificationRecorder records a verified student address on the owning account.
type EduVerificationRecorder interface {
	MarkEduEmailVerified(ctx context.Context, eduEmail string)
}

// VerificationHandler serves the dual email verification endpoints.
type VerificationHandler struct {
	codes    VerificationCodes
	emails   service.EmailService
	identity EduVerificationRecorder
	log      *zap.Logger
}

func NewVerificationHandler(codes VerificationCodes, emails service.EmailService, identity EduVerificationRecorder, log *zap.Logger) *VerificationHandler {
	return &VerificationHandler{
		codes:    codes,
		emails:   emails,
		identity: identity,
		log:      log.Named("verification_handler"),
	}
}

func isEduAddress(email string) bool {
	return strings.Contains(strings.ToLower(email), ".edu")
}

// SendEduVerification handles POST /api/auth/send-verification
func (h *VerificationHandler) SendEduVerification(c *gin.Context) {
	var req dto.SendEduVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Valid email address is required")
		return
	}
	if !isEduAddress(req.EduEmail) {
		bindingError(c, "Please use your college .edu email address")
		return
	}

	h.issueAndSend(c, req.EduEmail, req.FirstName, entity.PurposeEdu, service.EmailEduVerification, "Verification code sent successfully")
}

// SendPersonalVerification handles POST /api/auth/send-personal-verification
func (h *VerificationHandler) SendPersonalVerification(c *gin.Context) {
	var req dto.SendPersonalVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Valid personal email address is required")
		return
	}
	if isEduAddress(req.PersonalEmail) {
		bindingError(c, "Please use a personal email address, not your .edu email")
		return
	}

	h.issueAndSend(c, req.PersonalEmail, req.FirstName, entity.PurposePersonal, service.EmailPersonalVerification, "Personal email verification code sent successfully")
}

// issueAndSend stores a fresh code, then emails it. A failed send leaves the stored code valid.
func (h *VerificationHandler) issueAndSend(c *gin.Context, email, firstName string, purpose entity.VerificationPurpose, kind service.EmailKind, okMessage string) {
	ctx := c.Request.Context()

	record, err := h.codes.Issue(ctx, email, purpose)
	if err != nil {
		handleError(c, h.log, err, msgPrepareFailed)
		return
	}

	result, err := h.emails.Send(ctx, service.EmailRequest{
		Kind:           kind,
		To:             record.Email,
		Code:           record.Code,
		FirstName:      firstName,
		IdempotencyKey: fmt.Sprintf("email-verify:%s:%d", record.Email, record.CreatedAt.UnixNano()),
	})
	if err != nil {
		handleError(c, h.log, err, msgSendFailed)
		return
	}

	h.log.Info("verification code sent",
		zap.String("email", record.Email),
		zap.String("purpose", string(purpose)),
		zap.String("message_id", result.MessageID))
	c.JSON(http.StatusOK, dto.SendVerificationResponse{
		Success:   true,
		Message:   okMessage,
		ExpiresIn: int(h.codes.TTL().Seconds()),
	})
}

// VerifyCode handles POST /api/auth/verify-code
func (h *VerificationHandler) VerifyCode(c *gin.Context) {
	var req dto.VerifyEduCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Email and verification code are required")
		return
	}

	ctx := c.Request.Context()
	if err := h.codes.Check(ctx, req.EduEmail, strings.TrimSpace(req.Code)); err != nil {
		handleError(c, h.log, err, msgInternalError)
		return
	}

	// Best effort; the code was already consumed. The metadata lookup matches edu_email as stored,
	// so the address is trimmed but not case folded.
	h.identity.MarkEduEmailVerified(ctx, strings.TrimSpace(req.EduEmail))

	c.JSON(http.StatusOK, dto.VerifyCodeResponse{Success: true, Message: "Email verified successfully", Verified: true})
}

// VerifyPersonalCode handles POST /api/auth/verify-personal-code
func (h *VerificationHandler) VerifyPersonalCode(c *gin.Context) {
	var req dto.VerifyPersonalCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Personal email and verification code are required")
		return
	}

	if err := h.codes.Check(c.Request.Context(), req.PersonalEmail, strings.TrimSpace(req.Code)); err != nil {
		handleError(c, h.log, err, msgInternalError)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyCodeResponse{Success: true, Message: "Personal email verified successfully", Verified: true})
}

// SendWelcomeEmail handles POST /api/auth/send-welcome-email
func (h *VerificationHandler) SendWelcomeEmail(c *gin.Context) {
	var req dto.SendWelcomeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Personal email and first name are required")
		return
	}

	kind, label := service.EmailWelcome, "Welcome"
	if req.EmailType == string(service.EmailDualComplete) && req.EduEmail != "" {
		kind, label = service.EmailDualComplete, "Dual verification complete"
	}

	result, err := h.emails.Send(c.Request.Context(), service.EmailRequest{
		Kind:      kind,
		To:        req.PersonalEmail,
		FirstName: req.FirstName,
		EduEmail:  req.EduEmail,
	})
	if err != nil {
		handleError(c, h.log, err, "Failed to send welcome email. Please try again.")
		return
	}

	c.JSON(http.StatusOK, dto.EmailSentResponse{
		Success:   true,
		Message:   label + " email sent successfully",
		MessageID: result.MessageID,
	})
}
