package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/univio-api/internal/handler/dto"
	"github.com/yourusername/univio-api/internal/service"
	"go.uber.org/zap"
)

// DatabaseDiagnostics reports on database reachability and contents.
type DatabaseDiagnostics interface {
	Ping(ctx context.Context) error
	CheckDatabase(ctx context.Context) (*service.DatabaseReport, error)
	TableStatus(ctx context.Context) map[string]service.TableStatus
}

// CodeClearer drops outstanding verification codes.
type CodeClearer interface {
	Clear(ctx context.Context, email string) (int64, error)
}

// AuthDebugger performs a diagnostic password sign-in.
type AuthDebugger interface {
	DebugSignIn(ctx context.Context, email, password string) (*service.AuthDebugReport, error)
}

// DiagnosticsHandler serves operator endpoints. Apart from Health they are only
// routed when diagnostics are enabled.
type DiagnosticsHandler struct {
	db     DatabaseDiagnostics
	codes  CodeClearer
	emails service.EmailService
	auth   AuthDebugger
	log    *zap.Logger
}

func NewDiagnosticsHandler(db DatabaseDiagnostics, codes CodeClearer, emails service.EmailService, auth AuthDebugger, log *zap.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{db: db, codes: codes, emails: emails, auth: auth, log: log.Named("diagnostics_handler")}
}

// Health handles GET /health
func (h *DiagnosticsHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

// ClearVerification handles POST /api/clear-verification
func (h *DiagnosticsHandler) ClearVerification(c *gin.Context) {
	var req dto.ClearVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Email is required")
		return
	}

	if _, err := h.codes.Clear(c.Request.Context(), req.Email); err != nil {
		handleError(c, h.log, err, "Failed to clear verification codes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Verification codes cleared for %s", req.Email)})
}

// TestDB handles GET /api/test-db
func (h *DiagnosticsHandler) TestDB(c *gin.Context) {
	report, err := h.db.CheckDatabase(c.Request.Context())
	if err != nil {
		h.log.Error("database check failed", zap.Error(err))
		resp := gin.H{"success": false, "error": "Database connection failed"}
		var stepErr *service.DatabaseCheckError
		if errors.As(err, &stepErr) {
			resp["step"] = stepErr.Step
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connection working perfectly!",
		"data": gin.H{
			"institutions": report.Institutions,
			"majors":       report.Majors,
			"cleanup":      report.Cleanup,
		},
		"timestamp": report.CheckedAt.Format(time.RFC3339),
	})
}

// TestDBTables handles GET /api/test-db-tables
func (h *DiagnosticsHandler) TestDBTables(c *gin.Context) {
	tables := h.db.TableStatus(c.Request.Context())

	missing := 0
	for _, status := range tables {
		if !status.Exists {
			missing++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   missing == 0,
		"tables":    tables,
		"missing":   missing,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// TestEmail handles POST /api/test-email
func (h *DiagnosticsHandler) TestEmail(c *gin.Context) {
	var req dto.TestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Email address is required")
		return
	}
	if req.Type == "" {
		req.Type = "verification"
	}

	emailReq := service.EmailRequest{To: req.Email, FirstName: "Test User"}
	switch req.Type {
	case "verification":
		emailReq.Kind = service.EmailEduVerification
		emailReq.Code = "123456"
	case "welcome":
		emailReq.Kind = service.EmailWelcome
	default:
		bindingError(c, `Invalid email type. Use "verification" or "welcome"`)
		return
	}

	result, err := h.emails.Send(c.Request.Context(), emailReq)
	if err != nil {
		handleError(c, h.log, err, "Failed to send test email")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("Test %s email sent successfully", req.Type),
		"type":      req.Type,
		"messageId": result.MessageID,
	})
}

// DebugAuth handles POST /api/debug-auth
func (h *DiagnosticsHandler) DebugAuth(c *gin.Context) {
	var req dto.DebugAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "Email and password are required")
		return
	}

	report, err := h.auth.DebugSignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, h.log, err, msgInternalError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "auth": report})
}
