package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestGinContext builds a gin context for a JSON request
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// parseJSONResponse decodes the response body into a map
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// MockVerificationCodes implements VerificationCodes
type MockVerificationCodes struct {
	mock.Mock
}

func (m *MockVerificationCodes) Issue(ctx context.Context, email string, purpose entity.VerificationPurpose) (*entity.EmailVerification, error) {
	args := m.Called(ctx, email, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.EmailVerification), args.Error(1)
}

func (m *MockVerificationCodes) Check(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

func (m *MockVerificationCodes) TTL() time.Duration {
	return 10 * time.Minute
}

func (m *MockVerificationCodes) Clear(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

// MockEmailService implements service.EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Send(ctx context.Context, req service.EmailRequest) (*service.EmailResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EmailResult), args.Error(1)
}

// MockIdentity implements EduVerificationRecorder and EduVerificationFixer
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) MarkEduEmailVerified(ctx context.Context, eduEmail string) {
	m.Called(ctx, eduEmail)
}

func (m *MockIdentity) ForceEduEmailVerified(ctx context.Context, loginEmail, eduEmail string) (*entity.Account, error) {
	args := m.Called(ctx, loginEmail, eduEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Account), args.Error(1)
}
