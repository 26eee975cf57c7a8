package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/univio-api/internal/domain/entity"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"go.uber.org/zap"
)

// memoryVerificationStore is an in-memory repository.EmailVerificationRepository.
type memoryVerificationStore struct {
	mu        sync.Mutex
	records   map[string]entity.EmailVerification
	upsertErr error
	getErr    error
	deleteErr error
}

func newMemoryVerificationStore() *memoryVerificationStore {
	return &memoryVerificationStore{records: map[string]entity.EmailVerification{}}
}

func (m *memoryVerificationStore) Upsert(ctx context.Context, record *entity.EmailVerification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.records[record.Email] = *record
	return nil
}

func (m *memoryVerificationStore) GetByEmail(ctx context.Context, email string) (*entity.EmailVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.records[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}

func (m *memoryVerificationStore) IncrementAttempts(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[email]; ok {
		r.Attempts++
		m.records[email] = r
	}
	return nil
}

func (m *memoryVerificationStore) Delete(ctx context.Context, email string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	if _, ok := m.records[email]; !ok {
		return 0, nil
	}
	delete(m.records, email)
	return 1, nil
}

func (m *memoryVerificationStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, r := range m.records {
		if r.ExpiresAt.Before(now) {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

func (m *memoryVerificationStore) get(email string) (entity.EmailVerification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[email]
	return r, ok
}

// testClock is a settable clock.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestVerificationService(t *testing.T) (*VerificationService, *memoryVerificationStore, *testClock) {
	t.Helper()
	store := newMemoryVerificationStore()
	svc, err := NewVerificationService(store, 10*time.Minute, zap.NewNop())
	require.NoError(t, err)
	clock := &testClock{t: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	svc.now = clock.Now
	return svc, store, clock
}

// wrongCode returns a 6 digit code different from code.
func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}

func TestNewVerificationService_Validation(t *testing.T) {
	_, err := NewVerificationService(nil, time.Minute, zap.NewNop())
	assert.Error(t, err)

	_, err = NewVerificationService(newMemoryVerificationStore(), time.Minute, nil)
	assert.Error(t, err)

	svc, err := NewVerificationService(newMemoryVerificationStore(), 0, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultVerificationTTL, svc.TTL())
}

func TestIssue_CreatesNormalizedRecord(t *testing.T) {
	svc, store, clock := newTestVerificationService(t)

	record, err := svc.Issue(context.Background(), "  Student@DeAnza.EDU ", entity.PurposeEdu)
	require.NoError(t, err)

	assert.Equal(t, "student@deanza.edu", record.Email)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), record.Code)
	assert.Equal(t, 0, record.Attempts)
	assert.Equal(t, clock.Now(), record.CreatedAt)
	assert.Equal(t, clock.Now().Add(10*time.Minute), record.ExpiresAt)

	stored, ok := store.get("student@deanza.edu")
	require.True(t, ok)
	assert.Equal(t, record.Code, stored.Code)
}

func TestIssue_StoreFailure(t *testing.T) {
	svc, store, _ := newTestVerificationService(t)
	store.upsertErr = errors.New("connection reset")

	_, err := svc.Issue(context.Background(), "a@school.edu", entity.PurposeEdu)
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrValidation))
}

func TestIssue_EmptyEmail(t *testing.T) {
	svc, _, _ := newTestVerificationService(t)

	_, err := svc.Issue(context.Background(), "   ", entity.PurposeEdu)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestIssue_CodesAreSixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.Regexp(t, `^[0-9]{6}$`, code)
	}
}

func TestCheck_ReissueInvalidatesPreviousCode(t *testing.T) {
	svc, store, _ := newTestVerificationService(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, "a@school.edu", entity.PurposeEdu)
	require.NoError(t, err)
	firstCode := first.Code

	var second *entity.EmailVerification
	for {
		second, err = svc.Issue(ctx, "a@school.edu", entity.PurposeEdu)
		require.NoError(t, err)
		if second.Code != firstCode {
			break
		}
	}

	err = svc.Check(ctx, "a@school.edu", firstCode)
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)

	stored, _ := store.get("a@school.edu")
	assert.Equal(t, 1, stored.Attempts)

	assert.NoError(t, svc.Check(ctx, "a@school.edu", second.Code))
}

func TestCheck_ReissueResetsAttempts(t *testing.T) {
	svc, store, _ := newTestVerificationService(t)
	ctx := context.Background()

	rec, err := svc.Issue(ctx, "a@school.edu", entity.PurposeEdu)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_ = svc.Check(ctx, "a@school.edu", wrongCode(rec.Code))
	}

	_, err = svc.Issue(ctx, "a@school.edu", entity.PurposeEdu)
	require.NoError(t, err)
	stored, _ := store.get("a@school.edu")
	assert.Equal(t, 0, stored.Attempts)
}

func TestCheck_SingleUse(t *testing.T) {
	svc, _, _ := newTestVerificationService(t)
	ctx := context.Background()

	rec, err := svc.Issue(ctx, "a@school.edu", entity.PurposeEdu)
	require.NoError(t, err)

	require.NoError(t, svc.Check(ctx, "a@school.edu", rec.Code))
	assert.ErrorIs(t, svc.Check(ctx, "a@school.edu", rec.Code), ErrVerificationNotFound)
}

func TestCheck_CaseInsensitiveEmail(t *testing.T) {
	svc, _, _ := newTestVerificationService(t)
	ctx := context.Background()

	rec, err := svc.Issue(ctx, "A@School.edu", entity.PurposeEdu)
	require.NoError(t, err)

	assert.NoError(t, svc.Check(ctx, "a@SCHOOL.EDU", rec.Code))
}

func TestCheck_AttemptCeiling(t *testing.T) {
	svc, _, _ := newTestVerificationService(t)
	ctx := context.Background()

	rec, err := svc.Issue(ctx, "a@school.edu", entity.PurposeEdu)
	require.NoError(t, err)

	for i := 0; i < entity.MaxVerificationAttempts; i++ {
		err := svc.Check(ctx, "a@school.edu", wrongCode(rec.Code))
		require.ErrorIs(t, err, ErrInvalidVerificationCode, "attempt %d", i+1)
	}

	// The sixth attempt is refused even with the right code.
	assert.ErrorIs(t, svc.Check(ctx, "a@school.edu", rec.Code), ErrVerificationAttemptsExceeded)
}

func TestCheck_InvalidCodeReportsAttemptsRemaining(t *testing.T) {
	svc, _, _ := newTestVerificationService(t)
	ctx := context.Background()

	rec, err := svc.Issue(ctx, "a@school.edu", entity.PurposeEdu)
	require.NoError(t, err)

	err = svc.Check(ctx, "a@school.edu", wrongCode(rec.Code))
	require.ErrorIs(t, err, ErrInvalidVerificationCode)
	assert.Contains(t, err.Error(), "4 attempts remaining")

	var codeErr *InvalidCodeError
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 4, codeErr.Remaining)
}

func TestCheck_ExpiryWinsOverCorrectCode(t *testing.T) {
	svc, store, clock := newTestVerificationService(t)
	ctx := context.Background()

	rec, err := svc.Issue(ctx, "a@school.edu", entity.PurposeEdu)
	require.NoError(t, err)

	clock.Advance(10*time.Minute + time.Second)

	assert.ErrorIs(t, svc.Check(ctx, "a@school.edu", rec.Code), ErrVerificationExpired)
	_, stillThere := store.get("a@school.edu")
	assert.True(t, stillThere, "expired records stay until cleanup")
}

func TestCheck_ExpiryInstantIsStillValid(t *testing.T) {
	svc, _, clock := newTestVerificationService(t)
	ctx := context.Background()

	rec, err := svc.Issue(ctx, "a@school.edu", entity.PurposeEdu)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	assert.NoError(t, svc.Check(ctx, "a@school.edu", rec.Code))
}

func TestCheck_ExpiredBeforeLocked(t *testing.T) {
	svc, _, clock := newTestVerificationService(t)
	ctx := context.Background()

	rec, err := svc.Issue(ctx, "a@school.edu", entity.PurposeEdu)
	require.NoError(t, err)
	for i := 0; i < entity.MaxVerificationAttempts; i++ {
		_ = svc.Check(ctx, "a@school.edu", wrongCode(rec.Code))
	}
	clock.Advance(time.Hour)

	assert.ErrorIs(t, svc.Check(ctx, "a@school.edu", rec.Code), ErrVerificationExpired)
}

func TestCheck_NoRecord(t *testing.T) {
	svc, _, _ := newTestVerificationService(t)

	assert.ErrorIs(t, svc.Check(context.Background(), "nobody@school.edu", "123456"), ErrVerificationNotFound)
}

func TestCheck_StoreErrorIsNotNotFound(t *testing.T) {
	svc, store, _ := newTestVerificationService(t)
	store.getErr = errors.New("timeout")

	err := svc.Check(context.Background(), "a@school.edu", "123456")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrVerificationNotFound))
}

func TestCheck_RequiresInput(t *testing.T) {
	svc, _, _ := newTestVerificationService(t)

	assert.ErrorIs(t, svc.Check(context.Background(), "", "123456"), apperrors.ErrValidation)
	assert.ErrorIs(t, svc.Check(context.Background(), "a@school.edu", " "), apperrors.ErrValidation)
}

func TestClear(t *testing.T) {
	svc, store, _ := newTestVerificationService(t)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "a@school.edu", entity.PurposeEdu)
	require.NoError(t, err)

	n, err := svc.Clear(ctx, "A@school.edu")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, ok := store.get("a@school.edu")
	assert.False(t, ok)
}

func TestCleanupExpired(t *testing.T) {
	svc, store, clock := newTestVerificationService(t)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "old@school.edu", entity.PurposeEdu)
	require.NoError(t, err)
	clock.Advance(8 * time.Minute)
	_, err = svc.Issue(ctx, "new@gmail.com", entity.PurposePersonal)
	require.NoError(t, err)
	clock.Advance(3 * time.Minute)

	n, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok := store.get("old@school.edu")
	assert.False(t, ok)
	_, ok = store.get("new@gmail.com")
	assert.True(t, ok)
}

func TestRunCleanup_StopsOnCancel(t *testing.T) {
	svc, _, _ := newTestVerificationService(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.RunCleanup(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not stop after cancel")
	}
}
