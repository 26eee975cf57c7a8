package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/univio-api/internal/domain/entity"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"go.uber.org/zap"
)

var identityTestNow = time.Date(2025, 5, 1, 12, 30, 0, 0, time.UTC)

func newTestIdentityService(accounts *MockAccountDirectory) *IdentityService {
	svc := NewIdentityService(accounts, zap.NewNop())
	svc.now = func() time.Time { return identityTestNow }
	return svc
}

func TestMarkEduEmailVerified_MergesMetadata(t *testing.T) {
	accounts := new(MockAccountDirectory)
	svc := newTestIdentityService(accounts)
	ctx := context.Background()

	account := &entity.Account{
		ID:    "user-1",
		Email: "alex@gmail.com",
		Metadata: map[string]interface{}{
			"full_name": "Alex Kim",
			"edu_email": "alex@deanza.edu",
		},
	}
	accounts.On("FindByMetadataField", ctx, "edu_email", "alex@deanza.edu").Return(account, nil)
	accounts.On("UpdateMetadata", ctx, "user-1", map[string]interface{}{
		"full_name":             "Alex Kim",
		"edu_email":             "alex@deanza.edu",
		"edu_email_verified":    true,
		"edu_email_verified_at": "2025-05-01T12:30:00Z",
	}).Return(nil)

	svc.MarkEduEmailVerified(ctx, "alex@deanza.edu")

	accounts.AssertExpectations(t)
}

func TestMarkEduEmailVerified_WritesOnlyVerificationFields(t *testing.T) {
	accounts := new(MockAccountDirectory)
	svc := newTestIdentityService(accounts)
	ctx := context.Background()

	account := &entity.Account{ID: "user-3", Metadata: map[string]interface{}{"edu_email": "Alex@DeAnza.edu"}}
	accounts.On("FindByMetadataField", ctx, "edu_email", "Alex@DeAnza.edu").Return(account, nil)
	accounts.On("UpdateMetadata", ctx, "user-3", map[string]interface{}{
		"edu_email":             "Alex@DeAnza.edu",
		"edu_email_verified":    true,
		"edu_email_verified_at": "2025-05-01T12:30:00Z",
	}).Return(nil)

	svc.MarkEduEmailVerified(ctx, "Alex@DeAnza.edu")

	accounts.AssertExpectations(t)
}

func TestMarkEduEmailVerified_NoAccountIsSilent(t *testing.T) {
	accounts := new(MockAccountDirectory)
	svc := newTestIdentityService(accounts)
	ctx := context.Background()

	accounts.On("FindByMetadataField", ctx, "edu_email", "new@foothill.edu").Return(nil, apperrors.ErrNotFound)

	svc.MarkEduEmailVerified(ctx, "new@foothill.edu")

	accounts.AssertNotCalled(t, "UpdateMetadata", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkEduEmailVerified_FailuresAreSwallowed(t *testing.T) {
	t.Run("lookup failure", func(t *testing.T) {
		accounts := new(MockAccountDirectory)
		svc := newTestIdentityService(accounts)
		ctx := context.Background()

		accounts.On("FindByMetadataField", ctx, "edu_email", "a@school.edu").Return(nil, apperrors.ErrUpstream)

		assert.NotPanics(t, func() { svc.MarkEduEmailVerified(ctx, "a@school.edu") })
		accounts.AssertNotCalled(t, "UpdateMetadata", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("update failure", func(t *testing.T) {
		accounts := new(MockAccountDirectory)
		svc := newTestIdentityService(accounts)
		ctx := context.Background()

		account := &entity.Account{ID: "user-2", Metadata: map[string]interface{}{"edu_email": "a@school.edu"}}
		accounts.On("FindByMetadataField", ctx, "edu_email", "a@school.edu").Return(account, nil)
		accounts.On("UpdateMetadata", ctx, "user-2", mock.Anything).Return(errors.New("503"))

		assert.NotPanics(t, func() { svc.MarkEduEmailVerified(ctx, "a@school.edu") })
		assert.Nil(t, account.Metadata[entity.MetaEduEmailVerified], "local copy is untouched on failure")
		accounts.AssertExpectations(t)
	})
}

func TestMarkEduEmailVerified_DoesNotMutateInput(t *testing.T) {
	accounts := new(MockAccountDirectory)
	svc := newTestIdentityService(accounts)
	ctx := context.Background()

	original := map[string]interface{}{"edu_email": "a@school.edu"}
	account := &entity.Account{ID: "user-3", Metadata: original}
	accounts.On("FindByMetadataField", ctx, "edu_email", "a@school.edu").Return(account, nil)
	accounts.On("UpdateMetadata", ctx, "user-3", mock.Anything).Return(nil)

	svc.MarkEduEmailVerified(ctx, "a@school.edu")

	_, touched := original[entity.MetaEduEmailVerified]
	assert.False(t, touched)
}

func TestForceEduEmailVerified(t *testing.T) {
	t.Run("uses stored edu email", func(t *testing.T) {
		accounts := new(MockAccountDirectory)
		svc := newTestIdentityService(accounts)
		ctx := context.Background()

		account := &entity.Account{ID: "user-1", Email: "alex@gmail.com", Metadata: map[string]interface{}{"edu_email": "alex@deanza.edu"}}
		accounts.On("FindByEmail", ctx, "alex@gmail.com").Return(account, nil)
		accounts.On("UpdateMetadata", ctx, "user-1", mock.MatchedBy(func(m map[string]interface{}) bool {
			return m["edu_email"] == "alex@deanza.edu" && m["edu_email_verified"] == true
		})).Return(nil)

		got, err := svc.ForceEduEmailVerified(ctx, " alex@gmail.com ", "")
		require.NoError(t, err)
		assert.True(t, got.EduEmailVerified())
		accounts.AssertExpectations(t)
	})

	t.Run("explicit edu email overrides", func(t *testing.T) {
		accounts := new(MockAccountDirectory)
		svc := newTestIdentityService(accounts)
		ctx := context.Background()

		account := &entity.Account{ID: "user-1", Email: "alex@gmail.com"}
		accounts.On("FindByEmail", ctx, "alex@gmail.com").Return(account, nil)
		accounts.On("UpdateMetadata", ctx, "user-1", mock.MatchedBy(func(m map[string]interface{}) bool {
			return m["edu_email"] == "alex@foothill.edu"
		})).Return(nil)

		got, err := svc.ForceEduEmailVerified(ctx, "alex@gmail.com", "alex@foothill.edu")
		require.NoError(t, err)
		assert.Equal(t, "alex@foothill.edu", got.MetaString(entity.MetaEduEmail))
	})

	t.Run("explicit edu email keeps its case", func(t *testing.T) {
		accounts := new(MockAccountDirectory)
		svc := newTestIdentityService(accounts)
		ctx := context.Background()

		account := &entity.Account{ID: "user-1", Email: "alex@gmail.com"}
		accounts.On("FindByEmail", ctx, "alex@gmail.com").Return(account, nil)
		accounts.On("UpdateMetadata", ctx, "user-1", mock.MatchedBy(func(m map[string]interface{}) bool {
			return m["edu_email"] == "Alex@DeAnza.edu" && m["edu_email_verified"] == true
		})).Return(nil)

		_, err := svc.ForceEduEmailVerified(ctx, "alex@gmail.com", " Alex@DeAnza.edu ")
		require.NoError(t, err)
		accounts.AssertExpectations(t)
	})

	t.Run("no edu email on record", func(t *testing.T) {
		accounts := new(MockAccountDirectory)
		svc := newTestIdentityService(accounts)
		ctx := context.Background()

		accounts.On("FindByEmail", ctx, "alex@gmail.com").Return(&entity.Account{ID: "user-1"}, nil)

		_, err := svc.ForceEduEmailVerified(ctx, "alex@gmail.com", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("unknown account", func(t *testing.T) {
		accounts := new(MockAccountDirectory)
		svc := newTestIdentityService(accounts)
		ctx := context.Background()

		accounts.On("FindByEmail", ctx, "ghost@gmail.com").Return(nil, apperrors.ErrNotFound)

		_, err := svc.ForceEduEmailVerified(ctx, "ghost@gmail.com", "")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("missing login email", func(t *testing.T) {
		svc := newTestIdentityService(new(MockAccountDirectory))

		_, err := svc.ForceEduEmailVerified(context.Background(), "  ", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}
