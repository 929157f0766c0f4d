package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceForTest(t *testing.T, users *mockUserStore, profiles *mockProfileStore) UserService {
	t.Helper()
	svc, err := NewUserService(users, profiles, newFakeDB(t), slog.Default())
	require.NoError(t, err)
	return svc
}

func TestRegisterUserCreatesEmptyProfile(t *testing.T) {
	t.Parallel()

	users := newMockUserStore()
	profiles := newMockProfileStore()
	svc := newUserServiceForTest(t, users, profiles)

	user, err := svc.RegisterUser(context.Background(), "new@example.com", "a-strong-password")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "new@example.com", user.Email)

	profile, err := profiles.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
	assert.Empty(t, profile.FirstName)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	t.Parallel()

	users := newMockUserStore()
	profiles := newMockProfileStore()
	svc := newUserServiceForTest(t, users, profiles)

	_, err := svc.RegisterUser(context.Background(), "taken@example.com", "a-strong-password")
	require.NoError(t, err)

	_, err = svc.RegisterUser(context.Background(), "taken@example.com", "another-password")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterUserValidation(t *testing.T) {
	t.Parallel()

	svc := newUserServiceForTest(t, newMockUserStore(), newMockProfileStore())

	_, err := svc.RegisterUser(context.Background(), "bad@example.com", "short")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	_, err = svc.RegisterUser(context.Background(), "not-an-email", "a-strong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestGetUserByEmail(t *testing.T) {
	t.Parallel()

	users := newMockUserStore()
	profiles := newMockProfileStore()
	svc := newUserServiceForTest(t, users, profiles)

	registered, err := svc.RegisterUser(context.Background(), "lookup@example.com", "a-strong-password")
	require.NoError(t, err)

	found, err := svc.GetUserByEmail(context.Background(), "lookup@example.com")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, found.ID)

	_, err = svc.GetUserByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
