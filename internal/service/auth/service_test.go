package auth

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

// memUsers keeps users in memory. Only the methods login needs are implemented.
type memUsers struct {
	user.UserRepository
	users map[string]*user.User
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id, organizationID string) (user.User, error) {
	u, ok := m.users[id]
	if !ok || u.OrganizationID != organizationID {
		return user.User{}, user.ErrUserNotFound
	}
	return *u, nil
}

func (m *memUsers) RecordLoginFailure(ctx context.Context, id string, attempts int, lockedUntil *time.Time) error {
	m.users[id].FailedLoginAttempts = attempts
	m.users[id].LockedUntil = lockedUntil
	return nil
}

func (m *memUsers) RecordLoginSuccess(ctx context.Context, id string) error {
	m.users[id].FailedLoginAttempts = 0
	m.users[id].LockedUntil = nil
	return nil
}

func (m *memUsers) UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error {
	m.users[id].PasswordHash = passwordHash
	m.users[id].MustChangePassword = mustChange
	return nil
}

type authFixture struct {
	svc   auth.AuthService
	users *memUsers
	jwt   *jwt.JWTService
	now   time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	empID := "emp-1"

	f := &authFixture{
		users: &memUsers{users: map[string]*user.User{
			"u-1": {
				ID:                 "u-1",
				OrganizationID:     "org-1",
				Email:              "lucia@acme.test",
				PasswordHash:       string(hash),
				Role:               user.RoleEmployee,
				IsActive:           true,
				MustChangePassword: true,
				EmployeeID:         &empID,
			},
		}},
		jwt: jwt.NewJWTService(testSecret, "1h"),
		now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewAuthService(f.users, f.jwt, func() time.Time { return f.now })
	return f
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "Lucia@acme.test", Password: "password123"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.AccessTokenExpiresAt, int64(0))
	assert.True(t, resp.MustChangePassword)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "lucia@acme.test", Password: "wrong-password"})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, 1, f.users.users["u-1"].FailedLoginAttempts)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "nobody@acme.test", Password: "password123"})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_LocksAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	bad := auth.LoginRequest{Email: "lucia@acme.test", Password: "wrong-password"}

	for i := 1; i < auth.MaxFailedAttempts; i++ {
		_, err := f.svc.Login(ctx, bad)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}
	_, err := f.svc.Login(ctx, bad)
	assert.ErrorIs(t, err, auth.ErrAccountLocked)

	// The right password is refused while locked.
	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "lucia@acme.test", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrAccountLocked)

	f.now = f.now.Add(auth.LockDuration + time.Second)
	resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: "lucia@acme.test", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Zero(t, f.users.users["u-1"].FailedLoginAttempts)
}

func TestAuthService_Login_Inactive(t *testing.T) {
	f := newAuthFixture(t)
	f.users.users["u-1"].IsActive = false

	_, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "lucia@acme.test", Password: "password123"})

	assert.ErrorIs(t, err, auth.ErrAccountInactive)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	actor := user.Actor{UserID: "u-1", EmployeeID: "emp-1", OrganizationID: "org-1", Role: user.RoleEmployee}

	err := f.svc.ChangePassword(ctx, actor, auth.ChangePasswordRequest{
		CurrentPassword: "nope", NewPassword: "new-password-1", ConfirmPassword: "new-password-1",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	err = f.svc.ChangePassword(ctx, actor, auth.ChangePasswordRequest{
		CurrentPassword: "password123", NewPassword: "password123", ConfirmPassword: "password123",
	})
	assert.ErrorIs(t, err, auth.ErrSamePassword)

	err = f.svc.ChangePassword(ctx, actor, auth.ChangePasswordRequest{
		CurrentPassword: "password123", NewPassword: "new-password-1", ConfirmPassword: "new-password-1",
	})
	require.NoError(t, err)
	assert.False(t, f.users.users["u-1"].MustChangePassword)

	resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: "lucia@acme.test", Password: "new-password-1"})
	require.NoError(t, err)
	assert.False(t, resp.MustChangePassword)
}

func TestAuthService_SSETokenAndLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	sse, err := f.svc.SSEToken(ctx, user.Actor{UserID: "u-1", OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, 300, sse.ExpiresIn)
	userID, err := f.jwt.ValidateSSEToken(sse.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)

	require.NoError(t, f.svc.Logout(ctx, "some-access-token"))
	assert.True(t, f.jwt.IsTokenRevoked("some-access-token"))
}
