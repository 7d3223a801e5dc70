package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type authServiceImpl struct {
	userRepo   user.UserRepository
	jwtService jwt.Service
	now        func() time.Time
}

func NewAuthService(userRepo user.UserRepository, jwtService jwt.Service, now func() time.Time) auth.AuthService {
	if now == nil {
		now = time.Now
	}
	return &authServiceImpl{
		userRepo:   userRepo,
		jwtService: jwtService,
		now:        now,
	}
}

// HashPassword hashes a password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login implements auth.AuthService.
func (a *authServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}
	now := a.now().UTC()

	userData, err := a.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.IsLocked(now) {
		return auth.TokenResponse{}, auth.ErrAccountLocked
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, a.recordFailure(ctx, userData, now)
	}

	if err := a.userRepo.RecordLoginSuccess(ctx, userData.ID); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to record login: %w", err)
	}

	token, expiresAt, err := a.jwtService.GenerateAccessToken(jwt.Claims{
		UserID:         userData.ID,
		Email:          userData.Email,
		EmployeeID:     userData.EmployeeID,
		OrganizationID: userData.OrganizationID,
		Role:           userData.Role,
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	slog.Info("user logged in", "user_id", userData.ID, "organization_id", userData.OrganizationID)
	return auth.TokenResponse{
		AccessToken:          token,
		AccessTokenExpiresAt: expiresAt,
		MustChangePassword:   userData.MustChangePassword,
	}, nil
}

// recordFailure counts a wrong password. The counter restarts once a previous
// lock has expired.
func (a *authServiceImpl) recordFailure(ctx context.Context, u user.User, now time.Time) error {
	attempts := u.FailedLoginAttempts
	if u.LockedUntil != nil {
		attempts = 0
	}
	attempts++

	var lockedUntil *time.Time
	if attempts >= auth.MaxFailedAttempts {
		until := now.Add(auth.LockDuration)
		lockedUntil = &until
	}
	if err := a.userRepo.RecordLoginFailure(ctx, u.ID, attempts, lockedUntil); err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}

	if lockedUntil != nil {
		slog.Warn("account locked after failed logins", "user_id", u.ID, "attempts", attempts, "locked_until", lockedUntil)
		return auth.ErrAccountLocked
	}
	return auth.ErrInvalidCredentials
}

// ChangePassword implements auth.AuthService.
func (a *authServiceImpl) ChangePassword(ctx context.Context, actor user.Actor, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	userData, err := a.userRepo.GetByID(ctx, actor.UserID, actor.OrganizationID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrInvalidCredentials
	}
	if req.CurrentPassword == req.NewPassword {
		return auth.ErrSamePassword
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return a.userRepo.UpdatePassword(ctx, userData.ID, hash, false)
}

// SSEToken implements auth.AuthService.
func (a *authServiceImpl) SSEToken(ctx context.Context, actor user.Actor) (auth.SSETokenResponse, error) {
	token, expiresIn, err := a.jwtService.GenerateSSEToken(actor.UserID)
	if err != nil {
		return auth.SSETokenResponse{}, fmt.Errorf("failed to generate SSE token: %w", err)
	}
	return auth.SSETokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

// Logout implements auth.AuthService.
func (a *authServiceImpl) Logout(ctx context.Context, accessToken string) error {
	a.jwtService.RevokeToken(accessToken)
	return nil
}
