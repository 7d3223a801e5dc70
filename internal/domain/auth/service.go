package auth

import (
	"context"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
)

const (
	// MaxFailedAttempts before an account is locked for LockDuration.
	MaxFailedAttempts = 5
	LockDuration      = 15 * time.Minute
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	ChangePassword(ctx context.Context, actor user.Actor, req ChangePasswordRequest) error
	SSEToken(ctx context.Context, actor user.Actor) (SSETokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
}
