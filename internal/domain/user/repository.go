package user

import (
	"context"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, newUser User) (User, error)
	GetByID(ctx context.Context, id, organizationID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]User, error)
	UpdateRole(ctx context.Context, id string, role Role) error
	UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error
	SetActive(ctx context.Context, id string, active bool) error
	Unlock(ctx context.Context, id string, at time.Time) error
	// RecordLoginFailure stores the failed attempt counter and an optional lock.
	RecordLoginFailure(ctx context.Context, id string, attempts int, lockedUntil *time.Time) error
	RecordLoginSuccess(ctx context.Context, id string) error
}
