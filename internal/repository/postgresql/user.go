package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

// userSelect joins the employee profile so tokens can carry employee_id.
const userSelect = `
	SELECT u.id, u.organization_id, u.email, u.full_name, u.password_hash, u.role,
		   u.is_active, u.must_change_password, u.failed_login_attempts, u.locked_until,
		   u.created_at, u.updated_at, e.id
	FROM users u
	LEFT JOIN employees e ON e.user_id = u.id
`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.OrganizationID,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		&u.MustChangePassword,
		&u.FailedLoginAttempts,
		&u.LockedUntil,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.EmployeeID,
	)
	return u, err
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if newUser.ID == "" {
		id, err := newID()
		if err != nil {
			return user.User{}, err
		}
		newUser.ID = id
	}

	query := `
		INSERT INTO users (id, organization_id, email, full_name, password_hash, role, is_active, must_change_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		newUser.ID,
		newUser.OrganizationID,
		newUser.Email,
		newUser.FullName,
		newUser.PasswordHash,
		newUser.Role,
		newUser.IsActive,
		newUser.MustChangePassword,
	).Scan(&newUser.CreatedAt, &newUser.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return newUser, nil
}

func (r *userRepositoryImpl) GetByID(ctx context.Context, id, organizationID string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	u, err := scanUser(q.QueryRow(ctx, userSelect+` WHERE u.id = $1 AND u.organization_id = $2`, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	u, err := scanUser(q.QueryRow(ctx, userSelect+` WHERE u.email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *userRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, userSelect+` WHERE u.organization_id = $1 ORDER BY u.full_name`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (user.User, error) {
		return scanUser(row)
	})
}

func (r *userRepositoryImpl) exec(ctx context.Context, query string, args ...any) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *userRepositoryImpl) UpdateRole(ctx context.Context, id string, role user.Role) error {
	return r.exec(ctx, `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
}

func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error {
	return r.exec(ctx, `
		UPDATE users
		SET password_hash = $1, must_change_password = $2, updated_at = NOW()
		WHERE id = $3
	`, passwordHash, mustChange, id)
}

func (r *userRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
}

func (r *userRepositoryImpl) Unlock(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET failed_login_attempts = 0, locked_until = NULL, updated_at = $1
		WHERE id = $2
	`, at, id)
}

func (r *userRepositoryImpl) RecordLoginFailure(ctx context.Context, id string, attempts int, lockedUntil *time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET failed_login_attempts = $1, locked_until = $2, updated_at = NOW()
		WHERE id = $3
	`, attempts, lockedUntil, id)
}

func (r *userRepositoryImpl) RecordLoginSuccess(ctx context.Context, id string) error {
	return r.exec(ctx, `
		UPDATE users
		SET failed_login_attempts = 0, locked_until = NULL
		WHERE id = $1
	`, id)
}
