package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Organization administrator - full access
	RoleManager  Role = "manager"  // Reviews entries, expenses and regularizations
	RoleEmployee Role = "employee" // Regular employee
)

var Roles = []string{string(RoleAdmin), string(RoleManager), string(RoleEmployee)}

type User struct {
	ID                  string
	OrganizationID      string
	Email               string
	FullName            string
	PasswordHash        string
	Role                Role
	IsActive            bool
	MustChangePassword  bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// DTO / Join
	EmployeeID *string
}

// IsAdmin checks if user administers the organization
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsManager checks if user is manager or admin
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}

// IsLocked reports whether the account is locked at the given instant.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
