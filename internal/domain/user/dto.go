package user

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

type AdminAction string

const (
	ActionCreate        AdminAction = "create"
	ActionChangeRole    AdminAction = "change-role"
	ActionResetPassword AdminAction = "reset-password"
	ActionToggleActive  AdminAction = "toggle-active"
	ActionUnlockAccount AdminAction = "unlock-account"
)

var AdminActions = []string{
	string(ActionCreate),
	string(ActionChangeRole),
	string(ActionResetPassword),
	string(ActionToggleActive),
	string(ActionUnlockAccount),
}

// AdminUserRequest is the body of POST /api/admin/users. Which fields are
// required depends on the action.
type AdminUserRequest struct {
	Action         string  `json:"action"`
	UserID         string  `json:"userId"`
	Email          string  `json:"email"`
	FullName       string  `json:"fullName"`
	Role           string  `json:"role"`
	CreateEmployee *bool   `json:"createEmployee"`
	EmployeeCode   *string `json:"employeeCode"`
	SendInvite     *bool   `json:"sendInvite"`
}

func (r *AdminUserRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Action = strings.TrimSpace(r.Action)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	if validator.IsEmpty(r.Action) {
		errs.Add("action", "action is required")
		return errs
	}
	if !validator.IsInSlice(r.Action, AdminActions) {
		errs.Add("action", "action must be one of: "+strings.Join(AdminActions, ", "))
		return errs
	}

	switch AdminAction(r.Action) {
	case ActionCreate:
		if validator.IsEmpty(r.Email) {
			errs.Add("email", "email is required")
		} else if !validator.IsValidEmail(r.Email) {
			errs.Add("email", "invalid email format")
		}
		if validator.IsEmpty(r.FullName) {
			errs.Add("fullName", "fullName is required")
		}
		if validator.IsEmpty(r.Role) {
			r.Role = string(RoleEmployee)
		}
		if !validator.IsInSlice(r.Role, Roles) {
			errs.Add("role", "role must be one of: "+strings.Join(Roles, ", "))
		}
	case ActionChangeRole:
		if validator.IsEmpty(r.UserID) {
			errs.Add("userId", "userId is required")
		}
		if !validator.IsInSlice(r.Role, Roles) {
			errs.Add("role", "role must be one of: "+strings.Join(Roles, ", "))
		}
	default:
		if validator.IsEmpty(r.UserID) {
			errs.Add("userId", "userId is required")
		}
	}

	return errs.OrNil()
}

type UserResponse struct {
	ID                 string  `json:"id"`
	OrganizationID     string  `json:"organizationId"`
	Email              string  `json:"email"`
	FullName           string  `json:"fullName"`
	Role               string  `json:"role"`
	IsActive           bool    `json:"isActive"`
	MustChangePassword bool    `json:"mustChangePassword"`
	IsLocked           bool    `json:"isLocked"`
	LockedUntil        *string `json:"lockedUntil,omitempty"`
	EmployeeID         *string `json:"employeeId,omitempty"`
	CreatedAt          string  `json:"createdAt"`
}

// AdminUserResponse is the fixed response shape of the admin users endpoint.
type AdminUserResponse struct {
	User              *UserResponse     `json:"user,omitempty"`
	TemporaryPassword *string           `json:"temporaryPassword,omitempty"`
	InviteEmailSent   *bool             `json:"inviteEmailSent,omitempty"`
	Error             string            `json:"error,omitempty"`
	Details           map[string]string `json:"details,omitempty"`
}

func NewUserResponse(u User, now time.Time) UserResponse {
	resp := UserResponse{
		ID:                 u.ID,
		OrganizationID:     u.OrganizationID,
		Email:              u.Email,
		FullName:           u.FullName,
		Role:               string(u.Role),
		IsActive:           u.IsActive,
		MustChangePassword: u.MustChangePassword,
		IsLocked:           u.IsLocked(now),
		EmployeeID:         u.EmployeeID,
		CreatedAt:          u.CreatedAt.Format(time.RFC3339),
	}
	if u.LockedUntil != nil {
		s := u.LockedUntil.Format(time.RFC3339)
		resp.LockedUntil = &s
	}
	return resp
}
