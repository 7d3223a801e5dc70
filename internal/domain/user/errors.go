package user

import "errors"

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrUserEmailExists          = errors.New("email already registered")
	ErrUnknownAction            = errors.New("unknown admin user action")
	ErrCannotModifySelf         = errors.New("administrators cannot change their own role or status")
	ErrAdminPrivilegeRequired   = errors.New("admin privilege required")
	ErrManagerAccessRequired    = errors.New("manager access required")
	ErrInsufficientPermissions  = errors.New("insufficient permissions")
	ErrEmployeeProfileRequired  = errors.New("an employee profile is required for this operation")
	ErrOrganizationIDRequired   = errors.New("organization ID is required")
	ErrAccountNotLocked         = errors.New("account is not locked")
	ErrTemporaryPasswordFailure = errors.New("failed to generate temporary password")
)
