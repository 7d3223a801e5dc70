package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked after too many failed attempts")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrSamePassword       = errors.New("new password must differ from the current one")
)
