package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeInactive   = errors.New("employee is inactive")
	ErrEmployeeCodeExists = errors.New("employee code already exists")
)
