package employee

import "time"

type Employee struct {
	ID             string
	OrganizationID string
	UserID         *string
	FullName       string
	EmployeeCode   *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
