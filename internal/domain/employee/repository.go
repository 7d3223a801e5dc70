package employee

import "context"

type EmployeeRepository interface {
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id, organizationID string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	ListActive(ctx context.Context, organizationID string) ([]Employee, error)
	ExistsByCode(ctx context.Context, organizationID, code string) (bool, error)
}
