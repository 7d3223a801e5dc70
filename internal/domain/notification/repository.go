package notification

import (
	"context"
)

type DismissalRepository interface {
	// Dismiss is idempotent.
	Dismiss(ctx context.Context, d Dismissal) error
	ListByEmployee(ctx context.Context, employeeID string) ([]Dismissal, error)
}
