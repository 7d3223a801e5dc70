package absence

import (
	"context"
	"time"
)

type AbsenceRepository interface {
	Create(ctx context.Context, a Absence) (Absence, error)
	GetByID(ctx context.Context, id, organizationID string) (Absence, error)
	// FindCovering returns the absence covering date, or ErrAbsenceNotFound.
	FindCovering(ctx context.Context, employeeID string, date time.Time) (Absence, error)
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Absence, error)
	ExistsOverlapping(ctx context.Context, employeeID string, from, to time.Time) (bool, error)
	Delete(ctx context.Context, id, organizationID string) error
}
