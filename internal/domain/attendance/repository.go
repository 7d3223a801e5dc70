package attendance

import (
	"context"
	"time"
)

// OpenSessionRef points at an employee-day whose last session is still open.
type OpenSessionRef struct {
	OrganizationID string
	EmployeeID     string
	WorkDate       time.Time
}

type TimeEntryRepository interface {
	Create(ctx context.Context, entry TimeEntry) (TimeEntry, error)
	GetByID(ctx context.Context, id, organizationID string) (TimeEntry, error)
	ListByWorkDate(ctx context.Context, employeeID string, workDate time.Time) ([]TimeEntry, error)
	ListByWorkDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]TimeEntry, error)
	// LastWorkDateBefore returns the latest work date with entries strictly before
	// the given date, or ErrEntryNotFound.
	LastWorkDateBefore(ctx context.Context, employeeID string, before time.Time) (time.Time, error)
	ListOpenSessions(ctx context.Context, since time.Time) ([]OpenSessionRef, error)
	Cancel(ctx context.Context, id, reason, cancelledBy string, auditNote *string, at time.Time) error
	// LockEmployee serializes clock mutations for one employee until the
	// surrounding transaction ends.
	LockEmployee(ctx context.Context, employeeID string) error
}

type RegularizationRepository interface {
	Create(ctx context.Context, req RegularizationRequest) (RegularizationRequest, error)
	GetByID(ctx context.Context, id, organizationID string) (RegularizationRequest, error)
	List(ctx context.Context, organizationID string, status *RegularizationStatus) ([]RegularizationRequest, error)
	HasPending(ctx context.Context, entryID string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status RegularizationStatus, reviewedBy string, at time.Time) error
}
