package schedule

import (
	"context"
	"time"
)

type TemplateRepository interface {
	// Create stores the template header together with its periods, patterns and slots.
	Create(ctx context.Context, template ScheduleTemplate) (ScheduleTemplate, error)
	// GetByID loads the full configuration tree.
	GetByID(ctx context.Context, id, organizationID string) (ScheduleTemplate, error)
	List(ctx context.Context, organizationID string) ([]ScheduleTemplate, error)
	ExistsByName(ctx context.Context, organizationID, name string) (bool, error)
	Update(ctx context.Context, template ScheduleTemplate) error
	Delete(ctx context.Context, id, organizationID string) error

	CreatePeriod(ctx context.Context, period SchedulePeriod) (SchedulePeriod, error)
	GetPeriod(ctx context.Context, id, organizationID string) (SchedulePeriod, error)
	UpdatePeriod(ctx context.Context, period SchedulePeriod) error
	DeletePeriod(ctx context.Context, id string) error
	// ReplacePattern swaps the pattern of one weekday, slots included.
	ReplacePattern(ctx context.Context, periodID string, pattern WorkDayPattern) (WorkDayPattern, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment TemplateAssignment) (TemplateAssignment, error)
	GetByID(ctx context.Context, id, organizationID string) (TemplateAssignment, error)
	ListByEmployee(ctx context.Context, employeeID, organizationID string) ([]TemplateAssignment, error)
	// FindActive returns the assignment covering date, or ErrAssignmentNotFound.
	FindActive(ctx context.Context, employeeID string, date time.Time) (TemplateAssignment, error)
	ListOverlapping(ctx context.Context, employeeID string, from time.Time, to *time.Time) ([]TemplateAssignment, error)
	CountByTemplate(ctx context.Context, templateID string) (int64, error)
	Delete(ctx context.Context, id, organizationID string) error
}
