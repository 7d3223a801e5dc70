package schedule

import (
	"context"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
)

type ScheduleService interface {
	// Templates
	CreateTemplate(ctx context.Context, actor user.Actor, req CreateTemplateRequest) (TemplateResponse, error)
	GetTemplate(ctx context.Context, actor user.Actor, id string) (TemplateResponse, error)
	ListTemplates(ctx context.Context, actor user.Actor) ([]TemplateResponse, error)
	UpdateTemplate(ctx context.Context, actor user.Actor, req UpdateTemplateRequest) (TemplateResponse, error)
	DeleteTemplate(ctx context.Context, actor user.Actor, id string) error
	// ImportTemplate creates a template from a YAML document.
	ImportTemplate(ctx context.Context, actor user.Actor, data []byte) (TemplateResponse, error)

	// Periods and day patterns
	CreatePeriod(ctx context.Context, actor user.Actor, req CreatePeriodRequest) (PeriodResponse, error)
	UpdatePeriod(ctx context.Context, actor user.Actor, req UpdatePeriodRequest) (PeriodResponse, error)
	DeletePeriod(ctx context.Context, actor user.Actor, id string) error
	UpsertDayPattern(ctx context.Context, actor user.Actor, periodID string, req DayPatternRequest) (PeriodResponse, error)

	// Assignments
	CreateAssignment(ctx context.Context, actor user.Actor, req CreateAssignmentRequest) (AssignmentResponse, error)
	ListAssignments(ctx context.Context, actor user.Actor, employeeID string) ([]AssignmentResponse, error)
	DeleteAssignment(ctx context.Context, actor user.Actor, id string) error

	GetEffectiveSchedule(ctx context.Context, actor user.Actor, employeeID string, date time.Time) (EffectiveScheduleResponse, error)
}

// Resolver computes effective schedules for other bounded contexts.
type Resolver interface {
	Resolve(ctx context.Context, employeeID string, date time.Time) (EffectiveSchedule, error)
	ResolveRange(ctx context.Context, employeeID string, from, to time.Time) ([]EffectiveSchedule, error)
}
