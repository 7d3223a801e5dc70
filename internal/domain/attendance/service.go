package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
)

type AttendanceService interface {
	// Clock actions
	ClockIn(ctx context.Context, actor user.Actor, req ClockActionRequest) (ClockActionResponse, error)
	StartBreak(ctx context.Context, actor user.Actor, req ClockActionRequest) (ClockActionResponse, error)
	EndBreak(ctx context.Context, actor user.Actor, req ClockActionRequest) (ClockActionResponse, error)
	ClockOut(ctx context.Context, actor user.Actor, req ClockActionRequest) (ClockActionResponse, error)
	ChangeProject(ctx context.Context, actor user.Actor, req ChangeProjectRequest) (ClockActionResponse, error)

	// Read side
	GetStatus(ctx context.Context, actor user.Actor) (StatusResponse, error)
	ListEntries(ctx context.Context, actor user.Actor, employeeID string, date time.Time) ([]EntryResponse, error)
	// Summaries returns one summary per calendar day of [from, to].
	Summaries(ctx context.Context, organizationID, employeeID string, from, to time.Time) ([]DailySummary, error)

	// Corrections
	CancelEntry(ctx context.Context, actor user.Actor, entryID string, req CancelEntryRequest) (EntryResponse, error)
	RectifyEntry(ctx context.Context, actor user.Actor, employeeID string, req RectifyEntryRequest) (EntryResponse, error)
	ResolveOpenSession(ctx context.Context, actor user.Actor, req ResolveOpenSessionRequest) (ResolveOpenSessionResponse, error)
	ListRegularizations(ctx context.Context, actor user.Actor, status *RegularizationStatus) ([]RegularizationResponse, error)
	ApproveRegularization(ctx context.Context, actor user.Actor, id string) (RegularizationResponse, error)
	RejectRegularization(ctx context.Context, actor user.Actor, id string) (RegularizationResponse, error)

	// RemindExcessiveSessions pushes a live alert for every open session beyond the threshold.
	RemindExcessiveSessions(ctx context.Context) (int, error)
}
