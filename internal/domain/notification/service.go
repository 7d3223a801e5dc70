package notification

import (
	"context"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/sse"
)

type Service interface {
	// Notify queues an event for the recipient's live stream.
	Notify(ctx context.Context, event Event) error

	Dismiss(ctx context.Context, actor user.Actor, req DismissAlertRequest) error
	// FilterDismissed drops alerts the employee already dismissed.
	FilterDismissed(ctx context.Context, employeeID string, alerts []Alert) ([]Alert, error)

	// SSE subscription
	Subscribe(userID string) (chan sse.Event, func())

	// Lifecycle
	Stop()
}
