package timebank

import (
	"context"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
)

type TimeBankService interface {
	// PostDay appends the difference between the day's deviation and what was
	// already posted for it. It returns nil when nothing changed.
	PostDay(ctx context.Context, organizationID, employeeID string, workDate time.Time) (*LedgerEntry, error)
	// PostDate posts one work date for every active employee of the organization.
	PostDate(ctx context.Context, organizationID string, workDate time.Time) (PostResult, error)
	// PostPreviousDay posts yesterday, in each organization's time zone.
	PostPreviousDay(ctx context.Context) ([]PostResult, error)

	Adjust(ctx context.Context, actor user.Actor, req AdjustmentRequest) (LedgerEntryResponse, error)
	Balance(ctx context.Context, actor user.Actor, employeeID string) (BalanceResponse, error)
	Ledger(ctx context.Context, actor user.Actor, employeeID string, from, to time.Time) ([]LedgerEntryResponse, error)
}
