package timebank

import (
	"context"
	"time"
)

type LedgerRepository interface {
	Append(ctx context.Context, entry LedgerEntry) (LedgerEntry, error)
	// PostedDeviation sums DAILY rows already posted for one work date.
	PostedDeviation(ctx context.Context, employeeID string, workDate time.Time) (int, error)
	Balance(ctx context.Context, employeeID string) (int, error)
	List(ctx context.Context, employeeID string, from, to time.Time) ([]LedgerEntry, error)
}
