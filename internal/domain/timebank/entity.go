package timebank

import "time"

type EntryKind string

const (
	KindDaily      EntryKind = "DAILY"
	KindAdjustment EntryKind = "ADJUSTMENT"
)

// LedgerEntry is an append-only deviation record. The balance is the sum of
// DeviationMinutes; rows are never updated.
type LedgerEntry struct {
	ID               string
	OrganizationID   string
	EmployeeID       string
	WorkDate         time.Time
	Kind             EntryKind
	ExpectedMinutes  int
	WorkedMinutes    int
	DeviationMinutes int
	Note             *string
	CreatedBy        string
	CreatedAt        time.Time
}
