package attendance

import "time"

type EntryType string

const (
	EntryClockIn       EntryType = "CLOCK_IN"
	EntryBreakStart    EntryType = "BREAK_START"
	EntryBreakEnd      EntryType = "BREAK_END"
	EntryClockOut      EntryType = "CLOCK_OUT"
	EntryProjectSwitch EntryType = "PROJECT_SWITCH"
)

var EntryTypes = []string{
	string(EntryClockIn),
	string(EntryBreakStart),
	string(EntryBreakEnd),
	string(EntryClockOut),
	string(EntryProjectSwitch),
}

// Label returns the Spanish label used in exports.
func (t EntryType) Label() string {
	switch t {
	case EntryClockIn:
		return "Entrada"
	case EntryClockOut:
		return "Salida"
	case EntryBreakStart:
		return "Inicio pausa"
	case EntryBreakEnd:
		return "Fin pausa"
	case EntryProjectSwitch:
		return "Cambio de proyecto"
	}
	return string(t)
}

type Status string

const (
	StatusClockedOut Status = "CLOCKED_OUT"
	StatusClockedIn  Status = "CLOCKED_IN"
	StatusOnBreak    Status = "ON_BREAK"
)

// TimeEntry is an immutable event in an employee's working day. Entries are never
// deleted; administrative correction marks them cancelled.
type TimeEntry struct {
	ID                  string
	OrganizationID      string
	EmployeeID          string
	WorkDate            time.Time
	EntryType           EntryType
	Timestamp           time.Time
	ProjectID           *string
	Task                *string
	Latitude            *float64
	Longitude           *float64
	Accuracy            *float64
	IsWithinAllowedArea *bool
	RequiresReview      bool
	IsManual            bool
	IsCancelled         bool
	CancellationReason  *string
	CancelledBy         *string
	CancelledAt         *time.Time
	AuditNote           *string
	CreatedBy           string
	CreatedAt           time.Time
}

// HasLocation reports whether the entry carries coordinates.
func (e TimeEntry) HasLocation() bool {
	return e.Latitude != nil && e.Longitude != nil
}

type RegularizationStatus string

const (
	RegularizationPending  RegularizationStatus = "PENDING"
	RegularizationApproved RegularizationStatus = "APPROVED"
	RegularizationRejected RegularizationStatus = "REJECTED"
)

// RegularizationRequest asks a manager to close an open session at a given time.
type RegularizationRequest struct {
	ID                string
	OrganizationID    string
	EmployeeID        string
	EntryID           string
	RequestedClockOut time.Time
	Reason            string
	Status            RegularizationStatus
	ReviewedBy        *string
	ReviewedAt        *time.Time
	CreatedAt         time.Time
}
