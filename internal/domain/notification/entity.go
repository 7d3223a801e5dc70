package notification

import (
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// AlertKind identifies a condition surfaced to the employee.
type AlertKind string

const (
	KindIncompleteEntry     AlertKind = "incomplete_entry"
	KindExcessiveDuration   AlertKind = "excessive_duration"
	KindOutsideAllowedArea  AlertKind = "outside_allowed_area"
	KindLocationUnavailable AlertKind = "location_unavailable"
	KindLocationUnverified  AlertKind = "location_unverified"
	KindWorkingOnAbsence    AlertKind = "working_on_absence"
	KindNoScheduleAssigned  AlertKind = "no_schedule_assigned"
)

// DismissibleKinds are the persistent conditions whose dismissal is stored.
var DismissibleKinds = []string{
	string(KindIncompleteEntry),
	string(KindExcessiveDuration),
	string(KindNoScheduleAssigned),
}

type Alert struct {
	Kind        AlertKind
	Severity    Severity
	Title       string
	Description string
	// ReferenceID is the entity the alert is about, usually a time entry.
	ReferenceID string
}

// Dismissal is keyed by (employee, kind, referenced entity).
type Dismissal struct {
	EmployeeID  string
	Kind        AlertKind
	ReferenceID string
	DismissedAt time.Time
}

// EventType names the SSE events pushed to clients.
type EventType string

const (
	EventAttendanceStatus EventType = "attendance.status"
	EventAttendanceAlert  EventType = "attendance.alert"
	EventExpenseStatus    EventType = "expense.status"
)

// Event is a message for one user's live stream.
type Event struct {
	RecipientID string
	Type        EventType
	Data        interface{}
	CreatedAt   time.Time
}
