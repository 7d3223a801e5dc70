package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

type LocationStatus string

const (
	LocationGranted     LocationStatus = "granted"
	LocationDenied      LocationStatus = "denied"
	LocationUnavailable LocationStatus = "unavailable"
	LocationTimeout     LocationStatus = "timeout"
)

var LocationStatuses = []string{
	string(LocationGranted),
	string(LocationDenied),
	string(LocationUnavailable),
	string(LocationTimeout),
}

// Location is the optional geolocation sent with a clock action.
type Location struct {
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Accuracy       *float64 `json:"accuracy"`
	LocationStatus string   `json:"location_status"`
}

func (l *Location) validate(errs *validator.ValidationErrors) {
	if (l.Latitude == nil) != (l.Longitude == nil) {
		errs.Add("latitude", "latitude and longitude must be sent together")
	}
	if l.Latitude != nil && !validator.IsValidLatitude(*l.Latitude) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if l.Longitude != nil && !validator.IsValidLongitude(*l.Longitude) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}
	if l.Accuracy != nil && *l.Accuracy < 0 {
		errs.Add("accuracy", "accuracy must be a non-negative number")
	}
	if l.LocationStatus != "" && !validator.IsInSlice(l.LocationStatus, LocationStatuses) {
		errs.Add("location_status", "location_status must be one of: "+strings.Join(LocationStatuses, ", "))
	}
}

func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

type ClockActionRequest struct {
	Location
	ProjectID *string `json:"project_id"`
	Task      *string `json:"task"`
}

func (r *ClockActionRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Location.validate(&errs)
	return errs.OrNil()
}

type ChangeProjectRequest struct {
	ProjectID *string `json:"project_id"`
	Task      *string `json:"task"`
}

func (r *ChangeProjectRequest) Validate() error {
	var errs validator.ValidationErrors
	if (r.ProjectID == nil || validator.IsEmpty(*r.ProjectID)) && (r.Task == nil || validator.IsEmpty(*r.Task)) {
		errs.Add("project_id", "project_id or task is required")
	}
	return errs.OrNil()
}

type CancelEntryRequest struct {
	Reason    string  `json:"reason"`
	AuditNote *string `json:"audit_note"`
}

func (r *CancelEntryRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}
	return errs.OrNil()
}

// RectifyEntryRequest adds a manual entry on behalf of an employee.
type RectifyEntryRequest struct {
	EntryType string  `json:"entry_type"`
	Timestamp string  `json:"timestamp"`
	Reason    string  `json:"reason"`
	ProjectID *string `json:"project_id"`
	Task      *string `json:"task"`

	ParsedTimestamp time.Time `json:"-"`
}

func (r *RectifyEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EntryType = strings.ToUpper(strings.TrimSpace(r.EntryType))
	if !validator.IsInSlice(r.EntryType, EntryTypes) {
		errs.Add("entry_type", "entry_type must be one of: "+strings.Join(EntryTypes, ", "))
	}
	if ts, ok := validator.IsValidDateTime(r.Timestamp); ok {
		r.ParsedTimestamp = ts.UTC()
	} else {
		errs.Add("timestamp", "timestamp must be a valid ISO8601 datetime")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}

	return errs.OrNil()
}

type ResolutionAction string

const (
	ResolveCloseAndCancel ResolutionAction = "close_and_cancel"
	ResolveRegularize     ResolutionAction = "regularize"
)

var ResolutionActions = []string{string(ResolveCloseAndCancel), string(ResolveRegularize)}

// ResolveOpenSessionRequest settles an incomplete or excessive session.
type ResolveOpenSessionRequest struct {
	EntryID           string  `json:"entry_id"`
	Action            string  `json:"action"`
	Reason            string  `json:"reason"`
	AuditNote         *string `json:"audit_note"`
	RequestedClockOut *string `json:"requested_clock_out"`

	ParsedClockOut time.Time `json:"-"`
}

func (r *ResolveOpenSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EntryID) {
		errs.Add("entry_id", "entry_id is required")
	}
	if !validator.IsInSlice(r.Action, ResolutionActions) {
		errs.Add("action", "action must be one of: "+strings.Join(ResolutionActions, ", "))
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}
	if ResolutionAction(r.Action) == ResolveRegularize {
		if r.RequestedClockOut == nil {
			errs.Add("requested_clock_out", "requested_clock_out is required to regularize")
		} else if ts, ok := validator.IsValidDateTime(*r.RequestedClockOut); ok {
			r.ParsedClockOut = ts.UTC()
		} else {
			errs.Add("requested_clock_out", "requested_clock_out must be a valid ISO8601 datetime")
		}
	}

	return errs.OrNil()
}

type EntryResponse struct {
	ID                  string   `json:"id"`
	EmployeeID          string   `json:"employee_id"`
	WorkDate            string   `json:"work_date"`
	EntryType           string   `json:"entry_type"`
	Label               string   `json:"label"`
	Timestamp           string   `json:"timestamp"`
	ProjectID           *string  `json:"project_id,omitempty"`
	Task                *string  `json:"task,omitempty"`
	Latitude            *float64 `json:"latitude,omitempty"`
	Longitude           *float64 `json:"longitude,omitempty"`
	Accuracy            *float64 `json:"accuracy,omitempty"`
	IsWithinAllowedArea *bool    `json:"is_within_allowed_area,omitempty"`
	RequiresReview      bool     `json:"requires_review"`
	IsManual            bool     `json:"is_manual"`
	IsCancelled         bool     `json:"is_cancelled"`
	CancellationReason  *string  `json:"cancellation_reason,omitempty"`
	AuditNote           *string  `json:"audit_note,omitempty"`
}

type AnomalyResponse struct {
	Kind      string `json:"kind"`
	EntryID   string `json:"entry_id"`
	EntryType string `json:"entry_type"`
	Timestamp string `json:"timestamp"`
}

type PendingProjectChangeResponse struct {
	ProjectID   *string `json:"project_id,omitempty"`
	Task        *string `json:"task,omitempty"`
	RequestedAt string  `json:"requested_at"`
}

type DailySummaryResponse struct {
	Date               string                             `json:"date"`
	ClockIn            *string                            `json:"clock_in"`
	ClockOut           *string                            `json:"clock_out"`
	TotalWorkedMinutes int                                `json:"total_worked_minutes"`
	TotalBreakMinutes  int                                `json:"total_break_minutes"`
	Status             string                             `json:"status"`
	IsInProgress       bool                               `json:"is_in_progress"`
	TimeEntries        []EntryResponse                    `json:"time_entries"`
	Schedule           schedule.EffectiveScheduleResponse `json:"schedule"`
	Compliance         Compliance                         `json:"compliance"`
	Anomalies          []AnomalyResponse                  `json:"anomalies,omitempty"`
}

type StatusResponse struct {
	Status               string                        `json:"status"`
	IsOnBreak            bool                          `json:"is_on_break"`
	ActiveProjectID      *string                       `json:"active_project_id,omitempty"`
	ActiveTask           *string                       `json:"active_task,omitempty"`
	PendingProjectChange *PendingProjectChangeResponse `json:"pending_project_change,omitempty"`
	OpenSessionStart     *string                       `json:"open_session_start,omitempty"`
	Summary              DailySummaryResponse          `json:"summary"`
	Alerts               []notification.AlertResponse  `json:"alerts"`
}

// ClockActionResponse is returned by every clock mutation.
type ClockActionResponse struct {
	Entry     EntryResponse                `json:"entry"`
	Status    string                       `json:"status"`
	IsOnBreak bool                         `json:"is_on_break"`
	Alerts    []notification.AlertResponse `json:"alerts"`
	Summary   DailySummaryResponse         `json:"summary"`
}

type ResolveOpenSessionResponse struct {
	Action           string                  `json:"action"`
	CancelledEntries []EntryResponse         `json:"cancelled_entries,omitempty"`
	Regularization   *RegularizationResponse `json:"regularization,omitempty"`
}

type RegularizationResponse struct {
	ID                string  `json:"id"`
	EmployeeID        string  `json:"employee_id"`
	EntryID           string  `json:"entry_id"`
	RequestedClockOut string  `json:"requested_clock_out"`
	Reason            string  `json:"reason"`
	Status            string  `json:"status"`
	ReviewedBy        *string `json:"reviewed_by,omitempty"`
	ReviewedAt        *string `json:"reviewed_at,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

func NewEntryResponse(e TimeEntry) EntryResponse {
	return EntryResponse{
		ID:                  e.ID,
		EmployeeID:          e.EmployeeID,
		WorkDate:            e.WorkDate.Format("2006-01-02"),
		EntryType:           string(e.EntryType),
		Label:               e.EntryType.Label(),
		Timestamp:           e.Timestamp.UTC().Format(time.RFC3339),
		ProjectID:           e.ProjectID,
		Task:                e.Task,
		Latitude:            e.Latitude,
		Longitude:           e.Longitude,
		Accuracy:            e.Accuracy,
		IsWithinAllowedArea: e.IsWithinAllowedArea,
		RequiresReview:      e.RequiresReview,
		IsManual:            e.IsManual,
		IsCancelled:         e.IsCancelled,
		CancellationReason:  e.CancellationReason,
		AuditNote:           e.AuditNote,
	}
}

func NewDailySummaryResponse(s DailySummary) DailySummaryResponse {
	resp := DailySummaryResponse{
		Date:               s.Date.Format("2006-01-02"),
		ClockIn:            timePtrToString(s.State.ClockIn),
		ClockOut:           timePtrToString(s.State.ClockOut),
		TotalWorkedMinutes: s.State.WorkedMinutes(),
		TotalBreakMinutes:  s.State.BreakMinutes(),
		Status:             string(s.Status),
		IsInProgress:       s.State.IsOpen(),
		TimeEntries:        make([]EntryResponse, 0, len(s.Entries)),
		Schedule:           schedule.NewEffectiveScheduleResponse(s.Schedule),
		Compliance:         s.Compliance,
	}
	for _, e := range s.Entries {
		resp.TimeEntries = append(resp.TimeEntries, NewEntryResponse(e))
	}
	for _, a := range s.State.Anomalies {
		resp.Anomalies = append(resp.Anomalies, AnomalyResponse{
			Kind:      string(a.Kind),
			EntryID:   a.EntryID,
			EntryType: string(a.EntryType),
			Timestamp: a.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

func NewRegularizationResponse(r RegularizationRequest) RegularizationResponse {
	return RegularizationResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		EntryID:           r.EntryID,
		RequestedClockOut: r.RequestedClockOut.UTC().Format(time.RFC3339),
		Reason:            r.Reason,
		Status:            string(r.Status),
		ReviewedBy:        r.ReviewedBy,
		ReviewedAt:        timePtrToString(r.ReviewedAt),
		CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}
