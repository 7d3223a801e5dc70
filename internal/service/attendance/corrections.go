package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
)

// pendingID stands in for an entry that is replayed before it is stored.
const pendingID = "pending"

// CancelEntry implements attendance.AttendanceService.
func (s *attendanceServiceImpl) CancelEntry(ctx context.Context, actor user.Actor, entryID string, req attendance.CancelEntryRequest) (attendance.EntryResponse, error) {
	if !actor.IsManager() {
		return attendance.EntryResponse{}, user.ErrManagerAccessRequired
	}
	if err := req.Validate(); err != nil {
		return attendance.EntryResponse{}, err
	}

	var entry attendance.TimeEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.entryRepo.GetByID(ctx, entryID, actor.OrganizationID)
		if err != nil {
			return err
		}
		if entry.IsCancelled {
			return attendance.ErrEntryAlreadyCancelled
		}
		if err := s.entryRepo.LockEmployee(ctx, entry.EmployeeID); err != nil {
			return err
		}
		now := s.now().UTC()
		if err := s.entryRepo.Cancel(ctx, entry.ID, req.Reason, actor.UserID, req.AuditNote, now); err != nil {
			return err
		}
		markCancelled(&entry, req.Reason, actor.UserID, req.AuditNote, now)
		return nil
	})
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	slog.Info("time entry cancelled", "entry_id", entry.ID, "employee_id", entry.EmployeeID, "cancelled_by", actor.UserID)
	resp := attendance.NewEntryResponse(entry)
	s.notifyEmployee(ctx, entry.OrganizationID, entry.EmployeeID, resp)
	return resp, nil
}

// RectifyEntry implements attendance.AttendanceService. The manual entry is
// accepted only if replaying the day with it adds no anomaly.
func (s *attendanceServiceImpl) RectifyEntry(ctx context.Context, actor user.Actor, employeeID string, req attendance.RectifyEntryRequest) (attendance.EntryResponse, error) {
	if !actor.IsManager() {
		return attendance.EntryResponse{}, user.ErrManagerAccessRequired
	}
	if err := req.Validate(); err != nil {
		return attendance.EntryResponse{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID, actor.OrganizationID); err != nil {
		return attendance.EntryResponse{}, err
	}
	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	now := s.now().UTC()
	ts := req.ParsedTimestamp
	if ts.After(now) {
		return attendance.EntryResponse{}, attendance.ErrInvalidCorrection
	}
	entryType := attendance.EntryType(req.EntryType)
	reason := req.Reason

	var created attendance.TimeEntry
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.entryRepo.LockEmployee(ctx, employeeID); err != nil {
			return err
		}
		workDate, entries, err := s.rectifyTarget(ctx, org, employeeID, entryType, ts)
		if err != nil {
			return err
		}

		candidate := attendance.TimeEntry{
			ID:             pendingID,
			OrganizationID: org.ID,
			EmployeeID:     employeeID,
			WorkDate:       workDate,
			EntryType:      entryType,
			Timestamp:      ts,
			ProjectID:      req.ProjectID,
			Task:           req.Task,
			IsManual:       true,
			AuditNote:      &reason,
			CreatedBy:      actor.UserID,
			CreatedAt:      now,
		}
		if !keepsDayConsistent(entries, candidate, now) {
			return attendance.ErrInvalidCorrection
		}

		candidate.ID = ""
		created, err = s.entryRepo.Create(ctx, candidate)
		return err
	})
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	slog.Info("manual time entry added",
		"entry_id", created.ID,
		"employee_id", employeeID,
		"entry_type", entryType,
		"created_by", actor.UserID,
	)
	resp := attendance.NewEntryResponse(created)
	s.notifyEmployee(ctx, org.ID, employeeID, resp)
	return resp, nil
}

// rectifyTarget finds the work date a manual entry belongs to. Anything but a
// CLOCK_IN joins the session already running at that instant, which may have
// started on the previous local date.
func (s *attendanceServiceImpl) rectifyTarget(ctx context.Context, org organization.Organization, employeeID string, entryType attendance.EntryType, ts time.Time) (time.Time, []attendance.TimeEntry, error) {
	date := schedule.DateOf(ts.In(org.Location()))
	entries, err := s.entryRepo.ListByWorkDate(ctx, employeeID, date)
	if err != nil {
		return time.Time{}, nil, err
	}
	if entryType == attendance.EntryClockIn || hasClockInBefore(entries, ts) {
		return date, entries, nil
	}

	prev := date.AddDate(0, 0, -1)
	prevEntries, err := s.entryRepo.ListByWorkDate(ctx, employeeID, prev)
	if err != nil {
		return time.Time{}, nil, err
	}
	if hasClockInBefore(prevEntries, ts) {
		return prev, prevEntries, nil
	}
	return date, entries, nil
}

func hasClockInBefore(entries []attendance.TimeEntry, ts time.Time) bool {
	for _, e := range attendance.ActiveEntries(entries) {
		if e.EntryType == attendance.EntryClockIn && !e.Timestamp.After(ts) {
			return true
		}
	}
	return false
}

func keepsDayConsistent(entries []attendance.TimeEntry, candidate attendance.TimeEntry, now time.Time) bool {
	before := attendance.Replay(entries, now)
	after := attendance.Replay(append(append([]attendance.TimeEntry{}, entries...), candidate), now)
	return len(after.Anomalies) <= len(before.Anomalies)
}

// ResolveOpenSession implements attendance.AttendanceService.
func (s *attendanceServiceImpl) ResolveOpenSession(ctx context.Context, actor user.Actor, req attendance.ResolveOpenSessionRequest) (attendance.ResolveOpenSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ResolveOpenSessionResponse{}, err
	}

	clockIn, err := s.entryRepo.GetByID(ctx, req.EntryID, actor.OrganizationID)
	if err != nil {
		return attendance.ResolveOpenSessionResponse{}, err
	}
	if clockIn.EmployeeID != actor.EmployeeID && !actor.IsManager() {
		return attendance.ResolveOpenSessionResponse{}, attendance.ErrUnauthorized
	}
	if clockIn.EntryType != attendance.EntryClockIn || clockIn.IsCancelled {
		return attendance.ResolveOpenSessionResponse{}, attendance.ErrNoOpenSession
	}

	resp := attendance.ResolveOpenSessionResponse{Action: req.Action}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.entryRepo.LockEmployee(ctx, clockIn.EmployeeID); err != nil {
			return err
		}
		now := s.now().UTC()
		entries, err := s.entryRepo.ListByWorkDate(ctx, clockIn.EmployeeID, clockIn.WorkDate)
		if err != nil {
			return err
		}
		session, next, open := sessionOf(entries, clockIn.ID, now)
		if !open {
			return attendance.ErrNoOpenSession
		}

		switch attendance.ResolutionAction(req.Action) {
		case attendance.ResolveCloseAndCancel:
			for _, e := range session {
				if err := s.entryRepo.Cancel(ctx, e.ID, req.Reason, actor.UserID, req.AuditNote, now); err != nil {
					return err
				}
				markCancelled(&e, req.Reason, actor.UserID, req.AuditNote, now)
				resp.CancelledEntries = append(resp.CancelledEntries, attendance.NewEntryResponse(e))
			}

		case attendance.ResolveRegularize:
			out := req.ParsedClockOut
			if !out.After(clockIn.Timestamp) || out.After(now) || (next != nil && !out.Before(*next)) {
				return attendance.ErrInvalidResolution
			}
			pending, err := s.regRepo.HasPending(ctx, clockIn.ID)
			if err != nil {
				return err
			}
			if pending {
				return attendance.ErrRegularizationPending
			}
			reg, err := s.regRepo.Create(ctx, attendance.RegularizationRequest{
				OrganizationID:    clockIn.OrganizationID,
				EmployeeID:        clockIn.EmployeeID,
				EntryID:           clockIn.ID,
				RequestedClockOut: out,
				Reason:            req.Reason,
				Status:            attendance.RegularizationPending,
			})
			if err != nil {
				return err
			}
			r := attendance.NewRegularizationResponse(reg)
			resp.Regularization = &r
		}
		return nil
	})
	if err != nil {
		return attendance.ResolveOpenSessionResponse{}, err
	}

	slog.Info("open session resolved",
		"entry_id", clockIn.ID,
		"employee_id", clockIn.EmployeeID,
		"action", req.Action,
		"resolved_by", actor.UserID,
	)
	return resp, nil
}

// sessionOf returns the active entries of the session opened by clockInID, the
// start of the following session if any, and whether the session lacks a
// CLOCK_OUT.
func sessionOf(entries []attendance.TimeEntry, clockInID string, now time.Time) ([]attendance.TimeEntry, *time.Time, bool) {
	state := attendance.Replay(entries, now)
	open := false
	for _, ws := range state.Sessions {
		if ws.ClockInEntryID == clockInID {
			open = ws.End == nil
			break
		}
	}

	var (
		session []attendance.TimeEntry
		next    *time.Time
		inside  bool
	)
	for _, e := range attendance.ActiveEntries(entries) {
		if e.ID == clockInID {
			inside = true
			session = append(session, e)
			continue
		}
		if !inside {
			continue
		}
		if e.EntryType == attendance.EntryClockIn {
			ts := e.Timestamp
			next = &ts
			break
		}
		session = append(session, e)
	}
	return session, next, open
}

// ListRegularizations implements attendance.AttendanceService. Employees only
// see their own requests.
func (s *attendanceServiceImpl) ListRegularizations(ctx context.Context, actor user.Actor, status *attendance.RegularizationStatus) ([]attendance.RegularizationResponse, error) {
	if !actor.IsManager() {
		if err := actor.RequireEmployee(); err != nil {
			return nil, err
		}
	}
	regs, err := s.regRepo.List(ctx, actor.OrganizationID, status)
	if err != nil {
		return nil, err
	}

	out := make([]attendance.RegularizationResponse, 0, len(regs))
	for _, r := range regs {
		if !actor.IsManager() && r.EmployeeID != actor.EmployeeID {
			continue
		}
		out = append(out, attendance.NewRegularizationResponse(r))
	}
	return out, nil
}

// ApproveRegularization implements attendance.AttendanceService. Approval adds
// the requested CLOCK_OUT as a manual entry.
func (s *attendanceServiceImpl) ApproveRegularization(ctx context.Context, actor user.Actor, id string) (attendance.RegularizationResponse, error) {
	return s.review(ctx, actor, id, attendance.RegularizationApproved)
}

// RejectRegularization implements attendance.AttendanceService.
func (s *attendanceServiceImpl) RejectRegularization(ctx context.Context, actor user.Actor, id string) (attendance.RegularizationResponse, error) {
	return s.review(ctx, actor, id, attendance.RegularizationRejected)
}

func (s *attendanceServiceImpl) review(ctx context.Context, actor user.Actor, id string, decision attendance.RegularizationStatus) (attendance.RegularizationResponse, error) {
	if !actor.IsManager() {
		return attendance.RegularizationResponse{}, user.ErrManagerAccessRequired
	}

	var reg attendance.RegularizationRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = s.regRepo.GetByID(ctx, id, actor.OrganizationID)
		if err != nil {
			return err
		}
		if reg.Status != attendance.RegularizationPending {
			return attendance.ErrRegularizationHandled
		}
		if err := s.entryRepo.LockEmployee(ctx, reg.EmployeeID); err != nil {
			return err
		}
		now := s.now().UTC()

		if decision == attendance.RegularizationApproved {
			if err := s.applyRegularization(ctx, actor, reg, now); err != nil {
				return err
			}
		}
		if err := s.regRepo.UpdateStatus(ctx, reg.ID, decision, actor.UserID, now); err != nil {
			return err
		}
		reg.Status = decision
		reg.ReviewedBy = &actor.UserID
		reg.ReviewedAt = &now
		return nil
	})
	if err != nil {
		return attendance.RegularizationResponse{}, err
	}

	slog.Info("regularization reviewed", "regularization_id", reg.ID, "status", decision, "reviewed_by", actor.UserID)
	resp := attendance.NewRegularizationResponse(reg)
	s.notifyEmployee(ctx, reg.OrganizationID, reg.EmployeeID, resp)
	return resp, nil
}

func (s *attendanceServiceImpl) applyRegularization(ctx context.Context, actor user.Actor, reg attendance.RegularizationRequest, now time.Time) error {
	clockIn, err := s.entryRepo.GetByID(ctx, reg.EntryID, reg.OrganizationID)
	if err != nil {
		return err
	}
	entries, err := s.entryRepo.ListByWorkDate(ctx, reg.EmployeeID, clockIn.WorkDate)
	if err != nil {
		return err
	}
	if _, _, open := sessionOf(entries, clockIn.ID, now); !open {
		return attendance.ErrNoOpenSession
	}

	note := fmt.Sprintf("regularization %s: %s", reg.ID, reg.Reason)
	candidate := attendance.TimeEntry{
		ID:             pendingID,
		OrganizationID: reg.OrganizationID,
		EmployeeID:     reg.EmployeeID,
		WorkDate:       clockIn.WorkDate,
		EntryType:      attendance.EntryClockOut,
		Timestamp:      reg.RequestedClockOut,
		IsManual:       true,
		AuditNote:      &note,
		CreatedBy:      actor.UserID,
		CreatedAt:      now,
	}
	if !keepsDayConsistent(entries, candidate, now) {
		return attendance.ErrInvalidCorrection
	}
	candidate.ID = ""
	_, err = s.entryRepo.Create(ctx, candidate)
	return err
}

func markCancelled(e *attendance.TimeEntry, reason, by string, note *string, at time.Time) {
	e.IsCancelled = true
	e.CancellationReason = &reason
	e.CancelledBy = &by
	e.CancelledAt = &at
	if note != nil {
		e.AuditNote = note
	}
}

// notifyEmployee tells the affected employee that their day changed.
func (s *attendanceServiceImpl) notifyEmployee(ctx context.Context, organizationID, employeeID string, data interface{}) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID, organizationID)
	if err != nil || emp.UserID == nil {
		return
	}
	if err := s.notifier.Notify(ctx, notification.Event{
		RecipientID: *emp.UserID,
		Type:        notification.EventAttendanceStatus,
		Data:        data,
		CreatedAt:   s.now().UTC(),
	}); err != nil {
		slog.Warn("failed to notify employee", "employee_id", employeeID, "error", err)
	}
}
