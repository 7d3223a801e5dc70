package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/config"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/keylock"
)

// maxOpenSpan bounds how long a session opened on a previous work date keeps
// accepting clock actions. Older sessions have to be resolved explicitly.
const maxOpenSpan = 24 * time.Hour

// Translator renders localized alert texts.
type Translator interface {
	T(ctx context.Context, messageID string, templateData ...map[string]any) string
}

// Deps groups the collaborators of the attendance service.
type Deps struct {
	Tx              database.Transactor
	Entries         attendance.TimeEntryRepository
	Regularizations attendance.RegularizationRepository
	Organizations   organization.OrganizationRepository
	Employees       employee.EmployeeRepository
	Resolver        schedule.Resolver
	Notifier        notification.Service
	Translator      Translator
	Locks           *keylock.KeyLock
	Config          config.AttendanceConfig
	Now             func() time.Time
}

type attendanceServiceImpl struct {
	tx           database.Transactor
	entryRepo    attendance.TimeEntryRepository
	regRepo      attendance.RegularizationRepository
	orgRepo      organization.OrganizationRepository
	employeeRepo employee.EmployeeRepository
	resolver     schedule.Resolver
	notifier     notification.Service
	translator   Translator
	locks        *keylock.KeyLock
	cfg          config.AttendanceConfig
	now          func() time.Time
}

func NewAttendanceService(deps Deps) attendance.AttendanceService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Locks == nil {
		deps.Locks = keylock.New()
	}
	return &attendanceServiceImpl{
		tx:           deps.Tx,
		entryRepo:    deps.Entries,
		regRepo:      deps.Regularizations,
		orgRepo:      deps.Organizations,
		employeeRepo: deps.Employees,
		resolver:     deps.Resolver,
		notifier:     deps.Notifier,
		translator:   deps.Translator,
		locks:        deps.Locks,
		cfg:          deps.Config,
		now:          deps.Now,
	}
}

// openSession points at a session that is still open.
type openSession struct {
	entryID string
	start   time.Time
}

// currentDay is the employee-day clock actions apply to.
type currentDay struct {
	org        organization.Organization
	employeeID string
	now        time.Time
	today      time.Time
	workDate   time.Time
	entries    []attendance.TimeEntry
	state      attendance.DayState
	// stale is an open session on an earlier work date, past maxOpenSpan.
	stale *openSession
}

// loadCurrentDay picks today's entries, or the previous work date when its
// session is still open and started less than maxOpenSpan ago. Any other open
// session on the previous work date is reported as stale.
func (s *attendanceServiceImpl) loadCurrentDay(ctx context.Context, org organization.Organization, employeeID string, now time.Time) (currentDay, error) {
	today := schedule.DateOf(now.In(org.Location()))
	d := currentDay{org: org, employeeID: employeeID, now: now, today: today, workDate: today}

	entries, err := s.entryRepo.ListByWorkDate(ctx, employeeID, today)
	if err != nil {
		return currentDay{}, err
	}
	d.entries = entries
	d.state = attendance.Replay(entries, now)

	prev, err := s.entryRepo.LastWorkDateBefore(ctx, employeeID, today)
	if errors.Is(err, attendance.ErrEntryNotFound) {
		return d, nil
	}
	if err != nil {
		return currentDay{}, err
	}
	prevEntries, err := s.entryRepo.ListByWorkDate(ctx, employeeID, prev)
	if err != nil {
		return currentDay{}, err
	}
	prevState := attendance.Replay(prevEntries, now)
	if !prevState.IsOpen() {
		return d, nil
	}
	if !d.state.IsOpen() && now.Sub(*prevState.OpenSessionStart) < maxOpenSpan {
		d.workDate = prev
		d.entries = prevEntries
		d.state = prevState
		return d, nil
	}
	d.stale = &openSession{entryID: prevState.OpenClockInEntryID, start: *prevState.OpenSessionStart}
	return d, nil
}

// ClockIn implements attendance.AttendanceService.
func (s *attendanceServiceImpl) ClockIn(ctx context.Context, actor user.Actor, req attendance.ClockActionRequest) (attendance.ClockActionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockActionResponse{}, err
	}
	return s.record(ctx, actor, attendance.EntryClockIn, &req.Location, req.ProjectID, req.Task, func(st attendance.DayState) error {
		if st.IsOpen() {
			return attendance.ErrAlreadyClockedIn
		}
		return nil
	})
}

// StartBreak implements attendance.AttendanceService.
func (s *attendanceServiceImpl) StartBreak(ctx context.Context, actor user.Actor, req attendance.ClockActionRequest) (attendance.ClockActionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockActionResponse{}, err
	}
	return s.record(ctx, actor, attendance.EntryBreakStart, &req.Location, nil, nil, func(st attendance.DayState) error {
		switch st.Status {
		case attendance.StatusClockedOut:
			return attendance.ErrNotClockedIn
		case attendance.StatusOnBreak:
			return attendance.ErrAlreadyOnBreak
		}
		return nil
	})
}

// EndBreak implements attendance.AttendanceService.
func (s *attendanceServiceImpl) EndBreak(ctx context.Context, actor user.Actor, req attendance.ClockActionRequest) (attendance.ClockActionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockActionResponse{}, err
	}
	return s.record(ctx, actor, attendance.EntryBreakEnd, &req.Location, nil, nil, func(st attendance.DayState) error {
		switch st.Status {
		case attendance.StatusClockedOut:
			return attendance.ErrNotClockedIn
		case attendance.StatusClockedIn:
			return attendance.ErrNotOnBreak
		}
		return nil
	})
}

// ClockOut implements attendance.AttendanceService. Clocking out during a break
// closes the break too.
func (s *attendanceServiceImpl) ClockOut(ctx context.Context, actor user.Actor, req attendance.ClockActionRequest) (attendance.ClockActionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockActionResponse{}, err
	}
	return s.record(ctx, actor, attendance.EntryClockOut, &req.Location, nil, nil, requireOpen)
}

// ChangeProject implements attendance.AttendanceService. A change during a break
// stays pending until the break ends.
func (s *attendanceServiceImpl) ChangeProject(ctx context.Context, actor user.Actor, req attendance.ChangeProjectRequest) (attendance.ClockActionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockActionResponse{}, err
	}
	return s.record(ctx, actor, attendance.EntryProjectSwitch, nil, req.ProjectID, req.Task, requireOpen)
}

func requireOpen(st attendance.DayState) error {
	if !st.IsOpen() {
		return attendance.ErrNotClockedIn
	}
	return nil
}

// record appends one clock entry after validating the transition against the
// replayed day. Mutations of one employee are serialized in process and in the
// database.
func (s *attendanceServiceImpl) record(
	ctx context.Context,
	actor user.Actor,
	entryType attendance.EntryType,
	location *attendance.Location,
	projectID, task *string,
	allowed func(attendance.DayState) error,
) (attendance.ClockActionResponse, error) {
	if err := actor.RequireEmployee(); err != nil {
		return attendance.ClockActionResponse{}, err
	}
	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return attendance.ClockActionResponse{}, err
	}

	var geo geoResult
	if location != nil {
		geo = s.checkLocation(ctx, org.ID, *location)
	}

	unlock := s.locks.Lock(actor.EmployeeID)
	defer unlock()

	var (
		created attendance.TimeEntry
		day     currentDay
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.entryRepo.LockEmployee(ctx, actor.EmployeeID); err != nil {
			return err
		}

		now := s.now().UTC()
		var err error
		day, err = s.loadCurrentDay(ctx, org, actor.EmployeeID, now)
		if err != nil {
			return err
		}
		if err := allowed(day.state); err != nil {
			return err
		}

		entry := attendance.TimeEntry{
			OrganizationID:      org.ID,
			EmployeeID:          actor.EmployeeID,
			WorkDate:            day.workDate,
			EntryType:           entryType,
			Timestamp:           now,
			ProjectID:           projectID,
			Task:                task,
			IsWithinAllowedArea: geo.within,
			RequiresReview:      geo.requiresReview,
			CreatedBy:           actor.UserID,
		}
		if location != nil {
			entry.Latitude = location.Latitude
			entry.Longitude = location.Longitude
			entry.Accuracy = location.Accuracy
		}

		created, err = s.entryRepo.Create(ctx, entry)
		if err != nil {
			return fmt.Errorf("failed to create time entry: %w", err)
		}
		day.entries = append(day.entries, created)
		day.state = attendance.Replay(day.entries, now)
		return nil
	})
	if err != nil {
		return attendance.ClockActionResponse{}, err
	}

	slog.Info("time entry recorded",
		"employee_id", actor.EmployeeID,
		"entry_type", entryType,
		"work_date", day.workDate.Format("2006-01-02"),
		"requires_review", created.RequiresReview,
	)

	status, alerts, err := s.buildStatus(ctx, day, geo.alerts)
	if err != nil {
		return attendance.ClockActionResponse{}, err
	}
	s.publish(ctx, actor.UserID, status, alerts)

	return attendance.ClockActionResponse{
		Entry:     attendance.NewEntryResponse(created),
		Status:    status.Status,
		IsOnBreak: status.IsOnBreak,
		Alerts:    status.Alerts,
		Summary:   status.Summary,
	}, nil
}

// GetStatus implements attendance.AttendanceService.
func (s *attendanceServiceImpl) GetStatus(ctx context.Context, actor user.Actor) (attendance.StatusResponse, error) {
	if err := actor.RequireEmployee(); err != nil {
		return attendance.StatusResponse{}, err
	}
	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return attendance.StatusResponse{}, err
	}
	day, err := s.loadCurrentDay(ctx, org, actor.EmployeeID, s.now().UTC())
	if err != nil {
		return attendance.StatusResponse{}, err
	}
	status, _, err := s.buildStatus(ctx, day, nil)
	return status, err
}

// buildStatus resolves the schedule of the day and computes its alerts. extra
// alerts are prepended and filtered like the rest.
func (s *attendanceServiceImpl) buildStatus(ctx context.Context, day currentDay, extra []notification.Alert) (attendance.StatusResponse, []notification.Alert, error) {
	eff, err := s.resolver.Resolve(ctx, day.employeeID, day.workDate)
	if err != nil {
		return attendance.StatusResponse{}, nil, err
	}
	summary := attendance.Summarize(day.workDate, day.entries, eff, day.now)

	alerts := slices.Concat(extra, s.dayAlerts(ctx, day, summary))
	alerts, err = s.notifier.FilterDismissed(ctx, day.employeeID, alerts)
	if err != nil {
		return attendance.StatusResponse{}, nil, err
	}

	st := summary.State
	resp := attendance.StatusResponse{
		Status:          string(st.Status),
		IsOnBreak:       st.IsOnBreak(),
		ActiveProjectID: st.ActiveProjectID,
		ActiveTask:      st.ActiveTask,
		Summary:         attendance.NewDailySummaryResponse(summary),
		Alerts:          notification.NewAlertResponses(alerts),
	}
	if st.OpenSessionStart != nil {
		start := st.OpenSessionStart.UTC().Format(time.RFC3339)
		resp.OpenSessionStart = &start
	}
	if p := st.PendingProjectChange; p != nil {
		resp.PendingProjectChange = &attendance.PendingProjectChangeResponse{
			ProjectID:   p.ProjectID,
			Task:        p.Task,
			RequestedAt: p.RequestedAt.UTC().Format(time.RFC3339),
		}
	}
	return resp, alerts, nil
}

// publish pushes the new status and every warning to the user's live stream.
func (s *attendanceServiceImpl) publish(ctx context.Context, userID string, status attendance.StatusResponse, alerts []notification.Alert) {
	now := s.now().UTC()
	if err := s.notifier.Notify(ctx, notification.Event{
		RecipientID: userID,
		Type:        notification.EventAttendanceStatus,
		Data:        status,
		CreatedAt:   now,
	}); err != nil {
		slog.Warn("failed to publish attendance status", "user_id", userID, "error", err)
	}

	for _, a := range alerts {
		if a.Severity == notification.SeverityInfo {
			continue
		}
		if err := s.notifier.Notify(ctx, notification.Event{
			RecipientID: userID,
			Type:        notification.EventAttendanceAlert,
			Data:        notification.NewAlertResponses([]notification.Alert{a})[0],
			CreatedAt:   now,
		}); err != nil {
			slog.Warn("failed to publish attendance alert", "user_id", userID, "kind", a.Kind, "error", err)
		}
	}
}

// ListEntries implements attendance.AttendanceService. Managers also see
// cancelled entries and project switches.
func (s *attendanceServiceImpl) ListEntries(ctx context.Context, actor user.Actor, employeeID string, date time.Time) ([]attendance.EntryResponse, error) {
	employeeID, err := s.authorize(ctx, actor, employeeID)
	if err != nil {
		return nil, err
	}
	// A zero date means today in the organization's time zone.
	if date.IsZero() {
		org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
		if err != nil {
			return nil, err
		}
		date = s.now().In(org.Location())
	}
	entries, err := s.entryRepo.ListByWorkDate(ctx, employeeID, schedule.DateOf(date))
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() {
		entries = attendance.VisibleEntries(entries)
	}

	out := make([]attendance.EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, attendance.NewEntryResponse(e))
	}
	return out, nil
}

// Summaries implements attendance.AttendanceService.
func (s *attendanceServiceImpl) Summaries(ctx context.Context, organizationID, employeeID string, from, to time.Time) ([]attendance.DailySummary, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID, organizationID); err != nil {
		return nil, err
	}
	from, to = schedule.DateOf(from), schedule.DateOf(to)

	effs, err := s.resolver.ResolveRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	entries, err := s.entryRepo.ListByWorkDateRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[time.Time][]attendance.TimeEntry)
	for _, e := range entries {
		d := schedule.DateOf(e.WorkDate)
		byDate[d] = append(byDate[d], e)
	}

	now := s.now().UTC()
	out := make([]attendance.DailySummary, 0, len(effs))
	for _, eff := range effs {
		out = append(out, attendance.Summarize(eff.Date, byDate[schedule.DateOf(eff.Date)], eff, now))
	}
	return out, nil
}

// authorize defaults employeeID to the actor and lets managers read anyone in
// their organization.
func (s *attendanceServiceImpl) authorize(ctx context.Context, actor user.Actor, employeeID string) (string, error) {
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID == "" {
		return "", user.ErrEmployeeProfileRequired
	}
	if employeeID == actor.EmployeeID {
		return employeeID, nil
	}
	if !actor.IsManager() {
		return "", user.ErrManagerAccessRequired
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID, actor.OrganizationID); err != nil {
		return "", err
	}
	return employeeID, nil
}

// RemindExcessiveSessions implements attendance.AttendanceService.
func (s *attendanceServiceImpl) RemindExcessiveSessions(ctx context.Context) (int, error) {
	now := s.now().UTC()
	refs, err := s.entryRepo.ListOpenSessions(ctx, schedule.DateOf(now).AddDate(0, 0, -2))
	if err != nil {
		return 0, err
	}

	orgs := make(map[string]organization.Organization)
	var (
		sent int
		errs []error
	)
	for _, ref := range refs {
		org, ok := orgs[ref.OrganizationID]
		if !ok {
			org, err = s.orgRepo.GetByID(ctx, ref.OrganizationID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			orgs[org.ID] = org
		}

		ok, err := s.remind(ctx, org, ref, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("employee %s: %w", ref.EmployeeID, err))
			continue
		}
		if ok {
			sent++
		}
	}

	if len(errs) > 0 {
		slog.Warn("some excessive session reminders failed", "failed", len(errs), "sent", sent)
	}
	return sent, errors.Join(errs...)
}

func (s *attendanceServiceImpl) remind(ctx context.Context, org organization.Organization, ref attendance.OpenSessionRef, now time.Time) (bool, error) {
	entries, err := s.entryRepo.ListByWorkDate(ctx, ref.EmployeeID, ref.WorkDate)
	if err != nil {
		return false, err
	}
	state := attendance.Replay(entries, now)
	if !state.IsOpen() {
		return false, nil
	}
	eff, err := s.resolver.Resolve(ctx, ref.EmployeeID, ref.WorkDate)
	if err != nil {
		return false, err
	}
	alert, ok := s.excessiveAlert(ctx, org, eff, state, now)
	if !ok {
		return false, nil
	}

	emp, err := s.employeeRepo.GetByID(ctx, ref.EmployeeID, org.ID)
	if err != nil {
		return false, err
	}
	if emp.UserID == nil {
		return false, nil
	}
	kept, err := s.notifier.FilterDismissed(ctx, emp.ID, []notification.Alert{alert})
	if err != nil || len(kept) == 0 {
		return false, err
	}

	err = s.notifier.Notify(ctx, notification.Event{
		RecipientID: *emp.UserID,
		Type:        notification.EventAttendanceAlert,
		Data:        notification.NewAlertResponses(kept)[0],
		CreatedAt:   now,
	})
	return err == nil, err
}
