package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/sse"
)

type nopTx struct{}

func (nopTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }
func (c *testClock) set(s string)   { c.t = mustTime(s) }
func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// memEntries is shared by concurrent clock actions in tests, so every method
// holds mu.
type memEntries struct {
	mu    sync.Mutex
	items []attendance.TimeEntry
	locks int
}

func (m *memEntries) Create(ctx context.Context, e attendance.TimeEntry) (attendance.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = fmt.Sprintf("te-%d", len(m.items)+1)
	e.WorkDate = schedule.DateOf(e.WorkDate)
	e.CreatedAt = time.Unix(int64(len(m.items)), 0)
	m.items = append(m.items, e)
	return e, nil
}

func (m *memEntries) GetByID(ctx context.Context, id, organizationID string) (attendance.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.items {
		if e.ID == id && e.OrganizationID == organizationID {
			return e, nil
		}
	}
	return attendance.TimeEntry{}, attendance.ErrEntryNotFound
}

func (m *memEntries) ListByWorkDate(ctx context.Context, employeeID string, workDate time.Time) ([]attendance.TimeEntry, error) {
	return m.ListByWorkDateRange(ctx, employeeID, workDate, workDate)
}

func (m *memEntries) ListByWorkDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from, to = schedule.DateOf(from), schedule.DateOf(to)
	var out []attendance.TimeEntry
	for _, e := range m.items {
		if e.EmployeeID == employeeID && !e.WorkDate.Before(from) && !e.WorkDate.After(to) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *memEntries) LastWorkDateBefore(ctx context.Context, employeeID string, before time.Time) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last time.Time
	for _, e := range m.items {
		if e.EmployeeID == employeeID && e.WorkDate.Before(schedule.DateOf(before)) && e.WorkDate.After(last) {
			last = e.WorkDate
		}
	}
	if last.IsZero() {
		return time.Time{}, attendance.ErrEntryNotFound
	}
	return last, nil
}

func (m *memEntries) ListOpenSessions(ctx context.Context, since time.Time) ([]attendance.OpenSessionRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	days := map[attendance.OpenSessionRef][]attendance.TimeEntry{}
	for _, e := range m.items {
		if e.WorkDate.Before(schedule.DateOf(since)) {
			continue
		}
		ref := attendance.OpenSessionRef{OrganizationID: e.OrganizationID, EmployeeID: e.EmployeeID, WorkDate: e.WorkDate}
		days[ref] = append(days[ref], e)
	}
	var out []attendance.OpenSessionRef
	for ref, entries := range days {
		if attendance.Replay(entries, time.Time{}).IsOpen() {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (m *memEntries) Cancel(ctx context.Context, id, reason, cancelledBy string, auditNote *string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID != id {
			continue
		}
		if m.items[i].IsCancelled {
			return attendance.ErrEntryAlreadyCancelled
		}
		m.items[i].IsCancelled = true
		m.items[i].CancellationReason = &reason
		m.items[i].CancelledBy = &cancelledBy
		m.items[i].CancelledAt = &at
		return nil
	}
	return attendance.ErrEntryNotFound
}

func (m *memEntries) LockEmployee(ctx context.Context, employeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks++
	return nil
}

type memRegularizations struct {
	items []attendance.RegularizationRequest
}

func (m *memRegularizations) Create(ctx context.Context, r attendance.RegularizationRequest) (attendance.RegularizationRequest, error) {
	r.ID = fmt.Sprintf("reg-%d", len(m.items)+1)
	m.items = append(m.items, r)
	return r, nil
}

func (m *memRegularizations) GetByID(ctx context.Context, id, organizationID string) (attendance.RegularizationRequest, error) {
	for _, r := range m.items {
		if r.ID == id && r.OrganizationID == organizationID {
			return r, nil
		}
	}
	return attendance.RegularizationRequest{}, attendance.ErrRegularizationNotFound
}

func (m *memRegularizations) List(ctx context.Context, organizationID string, status *attendance.RegularizationStatus) ([]attendance.RegularizationRequest, error) {
	var out []attendance.RegularizationRequest
	for _, r := range m.items {
		if r.OrganizationID == organizationID && (status == nil || r.Status == *status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRegularizations) HasPending(ctx context.Context, entryID string) (bool, error) {
	for _, r := range m.items {
		if r.EntryID == entryID && r.Status == attendance.RegularizationPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRegularizations) UpdateStatus(ctx context.Context, id string, status attendance.RegularizationStatus, reviewedBy string, at time.Time) error {
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].Status == attendance.RegularizationPending {
			m.items[i].Status = status
			m.items[i].ReviewedBy = &reviewedBy
			m.items[i].ReviewedAt = &at
			return nil
		}
	}
	return attendance.ErrRegularizationHandled
}

type fakeOrgs struct {
	org      organization.Organization
	areas    []organization.WorkArea
	areasErr error
}

func (f *fakeOrgs) Create(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	return org, nil
}

func (f *fakeOrgs) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	if id != f.org.ID {
		return organization.Organization{}, organization.ErrOrganizationNotFound
	}
	return f.org, nil
}

func (f *fakeOrgs) List(ctx context.Context) ([]organization.Organization, error) {
	return []organization.Organization{f.org}, nil
}

func (f *fakeOrgs) CreateWorkArea(ctx context.Context, area organization.WorkArea) (organization.WorkArea, error) {
	f.areas = append(f.areas, area)
	return area, nil
}

func (f *fakeOrgs) ListWorkAreas(ctx context.Context, organizationID string) ([]organization.WorkArea, error) {
	return f.areas, f.areasErr
}

type memEmployees struct {
	employee.EmployeeRepository
	items map[string]employee.Employee
}

func (m *memEmployees) GetByID(ctx context.Context, id, organizationID string) (employee.Employee, error) {
	e, ok := m.items[id]
	if !ok || e.OrganizationID != organizationID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// fakeResolver expects the same journey every day, or nothing when unassigned.
type fakeResolver struct {
	expected   int
	unassigned bool
}

func (f *fakeResolver) Resolve(ctx context.Context, employeeID string, date time.Time) (schedule.EffectiveSchedule, error) {
	day := schedule.DateOf(date)
	if f.unassigned {
		return schedule.EffectiveSchedule{Source: schedule.SourceNoAssignment, Date: day}, nil
	}
	return schedule.EffectiveSchedule{
		Source:          schedule.SourceTemplate,
		Date:            day,
		IsWorkingDay:    f.expected > 0,
		ExpectedMinutes: f.expected,
	}, nil
}

func (f *fakeResolver) ResolveRange(ctx context.Context, employeeID string, from, to time.Time) ([]schedule.EffectiveSchedule, error) {
	var out []schedule.EffectiveSchedule
	for d := schedule.DateOf(from); !d.After(schedule.DateOf(to)); d = d.AddDate(0, 0, 1) {
		eff, _ := f.Resolve(ctx, employeeID, d)
		out = append(out, eff)
	}
	return out, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	events    []notification.Event
	dismissed map[string]bool
}

func (f *fakeNotifier) Notify(ctx context.Context, event notification.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeNotifier) Dismiss(ctx context.Context, actor user.Actor, req notification.DismissAlertRequest) error {
	if f.dismissed == nil {
		f.dismissed = map[string]bool{}
	}
	f.dismissed[req.Kind+"|"+req.ReferenceID] = true
	return nil
}

func (f *fakeNotifier) FilterDismissed(ctx context.Context, employeeID string, alerts []notification.Alert) ([]notification.Alert, error) {
	out := make([]notification.Alert, 0, len(alerts))
	for _, a := range alerts {
		if f.dismissed[string(a.Kind)+"|"+a.ReferenceID] {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeNotifier) Subscribe(userID string) (chan sse.Event, func()) {
	return make(chan sse.Event), func() {}
}

func (f *fakeNotifier) Stop() {}

func (f *fakeNotifier) count(t notification.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

var errAreasDown = errors.New("work areas unavailable")
