package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
)

type nopTx struct{}

func (nopTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type fakeTemplateRepo struct {
	templates map[string]schedule.ScheduleTemplate
	seq       int
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: map[string]schedule.ScheduleTemplate{}}
}

func (f *fakeTemplateRepo) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeTemplateRepo) Create(ctx context.Context, t schedule.ScheduleTemplate) (schedule.ScheduleTemplate, error) {
	t.ID = f.nextID("tmpl")
	periods := t.Periods
	t.Periods = nil
	f.templates[t.ID] = t
	for _, p := range periods {
		p.TemplateID = t.ID
		if _, err := f.CreatePeriod(ctx, p); err != nil {
			return schedule.ScheduleTemplate{}, err
		}
	}
	return f.templates[t.ID], nil
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id, organizationID string) (schedule.ScheduleTemplate, error) {
	t, ok := f.templates[id]
	if !ok || t.OrganizationID != organizationID {
		return schedule.ScheduleTemplate{}, schedule.ErrTemplateNotFound
	}
	return t, nil
}

func (f *fakeTemplateRepo) List(ctx context.Context, organizationID string) ([]schedule.ScheduleTemplate, error) {
	var out []schedule.ScheduleTemplate
	for _, t := range f.templates {
		if t.OrganizationID == organizationID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTemplateRepo) ExistsByName(ctx context.Context, organizationID, name string) (bool, error) {
	for _, t := range f.templates {
		if t.OrganizationID == organizationID && strings.EqualFold(t.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, t schedule.ScheduleTemplate) error {
	cur, ok := f.templates[t.ID]
	if !ok {
		return schedule.ErrTemplateNotFound
	}
	t.Periods = cur.Periods
	f.templates[t.ID] = t
	return nil
}

func (f *fakeTemplateRepo) Delete(ctx context.Context, id, organizationID string) error {
	delete(f.templates, id)
	return nil
}

func (f *fakeTemplateRepo) CreatePeriod(ctx context.Context, p schedule.SchedulePeriod) (schedule.SchedulePeriod, error) {
	t, ok := f.templates[p.TemplateID]
	if !ok {
		return schedule.SchedulePeriod{}, schedule.ErrTemplateNotFound
	}
	p.ID = f.nextID("period")
	for i := range p.Patterns {
		p.Patterns[i].ID = f.nextID("pattern")
		p.Patterns[i].PeriodID = p.ID
	}
	t.Periods = append(t.Periods, p)
	f.templates[t.ID] = t
	return p, nil
}

func (f *fakeTemplateRepo) findPeriod(id string) (string, int, bool) {
	for tid, t := range f.templates {
		for i, p := range t.Periods {
			if p.ID == id {
				return tid, i, true
			}
		}
	}
	return "", 0, false
}

func (f *fakeTemplateRepo) GetPeriod(ctx context.Context, id, organizationID string) (schedule.SchedulePeriod, error) {
	tid, i, ok := f.findPeriod(id)
	if !ok || f.templates[tid].OrganizationID != organizationID {
		return schedule.SchedulePeriod{}, schedule.ErrPeriodNotFound
	}
	return f.templates[tid].Periods[i], nil
}

func (f *fakeTemplateRepo) UpdatePeriod(ctx context.Context, p schedule.SchedulePeriod) error {
	tid, i, ok := f.findPeriod(p.ID)
	if !ok {
		return schedule.ErrPeriodNotFound
	}
	f.templates[tid].Periods[i] = p
	return nil
}

func (f *fakeTemplateRepo) DeletePeriod(ctx context.Context, id string) error {
	tid, i, ok := f.findPeriod(id)
	if !ok {
		return schedule.ErrPeriodNotFound
	}
	t := f.templates[tid]
	t.Periods = append(t.Periods[:i], t.Periods[i+1:]...)
	f.templates[tid] = t
	return nil
}

func (f *fakeTemplateRepo) ReplacePattern(ctx context.Context, periodID string, pattern schedule.WorkDayPattern) (schedule.WorkDayPattern, error) {
	tid, i, ok := f.findPeriod(periodID)
	if !ok {
		return schedule.WorkDayPattern{}, schedule.ErrPeriodNotFound
	}
	pattern.ID = f.nextID("pattern")
	pattern.PeriodID = periodID
	p := &f.templates[tid].Periods[i]
	kept := p.Patterns[:0]
	for _, existing := range p.Patterns {
		if existing.DayOfWeek != pattern.DayOfWeek {
			kept = append(kept, existing)
		}
	}
	p.Patterns = append(kept, pattern)
	return pattern, nil
}

type fakeAssignmentRepo struct {
	assignments []schedule.TemplateAssignment
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, a schedule.TemplateAssignment) (schedule.TemplateAssignment, error) {
	a.ID = fmt.Sprintf("assign-%d", len(f.assignments)+1)
	f.assignments = append(f.assignments, a)
	return a, nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id, organizationID string) (schedule.TemplateAssignment, error) {
	for _, a := range f.assignments {
		if a.ID == id && a.OrganizationID == organizationID {
			return a, nil
		}
	}
	return schedule.TemplateAssignment{}, schedule.ErrAssignmentNotFound
}

func (f *fakeAssignmentRepo) ListByEmployee(ctx context.Context, employeeID, organizationID string) ([]schedule.TemplateAssignment, error) {
	var out []schedule.TemplateAssignment
	for _, a := range f.assignments {
		if a.EmployeeID == employeeID && a.OrganizationID == organizationID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) FindActive(ctx context.Context, employeeID string, date time.Time) (schedule.TemplateAssignment, error) {
	for _, a := range f.assignments {
		if a.EmployeeID == employeeID && a.Covers(date) {
			return a, nil
		}
	}
	return schedule.TemplateAssignment{}, schedule.ErrAssignmentNotFound
}

func (f *fakeAssignmentRepo) ListOverlapping(ctx context.Context, employeeID string, from time.Time, to *time.Time) ([]schedule.TemplateAssignment, error) {
	var out []schedule.TemplateAssignment
	for _, a := range f.assignments {
		if a.EmployeeID != employeeID {
			continue
		}
		if a.ValidTo != nil && a.ValidTo.Before(from) {
			continue
		}
		if to != nil && a.ValidFrom.After(*to) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAssignmentRepo) CountByTemplate(ctx context.Context, templateID string) (int64, error) {
	var n int64
	for _, a := range f.assignments {
		if a.TemplateID == templateID {
			n++
		}
	}
	return n, nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id, organizationID string) error {
	for i, a := range f.assignments {
		if a.ID == id && a.OrganizationID == organizationID {
			f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
			return nil
		}
	}
	return schedule.ErrAssignmentNotFound
}

type fakeAbsenceRepo struct {
	absences []absence.Absence
}

func (f *fakeAbsenceRepo) Create(ctx context.Context, a absence.Absence) (absence.Absence, error) {
	a.ID = fmt.Sprintf("abs-%d", len(f.absences)+1)
	f.absences = append(f.absences, a)
	return a, nil
}

func (f *fakeAbsenceRepo) GetByID(ctx context.Context, id, organizationID string) (absence.Absence, error) {
	for _, a := range f.absences {
		if a.ID == id {
			return a, nil
		}
	}
	return absence.Absence{}, absence.ErrAbsenceNotFound
}

func (f *fakeAbsenceRepo) FindCovering(ctx context.Context, employeeID string, date time.Time) (absence.Absence, error) {
	for _, a := range f.absences {
		if a.EmployeeID == employeeID && !date.Before(a.StartDate) && !date.After(a.EndDate) {
			return a, nil
		}
	}
	return absence.Absence{}, absence.ErrAbsenceNotFound
}

func (f *fakeAbsenceRepo) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]absence.Absence, error) {
	var out []absence.Absence
	for _, a := range f.absences {
		if a.EmployeeID == employeeID && !a.EndDate.Before(from) && !a.StartDate.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAbsenceRepo) ExistsOverlapping(ctx context.Context, employeeID string, from, to time.Time) (bool, error) {
	list, _ := f.ListByEmployee(ctx, employeeID, from, to)
	return len(list) > 0, nil
}

func (f *fakeAbsenceRepo) Delete(ctx context.Context, id, organizationID string) error {
	return nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	f.employees[e.ID] = e
	return e, nil
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id, organizationID string) (employee.Employee, error) {
	e, ok := f.employees[id]
	if !ok || e.OrganizationID != organizationID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.UserID != nil && *e.UserID == userID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListActive(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.OrganizationID == organizationID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) ExistsByCode(ctx context.Context, organizationID, code string) (bool, error) {
	return false, nil
}
