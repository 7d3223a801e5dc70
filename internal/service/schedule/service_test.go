package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const templateYAML = `
name: Jornada estándar
description: Lunes a viernes
periods:
  - name: Regular
    type: REGULAR
    days:
      - day: 1
        slots:
          - {start: "09:00", end: "14:00", type: WORK}
          - {start: "14:00", end: "15:00", type: BREAK}
          - {start: "15:00", end: "18:00", type: WORK}
      - day: 6
        working: false
  - name: Verano
    type: INTENSIVE
    valid_from: "2024-07-01"
    valid_to: "2024-08-31"
    days:
      - day: 1
        slots:
          - {start: "08:00", end: "15:00", type: WORK}
`

type scheduleFixture struct {
	svc         Service
	templates   *fakeTemplateRepo
	assignments *fakeAssignmentRepo
	absences    *fakeAbsenceRepo
	manager     user.Actor
	employee    user.Actor
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()
	f := &scheduleFixture{
		templates:   newFakeTemplateRepo(),
		assignments: &fakeAssignmentRepo{},
		absences:    &fakeAbsenceRepo{},
		manager:     user.Actor{UserID: "u-mgr", EmployeeID: "emp-mgr", OrganizationID: "org-1", Role: user.RoleManager},
		employee:    user.Actor{UserID: "u-1", EmployeeID: "emp-1", OrganizationID: "org-1", Role: user.RoleEmployee},
	}
	employees := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1":   {ID: "emp-1", OrganizationID: "org-1", FullName: "Lucía", IsActive: true},
		"emp-mgr": {ID: "emp-mgr", OrganizationID: "org-1", FullName: "Marta", IsActive: true},
	}}
	f.svc = NewScheduleService(nopTx{}, f.templates, f.assignments, f.absences, employees)
	return f
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func (f *scheduleFixture) importAndAssign(t *testing.T) schedule.TemplateResponse {
	t.Helper()
	ctx := context.Background()
	tmpl, err := f.svc.ImportTemplate(ctx, f.manager, []byte(templateYAML))
	require.NoError(t, err)

	_, err = f.svc.CreateAssignment(ctx, f.manager, schedule.CreateAssignmentRequest{
		EmployeeID: "emp-1",
		TemplateID: tmpl.ID,
		ValidFrom:  "2024-01-01",
	})
	require.NoError(t, err)
	return tmpl
}

func TestScheduleService_ImportTemplate(t *testing.T) {
	f := newScheduleFixture(t)
	tmpl, err := f.svc.ImportTemplate(context.Background(), f.manager, []byte(templateYAML))
	require.NoError(t, err)

	assert.Equal(t, "Jornada estándar", tmpl.Name)
	require.Len(t, tmpl.Periods, 2)
	assert.Equal(t, "REGULAR", tmpl.Periods[0].PeriodType)
	assert.Equal(t, 480, tmpl.Periods[0].Patterns[0].ExpectedMinutes)
	assert.Equal(t, "INTENSIVE", tmpl.Periods[1].PeriodType)
	require.NotNil(t, tmpl.Periods[1].ValidFrom)
	assert.Equal(t, "2024-07-01", *tmpl.Periods[1].ValidFrom)
}

func TestScheduleService_ImportTemplate_Invalid(t *testing.T) {
	f := newScheduleFixture(t)

	_, err := f.svc.ImportTemplate(context.Background(), f.manager, []byte("name: [unclosed"))
	assert.ErrorIs(t, err, schedule.ErrInvalidTemplateFile)

	overlapping := `
name: Solapada
periods:
  - name: Regular
    days:
      - day: 1
        slots:
          - {start: "09:00", end: "13:00", type: WORK}
          - {start: "12:00", end: "16:00", type: WORK}
`
	_, err = f.svc.ImportTemplate(context.Background(), f.manager, []byte(overlapping))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlaps")
}

func TestScheduleService_CreateTemplate_DuplicateName(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTemplate(ctx, f.manager, schedule.CreateTemplateRequest{Name: "Turno"})
	require.NoError(t, err)
	_, err = f.svc.CreateTemplate(ctx, f.manager, schedule.CreateTemplateRequest{Name: "turno"})
	assert.ErrorIs(t, err, schedule.ErrTemplateNameExists)
}

func TestScheduleService_CreateTemplate_RequiresManager(t *testing.T) {
	f := newScheduleFixture(t)
	_, err := f.svc.CreateTemplate(context.Background(), f.employee, schedule.CreateTemplateRequest{Name: "Turno"})
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)
}

func TestScheduleService_Resolve(t *testing.T) {
	f := newScheduleFixture(t)
	f.importAndAssign(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		date         string
		source       schedule.Source
		workingDay   bool
		expected     int
		periodType   schedule.PeriodType
		expectPeriod bool
	}{
		{"regular monday", "2024-01-08", schedule.SourceTemplate, true, 480, schedule.PeriodRegular, true},
		{"intensive monday wins over regular", "2024-07-01", schedule.SourceTemplate, true, 420, schedule.PeriodIntensive, true},
		{"saturday is not working", "2024-01-13", schedule.SourceTemplate, false, 0, schedule.PeriodRegular, true},
		{"weekday without pattern", "2024-01-10", schedule.SourceTemplate, false, 0, schedule.PeriodRegular, true},
		{"before assignment", "2023-12-25", schedule.SourceNoAssignment, false, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff, err := f.svc.Resolve(ctx, "emp-1", date(tt.date))
			require.NoError(t, err)
			assert.Equal(t, tt.source, eff.Source)
			assert.Equal(t, tt.workingDay, eff.IsWorkingDay)
			assert.Equal(t, tt.expected, eff.ExpectedMinutes)
			if tt.expectPeriod {
				require.NotNil(t, eff.PeriodType)
				assert.Equal(t, tt.periodType, *eff.PeriodType)
			} else {
				assert.Nil(t, eff.PeriodType)
			}
		})
	}
}

func TestScheduleService_Resolve_AbsenceWins(t *testing.T) {
	f := newScheduleFixture(t)
	f.importAndAssign(t)
	f.absences.absences = append(f.absences.absences, absence.Absence{
		ID:          "abs-1",
		EmployeeID:  "emp-1",
		AbsenceType: absence.AbsenceVacation,
		StartDate:   date("2024-01-08"),
		EndDate:     date("2024-01-12"),
	})

	eff, err := f.svc.Resolve(context.Background(), "emp-1", date("2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, schedule.SourceAbsence, eff.Source)
	assert.False(t, eff.IsWorkingDay)
	assert.Zero(t, eff.ExpectedMinutes)
	require.NotNil(t, eff.Absence)
	assert.Equal(t, "VACATION", eff.Absence.AbsenceType)
}

func TestScheduleService_ResolveRange_MatchesResolve(t *testing.T) {
	f := newScheduleFixture(t)
	f.importAndAssign(t)
	f.absences.absences = append(f.absences.absences, absence.Absence{
		ID: "abs-1", EmployeeID: "emp-1", AbsenceType: absence.AbsenceSickLeave,
		StartDate: date("2024-06-27"), EndDate: date("2024-06-28"),
	})
	ctx := context.Background()

	from, to := date("2024-06-24"), date("2024-07-07")
	days, err := f.svc.ResolveRange(ctx, "emp-1", from, to)
	require.NoError(t, err)
	require.Len(t, days, 14)

	for i, got := range days {
		want, err := f.svc.Resolve(ctx, "emp-1", from.AddDate(0, 0, i))
		require.NoError(t, err)
		assert.Equal(t, want, got, "day %d", i)
	}
}

func TestScheduleService_CreateAssignment_Overlap(t *testing.T) {
	f := newScheduleFixture(t)
	tmpl := f.importAndAssign(t)

	to := "2024-03-31"
	_, err := f.svc.CreateAssignment(context.Background(), f.manager, schedule.CreateAssignmentRequest{
		EmployeeID: "emp-1",
		TemplateID: tmpl.ID,
		ValidFrom:  "2024-03-01",
		ValidTo:    &to,
	})
	assert.ErrorIs(t, err, schedule.ErrOverlappingAssignment)
}

func TestScheduleService_DeleteTemplate_InUse(t *testing.T) {
	f := newScheduleFixture(t)
	tmpl := f.importAndAssign(t)

	err := f.svc.DeleteTemplate(context.Background(), f.manager, tmpl.ID)
	assert.ErrorIs(t, err, schedule.ErrTemplateInUse)
}

func TestScheduleService_UpsertDayPattern(t *testing.T) {
	f := newScheduleFixture(t)
	tmpl := f.importAndAssign(t)
	regularID := tmpl.Periods[0].ID

	period, err := f.svc.UpsertDayPattern(context.Background(), f.manager, regularID, schedule.DayPatternRequest{
		DayOfWeek: 3,
		TimeSlots: []schedule.TimeSlotRequest{{Start: "10:00", End: "14:00", SlotType: "WORK"}},
	})
	require.NoError(t, err)
	assert.Len(t, period.Patterns, 3)

	eff, err := f.svc.Resolve(context.Background(), "emp-1", date("2024-01-10"))
	require.NoError(t, err)
	assert.True(t, eff.IsWorkingDay)
	assert.Equal(t, 240, eff.ExpectedMinutes)
}

func TestScheduleService_GetEffectiveSchedule_OtherEmployeeRequiresManager(t *testing.T) {
	f := newScheduleFixture(t)
	f.importAndAssign(t)

	_, err := f.svc.GetEffectiveSchedule(context.Background(), f.employee, "emp-mgr", date("2024-01-08"))
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)

	resp, err := f.svc.GetEffectiveSchedule(context.Background(), f.manager, "emp-1", date("2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, 480, resp.ExpectedMinutes)
	assert.Equal(t, "09:00", resp.TimeSlots[0].Start)
}
