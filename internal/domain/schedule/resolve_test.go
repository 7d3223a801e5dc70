package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func workday(dayOfWeek int, slots ...TimeSlot) WorkDayPattern {
	return WorkDayPattern{DayOfWeek: dayOfWeek, IsWorkingDay: true, TimeSlots: slots}
}

func slot(start, end int, typ SlotType) TimeSlot {
	return TimeSlot{StartMinutes: start * 60, EndMinutes: end * 60, SlotType: typ}
}

func standardTemplate() *ScheduleTemplate {
	regular := SchedulePeriod{ID: "p-regular", Name: "Jornada estándar", PeriodType: PeriodRegular}
	for d := 1; d <= 5; d++ {
		regular.Patterns = append(regular.Patterns,
			workday(d, slot(9, 14, SlotWork), slot(14, 15, SlotBreak), slot(15, 18, SlotWork)))
	}
	summer := SchedulePeriod{
		ID: "p-summer", Name: "Jornada intensiva", PeriodType: PeriodIntensive,
		ValidFrom: datePtr("2024-07-01"), ValidTo: datePtr("2024-08-31"),
	}
	for d := 1; d <= 5; d++ {
		summer.Patterns = append(summer.Patterns, workday(d, slot(8, 15, SlotWork)))
	}
	holiday := SchedulePeriod{
		ID: "p-special", Name: "Fiesta local", PeriodType: PeriodSpecial,
		ValidFrom: datePtr("2024-08-15"), ValidTo: datePtr("2024-08-15"),
		Patterns: []WorkDayPattern{{DayOfWeek: 4, IsWorkingDay: false}},
	}
	return &ScheduleTemplate{ID: "t-1", Name: "Oficina", IsActive: true, Periods: []SchedulePeriod{regular, summer, holiday}}
}

func TestResolve_TemplatePriority(t *testing.T) {
	tmpl := standardTemplate()
	assignment := &TemplateAssignment{TemplateID: "t-1", ValidFrom: date("2024-01-01")}

	tests := []struct {
		date     string
		period   string
		working  bool
		expected int
	}{
		{"2024-03-04", "p-regular", true, 480},
		{"2024-03-09", "p-regular", false, 0},
		{"2024-07-01", "p-summer", true, 420},
		{"2024-08-15", "p-special", false, 0},
		{"2024-08-16", "p-summer", true, 420},
		{"2024-09-02", "p-regular", true, 480},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			eff := Resolve(date(tt.date), nil, assignment, tmpl)

			assert.Equal(t, SourceTemplate, eff.Source)
			require.NotNil(t, eff.PeriodID)
			assert.Equal(t, tt.period, *eff.PeriodID)
			assert.Equal(t, tt.working, eff.IsWorkingDay)
			assert.Equal(t, tt.expected, eff.ExpectedMinutes)
		})
	}
}

func TestResolve_IsIdempotent(t *testing.T) {
	tmpl := standardTemplate()
	assignment := &TemplateAssignment{TemplateID: "t-1", ValidFrom: date("2024-01-01")}

	first := Resolve(date("2024-03-04"), nil, assignment, tmpl)
	second := Resolve(date("2024-03-04"), nil, assignment, tmpl)

	assert.Equal(t, first, second)
}

func TestResolve_AbsenceWins(t *testing.T) {
	absence := &AbsenceInfo{ID: "a-1", AbsenceType: "VACATION"}

	eff := Resolve(date("2024-03-04"), absence, &TemplateAssignment{TemplateID: "t-1"}, standardTemplate())

	assert.Equal(t, SourceAbsence, eff.Source)
	assert.Zero(t, eff.ExpectedMinutes)
	assert.Equal(t, absence, eff.Absence)
}

func TestResolve_NoAssignment(t *testing.T) {
	tmpl := standardTemplate()

	assert.Equal(t, SourceNoAssignment, Resolve(date("2024-03-04"), nil, nil, tmpl).Source)

	tmpl.IsActive = false
	eff := Resolve(date("2024-03-04"), nil, &TemplateAssignment{TemplateID: "t-1"}, tmpl)
	assert.Equal(t, SourceNoAssignment, eff.Source)
	assert.Zero(t, eff.ExpectedMinutes)
}

func TestResolve_SlotsSortedWorkBeforeBreak(t *testing.T) {
	tmpl := &ScheduleTemplate{ID: "t-2", IsActive: true, Periods: []SchedulePeriod{{
		ID: "p", PeriodType: PeriodRegular,
		Patterns: []WorkDayPattern{workday(1, slot(12, 13, SlotBreak), slot(8, 17, SlotWork), slot(8, 9, SlotBreak))},
	}}}

	eff := Resolve(date("2024-03-04"), nil, &TemplateAssignment{}, tmpl)

	require.Len(t, eff.TimeSlots, 3)
	assert.Equal(t, SlotWork, eff.TimeSlots[0].SlotType)
	assert.Equal(t, SlotBreak, eff.TimeSlots[1].SlotType)
	assert.Equal(t, 12*60, eff.TimeSlots[2].StartMinutes)
	assert.Equal(t, 540, eff.ExpectedMinutes)
}

func TestSelectPeriod_TieBreaks(t *testing.T) {
	older := SchedulePeriod{ID: "b", PeriodType: PeriodSpecial, ValidFrom: datePtr("2024-01-01")}
	newer := SchedulePeriod{ID: "c", PeriodType: PeriodSpecial, ValidFrom: datePtr("2024-03-01")}
	open := SchedulePeriod{ID: "a", PeriodType: PeriodSpecial}

	p, ok := SelectPeriod([]SchedulePeriod{open, older, newer}, date("2024-03-04"))
	require.True(t, ok)
	assert.Equal(t, "c", p.ID)

	p, ok = SelectPeriod([]SchedulePeriod{{ID: "z", PeriodType: PeriodRegular}, {ID: "y", PeriodType: PeriodRegular}}, date("2024-03-04"))
	require.True(t, ok)
	assert.Equal(t, "y", p.ID)

	_, ok = SelectPeriod([]SchedulePeriod{{ID: "x", ValidTo: datePtr("2024-01-01")}}, date("2024-03-04"))
	assert.False(t, ok)
}

func TestValidateTimeSlots(t *testing.T) {
	tests := []struct {
		name    string
		slots   []TimeSlot
		wantErr bool
	}{
		{"split shift", []TimeSlot{slot(9, 14, SlotWork), slot(15, 18, SlotWork)}, false},
		{"break inside work", []TimeSlot{slot(9, 18, SlotWork), slot(13, 14, SlotBreak)}, false},
		{"adjacent work slots", []TimeSlot{slot(9, 13, SlotWork), slot(13, 17, SlotWork)}, false},
		{"overlapping work", []TimeSlot{slot(9, 14, SlotWork), slot(13, 18, SlotWork)}, true},
		{"overlapping breaks", []TimeSlot{slot(9, 18, SlotWork), slot(12, 13, SlotBreak), slot(12, 14, SlotBreak)}, true},
		{"end before start", []TimeSlot{slot(14, 9, SlotWork)}, true},
		{"past midnight", []TimeSlot{{StartMinutes: 1380, EndMinutes: 1500, SlotType: SlotWork}}, true},
		{"unknown type", []TimeSlot{{StartMinutes: 60, EndMinutes: 120, SlotType: "NAP"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimeSlots(tt.slots)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
