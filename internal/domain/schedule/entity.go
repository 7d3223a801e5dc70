package schedule

import "time"

type PeriodType string

const (
	PeriodRegular   PeriodType = "REGULAR"
	PeriodIntensive PeriodType = "INTENSIVE"
	PeriodSpecial   PeriodType = "SPECIAL"
)

var PeriodTypes = []string{string(PeriodRegular), string(PeriodIntensive), string(PeriodSpecial)}

// Priority orders overlapping periods: SPECIAL > INTENSIVE > REGULAR.
func (p PeriodType) Priority() int {
	switch p {
	case PeriodSpecial:
		return 3
	case PeriodIntensive:
		return 2
	case PeriodRegular:
		return 1
	}
	return 0
}

type SlotType string

const (
	SlotWork  SlotType = "WORK"
	SlotBreak SlotType = "BREAK"
)

var SlotTypes = []string{string(SlotWork), string(SlotBreak)}

type Source string

const (
	SourceTemplate     Source = "TEMPLATE"
	SourceAbsence      Source = "ABSENCE"
	SourceNoAssignment Source = "NO_ASSIGNMENT"
)

const MinutesPerDay = 24 * 60

type ScheduleTemplate struct {
	ID             string
	OrganizationID string
	Name           string
	Description    *string
	IsActive       bool
	Periods        []SchedulePeriod
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SchedulePeriod is a validity window inside a template. A nil bound is open.
type SchedulePeriod struct {
	ID         string
	TemplateID string
	Name       string
	PeriodType PeriodType
	ValidFrom  *time.Time
	ValidTo    *time.Time
	Patterns   []WorkDayPattern
}

// Covers reports whether the calendar date falls inside the period window, bounds included.
func (p SchedulePeriod) Covers(date time.Time) bool {
	d := DateOf(date)
	if p.ValidFrom != nil && d.Before(DateOf(*p.ValidFrom)) {
		return false
	}
	if p.ValidTo != nil && d.After(DateOf(*p.ValidTo)) {
		return false
	}
	return true
}

// PatternFor returns the pattern configured for an ISO weekday (Monday=1).
func (p SchedulePeriod) PatternFor(dayOfWeek int) (WorkDayPattern, bool) {
	for _, pattern := range p.Patterns {
		if pattern.DayOfWeek == dayOfWeek {
			return pattern, true
		}
	}
	return WorkDayPattern{}, false
}

type WorkDayPattern struct {
	ID           string
	PeriodID     string
	DayOfWeek    int
	IsWorkingDay bool
	TimeSlots    []TimeSlot
}

// ExpectedMinutes sums WORK slots. BREAK slots never count as expected work.
func (p WorkDayPattern) ExpectedMinutes() int {
	if !p.IsWorkingDay {
		return 0
	}
	total := 0
	for _, slot := range p.TimeSlots {
		if slot.SlotType == SlotWork {
			total += slot.Duration()
		}
	}
	return total
}

// TimeSlot spans [StartMinutes, EndMinutes) measured from local midnight.
type TimeSlot struct {
	ID           string
	PatternID    string
	StartMinutes int
	EndMinutes   int
	SlotType     SlotType
	IsAutomatic  bool
}

func (s TimeSlot) Duration() int {
	return s.EndMinutes - s.StartMinutes
}

func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.StartMinutes < other.EndMinutes && other.StartMinutes < s.EndMinutes
}

type TemplateAssignment struct {
	ID             string
	OrganizationID string
	EmployeeID     string
	TemplateID     string
	ValidFrom      time.Time
	ValidTo        *time.Time
	CreatedAt      time.Time

	// DTO / Join
	TemplateName string
}

func (a TemplateAssignment) Covers(date time.Time) bool {
	d := DateOf(date)
	if d.Before(DateOf(a.ValidFrom)) {
		return false
	}
	return a.ValidTo == nil || !d.After(DateOf(*a.ValidTo))
}

// AbsenceInfo is the part of an absence the resolver reports.
type AbsenceInfo struct {
	ID          string
	AbsenceType string
	Reason      *string
}

// EffectiveSchedule is the resolved expectation for one employee-day.
type EffectiveSchedule struct {
	Source          Source
	Date            time.Time
	IsWorkingDay    bool
	ExpectedMinutes int
	TimeSlots       []TimeSlot
	TemplateID      *string
	TemplateName    *string
	PeriodID        *string
	PeriodType      *PeriodType
	Absence         *AbsenceInfo
}

// DateOf truncates t to its calendar date, keeping the wall clock date of t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
