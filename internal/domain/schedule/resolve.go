package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

// Resolve computes the effective schedule of a date from already loaded data.
// absence wins over any template; a nil assignment or template yields NO_ASSIGNMENT.
func Resolve(date time.Time, absence *AbsenceInfo, assignment *TemplateAssignment, template *ScheduleTemplate) EffectiveSchedule {
	day := DateOf(date)

	if absence != nil {
		return EffectiveSchedule{
			Source:  SourceAbsence,
			Date:    day,
			Absence: absence,
		}
	}

	if assignment == nil || template == nil || !template.IsActive {
		return EffectiveSchedule{Source: SourceNoAssignment, Date: day}
	}

	eff := EffectiveSchedule{
		Source:       SourceTemplate,
		Date:         day,
		TemplateID:   &template.ID,
		TemplateName: &template.Name,
	}

	period, ok := SelectPeriod(template.Periods, day)
	if !ok {
		return eff
	}
	eff.PeriodID = &period.ID
	periodType := period.PeriodType
	eff.PeriodType = &periodType

	pattern, ok := period.PatternFor(ISOWeekday(day))
	if !ok || !pattern.IsWorkingDay {
		return eff
	}

	eff.IsWorkingDay = true
	eff.ExpectedMinutes = pattern.ExpectedMinutes()
	eff.TimeSlots = sortedSlots(pattern.TimeSlots)
	return eff
}

// SelectPeriod picks the period covering date with the highest priority. Ties go
// to the most recent ValidFrom, then to the lowest ID, so the choice is stable.
func SelectPeriod(periods []SchedulePeriod, date time.Time) (SchedulePeriod, bool) {
	var (
		best  SchedulePeriod
		found bool
	)
	for _, p := range periods {
		if !p.Covers(date) {
			continue
		}
		if !found || outranks(p, best) {
			best = p
			found = true
		}
	}
	return best, found
}

func outranks(a, b SchedulePeriod) bool {
	if pa, pb := a.PeriodType.Priority(), b.PeriodType.Priority(); pa != pb {
		return pa > pb
	}
	switch {
	case a.ValidFrom != nil && b.ValidFrom == nil:
		return true
	case a.ValidFrom == nil && b.ValidFrom != nil:
		return false
	case a.ValidFrom != nil && b.ValidFrom != nil && !a.ValidFrom.Equal(*b.ValidFrom):
		return a.ValidFrom.After(*b.ValidFrom)
	}
	return a.ID < b.ID
}

func sortedSlots(slots []TimeSlot) []TimeSlot {
	out := make([]TimeSlot, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartMinutes == out[j].StartMinutes {
			return out[i].SlotType == SlotWork && out[j].SlotType == SlotBreak
		}
		return out[i].StartMinutes < out[j].StartMinutes
	})
	return out
}

// ValidateTimeSlots checks slot bounds and rejects overlapping slots of the same
// type. A BREAK inside a WORK slot is valid.
func ValidateTimeSlots(slots []TimeSlot) error {
	var errs validator.ValidationErrors

	for i, s := range slots {
		field := fmt.Sprintf("time_slots[%d]", i)
		if s.SlotType != SlotWork && s.SlotType != SlotBreak {
			errs.Add(field+".slot_type", "slot_type must be one of: WORK, BREAK")
		}
		if s.StartMinutes < 0 || s.StartMinutes >= MinutesPerDay {
			errs.Add(field+".start_minutes", "start_minutes must be between 0 and 1439")
		}
		if s.EndMinutes <= 0 || s.EndMinutes > MinutesPerDay {
			errs.Add(field+".end_minutes", "end_minutes must be between 1 and 1440")
		}
		if s.EndMinutes <= s.StartMinutes {
			errs.Add(field+".end_minutes", "end_minutes must be after start_minutes")
		}
	}
	if len(errs) > 0 {
		return errs
	}

	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if slots[i].SlotType == slots[j].SlotType && slots[i].Overlaps(slots[j]) {
				errs.Add(fmt.Sprintf("time_slots[%d]", j),
					fmt.Sprintf("%s slot overlaps time_slots[%d]", slots[j].SlotType, i))
			}
		}
	}

	return errs.OrNil()
}
