package attendance

import (
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
)

// DailySummary joins the replayed state of an employee-day with its effective
// schedule. It is derived on read and never stored.
type DailySummary struct {
	Date       time.Time
	State      DayState
	Entries    []TimeEntry
	Schedule   schedule.EffectiveSchedule
	Compliance Compliance
	Status     DayStatus
}

// Summarize builds the summary of one day from its raw entries.
func Summarize(date time.Time, entries []TimeEntry, eff schedule.EffectiveSchedule, now time.Time) DailySummary {
	state := Replay(entries, now)
	c := ComputeCompliance(eff.ExpectedMinutes, state.WorkedMinutes())
	return DailySummary{
		Date:       schedule.DateOf(date),
		State:      state,
		Entries:    VisibleEntries(entries),
		Schedule:   eff,
		Compliance: c,
		Status:     ClassifyDay(state, c),
	}
}
