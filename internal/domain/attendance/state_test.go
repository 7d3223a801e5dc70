package attendance

import (
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func at(hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

// seq builds entries from "TYPE@HH:MM" pairs.
func seq(specs ...string) []TimeEntry {
	entries := make([]TimeEntry, 0, len(specs))
	for i, s := range specs {
		var typ, hhmm string
		for j := range s {
			if s[j] == '@' {
				typ, hhmm = s[:j], s[j+1:]
			}
		}
		entries = append(entries, TimeEntry{
			ID:        fmt.Sprintf("te-%d", i+1),
			EntryType: EntryType(typ),
			Timestamp: at(hhmm),
			CreatedAt: time.Unix(int64(i), 0),
		})
	}
	return entries
}

func TestReplay_FullDay(t *testing.T) {
	st := Replay(seq("CLOCK_IN@09:00", "BREAK_START@13:00", "BREAK_END@13:30", "CLOCK_OUT@18:00"), at("20:00"))

	assert.Equal(t, StatusClockedOut, st.Status)
	assert.Equal(t, 480, st.WorkedMinutes())
	assert.Equal(t, 30, st.BreakMinutes())
	require.NotNil(t, st.ClockIn)
	require.NotNil(t, st.ClockOut)
	assert.Equal(t, at("09:00"), *st.ClockIn)
	assert.Equal(t, at("18:00"), *st.ClockOut)
	require.Len(t, st.Sessions, 1)
	assert.Len(t, st.Sessions[0].Breaks, 1)
	assert.Empty(t, st.Anomalies)

	c := ComputeCompliance(480, st.WorkedMinutes())
	assert.True(t, c.IsCompleted)
	assert.Equal(t, 100, c.ProgressPercentage)
	assert.Equal(t, DayCompleted, ClassifyDay(st, c))
}

func TestReplay_WorkedPlusBreakEqualsWallClock(t *testing.T) {
	sequences := [][]string{
		{"CLOCK_IN@08:00", "CLOCK_OUT@16:00"},
		{"CLOCK_IN@08:00", "BREAK_START@10:00", "BREAK_END@10:15", "CLOCK_OUT@16:00"},
		{"CLOCK_IN@07:30", "BREAK_START@09:00", "BREAK_END@09:20", "BREAK_START@13:00", "BREAK_END@14:00", "CLOCK_OUT@17:45"},
		{"CLOCK_IN@09:00", "BREAK_START@12:00", "CLOCK_OUT@12:30"},
	}
	for _, s := range sequences {
		entries := seq(s...)
		st := Replay(entries, at("23:00"))
		wall := entries[len(entries)-1].Timestamp.Sub(entries[0].Timestamp)
		assert.Equal(t, wall, st.Worked+st.OnBreak, "%v", s)
	}
}

func TestReplay_MinuteTotalsWithSeconds(t *testing.T) {
	stamp := func(h, m, sec int) time.Time {
		return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second)
	}
	entries := []TimeEntry{
		{ID: "te-1", EntryType: EntryClockIn, Timestamp: stamp(9, 0, 20)},
		{ID: "te-2", EntryType: EntryBreakStart, Timestamp: stamp(13, 1, 0)},
		{ID: "te-3", EntryType: EntryBreakEnd, Timestamp: stamp(13, 30, 40)},
		{ID: "te-4", EntryType: EntryClockOut, Timestamp: stamp(17, 30, 40)},
	}

	st := Replay(entries, stamp(20, 0, 0))

	wall := int(entries[3].Timestamp.Sub(entries[0].Timestamp) / time.Minute)
	assert.Equal(t, 510, wall)
	assert.Equal(t, 480, st.WorkedMinutes())
	assert.Equal(t, 30, st.BreakMinutes())
	assert.Equal(t, wall, st.WorkedMinutes()+st.BreakMinutes())

	resp := NewDailySummaryResponse(Summarize(day, entries, schedule.EffectiveSchedule{}, stamp(20, 0, 0)))
	assert.Equal(t, wall, resp.TotalWorkedMinutes+resp.TotalBreakMinutes)
}

func TestReplay_OpenDayAccumulatesUntilNow(t *testing.T) {
	st := Replay(seq("CLOCK_IN@09:00", "BREAK_START@11:00"), at("11:20"))

	assert.Equal(t, StatusOnBreak, st.Status)
	assert.Equal(t, 120, st.WorkedMinutes())
	assert.Equal(t, 20, st.BreakMinutes())
	assert.Nil(t, st.ClockOut)
	require.NotNil(t, st.OpenBreakStart)
	assert.Equal(t, "te-1", st.OpenClockInEntryID)
	assert.Equal(t, DayInProgress, ClassifyDay(st, ComputeCompliance(480, st.WorkedMinutes())))
}

func TestReplay_CancelledEntriesAreIgnored(t *testing.T) {
	entries := seq("CLOCK_IN@09:00", "CLOCK_OUT@09:05", "CLOCK_IN@09:10", "CLOCK_OUT@17:10")
	entries[1].IsCancelled = true

	st := Replay(entries, at("20:00"))

	assert.Equal(t, 480, st.WorkedMinutes())
	assert.Len(t, VisibleEntries(entries), 3)
}

func TestReplay_SupersededClockInIsIncomplete(t *testing.T) {
	st := Replay(seq("CLOCK_IN@09:00", "CLOCK_IN@10:00", "CLOCK_OUT@12:00"), at("20:00"))

	assert.Equal(t, 120, st.WorkedMinutes())
	require.Len(t, st.Anomalies, 1)
	assert.Equal(t, AnomalyIncompleteEntry, st.Anomalies[0].Kind)
	assert.Equal(t, "te-1", st.Anomalies[0].EntryID)
	require.Len(t, st.Sessions, 2)
	assert.True(t, st.Sessions[0].Incomplete)
	assert.Equal(t, at("09:00"), *st.ClockIn)
}

func TestReplay_UnexpectedEntries(t *testing.T) {
	st := Replay(seq("BREAK_END@08:00", "CLOCK_OUT@08:30", "CLOCK_IN@09:00", "BREAK_END@10:00", "CLOCK_OUT@11:00"), at("20:00"))

	assert.Equal(t, 120, st.WorkedMinutes())
	assert.True(t, st.HasAnomaly(AnomalyUnexpectedEntry))
	assert.False(t, st.HasAnomaly(AnomalyIncompleteEntry))
	assert.Len(t, st.Anomalies, 3)
}

func TestReplay_SameTimestampKeepsCreationOrder(t *testing.T) {
	entries := seq("CLOCK_OUT@17:00", "CLOCK_IN@09:00")
	entries[0].Timestamp = at("09:00")
	entries[0].CreatedAt = time.Unix(10, 0)

	st := Replay(entries, at("20:00"))

	assert.Equal(t, StatusClockedOut, st.Status)
	assert.Empty(t, st.Anomalies)
}

func TestReplay_ProjectSwitchDuringBreakIsDeferred(t *testing.T) {
	entries := seq("CLOCK_IN@09:00", "BREAK_START@11:00", "PROJECT_SWITCH@11:10")
	project := "p-2"
	entries[2].ProjectID = &project

	st := Replay(entries, at("11:15"))
	require.NotNil(t, st.PendingProjectChange)
	assert.Nil(t, st.ActiveProjectID)

	entries = append(entries, TimeEntry{ID: "te-4", EntryType: EntryBreakEnd, Timestamp: at("11:30")})
	st = Replay(entries, at("12:00"))
	assert.Nil(t, st.PendingProjectChange)
	require.NotNil(t, st.ActiveProjectID)
	assert.Equal(t, "p-2", *st.ActiveProjectID)
}

func TestSummarize_NoAssignment(t *testing.T) {
	eff := schedule.EffectiveSchedule{Source: schedule.SourceNoAssignment, Date: day}

	s := Summarize(day, seq("CLOCK_IN@09:00", "CLOCK_OUT@11:00"), eff, at("20:00"))

	assert.Equal(t, 0, s.Compliance.ExpectedMinutes)
	assert.Equal(t, 120, s.Compliance.WorkedMinutes)
	assert.True(t, s.Compliance.IsWorkingOnAbsence)
	assert.False(t, s.Compliance.IsCompleted)
	assert.Equal(t, DayOffSchedule, s.Status)
}
