package attendance

import (
	"sort"
	"time"
)

type AnomalyKind string

const (
	// AnomalyIncompleteEntry marks a session that was never closed by a CLOCK_OUT.
	AnomalyIncompleteEntry AnomalyKind = "incomplete_entry"
	// AnomalyUnexpectedEntry marks an entry that does not fit the state it arrived in.
	AnomalyUnexpectedEntry AnomalyKind = "unexpected_entry"
)

type Anomaly struct {
	Kind      AnomalyKind
	EntryID   string
	EntryType EntryType
	Timestamp time.Time
}

// PendingProjectChange is a project switch requested while on break. It is
// applied when the break ends.
type PendingProjectChange struct {
	EntryID     string
	ProjectID   *string
	Task        *string
	RequestedAt time.Time
}

type Break struct {
	Start time.Time
	End   *time.Time
}

type WorkSession struct {
	ClockInEntryID string
	Start          time.Time
	End            *time.Time
	ProjectID      *string
	Task           *string
	Breaks         []Break
	// Incomplete is set when the session was superseded by another CLOCK_IN.
	Incomplete bool
}

// DayState is the result of replaying one employee-day of entries.
type DayState struct {
	Status  Status
	ClockIn *time.Time
	// ClockOut is the last CLOCK_OUT, reported only once the day is closed.
	ClockOut *time.Time
	Worked   time.Duration
	OnBreak  time.Duration

	OpenSessionStart     *time.Time
	OpenClockInEntryID   string
	OpenBreakStart       *time.Time
	ActiveProjectID      *string
	ActiveTask           *string
	PendingProjectChange *PendingProjectChange

	Sessions  []WorkSession
	Anomalies []Anomaly
}

func (s DayState) WorkedMinutes() int { return int(s.Worked / time.Minute) }

// BreakMinutes is taken from the truncated tracked span so that worked plus
// break minutes always equal the span in whole minutes.
func (s DayState) BreakMinutes() int {
	return int((s.Worked+s.OnBreak)/time.Minute) - s.WorkedMinutes()
}

func (s DayState) IsOpen() bool { return s.Status != StatusClockedOut }

func (s DayState) IsOnBreak() bool { return s.Status == StatusOnBreak }

// HasAnomaly reports whether the replay flagged an anomaly of the given kind.
func (s DayState) HasAnomaly(kind AnomalyKind) bool {
	for _, a := range s.Anomalies {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// ActiveEntries returns the non-cancelled entries ordered by timestamp. Entries
// sharing a timestamp keep their creation order.
func ActiveEntries(entries []TimeEntry) []TimeEntry {
	active := make([]TimeEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsCancelled {
			continue
		}
		active = append(active, e)
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Timestamp.Equal(active[j].Timestamp) {
			return active[i].CreatedAt.Before(active[j].CreatedAt)
		}
		return active[i].Timestamp.Before(active[j].Timestamp)
	})
	return active
}

// VisibleEntries returns the entries shown on timelines: active entries without
// PROJECT_SWITCH markers.
func VisibleEntries(entries []TimeEntry) []TimeEntry {
	active := ActiveEntries(entries)
	visible := make([]TimeEntry, 0, len(active))
	for _, e := range active {
		if e.EntryType == EntryProjectSwitch {
			continue
		}
		visible = append(visible, e)
	}
	return visible
}

// Replay derives the state of an employee-day from its entries. The segment left
// open at the end of the sequence accumulates up to now.
func Replay(entries []TimeEntry, now time.Time) DayState {
	st := DayState{Status: StatusClockedOut}
	var segmentStart time.Time

	for _, e := range ActiveEntries(entries) {
		switch e.EntryType {
		case EntryClockIn:
			if st.IsOpen() {
				st.Anomalies = append(st.Anomalies, Anomaly{
					Kind:      AnomalyIncompleteEntry,
					EntryID:   st.OpenClockInEntryID,
					EntryType: EntryClockIn,
					Timestamp: *st.OpenSessionStart,
				})
				st.abandonSession()
			}
			ts := e.Timestamp
			if st.ClockIn == nil {
				st.ClockIn = &ts
			}
			st.Status = StatusClockedIn
			st.OpenSessionStart = &ts
			st.OpenClockInEntryID = e.ID
			st.ActiveProjectID = e.ProjectID
			st.ActiveTask = e.Task
			st.Sessions = append(st.Sessions, WorkSession{
				ClockInEntryID: e.ID,
				Start:          ts,
				ProjectID:      e.ProjectID,
				Task:           e.Task,
			})
			segmentStart = ts

		case EntryBreakStart:
			if st.Status != StatusClockedIn {
				st.unexpected(e)
				continue
			}
			st.Worked += e.Timestamp.Sub(segmentStart)
			ts := e.Timestamp
			st.Status = StatusOnBreak
			st.OpenBreakStart = &ts
			cur := st.currentSession()
			cur.Breaks = append(cur.Breaks, Break{Start: ts})
			segmentStart = ts

		case EntryBreakEnd:
			if st.Status != StatusOnBreak {
				st.unexpected(e)
				continue
			}
			st.OnBreak += e.Timestamp.Sub(segmentStart)
			st.closeBreak(e.Timestamp)
			st.Status = StatusClockedIn
			if p := st.PendingProjectChange; p != nil {
				st.ActiveProjectID = p.ProjectID
				st.ActiveTask = p.Task
				st.PendingProjectChange = nil
			}
			segmentStart = e.Timestamp

		case EntryClockOut:
			switch st.Status {
			case StatusClockedIn:
				st.Worked += e.Timestamp.Sub(segmentStart)
			case StatusOnBreak:
				st.OnBreak += e.Timestamp.Sub(segmentStart)
				st.closeBreak(e.Timestamp)
			default:
				st.unexpected(e)
				continue
			}
			ts := e.Timestamp
			st.currentSession().End = &ts
			st.closeSession()
			st.ClockOut = &ts

		case EntryProjectSwitch:
			switch st.Status {
			case StatusClockedIn:
				st.ActiveProjectID = e.ProjectID
				st.ActiveTask = e.Task
			case StatusOnBreak:
				st.PendingProjectChange = &PendingProjectChange{
					EntryID:     e.ID,
					ProjectID:   e.ProjectID,
					Task:        e.Task,
					RequestedAt: e.Timestamp,
				}
			default:
				st.unexpected(e)
			}
		}
	}

	if st.IsOpen() {
		st.ClockOut = nil
		if now.After(segmentStart) {
			if st.Status == StatusClockedIn {
				st.Worked += now.Sub(segmentStart)
			} else {
				st.OnBreak += now.Sub(segmentStart)
			}
		}
	}
	return st
}

func (s *DayState) unexpected(e TimeEntry) {
	s.Anomalies = append(s.Anomalies, Anomaly{
		Kind:      AnomalyUnexpectedEntry,
		EntryID:   e.ID,
		EntryType: e.EntryType,
		Timestamp: e.Timestamp,
	})
}

func (s *DayState) currentSession() *WorkSession {
	return &s.Sessions[len(s.Sessions)-1]
}

func (s *DayState) closeBreak(at time.Time) {
	cur := s.currentSession()
	if n := len(cur.Breaks); n > 0 && cur.Breaks[n-1].End == nil {
		cur.Breaks[n-1].End = &at
	}
	s.OpenBreakStart = nil
}

func (s *DayState) closeSession() {
	s.Status = StatusClockedOut
	s.OpenSessionStart = nil
	s.OpenClockInEntryID = ""
	s.OpenBreakStart = nil
	s.PendingProjectChange = nil
}

// abandonSession drops the open segment of a session that was never closed.
// Time already accumulated before its last break is kept.
func (s *DayState) abandonSession() {
	s.currentSession().Incomplete = true
	s.closeSession()
}
