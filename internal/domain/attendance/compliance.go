package attendance

import "math"

type Compliance struct {
	ExpectedMinutes    int  `json:"expected_minutes"`
	WorkedMinutes      int  `json:"worked_minutes"`
	RemainingMinutes   int  `json:"remaining_minutes"`
	IsCompleted        bool `json:"is_completed"`
	IsWorkingOnAbsence bool `json:"is_working_on_absence"`
	// ProgressPercentage may exceed 100. It is 0 when nothing is expected.
	ProgressPercentage int `json:"progress_percentage"`
	DeviationMinutes   int `json:"deviation_minutes"`
}

// ComputeCompliance compares worked minutes against the expected journey.
func ComputeCompliance(expectedMinutes, workedMinutes int) Compliance {
	c := Compliance{
		ExpectedMinutes:    expectedMinutes,
		WorkedMinutes:      workedMinutes,
		RemainingMinutes:   max(0, expectedMinutes-workedMinutes),
		IsCompleted:        expectedMinutes > 0 && workedMinutes >= expectedMinutes,
		IsWorkingOnAbsence: expectedMinutes == 0 && workedMinutes > 0,
		DeviationMinutes:   workedMinutes - expectedMinutes,
	}
	if expectedMinutes > 0 {
		c.ProgressPercentage = int(math.Round(float64(workedMinutes) / float64(expectedMinutes) * 100))
	}
	return c
}

type DayStatus string

const (
	DayCompleted   DayStatus = "COMPLETED"
	DayInProgress  DayStatus = "IN_PROGRESS"
	DayIncomplete  DayStatus = "INCOMPLETE"
	DayNoRecord    DayStatus = "NO_RECORD"
	DayOffSchedule DayStatus = "OFF_SCHEDULE"
	DayNonWorking  DayStatus = "NON_WORKING"
)

// Label returns the Spanish label used in exports.
func (s DayStatus) Label() string {
	switch s {
	case DayCompleted:
		return "Completado"
	case DayInProgress:
		return "En curso"
	case DayIncomplete:
		return "Incompleto"
	case DayNoRecord:
		return "Sin fichajes"
	case DayOffSchedule:
		return "Fuera de horario"
	case DayNonWorking:
		return "No laborable"
	}
	return string(s)
}

// ClassifyDay derives the day status from the replayed state and its compliance.
func ClassifyDay(state DayState, c Compliance) DayStatus {
	switch {
	case state.IsOpen():
		return DayInProgress
	case c.IsCompleted:
		return DayCompleted
	case c.IsWorkingOnAbsence:
		return DayOffSchedule
	case c.ExpectedMinutes == 0:
		return DayNonWorking
	case state.ClockIn == nil:
		return DayNoRecord
	default:
		return DayIncomplete
	}
}
