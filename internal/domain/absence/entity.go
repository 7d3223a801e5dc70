package absence

import "time"

type AbsenceType string

const (
	AbsenceVacation  AbsenceType = "VACATION"
	AbsenceSickLeave AbsenceType = "SICK_LEAVE"
	AbsencePersonal  AbsenceType = "PERSONAL"
	AbsenceOther     AbsenceType = "OTHER"
)

var AbsenceTypes = []string{
	string(AbsenceVacation),
	string(AbsenceSickLeave),
	string(AbsencePersonal),
	string(AbsenceOther),
}

// Absence is a full-day absence covering [StartDate, EndDate].
type Absence struct {
	ID             string
	OrganizationID string
	EmployeeID     string
	AbsenceType    AbsenceType
	StartDate      time.Time
	EndDate        time.Time
	Reason         *string
	CreatedBy      string
	CreatedAt      time.Time
}
