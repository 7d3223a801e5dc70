package absence

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

type CreateAbsenceRequest struct {
	EmployeeID  string  `json:"employee_id"`
	AbsenceType string  `json:"absence_type"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Reason      *string `json:"reason"`
}

func (r *CreateAbsenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	r.AbsenceType = strings.ToUpper(strings.TrimSpace(r.AbsenceType))
	if !validator.IsInSlice(r.AbsenceType, AbsenceTypes) {
		errs.Add("absence_type", "absence_type must be one of: "+strings.Join(AbsenceTypes, ", "))
	}
	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be a valid date in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("end_date", "end_date must be a valid date in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.OrNil()
}

type ListAbsenceFilter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
}

type AbsenceResponse struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	AbsenceType string  `json:"absence_type"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Reason      *string `json:"reason,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func NewAbsenceResponse(a Absence) AbsenceResponse {
	return AbsenceResponse{
		ID:          a.ID,
		EmployeeID:  a.EmployeeID,
		AbsenceType: string(a.AbsenceType),
		StartDate:   a.StartDate.Format("2006-01-02"),
		EndDate:     a.EndDate.Format("2006-01-02"),
		Reason:      a.Reason,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}
