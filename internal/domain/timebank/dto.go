package timebank

import (
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

type AdjustmentRequest struct {
	EmployeeID string `json:"employee_id"`
	WorkDate   string `json:"work_date"`
	Minutes    int    `json:"minutes"`
	Note       string `json:"note"`

	ParsedWorkDate time.Time `json:"-"`
}

func (r *AdjustmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if d, ok := validator.IsValidDate(r.WorkDate); ok {
		r.ParsedWorkDate = d
	} else {
		errs.Add("work_date", "work_date must be a valid date in YYYY-MM-DD format")
	}
	if r.Minutes == 0 {
		errs.Add("minutes", "minutes must not be zero")
	}
	if validator.IsEmpty(r.Note) {
		errs.Add("note", "note is required for manual adjustments")
	}

	return errs.OrNil()
}

type LedgerEntryResponse struct {
	ID               string  `json:"id"`
	WorkDate         string  `json:"work_date"`
	Kind             string  `json:"kind"`
	ExpectedMinutes  int     `json:"expected_minutes"`
	WorkedMinutes    int     `json:"worked_minutes"`
	DeviationMinutes int     `json:"deviation_minutes"`
	Note             *string `json:"note,omitempty"`
	CreatedBy        string  `json:"created_by"`
	CreatedAt        string  `json:"created_at"`
}

type BalanceResponse struct {
	EmployeeID     string `json:"employee_id"`
	BalanceMinutes int    `json:"balance_minutes"`
	Balance        string `json:"balance"`
}

// PostResult reports what a posting run appended.
type PostResult struct {
	WorkDate        string `json:"work_date"`
	EmployeesPosted int    `json:"employees_posted"`
	EntriesAppended int    `json:"entries_appended"`
	Skipped         int    `json:"skipped"`
}

func NewLedgerEntryResponse(e LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:               e.ID,
		WorkDate:         e.WorkDate.Format("2006-01-02"),
		Kind:             string(e.Kind),
		ExpectedMinutes:  e.ExpectedMinutes,
		WorkedMinutes:    e.WorkedMinutes,
		DeviationMinutes: e.DeviationMinutes,
		Note:             e.Note,
		CreatedBy:        e.CreatedBy,
		CreatedAt:        e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewBalanceResponse(employeeID string, minutes int) BalanceResponse {
	return BalanceResponse{
		EmployeeID:     employeeID,
		BalanceMinutes: minutes,
		Balance:        validator.FormatMinutes(minutes),
	}
}
