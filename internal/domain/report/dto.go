package report

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

type SummaryRequest struct {
	Period string `json:"period"`
	Date   string `json:"date"`

	ParsedDate time.Time `json:"-"`
}

// Validate defaults to the daily period of today.
func (r *SummaryRequest) Validate(today time.Time) error {
	var errs validator.ValidationErrors

	r.Period = strings.ToLower(strings.TrimSpace(r.Period))
	if r.Period == "" {
		r.Period = string(PeriodDaily)
	}
	if !validator.IsInSlice(r.Period, Periods) {
		errs.Add("period", ErrInvalidPeriod.Error())
	}
	if r.Date == "" {
		r.ParsedDate = today
	} else if d, ok := validator.IsValidDate(r.Date); ok {
		r.ParsedDate = d
	} else {
		errs.Add("date", "date must be a valid date in YYYY-MM-DD format")
	}

	return errs.OrNil()
}

type ExportRequest struct {
	SummaryRequest
	Format string `json:"format"`
}

func (r *ExportRequest) Validate(today time.Time) error {
	var errs validator.ValidationErrors
	if err := r.SummaryRequest.Validate(today); err != nil {
		errs = err.(validator.ValidationErrors)
	}
	r.Format = strings.ToLower(strings.TrimSpace(r.Format))
	if r.Format == "" {
		r.Format = string(FormatCSV)
	}
	if !validator.IsInSlice(r.Format, Formats) {
		errs.Add("format", ErrInvalidFormat.Error())
	}
	return errs.OrNil()
}

type MonthRollupResponse struct {
	Month      string                `json:"month"`
	DaysWorked int                   `json:"days_worked"`
	Compliance attendance.Compliance `json:"compliance"`
}

type SummaryResponse struct {
	EmployeeID string                            `json:"employee_id"`
	Period     string                            `json:"period"`
	From       string                            `json:"from"`
	To         string                            `json:"to"`
	Totals     attendance.Compliance             `json:"totals"`
	Days       []attendance.DailySummaryResponse `json:"days"`
	Months     []MonthRollupResponse             `json:"months,omitempty"`
}

// ExportFile is a rendered report ready to be written to a response or disk.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

func NewSummaryResponse(r Report) SummaryResponse {
	resp := SummaryResponse{
		EmployeeID: r.EmployeeID,
		Period:     string(r.Period),
		From:       r.From.Format("2006-01-02"),
		To:         r.To.Format("2006-01-02"),
		Totals:     r.Totals,
		Days:       make([]attendance.DailySummaryResponse, 0, len(r.Days)),
	}
	for _, d := range r.Days {
		resp.Days = append(resp.Days, attendance.NewDailySummaryResponse(d))
	}
	for _, m := range r.Months {
		resp.Months = append(resp.Months, MonthRollupResponse{
			Month:      m.Month.Format("2006-01"),
			DaysWorked: m.DaysWorked,
			Compliance: m.Compliance,
		})
	}
	return resp
}
