package report

import (
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

var Periods = []string{string(PeriodDaily), string(PeriodWeekly), string(PeriodMonthly), string(PeriodYearly)}

// Range returns the first and last calendar date of the period containing date.
// Weeks run Monday to Sunday.
func (p Period) Range(date time.Time) (time.Time, time.Time) {
	d := schedule.DateOf(date)
	switch p {
	case PeriodWeekly:
		from := d.AddDate(0, 0, 1-schedule.ISOWeekday(d))
		return from, from.AddDate(0, 0, 6)
	case PeriodMonthly:
		from := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, -1)
	case PeriodYearly:
		from := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return d, d
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var Formats = []string{string(FormatCSV), string(FormatXLSX)}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// MonthRollup aggregates the days of one calendar month.
type MonthRollup struct {
	Month      time.Time
	DaysWorked int
	Compliance attendance.Compliance
}

// Report is the rollup of an employee over a period, built from daily summaries.
type Report struct {
	EmployeeID   string
	EmployeeName string
	Period       Period
	From         time.Time
	To           time.Time
	Days         []attendance.DailySummary
	Months       []MonthRollup
	Totals       attendance.Compliance
	GeneratedAt  time.Time
}

// Build rolls daily summaries up into a report. Days must be sorted by date.
func Build(period Period, from, to time.Time, days []attendance.DailySummary) Report {
	r := Report{Period: period, From: from, To: to, Days: days}

	expected, worked := 0, 0
	for _, d := range days {
		expected += d.Compliance.ExpectedMinutes
		worked += d.Compliance.WorkedMinutes
	}
	r.Totals = attendance.ComputeCompliance(expected, worked)

	if period == PeriodYearly {
		r.Months = rollupMonths(days)
	}
	return r
}

func rollupMonths(days []attendance.DailySummary) []MonthRollup {
	var (
		months []MonthRollup
		idx    = map[time.Month]int{}
		totals = map[time.Month][2]int{}
	)
	for _, d := range days {
		m := d.Date.Month()
		i, ok := idx[m]
		if !ok {
			months = append(months, MonthRollup{
				Month: time.Date(d.Date.Year(), m, 1, 0, 0, 0, 0, time.UTC),
			})
			i = len(months) - 1
			idx[m] = i
		}
		if d.State.ClockIn != nil {
			months[i].DaysWorked++
		}
		t := totals[m]
		t[0] += d.Compliance.ExpectedMinutes
		t[1] += d.Compliance.WorkedMinutes
		totals[m] = t
	}
	for i := range months {
		t := totals[months[i].Month.Month()]
		months[i].Compliance = attendance.ComputeCompliance(t[0], t[1])
	}
	return months
}
