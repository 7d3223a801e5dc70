package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	sheetName = "Informe"
	utf8BOM   = "\uFEFF"
)

var (
	dailyHeaders = []string{"Fecha", "Tipo", "Hora", "Horas Esperadas", "Horas Trabajadas", "Cumplimiento", "Estado", "Observaciones"}
	rangeHeaders = []string{"Fecha", "Día", "Entrada", "Salida", "Pausas", "Horas Esperadas", "Horas Trabajadas", "Diferencia", "Cumplimiento", "Estado"}
	yearHeaders  = []string{"Mes", "Días Trabajados", "Horas Esperadas", "Horas Trabajadas", "Diferencia", "Cumplimiento"}

	weekdays = [...]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}
	months   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

	titleES = cases.Title(language.Spanish)
)

// Table is the tabular form of a report shared by both writers.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Tabulate lays a report out with the headers of its period. Times are shown in loc.
func Tabulate(r report.Report, loc *time.Location) Table {
	switch r.Period {
	case report.PeriodDaily:
		return dailyTable(r, loc)
	case report.PeriodYearly:
		return yearTable(r)
	}
	return rangeTable(r, loc)
}

func dailyTable(r report.Report, loc *time.Location) Table {
	t := Table{Headers: dailyHeaders}
	for _, d := range r.Days {
		day := []string{
			minutes(d.Compliance.ExpectedMinutes),
			minutes(d.Compliance.WorkedMinutes),
			percent(d.Compliance),
			d.Status.Label(),
		}
		if len(d.Entries) == 0 {
			t.Rows = append(t.Rows, append([]string{d.Date.Format("02/01/2006"), "", ""}, append(day, "")...))
			continue
		}
		for _, e := range d.Entries {
			row := []string{d.Date.Format("02/01/2006"), e.EntryType.Label(), e.Timestamp.In(loc).Format("15:04")}
			row = append(row, day...)
			t.Rows = append(t.Rows, append(row, observations(e)))
		}
	}
	return t
}

func rangeTable(r report.Report, loc *time.Location) Table {
	t := Table{Headers: rangeHeaders}
	for _, d := range r.Days {
		t.Rows = append(t.Rows, []string{
			d.Date.Format("02/01/2006"),
			weekdays[d.Date.Weekday()],
			clock(d.State.ClockIn, loc),
			clock(d.State.ClockOut, loc),
			minutes(int(d.State.OnBreak / time.Minute)),
			minutes(d.Compliance.ExpectedMinutes),
			minutes(d.Compliance.WorkedMinutes),
			minutes(d.Compliance.DeviationMinutes),
			percent(d.Compliance),
			d.Status.Label(),
		})
	}
	return t
}

func yearTable(r report.Report) Table {
	t := Table{Headers: yearHeaders}
	for _, m := range r.Months {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%s %d", titleES.String(months[m.Month.Month()-1]), m.Month.Year()),
			fmt.Sprintf("%d", m.DaysWorked),
			minutes(m.Compliance.ExpectedMinutes),
			minutes(m.Compliance.WorkedMinutes),
			minutes(m.Compliance.DeviationMinutes),
			percent(m.Compliance),
		})
	}
	return t
}

func observations(e attendance.TimeEntry) string {
	var notes []string
	if e.IsManual {
		note := "Manual"
		if e.AuditNote != nil && *e.AuditNote != "" {
			note += ": " + *e.AuditNote
		}
		notes = append(notes, note)
	}
	if e.IsWithinAllowedArea != nil && !*e.IsWithinAllowedArea {
		notes = append(notes, "Fuera de zona")
	}
	if e.ProjectID != nil {
		notes = append(notes, "Proyecto "+*e.ProjectID)
	}
	return strings.Join(notes, "; ")
}

func minutes(m int) string {
	return validator.FormatMinutes(m)
}

func percent(c attendance.Compliance) string {
	if c.ExpectedMinutes == 0 {
		return "-"
	}
	return fmt.Sprintf("%d%%", c.ProgressPercentage)
}

func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("15:04")
}

// Render writes the report in the requested format.
func Render(r report.Report, format report.Format, loc *time.Location) ([]byte, error) {
	t := Tabulate(r, loc)
	if format == report.FormatXLSX {
		return WriteXLSX(t)
	}
	return WriteCSV(t)
}

// WriteCSV encodes the table as RFC 4180 CSV prefixed with a UTF-8 BOM so
// spreadsheet applications pick up the accents.
func WriteCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteXLSX renders the table on a single sheet with a bold header row.
func WriteXLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	if err := setRow(f, 1, t.Headers); err != nil {
		return nil, err
	}
	for i, row := range t.Rows {
		if err := setRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheetName, cell, &values)
}
