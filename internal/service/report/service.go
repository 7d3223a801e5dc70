package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
)

// SummarySource loads the daily summaries a report is rolled up from.
type SummarySource interface {
	Summaries(ctx context.Context, organizationID, employeeID string, from, to time.Time) ([]attendance.DailySummary, error)
}

type reportServiceImpl struct {
	summaries    SummarySource
	employeeRepo employee.EmployeeRepository
	orgRepo      organization.OrganizationRepository
	now          func() time.Time
}

func NewReportService(
	summaries SummarySource,
	employeeRepo employee.EmployeeRepository,
	orgRepo organization.OrganizationRepository,
	now func() time.Time,
) report.ReportService {
	if now == nil {
		now = time.Now
	}
	return &reportServiceImpl{
		summaries:    summaries,
		employeeRepo: employeeRepo,
		orgRepo:      orgRepo,
		now:          now,
	}
}

// Build implements report.ReportService.
func (s *reportServiceImpl) Build(ctx context.Context, organizationID, employeeID string, period report.Period, date time.Time) (report.Report, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID, organizationID)
	if err != nil {
		return report.Report{}, err
	}

	from, to := period.Range(date)
	days, err := s.summaries.Summaries(ctx, organizationID, employeeID, from, to)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to load summaries: %w", err)
	}

	r := report.Build(period, from, to, days)
	r.EmployeeID = emp.ID
	r.EmployeeName = emp.FullName
	r.GeneratedAt = s.now().UTC()
	return r, nil
}

// Summary implements report.ReportService.
func (s *reportServiceImpl) Summary(ctx context.Context, actor user.Actor, employeeID string, req report.SummaryRequest) (report.SummaryResponse, error) {
	employeeID, err := s.authorize(actor, employeeID)
	if err != nil {
		return report.SummaryResponse{}, err
	}
	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return report.SummaryResponse{}, err
	}
	if err := req.Validate(s.today(org)); err != nil {
		return report.SummaryResponse{}, err
	}

	r, err := s.Build(ctx, actor.OrganizationID, employeeID, report.Period(req.Period), req.ParsedDate)
	if err != nil {
		return report.SummaryResponse{}, err
	}
	return report.NewSummaryResponse(r), nil
}

// Export implements report.ReportService.
func (s *reportServiceImpl) Export(ctx context.Context, actor user.Actor, employeeID string, req report.ExportRequest) (report.ExportFile, error) {
	employeeID, err := s.authorize(actor, employeeID)
	if err != nil {
		return report.ExportFile{}, err
	}
	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return report.ExportFile{}, err
	}
	if err := req.Validate(s.today(org)); err != nil {
		return report.ExportFile{}, err
	}

	r, err := s.Build(ctx, actor.OrganizationID, employeeID, report.Period(req.Period), req.ParsedDate)
	if err != nil {
		return report.ExportFile{}, err
	}

	format := report.Format(req.Format)
	data, err := Render(r, format, org.Location())
	if err != nil {
		slog.Error("report export failed", "employee_id", employeeID, "format", format, "error", err)
		return report.ExportFile{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	return report.ExportFile{
		Filename:    Filename(r, format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

// authorize resolves the target employee. An empty ID means the caller.
func (s *reportServiceImpl) authorize(actor user.Actor, employeeID string) (string, error) {
	if employeeID == "" || employeeID == actor.EmployeeID {
		if err := actor.RequireEmployee(); err != nil {
			return "", err
		}
		return actor.EmployeeID, nil
	}
	if !actor.IsManager() {
		return "", user.ErrManagerAccessRequired
	}
	return employeeID, nil
}

func (s *reportServiceImpl) today(org organization.Organization) time.Time {
	return schedule.DateOf(s.now().In(org.Location()))
}

// Filename is e.g. "informe_monthly_E-042_2024-03-01.xlsx".
func Filename(r report.Report, format report.Format) string {
	return fmt.Sprintf("informe_%s_%s_%s.%s", r.Period, r.EmployeeID, r.From.Format("2006-01-02"), format)
}
