package report

import (
	"context"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
)

type ReportService interface {
	// Build loads the summaries of the period containing date and rolls them up.
	Build(ctx context.Context, organizationID, employeeID string, period Period, date time.Time) (Report, error)

	Summary(ctx context.Context, actor user.Actor, employeeID string, req SummaryRequest) (SummaryResponse, error)
	Export(ctx context.Context, actor user.Actor, employeeID string, req ExportRequest) (ExportFile, error)
}
