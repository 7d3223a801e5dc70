package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	Summary(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

func summaryRequest(r *http.Request) report.SummaryRequest {
	q := r.URL.Query()
	return report.SummaryRequest{Period: q.Get("period"), Date: q.Get("date")}
}

// Summary implements ReportHandler. Without {employeeID} it reports the caller.
func (h *reportHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.reportService.Summary(r.Context(), middleware.GetActor(r), chi.URLParam(r, "employeeID"), summaryRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// Export implements ReportHandler.
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	req := report.ExportRequest{SummaryRequest: summaryRequest(r), Format: r.URL.Query().Get("format")}
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		employeeID = r.URL.Query().Get("employee_id")
	}

	file, err := h.reportService.Export(r.Context(), middleware.GetActor(r), employeeID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
