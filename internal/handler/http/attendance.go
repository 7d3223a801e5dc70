package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	ChangeProject(w http.ResponseWriter, r *http.Request)

	Status(w http.ResponseWriter, r *http.Request)
	Entries(w http.ResponseWriter, r *http.Request)

	CancelEntry(w http.ResponseWriter, r *http.Request)
	RectifyEntry(w http.ResponseWriter, r *http.Request)
	ResolveOpenSession(w http.ResponseWriter, r *http.Request)
	ListRegularizations(w http.ResponseWriter, r *http.Request)
	ApproveRegularization(w http.ResponseWriter, r *http.Request)
	RejectRegularization(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

type clockAction func(ctx context.Context, actor user.Actor, req attendance.ClockActionRequest) (attendance.ClockActionResponse, error)

func clock(w http.ResponseWriter, r *http.Request, message string, action clockAction) {
	var req attendance.ClockActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := action(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, message, result)
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	clock(w, r, "Clock in successful", h.attendanceService.ClockIn)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	clock(w, r, "Clock out successful", h.attendanceService.ClockOut)
}

// StartBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	clock(w, r, "Break started", h.attendanceService.StartBreak)
}

// EndBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	clock(w, r, "Break ended", h.attendanceService.EndBreak)
}

// ChangeProject implements AttendanceHandler.
func (h *attendanceHandlerImpl) ChangeProject(w http.ResponseWriter, r *http.Request) {
	var req attendance.ChangeProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.ChangeProject(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Project changed", result)
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.attendanceService.GetStatus(r.Context(), middleware.GetActor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

// Entries implements AttendanceHandler. Managers may pass employee_id.
func (h *attendanceHandlerImpl) Entries(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		employeeID = r.URL.Query().Get("employee_id")
	}

	entries, err := h.attendanceService.ListEntries(r.Context(), middleware.GetActor(r), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, entries)
}

// CancelEntry implements AttendanceHandler.
func (h *attendanceHandlerImpl) CancelEntry(w http.ResponseWriter, r *http.Request) {
	var req attendance.CancelEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.attendanceService.CancelEntry(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Entry cancelled", entry)
}

// RectifyEntry implements AttendanceHandler.
func (h *attendanceHandlerImpl) RectifyEntry(w http.ResponseWriter, r *http.Request) {
	var req attendance.RectifyEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.attendanceService.RectifyEntry(r.Context(), middleware.GetActor(r), chi.URLParam(r, "employeeID"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Entry added", entry)
}

// ResolveOpenSession implements AttendanceHandler.
func (h *attendanceHandlerImpl) ResolveOpenSession(w http.ResponseWriter, r *http.Request) {
	var req attendance.ResolveOpenSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.ResolveOpenSession(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListRegularizations implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListRegularizations(w http.ResponseWriter, r *http.Request) {
	var status *attendance.RegularizationStatus
	if s := queryString(r, "status"); s != nil {
		st := attendance.RegularizationStatus(strings.ToUpper(*s))
		status = &st
	}

	list, err := h.attendanceService.ListRegularizations(r.Context(), middleware.GetActor(r), status)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, list)
}

// ApproveRegularization implements AttendanceHandler.
func (h *attendanceHandlerImpl) ApproveRegularization(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ApproveRegularization(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Regularization approved", result)
}

// RejectRegularization implements AttendanceHandler.
func (h *attendanceHandlerImpl) RejectRegularization(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.RejectRegularization(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Regularization rejected", result)
}
