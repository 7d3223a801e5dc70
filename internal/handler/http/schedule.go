package http

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ScheduleHandler interface {
	// Templates
	CreateTemplate(w http.ResponseWriter, r *http.Request)
	ImportTemplate(w http.ResponseWriter, r *http.Request)
	ListTemplates(w http.ResponseWriter, r *http.Request)
	GetTemplate(w http.ResponseWriter, r *http.Request)
	UpdateTemplate(w http.ResponseWriter, r *http.Request)
	DeleteTemplate(w http.ResponseWriter, r *http.Request)

	// Periods
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	UpdatePeriod(w http.ResponseWriter, r *http.Request)
	DeletePeriod(w http.ResponseWriter, r *http.Request)
	UpsertDayPattern(w http.ResponseWriter, r *http.Request)

	// Assignments
	CreateAssignment(w http.ResponseWriter, r *http.Request)
	ListAssignments(w http.ResponseWriter, r *http.Request)
	DeleteAssignment(w http.ResponseWriter, r *http.Request)

	Effective(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{scheduleService: scheduleService}
}

// CreateTemplate implements ScheduleHandler.
func (h *scheduleHandlerImpl) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tmpl, err := h.scheduleService.CreateTemplate(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Schedule template created", tmpl)
}

// ImportTemplate implements ScheduleHandler. The body is a YAML document.
func (h *scheduleHandlerImpl) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		response.BadRequest(w, "Failed to read request body", nil)
		return
	}

	tmpl, err := h.scheduleService.ImportTemplate(r.Context(), middleware.GetActor(r), data)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Schedule template imported", tmpl)
}

// ListTemplates implements ScheduleHandler.
func (h *scheduleHandlerImpl) ListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.scheduleService.ListTemplates(r.Context(), middleware.GetActor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, list)
}

// GetTemplate implements ScheduleHandler.
func (h *scheduleHandlerImpl) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.scheduleService.GetTemplate(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, tmpl)
}

// UpdateTemplate implements ScheduleHandler.
func (h *scheduleHandlerImpl) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpdateTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	tmpl, err := h.scheduleService.UpdateTemplate(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Schedule template updated", tmpl)
}

// DeleteTemplate implements ScheduleHandler.
func (h *scheduleHandlerImpl) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleService.DeleteTemplate(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Schedule template deleted", nil)
}

// CreatePeriod implements ScheduleHandler.
func (h *scheduleHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreatePeriodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.TemplateID = chi.URLParam(r, "id")

	period, err := h.scheduleService.CreatePeriod(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Schedule period created", period)
}

// UpdatePeriod implements ScheduleHandler.
func (h *scheduleHandlerImpl) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpdatePeriodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	period, err := h.scheduleService.UpdatePeriod(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Schedule period updated", period)
}

// DeletePeriod implements ScheduleHandler.
func (h *scheduleHandlerImpl) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleService.DeletePeriod(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Schedule period deleted", nil)
}

// UpsertDayPattern implements ScheduleHandler. {day} is the ISO weekday.
func (h *scheduleHandlerImpl) UpsertDayPattern(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		response.HandleError(w, schedule.ErrInvalidDayOfWeek)
		return
	}
	var req schedule.DayPatternRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.DayOfWeek = day

	period, err := h.scheduleService.UpsertDayPattern(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Day pattern saved", period)
}

// CreateAssignment implements ScheduleHandler.
func (h *scheduleHandlerImpl) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateAssignmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	assignment, err := h.scheduleService.CreateAssignment(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Schedule assigned", assignment)
}

// ListAssignments implements ScheduleHandler.
func (h *scheduleHandlerImpl) ListAssignments(w http.ResponseWriter, r *http.Request) {
	list, err := h.scheduleService.ListAssignments(r.Context(), middleware.GetActor(r), r.URL.Query().Get("employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, list)
}

// DeleteAssignment implements ScheduleHandler.
func (h *scheduleHandlerImpl) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleService.DeleteAssignment(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Schedule assignment deleted", nil)
}

// Effective implements ScheduleHandler.
func (h *scheduleHandlerImpl) Effective(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if date.IsZero() {
		date = time.Now()
	}

	eff, err := h.scheduleService.GetEffectiveSchedule(r.Context(), middleware.GetActor(r), r.URL.Query().Get("employee_id"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, eff)
}
