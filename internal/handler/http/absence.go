package http

import (
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AbsenceHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type absenceHandlerImpl struct {
	absenceService absence.AbsenceService
}

func NewAbsenceHandler(absenceService absence.AbsenceService) AbsenceHandler {
	return &absenceHandlerImpl{absenceService: absenceService}
}

// Create implements AbsenceHandler.
func (h *absenceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req absence.CreateAbsenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.absenceService.Create(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Absence registered", resp)
}

// List implements AbsenceHandler.
func (h *absenceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := absence.ListAbsenceFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		From:       from,
		To:         to,
	}
	list, err := h.absenceService.List(r.Context(), middleware.GetActor(r), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, list)
}

// Delete implements AbsenceHandler.
func (h *absenceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.absenceService.Delete(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Absence deleted", nil)
}
