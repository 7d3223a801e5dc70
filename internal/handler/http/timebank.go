package http

import (
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/timebank"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

type TimeBankHandler interface {
	Balance(w http.ResponseWriter, r *http.Request)
	Ledger(w http.ResponseWriter, r *http.Request)
	Adjust(w http.ResponseWriter, r *http.Request)
	Post(w http.ResponseWriter, r *http.Request)
}

type timeBankHandlerImpl struct {
	timeBankService timebank.TimeBankService
}

func NewTimeBankHandler(timeBankService timebank.TimeBankService) TimeBankHandler {
	return &timeBankHandlerImpl{timeBankService: timeBankService}
}

// Balance implements TimeBankHandler.
func (h *timeBankHandlerImpl) Balance(w http.ResponseWriter, r *http.Request) {
	resp, err := h.timeBankService.Balance(r.Context(), middleware.GetActor(r), r.URL.Query().Get("employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// Ledger implements TimeBankHandler.
func (h *timeBankHandlerImpl) Ledger(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.timeBankService.Ledger(r.Context(), middleware.GetActor(r), r.URL.Query().Get("employee_id"), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, entries)
}

// Adjust implements TimeBankHandler.
func (h *timeBankHandlerImpl) Adjust(w http.ResponseWriter, r *http.Request) {
	var req timebank.AdjustmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.timeBankService.Adjust(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Adjustment recorded", entry)
}

// Post implements TimeBankHandler. It re-posts ?date= for the caller's
// organization; already posted days only receive the difference.
func (h *timeBankHandlerImpl) Post(w http.ResponseWriter, r *http.Request) {
	date, ok := validator.IsValidDate(r.URL.Query().Get("date"))
	if !ok {
		var errs validator.ValidationErrors
		errs.Add("date", "date must be a valid date in YYYY-MM-DD format")
		response.HandleError(w, errs)
		return
	}

	result, err := h.timeBankService.PostDate(r.Context(), middleware.GetActor(r).OrganizationID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Time bank posted", result)
}
