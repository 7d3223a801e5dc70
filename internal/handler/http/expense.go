package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/expense"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ExpenseHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Reimburse(w http.ResponseWriter, r *http.Request)
}

type expenseHandlerImpl struct {
	expenseService expense.ExpenseService
}

func NewExpenseHandler(expenseService expense.ExpenseService) ExpenseHandler {
	return &expenseHandlerImpl{expenseService: expenseService}
}

// Create implements ExpenseHandler.
func (h *expenseHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req expense.CreateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.expenseService.Create(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Expense created", resp)
}

// Get implements ExpenseHandler.
func (h *expenseHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.expenseService.Get(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

func expenseFilter(r *http.Request) expense.ExpenseFilter {
	filter := expense.ExpenseFilter{
		EmployeeID: queryString(r, "employee_id"),
		Status:     queryString(r, "status"),
		From:       queryString(r, "from"),
		To:         queryString(r, "to"),
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return filter
}

// List implements ExpenseHandler.
func (h *expenseHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, expenseFilter(r))
}

// Review implements ExpenseHandler. It lists submitted expenses unless another
// status is requested.
func (h *expenseHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	filter := expenseFilter(r)
	if filter.Status == nil {
		submitted := string(expense.StatusSubmitted)
		filter.Status = &submitted
	}
	h.list(w, r, filter)
}

func (h *expenseHandlerImpl) list(w http.ResponseWriter, r *http.Request, filter expense.ExpenseFilter) {
	list, err := h.expenseService.List(r.Context(), middleware.GetActor(r), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if list.Limit > 0 {
		totalPages = int((list.TotalCount + int64(list.Limit) - 1) / int64(list.Limit))
	}
	response.SuccessWithMeta(w, list, &response.Meta{
		Page:       list.Page,
		Limit:      list.Limit,
		TotalItems: list.TotalCount,
		TotalPages: totalPages,
	})
}

// Update implements ExpenseHandler.
func (h *expenseHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req expense.UpdateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	resp, err := h.expenseService.Update(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Expense updated", resp)
}

// Delete implements ExpenseHandler.
func (h *expenseHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.expenseService.Delete(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Expense deleted", nil)
}

type expenseTransition func(ctx context.Context, actor user.Actor, id string) (expense.ExpenseResponse, error)

func (h *expenseHandlerImpl) transition(w http.ResponseWriter, r *http.Request, message string, fn expenseTransition) {
	resp, err := fn(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, message, resp)
}

// Submit implements ExpenseHandler.
func (h *expenseHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Expense submitted", h.expenseService.Submit)
}

// Approve implements ExpenseHandler.
func (h *expenseHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Expense approved", h.expenseService.Approve)
}

// Reimburse implements ExpenseHandler.
func (h *expenseHandlerImpl) Reimburse(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Expense reimbursed", h.expenseService.Reimburse)
}

// Reject implements ExpenseHandler.
func (h *expenseHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req expense.RejectExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.expenseService.Reject(r.Context(), middleware.GetActor(r), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Expense rejected", resp)
}
