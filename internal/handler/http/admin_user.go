package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

// AdminUserHandler serves /api/admin/users. Its responses are not wrapped in
// the envelope; they always use user.AdminUserResponse.
type AdminUserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Execute(w http.ResponseWriter, r *http.Request)
}

type adminUserHandlerImpl struct {
	adminUserService user.AdminUserService
}

func NewAdminUserHandler(adminUserService user.AdminUserService) AdminUserHandler {
	return &adminUserHandlerImpl{adminUserService: adminUserService}
}

// List implements AdminUserHandler.
func (h *adminUserHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminUserService.List(r.Context(), middleware.GetActor(r))
	if err != nil {
		status := adminStatus(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			slog.Error("list users failed", "error", err)
			msg = "internal server error"
		}
		response.JSON(w, status, user.AdminUserResponse{Error: msg})
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// Execute implements AdminUserHandler.
func (h *adminUserHandlerImpl) Execute(w http.ResponseWriter, r *http.Request) {
	var req user.AdminUserRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, user.AdminUserResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.adminUserService.Execute(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		status := adminStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("admin user action failed", "action", req.Action, "error", err)
			resp = user.AdminUserResponse{Error: "internal server error"}
		}
		response.JSON(w, status, resp)
		return
	}
	status := http.StatusOK
	if user.AdminAction(req.Action) == user.ActionCreate {
		status = http.StatusCreated
	}
	response.JSON(w, status, resp)
}

func adminStatus(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs),
		errors.Is(err, user.ErrUnknownAction),
		errors.Is(err, user.ErrAccountNotLocked):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrCannotModifySelf):
		return http.StatusForbidden
	case errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrUserEmailExists),
		errors.Is(err, employee.ErrEmployeeCodeExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
