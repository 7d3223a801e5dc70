package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/expense"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/timebank"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth and user errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountLocked):
		writeError(w, http.StatusLocked, "ACCOUNT_LOCKED", err.Error())
	case errors.Is(err, auth.ErrAccountInactive):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrSamePassword):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, err.Error())
	case errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrCannotModifySelf),
		errors.Is(err, user.ErrEmployeeProfileRequired),
		errors.Is(err, attendance.ErrUnauthorized),
		errors.Is(err, expense.ErrNotExpenseOwner),
		errors.Is(err, expense.ErrCannotReviewOwnExpense):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrUnknownAction), errors.Is(err, user.ErrAccountNotLocked):
		BadRequest(w, err.Error(), nil)

	// Organization and employee errors
	case errors.Is(err, organization.ErrOrganizationNotFound):
		NotFound(w, "Organization not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, err.Error())
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")

	// Attendance errors
	case errors.Is(err, attendance.ErrAlreadyClockedIn),
		errors.Is(err, attendance.ErrNotClockedIn),
		errors.Is(err, attendance.ErrAlreadyOnBreak),
		errors.Is(err, attendance.ErrNotOnBreak),
		errors.Is(err, attendance.ErrEntryAlreadyCancelled),
		errors.Is(err, attendance.ErrRegularizationPending),
		errors.Is(err, attendance.ErrRegularizationHandled):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrEntryNotFound):
		NotFound(w, "Time entry not found")
	case errors.Is(err, attendance.ErrRegularizationNotFound):
		NotFound(w, "Regularization request not found")
	case errors.Is(err, attendance.ErrInvalidCorrection),
		errors.Is(err, attendance.ErrNoOpenSession),
		errors.Is(err, attendance.ErrInvalidResolution):
		BadRequest(w, err.Error(), nil)

	// Schedule and absence errors
	case errors.Is(err, schedule.ErrTemplateNotFound),
		errors.Is(err, schedule.ErrPeriodNotFound),
		errors.Is(err, schedule.ErrDayPatternNotFound),
		errors.Is(err, schedule.ErrAssignmentNotFound),
		errors.Is(err, absence.ErrAbsenceNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, schedule.ErrTemplateNameExists),
		errors.Is(err, schedule.ErrTemplateInUse),
		errors.Is(err, schedule.ErrOverlappingAssignment),
		errors.Is(err, absence.ErrOverlappingAbsence):
		Conflict(w, err.Error())
	case errors.Is(err, schedule.ErrInvalidDayOfWeek),
		errors.Is(err, schedule.ErrInvalidTemplateFile),
		errors.Is(err, schedule.ErrEmployeeIDRequired),
		errors.Is(err, schedule.ErrInvalidDateFormat):
		BadRequest(w, err.Error(), nil)

	// Time bank errors
	case errors.Is(err, timebank.ErrDayStillOpen):
		Conflict(w, err.Error())
	case errors.Is(err, timebank.ErrFutureDate), errors.Is(err, timebank.ErrZeroAdjustment):
		BadRequest(w, err.Error(), nil)

	// Expense errors
	case errors.Is(err, expense.ErrExpenseNotFound):
		NotFound(w, "Expense not found")
	case errors.Is(err, expense.ErrInvalidStatusTransition), errors.Is(err, expense.ErrExpenseNotEditable):
		Conflict(w, err.Error())

	// Notification errors
	case errors.Is(err, notification.ErrAlertNotDismissible):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, notification.ErrQueueFull):
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
