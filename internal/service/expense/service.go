package expense

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/expense"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// Notifier is the part of the notification service expenses publish to.
type Notifier interface {
	Notify(ctx context.Context, event notification.Event) error
}

type expenseServiceImpl struct {
	expenseRepo  expense.ExpenseRepository
	employeeRepo employee.EmployeeRepository
	notifier     Notifier
	now          func() time.Time
}

func NewExpenseService(expenseRepo expense.ExpenseRepository, employeeRepo employee.EmployeeRepository, notifier Notifier, now func() time.Time) expense.ExpenseService {
	if now == nil {
		now = time.Now
	}
	return &expenseServiceImpl{
		expenseRepo:  expenseRepo,
		employeeRepo: employeeRepo,
		notifier:     notifier,
		now:          now,
	}
}

// Create implements expense.ExpenseService. New expenses start as drafts.
func (s *expenseServiceImpl) Create(ctx context.Context, actor user.Actor, req expense.CreateExpenseRequest) (expense.ExpenseResponse, error) {
	if err := actor.RequireEmployee(); err != nil {
		return expense.ExpenseResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return expense.ExpenseResponse{}, err
	}

	created, err := s.expenseRepo.Create(ctx, expense.Expense{
		OrganizationID: actor.OrganizationID,
		EmployeeID:     actor.EmployeeID,
		ExpenseDate:    req.ParsedDate,
		Category:       expense.Category(req.Category),
		Description:    strings.TrimSpace(req.Description),
		Merchant:       req.Merchant,
		Amount:         req.Amount.Round(2),
		Currency:       req.Currency,
		Status:         expense.StatusDraft,
	})
	if err != nil {
		return expense.ExpenseResponse{}, err
	}
	return expense.NewExpenseResponse(created), nil
}

// Get implements expense.ExpenseService.
func (s *expenseServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (expense.ExpenseResponse, error) {
	e, err := s.load(ctx, actor, id)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}
	return expense.NewExpenseResponse(e), nil
}

// List implements expense.ExpenseService. Employees only list their own expenses.
func (s *expenseServiceImpl) List(ctx context.Context, actor user.Actor, filter expense.ExpenseFilter) (expense.ListExpenseResponse, error) {
	if err := filter.Validate(); err != nil {
		return expense.ListExpenseResponse{}, err
	}
	filter.OrganizationID = actor.OrganizationID
	if !actor.IsManager() {
		if err := actor.RequireEmployee(); err != nil {
			return expense.ListExpenseResponse{}, err
		}
		filter.EmployeeID = &actor.EmployeeID
	}

	items, total, err := s.expenseRepo.List(ctx, filter)
	if err != nil {
		return expense.ListExpenseResponse{}, err
	}

	resp := expense.ListExpenseResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Expenses:   make([]expense.ExpenseResponse, 0, len(items)),
	}
	sum := decimal.Zero
	for _, e := range items {
		sum = sum.Add(e.Amount)
		resp.Expenses = append(resp.Expenses, expense.NewExpenseResponse(e))
	}
	resp.TotalAmount = sum.StringFixed(2)
	return resp, nil
}

// Update implements expense.ExpenseService. Editing a rejected expense moves it
// back to draft.
func (s *expenseServiceImpl) Update(ctx context.Context, actor user.Actor, req expense.UpdateExpenseRequest) (expense.ExpenseResponse, error) {
	if err := req.Validate(); err != nil {
		return expense.ExpenseResponse{}, err
	}
	e, err := s.loadOwned(ctx, actor, req.ID)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}
	if !e.IsEditable() {
		return expense.ExpenseResponse{}, expense.ErrExpenseNotEditable
	}

	req.Apply(&e)
	if e.Status == expense.StatusRejected {
		e.Status = expense.StatusDraft
		e.RejectionReason = nil
		e.ReviewedBy = nil
		e.ReviewedAt = nil
	}
	e.UpdatedAt = s.now().UTC()

	if err := s.expenseRepo.Update(ctx, e); err != nil {
		return expense.ExpenseResponse{}, err
	}
	return expense.NewExpenseResponse(e), nil
}

// Delete implements expense.ExpenseService.
func (s *expenseServiceImpl) Delete(ctx context.Context, actor user.Actor, id string) error {
	e, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if !e.IsEditable() {
		return expense.ErrExpenseNotEditable
	}
	return s.expenseRepo.Delete(ctx, e.ID, e.OrganizationID)
}

// Submit implements expense.ExpenseService.
func (s *expenseServiceImpl) Submit(ctx context.Context, actor user.Actor, id string) (expense.ExpenseResponse, error) {
	e, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}
	return s.transition(ctx, actor, e, expense.StatusSubmitted, func(e *expense.Expense, now time.Time) {
		e.SubmittedAt = &now
	})
}

// Approve implements expense.ExpenseService.
func (s *expenseServiceImpl) Approve(ctx context.Context, actor user.Actor, id string) (expense.ExpenseResponse, error) {
	e, err := s.loadForReview(ctx, actor, id)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}
	return s.transition(ctx, actor, e, expense.StatusApproved, func(e *expense.Expense, now time.Time) {
		e.ReviewedBy = &actor.UserID
		e.ReviewedAt = &now
	})
}

// Reject implements expense.ExpenseService.
func (s *expenseServiceImpl) Reject(ctx context.Context, actor user.Actor, id string, req expense.RejectExpenseRequest) (expense.ExpenseResponse, error) {
	if err := req.Validate(); err != nil {
		return expense.ExpenseResponse{}, err
	}
	e, err := s.loadForReview(ctx, actor, id)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	return s.transition(ctx, actor, e, expense.StatusRejected, func(e *expense.Expense, now time.Time) {
		e.ReviewedBy = &actor.UserID
		e.ReviewedAt = &now
		e.RejectionReason = &reason
	})
}

// Reimburse implements expense.ExpenseService.
func (s *expenseServiceImpl) Reimburse(ctx context.Context, actor user.Actor, id string) (expense.ExpenseResponse, error) {
	e, err := s.loadForReview(ctx, actor, id)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}
	return s.transition(ctx, actor, e, expense.StatusReimbursed, func(e *expense.Expense, now time.Time) {
		e.ReimbursedAt = &now
	})
}

func (s *expenseServiceImpl) transition(ctx context.Context, actor user.Actor, e expense.Expense, to expense.Status, apply func(*expense.Expense, time.Time)) (expense.ExpenseResponse, error) {
	if !expense.CanTransition(e.Status, to) {
		return expense.ExpenseResponse{}, expense.ErrInvalidStatusTransition
	}
	from := e.Status
	now := s.now().UTC()
	e.Status = to
	e.UpdatedAt = now
	apply(&e, now)

	if err := s.expenseRepo.Update(ctx, e); err != nil {
		return expense.ExpenseResponse{}, err
	}

	slog.Info("expense status changed", "expense_id", e.ID, "from", from, "to", to, "by", actor.UserID)
	resp := expense.NewExpenseResponse(e)
	if e.EmployeeID != actor.EmployeeID {
		s.notifyOwner(ctx, e, resp)
	}
	return resp, nil
}

func (s *expenseServiceImpl) notifyOwner(ctx context.Context, e expense.Expense, resp expense.ExpenseResponse) {
	owner, err := s.employeeRepo.GetByID(ctx, e.EmployeeID, e.OrganizationID)
	if err != nil || owner.UserID == nil {
		return
	}
	if err := s.notifier.Notify(ctx, notification.Event{
		RecipientID: *owner.UserID,
		Type:        notification.EventExpenseStatus,
		Data:        resp,
		CreatedAt:   s.now().UTC(),
	}); err != nil {
		slog.Warn("failed to notify expense owner", "expense_id", e.ID, "error", err)
	}
}

// load returns an expense visible to the actor: their own, or any in the
// organization for managers.
func (s *expenseServiceImpl) load(ctx context.Context, actor user.Actor, id string) (expense.Expense, error) {
	e, err := s.expenseRepo.GetByID(ctx, id, actor.OrganizationID)
	if err != nil {
		return expense.Expense{}, err
	}
	if e.EmployeeID != actor.EmployeeID && !actor.IsManager() {
		return expense.Expense{}, expense.ErrExpenseNotFound
	}
	return e, nil
}

func (s *expenseServiceImpl) loadOwned(ctx context.Context, actor user.Actor, id string) (expense.Expense, error) {
	e, err := s.load(ctx, actor, id)
	if err != nil {
		return expense.Expense{}, err
	}
	if e.EmployeeID != actor.EmployeeID {
		return expense.Expense{}, expense.ErrNotExpenseOwner
	}
	return e, nil
}

func (s *expenseServiceImpl) loadForReview(ctx context.Context, actor user.Actor, id string) (expense.Expense, error) {
	if !actor.IsManager() {
		return expense.Expense{}, user.ErrManagerAccessRequired
	}
	e, err := s.load(ctx, actor, id)
	if err != nil {
		return expense.Expense{}, err
	}
	if e.EmployeeID == actor.EmployeeID {
		return expense.Expense{}, expense.ErrCannotReviewOwnExpense
	}
	return e, nil
}
