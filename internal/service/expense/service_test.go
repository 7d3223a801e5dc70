package expense

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/expense"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memExpenses struct {
	items map[string]expense.Expense
	seq   int
}

func (m *memExpenses) Create(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	m.seq++
	e.ID = fmt.Sprintf("exp-%d", m.seq)
	m.items[e.ID] = e
	return e, nil
}

func (m *memExpenses) GetByID(ctx context.Context, id, organizationID string) (expense.Expense, error) {
	e, ok := m.items[id]
	if !ok || e.OrganizationID != organizationID {
		return expense.Expense{}, expense.ErrExpenseNotFound
	}
	return e, nil
}

func (m *memExpenses) List(ctx context.Context, f expense.ExpenseFilter) ([]expense.Expense, int64, error) {
	var out []expense.Expense
	for i := 1; i <= m.seq; i++ {
		e, ok := m.items[fmt.Sprintf("exp-%d", i)]
		if !ok || e.OrganizationID != f.OrganizationID {
			continue
		}
		if f.EmployeeID != nil && e.EmployeeID != *f.EmployeeID {
			continue
		}
		if f.Status != nil && string(e.Status) != *f.Status {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (m *memExpenses) Update(ctx context.Context, e expense.Expense) error {
	if _, ok := m.items[e.ID]; !ok {
		return expense.ErrExpenseNotFound
	}
	m.items[e.ID] = e
	return nil
}

func (m *memExpenses) Delete(ctx context.Context, id, organizationID string) error {
	delete(m.items, id)
	return nil
}

type memEmployees struct {
	employee.EmployeeRepository
	items map[string]employee.Employee
}

func (m *memEmployees) GetByID(ctx context.Context, id, organizationID string) (employee.Employee, error) {
	e, ok := m.items[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

type recordingNotifier struct{ events []notification.Event }

func (r *recordingNotifier) Notify(ctx context.Context, e notification.Event) error {
	r.events = append(r.events, e)
	return nil
}

var (
	owner   = user.Actor{UserID: "u-1", EmployeeID: "emp-1", OrganizationID: "org-1", Role: user.RoleEmployee}
	other   = user.Actor{UserID: "u-2", EmployeeID: "emp-2", OrganizationID: "org-1", Role: user.RoleEmployee}
	manager = user.Actor{UserID: "u-9", EmployeeID: "emp-9", OrganizationID: "org-1", Role: user.RoleManager}
)

func newTestService() (expense.ExpenseService, *memExpenses, *recordingNotifier) {
	repo := &memExpenses{items: map[string]expense.Expense{}}
	uid := "u-1"
	employees := &memEmployees{items: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", OrganizationID: "org-1", UserID: &uid},
	}}
	n := &recordingNotifier{}
	now := func() time.Time { return time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC) }
	return NewExpenseService(repo, employees, n, now), repo, n
}

func newExpense(t *testing.T, svc expense.ExpenseService, amount string) expense.ExpenseResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), owner, expense.CreateExpenseRequest{
		ExpenseDate: "2024-03-01",
		Category:    "meals",
		Description: "Lunch with client",
		Amount:      decimal.RequireFromString(amount),
	})
	require.NoError(t, err)
	return resp
}

func TestExpenseLifecycle(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	created := newExpense(t, svc, "42.5")
	assert.Equal(t, "DRAFT", created.Status)
	assert.Equal(t, "42.50", created.Amount)
	assert.Equal(t, "EUR", created.Currency)
	assert.Equal(t, "MEALS", created.Category)

	_, err := svc.Approve(ctx, manager, created.ID)
	assert.ErrorIs(t, err, expense.ErrInvalidStatusTransition)

	submitted, err := svc.Submit(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "SUBMITTED", submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)

	_, err = svc.Update(ctx, owner, expense.UpdateExpenseRequest{ID: created.ID})
	assert.ErrorIs(t, err, expense.ErrExpenseNotEditable)

	approved, err := svc.Approve(ctx, manager, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "u-9", *approved.ReviewedBy)

	reimbursed, err := svc.Reimburse(ctx, manager, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "REIMBURSED", reimbursed.Status)

	require.Len(t, notifier.events, 2)
	assert.Equal(t, notification.EventExpenseStatus, notifier.events[0].Type)
	assert.Equal(t, "u-1", notifier.events[0].RecipientID)
}

func TestExpenseRejectThenEdit(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created := newExpense(t, svc, "10")
	_, err := svc.Submit(ctx, owner, created.ID)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, manager, created.ID, expense.RejectExpenseRequest{})
	assert.Error(t, err)

	rejected, err := svc.Reject(ctx, manager, created.ID, expense.RejectExpenseRequest{Reason: "missing receipt"})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", rejected.Status)

	amount := decimal.RequireFromString("12.30")
	edited, err := svc.Update(ctx, owner, expense.UpdateExpenseRequest{ID: created.ID, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", edited.Status)
	assert.Equal(t, "12.30", edited.Amount)
	assert.Nil(t, edited.RejectionReason)
}

func TestExpenseAccess(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	created := newExpense(t, svc, "5")

	_, err := svc.Get(ctx, other, created.ID)
	assert.ErrorIs(t, err, expense.ErrExpenseNotFound)

	_, err = svc.Submit(ctx, manager, created.ID)
	assert.ErrorIs(t, err, expense.ErrNotExpenseOwner)

	_, err = svc.Approve(ctx, other, created.ID)
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)

	own, err := svc.Create(ctx, manager, expense.CreateExpenseRequest{
		ExpenseDate: "2024-03-01", Category: "TRAVEL", Description: "Train", Amount: decimal.NewFromInt(30),
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, manager, own.ID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, manager, own.ID)
	assert.ErrorIs(t, err, expense.ErrCannotReviewOwnExpense)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	assert.NotContains(t, repo.items, created.ID)
}

func TestExpenseList(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	newExpense(t, svc, "10.10")
	newExpense(t, svc, "5.05")
	_, err := svc.Create(ctx, other, expense.CreateExpenseRequest{
		ExpenseDate: "2024-03-02", Category: "OTHER", Description: "Parking", Amount: decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	mine, err := svc.List(ctx, owner, expense.ExpenseFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.TotalCount)
	assert.Equal(t, "15.15", mine.TotalAmount)
	assert.Equal(t, 1, mine.Page)
	assert.Equal(t, 20, mine.Limit)

	all, err := svc.List(ctx, manager, expense.ExpenseFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.TotalCount)
}
