package expense

import "context"

type ExpenseRepository interface {
	Create(ctx context.Context, e Expense) (Expense, error)
	GetByID(ctx context.Context, id, organizationID string) (Expense, error)
	List(ctx context.Context, filter ExpenseFilter) ([]Expense, int64, error)
	Update(ctx context.Context, e Expense) error
	Delete(ctx context.Context, id, organizationID string) error
}
