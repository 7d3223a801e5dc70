package expense

import (
	"context"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
)

type ExpenseService interface {
	Create(ctx context.Context, actor user.Actor, req CreateExpenseRequest) (ExpenseResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (ExpenseResponse, error)
	List(ctx context.Context, actor user.Actor, filter ExpenseFilter) (ListExpenseResponse, error)
	Update(ctx context.Context, actor user.Actor, req UpdateExpenseRequest) (ExpenseResponse, error)
	Delete(ctx context.Context, actor user.Actor, id string) error

	Submit(ctx context.Context, actor user.Actor, id string) (ExpenseResponse, error)
	Approve(ctx context.Context, actor user.Actor, id string) (ExpenseResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string, req RejectExpenseRequest) (ExpenseResponse, error)
	Reimburse(ctx context.Context, actor user.Actor, id string) (ExpenseResponse, error)
}
