package expense

import "errors"

var (
	ErrExpenseNotFound         = errors.New("expense not found")
	ErrInvalidStatusTransition = errors.New("invalid expense status transition")
	ErrExpenseNotEditable      = errors.New("only draft or rejected expenses can be modified")
	ErrNotExpenseOwner         = errors.New("only the owner can modify this expense")
	ErrCannotReviewOwnExpense  = errors.New("managers cannot review their own expenses")
)
