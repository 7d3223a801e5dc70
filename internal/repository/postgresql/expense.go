package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/expense"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type expenseRepositoryImpl struct {
	db *database.DB
}

func NewExpenseRepository(db *database.DB) expense.ExpenseRepository {
	return &expenseRepositoryImpl{db: db}
}

const expenseColumns = `
	id, organization_id, employee_id, expense_date, category, description, merchant, amount, currency,
	status, submitted_at, reviewed_by, reviewed_at, rejection_reason, reimbursed_at, created_at, updated_at`

func scanExpense(row pgx.Row) (expense.Expense, error) {
	var e expense.Expense
	err := row.Scan(
		&e.ID,
		&e.OrganizationID,
		&e.EmployeeID,
		&e.ExpenseDate,
		&e.Category,
		&e.Description,
		&e.Merchant,
		&e.Amount,
		&e.Currency,
		&e.Status,
		&e.SubmittedAt,
		&e.ReviewedBy,
		&e.ReviewedAt,
		&e.RejectionReason,
		&e.ReimbursedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func (r *expenseRepositoryImpl) Create(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	q := GetQuerier(ctx, r.db)
	if e.ID == "" {
		id, err := newID()
		if err != nil {
			return expense.Expense{}, err
		}
		e.ID = id
	}
	created, err := scanExpense(q.QueryRow(ctx, `
		INSERT INTO expenses (id, organization_id, employee_id, expense_date, category, description, merchant, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+expenseColumns,
		e.ID, e.OrganizationID, e.EmployeeID, e.ExpenseDate, e.Category, e.Description, e.Merchant, e.Amount, e.Currency, e.Status,
	))
	if err != nil {
		return expense.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return created, nil
}

func (r *expenseRepositoryImpl) GetByID(ctx context.Context, id, organizationID string) (expense.Expense, error) {
	q := GetQuerier(ctx, r.db)
	e, err := scanExpense(q.QueryRow(ctx, `
		SELECT `+expenseColumns+` FROM expenses WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense.Expense{}, expense.ErrExpenseNotFound
		}
		return expense.Expense{}, err
	}
	return e, nil
}

func (r *expenseRepositoryImpl) List(ctx context.Context, filter expense.ExpenseFilter) ([]expense.Expense, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := []string{"organization_id = $1"}
	args := []any{filter.OrganizationID}
	argIdx := 2

	if filter.EmployeeID != nil {
		where = append(where, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("expense_date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("expense_date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM expenses WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s FROM expenses
		WHERE %s
		ORDER BY expense_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, expenseColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (expense.Expense, error) {
		return scanExpense(row)
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *expenseRepositoryImpl) Update(ctx context.Context, e expense.Expense) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE expenses
		SET expense_date = $1,
			category = $2,
			description = $3,
			merchant = $4,
			amount = $5,
			currency = $6,
			status = $7,
			submitted_at = $8,
			reviewed_by = $9,
			reviewed_at = $10,
			rejection_reason = $11,
			reimbursed_at = $12,
			updated_at = NOW()
		WHERE id = $13 AND organization_id = $14
	`,
		e.ExpenseDate, e.Category, e.Description, e.Merchant, e.Amount, e.Currency, e.Status,
		e.SubmittedAt, e.ReviewedBy, e.ReviewedAt, e.RejectionReason, e.ReimbursedAt,
		e.ID, e.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrExpenseNotFound
	}
	return nil
}

func (r *expenseRepositoryImpl) Delete(ctx context.Context, id, organizationID string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrExpenseNotFound
	}
	return nil
}
