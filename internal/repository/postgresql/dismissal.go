package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type dismissalRepositoryImpl struct {
	db *database.DB
}

func NewDismissalRepository(db *database.DB) notification.DismissalRepository {
	return &dismissalRepositoryImpl{db: db}
}

func (r *dismissalRepositoryImpl) Dismiss(ctx context.Context, d notification.Dismissal) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO alert_dismissals (employee_id, kind, reference_id, dismissed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, kind, reference_id) DO NOTHING
	`, d.EmployeeID, d.Kind, d.ReferenceID, d.DismissedAt)
	if err != nil {
		return fmt.Errorf("dismiss alert: %w", err)
	}
	return nil
}

func (r *dismissalRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]notification.Dismissal, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT employee_id, kind, reference_id, dismissed_at
		FROM alert_dismissals
		WHERE employee_id = $1
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list dismissals: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (notification.Dismissal, error) {
		var d notification.Dismissal
		err := row.Scan(&d.EmployeeID, &d.Kind, &d.ReferenceID, &d.DismissedAt)
		return d, err
	})
}
