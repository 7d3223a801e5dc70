package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/timebank"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type ledgerRepositoryImpl struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) timebank.LedgerRepository {
	return &ledgerRepositoryImpl{db: db}
}

const ledgerColumns = `id, organization_id, employee_id, work_date, kind, expected_minutes, worked_minutes, deviation_minutes, note, created_by, created_at`

func scanLedgerEntry(row pgx.Row) (timebank.LedgerEntry, error) {
	var e timebank.LedgerEntry
	err := row.Scan(&e.ID, &e.OrganizationID, &e.EmployeeID, &e.WorkDate, &e.Kind, &e.ExpectedMinutes, &e.WorkedMinutes, &e.DeviationMinutes, &e.Note, &e.CreatedBy, &e.CreatedAt)
	return e, err
}

func (r *ledgerRepositoryImpl) Append(ctx context.Context, e timebank.LedgerEntry) (timebank.LedgerEntry, error) {
	q := GetQuerier(ctx, r.db)
	if e.ID == "" {
		id, err := newID()
		if err != nil {
			return timebank.LedgerEntry{}, err
		}
		e.ID = id
	}
	created, err := scanLedgerEntry(q.QueryRow(ctx, `
		INSERT INTO time_bank_ledger (id, organization_id, employee_id, work_date, kind, expected_minutes, worked_minutes, deviation_minutes, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+ledgerColumns,
		e.ID, e.OrganizationID, e.EmployeeID, e.WorkDate, e.Kind, e.ExpectedMinutes, e.WorkedMinutes, e.DeviationMinutes, e.Note, e.CreatedBy,
	))
	if err != nil {
		return timebank.LedgerEntry{}, fmt.Errorf("append ledger entry: %w", err)
	}
	return created, nil
}

func (r *ledgerRepositoryImpl) PostedDeviation(ctx context.Context, employeeID string, workDate time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)
	var total int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(deviation_minutes), 0)::int
		FROM time_bank_ledger
		WHERE employee_id = $1 AND work_date = $2 AND kind = 'DAILY'
	`, employeeID, workDate).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("posted deviation: %w", err)
	}
	return total, nil
}

func (r *ledgerRepositoryImpl) Balance(ctx context.Context, employeeID string) (int, error) {
	q := GetQuerier(ctx, r.db)
	var total int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(deviation_minutes), 0)::int FROM time_bank_ledger WHERE employee_id = $1
	`, employeeID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("time bank balance: %w", err)
	}
	return total, nil
}

func (r *ledgerRepositoryImpl) List(ctx context.Context, employeeID string, from, to time.Time) ([]timebank.LedgerEntry, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM time_bank_ledger
		WHERE employee_id = $1 AND work_date BETWEEN $2 AND $3
		ORDER BY work_date, created_at
	`, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (timebank.LedgerEntry, error) {
		return scanLedgerEntry(row)
	})
}
