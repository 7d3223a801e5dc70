package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type timeEntryRepositoryImpl struct {
	db *database.DB
}

func NewTimeEntryRepository(db *database.DB) attendance.TimeEntryRepository {
	return &timeEntryRepositoryImpl{db: db}
}

const timeEntryColumns = `
	id, organization_id, employee_id, work_date, entry_type, occurred_at, project_id, task,
	latitude, longitude, accuracy, is_within_allowed_area, requires_review, is_manual,
	is_cancelled, cancellation_reason, cancelled_by, cancelled_at, audit_note, created_by, created_at`

func scanTimeEntry(row pgx.Row) (attendance.TimeEntry, error) {
	var e attendance.TimeEntry
	err := row.Scan(
		&e.ID,
		&e.OrganizationID,
		&e.EmployeeID,
		&e.WorkDate,
		&e.EntryType,
		&e.Timestamp,
		&e.ProjectID,
		&e.Task,
		&e.Latitude,
		&e.Longitude,
		&e.Accuracy,
		&e.IsWithinAllowedArea,
		&e.RequiresReview,
		&e.IsManual,
		&e.IsCancelled,
		&e.CancellationReason,
		&e.CancelledBy,
		&e.CancelledAt,
		&e.AuditNote,
		&e.CreatedBy,
		&e.CreatedAt,
	)
	return e, err
}

func (r *timeEntryRepositoryImpl) Create(ctx context.Context, e attendance.TimeEntry) (attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)
	if e.ID == "" {
		id, err := newID()
		if err != nil {
			return attendance.TimeEntry{}, err
		}
		e.ID = id
	}

	created, err := scanTimeEntry(q.QueryRow(ctx, `
		INSERT INTO time_entries (
			id, organization_id, employee_id, work_date, entry_type, occurred_at, project_id, task,
			latitude, longitude, accuracy, is_within_allowed_area, requires_review, is_manual,
			audit_note, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+timeEntryColumns,
		e.ID,
		e.OrganizationID,
		e.EmployeeID,
		e.WorkDate,
		e.EntryType,
		e.Timestamp,
		e.ProjectID,
		e.Task,
		e.Latitude,
		e.Longitude,
		e.Accuracy,
		e.IsWithinAllowedArea,
		e.RequiresReview,
		e.IsManual,
		e.AuditNote,
		e.CreatedBy,
	))
	if err != nil {
		return attendance.TimeEntry{}, fmt.Errorf("create time entry: %w", err)
	}
	return created, nil
}

func (r *timeEntryRepositoryImpl) GetByID(ctx context.Context, id, organizationID string) (attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)
	e, err := scanTimeEntry(q.QueryRow(ctx, `
		SELECT `+timeEntryColumns+` FROM time_entries WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.TimeEntry{}, attendance.ErrEntryNotFound
		}
		return attendance.TimeEntry{}, err
	}
	return e, nil
}

func (r *timeEntryRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]attendance.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (attendance.TimeEntry, error) {
		return scanTimeEntry(row)
	})
}

// ListByWorkDate returns every entry of the day, cancelled ones included, in
// timestamp order.
func (r *timeEntryRepositoryImpl) ListByWorkDate(ctx context.Context, employeeID string, workDate time.Time) ([]attendance.TimeEntry, error) {
	return r.list(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE employee_id = $1 AND work_date = $2
		ORDER BY occurred_at, created_at
	`, employeeID, workDate)
}

func (r *timeEntryRepositoryImpl) ListByWorkDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.TimeEntry, error) {
	return r.list(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE employee_id = $1 AND work_date BETWEEN $2 AND $3
		ORDER BY work_date, occurred_at, created_at
	`, employeeID, from, to)
}

func (r *timeEntryRepositoryImpl) LastWorkDateBefore(ctx context.Context, employeeID string, before time.Time) (time.Time, error) {
	q := GetQuerier(ctx, r.db)
	var d *time.Time
	err := q.QueryRow(ctx, `
		SELECT MAX(work_date) FROM time_entries
		WHERE employee_id = $1 AND work_date < $2 AND is_cancelled = FALSE
	`, employeeID, before).Scan(&d)
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return time.Time{}, attendance.ErrEntryNotFound
	}
	return *d, nil
}

// ListOpenSessions finds employee-days whose last active clock entry is not a
// CLOCK_OUT. Replay confirms the verdict in the service.
func (r *timeEntryRepositoryImpl) ListOpenSessions(ctx context.Context, since time.Time) ([]attendance.OpenSessionRef, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT organization_id, employee_id, work_date
		FROM (
			SELECT DISTINCT ON (employee_id, work_date)
				   organization_id, employee_id, work_date, entry_type
			FROM time_entries
			WHERE work_date >= $1
			  AND is_cancelled = FALSE
			  AND entry_type <> 'PROJECT_SWITCH'
			ORDER BY employee_id, work_date, occurred_at DESC, created_at DESC
		) last_entries
		WHERE entry_type <> 'CLOCK_OUT'
		ORDER BY work_date, employee_id
	`, since)
	if err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}
	defer rows.Close()

	var out []attendance.OpenSessionRef
	for rows.Next() {
		var ref attendance.OpenSessionRef
		if err := rows.Scan(&ref.OrganizationID, &ref.EmployeeID, &ref.WorkDate); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *timeEntryRepositoryImpl) Cancel(ctx context.Context, id, reason, cancelledBy string, auditNote *string, at time.Time) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE time_entries
		SET is_cancelled = TRUE,
			cancellation_reason = $1,
			cancelled_by = $2,
			cancelled_at = $3,
			audit_note = COALESCE($4, audit_note)
		WHERE id = $5 AND is_cancelled = FALSE
	`, reason, cancelledBy, at, auditNote, id)
	if err != nil {
		return fmt.Errorf("cancel time entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrEntryAlreadyCancelled
	}
	return nil
}

// LockEmployee takes a transaction scoped advisory lock keyed by the employee.
// Outside a transaction the lock would be released immediately, so callers must
// run it through a Transactor.
func (r *timeEntryRepositoryImpl) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, employeeID); err != nil {
		return fmt.Errorf("lock employee: %w", err)
	}
	return nil
}
