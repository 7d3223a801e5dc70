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

type regularizationRepositoryImpl struct {
	db *database.DB
}

func NewRegularizationRepository(db *database.DB) attendance.RegularizationRepository {
	return &regularizationRepositoryImpl{db: db}
}

const regularizationColumns = `id, organization_id, employee_id, entry_id, requested_clock_out, reason, status, reviewed_by, reviewed_at, created_at`

func scanRegularization(row pgx.Row) (attendance.RegularizationRequest, error) {
	var r attendance.RegularizationRequest
	err := row.Scan(&r.ID, &r.OrganizationID, &r.EmployeeID, &r.EntryID, &r.RequestedClockOut, &r.Reason, &r.Status, &r.ReviewedBy, &r.ReviewedAt, &r.CreatedAt)
	return r, err
}

func (r *regularizationRepositoryImpl) Create(ctx context.Context, req attendance.RegularizationRequest) (attendance.RegularizationRequest, error) {
	q := GetQuerier(ctx, r.db)
	if req.ID == "" {
		id, err := newID()
		if err != nil {
			return attendance.RegularizationRequest{}, err
		}
		req.ID = id
	}
	if req.Status == "" {
		req.Status = attendance.RegularizationPending
	}
	created, err := scanRegularization(q.QueryRow(ctx, `
		INSERT INTO regularization_requests (id, organization_id, employee_id, entry_id, requested_clock_out, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+regularizationColumns,
		req.ID, req.OrganizationID, req.EmployeeID, req.EntryID, req.RequestedClockOut, req.Reason, req.Status,
	))
	if err != nil {
		return attendance.RegularizationRequest{}, fmt.Errorf("create regularization request: %w", err)
	}
	return created, nil
}

func (r *regularizationRepositoryImpl) GetByID(ctx context.Context, id, organizationID string) (attendance.RegularizationRequest, error) {
	q := GetQuerier(ctx, r.db)
	req, err := scanRegularization(q.QueryRow(ctx, `
		SELECT `+regularizationColumns+` FROM regularization_requests WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.RegularizationRequest{}, attendance.ErrRegularizationNotFound
		}
		return attendance.RegularizationRequest{}, err
	}
	return req, nil
}

func (r *regularizationRepositoryImpl) List(ctx context.Context, organizationID string, status *attendance.RegularizationStatus) ([]attendance.RegularizationRequest, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+regularizationColumns+`
		FROM regularization_requests
		WHERE organization_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
	`, organizationID, status)
	if err != nil {
		return nil, fmt.Errorf("list regularization requests: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (attendance.RegularizationRequest, error) {
		return scanRegularization(row)
	})
}

func (r *regularizationRepositoryImpl) HasPending(ctx context.Context, entryID string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM regularization_requests WHERE entry_id = $1 AND status = 'PENDING')
	`, entryID).Scan(&exists)
	return exists, err
}

// UpdateStatus only moves PENDING requests, so a request is reviewed at most once.
func (r *regularizationRepositoryImpl) UpdateStatus(ctx context.Context, id string, status attendance.RegularizationStatus, reviewedBy string, at time.Time) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE regularization_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3
		WHERE id = $4 AND status = 'PENDING'
	`, status, reviewedBy, at, id)
	if err != nil {
		return fmt.Errorf("update regularization request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRegularizationHandled
	}
	return nil
}
