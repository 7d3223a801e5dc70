package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type absenceRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceRepository(db *database.DB) absence.AbsenceRepository {
	return &absenceRepositoryImpl{db: db}
}

const absenceColumns = `id, organization_id, employee_id, absence_type, start_date, end_date, reason, created_by, created_at`

func scanAbsence(row pgx.Row) (absence.Absence, error) {
	var a absence.Absence
	err := row.Scan(&a.ID, &a.OrganizationID, &a.EmployeeID, &a.AbsenceType, &a.StartDate, &a.EndDate, &a.Reason, &a.CreatedBy, &a.CreatedAt)
	return a, err
}

func (r *absenceRepositoryImpl) Create(ctx context.Context, a absence.Absence) (absence.Absence, error) {
	q := GetQuerier(ctx, r.db)
	if a.ID == "" {
		id, err := newID()
		if err != nil {
			return absence.Absence{}, err
		}
		a.ID = id
	}
	created, err := scanAbsence(q.QueryRow(ctx, `
		INSERT INTO absences (id, organization_id, employee_id, absence_type, start_date, end_date, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+absenceColumns,
		a.ID, a.OrganizationID, a.EmployeeID, a.AbsenceType, a.StartDate, a.EndDate, a.Reason, a.CreatedBy,
	))
	if err != nil {
		return absence.Absence{}, fmt.Errorf("create absence: %w", err)
	}
	return created, nil
}

func (r *absenceRepositoryImpl) GetByID(ctx context.Context, id, organizationID string) (absence.Absence, error) {
	q := GetQuerier(ctx, r.db)
	a, err := scanAbsence(q.QueryRow(ctx, `
		SELECT `+absenceColumns+` FROM absences WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return absence.Absence{}, absence.ErrAbsenceNotFound
		}
		return absence.Absence{}, err
	}
	return a, nil
}

func (r *absenceRepositoryImpl) FindCovering(ctx context.Context, employeeID string, date time.Time) (absence.Absence, error) {
	q := GetQuerier(ctx, r.db)
	a, err := scanAbsence(q.QueryRow(ctx, `
		SELECT `+absenceColumns+`
		FROM absences
		WHERE employee_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date DESC
		LIMIT 1
	`, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return absence.Absence{}, absence.ErrAbsenceNotFound
		}
		return absence.Absence{}, err
	}
	return a, nil
}

func (r *absenceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]absence.Absence, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+absenceColumns+`
		FROM absences
		WHERE employee_id = $1 AND end_date >= $2 AND start_date <= $3
		ORDER BY start_date
	`, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (absence.Absence, error) {
		return scanAbsence(row)
	})
}

func (r *absenceRepositoryImpl) ExistsOverlapping(ctx context.Context, employeeID string, from, to time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM absences WHERE employee_id = $1 AND end_date >= $2 AND start_date <= $3
		)
	`, employeeID, from, to).Scan(&exists)
	return exists, err
}

func (r *absenceRepositoryImpl) Delete(ctx context.Context, id, organizationID string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM absences WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("delete absence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return absence.ErrAbsenceNotFound
	}
	return nil
}
