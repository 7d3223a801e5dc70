package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type assignmentRepositoryImpl struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) schedule.AssignmentRepository {
	return &assignmentRepositoryImpl{db: db}
}

const assignmentSelect = `
	SELECT a.id, a.organization_id, a.employee_id, a.template_id, a.valid_from, a.valid_to,
		   a.created_at, t.name
	FROM template_assignments a
	JOIN schedule_templates t ON t.id = a.template_id
`

func scanAssignment(row pgx.Row) (schedule.TemplateAssignment, error) {
	var a schedule.TemplateAssignment
	err := row.Scan(&a.ID, &a.OrganizationID, &a.EmployeeID, &a.TemplateID, &a.ValidFrom, &a.ValidTo, &a.CreatedAt, &a.TemplateName)
	return a, err
}

func (r *assignmentRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]schedule.TemplateAssignment, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (schedule.TemplateAssignment, error) {
		return scanAssignment(row)
	})
}

func (r *assignmentRepositoryImpl) Create(ctx context.Context, a schedule.TemplateAssignment) (schedule.TemplateAssignment, error) {
	q := GetQuerier(ctx, r.db)
	if a.ID == "" {
		id, err := newID()
		if err != nil {
			return schedule.TemplateAssignment{}, err
		}
		a.ID = id
	}
	err := q.QueryRow(ctx, `
		INSERT INTO template_assignments (id, organization_id, employee_id, template_id, valid_from, valid_to)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, a.ID, a.OrganizationID, a.EmployeeID, a.TemplateID, a.ValidFrom, a.ValidTo).Scan(&a.CreatedAt)
	if err != nil {
		return schedule.TemplateAssignment{}, fmt.Errorf("create assignment: %w", err)
	}
	return a, nil
}

func (r *assignmentRepositoryImpl) GetByID(ctx context.Context, id, organizationID string) (schedule.TemplateAssignment, error) {
	q := GetQuerier(ctx, r.db)
	a, err := scanAssignment(q.QueryRow(ctx, assignmentSelect+` WHERE a.id = $1 AND a.organization_id = $2`, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.TemplateAssignment{}, schedule.ErrAssignmentNotFound
		}
		return schedule.TemplateAssignment{}, err
	}
	return a, nil
}

func (r *assignmentRepositoryImpl) ListByEmployee(ctx context.Context, employeeID, organizationID string) ([]schedule.TemplateAssignment, error) {
	return r.list(ctx, assignmentSelect+`
		WHERE a.employee_id = $1 AND a.organization_id = $2
		ORDER BY a.valid_from DESC
	`, employeeID, organizationID)
}

func (r *assignmentRepositoryImpl) FindActive(ctx context.Context, employeeID string, date time.Time) (schedule.TemplateAssignment, error) {
	q := GetQuerier(ctx, r.db)
	a, err := scanAssignment(q.QueryRow(ctx, assignmentSelect+`
		WHERE a.employee_id = $1
		  AND a.valid_from <= $2
		  AND (a.valid_to IS NULL OR a.valid_to >= $2)
		ORDER BY a.valid_from DESC
		LIMIT 1
	`, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.TemplateAssignment{}, schedule.ErrAssignmentNotFound
		}
		return schedule.TemplateAssignment{}, err
	}
	return a, nil
}

// ListOverlapping returns assignments whose window intersects [from, to]. A nil
// to means open ended.
func (r *assignmentRepositoryImpl) ListOverlapping(ctx context.Context, employeeID string, from time.Time, to *time.Time) ([]schedule.TemplateAssignment, error) {
	return r.list(ctx, assignmentSelect+`
		WHERE a.employee_id = $1
		  AND (a.valid_to IS NULL OR a.valid_to >= $2)
		  AND ($3::date IS NULL OR a.valid_from <= $3)
	`, employeeID, from, to)
}

func (r *assignmentRepositoryImpl) CountByTemplate(ctx context.Context, templateID string) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM template_assignments WHERE template_id = $1`, templateID).Scan(&n)
	return n, err
}

func (r *assignmentRepositoryImpl) Delete(ctx context.Context, id, organizationID string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM template_assignments WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrAssignmentNotFound
	}
	return nil
}
