package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, organization_id, user_id, full_name, employee_code, is_active, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(&e.ID, &e.OrganizationID, &e.UserID, &e.FullName, &e.EmployeeCode, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	if newEmployee.ID == "" {
		id, err := newID()
		if err != nil {
			return employee.Employee{}, err
		}
		newEmployee.ID = id
	}

	created, err := scanEmployee(q.QueryRow(ctx, `
		INSERT INTO employees (id, organization_id, user_id, full_name, employee_code, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+employeeColumns,
		newEmployee.ID,
		newEmployee.OrganizationID,
		newEmployee.UserID,
		newEmployee.FullName,
		newEmployee.EmployeeCode,
		newEmployee.IsActive,
	))
	if err != nil {
		return employee.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return created, nil
}

func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id, organizationID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	e, err := scanEmployee(q.QueryRow(ctx, `
		SELECT `+employeeColumns+` FROM employees WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	return e, nil
}

func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	return e, nil
}

func (r *employeeRepositoryImpl) ListActive(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE organization_id = $1 AND is_active = TRUE
		ORDER BY full_name
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (employee.Employee, error) {
		return scanEmployee(row)
	})
}

func (r *employeeRepositoryImpl) ExistsByCode(ctx context.Context, organizationID, code string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM employees WHERE organization_id = $1 AND employee_code = $2)
	`, organizationID, code).Scan(&exists)
	return exists, err
}
