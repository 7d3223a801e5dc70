package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type organizationRepositoryImpl struct {
	db *database.DB
}

func NewOrganizationRepository(db *database.DB) organization.OrganizationRepository {
	return &organizationRepositoryImpl{db: db}
}

const organizationColumns = `id, name, timezone, fallback_journey_minutes, excessive_duration_percent, created_at, updated_at`

func scanOrganization(row pgx.Row) (organization.Organization, error) {
	var o organization.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Timezone, &o.FallbackJourneyMinutes, &o.ExcessiveDurationPercent, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *organizationRepositoryImpl) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)
	o, err := scanOrganization(q.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, organization.ErrOrganizationNotFound
		}
		return organization.Organization{}, err
	}
	return o, nil
}

func (r *organizationRepositoryImpl) List(ctx context.Context) ([]organization.Organization, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (organization.Organization, error) {
		return scanOrganization(row)
	})
}

func (r *organizationRepositoryImpl) ListWorkAreas(ctx context.Context, organizationID string) ([]organization.WorkArea, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id, organization_id, name, latitude, longitude, radius_meters
		FROM work_areas
		WHERE organization_id = $1
		ORDER BY name
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list work areas: %w", err)
	}
	defer rows.Close()

	var out []organization.WorkArea
	for rows.Next() {
		var a organization.WorkArea
		if err := rows.Scan(&a.ID, &a.OrganizationID, &a.Name, &a.Latitude, &a.Longitude, &a.RadiusMeters); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *organizationRepositoryImpl) Create(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)
	if org.ID == "" {
		id, err := newID()
		if err != nil {
			return organization.Organization{}, err
		}
		org.ID = id
	}
	created, err := scanOrganization(q.QueryRow(ctx, `
		INSERT INTO organizations (id, name, timezone, fallback_journey_minutes, excessive_duration_percent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+organizationColumns,
		org.ID, org.Name, org.Timezone, org.FallbackJourneyMinutes, org.ExcessiveDurationPercent,
	))
	if err != nil {
		return organization.Organization{}, fmt.Errorf("create organization: %w", err)
	}
	return created, nil
}

func (r *organizationRepositoryImpl) CreateWorkArea(ctx context.Context, area organization.WorkArea) (organization.WorkArea, error) {
	q := GetQuerier(ctx, r.db)
	if area.ID == "" {
		id, err := newID()
		if err != nil {
			return organization.WorkArea{}, err
		}
		area.ID = id
	}
	_, err := q.Exec(ctx, `
		INSERT INTO work_areas (id, organization_id, name, latitude, longitude, radius_meters)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, area.ID, area.OrganizationID, area.Name, area.Latitude, area.Longitude, area.RadiusMeters)
	if err != nil {
		return organization.WorkArea{}, fmt.Errorf("create work area: %w", err)
	}
	return area, nil
}
