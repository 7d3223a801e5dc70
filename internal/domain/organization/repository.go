package organization

import "context"

type OrganizationRepository interface {
	Create(ctx context.Context, org Organization) (Organization, error)
	GetByID(ctx context.Context, id string) (Organization, error)
	List(ctx context.Context) ([]Organization, error)
	CreateWorkArea(ctx context.Context, area WorkArea) (WorkArea, error)
	ListWorkAreas(ctx context.Context, organizationID string) ([]WorkArea, error)
}
