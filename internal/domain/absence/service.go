package absence

import (
	"context"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
)

type AbsenceService interface {
	Create(ctx context.Context, actor user.Actor, req CreateAbsenceRequest) (AbsenceResponse, error)
	List(ctx context.Context, actor user.Actor, filter ListAbsenceFilter) ([]AbsenceResponse, error)
	Delete(ctx context.Context, actor user.Actor, id string) error
}
