package absence

import (
	"context"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
)

type absenceServiceImpl struct {
	tx           database.Transactor
	absenceRepo  absence.AbsenceRepository
	employeeRepo employee.EmployeeRepository
}

func NewAbsenceService(tx database.Transactor, absenceRepo absence.AbsenceRepository, employeeRepo employee.EmployeeRepository) absence.AbsenceService {
	return &absenceServiceImpl{
		tx:           tx,
		absenceRepo:  absenceRepo,
		employeeRepo: employeeRepo,
	}
}

// Create implements absence.AbsenceService.
func (s *absenceServiceImpl) Create(ctx context.Context, actor user.Actor, req absence.CreateAbsenceRequest) (absence.AbsenceResponse, error) {
	if !actor.IsManager() {
		return absence.AbsenceResponse{}, user.ErrManagerAccessRequired
	}
	if err := req.Validate(); err != nil {
		return absence.AbsenceResponse{}, err
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	var created absence.Absence
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, actor.OrganizationID); err != nil {
			return err
		}
		overlaps, err := s.absenceRepo.ExistsOverlapping(ctx, req.EmployeeID, start, end)
		if err != nil {
			return err
		}
		if overlaps {
			return absence.ErrOverlappingAbsence
		}
		created, err = s.absenceRepo.Create(ctx, absence.Absence{
			OrganizationID: actor.OrganizationID,
			EmployeeID:     req.EmployeeID,
			AbsenceType:    absence.AbsenceType(req.AbsenceType),
			StartDate:      start,
			EndDate:        end,
			Reason:         req.Reason,
			CreatedBy:      actor.UserID,
		})
		return err
	})
	if err != nil {
		return absence.AbsenceResponse{}, err
	}
	return absence.NewAbsenceResponse(created), nil
}

// List implements absence.AbsenceService.
func (s *absenceServiceImpl) List(ctx context.Context, actor user.Actor, filter absence.ListAbsenceFilter) ([]absence.AbsenceResponse, error) {
	if filter.EmployeeID == "" {
		filter.EmployeeID = actor.EmployeeID
	}
	if filter.EmployeeID == "" {
		return nil, user.ErrEmployeeProfileRequired
	}
	if filter.EmployeeID != actor.EmployeeID {
		if !actor.IsManager() {
			return nil, user.ErrManagerAccessRequired
		}
		if _, err := s.employeeRepo.GetByID(ctx, filter.EmployeeID, actor.OrganizationID); err != nil {
			return nil, err
		}
	}

	absences, err := s.absenceRepo.ListByEmployee(ctx, filter.EmployeeID, filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	out := make([]absence.AbsenceResponse, 0, len(absences))
	for _, a := range absences {
		out = append(out, absence.NewAbsenceResponse(a))
	}
	return out, nil
}

// Delete implements absence.AbsenceService.
func (s *absenceServiceImpl) Delete(ctx context.Context, actor user.Actor, id string) error {
	if !actor.IsManager() {
		return user.ErrManagerAccessRequired
	}
	return s.absenceRepo.Delete(ctx, id, actor.OrganizationID)
}
