package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"gopkg.in/yaml.v3"
)

type scheduleServiceImpl struct {
	tx             database.Transactor
	templateRepo   schedule.TemplateRepository
	assignmentRepo schedule.AssignmentRepository
	absenceRepo    absence.AbsenceRepository
	employeeRepo   employee.EmployeeRepository
}

// Service is both the CRUD service and the resolver used by other packages.
type Service interface {
	schedule.ScheduleService
	schedule.Resolver
}

func NewScheduleService(
	tx database.Transactor,
	templateRepo schedule.TemplateRepository,
	assignmentRepo schedule.AssignmentRepository,
	absenceRepo absence.AbsenceRepository,
	employeeRepo employee.EmployeeRepository,
) Service {
	return &scheduleServiceImpl{
		tx:             tx,
		templateRepo:   templateRepo,
		assignmentRepo: assignmentRepo,
		absenceRepo:    absenceRepo,
		employeeRepo:   employeeRepo,
	}
}

func requireManager(actor user.Actor) error {
	if !actor.IsManager() {
		return user.ErrManagerAccessRequired
	}
	return nil
}

// CreateTemplate implements schedule.ScheduleService.
func (s *scheduleServiceImpl) CreateTemplate(ctx context.Context, actor user.Actor, req schedule.CreateTemplateRequest) (schedule.TemplateResponse, error) {
	if err := requireManager(actor); err != nil {
		return schedule.TemplateResponse{}, err
	}
	req.OrganizationID = actor.OrganizationID

	tmpl, err := req.ToTemplate()
	if err != nil {
		return schedule.TemplateResponse{}, err
	}

	var created schedule.ScheduleTemplate
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.templateRepo.ExistsByName(ctx, tmpl.OrganizationID, tmpl.Name)
		if err != nil {
			return fmt.Errorf("check template name: %w", err)
		}
		if exists {
			return schedule.ErrTemplateNameExists
		}
		created, err = s.templateRepo.Create(ctx, tmpl)
		return err
	})
	if err != nil {
		return schedule.TemplateResponse{}, err
	}

	slog.Info("Schedule template created", "template_id", created.ID, "organization_id", created.OrganizationID)
	return schedule.NewTemplateResponse(created), nil
}

// ImportTemplate implements schedule.ScheduleService.
func (s *scheduleServiceImpl) ImportTemplate(ctx context.Context, actor user.Actor, data []byte) (schedule.TemplateResponse, error) {
	var req schedule.CreateTemplateRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return schedule.TemplateResponse{}, fmt.Errorf("%w: %v", schedule.ErrInvalidTemplateFile, err)
	}
	return s.CreateTemplate(ctx, actor, req)
}

// GetTemplate implements schedule.ScheduleService.
func (s *scheduleServiceImpl) GetTemplate(ctx context.Context, actor user.Actor, id string) (schedule.TemplateResponse, error) {
	tmpl, err := s.templateRepo.GetByID(ctx, id, actor.OrganizationID)
	if err != nil {
		return schedule.TemplateResponse{}, err
	}
	return schedule.NewTemplateResponse(tmpl), nil
}

// ListTemplates implements schedule.ScheduleService.
func (s *scheduleServiceImpl) ListTemplates(ctx context.Context, actor user.Actor) ([]schedule.TemplateResponse, error) {
	templates, err := s.templateRepo.List(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	out := make([]schedule.TemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, schedule.NewTemplateResponse(t))
	}
	return out, nil
}

// UpdateTemplate implements schedule.ScheduleService.
func (s *scheduleServiceImpl) UpdateTemplate(ctx context.Context, actor user.Actor, req schedule.UpdateTemplateRequest) (schedule.TemplateResponse, error) {
	if err := requireManager(actor); err != nil {
		return schedule.TemplateResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return schedule.TemplateResponse{}, err
	}

	var updated schedule.ScheduleTemplate
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		tmpl, err := s.templateRepo.GetByID(ctx, req.ID, actor.OrganizationID)
		if err != nil {
			return err
		}
		if req.Name != nil && *req.Name != tmpl.Name {
			exists, err := s.templateRepo.ExistsByName(ctx, actor.OrganizationID, *req.Name)
			if err != nil {
				return fmt.Errorf("check template name: %w", err)
			}
			if exists {
				return schedule.ErrTemplateNameExists
			}
			tmpl.Name = *req.Name
		}
		if req.Description != nil {
			tmpl.Description = req.Description
		}
		if req.IsActive != nil {
			tmpl.IsActive = *req.IsActive
		}
		if err := s.templateRepo.Update(ctx, tmpl); err != nil {
			return err
		}
		updated, err = s.templateRepo.GetByID(ctx, tmpl.ID, actor.OrganizationID)
		return err
	})
	if err != nil {
		return schedule.TemplateResponse{}, err
	}
	return schedule.NewTemplateResponse(updated), nil
}

// DeleteTemplate implements schedule.ScheduleService.
func (s *scheduleServiceImpl) DeleteTemplate(ctx context.Context, actor user.Actor, id string) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.templateRepo.GetByID(ctx, id, actor.OrganizationID); err != nil {
			return err
		}
		count, err := s.assignmentRepo.CountByTemplate(ctx, id)
		if err != nil {
			return fmt.Errorf("count assignments: %w", err)
		}
		if count > 0 {
			return schedule.ErrTemplateInUse
		}
		return s.templateRepo.Delete(ctx, id, actor.OrganizationID)
	})
}

// CreatePeriod implements schedule.ScheduleService.
func (s *scheduleServiceImpl) CreatePeriod(ctx context.Context, actor user.Actor, req schedule.CreatePeriodRequest) (schedule.PeriodResponse, error) {
	if err := requireManager(actor); err != nil {
		return schedule.PeriodResponse{}, err
	}
	period, err := req.ToPeriod("")
	if err != nil {
		return schedule.PeriodResponse{}, err
	}

	var created schedule.SchedulePeriod
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.templateRepo.GetByID(ctx, req.TemplateID, actor.OrganizationID); err != nil {
			return err
		}
		created, err = s.templateRepo.CreatePeriod(ctx, period)
		return err
	})
	if err != nil {
		return schedule.PeriodResponse{}, err
	}
	return schedule.NewPeriodResponse(created), nil
}

// UpdatePeriod implements schedule.ScheduleService.
func (s *scheduleServiceImpl) UpdatePeriod(ctx context.Context, actor user.Actor, req schedule.UpdatePeriodRequest) (schedule.PeriodResponse, error) {
	if err := requireManager(actor); err != nil {
		return schedule.PeriodResponse{}, err
	}

	var updated schedule.SchedulePeriod
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.templateRepo.GetPeriod(ctx, req.ID, actor.OrganizationID)
		if err != nil {
			return err
		}
		updated, err = req.Apply(current)
		if err != nil {
			return err
		}
		return s.templateRepo.UpdatePeriod(ctx, updated)
	})
	if err != nil {
		return schedule.PeriodResponse{}, err
	}
	return schedule.NewPeriodResponse(updated), nil
}

// DeletePeriod implements schedule.ScheduleService.
func (s *scheduleServiceImpl) DeletePeriod(ctx context.Context, actor user.Actor, id string) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.templateRepo.GetPeriod(ctx, id, actor.OrganizationID); err != nil {
			return err
		}
		return s.templateRepo.DeletePeriod(ctx, id)
	})
}

// UpsertDayPattern implements schedule.ScheduleService.
func (s *scheduleServiceImpl) UpsertDayPattern(ctx context.Context, actor user.Actor, periodID string, req schedule.DayPatternRequest) (schedule.PeriodResponse, error) {
	if err := requireManager(actor); err != nil {
		return schedule.PeriodResponse{}, err
	}
	pattern, err := req.ToPattern("")
	if err != nil {
		return schedule.PeriodResponse{}, err
	}

	var period schedule.SchedulePeriod
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.templateRepo.GetPeriod(ctx, periodID, actor.OrganizationID); err != nil {
			return err
		}
		if _, err := s.templateRepo.ReplacePattern(ctx, periodID, pattern); err != nil {
			return err
		}
		period, err = s.templateRepo.GetPeriod(ctx, periodID, actor.OrganizationID)
		return err
	})
	if err != nil {
		return schedule.PeriodResponse{}, err
	}
	return schedule.NewPeriodResponse(period), nil
}

// CreateAssignment implements schedule.ScheduleService.
func (s *scheduleServiceImpl) CreateAssignment(ctx context.Context, actor user.Actor, req schedule.CreateAssignmentRequest) (schedule.AssignmentResponse, error) {
	if err := requireManager(actor); err != nil {
		return schedule.AssignmentResponse{}, err
	}
	a, err := req.ToAssignment(actor.OrganizationID)
	if err != nil {
		return schedule.AssignmentResponse{}, err
	}

	var created schedule.TemplateAssignment
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.employeeRepo.GetByID(ctx, a.EmployeeID, actor.OrganizationID); err != nil {
			return err
		}
		tmpl, err := s.templateRepo.GetByID(ctx, a.TemplateID, actor.OrganizationID)
		if err != nil {
			return err
		}
		overlapping, err := s.assignmentRepo.ListOverlapping(ctx, a.EmployeeID, a.ValidFrom, a.ValidTo)
		if err != nil {
			return fmt.Errorf("check overlapping assignments: %w", err)
		}
		if len(overlapping) > 0 {
			return schedule.ErrOverlappingAssignment
		}
		created, err = s.assignmentRepo.Create(ctx, a)
		if err != nil {
			return err
		}
		created.TemplateName = tmpl.Name
		return nil
	})
	if err != nil {
		return schedule.AssignmentResponse{}, err
	}
	return schedule.NewAssignmentResponse(created), nil
}

// ListAssignments implements schedule.ScheduleService.
func (s *scheduleServiceImpl) ListAssignments(ctx context.Context, actor user.Actor, employeeID string) ([]schedule.AssignmentResponse, error) {
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID != actor.EmployeeID && !actor.IsManager() {
		return nil, user.ErrManagerAccessRequired
	}
	if employeeID == "" {
		return nil, schedule.ErrEmployeeIDRequired
	}

	assignments, err := s.assignmentRepo.ListByEmployee(ctx, employeeID, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	out := make([]schedule.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, schedule.NewAssignmentResponse(a))
	}
	return out, nil
}

// DeleteAssignment implements schedule.ScheduleService.
func (s *scheduleServiceImpl) DeleteAssignment(ctx context.Context, actor user.Actor, id string) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	return s.assignmentRepo.Delete(ctx, id, actor.OrganizationID)
}

// GetEffectiveSchedule implements schedule.ScheduleService.
func (s *scheduleServiceImpl) GetEffectiveSchedule(ctx context.Context, actor user.Actor, employeeID string, date time.Time) (schedule.EffectiveScheduleResponse, error) {
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID == "" {
		return schedule.EffectiveScheduleResponse{}, schedule.ErrEmployeeIDRequired
	}
	if employeeID != actor.EmployeeID {
		if !actor.IsManager() {
			return schedule.EffectiveScheduleResponse{}, user.ErrManagerAccessRequired
		}
		if _, err := s.employeeRepo.GetByID(ctx, employeeID, actor.OrganizationID); err != nil {
			return schedule.EffectiveScheduleResponse{}, err
		}
	}

	eff, err := s.Resolve(ctx, employeeID, date)
	if err != nil {
		return schedule.EffectiveScheduleResponse{}, err
	}
	return schedule.NewEffectiveScheduleResponse(eff), nil
}

// Resolve implements schedule.Resolver.
func (s *scheduleServiceImpl) Resolve(ctx context.Context, employeeID string, date time.Time) (schedule.EffectiveSchedule, error) {
	day := schedule.DateOf(date)

	abs, err := s.absenceRepo.FindCovering(ctx, employeeID, day)
	switch {
	case err == nil:
		return schedule.Resolve(day, absenceInfo(abs), nil, nil), nil
	case !errors.Is(err, absence.ErrAbsenceNotFound):
		return schedule.EffectiveSchedule{}, fmt.Errorf("find absence: %w", err)
	}

	assignment, err := s.assignmentRepo.FindActive(ctx, employeeID, day)
	if errors.Is(err, schedule.ErrAssignmentNotFound) {
		return schedule.Resolve(day, nil, nil, nil), nil
	}
	if err != nil {
		return schedule.EffectiveSchedule{}, fmt.Errorf("find assignment: %w", err)
	}

	tmpl, err := s.templateRepo.GetByID(ctx, assignment.TemplateID, assignment.OrganizationID)
	if err != nil {
		return schedule.EffectiveSchedule{}, fmt.Errorf("load template: %w", err)
	}
	return schedule.Resolve(day, nil, &assignment, &tmpl), nil
}

// ResolveRange implements schedule.Resolver. Absences, assignments and templates
// are loaded once for the whole range.
func (s *scheduleServiceImpl) ResolveRange(ctx context.Context, employeeID string, from, to time.Time) ([]schedule.EffectiveSchedule, error) {
	from, to = schedule.DateOf(from), schedule.DateOf(to)
	if to.Before(from) {
		return nil, nil
	}

	absences, err := s.absenceRepo.ListByEmployee(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	assignments, err := s.assignmentRepo.ListOverlapping(ctx, employeeID, from, &to)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	templates := make(map[string]*schedule.ScheduleTemplate)
	for _, a := range assignments {
		if _, ok := templates[a.TemplateID]; ok {
			continue
		}
		tmpl, err := s.templateRepo.GetByID(ctx, a.TemplateID, a.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("load template: %w", err)
		}
		templates[a.TemplateID] = &tmpl
	}

	var out []schedule.EffectiveSchedule
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		var info *schedule.AbsenceInfo
		for _, a := range absences {
			if !day.Before(schedule.DateOf(a.StartDate)) && !day.After(schedule.DateOf(a.EndDate)) {
				info = absenceInfo(a)
				break
			}
		}

		var (
			active *schedule.TemplateAssignment
			tmpl   *schedule.ScheduleTemplate
		)
		for i := range assignments {
			if assignments[i].Covers(day) {
				active = &assignments[i]
				tmpl = templates[active.TemplateID]
				break
			}
		}
		out = append(out, schedule.Resolve(day, info, active, tmpl))
	}
	return out, nil
}

func absenceInfo(a absence.Absence) *schedule.AbsenceInfo {
	return &schedule.AbsenceInfo{
		ID:          a.ID,
		AbsenceType: string(a.AbsenceType),
		Reason:      a.Reason,
	}
}
