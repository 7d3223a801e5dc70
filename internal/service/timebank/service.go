package timebank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/timebank"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
)

// DaySummarizer produces the replayed summaries the ledger is posted from.
type DaySummarizer interface {
	Summaries(ctx context.Context, organizationID, employeeID string, from, to time.Time) ([]attendance.DailySummary, error)
}

// EmployeeLocker serializes postings with clock mutations of the same employee.
type EmployeeLocker interface {
	LockEmployee(ctx context.Context, employeeID string) error
}

type timeBankServiceImpl struct {
	tx           database.Transactor
	ledgerRepo   timebank.LedgerRepository
	orgRepo      organization.OrganizationRepository
	employeeRepo employee.EmployeeRepository
	summarizer   DaySummarizer
	locker       EmployeeLocker
	now          func() time.Time
}

func NewTimeBankService(
	tx database.Transactor,
	ledgerRepo timebank.LedgerRepository,
	orgRepo organization.OrganizationRepository,
	employeeRepo employee.EmployeeRepository,
	summarizer DaySummarizer,
	locker EmployeeLocker,
	now func() time.Time,
) timebank.TimeBankService {
	if now == nil {
		now = time.Now
	}
	return &timeBankServiceImpl{
		tx:           tx,
		ledgerRepo:   ledgerRepo,
		orgRepo:      orgRepo,
		employeeRepo: employeeRepo,
		summarizer:   summarizer,
		locker:       locker,
		now:          now,
	}
}

// PostDay implements timebank.TimeBankService.
func (s *timeBankServiceImpl) PostDay(ctx context.Context, organizationID, employeeID string, workDate time.Time) (*timebank.LedgerEntry, error) {
	org, err := s.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	day := schedule.DateOf(workDate)
	if day.After(schedule.DateOf(s.now().In(org.Location()))) {
		return nil, timebank.ErrFutureDate
	}

	var appended *timebank.LedgerEntry
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.locker.LockEmployee(ctx, employeeID); err != nil {
			return err
		}

		summaries, err := s.summarizer.Summaries(ctx, organizationID, employeeID, day, day)
		if err != nil {
			return fmt.Errorf("summarize day: %w", err)
		}
		if len(summaries) != 1 {
			return fmt.Errorf("summarize day: expected one summary, got %d", len(summaries))
		}
		summary := summaries[0]
		if summary.State.IsOpen() {
			return timebank.ErrDayStillOpen
		}

		posted, err := s.ledgerRepo.PostedDeviation(ctx, employeeID, day)
		if err != nil {
			return err
		}
		delta := summary.Compliance.DeviationMinutes - posted
		if delta == 0 {
			return nil
		}

		entry := timebank.LedgerEntry{
			OrganizationID:   organizationID,
			EmployeeID:       employeeID,
			WorkDate:         day,
			Kind:             timebank.KindDaily,
			ExpectedMinutes:  summary.Compliance.ExpectedMinutes,
			WorkedMinutes:    summary.Compliance.WorkedMinutes,
			DeviationMinutes: delta,
			CreatedBy:        user.SystemActor(organizationID).UserID,
		}
		if posted != 0 {
			note := fmt.Sprintf("recalculated: previously posted %d min", posted)
			entry.Note = &note
		}
		created, err := s.ledgerRepo.Append(ctx, entry)
		if err != nil {
			return err
		}
		appended = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return appended, nil
}

// PostDate implements timebank.TimeBankService. Open days are counted as
// skipped; other failures are collected and returned together.
func (s *timeBankServiceImpl) PostDate(ctx context.Context, organizationID string, workDate time.Time) (timebank.PostResult, error) {
	day := schedule.DateOf(workDate)
	result := timebank.PostResult{WorkDate: day.Format("2006-01-02")}

	employees, err := s.employeeRepo.ListActive(ctx, organizationID)
	if err != nil {
		return result, fmt.Errorf("list employees: %w", err)
	}

	var errs []error
	for _, emp := range employees {
		entry, err := s.PostDay(ctx, organizationID, emp.ID, day)
		switch {
		case errors.Is(err, timebank.ErrDayStillOpen):
			result.Skipped++
			continue
		case err != nil:
			result.Skipped++
			errs = append(errs, fmt.Errorf("employee %s: %w", emp.ID, err))
			continue
		}
		result.EmployeesPosted++
		if entry != nil {
			result.EntriesAppended++
		}
	}

	slog.Info("Time bank posted",
		"organization_id", organizationID,
		"work_date", result.WorkDate,
		"employees", result.EmployeesPosted,
		"appended", result.EntriesAppended,
		"skipped", result.Skipped,
	)
	return result, errors.Join(errs...)
}

// PostPreviousDay implements timebank.TimeBankService.
func (s *timeBankServiceImpl) PostPreviousDay(ctx context.Context) ([]timebank.PostResult, error) {
	orgs, err := s.orgRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	var (
		results []timebank.PostResult
		errs    []error
	)
	for _, org := range orgs {
		yesterday := schedule.DateOf(s.now().In(org.Location())).AddDate(0, 0, -1)
		res, err := s.PostDate(ctx, org.ID, yesterday)
		results = append(results, res)
		if err != nil {
			errs = append(errs, fmt.Errorf("organization %s: %w", org.ID, err))
		}
	}
	return results, errors.Join(errs...)
}

// Adjust implements timebank.TimeBankService.
func (s *timeBankServiceImpl) Adjust(ctx context.Context, actor user.Actor, req timebank.AdjustmentRequest) (timebank.LedgerEntryResponse, error) {
	if !actor.IsManager() {
		return timebank.LedgerEntryResponse{}, user.ErrManagerAccessRequired
	}
	if err := req.Validate(); err != nil {
		return timebank.LedgerEntryResponse{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, actor.OrganizationID); err != nil {
		return timebank.LedgerEntryResponse{}, err
	}

	note := req.Note
	created, err := s.ledgerRepo.Append(ctx, timebank.LedgerEntry{
		OrganizationID:   actor.OrganizationID,
		EmployeeID:       req.EmployeeID,
		WorkDate:         req.ParsedWorkDate,
		Kind:             timebank.KindAdjustment,
		DeviationMinutes: req.Minutes,
		Note:             &note,
		CreatedBy:        actor.UserID,
	})
	if err != nil {
		return timebank.LedgerEntryResponse{}, err
	}
	return timebank.NewLedgerEntryResponse(created), nil
}

func (s *timeBankServiceImpl) authorize(ctx context.Context, actor user.Actor, employeeID string) (string, error) {
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID == "" {
		return "", user.ErrEmployeeProfileRequired
	}
	if employeeID == actor.EmployeeID {
		return employeeID, nil
	}
	if !actor.IsManager() {
		return "", user.ErrManagerAccessRequired
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID, actor.OrganizationID); err != nil {
		return "", err
	}
	return employeeID, nil
}

// Balance implements timebank.TimeBankService.
func (s *timeBankServiceImpl) Balance(ctx context.Context, actor user.Actor, employeeID string) (timebank.BalanceResponse, error) {
	employeeID, err := s.authorize(ctx, actor, employeeID)
	if err != nil {
		return timebank.BalanceResponse{}, err
	}
	minutes, err := s.ledgerRepo.Balance(ctx, employeeID)
	if err != nil {
		return timebank.BalanceResponse{}, err
	}
	return timebank.NewBalanceResponse(employeeID, minutes), nil
}

// Ledger implements timebank.TimeBankService.
func (s *timeBankServiceImpl) Ledger(ctx context.Context, actor user.Actor, employeeID string, from, to time.Time) ([]timebank.LedgerEntryResponse, error) {
	employeeID, err := s.authorize(ctx, actor, employeeID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.List(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]timebank.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, timebank.NewLedgerEntryResponse(e))
	}
	return out, nil
}
