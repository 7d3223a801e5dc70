package app

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/config"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/expense"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/timebank"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/i18n"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/workforce-backend-go/internal/repository/postgresql"
	absenceService "github.com/cmlabs-hris/workforce-backend-go/internal/service/absence"
	attendanceService "github.com/cmlabs-hris/workforce-backend-go/internal/service/attendance"
	authService "github.com/cmlabs-hris/workforce-backend-go/internal/service/auth"
	expenseService "github.com/cmlabs-hris/workforce-backend-go/internal/service/expense"
	notificationService "github.com/cmlabs-hris/workforce-backend-go/internal/service/notification"
	reportService "github.com/cmlabs-hris/workforce-backend-go/internal/service/report"
	scheduleService "github.com/cmlabs-hris/workforce-backend-go/internal/service/schedule"
	timeBankService "github.com/cmlabs-hris/workforce-backend-go/internal/service/timebank"
	userService "github.com/cmlabs-hris/workforce-backend-go/internal/service/user"
)

// Repositories are the PostgreSQL repositories shared by the services.
type Repositories struct {
	Tx            database.Transactor
	Users         user.UserRepository
	Organizations organization.OrganizationRepository
	Employees     employee.EmployeeRepository
}

// Services holds every application service wired against one database.
// The API server and hrctl both build it.
type Services struct {
	Repos Repositories

	Hub        *sse.Hub
	JWT        *jwt.JWTService
	Translator *i18n.Translator

	Auth         auth.AuthService
	AdminUsers   user.AdminUserService
	Schedule     scheduleService.Service
	Absence      absence.AbsenceService
	Attendance   attendance.AttendanceService
	Notification notification.Service
	TimeBank     timebank.TimeBankService
	Expense      expense.ExpenseService
	Report       report.ReportService
}

func NewServices(cfg *config.Config, db *database.DB) (*Services, error) {
	translator, err := i18n.New(cfg.App.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	emailSvc, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("init email service: %w", err)
	}

	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	orgRepo := postgresql.NewOrganizationRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	absenceRepo := postgresql.NewAbsenceRepository(db)
	templateRepo := postgresql.NewTemplateRepository(db)
	assignmentRepo := postgresql.NewAssignmentRepository(db)
	entryRepo := postgresql.NewTimeEntryRepository(db)
	regularizationRepo := postgresql.NewRegularizationRepository(db)
	dismissalRepo := postgresql.NewDismissalRepository(db)
	ledgerRepo := postgresql.NewLedgerRepository(db)
	expenseRepo := postgresql.NewExpenseRepository(db)

	hub := sse.NewHub()
	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	notifSvc := notificationService.NewNotificationService(dismissalRepo, hub, notificationService.Config{})
	schedSvc := scheduleService.NewScheduleService(tx, templateRepo, assignmentRepo, absenceRepo, employeeRepo)
	attSvc := attendanceService.NewAttendanceService(attendanceService.Deps{
		Tx:              tx,
		Entries:         entryRepo,
		Regularizations: regularizationRepo,
		Organizations:   orgRepo,
		Employees:       employeeRepo,
		Resolver:        schedSvc,
		Notifier:        notifSvc,
		Translator:      translator,
		Locks:           keylock.New(),
		Config:          cfg.Attendance,
		Now:             time.Now,
	})

	return &Services{
		Repos: Repositories{
			Tx:            tx,
			Users:         userRepo,
			Organizations: orgRepo,
			Employees:     employeeRepo,
		},
		Hub:          hub,
		JWT:          jwtSvc,
		Translator:   translator,
		Auth:         authService.NewAuthService(userRepo, jwtSvc, time.Now),
		AdminUsers:   userService.NewAdminUserService(tx, userRepo, employeeRepo, orgRepo, emailSvc, time.Now),
		Schedule:     schedSvc,
		Absence:      absenceService.NewAbsenceService(tx, absenceRepo, employeeRepo),
		Attendance:   attSvc,
		Notification: notifSvc,
		TimeBank:     timeBankService.NewTimeBankService(tx, ledgerRepo, orgRepo, employeeRepo, attSvc, entryRepo, time.Now),
		Expense:      expenseService.NewExpenseService(expenseRepo, employeeRepo, notifSvc, time.Now),
		Report:       reportService.NewReportService(attSvc, employeeRepo, orgRepo, time.Now),
	}, nil
}

// Scheduler registers the background jobs. Callers start and stop it.
func (s *Services) Scheduler(cfg config.CronConfig) *cron.Scheduler {
	scheduler := cron.NewScheduler()
	cron.RegisterJobs(scheduler, s.TimeBank, s.Attendance, cfg.TimeBankInterval, cfg.StaleSessionInterval)
	return scheduler
}

// Close stops background delivery. It does not close the database.
func (s *Services) Close() {
	s.Notification.Stop()
	s.Hub.Close()
}
