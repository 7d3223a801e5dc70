package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds a migrated test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies migrations. The test
// is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err)
	_, err = db.Migrate(context.Background())
	require.NoError(t, err)

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(context.Background()))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables empties every table of the schema.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"alert_dismissals",
		"regularization_requests",
		"time_bank_ledger",
		"time_entries",
		"expenses",
		"absences",
		"template_assignments",
		"time_slots",
		"work_day_patterns",
		"schedule_periods",
		"schedule_templates",
		"employees",
		"users",
		"work_areas",
		"organizations",
	}

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}

// seedEmployee creates an organization with one employee.
func (s *TestDatabaseSetup) seedEmployee(t *testing.T) (organization.Organization, employee.Employee) {
	t.Helper()
	ctx := context.Background()

	org, err := postgresql.NewOrganizationRepository(s.DB).Create(ctx, organization.Organization{
		Name:                   "Acme",
		Timezone:               "Europe/Madrid",
		FallbackJourneyMinutes: 480,
	})
	require.NoError(t, err)

	emp, err := postgresql.NewEmployeeRepository(s.DB).Create(ctx, employee.Employee{
		OrganizationID: org.ID,
		FullName:       "Lucía Gómez",
		IsActive:       true,
	})
	require.NoError(t, err)

	return org, emp
}
