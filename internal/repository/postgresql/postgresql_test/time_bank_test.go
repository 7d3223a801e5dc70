package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/timebank"
	"github.com/cmlabs-hris/workforce-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	org, emp := setup.seedEmployee(t)
	repo := postgresql.NewLedgerRepository(setup.DB)
	ctx := context.Background()

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	note := "ajuste"

	for _, e := range []timebank.LedgerEntry{
		{Kind: timebank.KindDaily, ExpectedMinutes: 480, WorkedMinutes: 450, DeviationMinutes: -30},
		{Kind: timebank.KindDaily, ExpectedMinutes: 480, WorkedMinutes: 500, DeviationMinutes: 50},
		{Kind: timebank.KindAdjustment, DeviationMinutes: 15, Note: &note},
	} {
		e.OrganizationID = org.ID
		e.EmployeeID = emp.ID
		e.WorkDate = day
		e.CreatedBy = "system"
		_, err := repo.Append(ctx, e)
		require.NoError(t, err)
	}

	posted, err := repo.PostedDeviation(ctx, emp.ID, day)
	require.NoError(t, err)
	assert.Equal(t, 20, posted)

	balance, err := repo.Balance(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, balance)

	entries, err := repo.List(ctx, emp.ID, day, day)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
