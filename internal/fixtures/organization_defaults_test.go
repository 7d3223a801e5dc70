package fixtures

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultScheduleTemplate(t *testing.T) {
	req := GetDefaultScheduleTemplate("org-1", 2024)

	tmpl, err := req.ToTemplate()
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplateName, tmpl.Name)
	require.Len(t, tmpl.Periods, 2)

	resolve := func(date string) schedule.EffectiveSchedule {
		d, err := time.Parse("2006-01-02", date)
		require.NoError(t, err)
		return schedule.Resolve(d, nil, &schedule.TemplateAssignment{TemplateID: tmpl.ID}, &tmpl)
	}

	monday := resolve("2024-03-04")
	assert.True(t, monday.IsWorkingDay)
	assert.Equal(t, 480, monday.ExpectedMinutes)

	summer := resolve("2024-07-15")
	assert.Equal(t, schedule.PeriodIntensive, *summer.PeriodType)
	assert.Equal(t, 420, summer.ExpectedMinutes)

	saturday := resolve("2024-03-09")
	assert.False(t, saturday.IsWorkingDay)
	assert.Zero(t, saturday.ExpectedMinutes)
}

func TestGetDefaultOrganization(t *testing.T) {
	org := GetDefaultOrganization("Acme", "")
	assert.Equal(t, DefaultTimezone, org.Timezone)
	assert.Equal(t, DefaultJourneyMinutes, org.FallbackJourneyMinutes)
}
