package fixtures

import (
	"fmt"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

const (
	DefaultTemplateName   = "Jornada estándar"
	DefaultTimezone       = "Europe/Madrid"
	DefaultJourneyMinutes = 480
)

// ==========================================
// DEFAULT ORGANIZATION
// ==========================================

// GetDefaultOrganization returns a new organization with the standard journey.
func GetDefaultOrganization(name, timezone string) organization.Organization {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	return organization.Organization{
		Name:                   name,
		Timezone:               timezone,
		FallbackJourneyMinutes: DefaultJourneyMinutes,
	}
}

// ==========================================
// DEFAULT SCHEDULE TEMPLATE
// ==========================================

// GetDefaultScheduleTemplate returns "Jornada estándar": split shift from Monday
// to Friday and a continuous intensive shift during the summer of year.
func GetDefaultScheduleTemplate(organizationID string, year int) schedule.CreateTemplateRequest {
	splitShift := []schedule.TimeSlotRequest{
		{Start: "09:00", End: "14:00", SlotType: string(schedule.SlotWork)},
		{Start: "14:00", End: "15:00", SlotType: string(schedule.SlotBreak)},
		{Start: "15:00", End: "18:00", SlotType: string(schedule.SlotWork)},
	}
	summerShift := []schedule.TimeSlotRequest{
		{Start: "08:00", End: "15:00", SlotType: string(schedule.SlotWork)},
	}

	return schedule.CreateTemplateRequest{
		OrganizationID: organizationID,
		Name:           DefaultTemplateName,
		Description:    strPtr("Lunes a viernes, jornada partida con jornada intensiva en verano"),
		IsActive:       boolPtr(true),
		Periods: []schedule.CreatePeriodRequest{
			{
				Name:       "Horario regular",
				PeriodType: string(schedule.PeriodRegular),
				Patterns:   weekdays(splitShift),
			},
			{
				Name:       fmt.Sprintf("Jornada intensiva %d", year),
				PeriodType: string(schedule.PeriodIntensive),
				ValidFrom:  strPtr(fmt.Sprintf("%d-07-01", year)),
				ValidTo:    strPtr(fmt.Sprintf("%d-08-31", year)),
				Patterns:   weekdays(summerShift),
			},
		},
	}
}

// weekdays works Monday to Friday with slots and rests on the weekend.
func weekdays(slots []schedule.TimeSlotRequest) []schedule.DayPatternRequest {
	patterns := make([]schedule.DayPatternRequest, 0, 7)
	for day := 1; day <= 7; day++ {
		working := day <= 5
		p := schedule.DayPatternRequest{DayOfWeek: day, IsWorkingDay: boolPtr(working)}
		if working {
			p.TimeSlots = slots
		}
		patterns = append(patterns, p)
	}
	return patterns
}
