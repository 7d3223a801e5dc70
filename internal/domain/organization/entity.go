package organization

import (
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/utils"
)

type Organization struct {
	ID                     string
	Name                   string
	Timezone               string
	FallbackJourneyMinutes int
	// ExcessiveDurationPercent overrides the configured default when set.
	ExcessiveDurationPercent *int
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Location returns the organization's time zone, falling back to UTC.
func (o Organization) Location() *time.Location {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WorkArea is a circular zone where clocking is considered on site.
type WorkArea struct {
	ID             string
	OrganizationID string
	Name           string
	Latitude       float64
	Longitude      float64
	RadiusMeters   int
}

// Contains reports whether the point lies within the area radius.
func (a WorkArea) Contains(lat, lon float64) bool {
	return utils.CalculateHaversineDistance(lat, lon, a.Latitude, a.Longitude) <= float64(a.RadiusMeters)
}
