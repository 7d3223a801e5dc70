package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

const localTimeLayout = "02/01/2006 15:04"

type geoResult struct {
	// within is nil when no verdict could be reached.
	within         *bool
	requiresReview bool
	alerts         []notification.Alert
}

// checkLocation matches the coordinates against the organization's work areas.
// It never blocks a clock action: lookups slower than the configured timeout
// leave the entry without a verdict.
func (s *attendanceServiceImpl) checkLocation(ctx context.Context, organizationID string, loc attendance.Location) geoResult {
	if !loc.HasCoordinates() {
		status := loc.LocationStatus
		if status == "" {
			status = string(attendance.LocationUnavailable)
		}
		return geoResult{alerts: []notification.Alert{
			s.alert(ctx, notification.KindLocationUnavailable, notification.SeverityWarning, "", map[string]any{"Status": status}),
		}}
	}

	if s.cfg.GeoCheckTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.GeoCheckTimeout)
		defer cancel()
	}
	areas, err := s.orgRepo.ListWorkAreas(ctx, organizationID)
	if err != nil {
		slog.Warn("work area check skipped", "organization_id", organizationID, "error", err)
		return geoResult{alerts: []notification.Alert{
			s.alert(ctx, notification.KindLocationUnverified, notification.SeverityWarning, "", nil),
		}}
	}
	if len(areas) == 0 {
		return geoResult{}
	}

	within := insideAny(areas, *loc.Latitude, *loc.Longitude)
	res := geoResult{within: &within}
	if !within {
		res.requiresReview = true
		res.alerts = append(res.alerts,
			s.alert(ctx, notification.KindOutsideAllowedArea, notification.SeverityWarning, "", nil))
	}
	return res
}

func insideAny(areas []organization.WorkArea, lat, lon float64) bool {
	for _, a := range areas {
		if a.Contains(lat, lon) {
			return true
		}
	}
	return false
}

// dayAlerts derives the persistent alerts of the current day.
func (s *attendanceServiceImpl) dayAlerts(ctx context.Context, day currentDay, summary attendance.DailySummary) []notification.Alert {
	var alerts []notification.Alert
	loc := day.org.Location()

	if day.stale != nil {
		alerts = append(alerts, s.alert(ctx, notification.KindIncompleteEntry, notification.SeverityWarning, day.stale.entryID,
			map[string]any{"Since": day.stale.start.In(loc).Format(localTimeLayout)}))
	}
	for _, a := range summary.State.Anomalies {
		if a.Kind != attendance.AnomalyIncompleteEntry {
			continue
		}
		alerts = append(alerts, s.alert(ctx, notification.KindIncompleteEntry, notification.SeverityWarning, a.EntryID,
			map[string]any{"Since": a.Timestamp.In(loc).Format(localTimeLayout)}))
	}

	if a, ok := s.excessiveAlert(ctx, day.org, summary.Schedule, summary.State, day.now); ok {
		alerts = append(alerts, a)
	}

	if summary.Compliance.IsWorkingOnAbsence {
		alerts = append(alerts, s.alert(ctx, notification.KindWorkingOnAbsence, notification.SeverityInfo,
			summary.Date.Format("2006-01-02"), nil))
	}
	if summary.Schedule.Source == schedule.SourceNoAssignment {
		alerts = append(alerts, s.alert(ctx, notification.KindNoScheduleAssigned, notification.SeverityInfo, day.employeeID, nil))
	}
	return alerts
}

// excessiveAlert reports an open session running past the threshold percent of
// the expected journey. Days without expectation use the fallback journey.
func (s *attendanceServiceImpl) excessiveAlert(ctx context.Context, org organization.Organization, eff schedule.EffectiveSchedule, state attendance.DayState, now time.Time) (notification.Alert, bool) {
	if !state.IsOpen() || state.OpenSessionStart == nil {
		return notification.Alert{}, false
	}

	base := eff.ExpectedMinutes
	if base == 0 {
		base = org.FallbackJourneyMinutes
	}
	if base == 0 {
		base = s.cfg.FallbackJourneyMinutes
	}
	percent := s.cfg.ExcessiveDurationPercent
	if org.ExcessiveDurationPercent != nil {
		percent = *org.ExcessiveDurationPercent
	}
	if base <= 0 || percent <= 0 {
		return notification.Alert{}, false
	}

	elapsed := int(now.Sub(*state.OpenSessionStart) / time.Minute)
	if elapsed*100 <= base*percent {
		return notification.Alert{}, false
	}
	return s.alert(ctx, notification.KindExcessiveDuration, notification.SeverityWarning, state.OpenClockInEntryID, map[string]any{
		"Elapsed":  validator.FormatMinutes(elapsed),
		"Percent":  percent,
		"Expected": validator.FormatMinutes(base),
	}), true
}

func (s *attendanceServiceImpl) alert(ctx context.Context, kind notification.AlertKind, severity notification.Severity, referenceID string, data map[string]any) notification.Alert {
	key := "alert." + string(kind)
	return notification.Alert{
		Kind:        kind,
		Severity:    severity,
		Title:       s.translator.T(ctx, key+".title"),
		Description: s.translator.T(ctx, key+".description", data),
		ReferenceID: referenceID,
	}
}
