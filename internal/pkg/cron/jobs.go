package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/timebank"
)

// TimeBankPoster posts the previous local day of every organization.
type TimeBankPoster interface {
	PostPreviousDay(ctx context.Context) ([]timebank.PostResult, error)
}

// SessionReminder pushes live alerts for sessions open beyond the threshold.
type SessionReminder interface {
	RemindExcessiveSessions(ctx context.Context) (int, error)
}

const (
	JobPostTimeBank           = "post_time_bank"
	JobRemindExcessiveSession = "remind_excessive_sessions"
)

// RegisterJobs wires the attendance background jobs. Posting is idempotent, so
// running it every interval only appends what changed since the last run.
func RegisterJobs(s *Scheduler, poster TimeBankPoster, reminder SessionReminder, timeBankInterval, staleInterval time.Duration) {
	s.AddJob(JobPostTimeBank, timeBankInterval, func(ctx context.Context) error {
		results, err := poster.PostPreviousDay(ctx)
		if err != nil {
			return err
		}
		appended := 0
		for _, r := range results {
			appended += r.EntriesAppended
		}
		if appended > 0 {
			slog.Info("Cron: time bank posted", "entries_appended", appended)
		}
		return nil
	})

	s.AddJob(JobRemindExcessiveSession, staleInterval, func(ctx context.Context) error {
		reminded, err := reminder.RemindExcessiveSessions(ctx)
		if err != nil {
			return err
		}
		if reminded > 0 {
			slog.Info("Cron: excessive session reminders sent", "count", reminded)
		}
		return nil
	})
}
