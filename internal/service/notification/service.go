package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 50
	FlushInterval time.Duration // default: 200ms
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	dismissals notification.DismissalRepository
	hub        *sse.Hub
	config     Config
	now        func() time.Time

	queue    chan notification.Event
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(dismissals notification.DismissalRepository, hub *sse.Hub, cfg Config) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 200 * time.Millisecond
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		dismissals: dismissals,
		hub:        hub,
		config:     cfg,
		now:        time.Now,
		queue:      make(chan notification.Event, cfg.QueueSize),
		stopCh:     make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

// worker drains the queue and publishes events in batches.
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.Event, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		for _, e := range batch {
			s.publish(e)
		}
		slog.Debug("Notification batch published", "worker", id, "count", len(batch))
		batch = batch[:0]
	}

	for {
		select {
		case e := <-s.queue:
			batch = append(batch, e)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is already queued before leaving.
			for {
				select {
				case e := <-s.queue:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *service) publish(e notification.Event) {
	s.hub.Publish(e.RecipientID, sse.Event{
		Event: string(e.Type),
		Data:  e.Data,
	})
}

// Notify implements notification.Service. A full queue or a stopped service
// falls back to a direct publish.
func (s *service) Notify(ctx context.Context, event notification.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}

	select {
	case <-s.stopCh:
		s.publish(event)
		return nil
	default:
	}

	select {
	case s.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.publish(event)
		return nil
	}
}

// Dismiss implements notification.Service.
func (s *service) Dismiss(ctx context.Context, actor user.Actor, req notification.DismissAlertRequest) error {
	if err := actor.RequireEmployee(); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		if !validator.IsEmpty(req.Kind) && !validator.IsInSlice(req.Kind, notification.DismissibleKinds) {
			return notification.ErrAlertNotDismissible
		}
		return err
	}

	return s.dismissals.Dismiss(ctx, notification.Dismissal{
		EmployeeID:  actor.EmployeeID,
		Kind:        notification.AlertKind(req.Kind),
		ReferenceID: req.ReferenceID,
		DismissedAt: s.now(),
	})
}

// FilterDismissed implements notification.Service.
func (s *service) FilterDismissed(ctx context.Context, employeeID string, alerts []notification.Alert) ([]notification.Alert, error) {
	if len(alerts) == 0 {
		return alerts, nil
	}
	dismissed, err := s.dismissals.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if len(dismissed) == 0 {
		return alerts, nil
	}

	type key struct {
		kind notification.AlertKind
		ref  string
	}
	seen := make(map[key]struct{}, len(dismissed))
	for _, d := range dismissed {
		seen[key{d.Kind, d.ReferenceID}] = struct{}{}
	}

	out := make([]notification.Alert, 0, len(alerts))
	for _, a := range alerts {
		if _, ok := seen[key{a.Kind, a.ReferenceID}]; ok {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Subscribe creates an SSE subscription for a user
func (s *service) Subscribe(userID string) (chan sse.Event, func()) {
	return s.hub.Subscribe(userID)
}

// Stop gracefully stops the notification service
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}
