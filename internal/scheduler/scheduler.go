package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Reloader starts a background dataset load and returns its generation.
type Reloader interface {
	Reload(ctx context.Context) uint64
}

// Scheduler periodically reloads the temperature dataset.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reloader  Reloader
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. A non-positive interval disables it.
func New(interval time.Duration, reloader Reloader, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		reloader:  reloader,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the periodic reload and starts the underlying scheduler.
// The first run happens one interval after Start.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		gen := s.reloader.Reload(context.Background())
		s.logger.Debug("scheduled dataset reload issued", "generation", gen)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("periodic refresh scheduled", "interval", s.interval)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
