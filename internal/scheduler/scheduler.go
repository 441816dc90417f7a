package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Purger drops expired entries and reports how many were removed.
type Purger interface {
	Purge() int
}

// Scheduler periodically purges expired revoked-token entries.
type Scheduler struct {
	scheduler *gocron.Scheduler
	purger    Purger
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(purger Purger, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		purger:    purger,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the purge job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.purger == nil {
		s.logger.Info("nothing to purge; scheduler idle")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).WaitForSchedule().Do(s.runPurge)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runPurge() {
	removed := s.purger.Purge()
	s.logger.Debug("purged expired denylist entries", "removed", removed)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
