package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Reaper is the part of the weather service the scheduler drives.
type Reaper interface {
	ReapExpired() int
}

// Scheduler periodically tears down expired widgets. It never fetches.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reaper    Reaper
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(interval time.Duration, reaper Reaper, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		reaper:    reaper,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the reap job and starts the underlying scheduler.
// A non-positive interval disables reaping.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: reaping disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.reap)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) reap() {
	if n := s.reaper.ReapExpired(); n > 0 {
		s.logger.Info("scheduler: reaped expired widgets", zap.Int("count", n))
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
