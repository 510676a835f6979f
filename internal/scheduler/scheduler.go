// Package scheduler runs the periodic reminder/recurrence tick.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Defaults. The interval only needs to be short enough to catch the
// reminder window; it is not part of the contract.
const (
	DefaultInterval = 15 * time.Second
	DefaultWindow   = time.Minute
)

// Ticker is the service hook invoked on every tick.
type Ticker interface {
	ReminderPass(ctx context.Context, now time.Time, window time.Duration) int
}

// Scheduler drives a Ticker on a fixed interval. The clock is injectable
// so the due-check logic can be tested without real time.
type Scheduler struct {
	svc      Ticker
	logger   *slog.Logger
	interval time.Duration
	window   time.Duration
	clock    func() time.Time
}

// New creates a scheduler. Non-positive interval/window fall back to the
// defaults.
func New(svc Ticker, logger *slog.Logger, interval, window time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		svc:      svc,
		logger:   logger,
		interval: interval,
		window:   window,
		clock:    time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (s *Scheduler) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Run ticks until ctx is cancelled. The timer lives for the process
// lifetime; it is never cancelled on its own.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler: started",
		slog.Duration("interval", s.interval),
		slog.Duration("window", s.window))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler: stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs a single reminder pass at the current clock time.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock()
	if n := s.svc.ReminderPass(ctx, now, s.window); n > 0 {
		s.logger.Debug("scheduler: reminders fired", slog.Int("count", n))
	}
}
