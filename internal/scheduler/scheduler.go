package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amishk599/internradar/internal/model"
)

// Cycler runs one complete polling cycle.
type Cycler interface {
	RunCycle(ctx context.Context) model.Report
}

// Scheduler owns the main loop: one immediate cycle, then one cycle every
// interval. Cycles never overlap; a tick that fires while a cycle is still
// running is skipped.
type Scheduler struct {
	cycler   Cycler
	interval time.Duration
	schedule cron.Schedule
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs cycler at the given interval.
// cron's constant-delay schedule has one second granularity.
func NewScheduler(cycler Cycler, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cycler:   cycler,
		interval: interval,
		schedule: cron.Every(interval),
		logger:   logger,
	}
}

// Run starts the polling loop. It returns nil when ctx is cancelled, after
// any in-flight cycle has finished its reporting and persistence.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	// Run one immediate cycle.
	s.runCycle(ctx)
	if ctx.Err() != nil {
		s.logger.Info("shutting down scheduler")
		return nil
	}

	cl := cronLogger{s.logger}
	c := cron.New(
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		cron.WithLogger(cl),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.runCycle(ctx) }))
	c.Start()

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runCycle(ctx context.Context) {
	report := s.cycler.RunCycle(ctx)
	s.logger.Debug("next cycle",
		"at", s.schedule.Next(time.Now()).Format(time.RFC3339),
		"new", report.TotalNew(),
	)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
