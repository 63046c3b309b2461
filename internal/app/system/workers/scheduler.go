// internal/app/system/workers/scheduler.go
package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/collabhub/internal/app/system/tasks"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs tasks.Jobs on their cron schedules. A job that is still
// running when its next tick arrives is skipped, and a panicking job is
// logged without taking the scheduler down.
type Scheduler struct {
	cron       *cron.Cron
	log        *zap.Logger
	jobTimeout time.Duration
}

// NewScheduler creates a scheduler. Each job run gets a context bounded
// by jobTimeout.
func NewScheduler(logger *zap.Logger, jobTimeout time.Duration) *Scheduler {
	cl := cronLogger{s: logger.Named("cron").Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		log:        logger,
		jobTimeout: jobTimeout,
	}
}

// Add registers job. It fails if the schedule does not parse.
func (s *Scheduler) Add(job tasks.Job) error {
	_, err := s.cron.AddFunc(job.Schedule, func() { s.runOnce(job) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Schedule, err)
	}
	s.log.Info("job scheduled", zap.String("job", job.Name), zap.String("schedule", job.Schedule))
	return nil
}

func (s *Scheduler) runOnce(job tasks.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", job.Name), zap.Duration("took", time.Since(start)), zap.Error(err))
		return
	}
	s.log.Debug("job finished", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for running jobs, or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out; jobs still running")
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
