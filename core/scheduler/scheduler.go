package scheduler

import (
	"context"
	"fmt"
	"time"

	"classtime/core/constants"
	"classtime/core/logger"
	"classtime/core/metrics"

	"github.com/robfig/cron/v3"
)

// Job is a unit of periodic work. It receives a context bounded by
// constants.SchedulerJobTimeout.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	l := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
	}
}

// Add registers job under name on a cron spec ("@every 15m", "0 * * * *").
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() { Run(name, job) })
	if err != nil {
		return fmt.Errorf("scheduler: add %s (%q): %w", name, spec, err)
	}
	logger.Info("Scheduler:JobRegistered", "job", name, "spec", spec)
	return nil
}

// Run executes job once with the scheduler's timeout, logging and counting the result.
func Run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.SchedulerJobTimeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		metrics.SchedulerJobRunsTotal.WithLabelValues(name, "error").Inc()
		logger.Error("Scheduler:Job:Error", "job", name, "error", err, "duration", time.Since(start))
		return
	}
	metrics.SchedulerJobRunsTotal.WithLabelValues(name, "ok").Inc()
	logger.Debug("Scheduler:Job:Done", "job", name, "duration", time.Since(start))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.Warn("Scheduler:Stop:Timeout")
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.Debug("Scheduler:"+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.Error("Scheduler:"+msg, append([]any{"error", err}, keysAndValues...)...)
}
