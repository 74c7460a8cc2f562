// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Job is a named task run by Run.
type Job struct {
	Name string
	// Spec is a standard five-field cron expression or a descriptor such as "@every 1m".
	Spec string
	Task func(ctx context.Context)
}

// Run runs every job once immediately and then on its schedule until ctx is done.
// It returns an error without running anything if a spec does not parse.
func Run(ctx context.Context, logger *slog.Logger, jobs ...Job) error {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	for _, j := range jobs {
		job := j
		if _, err := c.AddFunc(job.Spec, func() { runJob(ctx, logger, job) }); err != nil {
			return fmt.Errorf("scheduler: job %q: invalid spec %q: %w", job.Name, job.Spec, err)
		}
	}

	for _, job := range jobs {
		runJob(ctx, logger, job)
	}

	c.Start()
	logger.Info("scheduler started", "jobs", len(jobs))
	<-ctx.Done()
	// Wait for running jobs to finish.
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
	return nil
}

func runJob(ctx context.Context, logger *slog.Logger, job Job) {
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("scheduler: job panicked", "job", job.Name, "panic", rec)
		}
	}()
	job.Task(ctx)
}
