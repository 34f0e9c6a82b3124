package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"optflow/internal/pipeline"
)

// RunDaily orchestrates the pipeline loop: run -> wait until the next
// scheduled time -> run again, until a signal arrives. Each cycle reloads
// the jobs file so date defaults roll forward and drops tasks already
// covered by the progress file.
func RunDaily(cfg *Config, drivers []*pipeline.Driver, log *slog.Logger) error {
	progressUpdates, writerDone := pipeline.StartProgressWriter(cfg.ProgressPath())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for {
		runOnce(ctx, cfg, drivers, progressUpdates, log)

		nextRun := nextDailyRunTime(cfg, time.Now().UTC())
		waitDur := time.Until(nextRun)
		if waitDur <= 0 {
			log.Info("next run passed, running now", "next_run", nextRun.Format("2006-01-02 15:04"))
			continue
		}
		log.Info("timer waiting", "hours", waitDur.Hours(), "until", nextRun.Format("2006-01-02 15:04"))
		timer := time.NewTimer(waitDur)
		select {
		case <-timer.C:
		case sig := <-signals:
			log.Info("received signal, stopping", "sig", sig.String())
			timer.Stop()
			cancel()
			close(progressUpdates)
			<-writerDone
			return nil
		}
	}
}

func runOnce(ctx context.Context, cfg *Config, drivers []*pipeline.Driver, progressUpdates chan<- pipeline.ProgressUpdate, log *slog.Logger) {
	tasks, err := LoadJobs(cfg.JobsFile, cfg, time.Now().UTC())
	if err != nil {
		log.Error("could not load jobs", "error", err)
		return
	}
	pending := pipeline.PendingTasks(tasks, cfg.ProgressPath())
	if len(pending) == 0 {
		log.Info("no pending tasks, skip")
		return
	}
	if skipped := len(tasks) - len(pending); skipped > 0 {
		log.Info("tasks up to date", "skipped", skipped, "pending", len(pending))
	} else {
		log.Info("tasks to run", "pending", len(pending))
	}

	if len(drivers) == 1 {
		drivers[0].Run(ctx, pending, progressUpdates)
		return
	}
	pipeline.RunParallel(ctx, drivers, pending, progressUpdates)
}

func nextDailyRunTime(cfg *Config, now time.Time) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), cfg.DailyRunHour, cfg.DailyRunMinute, 0, 0, time.UTC)
	if now.Before(target) {
		return target
	}
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), cfg.DailyRunHour, cfg.DailyRunMinute, 0, 0, time.UTC)
}
