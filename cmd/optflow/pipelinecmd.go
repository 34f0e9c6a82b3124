package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"

	"optflow/internal/app"
	"optflow/internal/pipeline"
)

// pipelineCmd runs the whole jobs file, once or on the daily schedule.
type pipelineCmd struct {
	jobs  string
	daily bool
}

func (*pipelineCmd) Name() string     { return "pipeline" }
func (*pipelineCmd) Synopsis() string { return "run the ingestion pipeline over the jobs file" }
func (*pipelineCmd) Usage() string {
	return `pipeline [-jobs jobs.yaml] [-daily]:
  Run every pending task from the jobs file. With -daily, keep running on
  the configured schedule until interrupted.
`
}

func (c *pipelineCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.jobs, "jobs", "", "jobs file, defaults to config")
	f.BoolVar(&c.daily, "daily", false, "run on the daily schedule instead of once")
}

func (c *pipelineCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := initApp()
	if !ok {
		return subcommands.ExitFailure
	}
	cfg := a.Config
	if c.jobs != "" {
		cfg.JobsFile = c.jobs
	}

	drivers := []*pipeline.Driver{a.Driver}
	if cfg.Workers > 1 {
		var err error
		drivers, err = app.NewWorkerDrivers(cfg, a.Client, a.Log)
		if err != nil {
			a.Log.Error("could not build workers", "error", err)
			return subcommands.ExitFailure
		}
		a.Log.Info("parallel mode", "workers", len(drivers))
	}

	if c.daily {
		if err := app.RunDaily(cfg, drivers, a.Log); err != nil {
			a.Log.Error("daily loop failed", "error", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	tasks, err := app.LoadJobs(cfg.JobsFile, cfg, time.Now().UTC())
	if err != nil {
		a.Log.Error("could not load jobs", "error", err)
		return subcommands.ExitFailure
	}
	pending := pipeline.PendingTasks(tasks, cfg.ProgressPath())
	if len(pending) == 0 {
		a.Log.Info("no pending tasks, skip")
		return subcommands.ExitSuccess
	}

	progressUpdates, writerDone := pipeline.StartProgressWriter(cfg.ProgressPath())

	var sum pipeline.Summary
	if len(drivers) == 1 {
		sum = a.Driver.Run(ctx, pending, progressUpdates)
	} else {
		sum = pipeline.RunParallel(ctx, drivers, pending, progressUpdates)
	}
	close(progressUpdates)
	<-writerDone
	if sum.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
