// Command optflow fetches, validates and archives option market data.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/google/subcommands"

	"optflow/internal/app"
	"optflow/internal/fetch"
	"optflow/internal/pipeline"
	"optflow/internal/provider/massive"
	"optflow/internal/slogx"
)

// App holds application dependencies built by Wire.
type App struct {
	Config  *app.Config
	Client  *massive.Client
	Fetcher *fetch.Orchestrator
	Driver  *pipeline.Driver
	Log     *slog.Logger
}

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&snapshotCmd{}, "fetch")
	subcommands.Register(&barsCmd{}, "fetch")
	subcommands.Register(&universeCmd{}, "fetch")
	subcommands.Register(&contractBarsCmd{}, "fetch")
	subcommands.Register(&exportCmd{}, "archive")
	subcommands.Register(&pipelineCmd{}, "run")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}

func initApp() (*App, bool) {
	a, err := InitializeApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return nil, false
	}
	return a, true
}

func parseDate(s string, def time.Time) (time.Time, error) {
	if s == "" {
		d := def.UTC()
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
