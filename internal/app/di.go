package app

import (
	"log/slog"

	"optflow/internal/fetch"
	"optflow/internal/pace"
	"optflow/internal/pipeline"
	"optflow/internal/provider/massive"
	"optflow/internal/slogx"
)

// ProvideConfig loads config from environment (for Wire).
func ProvideConfig() (*Config, error) {
	return LoadConfig()
}

// ProvideLogger builds the process logger and installs it as the slog
// default (for Wire).
func ProvideLogger(cfg *Config) *slog.Logger {
	l := slogx.NewDefault(cfg.LogLevel)
	slog.SetDefault(l)
	return l
}

// ProvideClient creates the vendor client from config (for Wire).
func ProvideClient(cfg *Config) *massive.Client {
	return massive.New(cfg.BaseURL, cfg.APIKey)
}

// ProvidePacer creates the call pacer from config (for Wire).
func ProvidePacer(cfg *Config) (*pace.Pacer, error) {
	return pace.New(cfg.RatePerSec)
}

// ProvideFetcher creates the fetch orchestrator (for Wire).
func ProvideFetcher(client *massive.Client, pacer *pace.Pacer, cfg *Config, log *slog.Logger) *fetch.Orchestrator {
	return fetch.New(client, pacer, fetch.WithLogger(log), fetch.WithCallTimeout(cfg.FetchTimeout))
}

// ProvideDriver creates the pipeline driver over the raw and processed
// archives (for Wire).
func ProvideDriver(cfg *Config, client *massive.Client, fetcher *fetch.Orchestrator, log *slog.Logger) *pipeline.Driver {
	return pipeline.NewDriver(fetcher, client.Name(), cfg.RawStore(), cfg.ProcessedStore(), log)
}

// NewWorkerDrivers builds cfg.Workers drivers, each with its own pacer so
// the vendor rate holds per worker. They share one HTTP client.
func NewWorkerDrivers(cfg *Config, client *massive.Client, log *slog.Logger) ([]*pipeline.Driver, error) {
	drivers := make([]*pipeline.Driver, 0, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		pacer, err := pace.New(cfg.RatePerSec)
		if err != nil {
			return nil, err
		}
		fetcher := fetch.New(client, pacer, fetch.WithLogger(log), fetch.WithCallTimeout(cfg.FetchTimeout))
		drivers = append(drivers, pipeline.NewDriver(fetcher, client.Name(), cfg.RawStore(), cfg.ProcessedStore(), log))
	}
	return drivers, nil
}
