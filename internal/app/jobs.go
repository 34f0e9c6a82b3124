package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"optflow/internal/contract"
	"optflow/internal/pipeline"
)

type jobsFile struct {
	Defaults jobDefaults `yaml:"defaults"`
	Jobs     []jobEntry  `yaml:"jobs"`
}

type jobDefaults struct {
	Span   *float64 `yaml:"span"`
	MaxDTE *int     `yaml:"max_dte"`
}

type jobEntry struct {
	Symbol   string   `yaml:"symbol"`
	Dataset  string   `yaml:"dataset"`
	From     string   `yaml:"from"`
	To       string   `yaml:"to"`
	Span     *float64 `yaml:"span"`
	MaxDTE   *int     `yaml:"max_dte"`
	RefPrice float64  `yaml:"ref_price"`
}

// LoadJobs reads the YAML jobs file into pipeline tasks. Missing dates
// default to now's UTC date; per-job span and max_dte override the file
// defaults, which override cfg.
func LoadJobs(path string, cfg *Config, now time.Time) ([]pipeline.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jobs file: %w", err)
	}
	var f jobsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("jobs file %s: %w", path, err)
	}
	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("jobs file %s: no jobs defined", path)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tasks := make([]pipeline.Task, 0, len(f.Jobs))
	for i, j := range f.Jobs {
		if j.Symbol == "" {
			return nil, fmt.Errorf("jobs file %s: job %d has no symbol", path, i)
		}
		dataset := pipeline.Dataset(j.Dataset)
		switch dataset {
		case pipeline.DatasetSnapshot, pipeline.DatasetBars, pipeline.DatasetContractBars:
		default:
			return nil, fmt.Errorf("jobs file %s: job %d has unknown dataset %q", path, i, j.Dataset)
		}

		from := today
		if j.From != "" {
			if from, err = time.ParseInLocation("2006-01-02", j.From, time.UTC); err != nil {
				return nil, fmt.Errorf("jobs file %s: job %d from: %w", path, i, err)
			}
		}
		to := from
		if j.To != "" {
			if to, err = time.ParseInLocation("2006-01-02", j.To, time.UTC); err != nil {
				return nil, fmt.Errorf("jobs file %s: job %d to: %w", path, i, err)
			}
		}
		if to.Before(from) {
			return nil, fmt.Errorf("jobs file %s: job %d range %s..%s is inverted", path, i, j.From, j.To)
		}

		span := cfg.Span
		if f.Defaults.Span != nil {
			span = *f.Defaults.Span
		}
		if j.Span != nil {
			span = *j.Span
		}
		maxDTE := cfg.MaxDTE
		if f.Defaults.MaxDTE != nil {
			maxDTE = *f.Defaults.MaxDTE
		}
		if j.MaxDTE != nil {
			maxDTE = *j.MaxDTE
		}

		tasks = append(tasks, pipeline.Task{
			Symbol:  j.Symbol,
			Dataset: dataset,
			From:    from,
			To:      to,
			Filter: contract.Filter{
				Span:     span,
				MaxDTE:   maxDTE,
				AsOf:     from,
				RefPrice: j.RefPrice,
			},
		})
	}
	return tasks, nil
}
