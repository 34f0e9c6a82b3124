// Package pipeline runs fetch-validate-promote cycles over a task list.
// Each task lands its batch in the raw archive, re-reads it, validates the
// read-back rows and promotes them to the processed archive only when every
// quality rule passes. A task failure never aborts the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"optflow/internal/archive"
	"optflow/internal/contract"
	"optflow/internal/fetch"
	"optflow/internal/model"
	"optflow/internal/validate"
)

// Dataset names one of the fetchable table shapes.
type Dataset string

const (
	DatasetSnapshot     Dataset = "option_snapshot"
	DatasetBars         Dataset = "daily_bars"
	DatasetContractBars Dataset = "option_bars"
)

// Task is one unit of pipeline work: a symbol, a dataset and a date range.
// Snapshot tasks use From as their partition date; bar tasks archive under
// the From..To range.
type Task struct {
	Symbol  string
	Dataset Dataset
	From    time.Time
	To      time.Time
	Filter  contract.Filter
}

func (t Task) label() string {
	if t.Dataset == DatasetSnapshot {
		return archive.DateLabel(t.From)
	}
	return archive.RangeLabel(t.From, t.To)
}

// ID renders the task for logs and run reports.
func (t Task) ID() string {
	return fmt.Sprintf("%s/%s/%s", t.Symbol, t.Dataset, t.label())
}

// Fetcher is the vendor-facing surface the driver consumes. *fetch.Orchestrator
// implements it; parallel runs build one per worker so each holds its own pacer.
type Fetcher interface {
	Snapshot(ctx context.Context, underlying string, f contract.Filter) ([]model.OptionRow, error)
	DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error)
	ContractBars(ctx context.Context, underlying string, from, to time.Time, f contract.Filter) ([]model.Bar, error)
}

// TaskResult is the per-task outcome, sent by workers for fan-in.
type TaskResult struct {
	Ok       bool
	Task     Task
	Rows     int
	Promoted bool
	Reason   string
}

// Driver executes tasks against one Fetcher and a raw/processed archive pair.
type Driver struct {
	fetcher   Fetcher
	source    string
	raw       archive.Store
	processed archive.Store
	log       *slog.Logger
}

// NewDriver wires a driver. source is the vendor name used in partition keys.
func NewDriver(fetcher Fetcher, source string, raw, processed archive.Store, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{fetcher: fetcher, source: source, raw: raw, processed: processed, log: log}
}

// runTask executes one task end to end. An empty vendor result and a
// validation failure are both task failures, but only the latter leaves the
// raw partition behind for inspection.
func (d *Driver) runTask(ctx context.Context, t Task) TaskResult {
	key := archive.Key{Source: d.source, Symbol: t.Symbol, Label: t.label()}

	switch t.Dataset {
	case DatasetSnapshot:
		rows, err := d.fetcher.Snapshot(ctx, t.Symbol, t.Filter)
		if err != nil {
			return failResult(t, err)
		}
		return landBatch(d, t, key, rows, model.OptionRecords, validate.OptionSnapshotSpec())
	case DatasetBars:
		rows, err := d.fetcher.DailyBars(ctx, t.Symbol, t.From, t.To)
		if err != nil {
			return failResult(t, err)
		}
		return landBatch(d, t, key, rows, model.BarRecords, validate.BarSpec())
	case DatasetContractBars:
		rows, err := d.fetcher.ContractBars(ctx, t.Symbol, t.From, t.To, t.Filter)
		if err != nil {
			return failResult(t, err)
		}
		return landBatch(d, t, key, rows, model.BarRecords, validate.BarSpec())
	default:
		return TaskResult{Task: t, Reason: fmt.Sprintf("unknown dataset %q", t.Dataset)}
	}
}

func failResult(t Task, err error) TaskResult {
	r := TaskResult{Task: t, Reason: err.Error()}
	if errors.Is(err, fetch.ErrEmptyResult) {
		r.Reason = "no data"
	}
	return r
}

// landBatch writes rows to the raw store, re-reads them so validation sees
// exactly what a downstream reader would, and promotes on a clean report.
func landBatch[T any](d *Driver, t Task, key archive.Key, rows []T, toRecords func([]T) []model.Record, spec validate.Spec) TaskResult {
	if err := archive.Write(d.raw, key, rows); err != nil {
		return TaskResult{Task: t, Reason: err.Error()}
	}
	back, err := archive.Read[T](d.raw, key)
	if err != nil {
		return TaskResult{Task: t, Reason: "read back: " + err.Error()}
	}

	report := validate.Run(toRecords(back), spec)
	if !report.Passed() {
		report.Log(d.log.With("task", t.ID()))
		return TaskResult{Task: t, Rows: len(back), Reason: report.Err().Error()}
	}

	if err := archive.Write(d.processed, key, back); err != nil {
		return TaskResult{Task: t, Rows: len(back), Reason: "promote: " + err.Error()}
	}
	return TaskResult{Ok: true, Task: t, Rows: len(back), Promoted: true}
}
