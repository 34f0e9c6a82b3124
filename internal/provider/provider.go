// Package provider defines the vendor data-source abstraction used by the
// fetch orchestrator. Implementations own transport, pagination and retry;
// callers own pacing and filtering.
package provider

import (
	"context"
	"errors"
	"time"

	"optflow/internal/model"
)

// ErrNoData is returned when the vendor explicitly signals that no data
// exists for the request, as opposed to a transport or vendor-side failure.
var ErrNoData = errors.New("provider: no data")

// ChainQuery bounds an option-chain snapshot request.
type ChainQuery struct {
	// ExpirationLTE keeps only contracts expiring on or before this date.
	ExpirationLTE time.Time
	// Limit is the vendor page size.
	Limit int
}

// Client is the data-vendor capability: fetch bars, option-chain snapshots
// and contract listings, or fail. Methods return the vendor's rows in full;
// economic filtering happens downstream.
type Client interface {
	Name() string

	// DailyAggregates returns daily OHLCV bars for ticker over the
	// inclusive date range.
	DailyAggregates(ctx context.Context, ticker string, from, to time.Time) ([]model.Bar, error)

	// OptionChain returns the raw nested snapshot records for every
	// contract on underlying matching the query.
	OptionChain(ctx context.Context, underlying string, q ChainQuery) ([]map[string]any, error)

	// OptionContracts returns the contract identifiers that existed for
	// underlying as of the given date.
	OptionContracts(ctx context.Context, underlying string, asOf time.Time) ([]string, error)
}
