// Package fetch drives paced calls against the data vendor, applies the
// economic filters and assembles normalized row batches.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"optflow/internal/contract"
	"optflow/internal/model"
	"optflow/internal/pace"
	"optflow/internal/provider"
)

// ErrEmptyResult means the vendor returned nothing usable after filtering.
// It is caller-visible rather than a silent empty batch: an empty snapshot
// for a liquid symbol signals an upstream problem worth surfacing.
var ErrEmptyResult = errors.New("fetch: empty result")

// ErrTransient wraps network or vendor-side failures. The pipeline logs
// these per symbol and moves on.
var ErrTransient = errors.New("fetch: transient vendor failure")

const defaultCallTimeout = 5 * time.Minute

// Orchestrator owns one Pacer and therefore one goroutine's worth of vendor
// traffic. Parallel crawls construct one Orchestrator per worker.
type Orchestrator struct {
	client  provider.Client
	pacer   *pace.Pacer
	clock   pace.Clock
	log     *slog.Logger
	timeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the ingestion-timestamp clock.
func WithClock(c pace.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithCallTimeout sets the deadline put around each vendor call.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// New creates an Orchestrator over the vendor client and pacer.
func New(client provider.Client, pacer *pace.Pacer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:  client,
		pacer:   pacer,
		clock:   pace.SystemClock(),
		log:     slog.Default(),
		timeout: defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// callCtx wraps ctx with the per-call deadline.
func (o *Orchestrator) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.timeout)
}

// Snapshot fetches the option-chain snapshot for underlying in one paced
// call, drops records with a non-positive underlying price or outside the
// filter's moneyness/DTE bounds, and flattens the rest into normalized rows
// stamped with the ingestion time.
func (o *Orchestrator) Snapshot(ctx context.Context, underlying string, f contract.Filter) ([]model.OptionRow, error) {
	o.pacer.Acquire()
	cctx, cancel := o.callCtx(ctx)
	defer cancel()

	raws, err := o.client.OptionChain(cctx, underlying, provider.ChainQuery{
		ExpirationLTE: f.AsOf.AddDate(0, 0, f.MaxDTE),
	})
	if err != nil {
		if errors.Is(err, provider.ErrNoData) {
			return nil, fmt.Errorf("%w: snapshot %s", ErrEmptyResult, underlying)
		}
		return nil, fmt.Errorf("%w: snapshot %s: %w", ErrTransient, underlying, err)
	}

	rows := make([]model.OptionRow, 0, len(raws))
	for _, raw := range raws {
		spot, ok := lookupFloat(raw, "underlying_asset.price")
		if !ok || spot <= 0 {
			continue
		}
		c, ok := snapshotContract(raw, underlying)
		if !ok {
			continue
		}
		perRecord := f
		perRecord.RefPrice = spot
		if !perRecord.Keep(c) {
			continue
		}
		rec := flatten(raw, snapshotFields, o.clock.Now())
		rows = append(rows, model.OptionRowFromRecord(rec))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: snapshot %s: no contracts after filtering %d records", ErrEmptyResult, underlying, len(raws))
	}
	return rows, nil
}

// snapshotContract assembles a Contract from the record's identity fields so
// the snapshot filter reuses the same Keep formula as decoded identifiers.
func snapshotContract(raw map[string]any, underlying string) (contract.Contract, bool) {
	strike, ok := lookupFloat(raw, "details.strike_price")
	if !ok {
		return contract.Contract{}, false
	}
	expStr, ok := lookupString(raw, "details.expiration_date")
	if !ok {
		return contract.Contract{}, false
	}
	expiry, err := time.ParseInLocation("2006-01-02", expStr, time.UTC)
	if err != nil {
		return contract.Contract{}, false
	}
	side := contract.SideCall
	if ctype, _ := lookupString(raw, "details.contract_type"); ctype == "put" {
		side = contract.SidePut
	}
	return contract.Contract{
		Underlying: underlying,
		Expiry:     expiry,
		Side:       side,
		Strike:     decimal.NewFromFloat(strike),
	}, true
}

// DailyBars fetches daily bars for symbol over the inclusive date range in
// one paced call.
func (o *Orchestrator) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error) {
	o.pacer.Acquire()
	cctx, cancel := o.callCtx(ctx)
	defer cancel()

	bars, err := o.client.DailyAggregates(cctx, symbol, from, to)
	if err != nil {
		if errors.Is(err, provider.ErrNoData) {
			return nil, fmt.Errorf("%w: bars %s %s..%s", ErrEmptyResult, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("%w: bars %s: %w", ErrTransient, symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: bars %s %s..%s", ErrEmptyResult, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return bars, nil
}

// ContractUniverse walks calendar months from from to to inclusive, pacing
// one contract-listing call per month start, and returns the deduplicated
// union of decodable contracts sorted by identifier. An empty monthly page
// is not a failure; only a vendor error is.
func (o *Orchestrator) ContractUniverse(ctx context.Context, underlying string, from, to time.Time) ([]contract.Contract, error) {
	seen := make(map[string]contract.Contract)
	for i := 0; ; i++ {
		cursor := addMonthsClamped(from, i)
		if cursor.After(to) {
			break
		}
		o.pacer.Acquire()
		cctx, cancel := o.callCtx(ctx)
		tickers, err := o.client.OptionContracts(cctx, underlying, cursor)
		cancel()
		if err != nil {
			if errors.Is(err, provider.ErrNoData) {
				continue // nothing listed that month
			}
			return nil, fmt.Errorf("%w: contracts %s as of %s: %w", ErrTransient, underlying, cursor.Format("2006-01-02"), err)
		}
		for _, t := range tickers {
			c, err := contract.Parse(t, underlying)
			if err != nil {
				o.log.Debug("skipping undecodable contract", "identifier", t, "error", err)
				continue
			}
			seen[c.Symbol()] = c
		}
	}

	universe := make([]contract.Contract, 0, len(seen))
	for _, c := range seen {
		universe = append(universe, c)
	}
	sort.Slice(universe, func(i, j int) bool { return universe[i].Symbol() < universe[j].Symbol() })
	return universe, nil
}

// addMonthsClamped advances t by whole months, clamping the day to the
// target month's length. AddDate would normalize Jan 31 + 1 month to Mar 2
// and the walk would never visit February.
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// ContractBars fetches daily bars for every contract of underlying that
// existed in [from, to] and survives the filter referenced at from. Each row
// is tagged with its originating contract identifier. Contracts without bars
// are skipped; the batch fails only when nothing at all comes back.
func (o *Orchestrator) ContractBars(ctx context.Context, underlying string, from, to time.Time, f contract.Filter) ([]model.Bar, error) {
	universe, err := o.ContractUniverse(ctx, underlying, from, to)
	if err != nil {
		return nil, err
	}

	f.AsOf = from
	var rows []model.Bar
	for _, c := range universe {
		if !f.Keep(c) {
			continue
		}
		symbol := c.Symbol()

		o.pacer.Acquire()
		cctx, cancel := o.callCtx(ctx)
		bars, err := o.client.DailyAggregates(cctx, "O:"+symbol, from, to)
		cancel()
		if err != nil {
			if errors.Is(err, provider.ErrNoData) {
				continue
			}
			return nil, fmt.Errorf("%w: contract bars %s: %w", ErrTransient, symbol, err)
		}
		for _, b := range bars {
			b.Symbol = underlying
			b.ContractSymbol = symbol
			rows = append(rows, b)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: contract bars %s %s..%s", ErrEmptyResult, underlying, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return rows, nil
}
