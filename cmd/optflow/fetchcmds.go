package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"optflow/internal/contract"
	"optflow/internal/pipeline"
)

// snapshotCmd fetches one option-chain snapshot and archives it.
type snapshotCmd struct {
	symbol string
	date   string
	span   float64
	maxDTE int
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "fetch and archive an option-chain snapshot" }
func (*snapshotCmd) Usage() string {
	return `snapshot -symbol <underlying> [-date YYYY-MM-DD] [-span 0.2] [-max-dte 90]:
  Fetch the option-chain snapshot, validate it and archive raw + processed.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "underlying ticker (required)")
	f.StringVar(&c.date, "date", "", "snapshot date, defaults to today UTC")
	f.Float64Var(&c.span, "span", -1, "moneyness span, defaults to config")
	f.IntVar(&c.maxDTE, "max-dte", -1, "max days to expiry, defaults to config")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Println("-symbol is required")
		return subcommands.ExitUsageError
	}
	a, ok := initApp()
	if !ok {
		return subcommands.ExitFailure
	}
	date, err := parseDate(c.date, time.Now())
	if err != nil {
		fmt.Println("bad -date:", err)
		return subcommands.ExitUsageError
	}

	task := pipeline.Task{
		Symbol:  c.symbol,
		Dataset: pipeline.DatasetSnapshot,
		From:    date,
		To:      date,
		Filter:  buildFilter(a, date, c.span, c.maxDTE, 0),
	}
	return runTasks(ctx, a, []pipeline.Task{task})
}

// barsCmd fetches daily bars for one symbol over a date range.
type barsCmd struct {
	symbol string
	from   string
	to     string
}

func (*barsCmd) Name() string     { return "bars" }
func (*barsCmd) Synopsis() string { return "fetch and archive daily bars" }
func (*barsCmd) Usage() string {
	return `bars -symbol <ticker> -from YYYY-MM-DD [-to YYYY-MM-DD]:
  Fetch daily bars over the inclusive range, validate and archive.
`
}

func (c *barsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "ticker (required)")
	f.StringVar(&c.from, "from", "", "range start (required)")
	f.StringVar(&c.to, "to", "", "range end, defaults to today UTC")
}

func (c *barsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" || c.from == "" {
		fmt.Println("-symbol and -from are required")
		return subcommands.ExitUsageError
	}
	a, ok := initApp()
	if !ok {
		return subcommands.ExitFailure
	}
	from, to, status := parseRange(c.from, c.to)
	if status != subcommands.ExitSuccess {
		return status
	}

	task := pipeline.Task{Symbol: c.symbol, Dataset: pipeline.DatasetBars, From: from, To: to}
	return runTasks(ctx, a, []pipeline.Task{task})
}

// universeCmd lists the deduplicated contract universe for an underlying.
type universeCmd struct {
	symbol string
	from   string
	to     string
}

func (*universeCmd) Name() string     { return "universe" }
func (*universeCmd) Synopsis() string { return "list the option-contract universe" }
func (*universeCmd) Usage() string {
	return `universe -symbol <underlying> -from YYYY-MM-DD [-to YYYY-MM-DD]:
  Walk the listing months and print every decodable contract identifier.
`
}

func (c *universeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "underlying ticker (required)")
	f.StringVar(&c.from, "from", "", "range start (required)")
	f.StringVar(&c.to, "to", "", "range end, defaults to today UTC")
}

func (c *universeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" || c.from == "" {
		fmt.Println("-symbol and -from are required")
		return subcommands.ExitUsageError
	}
	a, ok := initApp()
	if !ok {
		return subcommands.ExitFailure
	}
	from, to, status := parseRange(c.from, c.to)
	if status != subcommands.ExitSuccess {
		return status
	}

	universe, err := a.Fetcher.ContractUniverse(ctx, c.symbol, from, to)
	if err != nil {
		a.Log.Error("universe fetch failed", "symbol", c.symbol, "error", err)
		return subcommands.ExitFailure
	}
	for _, ct := range universe {
		fmt.Println(ct.Symbol())
	}
	a.Log.Info("universe listed", "symbol", c.symbol, "contracts", len(universe))
	return subcommands.ExitSuccess
}

// contractBarsCmd fetches per-contract daily bars for an underlying.
type contractBarsCmd struct {
	symbol   string
	from     string
	to       string
	refPrice float64
	span     float64
	maxDTE   int
}

func (*contractBarsCmd) Name() string     { return "contract-bars" }
func (*contractBarsCmd) Synopsis() string { return "fetch and archive per-contract daily bars" }
func (*contractBarsCmd) Usage() string {
	return `contract-bars -symbol <underlying> -from YYYY-MM-DD [-to YYYY-MM-DD] [-ref-price N]:
  Fetch daily bars for every contract in the filtered universe.
`
}

func (c *contractBarsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "underlying ticker (required)")
	f.StringVar(&c.from, "from", "", "range start (required)")
	f.StringVar(&c.to, "to", "", "range end, defaults to today UTC")
	f.Float64Var(&c.refPrice, "ref-price", 0, "reference price for moneyness, 0 disables the band")
	f.Float64Var(&c.span, "span", -1, "moneyness span, defaults to config")
	f.IntVar(&c.maxDTE, "max-dte", -1, "max days to expiry, defaults to config")
}

func (c *contractBarsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" || c.from == "" {
		fmt.Println("-symbol and -from are required")
		return subcommands.ExitUsageError
	}
	a, ok := initApp()
	if !ok {
		return subcommands.ExitFailure
	}
	from, to, status := parseRange(c.from, c.to)
	if status != subcommands.ExitSuccess {
		return status
	}

	task := pipeline.Task{
		Symbol:  c.symbol,
		Dataset: pipeline.DatasetContractBars,
		From:    from,
		To:      to,
		Filter:  buildFilter(a, from, c.span, c.maxDTE, c.refPrice),
	}
	return runTasks(ctx, a, []pipeline.Task{task})
}

func buildFilter(a *App, asOf time.Time, span float64, maxDTE int, refPrice float64) contract.Filter {
	if span < 0 {
		span = a.Config.Span
	}
	if maxDTE < 0 {
		maxDTE = a.Config.MaxDTE
	}
	return contract.Filter{Span: span, MaxDTE: maxDTE, AsOf: asOf, RefPrice: refPrice}
}

func parseRange(fromStr, toStr string) (from, to time.Time, status subcommands.ExitStatus) {
	from, err := parseDate(fromStr, time.Now())
	if err != nil {
		fmt.Println("bad -from:", err)
		return from, to, subcommands.ExitUsageError
	}
	to, err = parseDate(toStr, time.Now())
	if err != nil {
		fmt.Println("bad -to:", err)
		return from, to, subcommands.ExitUsageError
	}
	if to.Before(from) {
		fmt.Println("-to is before -from")
		return from, to, subcommands.ExitUsageError
	}
	return from, to, subcommands.ExitSuccess
}

func runTasks(ctx context.Context, a *App, tasks []pipeline.Task) subcommands.ExitStatus {
	sum := a.Driver.Run(ctx, tasks, nil)
	if sum.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
