package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"optflow/internal/archive"
	"optflow/internal/model"
	"optflow/internal/pipeline"
)

// exportCmd dumps an archived partition to CSV or JSON for inspection.
type exportCmd struct {
	symbol  string
	dataset string
	label   string
	store   string
	format  string
	out     string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "dump an archived partition to csv or json" }
func (*exportCmd) Usage() string {
	return `export -symbol <ticker> -dataset <name> -label <label> [-store processed] [-format csv] [-out path]:
  Read one parquet partition and write it in the requested format.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "ticker or underlying (required)")
	f.StringVar(&c.dataset, "dataset", string(pipeline.DatasetSnapshot), "option_snapshot | daily_bars | option_bars")
	f.StringVar(&c.label, "label", "", "partition label, a date or from_to range (required)")
	f.StringVar(&c.store, "store", "processed", "raw | processed")
	f.StringVar(&c.format, "format", "csv", "csv | json")
	f.StringVar(&c.out, "out", "", "output path, defaults next to the partition")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" || c.label == "" {
		fmt.Println("-symbol and -label are required")
		return subcommands.ExitUsageError
	}
	exporter := archive.NewExporter(c.format)
	if exporter == nil {
		fmt.Printf("unsupported format %q (use: csv, json)\n", c.format)
		return subcommands.ExitUsageError
	}
	a, ok := initApp()
	if !ok {
		return subcommands.ExitFailure
	}

	store := a.Config.ProcessedStore()
	switch c.store {
	case "processed":
	case "raw":
		store = a.Config.RawStore()
	default:
		fmt.Printf("unsupported store %q (use: raw, processed)\n", c.store)
		return subcommands.ExitUsageError
	}
	key := archive.Key{Source: a.Client.Name(), Symbol: c.symbol, Label: c.label}

	var records []model.Record
	switch pipeline.Dataset(c.dataset) {
	case pipeline.DatasetSnapshot:
		rows, err := archive.Read[model.OptionRow](store, key)
		if err != nil {
			a.Log.Error("partition read failed", "path", store.Path(key), "error", err)
			return subcommands.ExitFailure
		}
		records = model.OptionRecords(rows)
	case pipeline.DatasetBars, pipeline.DatasetContractBars:
		rows, err := archive.Read[model.Bar](store, key)
		if err != nil {
			a.Log.Error("partition read failed", "path", store.Path(key), "error", err)
			return subcommands.ExitFailure
		}
		records = model.BarRecords(rows)
	default:
		fmt.Printf("unknown dataset %q\n", c.dataset)
		return subcommands.ExitUsageError
	}

	out := c.out
	if out == "" {
		p := store.Path(key)
		out = p[:len(p)-len(".parquet")] + "." + exporter.Extension()
	}
	if err := exporter.Export(records, out); err != nil {
		a.Log.Error("export failed", "path", out, "error", err)
		return subcommands.ExitFailure
	}
	a.Log.Info("partition exported", "path", out, "rows", len(records))
	return subcommands.ExitSuccess
}
