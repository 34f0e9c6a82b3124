package model

import "time"

// Bar represents one daily OHLCV bar.
// Shared by provider, archive and serialization (json, parquet).
type Bar struct {
	Symbol         string  `json:"symbol" parquet:"symbol"`
	Timestamp      int64   `json:"t" parquet:"t"` // Unix timestamp in milliseconds
	Open           float64 `json:"o" parquet:"o"`
	High           float64 `json:"h" parquet:"h"`
	Low            float64 `json:"l" parquet:"l"`
	Close          float64 `json:"c" parquet:"c"`
	Volume         int64   `json:"v" parquet:"v"`
	VWAP           float64 `json:"vw,omitempty" parquet:"vw,optional"` // Volume weighted average price
	Transactions   int64   `json:"n,omitempty" parquet:"n,optional"`   // Number of transactions
	ContractSymbol string  `json:"option_symbol,omitempty" parquet:"option_symbol,optional"`
}

// Date returns the bar's UTC calendar date.
func (b Bar) Date() time.Time {
	t := time.UnixMilli(b.Timestamp).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Record flattens the bar into the column form the validator consumes.
func (b Bar) Record() Record {
	rec := Record{
		"symbol": b.Symbol,
		"t":      b.Timestamp,
		"o":      b.Open,
		"h":      b.High,
		"l":      b.Low,
		"c":      b.Close,
		"v":      b.Volume,
		"vw":     b.VWAP,
		"n":      b.Transactions,
	}
	if b.ContractSymbol != "" {
		rec["option_symbol"] = b.ContractSymbol
	}
	return rec
}

// BarRecords converts a batch of bars for validation.
func BarRecords(bars []Bar) []Record {
	recs := make([]Record, len(bars))
	for i, b := range bars {
		recs[i] = b.Record()
	}
	return recs
}
