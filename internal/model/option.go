package model

// OptionRow is one flattened option-chain snapshot row with the fixed
// normalized column set. Identity columns are always present; market-data
// columns are optional because the vendor omits them for illiquid contracts,
// so they map to parquet optionals via pointers.
type OptionRow struct {
	IngestedAt       string   `json:"ts" parquet:"ts"`
	Ticker           string   `json:"ticker" parquet:"ticker"`
	ExpirationDate   string   `json:"expiration_date" parquet:"expiration_date"`
	StrikePrice      float64  `json:"strike_price" parquet:"strike_price"`
	ContractType     string   `json:"contract_type" parquet:"contract_type"`
	ImpliedVol       *float64 `json:"implied_volatility,omitempty" parquet:"implied_volatility,optional"`
	Delta            *float64 `json:"delta,omitempty" parquet:"delta,optional"`
	Gamma            *float64 `json:"gamma,omitempty" parquet:"gamma,optional"`
	Theta            *float64 `json:"theta,omitempty" parquet:"theta,optional"`
	Vega             *float64 `json:"vega,omitempty" parquet:"vega,optional"`
	OpenInterest     *float64 `json:"open_interest,omitempty" parquet:"open_interest,optional"`
	BreakEvenPrice   *float64 `json:"break_even_price,omitempty" parquet:"break_even_price,optional"`
	DayOpen          *float64 `json:"day_open,omitempty" parquet:"day_open,optional"`
	DayHigh          *float64 `json:"day_high,omitempty" parquet:"day_high,optional"`
	DayLow           *float64 `json:"day_low,omitempty" parquet:"day_low,optional"`
	DayClose         *float64 `json:"day_close,omitempty" parquet:"day_close,optional"`
	DayVolume        *float64 `json:"day_volume,omitempty" parquet:"day_volume,optional"`
	Bid              *float64 `json:"bid,omitempty" parquet:"bid,optional"`
	Ask              *float64 `json:"ask,omitempty" parquet:"ask,optional"`
	BidSize          *float64 `json:"bid_size,omitempty" parquet:"bid_size,optional"`
	AskSize          *float64 `json:"ask_size,omitempty" parquet:"ask_size,optional"`
	QuoteTimestamp   *float64 `json:"quote_timestamp,omitempty" parquet:"quote_timestamp,optional"`
	LastPrice        *float64 `json:"last_price,omitempty" parquet:"last_price,optional"`
	LastSize         *float64 `json:"last_size,omitempty" parquet:"last_size,optional"`
	TradeTimestamp   *float64 `json:"trade_timestamp,omitempty" parquet:"trade_timestamp,optional"`
	UnderlyingPrice  *float64 `json:"underlying_price,omitempty" parquet:"underlying_price,optional"`
	UnderlyingTicker string   `json:"underlying_ticker" parquet:"underlying_ticker"`
}

// optionFloatColumns maps the optional numeric columns to struct accessors so
// the Record conversions stay in one place.
var optionFloatColumns = []struct {
	name string
	get  func(*OptionRow) **float64
}{
	{"implied_volatility", func(r *OptionRow) **float64 { return &r.ImpliedVol }},
	{"delta", func(r *OptionRow) **float64 { return &r.Delta }},
	{"gamma", func(r *OptionRow) **float64 { return &r.Gamma }},
	{"theta", func(r *OptionRow) **float64 { return &r.Theta }},
	{"vega", func(r *OptionRow) **float64 { return &r.Vega }},
	{"open_interest", func(r *OptionRow) **float64 { return &r.OpenInterest }},
	{"break_even_price", func(r *OptionRow) **float64 { return &r.BreakEvenPrice }},
	{"day_open", func(r *OptionRow) **float64 { return &r.DayOpen }},
	{"day_high", func(r *OptionRow) **float64 { return &r.DayHigh }},
	{"day_low", func(r *OptionRow) **float64 { return &r.DayLow }},
	{"day_close", func(r *OptionRow) **float64 { return &r.DayClose }},
	{"day_volume", func(r *OptionRow) **float64 { return &r.DayVolume }},
	{"bid", func(r *OptionRow) **float64 { return &r.Bid }},
	{"ask", func(r *OptionRow) **float64 { return &r.Ask }},
	{"bid_size", func(r *OptionRow) **float64 { return &r.BidSize }},
	{"ask_size", func(r *OptionRow) **float64 { return &r.AskSize }},
	{"quote_timestamp", func(r *OptionRow) **float64 { return &r.QuoteTimestamp }},
	{"last_price", func(r *OptionRow) **float64 { return &r.LastPrice }},
	{"last_size", func(r *OptionRow) **float64 { return &r.LastSize }},
	{"trade_timestamp", func(r *OptionRow) **float64 { return &r.TradeTimestamp }},
	{"underlying_price", func(r *OptionRow) **float64 { return &r.UnderlyingPrice }},
}

// OptionRowFromRecord builds the typed row from a flattened record.
func OptionRowFromRecord(rec Record) OptionRow {
	var row OptionRow
	row.IngestedAt, _ = rec.String("ts")
	row.Ticker, _ = rec.String("ticker")
	row.ExpirationDate, _ = rec.String("expiration_date")
	row.StrikePrice, _ = rec.Float("strike_price")
	row.ContractType, _ = rec.String("contract_type")
	row.UnderlyingTicker, _ = rec.String("underlying_ticker")
	for _, col := range optionFloatColumns {
		if v, ok := rec.Float(col.name); ok {
			f := v
			*col.get(&row) = &f
		}
	}
	return row
}

// Record flattens the row back into the column form the validator consumes.
// Absent optional columns stay absent so null checks see them.
func (r OptionRow) Record() Record {
	rec := Record{
		"ts":                r.IngestedAt,
		"ticker":            r.Ticker,
		"expiration_date":   r.ExpirationDate,
		"strike_price":      r.StrikePrice,
		"contract_type":     r.ContractType,
		"underlying_ticker": r.UnderlyingTicker,
	}
	row := r
	for _, col := range optionFloatColumns {
		if p := *col.get(&row); p != nil {
			rec[col.name] = *p
		}
	}
	return rec
}

// OptionRecords converts a batch of option rows for validation.
func OptionRecords(rows []OptionRow) []Record {
	recs := make([]Record, len(rows))
	for i, r := range rows {
		recs[i] = r.Record()
	}
	return recs
}
