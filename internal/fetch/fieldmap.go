package fetch

import (
	"strings"
	"time"

	"optflow/internal/model"
)

// FieldMapping binds one key path in the vendor's nested snapshot shape to a
// normalized column name. The mapping table is the only place that knows the
// vendor's object layout; flattening itself is shape-agnostic.
type FieldMapping struct {
	Path   string // dot-separated path into the nested record
	Column string // normalized column name
}

// snapshotFields is the declared field map for option-chain snapshot records:
// contract identity, implied volatility, the four greeks, open interest,
// break-even price, the day bar, quote, trade and underlying fields.
var snapshotFields = []FieldMapping{
	{"details.ticker", "ticker"},
	{"details.expiration_date", "expiration_date"},
	{"details.strike_price", "strike_price"},
	{"details.contract_type", "contract_type"},
	{"implied_volatility", "implied_volatility"},
	{"greeks.delta", "delta"},
	{"greeks.gamma", "gamma"},
	{"greeks.theta", "theta"},
	{"greeks.vega", "vega"},
	{"open_interest", "open_interest"},
	{"break_even_price", "break_even_price"},
	{"day.o", "day_open"},
	{"day.h", "day_high"},
	{"day.l", "day_low"},
	{"day.c", "day_close"},
	{"day.v", "day_volume"},
	{"last_quote.bid", "bid"},
	{"last_quote.ask", "ask"},
	{"last_quote.bid_size", "bid_size"},
	{"last_quote.ask_size", "ask_size"},
	{"last_quote.timestamp", "quote_timestamp"},
	{"last_trade.price", "last_price"},
	{"last_trade.size", "last_size"},
	{"last_trade.timestamp", "trade_timestamp"},
	{"underlying_asset.price", "underlying_price"},
	{"underlying_asset.ticker", "underlying_ticker"},
}

// lookup walks a dot-separated path through nested map[string]any values.
func lookup(raw map[string]any, path string) (any, bool) {
	cur := any(raw)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

func lookupFloat(raw map[string]any, path string) (float64, bool) {
	v, ok := lookup(raw, path)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func lookupString(raw map[string]any, path string) (string, bool) {
	v, ok := lookup(raw, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// flatten maps one raw nested record into a flat Record stamped with the
// ingestion time (second resolution). Pure: the raw record is not modified
// and absent paths simply stay absent.
func flatten(raw map[string]any, fields []FieldMapping, ingestedAt time.Time) model.Record {
	rec := model.Record{"ts": ingestedAt.UTC().Truncate(time.Second).Format(time.RFC3339)}
	for _, f := range fields {
		if v, ok := lookup(raw, f.Path); ok {
			rec[f.Column] = v
		}
	}
	return rec
}
