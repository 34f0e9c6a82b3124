package validate

// Default invariant sets for the two datasets the pipeline ingests. The
// tolerance absorbs vendor rounding noise in the sub-cent range.

// BarSpec validates daily OHLCV bar batches.
func BarSpec() Spec {
	return Spec{
		Required:     []string{"symbol", "t", "o", "h", "l", "c", "v"},
		NonNull:      []string{"symbol", "t", "o", "h", "l", "c", "v"},
		DuplicateKey: []string{"symbol", "option_symbol", "t"},
		NonNegative:  []string{"v", "n"},
		Price:        PriceColumns{Open: "o", High: "h", Low: "l", Close: "c"},
		Tolerance:    0.01,
	}
}

// OptionSnapshotSpec validates flattened option-chain snapshot batches.
func OptionSnapshotSpec() Spec {
	return Spec{
		Required: []string{
			"ts", "ticker", "expiration_date", "strike_price", "contract_type",
			"underlying_ticker",
		},
		NonNull:      []string{"ts", "ticker", "expiration_date", "strike_price", "contract_type"},
		DuplicateKey: []string{"ticker", "ts"},
		NonNegative:  []string{"implied_volatility", "open_interest", "day_volume", "bid_size", "ask_size"},
		Price:        PriceColumns{Open: "day_open", High: "day_high", Low: "day_low", Close: "day_close"},
		Tolerance:    0.01,
	}
}
