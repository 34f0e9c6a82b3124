package massive

import (
	"encoding/json"
	"fmt"
	"strconv"

	"optflow/internal/model"
)

// barRaw is a raw aggregates bar with FlexibleInt64 for Volume and
// Transactions, which the API serves as int, float or scientific notation.
type barRaw struct {
	Timestamp    int64         `json:"t"` // Unix timestamp in milliseconds
	Open         float64       `json:"o"`
	High         float64       `json:"h"`
	Low          float64       `json:"l"`
	Close        float64       `json:"c"`
	Volume       FlexibleInt64 `json:"v"`
	VWAP         float64       `json:"vw,omitempty"`
	Transactions FlexibleInt64 `json:"n,omitempty"`
}

// toBar converts barRaw to model.Bar for the given symbol.
func (br barRaw) toBar(symbol string) model.Bar {
	return model.Bar{
		Symbol:       symbol,
		Timestamp:    br.Timestamp,
		Open:         br.Open,
		High:         br.High,
		Low:          br.Low,
		Close:        br.Close,
		Volume:       br.Volume.Int64(),
		VWAP:         br.VWAP,
		Transactions: br.Transactions.Int64(),
	}
}

// aggregatesResponse is the aggregates API envelope with next_url.
type aggregatesResponse struct {
	Ticker       string   `json:"ticker"`
	QueryCount   int      `json:"queryCount"`
	ResultsCount int      `json:"resultsCount"`
	Adjusted     bool     `json:"adjusted"`
	Results      []barRaw `json:"results"`
	Status       string   `json:"status"`
	RequestID    string   `json:"request_id"`
	Count        int      `json:"count"`
	NextURL      string   `json:"next_url,omitempty"`
}

// chainResponse is the option-chain snapshot envelope. Results stay untyped
// so the flattening field map downstream is the single place that knows the
// nested record shape.
type chainResponse struct {
	Status    string           `json:"status"`
	RequestID string           `json:"request_id"`
	Results   []map[string]any `json:"results"`
	NextURL   string           `json:"next_url,omitempty"`
}

// contractsResponse is the reference contracts listing envelope.
type contractsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Ticker string `json:"ticker"`
	} `json:"results"`
	NextURL string `json:"next_url,omitempty"`
}

// FlexibleInt64 parses int or float (including scientific notation) to int64.
type FlexibleInt64 int64

// UnmarshalJSON parses string, float or int payloads.
func (f *FlexibleInt64) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*f = FlexibleInt64(int64(val))
		return nil
	}

	var floatVal float64
	if err := json.Unmarshal(data, &floatVal); err == nil {
		*f = FlexibleInt64(int64(floatVal))
		return nil
	}

	var intVal int64
	if err := json.Unmarshal(data, &intVal); err == nil {
		*f = FlexibleInt64(intVal)
		return nil
	}

	return fmt.Errorf("cannot parse as int64: %s", string(data))
}

// Int64 returns the int64 value.
func (f FlexibleInt64) Int64() int64 {
	return int64(f)
}
