package massive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"optflow/internal/provider"
)

func testDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDailyAggregates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/v2/aggs/ticker/AAPL/range/1/day/2024-01-02/2024-01-05" {
			t.Errorf("unexpected path %q", got)
		}
		if r.URL.Query().Get("apiKey") != "k" {
			t.Errorf("missing apiKey query param")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"ticker": "AAPL", "status": "OK", "resultsCount": 2,
			"results": [
				{"t": 1704171600000, "o": 187.15, "h": 188.44, "l": 183.89, "c": 185.64, "v": 82488700, "vw": 185.9465, "n": 1009876},
				{"t": 1704258000000, "o": 184.22, "h": 185.88, "l": 183.43, "c": 184.25, "v": 5.81e7, "n": "712356"}
			]
		}`)
	}))
	defer server.Close()

	c := New(server.URL, "k", WithRetryWait(0))
	bars, err := c.DailyAggregates(context.Background(), "AAPL", testDate("2024-01-02"), testDate("2024-01-05"))
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[0].Symbol != "AAPL" || bars[0].Open != 187.15 || bars[0].Volume != 82488700 {
		t.Errorf("first bar mismatch: %+v", bars[0])
	}
	// Float and string volumes both decode through FlexibleInt64.
	if bars[1].Volume != 58100000 || bars[1].Transactions != 712356 {
		t.Errorf("flexible fields mismatch: %+v", bars[1])
	}
}

func TestDailyAggregatesNoData(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http 404", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"delayed status", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"status": "DELAYED", "results": []}`)
		}},
		{"not found status", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"status": "NOT_FOUND"}`)
		}},
	}
	for _, tt := range tests {
		server := httptest.NewServer(tt.handler)
		c := New(server.URL, "k", WithRetryWait(0))
		_, err := c.DailyAggregates(context.Background(), "AAPL", testDate("2024-01-02"), testDate("2024-01-05"))
		server.Close()
		if !errors.Is(err, provider.ErrNoData) {
			t.Errorf("%s: err = %v, want ErrNoData", tt.name, err)
		}
	}
}

func TestRetryOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": "OK", "results": [{"t": 1704171600000, "o": 1, "h": 2, "l": 0.5, "c": 1.5, "v": 10}]}`)
	}))
	defer server.Close()

	c := New(server.URL, "k", WithRetryWait(0))
	bars, err := c.DailyAggregates(context.Background(), "AAPL", testDate("2024-01-02"), testDate("2024-01-05"))
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 1 {
		t.Fatalf("got %d bars, want 1", len(bars))
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

func TestOptionChainPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("cursor") == "p2" {
			fmt.Fprint(w, `{"status": "OK", "results": [{"details": {"ticker": "O:XYZ240119C00101000"}}]}`)
			return
		}
		if got := r.URL.Path; got != "/v3/snapshot/options/XYZ" {
			t.Errorf("unexpected path %q", got)
		}
		resp := map[string]any{
			"status":   "OK",
			"results":  []map[string]any{{"details": map[string]any{"ticker": "O:XYZ240119C00095000"}}},
			"next_url": server.URL + "/v3/snapshot/options/XYZ?cursor=p2",
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := New(server.URL, "k", WithRetryWait(0))
	records, err := c.OptionChain(context.Background(), "XYZ", provider.ChainQuery{ExpirationLTE: testDate("2024-04-01")})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records across pages, want 2", len(records))
	}
}

func TestOptionContracts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("underlying_ticker") != "XYZ" || q.Get("as_of") != "2024-01-01" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": "OK", "results": [{"ticker": "O:XYZ240119C00095000"}, {"ticker": "O:XYZ240119P00095000"}, {"ticker": ""}]}`)
	}))
	defer server.Close()

	c := New(server.URL, "k", WithRetryWait(0))
	tickers, err := c.OptionContracts(context.Background(), "XYZ", testDate("2024-01-01"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tickers) != 2 {
		t.Fatalf("got %d tickers, want 2 (empty dropped)", len(tickers))
	}
}
