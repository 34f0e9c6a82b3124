// Package massive implements the provider.Client interface against the
// Massive REST API.
package massive

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"optflow/internal/model"
	"optflow/internal/provider"
)

const (
	defaultBaseURL = "https://api.massive.com"

	// Max results per aggregates request.
	maxLimit = 50000

	// Page size for option-chain and contract listings.
	chainPageLimit     = 250
	contractsPageLimit = 1000

	// Follow next_url at most this many pages per logical call.
	maxPages = 50

	defaultTimeout   = 2 * time.Minute
	defaultRetries   = 3
	defaultRetryWait = 15 * time.Second

	dateLayout = "2006-01-02"
)

// Client talks to the Massive REST API. Safe for concurrent use; the
// underlying resty client is shared.
type Client struct {
	http      *resty.Client
	retryWait time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithRetryWait overrides the wait between retries (tests use ~0).
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) {
		c.retryWait = d
		c.http.SetRetryWaitTime(d).SetRetryMaxWaitTime(4 * d)
	}
}

// New creates a Client for the given base URL and API key.
func New(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{retryWait: defaultRetryWait}
	c.http = resty.New().
		SetBaseURL(baseURL).
		SetQueryParam("apiKey", apiKey).
		SetTimeout(defaultTimeout).
		SetRetryCount(defaultRetries).
		SetRetryWaitTime(defaultRetryWait).
		SetRetryMaxWaitTime(4 * defaultRetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the vendor; archive partitions are keyed on it.
func (c *Client) Name() string { return "massive" }

// get runs one GET and applies the shared status handling. result must be a
// pointer to the response envelope.
func (c *Client) get(ctx context.Context, url string, query map[string]string, result any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(result).
		Get(url)
	if err != nil {
		return fmt.Errorf("massive: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return provider.ErrNoData
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("massive: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// checkEnvelope maps the in-body status field. DELAYED means the window is
// not served yet on this plan; NOT_FOUND means the symbol has no data.
func checkEnvelope(status string) error {
	switch status {
	case "", "OK":
		return nil
	case "DELAYED", "NOT_FOUND":
		return provider.ErrNoData
	default:
		return fmt.Errorf("massive: response status %s", status)
	}
}

// DailyAggregates fetches daily OHLCV bars for ticker over [from, to].
func (c *Client) DailyAggregates(ctx context.Context, ticker string, from, to time.Time) ([]model.Bar, error) {
	url := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s", ticker, from.Format(dateLayout), to.Format(dateLayout))
	query := map[string]string{
		"adjusted": "true",
		"sort":     "asc",
		"limit":    strconv.Itoa(maxLimit),
	}

	var bars []model.Bar
	for page := 0; page < maxPages; page++ {
		var out aggregatesResponse
		if err := c.get(ctx, url, query, &out); err != nil {
			return nil, err
		}
		if err := checkEnvelope(out.Status); err != nil {
			return nil, err
		}
		for _, br := range out.Results {
			bars = append(bars, br.toBar(ticker))
		}
		if out.NextURL == "" {
			return bars, nil
		}
		url, query = out.NextURL, nil
	}
	return bars, nil
}

// OptionChain fetches the full option-chain snapshot for underlying,
// following next_url pagination.
func (c *Client) OptionChain(ctx context.Context, underlying string, q provider.ChainQuery) ([]map[string]any, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = chainPageLimit
	}
	url := "/v3/snapshot/options/" + underlying
	query := map[string]string{"limit": strconv.Itoa(limit)}
	if !q.ExpirationLTE.IsZero() {
		query["expiration_date.lte"] = q.ExpirationLTE.Format(dateLayout)
	}

	var records []map[string]any
	for page := 0; page < maxPages; page++ {
		var out chainResponse
		if err := c.get(ctx, url, query, &out); err != nil {
			return nil, err
		}
		if err := checkEnvelope(out.Status); err != nil {
			return nil, err
		}
		records = append(records, out.Results...)
		if out.NextURL == "" {
			return records, nil
		}
		url, query = out.NextURL, nil
	}
	return records, nil
}

// OptionContracts lists contract identifiers for underlying as of a date.
func (c *Client) OptionContracts(ctx context.Context, underlying string, asOf time.Time) ([]string, error) {
	url := "/v3/reference/options/contracts"
	query := map[string]string{
		"underlying_ticker": underlying,
		"as_of":             asOf.Format(dateLayout),
		"limit":             strconv.Itoa(contractsPageLimit),
	}

	var tickers []string
	for page := 0; page < maxPages; page++ {
		var out contractsResponse
		if err := c.get(ctx, url, query, &out); err != nil {
			return nil, err
		}
		if err := checkEnvelope(out.Status); err != nil {
			return nil, err
		}
		for _, r := range out.Results {
			if r.Ticker != "" {
				tickers = append(tickers, r.Ticker)
			}
		}
		if out.NextURL == "" {
			return tickers, nil
		}
		url, query = out.NextURL, nil
	}
	return tickers, nil
}
