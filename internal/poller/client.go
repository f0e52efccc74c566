// Package poller periodically fetches quotes for the configured
// watchlist and raises alerts when thresholds are crossed.
package poller

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client fetches quotes in stooq CSV format:
// symbol,date,time,open,high,low,close,volume per line, "N/D" for
// unavailable fields.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a quote client for the given endpoint.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Quote returns the latest close price for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (float64, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return 0, fmt.Errorf("quote endpoint: %w", err)
	}
	q := u.Query()
	q.Set("s", strings.ToLower(symbol))
	q.Set("f", "sd2t2ohlcv")
	q.Set("e", "csv")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("building quote request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching quote for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote endpoint returned %d for %s", resp.StatusCode, symbol)
	}

	record, err := csv.NewReader(resp.Body).Read()
	if err != nil {
		return 0, fmt.Errorf("parsing quote for %s: %w", symbol, err)
	}
	// symbol,date,time,open,high,low,close,volume
	if len(record) < 7 {
		return 0, fmt.Errorf("quote record for %s has %d fields", symbol, len(record))
	}
	if record[6] == "N/D" {
		return 0, fmt.Errorf("no data for symbol %s", symbol)
	}
	price, err := strconv.ParseFloat(record[6], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing close price %q for %s: %w", record[6], symbol, err)
	}
	return price, nil
}
