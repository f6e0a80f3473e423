// Package marketdata fetches daily OHLCV bars from a chart API.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

// Client fetches daily price bars over HTTP. An optional bearer token is
// attached when the provider requires one; see Credentials for how the token
// is stored at rest.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a chart API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}

// WithToken returns the client configured to send a bearer token.
func (c *Client) WithToken(token string) *Client {
	c.token = token
	return c
}

// DailyBars fetches daily bars for a symbol over a trailing range such as
// "5d" or "1y". Bars come back ascending by date, one per trading day.
func (c *Client) DailyBars(ctx context.Context, symbol, rng string) ([]model.PriceBar, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s", c.baseURL, symbol, rng)
	return c.fetchBars(ctx, url, symbol)
}

// DailyBarsBetween fetches daily bars for a symbol within [start, end].
func (c *Client) DailyBarsBetween(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL, symbol, start.Unix(), end.Unix())
	return c.fetchBars(ctx, url, symbol)
}

func (c *Client) fetchBars(ctx context.Context, url, symbol string) ([]model.PriceBar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart request: %w", err)
	}
	req.Header.Set("User-Agent", "stock-ledger-backend/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart API returned status %d for %s", resp.StatusCode, symbol)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", symbol, *parsed.Chart.Error)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	result := parsed.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, fmt.Errorf("no price data returned for %s", symbol)
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quotes returned for %s", symbol)
	}
	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return nil, fmt.Errorf("mismatched data lengths for %s", symbol)
	}

	bars := make([]model.PriceBar, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bars[i] = model.PriceBar{
			Symbol: symbol,
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   quote.Open[i],
			Close:  quote.Close[i],
			Low:    quote.Low[i],
			High:   quote.High[i],
			Volume: quote.Volume[i],
		}
	}

	return bars, nil
}
