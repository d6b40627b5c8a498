// Package feed acquires daily close series for tickers. The analysis cores
// treat price history as externally supplied input; this package is the
// acquisition boundary for live endpoints and offline CSV files.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/sonar/internal/contracts"
	"github.com/wonny/sonar/pkg/config"
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Client fetches daily price history from a chart endpoint
// ⭐ SSOT: 가격 데이터 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      RetryConfig
	log        zerolog.Logger
}

// NewClient creates a price feed client from config.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Feed.Timeout},
		baseURL:    cfg.Feed.BaseURL,
		retry: RetryConfig{
			MaxRetries:   3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     10 * time.Second,
		},
		log: log.With().Str("component", "feed.client").Logger(),
	}
}

// WithRetry configures retry behavior
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.retry.MaxRetries = maxRetries
	c.retry.InitialDelay = initialDelay
	return c
}

// get fetches the URL with exponential backoff on network errors and 5xx
// responses, and returns the response body.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	var resp *http.Response
	delay := c.retry.InitialDelay

	for attempt := 0; ; attempt++ {
		resp, err = c.httpClient.Do(req)
		if err == nil && resp.StatusCode < 500 {
			break
		}
		if err == nil {
			resp.Body.Close()
			err = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		if attempt == c.retry.MaxRetries {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		c.log.Warn().Int("attempt", attempt+1).Str("url", fullURL).Msg("retrying HTTP request")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.retry.MaxDelay {
			delay = c.retry.MaxDelay
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}
	return body, nil
}

// FetchDaily fetches the daily close series for one ticker. The endpoint
// returns a JSON array of rows, each [date, open, high, low, close, volume],
// with a header row first.
func (c *Client) FetchDaily(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	fullURL := fmt.Sprintf(
		"%s/chart/daily?symbol=%s&start=%s&end=%s",
		c.baseURL, ticker, from.Format("20060102"), to.Format("20060102"),
	)

	body, err := c.get(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	series, err := parseChartResponse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.log.Debug().Str("ticker", ticker).Int("bars", len(series)).Msg("fetched daily prices")
	return series, nil
}

// parseChartResponse parses the chart JSON payload. Some mirrors serve the
// payload with single quotes, so those are normalized first.
func parseChartResponse(body string) (contracts.PriceSeries, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rawRows [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawRows); err != nil {
		return nil, fmt.Errorf("unmarshal chart payload: %w", err)
	}

	var series contracts.PriceSeries
	for i, row := range rawRows {
		if i == 0 || len(row) < 5 {
			continue // header row or short row
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		date, err := parseChartDate(dateStr)
		if err != nil {
			continue // malformed rows are skipped, not fatal
		}

		closePrice, ok := toFloat(row[4])
		if !ok {
			continue
		}

		series = append(series, contracts.PriceBar{Date: date, Close: closePrice})
	}

	return series, nil
}

func parseChartDate(raw string) (time.Time, error) {
	raw = strings.Trim(raw, "\" ")
	if len(raw) == 8 {
		raw = raw[:4] + "-" + raw[4:6] + "-" + raw[6:8]
	}
	return time.Parse("2006-01-02", raw)
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
