package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sonar/pkg/config"
	"github.com/wonny/sonar/pkg/logger"
)

func testClient(baseURL string) *Client {
	cfg := &config.Config{Feed: config.FeedConfig{BaseURL: baseURL, Timeout: 5 * time.Second}}
	return NewClient(cfg, logger.Nop())
}

func TestClient_FetchDaily(t *testing.T) {
	payload := `[
		['date', 'open', 'high', 'low', 'close', 'volume'],
		['20260302', 100, 102, 99, 101, 50000],
		['20260303', 101, 104, 100, 103.5, 61000],
		['bogus', 1, 2, 3, 4, 5],
		['20260304', 103, 105, 102, 104, 43000]
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chart/daily", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := testClient(server.URL)
	series, err := client.FetchDaily(context.Background(), "AAPL",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Header and malformed rows are dropped.
	require.Len(t, series, 3)
	assert.Equal(t, 101.0, series[0].Close)
	assert.Equal(t, 103.5, series[1].Close)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), series[2].Date)
}

func TestClient_FetchDailyBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(server.URL).WithRetry(0, time.Millisecond)
	_, err := client.FetchDaily(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
	assert.Error(t, err)
}

func TestClient_RetriesTransientErrors(t *testing.T) {
	payload := `[['date','close'],['20260302', 0, 0, 0, 101, 0]]`

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := testClient(server.URL).WithRetry(3, time.Millisecond)
	series, err := client.FetchDaily(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 3, hits)
}

func TestParseDailyTable(t *testing.T) {
	html := `
	<html><body>
	<table class="history">
		<tr><th>Date</th><th>Close</th></tr>
		<tr><td>2026.03.04</td><td>1,040.50</td></tr>
		<tr><td>2026.03.03</td><td>1,035.00</td></tr>
		<tr><td>garbage</td><td>n/a</td></tr>
		<tr><td>2026.03.02</td><td>1,010.00</td></tr>
	</table>
	</body></html>`

	series := parseDailyTable(html)

	// Newest-first table comes back ascending, bad rows skipped.
	require.Len(t, series, 3)
	assert.Equal(t, 1010.0, series[0].Close)
	assert.Equal(t, 1040.5, series[2].Close)
	assert.True(t, series[0].Date.Before(series[1].Date))
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aapl.csv")
	content := "Date,Close\n2026-03-03,103.5\n2026-03-02,101.0\nnot-a-date,1\n2026-03-04,104.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	series, err := LoadCSV(path)
	require.NoError(t, err)

	require.Len(t, series, 3)
	assert.Equal(t, 101.0, series[0].Close, "rows are sorted ascending by date")
	assert.Equal(t, 104.0, series[2].Close)

	prices, err := LoadCSVDir(dir)
	require.NoError(t, err)
	require.Contains(t, prices, "AAPL")
	assert.Len(t, prices["AAPL"], 3)
}

func TestLoadCSV_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Ts,Px\n1,2\n"), 0o644))

	_, err := LoadCSV(path)
	assert.Error(t, err)
}
