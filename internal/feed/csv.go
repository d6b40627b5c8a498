package feed

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/sonar/internal/contracts"
)

// LoadCSV reads a daily close series from a CSV file with a header row and
// at least "date" and "close" columns (case-insensitive; "Close" works).
// Rows are returned ascending by date regardless of file order. Malformed
// rows are skipped.
func LoadCSV(path string) (contracts.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read price file: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("price file %s has no data rows", path)
	}

	dateCol, closeCol := -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			dateCol = i
		case "close":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("price file %s needs date and close columns", path)
	}

	var series contracts.PriceSeries
	for _, record := range records[1:] {
		if len(record) <= dateCol || len(record) <= closeCol {
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[dateCol]))
		if err != nil {
			continue
		}

		closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[closeCol]), 64)
		if err != nil {
			continue
		}

		series = append(series, contracts.PriceBar{Date: date, Close: closePrice})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series, nil
}

// LoadCSVDir loads one series per ticker from a directory of
// <TICKER>.csv files.
func LoadCSVDir(dir string) (contracts.PriceData, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read price dir: %w", err)
	}

	prices := make(contracts.PriceData)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}

		ticker := strings.ToUpper(name[:len(name)-len(".csv")])
		series, err := LoadCSV(dir + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		prices[ticker] = series
	}

	return prices, nil
}
