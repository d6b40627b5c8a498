package feed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/sonar/internal/contracts"
)

// FetchDailyTable fetches daily closes from an HTML quote page whose data
// lives in a table of (date, close, ...) rows. Fallback path for sources
// without a chart JSON endpoint.
func (c *Client) FetchDailyTable(ctx context.Context, ticker string) (contracts.PriceSeries, error) {
	fullURL := fmt.Sprintf("%s/quote/%s/history", c.baseURL, ticker)

	body, err := c.get(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	series := parseDailyTable(string(body))

	c.log.Debug().Str("ticker", ticker).Int("bars", len(series)).Msg("fetched daily table")
	return series, nil
}

// parseDailyTable extracts (date, close) rows from the history table.
// Rows with unparseable dates or prices are skipped.
func parseDailyTable(html string) contracts.PriceSeries {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var series contracts.PriceSeries

	doc.Find("table.history tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		date, err := parseTableDate(dateText)
		if err != nil {
			return
		}

		closeText := strings.TrimSpace(cells.Eq(1).Text())
		closePrice, err := strconv.ParseFloat(strings.ReplaceAll(closeText, ",", ""), 64)
		if err != nil {
			return
		}

		series = append(series, contracts.PriceBar{Date: date, Close: closePrice})
	})

	// History tables list newest first; the contract is ascending.
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}

	return series
}

func parseTableDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006.01.02", "01/02/2006"} {
		if date, err := time.Parse(layout, raw); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", raw)
}
