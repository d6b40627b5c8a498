package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/sonar/internal/contracts"
	"github.com/wonny/sonar/internal/feed"
	"github.com/wonny/sonar/pkg/config"
	"github.com/wonny/sonar/pkg/logger"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "일별 가격 데이터 수집",
	Long: `설정된 피드 엔드포인트(FEED_BASE_URL)에서 종목별 일별 종가를
수집하여 CSV로 저장합니다. 차트 JSON 엔드포인트를 우선 사용하고,
실패 시 HTML 히스토리 테이블로 폴백합니다.

Flags:
  --tickers  수집할 종목 목록 (필수)
  --from     시작일 YYYY-MM-DD (기본: 1년 전)
  --to       종료일 YYYY-MM-DD (기본: 오늘)
  --out      CSV 출력 디렉토리 (기본: ./prices)

Example:
  FEED_BASE_URL=https://feed.example.com go run ./cmd/sonar fetch --tickers AAPL,TSLA
  go run ./cmd/sonar fetch --tickers AAPL --from 2025-01-01 --out ./prices`,
	RunE: runFetch,
}

var (
	fetchTickers []string
	fetchFrom    string
	fetchTo      string
	fetchOut     string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringSliceVar(&fetchTickers, "tickers", nil, "tickers to fetch (required)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date YYYY-MM-DD")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date YYYY-MM-DD")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "prices", "output CSV directory")

	fetchCmd.MarkFlagRequired("tickers")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Feed.BaseURL == "" {
		return fmt.Errorf("FEED_BASE_URL is not set")
	}
	log := logger.New(cfg)

	to := time.Now().UTC()
	from := to.AddDate(-1, 0, 0)
	if fetchFrom != "" {
		if from, err = time.Parse("2006-01-02", fetchFrom); err != nil {
			return fmt.Errorf("parse --from: %w", err)
		}
	}
	if fetchTo != "" {
		if to, err = time.Parse("2006-01-02", fetchTo); err != nil {
			return fmt.Errorf("parse --to: %w", err)
		}
	}

	if err := os.MkdirAll(fetchOut, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	client := feed.NewClient(cfg, log)
	ctx := context.Background()

	for _, ticker := range fetchTickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))

		series, err := client.FetchDaily(ctx, ticker, from, to)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("chart endpoint failed, trying HTML table")
			series, err = client.FetchDailyTable(ctx, ticker)
		}
		if err != nil {
			return fmt.Errorf("fetch %s: %w", ticker, err)
		}
		if len(series) == 0 {
			log.Warn().Str("ticker", ticker).Msg("no bars returned, skipping")
			continue
		}

		path := filepath.Join(fetchOut, ticker+".csv")
		if err := writePriceCSV(path, series); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("%s: %d bars -> %s\n", ticker, len(series), path)
	}
	return nil
}

func writePriceCSV(path string, series contracts.PriceSeries) error {
	var b strings.Builder
	b.WriteString("Date,Close\n")
	for _, bar := range series {
		fmt.Fprintf(&b, "%s,%g\n", bar.Date.Format("2006-01-02"), bar.Close)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
