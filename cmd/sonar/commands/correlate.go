package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/sonar/internal/correlation"
	"github.com/wonny/sonar/pkg/config"
	"github.com/wonny/sonar/pkg/logger"
)

// correlateCmd represents the correlate command
var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "시그널 점수와 선행 수익률의 시차 상관 분석",
	Long: `아카이브된 시그널의 종합 점수와 각 시차(lag)의 선행 수익률 사이의
피어슨 상관계수를 계산하고 최적 시차를 선정합니다.

Flags:
  --signals  시그널 JSON 파일 (필수)
  --prices   종목별 CSV 가격 디렉토리 (필수)
  --ticker   단일 종목만 분석 (기본: 전체 종목)
  --lags     분석할 시차 목록 (기본: 0,1,2,5,10)

Example:
  go run ./cmd/sonar correlate --signals signals.json --prices ./prices
  go run ./cmd/sonar correlate --signals signals.json --prices ./prices --ticker AAPL --lags 0,1,5`,
	RunE: runCorrelate,
}

var (
	correlateSignals string
	correlatePrices  string
	correlateTicker  string
	correlateLags    []int
)

func init() {
	rootCmd.AddCommand(correlateCmd)

	correlateCmd.Flags().StringVar(&correlateSignals, "signals", "", "signals JSON file (required)")
	correlateCmd.Flags().StringVar(&correlatePrices, "prices", "", "price CSV directory (required)")
	correlateCmd.Flags().StringVar(&correlateTicker, "ticker", "", "analyze a single ticker")
	correlateCmd.Flags().IntSliceVar(&correlateLags, "lags", nil, "lag list (default 0,1,2,5,10)")

	correlateCmd.MarkFlagRequired("signals")
	correlateCmd.MarkFlagRequired("prices")
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	arch, err := loadArchive(correlateSignals)
	if err != nil {
		return err
	}

	prices, err := loadPrices(correlatePrices)
	if err != nil {
		return err
	}

	lags := correlateLags
	if len(lags) == 0 {
		lags = correlation.DefaultLags
	}

	analyzer := correlation.NewAnalyzer(correlation.DefaultConfig(), log)
	signals := arch.Replay(time.Time{}, time.Time{})

	tickers := arch.Tickers()
	if correlateTicker != "" {
		tickers = []string{correlateTicker}
	}

	for _, ticker := range tickers {
		analysis := analyzer.Analyze(signals, prices, ticker, lags)

		fmt.Printf("\n%s (signals: %d)\n", ticker, analysis.SignalCount)
		if len(analysis.Results) == 0 {
			fmt.Println("  no price data or insufficient samples")
			continue
		}

		printTable(analysis.Table())
		fmt.Printf("optimal lag: %d (r=%.4f)\n", analysis.OptimalLag, analysis.OptimalCorrelation)
	}
	return nil
}
