package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/sonar/internal/outcome"
	"github.com/wonny/sonar/pkg/config"
	"github.com/wonny/sonar/pkg/logger"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "시그널 방향 예측의 사후 검증",
	Long: `아카이브된 시그널 각각의 실현 수익률을 계산하고 방향 적중률을
집계합니다. 1/5/10/30일 구간의 수익률과 점수 구간별 적중률을 출력합니다.

Flags:
  --signals  시그널 JSON 파일 (필수)
  --prices   종목별 CSV 가격 디렉토리 (필수)

Example:
  go run ./cmd/sonar validate --signals signals.json --prices ./prices`,
	RunE: runValidate,
}

var (
	validateSignals string
	validatePrices  string
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateSignals, "signals", "", "signals JSON file (required)")
	validateCmd.Flags().StringVar(&validatePrices, "prices", "", "price CSV directory (required)")

	validateCmd.MarkFlagRequired("signals")
	validateCmd.MarkFlagRequired("prices")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	arch, err := loadArchive(validateSignals)
	if err != nil {
		return err
	}

	prices, err := loadPrices(validatePrices)
	if err != nil {
		return err
	}

	validator := outcome.NewValidator(log)
	report := validator.Validate(arch.Replay(time.Time{}, time.Time{}), prices)

	fmt.Printf("Signals: %d | Resolved: %d\n\n", report.TotalSignals, len(report.Outcomes))
	printTable(report.Table())

	if len(report.PerTickerRates) > 0 {
		fmt.Println()
		tickers := make([]string, 0, len(report.PerTickerRates))
		for ticker := range report.PerTickerRates {
			tickers = append(tickers, ticker)
		}
		sort.Strings(tickers)

		rows := [][]string{{"ticker", "hit_rate_5d"}}
		for _, ticker := range tickers {
			rows = append(rows, []string{ticker, fmt.Sprintf("%.4f", report.PerTickerRates[ticker])})
		}
		printTable(rows)
	}
	return nil
}
