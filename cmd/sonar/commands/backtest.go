package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/sonar/internal/strategy"
	"github.com/wonny/sonar/pkg/config"
	"github.com/wonny/sonar/pkg/logger"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "시그널 전략 백테스트 실행",
	Long: `아카이브된 시그널을 시간순으로 재생하며 롱/숏 전략을 시뮬레이션합니다.

Flags:
  --signals   시그널 JSON 파일 (필수)
  --prices    종목별 CSV 가격 디렉토리 (필수)
  --capital   초기 자본 (기본: 100000)
  --strategy  전략 설정 YAML (기본: 내장 기본값)

Example:
  go run ./cmd/sonar backtest --signals signals.json --prices ./prices
  go run ./cmd/sonar backtest --signals signals.json --prices ./prices --capital 250000`,
	RunE: runBacktest,
}

var (
	backtestSignals  string
	backtestPrices   string
	backtestCapital  float64
	backtestStrategy string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&backtestSignals, "signals", "", "signals JSON file (required)")
	backtestCmd.Flags().StringVar(&backtestPrices, "prices", "", "price CSV directory (required)")
	backtestCmd.Flags().Float64Var(&backtestCapital, "capital", 100000, "initial capital")
	backtestCmd.Flags().StringVar(&backtestStrategy, "strategy", "", "strategy config YAML")

	backtestCmd.MarkFlagRequired("signals")
	backtestCmd.MarkFlagRequired("prices")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	arch, err := loadArchive(backtestSignals)
	if err != nil {
		return err
	}

	prices, err := loadPrices(backtestPrices)
	if err != nil {
		return err
	}

	strategyCfg, err := loadStrategyConfig(backtestStrategy)
	if err != nil {
		return fmt.Errorf("load strategy config: %w", err)
	}

	hash, _ := strategyCfg.Hash()
	fmt.Printf("Signals: %d | Tickers: %d | Config: %.12s\n", arch.Len(), len(prices), hash)

	runner := strategy.NewRunner(strategyCfg, log)
	result := runner.Run(arch, prices, nil, backtestCapital)

	printBacktestResult(result)
	return nil
}
