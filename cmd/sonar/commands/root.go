package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sonar",
	Short: "Sonar - 소셜 시그널 백테스팅 엔진",
	Long: `Sonar Unified CLI

소셜/감성 시그널의 예측력을 측정하고, 가격 데이터에 대해
롱/숏 전략 시뮬레이션을 실행합니다.

Usage:
  go run ./cmd/sonar [command]

Examples:
  go run ./cmd/sonar api
  go run ./cmd/sonar stats --signals signals.json
  go run ./cmd/sonar backtest --signals signals.json --prices ./prices
  go run ./cmd/sonar correlate --signals signals.json --prices ./prices --ticker AAPL`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
