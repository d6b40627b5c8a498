package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wonny/sonar/internal/archive"
	"github.com/wonny/sonar/internal/contracts"
	"github.com/wonny/sonar/internal/feed"
	"github.com/wonny/sonar/internal/strategy"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting and Loading Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// loadArchive reads a JSON array of signals into a fresh archive.
func loadArchive(path string) (*archive.Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signals file: %w", err)
	}

	var signals []contracts.Signal
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, fmt.Errorf("parse signals file: %w", err)
	}

	arch := archive.New()
	arch.AddBatch(signals)
	return arch, nil
}

// loadPrices reads per-ticker CSV files from a directory.
func loadPrices(dir string) (contracts.PriceData, error) {
	prices, err := feed.LoadCSVDir(dir)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no price files found in %s", dir)
	}
	return prices, nil
}

// loadStrategyConfig loads a YAML strategy config, or the defaults when no
// path is given.
func loadStrategyConfig(path string) (strategy.Config, error) {
	if path == "" {
		return strategy.DefaultConfig(), nil
	}

	cfg, err := strategy.LoadConfig(path)
	if err != nil {
		return strategy.Config{}, err
	}
	return *cfg, nil
}

// printTable prints rows with aligned columns; the first row is the header.
func printTable(rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, row := range rows {
		var b strings.Builder
		for j, cell := range row {
			if j > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[j]-len(cell)))
		}
		fmt.Println(strings.TrimRight(b.String(), " "))

		if i == 0 {
			sep := 0
			for _, w := range widths {
				sep += w + 2
			}
			fmt.Println(strings.Repeat("─", sep-2))
		}
	}
}

// printBacktestResult prints the aggregate simulation metrics.
func printBacktestResult(result *strategy.Result) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("  Backtest Result")
	fmt.Println("───────────────────────────────────────────────────────────")
	fmt.Printf("  Initial Capital : %.2f\n", result.InitialCapital)
	fmt.Printf("  Final Capital   : %.2f\n", result.FinalCapital)
	fmt.Printf("  Total Return    : %.2f%%\n", result.TotalReturn*100)
	fmt.Printf("  Trades          : %d\n", result.TradeCount)
	fmt.Printf("  Win Rate        : %.1f%%\n", result.WinRate*100)
	fmt.Printf("  Sharpe          : %.2f\n", result.Sharpe)
	fmt.Printf("  Max Drawdown    : %.2f%%\n", result.MaxDrawdown*100)
	fmt.Println("═══════════════════════════════════════════════════════════")

	if len(result.Trades) == 0 {
		return
	}

	rows := [][]string{{"ticker", "side", "entry", "exit", "pnl", "reason", "score"}}
	for _, trade := range result.Trades {
		rows = append(rows, []string{
			trade.Ticker,
			trade.Side,
			fmt.Sprintf("%.2f", trade.EntryPrice),
			fmt.Sprintf("%.2f", trade.ExitPrice),
			fmt.Sprintf("%.2f", trade.PnL),
			trade.ExitReason,
			fmt.Sprintf("%.1f", trade.SignalScore),
		})
	}

	fmt.Println()
	printTable(rows)
}
