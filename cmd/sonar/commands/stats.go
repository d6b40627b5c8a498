package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "시그널 아카이브 요약 통계",
	Long: `시그널 아카이브의 방향/액션 분포, 평균 점수, 기록 기간을 출력합니다.

Example:
  go run ./cmd/sonar stats --signals signals.json`,
	RunE: runStats,
}

var statsSignals string

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsSignals, "signals", "", "signals JSON file (required)")
	statsCmd.MarkFlagRequired("signals")
}

func runStats(cmd *cobra.Command, args []string) error {
	arch, err := loadArchive(statsSignals)
	if err != nil {
		return err
	}

	stats := arch.GetStats()

	fmt.Printf("Total Signals : %d\n", stats.TotalSignals)
	fmt.Printf("Avg Score     : %.2f\n", stats.AvgScore)
	fmt.Printf("Earliest      : %s\n", stats.EarliestTime)
	fmt.Printf("Latest        : %s\n", stats.LatestTime)
	fmt.Printf("Tickers       : %v\n", arch.Tickers())

	fmt.Println("\nBy Direction")
	printCountTable(stats.ByDirection)

	fmt.Println("\nBy Action")
	printCountTable(stats.ByAction)
	return nil
}

func printCountTable(counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := [][]string{{"key", "count"}}
	for _, k := range keys {
		rows = append(rows, []string{k, fmt.Sprintf("%d", counts[k])})
	}
	printTable(rows)
}
