package correlation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sonar/internal/contracts"
	"github.com/wonny/sonar/pkg/logger"
)

func session(i int) time.Time {
	return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// proportionalFixture builds a series where the 1-day forward return at each
// signal bar is exactly k * score, so correlation at lag 1 is ±1.
func proportionalFixture(scores []float64, k float64) ([]contracts.Signal, contracts.PriceSeries) {
	series := contracts.PriceSeries{{Date: session(0), Close: 100}}
	signals := make([]contracts.Signal, 0, len(scores))

	for i, score := range scores {
		prev := series[i].Close
		series = append(series, contracts.PriceBar{
			Date:  session(i + 1),
			Close: prev * (1 + k*score),
		})
		signals = append(signals, contracts.Signal{
			SignalID:       contracts.GenerateSignalID(),
			Ticker:         "AAPL",
			CompositeScore: score,
			Direction:      contracts.DirectionBullish,
			SignalTime:     session(i),
		})
	}

	return signals, series
}

func TestAnalyzer_PerfectCorrelation(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig(), logger.Nop())

	signals, series := proportionalFixture([]float64{10, 25, 40, 55, 70}, 0.0005)
	analysis := analyzer.Analyze(signals, contracts.PriceData{"AAPL": series}, "AAPL", []int{1})

	require.Len(t, analysis.Results, 1)
	res := analysis.Results[0]
	assert.Equal(t, 1, res.Lag)
	assert.InDelta(t, 1.0, res.Correlation, 1e-9)
	assert.InDelta(t, 0.0, res.PValue, 1e-9)
	assert.True(t, res.Significant)
	assert.Equal(t, 5, res.SampleSize)

	// Sign follows the constant of proportionality.
	signals, series = proportionalFixture([]float64{10, 25, 40, 55, 70}, -0.0005)
	analysis = analyzer.Analyze(signals, contracts.PriceData{"AAPL": series}, "AAPL", []int{1})
	assert.InDelta(t, -1.0, analysis.Results[0].Correlation, 1e-9)
}

func TestAnalyzer_SampleSizeGating(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig(), logger.Nop())

	signals, series := proportionalFixture([]float64{10, 20}, 0.001)
	analysis := analyzer.Analyze(signals, contracts.PriceData{"AAPL": series}, "AAPL", []int{1})

	require.Len(t, analysis.Results, 1)
	res := analysis.Results[0]
	assert.Equal(t, 0.0, res.Correlation)
	assert.Equal(t, 1.0, res.PValue)
	assert.Equal(t, 2, res.SampleSize)
	assert.False(t, res.Significant)
}

func TestAnalyzer_MissingDataDegradesQuietly(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig(), logger.Nop())

	signals, series := proportionalFixture([]float64{10, 20, 30}, 0.001)

	// No price series for the ticker.
	analysis := analyzer.Analyze(signals, contracts.PriceData{}, "AAPL", nil)
	assert.Empty(t, analysis.Results)
	assert.Equal(t, 3, analysis.SignalCount)

	// No signals for the ticker.
	analysis = analyzer.Analyze(signals, contracts.PriceData{"TSLA": series}, "TSLA", nil)
	assert.Empty(t, analysis.Results)
	assert.Equal(t, 0, analysis.SignalCount)
}

func TestAnalyzer_OptimalLagFirstWins(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig(), logger.Nop())

	signals, series := proportionalFixture([]float64{10, 25, 40, 55, 70}, 0.0005)
	analysis := analyzer.Analyze(signals, contracts.PriceData{"AAPL": series}, "AAPL", []int{0, 1})

	// Lag 0 returns are identically zero, so lag 1 carries the signal.
	require.Len(t, analysis.Results, 2)
	assert.Equal(t, 0.0, analysis.Results[0].Correlation)
	assert.Equal(t, 1, analysis.OptimalLag)
	assert.InDelta(t, 1.0, analysis.OptimalCorrelation, 1e-9)
}

func TestAnalyzer_AnalyzeUniverse(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig(), logger.Nop())

	aapl, aaplSeries := proportionalFixture([]float64{10, 20, 30, 40}, 0.001)
	tsla := []contracts.Signal{{Ticker: "TSLA", CompositeScore: 80, SignalTime: session(0)}}

	results := analyzer.AnalyzeUniverse(append(aapl, tsla...), contracts.PriceData{"AAPL": aaplSeries}, nil)

	require.Len(t, results, 2)
	assert.Len(t, results["AAPL"].Results, len(DefaultLags))
	assert.Empty(t, results["TSLA"].Results, "ticker without prices degrades to empty analysis")

	// Pure function of its inputs.
	again := analyzer.AnalyzeUniverse(append(aapl, tsla...), contracts.PriceData{"AAPL": aaplSeries}, nil)
	assert.Equal(t, results, again)
}

func TestNormalCDF(t *testing.T) {
	// Known values of the standard normal CDF, within the A&S 26.2.17
	// absolute error bound of 7.5e-8.
	cases := []struct{ x, want float64 }{
		{0, 0.5},
		{1, 0.8413447461},
		{1.96, 0.9750021049},
		{-1, 0.1586552539},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, normalCDF(tc.x), 1e-6, "x=%v", tc.x)
	}
}
