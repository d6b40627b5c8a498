package outcome

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sonar/internal/contracts"
	"github.com/wonny/sonar/pkg/logger"
)

func session(i int) time.Time {
	return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// trendSeries builds n sessions with a constant per-session slope from base.
func trendSeries(n int, base, slope float64) contracts.PriceSeries {
	series := make(contracts.PriceSeries, 0, n)
	for i := 0; i < n; i++ {
		series = append(series, contracts.PriceBar{Date: session(i), Close: base + slope*float64(i)})
	}
	return series
}

func signal(ticker string, score float64, dir contracts.Direction, ts time.Time) contracts.Signal {
	return contracts.Signal{
		SignalID:       contracts.GenerateSignalID(),
		Ticker:         ticker,
		CompositeScore: score,
		Direction:      dir,
		SignalTime:     ts,
	}
}

func TestValidator_DirectionLogic(t *testing.T) {
	v := NewValidator(logger.Nop())

	rising := contracts.PriceData{"AAPL": trendSeries(40, 100, 1)}
	falling := contracts.PriceData{"TSLA": trendSeries(40, 200, -1)}

	report := v.Validate([]contracts.Signal{
		signal("AAPL", 60, contracts.DirectionBullish, session(0)),
	}, rising)
	require.Len(t, report.Outcomes, 1)
	out := report.Outcomes[0]
	assert.True(t, out.Correct1D)
	assert.Greater(t, out.Return1D, 0.0)
	assert.Equal(t, 100.0, out.PriceAtSignal)

	report = v.Validate([]contracts.Signal{
		signal("TSLA", 60, contracts.DirectionBearish, session(0)),
	}, falling)
	require.Len(t, report.Outcomes, 1)
	out = report.Outcomes[0]
	assert.True(t, out.Correct1D)
	assert.Less(t, out.Return1D, 0.0)
}

func TestValidator_NeutralNeverCorrect(t *testing.T) {
	v := NewValidator(logger.Nop())
	prices := contracts.PriceData{"AAPL": trendSeries(40, 100, 1)}

	report := v.Validate([]contracts.Signal{
		signal("AAPL", 60, contracts.DirectionNeutral, session(0)),
	}, prices)

	require.Len(t, report.Outcomes, 1)
	out := report.Outcomes[0]
	assert.Greater(t, out.Return1D, 0.0)
	assert.False(t, out.Correct1D)
	assert.False(t, out.Correct5D)
	assert.False(t, out.Correct30D)
}

func TestValidator_HorizonMonotonicity(t *testing.T) {
	v := NewValidator(logger.Nop())
	prices := contracts.PriceData{"AAPL": trendSeries(40, 100, 0.5)}

	report := v.Validate([]contracts.Signal{
		signal("AAPL", 60, contracts.DirectionBullish, session(0)),
	}, prices)

	require.Len(t, report.Outcomes, 1)
	out := report.Outcomes[0]
	assert.Greater(t, math.Abs(out.Return30D), math.Abs(out.Return10D))
	assert.Greater(t, math.Abs(out.Return10D), math.Abs(out.Return5D))
	assert.Greater(t, math.Abs(out.Return5D), math.Abs(out.Return1D))
}

func TestValidator_SkipsUnresolvableSignals(t *testing.T) {
	v := NewValidator(logger.Nop())
	prices := contracts.PriceData{"AAPL": trendSeries(10, 100, 1)}

	report := v.Validate([]contracts.Signal{
		signal("AAPL", 60, contracts.DirectionBullish, session(0)),
		signal("MSFT", 70, contracts.DirectionBullish, session(0)), // no series
	}, prices)

	// Input count and resolved count are both exposed and may differ.
	assert.Equal(t, 2, report.TotalSignals)
	assert.Len(t, report.Outcomes, 1)
}

func TestValidator_Aggregates(t *testing.T) {
	v := NewValidator(logger.Nop())
	prices := contracts.PriceData{
		"AAPL": trendSeries(40, 100, 1),  // rising
		"TSLA": trendSeries(40, 200, -1), // falling
	}

	report := v.Validate([]contracts.Signal{
		signal("AAPL", 80, contracts.DirectionBullish, session(0)), // correct, high score
		signal("AAPL", 30, contracts.DirectionBearish, session(0)), // wrong, low score
		signal("TSLA", 90, contracts.DirectionBearish, session(0)), // correct, high score
	}, prices)

	require.Len(t, report.Outcomes, 3)

	assert.InDelta(t, 2.0/3.0, report.HitRates["5d"], 1e-4)
	assert.InDelta(t, 2.0/3.0, report.HitRates["1d"], 1e-4)

	// 5-day hit rate split at composite score 50.
	assert.Equal(t, 1.0, report.HighScoreHitRate)
	assert.Equal(t, 0.0, report.LowScoreHitRate)

	assert.Equal(t, 0.5, report.PerTickerRates["AAPL"])
	assert.Equal(t, 1.0, report.PerTickerRates["TSLA"])

	// Mean 5-day return grouped by direction string.
	// bullish: AAPL (105-100)/100; bearish: mean of AAPL 0.05 and TSLA -0.025.
	assert.InDelta(t, 0.05, report.AvgReturnByDirection["bullish"], 1e-6)
	assert.InDelta(t, 0.0125, report.AvgReturnByDirection["bearish"], 1e-6)

	// Pure function of its inputs.
	again := v.Validate([]contracts.Signal{
		signal("AAPL", 80, contracts.DirectionBullish, session(0)),
		signal("AAPL", 30, contracts.DirectionBearish, session(0)),
		signal("TSLA", 90, contracts.DirectionBearish, session(0)),
	}, prices)
	assert.Equal(t, report.HitRates, again.HitRates)
}

func TestValidator_EmptyInput(t *testing.T) {
	v := NewValidator(logger.Nop())

	report := v.Validate(nil, contracts.PriceData{})
	assert.Equal(t, 0, report.TotalSignals)
	assert.Empty(t, report.Outcomes)
	assert.Empty(t, report.HitRates)
}
