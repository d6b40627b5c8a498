// Package outcome checks archived signals against realized forward returns
// at fixed horizons and aggregates hit-rate reports.
package outcome

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/sonar/internal/contracts"
)

// Horizons are the forward lookup windows in trading sessions.
var Horizons = []int{1, 5, 10, 30}

// highScoreThreshold splits outcomes into high/low conviction buckets.
const highScoreThreshold = 50.0

// SignalOutcome records the realized forward returns for one signal that
// resolved against price data.
type SignalOutcome struct {
	SignalID      string              `json:"signal_id"`
	Ticker        string              `json:"ticker"`
	Direction     contracts.Direction `json:"direction"`
	Score         float64             `json:"composite_score"`
	SignalTime    string              `json:"signal_time"`
	PriceAtSignal float64             `json:"price_at_signal"`

	Return1D  float64 `json:"return_1d"`
	Return5D  float64 `json:"return_5d"`
	Return10D float64 `json:"return_10d"`
	Return30D float64 `json:"return_30d"`

	Correct1D  bool `json:"direction_correct_1d"`
	Correct5D  bool `json:"direction_correct_5d"`
	Correct30D bool `json:"direction_correct_30d"`
}

// Report aggregates validation results.
// TotalSignals counts every input signal including the skipped ones;
// Outcomes holds only the signals that resolved against price data.
type Report struct {
	TotalSignals         int                `json:"total_signals"`
	Outcomes             []SignalOutcome    `json:"outcomes"`
	HitRates             map[string]float64 `json:"hit_rates"`
	AvgReturnByDirection map[string]float64 `json:"avg_return_by_direction"`
	HighScoreHitRate     float64            `json:"high_score_hit_rate"`
	LowScoreHitRate      float64            `json:"low_score_hit_rate"`
	PerTickerRates       map[string]float64 `json:"per_ticker_rates"`
}

// Table returns per-signal outcomes as rows for tabular display.
func (r *Report) Table() [][]string {
	rows := make([][]string, 0, len(r.Outcomes)+1)
	rows = append(rows, []string{"signal_id", "ticker", "direction", "score", "return_5d", "correct_5d"})
	for _, o := range r.Outcomes {
		rows = append(rows, []string{
			o.SignalID,
			o.Ticker,
			string(o.Direction),
			fmt.Sprintf("%.1f", o.Score),
			fmt.Sprintf("%.4f", o.Return5D),
			fmt.Sprintf("%t", o.Correct5D),
		})
	}
	return rows
}

// Validator resolves archived signals against realized price movement.
// ⭐ SSOT: 예측 vs 실제 검증 로직
type Validator struct {
	log zerolog.Logger
}

// NewValidator creates a validator.
func NewValidator(log zerolog.Logger) *Validator {
	return &Validator{log: log.With().Str("component", "outcome.validator").Logger()}
}

// Validate computes the outcome report for the given signals. Signals with
// no price series or no usable aligned bar are skipped silently; sparse
// data degrades to an empty report, never an error.
func (v *Validator) Validate(signals []contracts.Signal, prices contracts.PriceData) *Report {
	report := &Report{
		TotalSignals:         len(signals),
		Outcomes:             make([]SignalOutcome, 0, len(signals)),
		HitRates:             make(map[string]float64),
		AvgReturnByDirection: make(map[string]float64),
		PerTickerRates:       make(map[string]float64),
	}

	for _, sig := range signals {
		series, ok := prices[sig.Ticker]
		if !ok || len(series) == 0 {
			continue
		}

		idx, ok := series.AlignIndex(sig.SignalTime)
		if !ok || series[idx].Close == 0 {
			continue
		}

		out := SignalOutcome{
			SignalID:      sig.SignalID,
			Ticker:        sig.Ticker,
			Direction:     sig.Direction,
			Score:         sig.CompositeScore,
			SignalTime:    sig.SignalTime.Format("2006-01-02T15:04:05Z07:00"),
			PriceAtSignal: series[idx].Close,
		}

		for _, h := range Horizons {
			ret, ok := series.ForwardReturn(idx, h)
			if !ok {
				continue
			}
			switch h {
			case 1:
				out.Return1D = contracts.Round(ret, 6)
				out.Correct1D = directionCorrect(sig.Direction, ret)
			case 5:
				out.Return5D = contracts.Round(ret, 6)
				out.Correct5D = directionCorrect(sig.Direction, ret)
			case 10:
				out.Return10D = contracts.Round(ret, 6)
			case 30:
				out.Return30D = contracts.Round(ret, 6)
				out.Correct30D = directionCorrect(sig.Direction, ret)
			}
		}

		report.Outcomes = append(report.Outcomes, out)
	}

	v.aggregate(report)

	v.log.Info().
		Int("total_signals", report.TotalSignals).
		Int("resolved", len(report.Outcomes)).
		Msg("validation completed")

	return report
}

// directionCorrect is the literal OR-condition: a bullish call needs a
// positive return, a bearish call a negative one. Neutral signals evaluate
// false under both branches and are never marked correct.
func directionCorrect(dir contracts.Direction, ret float64) bool {
	return (dir == contracts.DirectionBullish && ret > 0) ||
		(dir == contracts.DirectionBearish && ret < 0)
}

func (v *Validator) aggregate(report *Report) {
	n := len(report.Outcomes)
	if n == 0 {
		return
	}

	var hit1, hit5, hit30 int
	dirSums := make(map[string]float64)
	dirCounts := make(map[string]int)
	tickerHits := make(map[string]int)
	tickerCounts := make(map[string]int)
	var highHits, highTotal, lowHits, lowTotal int

	for _, out := range report.Outcomes {
		if out.Correct1D {
			hit1++
		}
		if out.Correct5D {
			hit5++
		}
		if out.Correct30D {
			hit30++
		}

		dir := string(out.Direction)
		dirSums[dir] += out.Return5D
		dirCounts[dir]++

		tickerCounts[out.Ticker]++
		if out.Correct5D {
			tickerHits[out.Ticker]++
		}

		if out.Score >= highScoreThreshold {
			highTotal++
			if out.Correct5D {
				highHits++
			}
		} else {
			lowTotal++
			if out.Correct5D {
				lowHits++
			}
		}
	}

	total := float64(n)
	report.HitRates["1d"] = contracts.Round(float64(hit1)/total, 4)
	report.HitRates["5d"] = contracts.Round(float64(hit5)/total, 4)
	report.HitRates["30d"] = contracts.Round(float64(hit30)/total, 4)

	for dir, sum := range dirSums {
		report.AvgReturnByDirection[dir] = contracts.Round(sum/float64(dirCounts[dir]), 6)
	}

	for ticker, count := range tickerCounts {
		report.PerTickerRates[ticker] = contracts.Round(float64(tickerHits[ticker])/float64(count), 4)
	}

	if highTotal > 0 {
		report.HighScoreHitRate = contracts.Round(float64(highHits)/float64(highTotal), 4)
	}
	if lowTotal > 0 {
		report.LowScoreHitRate = contracts.Round(float64(lowHits)/float64(lowTotal), 4)
	}
}
