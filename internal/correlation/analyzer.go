// Package correlation measures how strongly signal scores at time T predict
// forward price returns at T+lag, per ticker, across a set of lag offsets.
package correlation

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/sonar/internal/contracts"
)

// DefaultLags are the forward offsets tested, in trading days, scanned in
// this order when picking the optimal lag.
var DefaultLags = []int{0, 1, 2, 5, 10}

const minSamples = 3

// Config controls significance testing.
type Config struct {
	SignificanceLevel float64
}

// DefaultConfig returns the standard 5% significance level.
func DefaultConfig() Config {
	return Config{SignificanceLevel: 0.05}
}

// Result holds the correlation between signal scores and forward returns
// at a single lag.
type Result struct {
	Lag         int     `json:"lag"`
	Correlation float64 `json:"correlation"`
	PValue      float64 `json:"p_value"`
	SampleSize  int     `json:"sample_size"`
	Significant bool    `json:"significant"`
}

// LagAnalysis aggregates one Result per tested lag for a ticker and
// identifies the most predictive lag.
type LagAnalysis struct {
	Ticker             string   `json:"ticker"`
	Results            []Result `json:"results"`
	OptimalLag         int      `json:"optimal_lag"`
	OptimalCorrelation float64  `json:"optimal_correlation"`
	SignalCount        int      `json:"signal_count"`
}

// Table returns the analysis as rows for tabular display, one per lag.
func (la *LagAnalysis) Table() [][]string {
	rows := make([][]string, 0, len(la.Results)+1)
	rows = append(rows, []string{"lag", "correlation", "p_value", "samples", "significant"})
	for _, r := range la.Results {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Lag),
			fmt.Sprintf("%.4f", r.Correlation),
			fmt.Sprintf("%.4f", r.PValue),
			fmt.Sprintf("%d", r.SampleSize),
			fmt.Sprintf("%t", r.Significant),
		})
	}
	return rows
}

// Analyzer computes lagged signal/return correlations.
// ⭐ SSOT: 시그널 예측력(상관) 분석은 여기서만
type Analyzer struct {
	cfg Config
	log zerolog.Logger
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(cfg Config, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		cfg: cfg,
		log: log.With().Str("component", "correlation.analyzer").Logger(),
	}
}

// Analyze computes the lag analysis for one ticker. Missing price data or a
// ticker without signals degrades to an empty analysis, never an error.
// Passing nil lags uses DefaultLags.
func (a *Analyzer) Analyze(signals []contracts.Signal, prices contracts.PriceData, ticker string, lags []int) *LagAnalysis {
	if lags == nil {
		lags = DefaultLags
	}

	analysis := &LagAnalysis{Ticker: ticker, Results: make([]Result, 0, len(lags))}

	var own []contracts.Signal
	for _, sig := range signals {
		if sig.Ticker == ticker {
			own = append(own, sig)
		}
	}
	analysis.SignalCount = len(own)

	series, ok := prices[ticker]
	if len(own) == 0 || !ok || len(series) == 0 {
		a.log.Debug().Str("ticker", ticker).Int("signals", len(own)).Msg("no data for ticker")
		return analysis
	}

	bestAbs := -1.0
	for _, lag := range lags {
		res := a.analyzeLag(own, series, lag)
		analysis.Results = append(analysis.Results, res)

		// First occurrence wins on ties: strict comparison, lag-list order.
		if abs := math.Abs(res.Correlation); abs > bestAbs {
			bestAbs = abs
			analysis.OptimalLag = res.Lag
			analysis.OptimalCorrelation = res.Correlation
		}
	}

	return analysis
}

// AnalyzeUniverse runs Analyze independently per ticker. Passing nil tickers
// analyzes every ticker present in the signals.
func (a *Analyzer) AnalyzeUniverse(signals []contracts.Signal, prices contracts.PriceData, tickers []string) map[string]*LagAnalysis {
	if tickers == nil {
		seen := make(map[string]struct{})
		for _, sig := range signals {
			if _, dup := seen[sig.Ticker]; !dup {
				seen[sig.Ticker] = struct{}{}
				tickers = append(tickers, sig.Ticker)
			}
		}
	}

	out := make(map[string]*LagAnalysis, len(tickers))
	for _, ticker := range tickers {
		out[ticker] = a.Analyze(signals, prices, ticker, nil)
	}

	a.log.Info().Int("tickers", len(out)).Msg("universe analysis completed")
	return out
}

// analyzeLag pairs each signal's score with its forward return at the given
// lag and computes the Pearson correlation over the valid pairs.
func (a *Analyzer) analyzeLag(signals []contracts.Signal, series contracts.PriceSeries, lag int) Result {
	scores := make([]float64, 0, len(signals))
	returns := make([]float64, 0, len(signals))

	for _, sig := range signals {
		idx, ok := series.AlignIndex(sig.SignalTime)
		if !ok {
			continue
		}
		ret, ok := series.ForwardReturn(idx, lag)
		if !ok {
			continue
		}
		scores = append(scores, sig.CompositeScore)
		returns = append(returns, ret)
	}

	n := len(scores)
	if n < minSamples {
		// Not enough data; a zeroed result with the true sample size.
		return Result{Lag: lag, Correlation: 0, PValue: 1.0, SampleSize: n}
	}

	r := stat.Correlation(scores, returns, nil)
	if math.IsNaN(r) {
		// Constant scores or returns have no defined correlation.
		return Result{Lag: lag, Correlation: 0, PValue: 1.0, SampleSize: n}
	}

	p := pValue(r, n)

	return Result{
		Lag:         lag,
		Correlation: contracts.Round(r, 4),
		PValue:      contracts.Round(p, 4),
		SampleSize:  n,
		Significant: p < a.cfg.SignificanceLevel,
	}
}

// pValue approximates the two-tailed p-value of Pearson's r via the
// t-statistic and a normal-CDF polynomial approximation.
func pValue(r float64, n int) float64 {
	denom := 1 - r*r
	if denom <= 0 {
		return 0
	}

	t := r * math.Sqrt(float64(n-2)/denom)
	p := 2 * (1 - normalCDF(math.Abs(t)))
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// normalCDF is the Abramowitz & Stegun 26.2.17 polynomial approximation of
// the standard normal cumulative distribution.
func normalCDF(x float64) float64 {
	if x < 0 {
		return 1 - normalCDF(-x)
	}

	t := 1 / (1 + 0.2316419*x)
	poly := t * (0.319381530 + t*(-0.356563782+t*(1.781477937+t*(-1.821255978+t*1.330274429))))
	pdf := math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)

	return 1 - pdf*poly
}
