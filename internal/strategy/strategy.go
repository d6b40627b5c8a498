// Package strategy simulates a directional long/short trading strategy
// driven by archived social signals replayed in chronological order.
package strategy

import (
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/sonar/internal/contracts"
)

// Exit reasons.
const (
	ExitStopLoss   = "stop_loss"
	ExitTakeProfit = "take_profit"
	ExitTimeExit   = "time_exit"
	ExitEndOfData  = "end_of_data"
)

// Trade sides.
const (
	SideLong  = "long"
	SideShort = "short"
)

// Trade is one finalized entry-to-exit round trip.
type Trade struct {
	SignalID    string  `json:"signal_id"`
	Ticker      string  `json:"ticker"`
	Side        string  `json:"side"`
	EntryDate   string  `json:"entry_date"`
	ExitDate    string  `json:"exit_date"`
	EntryPrice  float64 `json:"entry_price"`
	ExitPrice   float64 `json:"exit_price"`
	Shares      float64 `json:"shares"`
	PnL         float64 `json:"pnl"`
	ReturnPct   float64 `json:"return_pct"` // pnl over capital at entry
	ExitReason  string  `json:"exit_reason"`
	SignalScore float64 `json:"signal_score"`
}

// Result holds the aggregate outcome of one simulation run.
type Result struct {
	InitialCapital float64   `json:"initial_capital"`
	FinalCapital   float64   `json:"final_capital"`
	TotalReturn    float64   `json:"total_return"`
	TradeCount     int       `json:"trade_count"`
	WinRate        float64   `json:"win_rate"`
	Sharpe         float64   `json:"sharpe"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	EquityCurve    []float64 `json:"equity_curve"`
	Trades         []Trade   `json:"trades"`
}

// Strategy simulates signal-driven trading against daily price series.
// ⭐ SSOT: 시그널 전략 시뮬레이션은 여기서만
//
// Each signal's trade is fully resolved (entry through exit) before the next
// signal is considered, so positions never overlap in simulation time even
// though MaxPositions nominally allows concurrency.
type Strategy struct {
	cfg Config
	log zerolog.Logger
}

// New creates a strategy with the given parameters.
func New(cfg Config, log zerolog.Logger) *Strategy {
	return &Strategy{
		cfg: cfg,
		log: log.With().Str("component", "strategy").Logger(),
	}
}

// Run simulates the strategy over the given signals and prices. The runner
// owns chronological ordering: signals are sorted ascending by signal time
// before processing.
func (s *Strategy) Run(signals []contracts.Signal, prices contracts.PriceData, initialCapital float64) *Result {
	ordered := make([]contracts.Signal, len(signals))
	copy(ordered, signals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SignalTime.Before(ordered[j].SignalTime)
	})

	result := &Result{
		InitialCapital: initialCapital,
		EquityCurve:    []float64{initialCapital},
		Trades:         make([]Trade, 0),
	}

	capital := initialCapital
	open := make(map[string]struct{}) // tickers with an open position

	for _, sig := range ordered {
		if !s.accept(sig, open) {
			continue
		}

		series := prices[sig.Ticker]
		idx, ok := series.AlignIndex(sig.SignalTime)
		if !ok || idx >= len(series)-1 {
			continue
		}

		entry := series[idx].Close
		if entry <= 0 {
			continue
		}

		shares := (capital * s.cfg.PositionWeight) / entry
		if shares <= 0 {
			continue
		}

		side := SideLong
		if sig.Direction == contracts.DirectionBearish {
			side = SideShort
		}

		open[sig.Ticker] = struct{}{}
		exitPrice, exitIdx, reason := s.scanExit(series, idx, entry, side)

		var pnl float64
		if side == SideLong {
			pnl = (exitPrice - entry) * shares
		} else {
			pnl = (entry - exitPrice) * shares
		}

		trade := Trade{
			SignalID:    sig.SignalID,
			Ticker:      sig.Ticker,
			Side:        side,
			EntryDate:   series[idx].Date.Format("2006-01-02"),
			ExitDate:    series[exitIdx].Date.Format("2006-01-02"),
			EntryPrice:  entry,
			ExitPrice:   exitPrice,
			Shares:      shares,
			PnL:         contracts.Round(pnl, 2),
			ReturnPct:   contracts.Round(pnl/capital, 6),
			ExitReason:  reason,
			SignalScore: sig.CompositeScore,
		}

		capital += pnl
		result.EquityCurve = append(result.EquityCurve, capital)
		result.Trades = append(result.Trades, trade)

		// The trade is resolved before the next signal is processed.
		delete(open, sig.Ticker)
	}

	result.FinalCapital = capital
	s.finalize(result)

	s.log.Info().
		Int("trades", result.TradeCount).
		Float64("total_return", result.TotalReturn).
		Float64("max_drawdown", result.MaxDrawdown).
		Msg("simulation completed")

	return result
}

// accept applies the entry filters.
func (s *Strategy) accept(sig contracts.Signal, open map[string]struct{}) bool {
	if sig.CompositeScore < s.cfg.MinScore {
		return false
	}
	if s.cfg.DirectionFilter != "" && string(sig.Direction) != s.cfg.DirectionFilter {
		return false
	}
	if _, held := open[sig.Ticker]; held {
		return false
	}
	if len(open) >= s.cfg.MaxPositions {
		return false
	}
	return true
}

// scanExit walks forward up to MaxHoldBars sessions from entry, checking the
// side-adjusted percentage change against the stop-loss and take-profit
// thresholds. Returns the exit price, exit bar index and exit reason.
func (s *Strategy) scanExit(series contracts.PriceSeries, entryIdx int, entry float64, side string) (float64, int, string) {
	last := entryIdx
	for k := 1; k <= s.cfg.MaxHoldBars; k++ {
		j := entryIdx + k
		if j >= len(series) {
			// History ran out before the hold window did.
			return series[last].Close, last, ExitEndOfData
		}

		price := series[j].Close
		change := (price - entry) / entry
		if side == SideShort {
			change = -change
		}

		if change <= -s.cfg.StopLossPct {
			return price, j, ExitStopLoss
		}
		if change >= s.cfg.TakeProfitPct {
			return price, j, ExitTakeProfit
		}

		last = j
	}

	return series[last].Close, last, ExitTimeExit
}

// finalize computes aggregate metrics from the finished trade list.
func (s *Strategy) finalize(result *Result) {
	result.TradeCount = len(result.Trades)
	result.TotalReturn = contracts.Round(
		(result.FinalCapital-result.InitialCapital)/result.InitialCapital, 6)

	if result.TradeCount == 0 {
		return
	}

	wins := 0
	returns := make([]float64, 0, result.TradeCount)
	for _, trade := range result.Trades {
		if trade.PnL > 0 {
			wins++
		}
		returns = append(returns, trade.ReturnPct)
	}
	result.WinRate = contracts.Round(float64(wins)/float64(result.TradeCount), 4)

	if len(returns) >= 2 {
		mean := stat.Mean(returns, nil)
		std := stat.StdDev(returns, nil)
		if std > 0 {
			result.Sharpe = contracts.Round(mean/std*sqrt252, 4)
		}
	}

	result.MaxDrawdown = contracts.Round(maxDrawdown(result.EquityCurve), 6)
}

// sqrt252 annualizes a per-trade statistic over trading days.
const sqrt252 = 15.874507866387544

// maxDrawdown is the largest peak-to-trough fractional decline of the
// equity curve.
func maxDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}

	maxDD := 0.0
	peak := curve[0]

	for _, equity := range curve {
		if equity > peak {
			peak = equity
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - equity) / peak; dd > maxDD {
			maxDD = dd
		}
	}

	return maxDD
}
