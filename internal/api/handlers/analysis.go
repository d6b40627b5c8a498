package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wonny/sonar/internal/contracts"
	"github.com/wonny/sonar/internal/correlation"
	"github.com/wonny/sonar/internal/outcome"
	"github.com/wonny/sonar/internal/strategy"
)

// AnalysisHandler runs correlation, validation and backtest analyses over
// the server-held archive and price book.
type AnalysisHandler struct {
	state     *State
	analyzer  *correlation.Analyzer
	validator *outcome.Validator
	log       zerolog.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(
	state *State,
	analyzer *correlation.Analyzer,
	validator *outcome.Validator,
	log zerolog.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		state:     state,
		analyzer:  analyzer,
		validator: validator,
		log:       log.With().Str("component", "api.analysis").Logger(),
	}
}

// UploadPrices replaces the held price series for the given tickers
// POST /api/prices
func (h *AnalysisHandler) UploadPrices(w http.ResponseWriter, r *http.Request) {
	var prices contracts.PriceData
	if err := json.NewDecoder(r.Body).Decode(&prices); err != nil {
		respondError(w, http.StatusBadRequest, "invalid price payload")
		return
	}
	if len(prices) == 0 {
		respondError(w, http.StatusBadRequest, "empty price payload")
		return
	}

	h.state.SetPrices(prices)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "stored",
		"tickers": len(prices),
	})
}

// CorrelateRequest selects tickers and lags for a correlation run.
type CorrelateRequest struct {
	Tickers []string `json:"tickers,omitempty"` // default: all archived tickers
	Lags    []int    `json:"lags,omitempty"`    // default: [0, 1, 2, 5, 10]
}

// Correlate runs the lag analysis per ticker
// POST /api/analysis/correlation
func (h *AnalysisHandler) Correlate(w http.ResponseWriter, r *http.Request) {
	var req CorrelateRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // empty body means defaults
	}

	signals, prices := h.state.Snapshot()

	var results map[string]*correlation.LagAnalysis
	if req.Lags != nil {
		results = make(map[string]*correlation.LagAnalysis)
		tickers := req.Tickers
		if tickers == nil {
			tickers = h.state.Tickers()
		}
		for _, ticker := range tickers {
			results[ticker] = h.analyzer.Analyze(signals, prices, ticker, req.Lags)
		}
	} else {
		results = h.analyzer.AnalyzeUniverse(signals, prices, req.Tickers)
	}

	respondJSON(w, http.StatusOK, results)
}

// Validate runs outcome validation over the archive
// POST /api/analysis/validation
func (h *AnalysisHandler) Validate(w http.ResponseWriter, r *http.Request) {
	signals, prices := h.state.Snapshot()

	report := h.validator.Validate(signals, prices)
	h.state.SetLastReport(report)

	respondJSON(w, http.StatusOK, report)
}

// LatestValidation returns the cached validation report
// GET /api/analysis/validation/latest
func (h *AnalysisHandler) LatestValidation(w http.ResponseWriter, r *http.Request) {
	report := h.state.LastReport()
	if report == nil {
		respondError(w, http.StatusNotFound, "no validation run yet")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// BacktestRequest parameterizes a simulation run.
type BacktestRequest struct {
	InitialCapital float64          `json:"initial_capital,omitempty"`
	Config         *strategy.Config `json:"config,omitempty"`
}

// Backtest simulates the strategy over the archive
// POST /api/analysis/backtest
func (h *AnalysisHandler) Backtest(w http.ResponseWriter, r *http.Request) {
	req := BacktestRequest{InitialCapital: 100000}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.InitialCapital <= 0 {
		respondError(w, http.StatusBadRequest, "initial_capital must be positive")
		return
	}
	if req.Config != nil {
		if err := req.Config.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	signals, prices := h.state.Snapshot()

	cfg := strategy.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	result := strategy.New(cfg, h.log).Run(signals, prices, req.InitialCapital)
	respondJSON(w, http.StatusOK, result)
}
