package handlers

import (
	"sync"
	"time"

	"github.com/wonny/sonar/internal/archive"
	"github.com/wonny/sonar/internal/contracts"
	"github.com/wonny/sonar/internal/outcome"
)

// State is the server-held archive and price book. The core collections
// assume single-threaded use, so all HTTP access goes through this mutex.
type State struct {
	mu         sync.RWMutex
	archive    *archive.Archive
	prices     contracts.PriceData
	lastReport *outcome.Report
}

// NewState creates an empty server state.
func NewState() *State {
	return &State{
		archive: archive.New(),
		prices:  make(contracts.PriceData),
	}
}

// AddSignals ingests a batch into the archive and returns the stored
// signals with generated identity.
func (s *State) AddSignals(sigs []contracts.Signal) []contracts.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archive.AddBatch(sigs)
}

// Snapshot returns a point-in-time copy of the archive's chronological
// replay and the price book for analysis runs.
func (s *State) Snapshot() ([]contracts.Signal, contracts.PriceData) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	signals := s.archive.Replay(time.Time{}, time.Time{})
	prices := make(contracts.PriceData, len(s.prices))
	for ticker, series := range s.prices {
		prices[ticker] = series
	}
	return signals, prices
}

// Stats returns the archive summary.
func (s *State) Stats() archive.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.archive.GetStats()
}

// Tickers returns the distinct tickers seen.
func (s *State) Tickers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.archive.Tickers()
}

// Clear resets the archive.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive.Clear()
}

// SetPrices replaces the series for the given tickers.
func (s *State) SetPrices(prices contracts.PriceData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ticker, series := range prices {
		s.prices[ticker] = series
	}
}

// SetLastReport caches the most recent validation report.
func (s *State) SetLastReport(report *outcome.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReport = report
}

// LastReport returns the cached validation report, if any.
func (s *State) LastReport() *outcome.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}
