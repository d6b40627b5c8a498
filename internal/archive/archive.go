// Package archive implements the append-only, queryable, replayable store
// of timestamped social trading signals.
package archive

import (
	"sort"
	"time"

	"github.com/wonny/sonar/internal/contracts"
)

// Archive owns an insertion-ordered collection of archived signals.
// ⭐ SSOT: 시그널 보관/조회는 여기서만
//
// The archive is a pure in-memory collection with no concurrency control;
// callers needing concurrent access must serialize externally.
type Archive struct {
	signals []contracts.Signal
}

// Filter restricts a signal query. Zero-valued fields mean "no constraint";
// Start and End are inclusive bounds on signal time.
type Filter struct {
	Ticker string
	Start  time.Time
	End    time.Time
}

// Stats summarizes the archive contents.
type Stats struct {
	TotalSignals int            `json:"total_signals"`
	ByDirection  map[string]int `json:"by_direction"`
	ByAction     map[string]int `json:"by_action"`
	AvgScore     float64        `json:"avg_score"`
	EarliestTime string         `json:"earliest_time"`
	LatestTime   string         `json:"latest_time"`
}

// New creates an empty archive.
func New() *Archive {
	return &Archive{signals: make([]contracts.Signal, 0)}
}

// Add appends one signal, generating identity and timestamp if absent.
// No dedup by signal ID and no field-range validation; that is the
// ingestion pipeline's responsibility.
func (a *Archive) Add(sig contracts.Signal) contracts.Signal {
	sig.Normalize()
	a.signals = append(a.signals, sig)
	return sig
}

// AddBatch appends signals in order.
func (a *Archive) AddBatch(sigs []contracts.Signal) []contracts.Signal {
	added := make([]contracts.Signal, 0, len(sigs))
	for _, sig := range sigs {
		added = append(added, a.Add(sig))
	}
	return added
}

// Signals returns the subset matching all filter predicates, in insertion
// order. An empty filter returns everything.
func (a *Archive) Signals(f Filter) []contracts.Signal {
	out := make([]contracts.Signal, 0, len(a.signals))
	for _, sig := range a.signals {
		if f.Ticker != "" && sig.Ticker != f.Ticker {
			continue
		}
		if !f.Start.IsZero() && sig.SignalTime.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && sig.SignalTime.After(f.End) {
			continue
		}
		out = append(out, sig)
	}
	return out
}

// Replay returns signals within the optional time bounds, sorted ascending
// by signal time with insertion order breaking ties. Each call builds a
// fresh filtered+sorted copy, so replays are restartable and never observe
// later mutation.
func (a *Archive) Replay(start, end time.Time) []contracts.Signal {
	out := a.Signals(Filter{Start: start, End: end})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SignalTime.Before(out[j].SignalTime)
	})
	return out
}

// Tickers returns the sorted list of distinct tickers seen.
func (a *Archive) Tickers() []string {
	seen := make(map[string]struct{})
	for _, sig := range a.signals {
		seen[sig.Ticker] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for ticker := range seen {
		out = append(out, ticker)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of archived signals.
func (a *Archive) Len() int {
	return len(a.signals)
}

// Clear empties the archive. Idempotent.
func (a *Archive) Clear() {
	a.signals = a.signals[:0]
}

// GetStats summarizes the archive. An empty archive yields a zeroed report
// with empty groupings, never an error.
func (a *Archive) GetStats() Stats {
	stats := Stats{
		TotalSignals: len(a.signals),
		ByDirection:  make(map[string]int),
		ByAction:     make(map[string]int),
	}

	if len(a.signals) == 0 {
		return stats
	}

	var scoreSum float64
	earliest := a.signals[0].SignalTime
	latest := a.signals[0].SignalTime

	for _, sig := range a.signals {
		stats.ByDirection[string(sig.Direction)]++
		stats.ByAction[sig.Action]++
		scoreSum += sig.CompositeScore

		if sig.SignalTime.Before(earliest) {
			earliest = sig.SignalTime
		}
		if sig.SignalTime.After(latest) {
			latest = sig.SignalTime
		}
	}

	stats.AvgScore = contracts.Round(scoreSum/float64(len(a.signals)), 2)
	stats.EarliestTime = earliest.Format(time.RFC3339)
	stats.LatestTime = latest.Format(time.RFC3339)

	return stats
}
