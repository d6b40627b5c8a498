package contracts

import (
	"math"
	"sort"
	"time"
)

// PriceBar is one daily trading session for a ticker.
type PriceBar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is a date-ascending sequence of daily closes, one bar per
// trading session, no duplicate dates. The analysis cores treat it as
// read-only input.
type PriceSeries []PriceBar

// PriceData maps ticker to its price series.
type PriceData map[string]PriceSeries

// AlignIndex resolves a signal timestamp to a price-series index using
// forward-fill semantics: the first bar whose session date is on or after
// the signal's calendar date. A signal falling after all available bars
// aligns to the last bar. Returns (-1, false) for an empty series.
// ⭐ SSOT: 날짜 정렬(forward-fill)은 이 함수에서만 수행
func (p PriceSeries) AlignIndex(ts time.Time) (int, bool) {
	if len(p) == 0 {
		return -1, false
	}

	target := DateOnly(ts)
	idx := sort.Search(len(p), func(i int) bool {
		return !DateOnly(p[i].Date).Before(target)
	})

	if idx == len(p) {
		// Past the end of available history: clamp to the last session.
		return len(p) - 1, true
	}

	return idx, true
}

// ForwardReturn computes the fractional return from the bar at base to the
// bar offset sessions later, clamping the forward index to the last bar.
// Returns (0, false) when base is out of range or the base price is zero.
func (p PriceSeries) ForwardReturn(base, offset int) (float64, bool) {
	if base < 0 || base >= len(p) {
		return 0, false
	}

	fwd := base + offset
	if fwd >= len(p) {
		fwd = len(p) - 1
	}

	basePrice := p[base].Close
	if basePrice == 0 {
		return 0, false
	}

	return (p[fwd].Close - basePrice) / basePrice, true
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Round rounds x to the given number of decimal places. Report types use
// it so serialized payloads carry stable, display-ready floats.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
