package contracts

import (
	"fmt"
	"math/rand"
	"time"
)

// Direction is the stated direction of a social signal.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// Signal represents one social/sentiment-derived trading signal at a point
// in time. Signals are created by the ingestion pipeline and are immutable
// once archived.
// ⭐ SSOT: 시그널 데이터 계약은 여기서만 정의
type Signal struct {
	SignalID          string    `json:"signal_id"`
	Ticker            string    `json:"ticker"`
	CompositeScore    float64   `json:"composite_score"`
	Direction         Direction `json:"direction"`
	Action            string    `json:"action"` // free-form label, e.g. "buy", "watch"
	SentimentAvg      float64   `json:"sentiment_avg"`
	PlatformCount     int       `json:"platform_count"`
	PlatformConsensus float64   `json:"platform_consensus"`
	InfluencerSignal  bool      `json:"influencer_signal"`
	VolumeAnomaly     bool      `json:"volume_anomaly"`
	MentionCount      int       `json:"mention_count"`
	Confidence        float64   `json:"confidence"`
	SignalTime        time.Time `json:"signal_time"`
}

// Normalize fills in the generated identity and default timestamp for a
// signal coming from the ingestion boundary. Existing values are kept.
func (s *Signal) Normalize() {
	if s.SignalID == "" {
		s.SignalID = GenerateSignalID()
	}
	if s.SignalTime.IsZero() {
		s.SignalTime = time.Now().UTC()
	}
}

// IsBullish reports whether the signal calls for upside.
func (s *Signal) IsBullish() bool {
	return s.Direction == DirectionBullish
}

// IsBearish reports whether the signal calls for downside.
func (s *Signal) IsBearish() bool {
	return s.Direction == DirectionBearish
}

// GenerateSignalID generates a unique signal ID
func GenerateSignalID() string {
	return fmt.Sprintf("sig_%s_%04d", time.Now().UTC().Format("20060102_150405"), rand.Intn(10000))
}
