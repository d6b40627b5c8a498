package strategy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/sonar/internal/contracts"
)

// Config holds the entry and exit parameters of the signal-driven strategy.
type Config struct {
	// Entry filters
	MinScore        float64 `yaml:"min_score" json:"min_score"`
	DirectionFilter string  `yaml:"direction_filter" json:"direction_filter"` // "", "bullish" or "bearish"
	MaxPositions    int     `yaml:"max_positions" json:"max_positions"`

	// Sizing
	PositionWeight float64 `yaml:"position_weight" json:"position_weight"` // fraction of capital per trade

	// Exit rules
	StopLossPct   float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	TakeProfitPct float64 `yaml:"take_profit_pct" json:"take_profit_pct"`
	MaxHoldBars   int     `yaml:"max_hold_bars" json:"max_hold_bars"`
}

// DefaultConfig returns the standard strategy parameters.
func DefaultConfig() Config {
	return Config{
		MinScore:        50.0,
		DirectionFilter: "",
		MaxPositions:    5,
		PositionWeight:  0.10,
		StopLossPct:     0.03,
		TakeProfitPct:   0.04,
		MaxHoldBars:     30,
	}
}

// LoadConfig reads a YAML strategy config.
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode strategy config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks parameter ranges.
func (c *Config) Validate() error {
	if c.PositionWeight <= 0 || c.PositionWeight > 1 {
		return fmt.Errorf("position_weight must be in (0, 1], got %v", c.PositionWeight)
	}
	if c.StopLossPct <= 0 {
		return fmt.Errorf("stop_loss_pct must be positive, got %v", c.StopLossPct)
	}
	if c.TakeProfitPct <= 0 {
		return fmt.Errorf("take_profit_pct must be positive, got %v", c.TakeProfitPct)
	}
	if c.MaxPositions <= 0 {
		return fmt.Errorf("max_positions must be positive, got %d", c.MaxPositions)
	}
	if c.MaxHoldBars <= 0 {
		return fmt.Errorf("max_hold_bars must be positive, got %d", c.MaxHoldBars)
	}

	switch contracts.Direction(c.DirectionFilter) {
	case "", contracts.DirectionBullish, contracts.DirectionBearish:
	default:
		return fmt.Errorf("direction_filter must be empty, bullish or bearish, got %q", c.DirectionFilter)
	}

	return nil
}

// Hash generates a SHA256 hash of the config for run reproducibility.
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func (c *Config) Hash() (string, error) {
	jsonBytes, err := json.Marshal(c)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
