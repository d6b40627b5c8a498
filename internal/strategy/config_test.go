package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
min_score: 60
direction_filter: bullish
position_weight: 0.2
stop_loss_pct: 0.05
take_profit_pct: 0.08
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 60.0, cfg.MinScore)
	assert.Equal(t, "bullish", cfg.DirectionFilter)
	assert.Equal(t, 0.2, cfg.PositionWeight)

	// Unset fields keep their defaults.
	assert.Equal(t, 5, cfg.MaxPositions)
	assert.Equal(t, 30, cfg.MaxHoldBars)
}

func TestLoadConfig_RejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
min_score: 60
stop_los_pct: 0.05
`)

	_, err := LoadConfig(path)
	assert.Error(t, err, "typoed fields must fail fast")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults are valid", func(c *Config) {}, true},
		{"zero position weight", func(c *Config) { c.PositionWeight = 0 }, false},
		{"weight above one", func(c *Config) { c.PositionWeight = 1.5 }, false},
		{"negative stop loss", func(c *Config) { c.StopLossPct = -0.01 }, false},
		{"zero take profit", func(c *Config) { c.TakeProfitPct = 0 }, false},
		{"zero max positions", func(c *Config) { c.MaxPositions = 0 }, false},
		{"bad direction filter", func(c *Config) { c.DirectionFilter = "sideways" }, false},
		{"bearish filter ok", func(c *Config) { c.DirectionFilter = "bearish" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfig_HashReproducible(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()

	hashA, err := a.Hash()
	require.NoError(t, err)
	hashB, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, hashA, hashB)

	b.MinScore = 60
	hashC, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, hashA, hashC)
}
