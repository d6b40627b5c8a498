package strategy

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/sonar/internal/archive"
	"github.com/wonny/sonar/internal/contracts"
)

// Runner replays a full archive chronologically through a Strategy.
type Runner struct {
	cfg Config
	log zerolog.Logger
}

// NewRunner creates a runner with a default config for runs that do not
// supply their own.
func NewRunner(cfg Config, log zerolog.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Run replays the archive and simulates the strategy against the given
// prices. A non-nil override config takes precedence over the runner's own.
func (r *Runner) Run(arch *archive.Archive, prices contracts.PriceData, override *Config, initialCapital float64) *Result {
	cfg := r.cfg
	if override != nil {
		cfg = *override
	}

	signals := arch.Replay(time.Time{}, time.Time{})
	return New(cfg, r.log).Run(signals, prices, initialCapital)
}
