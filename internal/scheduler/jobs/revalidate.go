// Package jobs holds the scheduled jobs run by the API server.
package jobs

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wonny/sonar/internal/api/handlers"
	"github.com/wonny/sonar/internal/outcome"
)

// RevalidateJob periodically re-runs outcome validation over the server
// archive so the cached report tracks newly archived signals and prices.
type RevalidateJob struct {
	state     *handlers.State
	validator *outcome.Validator
	schedule  string
	log       zerolog.Logger
}

// NewRevalidateJob creates the job with a cron schedule expression.
func NewRevalidateJob(state *handlers.State, validator *outcome.Validator, schedule string, log zerolog.Logger) *RevalidateJob {
	return &RevalidateJob{
		state:     state,
		validator: validator,
		schedule:  schedule,
		log:       log.With().Str("component", "jobs.revalidate").Logger(),
	}
}

// Name returns the job name
func (j *RevalidateJob) Name() string { return "outcome-revalidate" }

// Schedule returns the cron schedule expression
func (j *RevalidateJob) Schedule() string { return j.schedule }

// Run recomputes the validation report and caches it on the server state.
func (j *RevalidateJob) Run(ctx context.Context) error {
	signals, prices := j.state.Snapshot()
	if len(signals) == 0 {
		j.log.Debug().Msg("archive empty, skipping revalidation")
		return nil
	}

	report := j.validator.Validate(signals, prices)
	j.state.SetLastReport(report)

	j.log.Info().
		Int("total_signals", report.TotalSignals).
		Int("resolved", len(report.Outcomes)).
		Msg("revalidation completed")

	return nil
}
