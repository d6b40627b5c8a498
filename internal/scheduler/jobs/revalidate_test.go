package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sonar/internal/api/handlers"
	"github.com/wonny/sonar/internal/contracts"
	"github.com/wonny/sonar/internal/outcome"
	"github.com/wonny/sonar/pkg/logger"
)

func TestRevalidateJob(t *testing.T) {
	log := logger.Nop()
	state := handlers.NewState()
	job := NewRevalidateJob(state, outcome.NewValidator(log), "@hourly", log)

	assert.Equal(t, "outcome-revalidate", job.Name())
	assert.Equal(t, "@hourly", job.Schedule())

	// Empty archive is a no-op, not an error.
	require.NoError(t, job.Run(context.Background()))
	assert.Nil(t, state.LastReport())

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	series := make(contracts.PriceSeries, 0, 40)
	for i := 0; i < 40; i++ {
		series = append(series, contracts.PriceBar{
			Date:  start.AddDate(0, 0, i),
			Close: 100 + 0.5*float64(i),
		})
	}
	state.SetPrices(contracts.PriceData{"AAPL": series})
	state.AddSignals([]contracts.Signal{{
		Ticker:         "AAPL",
		CompositeScore: 70,
		Direction:      contracts.DirectionBullish,
		SignalTime:     start,
	}})

	require.NoError(t, job.Run(context.Background()))

	report := state.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, 1, report.TotalSignals)
	require.Len(t, report.Outcomes, 1)
	assert.True(t, report.Outcomes[0].Correct1D)
}
