package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sonar/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (f *fakeJob) Name() string     { return f.name }
func (f *fakeJob) Schedule() string { return f.schedule }
func (f *fakeJob) Run(ctx context.Context) error {
	f.runs++
	return f.err
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	job := &fakeJob{name: "noop", schedule: "@hourly"}
	require.NoError(t, s.AddJob(job))

	// Duplicate names are rejected.
	err := s.AddJob(&fakeJob{name: "noop", schedule: "@hourly"})
	assert.Error(t, err)

	// Invalid cron expressions are rejected.
	err = s.AddJob(&fakeJob{name: "bad", schedule: "not a cron spec"})
	assert.Error(t, err)
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := New(logger.Nop())

	ok := &fakeJob{name: "ok", schedule: "@hourly"}
	failing := &fakeJob{name: "failing", schedule: "@hourly", err: errors.New("boom")}

	s.runJob(ok)
	s.runJob(ok)
	s.runJob(failing)

	assert.Equal(t, 2, ok.runs)

	history := s.History("ok")
	require.Len(t, history, 2)
	assert.True(t, history[0].Success)
	assert.Empty(t, history[0].Error)

	history = s.History("failing")
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
	assert.Equal(t, "boom", history[0].Error)

	assert.Empty(t, s.History("unknown"))
}

func TestHistoryBounded(t *testing.T) {
	s := New(logger.Nop())

	job := &fakeJob{name: "busy", schedule: "@hourly"}
	for i := 0; i < historyLimit+10; i++ {
		s.runJob(job)
	}

	assert.Len(t, s.History("busy"), historyLimit)
}
