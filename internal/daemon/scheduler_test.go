package daemon

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsPeriodicRebuild(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)

	var calls atomic.Int32
	id, err := s.SchedulePeriodicRebuild(20*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	s.Start()
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	_, err = s.SchedulePeriodicRebuild(0, func() {})
	assert.Error(t, err)
}
