package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerEntry_State(t *testing.T) {
	running := TrackerEntry{Duration: RunningDuration}
	assert.Equal(t, TimerRunning, running.State())
	assert.True(t, running.IsRunning())

	finished := TrackerEntry{Duration: 0}
	assert.Equal(t, TimerPaused, finished.State())
	assert.False(t, finished.IsRunning())
}

func TestTrackerEntry_ElapsedSeconds(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	running := TrackerEntry{Start: start, Duration: RunningDuration}
	assert.Equal(t, int64(90), running.ElapsedSeconds(start.Add(90*time.Second)))

	// Sub-second remainders truncate
	assert.Equal(t, int64(90), running.ElapsedSeconds(start.Add(90*time.Second+900*time.Millisecond)))

	finished := TrackerEntry{Start: start, Duration: 1234}
	assert.Equal(t, int64(1234), finished.ElapsedSeconds(start.Add(time.Hour)))
}

func TestTrackerEntry_Amount(t *testing.T) {
	entry := TrackerEntry{Duration: 3600}
	assert.InDelta(t, 50.0, entry.Amount(50), 1e-9)

	halfHour := TrackerEntry{Duration: 1800}
	assert.InDelta(t, 25.0, halfHour.Amount(50), 1e-9)

	running := TrackerEntry{Duration: RunningDuration}
	assert.Zero(t, running.Amount(50))

	empty := TrackerEntry{Duration: 0}
	assert.Zero(t, empty.Amount(50))
}
