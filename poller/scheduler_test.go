package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fardream/confirm-solana-transaction/types"
)

func TestSchedulerDoublesUpToCap(t *testing.T) {
	s := NewScheduler(DefaultConfig(), time.Now(), 0)
	want := []time.Duration{
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		5 * time.Second,
		5 * time.Second,
	}
	for i, expected := range want {
		require.Equal(t, expected, s.Next(), "attempt %d", i+1)
	}
}

func TestSchedulerDeadline(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	unbounded := NewScheduler(Config{}, start, 0)
	_, ok := unbounded.Deadline()
	require.False(t, ok)
	require.False(t, unbounded.Expired(start.Add(24*365*time.Hour)))

	s := NewScheduler(Config{}, start, time.Second)
	deadline, ok := s.Deadline()
	require.True(t, ok)
	require.Equal(t, start.Add(time.Second), deadline)
	require.False(t, s.Expired(start.Add(time.Second)))
	require.True(t, s.Expired(start.Add(time.Second+time.Nanosecond)))
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{InitialBackoff: time.Second, MaxBackoff: time.Millisecond}
	ApplyDefaults(&cfg)
	require.Equal(t, time.Second, cfg.MaxBackoff, "cap below initial wait is raised")
	require.NotNil(t, cfg.Logger)
	require.NotNil(t, cfg.Recorder)

	cfg = Config{}
	ApplyDefaults(&cfg)
	require.Equal(t, DefaultInitialBackoff, cfg.InitialBackoff)
	require.Equal(t, DefaultMaxBackoff, cfg.MaxBackoff)
	ApplyDefaults(nil)
}

func TestIsDropped(t *testing.T) {
	require.False(t, IsDropped(99, 100))
	require.False(t, IsDropped(100, 100))
	require.True(t, IsDropped(types.Height(101), 100))
}

func TestSchedulerClampsToDeadline(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	unbounded := NewScheduler(Config{}, start, 0)
	require.Equal(t, 5*time.Second, unbounded.Clamp(5*time.Second, start))

	s := NewScheduler(Config{}, start, time.Second)
	require.Equal(t, 400*time.Millisecond, s.Clamp(400*time.Millisecond, start))
	require.Equal(t, 300*time.Millisecond+time.Nanosecond, s.Clamp(5*time.Second, start.Add(700*time.Millisecond)))
	require.Equal(t, time.Nanosecond, s.Clamp(5*time.Second, start.Add(time.Second)))
	require.Zero(t, s.Clamp(5*time.Second, start.Add(2*time.Second)))
}
