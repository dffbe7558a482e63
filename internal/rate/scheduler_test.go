package rate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRefresher struct {
	calls atomic.Int32
	err   error
}

func (s *stubRefresher) Refresh(ctx context.Context) (ReconcileResult, error) {
	s.calls.Add(1)
	if ctx.Err() != nil {
		return ReconcileResult{}, ctx.Err()
	}
	return ReconcileResult{Updated: 1}, s.err
}

func TestNewScheduler_Constructs(t *testing.T) {
	s := NewScheduler(new(stubRefresher), 10*time.Second)
	require.NotNil(t, s)
	require.False(t, s.running())
}

func TestNewScheduler_UsesProvidedInterval(t *testing.T) {
	s := NewScheduler(new(stubRefresher), 42*time.Second)
	require.Equal(t, 42*time.Second, s.refreshInterval)
}

func TestNewScheduler_DefaultsIntervalWhenInvalid(t *testing.T) {
	s := NewScheduler(new(stubRefresher), 0)
	require.Equal(t, 10*time.Second, s.refreshInterval)
}

func TestScheduler_Shutdown_NoScheduler_ReturnsNil(t *testing.T) {
	s := NewScheduler(new(stubRefresher), 10*time.Second)
	require.NoError(t, s.Shutdown())
	require.False(t, s.running())
}

func TestScheduler_Start_RunsImmediately(t *testing.T) {
	ref := new(stubRefresher)
	s := NewScheduler(ref, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Shutdown() }()

	require.Eventually(t, func() bool { return ref.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_KeepsTickingAfterFailedCycle(t *testing.T) {
	ref := &stubRefresher{err: errors.New("feed down")}
	s := NewScheduler(ref, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Shutdown() }()

	require.Eventually(t, func() bool { return ref.calls.Load() >= 3 }, 3*time.Second, 10*time.Millisecond)
}

func TestScheduler_Start_And_ContextCancel_ShutsDown(t *testing.T) {
	s := NewScheduler(new(stubRefresher), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	require.True(t, s.running())

	cancel()

	require.Eventually(t, func() bool { return !s.running() }, 2*time.Second, 10*time.Millisecond,
		"expected scheduler to be shutdown after ctx cancel")
}

func TestScheduler_Shutdown_AfterStart_Idempotent(t *testing.T) {
	s := NewScheduler(new(stubRefresher), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	require.True(t, s.running())

	require.NoError(t, s.Shutdown())
	require.False(t, s.running())

	require.NoError(t, s.Shutdown())
}

type slowRefresher struct {
	took time.Duration

	mu     sync.Mutex
	starts []time.Time
	ends   []time.Time
}

func (s *slowRefresher) Refresh(context.Context) (ReconcileResult, error) {
	s.mu.Lock()
	s.starts = append(s.starts, time.Now())
	s.mu.Unlock()

	time.Sleep(s.took)

	s.mu.Lock()
	s.ends = append(s.ends, time.Now())
	s.mu.Unlock()
	return ReconcileResult{}, nil
}

func (s *slowRefresher) cycles() ([]time.Time, []time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.starts...), append([]time.Time(nil), s.ends...)
}

func TestScheduler_WaitsFullIntervalAfterCycleCompletes(t *testing.T) {
	const interval = 300 * time.Millisecond
	ref := &slowRefresher{took: 200 * time.Millisecond}
	s := NewScheduler(ref, interval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Shutdown() }()

	require.Eventually(t, func() bool {
		starts, _ := ref.cycles()
		return len(starts) >= 3
	}, 5*time.Second, 10*time.Millisecond)

	starts, ends := ref.cycles()
	for i := 0; i+1 < len(starts) && i < len(ends); i++ {
		gap := starts[i+1].Sub(ends[i])
		// small tolerance for timer granularity
		require.GreaterOrEqual(t, gap, interval-20*time.Millisecond, "gap after cycle %d was %s", i, gap)
	}
}
