package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCloser struct {
	mu    sync.Mutex
	calls int
}

func (s *stubCloser) AutoCloseDue(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return 1, nil
}

func (s *stubCloser) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestSchedulerSweepsOnInterval(t *testing.T) {
	closer := &stubCloser{}
	s := NewAutoCloseScheduler(closer, 10*time.Millisecond, zap.NewNop())

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return closer.count() >= 2 },
		time.Second, 5*time.Millisecond)
}

func TestSchedulerStartAndStopAreIdempotent(t *testing.T) {
	closer := &stubCloser{}
	s := NewAutoCloseScheduler(closer, time.Hour, zap.NewNop())

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSchedulerStopWaitsForRunningSweep(t *testing.T) {
	closer := &stubCloser{}
	s := NewAutoCloseScheduler(closer, 5*time.Millisecond, zap.NewNop())

	s.Start()
	require.Eventually(t, func() bool { return closer.count() >= 1 },
		time.Second, time.Millisecond)
	s.Stop()

	// No sweeps once Stop returned.
	settled := closer.count()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, settled, closer.count())
}
