// Package scheduler hosts the background sweep that closes orders whose
// receipt window has elapsed.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OrderCloser is the slice of the order service the scheduler needs.
type OrderCloser interface {
	AutoCloseDue(ctx context.Context) (int, error)
}

// AutoCloseScheduler runs the sweep on a fixed interval. Start and Stop
// are idempotent; Stop blocks until the running sweep finishes.
type AutoCloseScheduler struct {
	orders   OrderCloser
	interval time.Duration
	logger   *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func NewAutoCloseScheduler(orders OrderCloser, interval time.Duration, logger *zap.Logger) *AutoCloseScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &AutoCloseScheduler{
		orders:   orders,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *AutoCloseScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.run()
	}()

	s.logger.Info("auto-close scheduler started", zap.Duration("interval", s.interval))
}

func (s *AutoCloseScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.running = false

	s.logger.Info("auto-close scheduler stopped")
}

func (s *AutoCloseScheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *AutoCloseScheduler) sweep() {
	ctx, cancel := context.WithTimeout(s.ctx, s.interval)
	defer cancel()

	closed, err := s.orders.AutoCloseDue(ctx)
	if err != nil {
		s.logger.Error("auto-close sweep failed", zap.Error(err))
		return
	}
	if closed > 0 {
		s.logger.Info("auto-close sweep finished", zap.Int("closed", closed))
	}
}
