package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Runner executes one pipeline run to completion.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler drives the pipeline: one run at startup, then one per
// interval, plus on-demand runs via Trigger. A single goroutine
// executes runs, so they never overlap.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	trigger  chan struct{}
}

func New(runner Runner, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:   runner,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		trigger:  make(chan struct{}, 1),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.execute()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.execute()
			case <-s.trigger:
				s.execute()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Trigger requests an immediate run. A request is rejected while
// another on-demand run is still pending.
func (s *Scheduler) Trigger() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.trigger <- struct{}{}:
		return nil
	default:
		return fmt.Errorf("a run is already pending")
	}
}

func (s *Scheduler) execute() {
	if err := s.runner.Run(s.ctx); err != nil {
		slog.Error("Pipeline run failed", "error", err)
	}
}
