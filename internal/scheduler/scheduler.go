package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/angeloszaimis/lvs-monitor/internal/metrics"
	"github.com/angeloszaimis/lvs-monitor/internal/monitor"
	"github.com/angeloszaimis/lvs-monitor/internal/probe"
)

const (
	ModeConcurrent = "concurrent"
	ModeSequential = "sequential"
)

// Scheduler evaluates every backend once per interval until its context is
// cancelled. Cancellation is honored at cycle boundaries and during the
// end-of-cycle sleep, so an in-flight evaluation always completes.
type Scheduler struct {
	mode      string
	backends  []string
	prober    probe.Prober
	monitor   *monitor.Monitor
	collector *metrics.Collector
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler with the given driving mode.
func New(
	mode string,
	backends []string,
	prober probe.Prober,
	mon *monitor.Monitor,
	collector *metrics.Collector,
	interval time.Duration,
	logger *slog.Logger,
) (*Scheduler, error) {
	switch mode {
	case ModeConcurrent, ModeSequential:
	default:
		return nil, fmt.Errorf("unknown scheduler mode %q", mode)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no backends to schedule")
	}

	return &Scheduler{
		mode:      mode,
		backends:  backends,
		prober:    prober,
		monitor:   mon,
		collector: collector,
		interval:  interval,
		logger:    logger,
	}, nil
}

// Mode returns the active driving mode.
func (s *Scheduler) Mode() string {
	return s.mode
}

// Run blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started",
		slog.String("mode", s.mode),
		slog.Int("backends", len(s.backends)),
		slog.Duration("interval", s.interval))

	if s.mode == ModeConcurrent {
		s.runConcurrent(ctx)
	} else {
		s.runSequential(ctx)
	}

	s.logger.Info("scheduler stopped")
}

// runConcurrent starts one worker per backend. Each worker owns its own
// ticker, so probe latency on one backend never delays the others.
func (s *Scheduler) runConcurrent(ctx context.Context) {
	var wg sync.WaitGroup

	for _, backend := range s.backends {
		wg.Add(1)
		go func(backend string) {
			defer wg.Done()

			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()

			for {
				s.evaluate(ctx, backend)

				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}(backend)
	}

	wg.Wait()
}

// runSequential sweeps all backends once per cycle and sleeps only the
// remainder of the interval, clamped at zero, to compensate for the time
// the sweep itself took.
func (s *Scheduler) runSequential(ctx context.Context) {
	for {
		start := time.Now()

		for _, backend := range s.backends {
			if ctx.Err() != nil {
				return
			}
			s.evaluate(ctx, backend)
		}

		sleep := s.interval - time.Since(start)
		if sleep < 0 {
			sleep = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

// evaluate runs one probe-evaluate-act round for a backend. The probe is
// the only blocking call and runs outside the monitor's lock.
func (s *Scheduler) evaluate(ctx context.Context, backend string) {
	loss := s.prober.Probe(ctx, backend)

	state, average, changed := s.monitor.Observe(ctx, backend, loss)

	s.logger.Debug("probe evaluated",
		slog.String("backend", backend),
		slog.Int("loss", loss),
		slog.Int("average", average),
		slog.String("state", state.String()))

	s.collector.Emit(metrics.Event{
		Type:      metrics.EventProbeCompleted,
		Timestamp: time.Now(),
		Backend:   backend,
		Loss:      loss,
		Average:   average,
	})

	if changed {
		s.collector.Emit(metrics.Event{
			Type:      metrics.EventStateChanged,
			Timestamp: time.Now(),
			Backend:   backend,
			State:     state.String(),
		})
	}
}
