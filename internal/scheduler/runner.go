package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abristow3/Hunt-Bot/internal/metrics"
	"github.com/abristow3/Hunt-Bot/internal/platform/correlation"
)

// ErrStop ends a runner's schedule from inside a tick. Used by terminal
// components (rotation exhaustion, countdown completion).
var ErrStop = errors.New("scheduler: stop requested by tick")

// RunState is the lifecycle state of one periodic runner.
type RunState int

const (
	StateStopped RunState = iota
	StateRunning
	StateCrashed
)

func (s RunState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}

// TickFunc is one unit of periodic work.
type TickFunc func(ctx context.Context) error

// Runner drives a single component on a fixed cadence.
type Runner struct {
	name     string
	interval time.Duration
	clock    clockwork.Clock
	tick     TickFunc

	mu     sync.Mutex
	state  RunState
	stopCh chan struct{}
}

// NewRunner creates a stopped runner.
func NewRunner(name string, interval time.Duration, clock clockwork.Clock, tick TickFunc) *Runner {
	return &Runner{
		name:     name,
		interval: interval,
		clock:    clock,
		tick:     tick,
	}
}

// Name identifies the runner in logs and metrics.
func (r *Runner) Name() string { return r.name }

// State returns the current lifecycle state.
func (r *Runner) State() RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start launches the tick loop. Starting an already-running runner is a
// non-fatal no-op so the watchdog can call it blindly.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.state == StateRunning {
		r.mu.Unlock()
		slog.Debug("Runner already running", "component", r.name)
		return
	}
	r.state = StateRunning
	r.stopCh = make(chan struct{})
	stopCh := r.stopCh
	r.mu.Unlock()

	go r.loop(ctx, stopCh)
}

// Stop ends the schedule. Safe to call on a stopped runner.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning {
		return
	}
	r.state = StateStopped
	close(r.stopCh)
}

func (r *Runner) loop(ctx context.Context, stopCh chan struct{}) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			if !r.runTick(ctx) {
				return
			}
		case <-stopCh:
			return
		case <-ctx.Done():
			r.Stop()
			return
		}
	}
}

// runTick executes one tick under a fresh correlation ID, converting panics
// into the crashed state. Returns false when the loop must exit.
func (r *Runner) runTick(ctx context.Context) (keepRunning bool) {
	tickCtx := correlation.WithID(ctx, correlation.NewID())
	start := r.clock.Now()

	defer func() {
		metrics.TickDuration.WithLabelValues(r.name).Observe(r.clock.Since(start).Seconds())
		if rec := recover(); rec != nil {
			slog.Error("Tick panicked", "component", r.name, "panic", rec)
			metrics.TicksTotal.WithLabelValues(r.name, "panic").Inc()
			r.mu.Lock()
			r.state = StateCrashed
			r.mu.Unlock()
			keepRunning = false
		}
	}()

	err := r.tick(tickCtx)
	switch {
	case err == nil:
		metrics.TicksTotal.WithLabelValues(r.name, "ok").Inc()
		return true
	case errors.Is(err, ErrStop):
		slog.Info("Runner finished its schedule", "component", r.name)
		metrics.TicksTotal.WithLabelValues(r.name, "done").Inc()
		r.Stop()
		return false
	default:
		// Per-tick failures never kill the schedule.
		slog.ErrorContext(tickCtx, "Tick failed", "component", r.name, "error", err)
		metrics.TicksTotal.WithLabelValues(r.name, "error").Inc()
		return true
	}
}
