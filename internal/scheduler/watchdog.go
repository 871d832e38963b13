package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abristow3/Hunt-Bot/internal/metrics"
)

// Watchdog periodically restarts crashed runners. Restarting a runner that
// is already running is tolerated as a no-op, so a race between a crash
// recovery and a normal start never hurts.
type Watchdog struct {
	interval time.Duration
	clock    clockwork.Clock
	stopCh   chan struct{}

	// mu guards runners: Watch is called from component startup paths
	// while Run sweeps from its own goroutine.
	mu      sync.Mutex
	runners []*Runner
}

func NewWatchdog(interval time.Duration, clock clockwork.Clock, runners ...*Runner) *Watchdog {
	return &Watchdog{
		runners:  runners,
		interval: interval,
		clock:    clock,
		stopCh:   make(chan struct{}),
	}
}

// Watch adds another runner under supervision.
func (w *Watchdog) Watch(r *Runner) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.runners = append(w.runners, r)
}

// Run blocks until Stop or context cancellation.
func (w *Watchdog) Run(ctx context.Context) {
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			w.sweep(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the watchdog loop.
func (w *Watchdog) Stop() {
	close(w.stopCh)
}

func (w *Watchdog) sweep(ctx context.Context) {
	w.mu.Lock()
	runners := append([]*Runner(nil), w.runners...)
	w.mu.Unlock()

	for _, r := range runners {
		if r.State() != StateCrashed {
			continue
		}
		slog.Warn("Restarting crashed runner", "component", r.Name())
		metrics.RunnerRestarts.WithLabelValues(r.Name()).Inc()
		r.Start(ctx)
	}
}
