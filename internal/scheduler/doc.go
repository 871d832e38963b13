// Package scheduler drives the hunt components.
//
// Each periodic behavior is a Runner: an explicit state machine with states
// stopped, running, and crashed. The runner owns the timing; components only
// expose Tick. Per-tick errors are logged and counted, never propagated - a
// tick can end its own schedule by returning ErrStop, and a panic moves the
// runner to crashed where the Watchdog picks it up.
package scheduler
