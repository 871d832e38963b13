// Package countdown posts "the hunt begins/ends in N hours" notices into
// the announcements channel as a pure interval-decay state machine.
package countdown

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
	"github.com/abristow3/Hunt-Bot/internal/scheduler"
)

// DefaultIntervals are the hours-before thresholds gating one notification
// each, consumed head first.
var DefaultIntervals = []int{24, 12, 6, 2, 1}

// Engine walks two independent interval lists against the hunt start and
// end times. At most one notification is emitted per tick even when a tick
// crosses several thresholds at once; that rate limit is deliberate.
type Engine struct {
	chat  domain.ChatService
	state *hunt.State

	announcementsChannelID int64

	startIntervals []int
	endIntervals   []int
	startCompleted bool
	endCompleted   bool
}

// NewEngine builds the engine and runs the startup check, discarding any
// thresholds whose trigger time has already elapsed so a mid-event restart
// never floods the channel with missed notifications.
func NewEngine(chat domain.ChatService, state *hunt.State) (*Engine, error) {
	channelID, err := state.Config().ChannelID(hunt.KeyAnnouncementsChan)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		chat:                   chat,
		state:                  state,
		announcementsChannelID: channelID,
		startIntervals:         append([]int(nil), DefaultIntervals...),
		endIntervals:           append([]int(nil), DefaultIntervals...),
	}
	e.startupCheck()
	return e, nil
}

// startupCheck pre-filters both interval lists against the current time. If
// the hunt has already started, the start phase completes immediately.
func (e *Engine) startupCheck() {
	now := e.state.Now()

	if !e.state.Started() {
		hoursUntilStart := e.state.StartTime().Sub(now).Hours()
		e.startIntervals = keepPending(e.startIntervals, hoursUntilStart)
		slog.Info("Filtered start intervals", "intervals", e.startIntervals)
		return
	}

	e.startCompleted = true

	hoursUntilEnd := e.state.EndTime().Sub(now).Hours()
	e.endIntervals = keepPending(e.endIntervals, hoursUntilEnd)
	slog.Info("Filtered end intervals", "intervals", e.endIntervals)
}

// keepPending keeps thresholds that have not elapsed yet: an interval of N
// hours is pending while more than N hours remain.
func keepPending(intervals []int, hoursRemaining float64) []int {
	kept := intervals[:0]
	for _, interval := range intervals {
		if float64(interval) <= hoursRemaining {
			kept = append(kept, interval)
		}
	}
	return kept
}

// Tick advances the machine by at most one notification. Once both interval
// lists are drained the engine ends its own schedule.
func (e *Engine) Tick(ctx context.Context) error {
	now := e.state.Now()

	if !e.startCompleted {
		if len(e.startIntervals) > 0 {
			head := e.startIntervals[0]
			target := e.state.StartTime().Add(-time.Duration(head) * time.Hour)
			if !now.Before(target) {
				if err := e.announce(ctx, fmt.Sprintf("The Hunt begins in %d hours!", head)); err != nil {
					return err
				}
				e.startIntervals = e.startIntervals[1:]
			}
		}
		if len(e.startIntervals) == 0 {
			slog.Info("Start countdown completed")
			e.startCompleted = true
		}
		return nil
	}

	if !e.endCompleted {
		if len(e.endIntervals) > 0 {
			head := e.endIntervals[0]
			target := e.state.EndTime().Add(-time.Duration(head) * time.Hour)
			if !now.Before(target) {
				if err := e.announce(ctx, fmt.Sprintf("The Hunt ends in %d hours!", head)); err != nil {
					return err
				}
				e.endIntervals = e.endIntervals[1:]
			}
		}
		if len(e.endIntervals) == 0 {
			slog.Info("End countdown completed")
			e.endCompleted = true
		}
	}

	if e.startCompleted && e.endCompleted {
		return scheduler.ErrStop
	}
	return nil
}

func (e *Engine) announce(ctx context.Context, text string) error {
	if _, err := e.chat.SendMessage(ctx, e.announcementsChannelID, text); err != nil {
		return fmt.Errorf("posting countdown notice: %w", err)
	}
	return nil
}

// StatusMessage renders the time remaining until the hunt begins or ends,
// for the user-facing countdown command. Past the end it reports zero
// rather than a negative duration.
func (e *Engine) StatusMessage() string {
	now := e.state.Now()

	action := "begins"
	var delta time.Duration
	if !e.state.Started() {
		delta = e.state.StartTime().Sub(now)
	} else {
		action = "ends"
		delta = e.state.EndTime().Sub(now)
	}

	if delta < 0 {
		delta = 0
	}
	totalMinutes := int(delta.Minutes())
	hours, minutes := totalMinutes/60, totalMinutes%60

	return fmt.Sprintf("The Hunt %s in: %d Hours and %d Minutes", action, hours, minutes)
}
