package tally

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
)

// Reaction markers the scan recognises.
const (
	MarkerValid     = "✅"
	MarkerInvalid   = "❌"
	MarkerTotalDrop = "📦"
)

// Engine tallies qualifying drop submissions posted after a starting
// message. It is idle until Start and returns to idle on Stop, so one
// engine serves any number of consecutive challenges.
type Engine struct {
	chat  domain.ChatService
	state *hunt.State

	mu                   sync.Mutex
	active               bool
	channelID            int64
	startMessageID       int64
	stickyMessageID      int64
	lastCountedMessageID int64
	totals               map[string]int
	leader               string
}

func NewEngine(chat domain.ChatService, state *hunt.State) *Engine {
	return &Engine{
		chat:   chat,
		state:  state,
		totals: map[string]int{},
	}
}

// Start activates the tally for messages posted after startMessageID in the
// given channel. Starting over a running tally resets it.
func (e *Engine) Start(startMessageID, channelID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()
	e.active = true
	e.channelID = channelID
	e.startMessageID = startMessageID

	slog.Info("Drop tally started", "channel_id", channelID, "start_message_id", startMessageID)
}

// Active reports whether a challenge is currently being tallied.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Tick rescans the channel since the start message, recomputes both totals
// and the leader, and refreshes the sticky summary. Idle when no challenge
// is running.
func (e *Engine) Tick(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return nil
	}

	messages, err := e.chat.MessagesAfter(ctx, e.channelID, e.startMessageID)
	if err != nil {
		return fmt.Errorf("fetching tally messages: %w", err)
	}

	e.rescanLocked(ctx, messages)
	return e.refreshStickyLocked(ctx, messages)
}

// Stop posts the closing summary and resets the tally for the next
// challenge. A stop with no tally running is a no-op.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return nil
	}

	teamOne, teamTwo := e.state.TeamOneName(), e.state.TeamTwoName()
	combined := e.totals[teamOne] + e.totals[teamTwo]

	var closing string
	if e.totals[teamOne] == e.totals[teamTwo] {
		closing = fmt.Sprintf(
			"The total drop challenge is over! %s and %s finish dead even with a combined total of %d drops. Well done everyone!",
			teamOne, teamTwo, combined,
		)
	} else {
		winner, loser := teamOne, teamTwo
		if e.totals[teamTwo] > e.totals[teamOne] {
			winner, loser = teamTwo, teamOne
		}
		closing = fmt.Sprintf(
			"The total drop challenge is over! %s takes it over %s with a combined total of %d drops. Well done everyone!",
			winner, loser, combined,
		)
	}
	if _, err := e.chat.SendMessage(ctx, e.channelID, closing); err != nil {
		slog.Error("Failed to post tally closing summary", "error", err)
	}

	slog.Info("Drop tally stopped", "combined_total", combined)
	e.resetLocked()
	return nil
}

// rescanLocked recounts from scratch. Totals are rebuilt every tick so a
// late reaction change is picked up; only the leader carries over, and a
// tie leaves it unchanged.
func (e *Engine) rescanLocked(ctx context.Context, messages []domain.Message) {
	teamOne, teamTwo := e.state.TeamOneName(), e.state.TeamTwoName()
	totals := map[string]int{teamOne: 0, teamTwo: 0}

	for i := range messages {
		msg := &messages[i]
		if msg.ID == e.stickyMessageID {
			continue
		}
		if msg.HasReaction(MarkerInvalid) {
			continue
		}
		if !msg.HasReaction(MarkerValid) || !msg.HasReaction(MarkerTotalDrop) {
			continue
		}

		team := e.teamOf(ctx, msg.AuthorID)
		if team == "" {
			slog.Warn("Qualifying drop from member on neither team", "message_id", msg.ID, "author_id", msg.AuthorID)
			continue
		}

		totals[team]++
		e.lastCountedMessageID = msg.ID
	}

	e.totals = totals
	if totals[teamOne] > totals[teamTwo] {
		e.leader = teamOne
	} else if totals[teamTwo] > totals[teamOne] {
		e.leader = teamTwo
	}
}

// teamOf resolves the author's team from their role names.
func (e *Engine) teamOf(ctx context.Context, authorID int64) string {
	roles, err := e.chat.MemberRoles(ctx, authorID)
	if err != nil {
		slog.Warn("Failed to resolve member roles", "author_id", authorID, "error", err)
		return ""
	}
	for _, role := range roles {
		if strings.EqualFold(role, e.state.TeamOneName()) {
			return e.state.TeamOneName()
		}
		if strings.EqualFold(role, e.state.TeamTwoName()) {
			return e.state.TeamTwoName()
		}
	}
	return ""
}

// refreshStickyLocked keeps the summary as the channel's newest message:
// edit in place while it is still last, otherwise delete and repost.
func (e *Engine) refreshStickyLocked(ctx context.Context, messages []domain.Message) error {
	summary := e.summaryLocked()

	lastSeenID := e.stickyMessageID
	if len(messages) > 0 {
		lastSeenID = messages[len(messages)-1].ID
	}

	if e.stickyMessageID != 0 && lastSeenID == e.stickyMessageID {
		if err := e.chat.EditMessage(ctx, e.channelID, e.stickyMessageID, summary); err != nil {
			return fmt.Errorf("editing tally sticky: %w", err)
		}
		return nil
	}

	if e.stickyMessageID != 0 {
		if err := e.chat.DeleteMessage(ctx, e.channelID, e.stickyMessageID); err != nil {
			slog.Warn("Failed to delete stale tally sticky", "message_id", e.stickyMessageID, "error", err)
		}
		e.stickyMessageID = 0
	}

	sent, err := e.chat.SendMessage(ctx, e.channelID, summary)
	if err != nil {
		return fmt.Errorf("posting tally sticky: %w", err)
	}
	e.stickyMessageID = sent.ID
	return nil
}

func (e *Engine) summaryLocked() string {
	teamOne, teamTwo := e.state.TeamOneName(), e.state.TeamTwoName()

	leader := e.leader
	if leader == "" {
		leader = "No one yet"
	}
	lastCounted := "none yet"
	if e.lastCountedMessageID != 0 {
		lastCounted = fmt.Sprintf("%d", e.lastCountedMessageID)
	}

	return fmt.Sprintf(
		"📦 **Total Drop Challenge**\n%s: %d\n%s: %d\nCurrent leader: %s\nLast counted drop: %s",
		teamOne, e.totals[teamOne],
		teamTwo, e.totals[teamTwo],
		leader, lastCounted,
	)
}

func (e *Engine) resetLocked() {
	e.active = false
	e.channelID = 0
	e.startMessageID = 0
	e.stickyMessageID = 0
	e.lastCountedMessageID = 0
	e.totals = map[string]int{}
	e.leader = ""
}
