// Package score keeps one continuously edited scoreboard message in the
// points channel, fed from the "Current Score" sheet table. Update failures
// raise a single alert in the admin alert channel and stay quiet until the
// board recovers.
package score

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
	"github.com/abristow3/Hunt-Bot/internal/sheet"
)

const (
	tableName        = "Current Score"
	fieldTeamName    = "Team Name"
	fieldTotalPoints = "Total Points"
)

// Board posts and maintains the scoreboard message.
type Board struct {
	chat     domain.ChatService
	provider *sheet.Provider
	state    *hunt.State

	scoreChannelID int64
	alertChannelID int64

	mu        sync.Mutex
	messageID int64
	alertSent bool
	// alertLimiter caps alert volume across rapid recover/fail cycles.
	alertLimiter *rate.Limiter
}

// NewBoard reads the points and alert channels from the ingested config.
func NewBoard(chat domain.ChatService, provider *sheet.Provider, state *hunt.State) (*Board, error) {
	cfg := state.Config()

	scoreChannelID, err := cfg.ChannelID(hunt.KeyPointsChan)
	if err != nil {
		return nil, err
	}
	alertChannelID, err := cfg.ChannelID(hunt.KeyAlertChan)
	if err != nil {
		return nil, err
	}

	return &Board{
		chat:           chat,
		provider:       provider,
		state:          state,
		scoreChannelID: scoreChannelID,
		alertChannelID: alertChannelID,
		alertLimiter:   rate.NewLimiter(rate.Every(10*time.Minute), 1),
	}, nil
}

// Tick re-reads the score table and refreshes the scoreboard message,
// editing in place once one exists.
func (b *Board) Tick(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	content, err := b.render()
	if err != nil {
		b.alertLocked(ctx, err)
		return err
	}

	if b.messageID != 0 {
		if err := b.chat.EditMessage(ctx, b.scoreChannelID, b.messageID, content); err != nil {
			// The message may have been deleted out from under us;
			// fall through and post a fresh one.
			slog.Warn("Scoreboard edit failed, reposting", "message_id", b.messageID, "error", err)
			b.messageID = 0
		}
	}
	if b.messageID == 0 {
		sent, err := b.chat.SendMessage(ctx, b.scoreChannelID, content)
		if err != nil {
			b.alertLocked(ctx, err)
			return fmt.Errorf("posting scoreboard: %w", err)
		}
		b.messageID = sent.ID
	}

	b.alertSent = false
	return nil
}

// render builds the scoreboard text from the latest table pull.
func (b *Board) render() (string, error) {
	rs := b.provider.Table(tableName)
	if rs.Empty() {
		return "", domain.TableEmptyError(tableName)
	}

	points := map[string]string{}
	for _, rec := range rs.Records {
		points[rec.Value(fieldTeamName)] = rec.Value(fieldTotalPoints)
	}

	teamOne, teamTwo := b.state.TeamOneName(), b.state.TeamTwoName()
	return fmt.Sprintf(
		"The current score is\n%s: %s\n%s: %s",
		teamOne, valueOr(points[teamOne], "0"),
		teamTwo, valueOr(points[teamTwo], "0"),
	), nil
}

// alertLocked posts one failure alert, then stays silent until a tick
// succeeds again.
func (b *Board) alertLocked(ctx context.Context, cause error) {
	if b.alertSent || !b.alertLimiter.Allow() {
		return
	}

	msg := fmt.Sprintf(":warning: **Scoreboard update failed**\n```%v```", cause)
	if _, err := b.chat.SendMessage(ctx, b.alertChannelID, msg); err != nil {
		slog.Error("Failed to post scoreboard alert", "error", err)
		return
	}
	b.alertSent = true
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
