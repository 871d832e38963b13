// Package starboard mirrors messages from the team drop channels into a
// shared starboard channel while they carry a star or thinking reaction.
package starboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
)

// Reactions that earn a message a spot on the starboard.
const (
	MarkerStar     = "⭐"
	MarkerThinking = "🤔"
)

// Starboard scans both drop channels each tick. A message is mirrored once
// while a marker reaction is present and the mirror is removed when every
// marker reaction is gone.
type Starboard struct {
	chat domain.ChatService

	starboardChannelID int64
	dropChannelIDs     []int64

	mu sync.Mutex
	// mirrored maps source message id to its starboard copy.
	mirrored map[int64]int64
}

// NewStarboard reads the starboard and drop channels from the ingested
// config.
func NewStarboard(chat domain.ChatService, state *hunt.State) (*Starboard, error) {
	cfg := state.Config()

	starboardChannelID, err := cfg.ChannelID(hunt.KeyStarboardChan)
	if err != nil {
		return nil, err
	}
	teamOneDrop, err := cfg.ChannelID(hunt.KeyTeamOneDropChan)
	if err != nil {
		return nil, err
	}
	teamTwoDrop, err := cfg.ChannelID(hunt.KeyTeamTwoDropChan)
	if err != nil {
		return nil, err
	}

	return &Starboard{
		chat:               chat,
		starboardChannelID: starboardChannelID,
		dropChannelIDs:     []int64{teamOneDrop, teamTwoDrop},
		mirrored:           map[int64]int64{},
	}, nil
}

// Tick rescans both drop channels. Per-channel failures are logged and the
// remaining channel is still scanned.
func (s *Starboard) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, channelID := range s.dropChannelIDs {
		messages, err := s.chat.MessagesAfter(ctx, channelID, 0)
		if err != nil {
			slog.Warn("Failed to scan drop channel", "channel_id", channelID, "error", err)
			continue
		}
		for i := range messages {
			s.reconcileLocked(ctx, channelID, &messages[i])
		}
	}
	return nil
}

// reconcileLocked brings one message's starboard presence in line with its
// current reactions.
func (s *Starboard) reconcileLocked(ctx context.Context, channelID int64, msg *domain.Message) {
	marker := ""
	switch {
	case msg.HasReaction(MarkerStar):
		marker = MarkerStar
	case msg.HasReaction(MarkerThinking):
		marker = MarkerThinking
	}

	mirrorID, alreadyMirrored := s.mirrored[msg.ID]

	switch {
	case marker != "" && !alreadyMirrored:
		content := fmt.Sprintf(
			"%s Starred message from channel %d:\n%s\nOriginal message: %d",
			marker, channelID, msg.Content, msg.ID,
		)
		sent, err := s.chat.SendMessage(ctx, s.starboardChannelID, content)
		if err != nil {
			slog.Warn("Failed to mirror message to starboard", "message_id", msg.ID, "error", err)
			return
		}
		s.mirrored[msg.ID] = sent.ID
		slog.Info("Message mirrored to starboard", "message_id", msg.ID, "mirror_id", sent.ID)

	case marker == "" && alreadyMirrored:
		if err := s.chat.DeleteMessage(ctx, s.starboardChannelID, mirrorID); err != nil {
			slog.Warn("Failed to remove starboard mirror", "mirror_id", mirrorID, "error", err)
			return
		}
		delete(s.mirrored, msg.ID)
		slog.Info("Starboard mirror removed", "message_id", msg.ID, "mirror_id", mirrorID)
	}
}
