// Package memes keeps a reaction-ranked scoreboard of the meme channel.
// Any message posted during the event window with an image or video
// attachment counts as an entry; when the event closes the top five are
// reposted as a scoreboard, winner last so it lands newest.
package memes

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
)

const scoreboardEntry = "**Number %d with %d reactions - <@%d>:**\n\n%s\n---"

var mediaExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp",
	".mp4", ".mov", ".avi", ".webm", ".mkv",
}

// Board tracks reaction counts per eligible meme. Each tick rebuilds the
// tally from the channel so deletions and removed reactions need no
// bookkeeping of their own.
type Board struct {
	chat  domain.ChatService
	state *hunt.State

	memeChannelID int64

	mu        sync.Mutex
	reactions map[int64]int
}

// NewBoard resolves the meme channel from the event config.
func NewBoard(chat domain.ChatService, state *hunt.State) (*Board, error) {
	channelID, err := state.Config().ChannelID(hunt.KeyMemeChan)
	if err != nil {
		return nil, err
	}
	return &Board{
		chat:          chat,
		state:         state,
		memeChannelID: channelID,
		reactions:     make(map[int64]int),
	}, nil
}

// Tick rescans the meme channel and replaces the in-memory tally.
func (b *Board) Tick(ctx context.Context) error {
	msgs, err := b.chat.MessagesAfter(ctx, b.memeChannelID, 0)
	if err != nil {
		return fmt.Errorf("scanning meme channel: %w", err)
	}

	counts := make(map[int64]int)
	for i := range msgs {
		msg := &msgs[i]
		if !b.eligible(msg) {
			continue
		}
		total := 0
		for _, r := range msg.Reactions {
			total += r.Count
		}
		counts[msg.ID] = total
	}

	b.mu.Lock()
	b.reactions = counts
	b.mu.Unlock()
	return nil
}

// eligible keeps memes posted inside the event window that carry media.
func (b *Board) eligible(msg *domain.Message) bool {
	if msg.SentAt.Before(b.state.StartTime()) || msg.SentAt.After(b.state.EndTime()) {
		return false
	}
	return hasMedia(msg)
}

func hasMedia(msg *domain.Message) bool {
	for _, att := range msg.Attachments {
		if isMedia(att) {
			return true
		}
	}
	return false
}

func isMedia(att domain.Attachment) bool {
	if strings.HasPrefix(att.ContentType, "image/") || strings.HasPrefix(att.ContentType, "video/") {
		return true
	}
	name := strings.ToLower(att.Filename)
	for _, ext := range mediaExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// PostScoreboard reposts the five most-reacted memes into the meme channel,
// worst placement first so first place arrives newest. A meme deleted since
// the last scan is skipped with its placement kept.
func (b *Board) PostScoreboard(ctx context.Context) error {
	type entry struct {
		id    int64
		count int
	}

	b.mu.Lock()
	entries := make([]entry, 0, len(b.reactions))
	for id, count := range b.reactions {
		entries = append(entries, entry{id: id, count: count})
	}
	b.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].id < entries[j].id
	})
	if len(entries) > 5 {
		entries = entries[:5]
	}
	if len(entries) == 0 {
		slog.Info("No memes to rank")
		return nil
	}

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		msg, err := b.chat.FetchMessage(ctx, b.memeChannelID, e.id)
		if err != nil {
			slog.Warn("Meme vanished before the scoreboard", "message_id", e.id)
			continue
		}
		text := fmt.Sprintf(scoreboardEntry, i+1, e.count, msg.AuthorID, mediaURL(msg))
		if _, err := b.chat.SendMessage(ctx, b.memeChannelID, text); err != nil {
			return fmt.Errorf("posting meme scoreboard: %w", err)
		}
	}
	return nil
}

func mediaURL(msg *domain.Message) string {
	for _, att := range msg.Attachments {
		if isMedia(att) {
			return att.URL
		}
	}
	return "(No media found)"
}
