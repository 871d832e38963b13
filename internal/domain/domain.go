package domain

import (
	"context"
	"time"
)

// --- Model types ---

// Message is the platform-independent view of a chat message. Only the
// fields the hunt engines inspect are carried.
type Message struct {
	ID          int64
	ChannelID   int64
	AuthorID    int64
	Content     string
	Pinned      bool
	Reactions   []Reaction
	Attachments []Attachment
	SentAt      time.Time
}

// Attachment is an uploaded file carried by a message.
type Attachment struct {
	URL         string
	ContentType string
	Filename    string
}

// Reaction is an emoji marker attached to a message.
type Reaction struct {
	Emoji string
	Count int
}

// HasReaction reports whether the message carries at least one reaction
// with the given emoji.
func (m *Message) HasReaction(emoji string) bool {
	for _, r := range m.Reactions {
		if r.Emoji == emoji && r.Count > 0 {
			return true
		}
	}
	return false
}

// --- Interfaces ---

// ChatService is the surface of the chat platform consumed by the hunt
// engines. Implementations wrap the real platform client; every call is
// individually fallible and callers log rather than propagate failures out
// of a scheduler tick.
type ChatService interface {
	SendMessage(ctx context.Context, channelID int64, content string) (*Message, error)
	EditMessage(ctx context.Context, channelID, messageID int64, content string) error
	DeleteMessage(ctx context.Context, channelID, messageID int64) error
	PinMessage(ctx context.Context, channelID, messageID int64) error
	UnpinMessage(ctx context.Context, channelID, messageID int64) error
	FetchMessage(ctx context.Context, channelID, messageID int64) (*Message, error)
	// MessagesAfter returns all channel messages posted after the given
	// message ID, ordered oldest first.
	MessagesAfter(ctx context.Context, channelID, afterID int64) ([]Message, error)
	// MemberRoles resolves the role names of a guild member.
	MemberRoles(ctx context.Context, userID int64) ([]string, error)
}

// SheetSource provides raw row/column grids from the shared spreadsheet.
// Implementations must return an empty grid on any failure rather than an
// error; the extraction layer treats empty as "not found".
type SheetSource interface {
	Rows(ctx context.Context, sheetName string) [][]string
	RangeRows(ctx context.Context, sheetName, cellRange string) [][]string
}
