// Package chatlog is an in-memory ChatService used when no platform client
// is wired in: every operation is applied to an in-process channel log and
// reported through slog. It keeps the full engine runnable in dry-run mode
// and doubles as the local development backend.
package chatlog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/abristow3/Hunt-Bot/internal/domain"
)

type Service struct {
	clock clockwork.Clock

	mu       sync.Mutex
	nextID   int64
	channels map[int64][]domain.Message
}

func New(clock clockwork.Clock) *Service {
	return &Service{
		clock:    clock,
		channels: map[int64][]domain.Message{},
	}
}

func (s *Service) SendMessage(_ context.Context, channelID int64, content string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg := domain.Message{
		ID:        s.nextID,
		ChannelID: channelID,
		Content:   content,
		SentAt:    s.clock.Now(),
	}
	s.channels[channelID] = append(s.channels[channelID], msg)

	slog.Info("chat: send", "channel_id", channelID, "message_id", msg.ID, "content", content)
	return &msg, nil
}

func (s *Service) EditMessage(_ context.Context, channelID, messageID int64, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findLocked(channelID, messageID)
	if msg == nil {
		return notFound(messageID)
	}
	msg.Content = content
	slog.Info("chat: edit", "channel_id", channelID, "message_id", messageID)
	return nil
}

func (s *Service) DeleteMessage(_ context.Context, channelID, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.channels[channelID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			s.channels[channelID] = append(msgs[:i], msgs[i+1:]...)
			slog.Info("chat: delete", "channel_id", channelID, "message_id", messageID)
			return nil
		}
	}
	return notFound(messageID)
}

func (s *Service) PinMessage(_ context.Context, channelID, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findLocked(channelID, messageID)
	if msg == nil {
		return notFound(messageID)
	}
	msg.Pinned = true
	slog.Info("chat: pin", "channel_id", channelID, "message_id", messageID)
	return nil
}

func (s *Service) UnpinMessage(_ context.Context, channelID, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findLocked(channelID, messageID)
	if msg == nil {
		return notFound(messageID)
	}
	msg.Pinned = false
	slog.Info("chat: unpin", "channel_id", channelID, "message_id", messageID)
	return nil
}

func (s *Service) FetchMessage(_ context.Context, channelID, messageID int64) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findLocked(channelID, messageID)
	if msg == nil {
		return nil, notFound(messageID)
	}
	copied := *msg
	return &copied, nil
}

func (s *Service) MessagesAfter(_ context.Context, channelID, afterID int64) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Message
	for _, msg := range s.channels[channelID] {
		if msg.ID > afterID {
			out = append(out, msg)
		}
	}
	return out, nil
}

// MemberRoles reports no roles; a dry run has no member directory.
func (s *Service) MemberRoles(_ context.Context, _ int64) ([]string, error) {
	return nil, nil
}

func (s *Service) findLocked(channelID, messageID int64) *domain.Message {
	msgs := s.channels[channelID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			return &msgs[i]
		}
	}
	return nil
}

func notFound(messageID int64) error {
	return &domain.Error{
		Kind:    domain.KindNotFound,
		Message: "message not found",
		Context: map[string]any{"message_id": messageID},
	}
}
