package rotation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/scheduler"
	"github.com/abristow3/Hunt-Bot/internal/sheet"
)

// Rotator posts the next content item on each tick: unpin the previous
// message, post the new one, pin it. Exhaustion of the single-item queue
// ends the schedule.
type Rotator struct {
	chat      domain.ChatService
	channelID int64
	// banner separates the two halves of a composite post, e.g.
	// "@@@ DOUBLE DAILY @@@".
	banner string

	single *Queue
	double *Queue

	lastMessageID int64
}

// NewRotator builds a rotator from the two related tables. Both tables must
// have records; an empty one aborts initialization with a tagged error so
// the behavior starts unconfigured.
func NewRotator(chat domain.ChatService, channelID int64, banner string, single, double sheet.RecordSet, singleTable, doubleTable string) (*Rotator, error) {
	if single.Empty() {
		return nil, domain.TableEmptyError(singleTable)
	}
	if double.Empty() {
		return nil, domain.TableEmptyError(doubleTable)
	}

	return &Rotator{
		chat:      chat,
		channelID: channelID,
		banner:    banner,
		single:    NewQueue(single),
		double:    NewQueue(double),
	}, nil
}

// Next pulls the next item. A row with a present "Double" cell also drains
// one row of the double queue into a composite item. ok=false is terminal.
func (r *Rotator) Next() (Item, bool) {
	rec, ok := r.single.Next()
	if !ok {
		return Item{}, false
	}

	item := Item{
		Task:     rec.Value(fieldTask),
		Password: rec.Value(fieldPassword),
	}

	if _, isDouble := rec.Get(fieldDouble); isDouble {
		if pair, ok := r.double.Next(); ok {
			item.Double = true
			item.DoubleTask = pair.Value(fieldTask)
			item.DoublePassword = pair.Value(fieldPassword)
		}
	}

	return item, true
}

// Tick serves one item into the channel. Returns scheduler.ErrStop once the
// rotation is exhausted so the runner stops instead of retrying.
func (r *Rotator) Tick(ctx context.Context) error {
	item, ok := r.Next()
	if !ok {
		slog.Info("Rotation exhausted, stopping schedule", "channel", r.channelID)
		return scheduler.ErrStop
	}

	if r.lastMessageID != 0 {
		if err := r.chat.UnpinMessage(ctx, r.channelID, r.lastMessageID); err != nil {
			slog.Warn("Failed to unpin previous rotation message", "channel", r.channelID, "message", r.lastMessageID, "error", err)
		}
	}

	msg, err := r.chat.SendMessage(ctx, r.channelID, r.render(item))
	if err != nil {
		return fmt.Errorf("posting rotation content: %w", err)
	}
	r.lastMessageID = msg.ID

	if err := r.chat.PinMessage(ctx, r.channelID, msg.ID); err != nil {
		slog.Warn("Failed to pin rotation message", "channel", r.channelID, "message", msg.ID, "error", err)
	}

	return nil
}

func (r *Rotator) render(item Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@everyone %s\n\nPassword: %s\n", item.Task, item.Password)
	if item.Double {
		fmt.Fprintf(&b, "\n%s\n\n%s\n\nPassword: %s\n", r.banner, item.DoubleTask, item.DoublePassword)
	}
	return b.String()
}
