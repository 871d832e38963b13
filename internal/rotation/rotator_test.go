package rotation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/scheduler"
	"github.com/abristow3/Hunt-Bot/internal/sheet"
)

// --- Mocks ---

type chatCall struct {
	op        string
	channelID int64
	messageID int64
	content   string
}

type mockChat struct {
	calls   []chatCall
	nextID  int64
	sendErr error
}

func (m *mockChat) SendMessage(_ context.Context, channelID int64, content string) (*domain.Message, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.nextID++
	m.calls = append(m.calls, chatCall{op: "send", channelID: channelID, messageID: m.nextID, content: content})
	return &domain.Message{ID: m.nextID, ChannelID: channelID, Content: content}, nil
}

func (m *mockChat) EditMessage(_ context.Context, channelID, messageID int64, content string) error {
	m.calls = append(m.calls, chatCall{op: "edit", channelID: channelID, messageID: messageID, content: content})
	return nil
}

func (m *mockChat) DeleteMessage(_ context.Context, channelID, messageID int64) error {
	m.calls = append(m.calls, chatCall{op: "delete", channelID: channelID, messageID: messageID})
	return nil
}

func (m *mockChat) PinMessage(_ context.Context, channelID, messageID int64) error {
	m.calls = append(m.calls, chatCall{op: "pin", channelID: channelID, messageID: messageID})
	return nil
}

func (m *mockChat) UnpinMessage(_ context.Context, channelID, messageID int64) error {
	m.calls = append(m.calls, chatCall{op: "unpin", channelID: channelID, messageID: messageID})
	return nil
}

func (m *mockChat) FetchMessage(_ context.Context, channelID, messageID int64) (*domain.Message, error) {
	return &domain.Message{ID: messageID, ChannelID: channelID}, nil
}

func (m *mockChat) MessagesAfter(_ context.Context, _, _ int64) ([]domain.Message, error) {
	return nil, nil
}

func (m *mockChat) MemberRoles(_ context.Context, _ int64) ([]string, error) {
	return nil, nil
}

func (m *mockChat) ops() []string {
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.op
	}
	return out
}

// --- Helpers ---

func taskRecords(tasks ...string) sheet.RecordSet {
	rs := sheet.RecordSet{Fields: []string{"Task", "Password", "Double"}}
	for _, task := range tasks {
		rec := sheet.Record{"Task": task, "Password": "pw-" + task}
		rs.Records = append(rs.Records, rec)
	}
	return rs
}

func flagDouble(rs sheet.RecordSet, indexes ...int) sheet.RecordSet {
	for _, i := range indexes {
		rs.Records[i]["Double"] = "x"
	}
	return rs
}

func newTestRotator(t *testing.T, chat *mockChat, single, double sheet.RecordSet) *Rotator {
	t.Helper()
	r, err := NewRotator(chat, 42, "@@@ DOUBLE DAILY @@@", single, double, "Single Dailies", "Double Dailies")
	require.NoError(t, err)
	return r
}

// --- Tests ---

func TestNewRotator_EmptyTableAbortsInit(t *testing.T) {
	_, err := NewRotator(&mockChat{}, 42, "banner", sheet.RecordSet{}, taskRecords("a"), "Single Dailies", "Double Dailies")
	require.Error(t, err)
	assert.Equal(t, domain.KindTableEmpty, domain.KindOf(err))
	assert.Contains(t, err.Error(), "Single Dailies")

	_, err = NewRotator(&mockChat{}, 42, "banner", taskRecords("a"), sheet.RecordSet{}, "Single Dailies", "Double Dailies")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Double Dailies")
}

func TestNext_TotalPullsEqualSingleQueueLength(t *testing.T) {
	single := flagDouble(taskRecords("a", "b", "c", "d"), 1, 3)
	double := taskRecords("x", "y")
	r := newTestRotator(t, &mockChat{}, single, double)

	pulls := 0
	for {
		_, ok := r.Next()
		if !ok {
			break
		}
		pulls++
	}

	assert.Equal(t, 4, pulls, "pulls equal single-queue length regardless of doubles")

	// Exhaustion is terminal, not an error: repeated pulls stay exhausted.
	_, ok := r.Next()
	assert.False(t, ok)
}

func TestNext_DoubleRowsDrainPairedQueue(t *testing.T) {
	single := flagDouble(taskRecords("a", "b"), 0)
	double := taskRecords("x")
	r := newTestRotator(t, &mockChat{}, single, double)

	first, ok := r.Next()
	require.True(t, ok)
	assert.True(t, first.Double)
	assert.Equal(t, "x", first.DoubleTask)
	assert.Equal(t, "pw-x", first.DoublePassword)

	second, ok := r.Next()
	require.True(t, ok)
	assert.False(t, second.Double)
	assert.Equal(t, "b", second.Task)
}

func TestTick_PostsPinsAndUnpinsPrevious(t *testing.T) {
	chat := &mockChat{}
	r := newTestRotator(t, chat, taskRecords("a", "b"), taskRecords("x"))

	require.NoError(t, r.Tick(context.Background()))
	assert.Equal(t, []string{"send", "pin"}, chat.ops(), "first tick has no previous message to unpin")

	chat.calls = nil
	require.NoError(t, r.Tick(context.Background()))
	assert.Equal(t, []string{"unpin", "send", "pin"}, chat.ops())
	assert.Equal(t, int64(1), chat.calls[0].messageID, "unpins the previously posted message")
}

func TestTick_ExhaustionStopsSchedule(t *testing.T) {
	chat := &mockChat{}
	r := newTestRotator(t, chat, taskRecords("only"), taskRecords("x"))

	require.NoError(t, r.Tick(context.Background()))

	err := r.Tick(context.Background())
	assert.ErrorIs(t, err, scheduler.ErrStop)
}

func TestTick_SendFailureIsRetriedNextTick(t *testing.T) {
	chat := &mockChat{sendErr: errors.New("platform down")}
	r := newTestRotator(t, chat, taskRecords("a", "b"), taskRecords("x"))

	err := r.Tick(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, scheduler.ErrStop, "transient failure must not end the schedule")
}

func TestRender_CompositeMessageCarriesBanner(t *testing.T) {
	chat := &mockChat{}
	r := newTestRotator(t, chat, flagDouble(taskRecords("a"), 0), taskRecords("x"))

	require.NoError(t, r.Tick(context.Background()))

	content := chat.calls[0].content
	assert.Contains(t, content, "@everyone a")
	assert.Contains(t, content, "@@@ DOUBLE DAILY @@@")
	assert.Contains(t, content, "Password: pw-x")
}
