package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abristow3/Hunt-Bot/internal/adapter/chatlog"
	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
	"github.com/abristow3/Hunt-Bot/internal/platform/config"
	"github.com/abristow3/Hunt-Bot/internal/sheet"
	"github.com/abristow3/Hunt-Bot/internal/statestore"
)

const (
	announcementsChannel = int64(100)
	bountyChannel        = int64(301)
)

type fakeSource struct {
	grid [][]string
}

func (f *fakeSource) Rows(_ context.Context, _ string) [][]string         { return f.grid }
func (f *fakeSource) RangeRows(_ context.Context, _, _ string) [][]string { return f.grid }

// testGrid lays every table the orchestrator consumes side by side under
// one label header row, two columns each.
func testGrid(start time.Time) [][]string {
	configRows := [][]string{
		{"Key", "Value"},
		{hunt.KeyHuntStartDate, start.Format("02/01/2006")},
		{hunt.KeyHuntStartTime, start.Format("15:04")},
		{hunt.KeyMasterPassword, "hunt2025"},
		{hunt.KeyAnnouncementsChan, "100"},
		{hunt.KeyGeneralChan, "101"},
		{hunt.KeyAdminChan, "102"},
		{hunt.KeyTeamOneName, "Team Orange"},
		{hunt.KeyTeamTwoName, "Team Green"},
		{hunt.KeyTeamOneChatChan, "201"},
		{hunt.KeyTeamTwoChatChan, "202"},
		{hunt.KeyHuntEdition, "14th"},
		{hunt.KeyWOMHuntURL, "https://example.com"},
		{hunt.KeyBountiesPerDay, "3"},
		{hunt.KeyBountyChan, "301"},
		{hunt.KeyDailyChan, "302"},
		{hunt.KeyPointsChan, "401"},
		{hunt.KeyAlertChan, "402"},
		{hunt.KeyStarboardChan, "500"},
		{hunt.KeyTeamOneDropChan, "501"},
		{hunt.KeyTeamTwoDropChan, "502"},
		{hunt.KeyMemeChan, "601"},
	}

	tables := []struct {
		name string
		rows [][]string
	}{
		{"BotConfig", configRows},
		{"Single Bounties", [][]string{{"Task", "Password"}, {"find a thing", "pw1"}, {"find another", "pw2"}}},
		{"Double Bounties", [][]string{{"Task", "Password"}, {"double up", "pw3"}}},
		{"Single Dailies", [][]string{{"Task", "Password"}, {"daily grind", "pw4"}}},
		{"Double Dailies", [][]string{{"Task", "Password"}, {"double daily", "pw5"}}},
		{"Current Score", [][]string{{"Team Name", "Total Points"}, {"Team Orange", "10"}, {"Team Green", "5"}}},
	}

	depth := 0
	for _, tbl := range tables {
		if len(tbl.rows) > depth {
			depth = len(tbl.rows)
		}
	}

	var header []string
	for _, tbl := range tables {
		header = append(header, tbl.name, "")
	}
	grid := [][]string{header}

	for r := 0; r < depth; r++ {
		var row []string
		for _, tbl := range tables {
			if r < len(tbl.rows) {
				row = append(row, tbl.rows[r][0], tbl.rows[r][1])
			} else {
				row = append(row, "", "")
			}
		}
		grid = append(grid, row)
	}
	return grid
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	memoriesFile := filepath.Join(dir, "memories.yaml")
	require.NoError(t, os.WriteFile(memoriesFile, []byte("memories:\n  - \"what a trip - Alice\"\n"), 0o644))

	return &config.Config{
		SpreadsheetID:        "sheet-id",
		SheetName:            "Hunt Bot",
		ConfigTableName:      "BotConfig",
		StateFile:            filepath.Join(dir, "state.yaml"),
		MemoriesFile:         memoriesFile,
		SheetRefreshInterval: 5 * time.Second,
		CountdownInterval:    30 * time.Second,
		ScoreInterval:        10 * time.Second,
		TallyInterval:        3 * time.Second,
		MemoriesInterval:     time.Minute,
		WatchdogInterval:     30 * time.Second,
	}
}

type orchFixture struct {
	orch  *Orchestrator
	chat  *chatlog.Service
	state *hunt.State
	store *statestore.Store
	clock clockwork.FakeClock
}

func newOrchestrator(t *testing.T, now time.Time, start time.Time) orchFixture {
	t.Helper()

	clock := clockwork.NewFakeClockAt(now)
	cfg := testConfig(t)
	chat := chatlog.New(clock)
	provider := sheet.NewProvider(&fakeSource{grid: testGrid(start)}, cfg.SheetName)
	state := hunt.NewState(clock)
	store := statestore.NewStore(cfg.StateFile, clock)

	return orchFixture{
		orch:  New(cfg, chat, provider, state, store, clock),
		chat:  chat,
		state: state,
		store: store,
		clock: clock,
	}
}

func channelContents(t *testing.T, chat *chatlog.Service, channelID int64) []string {
	t.Helper()
	msgs, err := chat.MessagesAfter(context.Background(), channelID, 0)
	require.NoError(t, err)
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

func TestTick_ConfiguresFromSheet(t *testing.T) {
	loc, err := time.LoadLocation(hunt.ReferenceTimezone)
	require.NoError(t, err)
	start := time.Date(2026, 6, 10, 18, 0, 0, 0, loc)

	f := newOrchestrator(t, start.Add(-2*time.Hour), start)
	defer f.orch.Stop()

	require.NoError(t, f.orch.Tick(context.Background()))

	assert.True(t, f.state.Configured())
	assert.False(t, f.state.Started())
	assert.Equal(t, "hunt2025", f.state.MasterPassword())

	snap, found, err := f.store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, snap.Configured)
}

func TestTick_AnnouncesStartOnceAndStartsComponents(t *testing.T) {
	loc, err := time.LoadLocation(hunt.ReferenceTimezone)
	require.NoError(t, err)
	start := time.Date(2026, 6, 10, 18, 0, 0, 0, loc)

	f := newOrchestrator(t, start.Add(time.Hour), start)
	defer f.orch.Stop()

	require.NoError(t, f.orch.Tick(context.Background()))

	require.True(t, f.state.Started())
	announcements := channelContents(t, f.chat, announcementsChannel)
	require.Len(t, announcements, 1)
	assert.Contains(t, announcements[0], "officially begun")
	assert.Contains(t, announcements[0], "hunt2025")
	assert.Contains(t, announcements[0], "14th")

	assert.NotNil(t, f.orch.Ledger())
	assert.NotNil(t, f.orch.Tally())

	// A second pass changes nothing.
	require.NoError(t, f.orch.Tick(context.Background()))
	assert.Len(t, channelContents(t, f.chat, announcementsChannel), 1)
}

func TestTick_CountdownRunsBeforeStart(t *testing.T) {
	loc, err := time.LoadLocation(hunt.ReferenceTimezone)
	require.NoError(t, err)
	start := time.Date(2026, 6, 10, 18, 0, 0, 0, loc)

	// Configured ahead of the start: the countdown engine has to be live
	// already so the pre-start notices can fire. At exactly 24 hours out
	// the first threshold is due on its next pass.
	f := newOrchestrator(t, start.Add(-24*time.Hour), start)
	defer f.orch.Stop()

	require.NoError(t, f.orch.Tick(context.Background()))
	require.False(t, f.state.Started())
	require.NotNil(t, f.orch.countdown)

	require.NoError(t, f.orch.countdown.Tick(context.Background()))

	announcements := channelContents(t, f.chat, announcementsChannel)
	require.Len(t, announcements, 1)
	assert.Contains(t, announcements[0], "The Hunt begins in 24 hours!")
}

func TestTick_RestoredEndedSnapshotStaysStopped(t *testing.T) {
	loc, err := time.LoadLocation(hunt.ReferenceTimezone)
	require.NoError(t, err)
	start := time.Date(2026, 6, 10, 18, 0, 0, 0, loc)

	first := newOrchestrator(t, start.Add(10*24*time.Hour), start)
	require.NoError(t, first.orch.Tick(context.Background()))
	first.orch.Stop()
	require.True(t, first.state.Ended())

	snap, found, err := first.store.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, snap.Ended)

	// A fresh process restoring that snapshot must treat the hunt as over:
	// no rotations, no repeated announcements.
	second := newOrchestrator(t, start.Add(11*24*time.Hour), start)
	defer second.orch.Stop()
	require.NoError(t, second.state.Restore(snap))

	require.NoError(t, second.orch.Tick(context.Background()))

	assert.Empty(t, channelContents(t, second.chat, announcementsChannel))
	assert.Empty(t, channelContents(t, second.chat, bountyChannel))
	assert.Nil(t, second.orch.Ledger())
}

func TestTick_AnnouncesEndAndStopsComponents(t *testing.T) {
	loc, err := time.LoadLocation(hunt.ReferenceTimezone)
	require.NoError(t, err)
	start := time.Date(2026, 6, 10, 18, 0, 0, 0, loc)

	// Past the nine-day mark: start and end both trip on the first pass.
	f := newOrchestrator(t, start.Add(10*24*time.Hour), start)
	defer f.orch.Stop()

	require.NoError(t, f.orch.Tick(context.Background()))

	assert.True(t, f.state.Ended())
	announcements := channelContents(t, f.chat, announcementsChannel)
	require.Len(t, announcements, 2)
	assert.Contains(t, announcements[1], "officially concluded")

	snap, found, err := f.store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, snap.Ended)
}

func TestTick_UnconfiguredWithBadSheetFails(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := testConfig(t)
	chat := chatlog.New(clock)
	provider := sheet.NewProvider(&fakeSource{}, cfg.SheetName)
	state := hunt.NewState(clock)

	orch := New(cfg, chat, provider, state, nil, clock)
	defer orch.Stop()

	err := orch.Tick(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.KindConfigMissing, domain.KindOf(err))
	assert.False(t, state.Configured())
}
