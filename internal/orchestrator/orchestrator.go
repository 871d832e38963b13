// Package orchestrator owns the main refresh loop: it re-pulls the sheet,
// configures the hunt from the config table, announces start and end, and
// brings the event components up once the hunt is running.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abristow3/Hunt-Bot/internal/bounty"
	"github.com/abristow3/Hunt-Bot/internal/countdown"
	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
	"github.com/abristow3/Hunt-Bot/internal/memes"
	"github.com/abristow3/Hunt-Bot/internal/memories"
	"github.com/abristow3/Hunt-Bot/internal/platform/config"
	"github.com/abristow3/Hunt-Bot/internal/rotation"
	"github.com/abristow3/Hunt-Bot/internal/scheduler"
	"github.com/abristow3/Hunt-Bot/internal/score"
	"github.com/abristow3/Hunt-Bot/internal/sheet"
	"github.com/abristow3/Hunt-Bot/internal/starboard"
	"github.com/abristow3/Hunt-Bot/internal/statestore"
	"github.com/abristow3/Hunt-Bot/internal/tally"
)

// Content tables consumed by the two rotations.
const (
	singleBountiesTable = "Single Bounties"
	doubleBountiesTable = "Double Bounties"
	singleDailiesTable  = "Single Dailies"
	doubleDailiesTable  = "Double Dailies"

	doubleBountyBanner = "@@@ DOUBLE BOUNTY @@@"
	doubleDailyBanner  = "@@@ DOUBLE DAILY @@@"

	dailyInterval = 24 * time.Hour
)

// Orchestrator drives the configure/start/end lifecycle from the sheet.
type Orchestrator struct {
	cfg      *config.Config
	chat     domain.ChatService
	provider *sheet.Provider
	state    *hunt.State
	store    *statestore.Store
	clock    clockwork.Clock

	watchdog *scheduler.Watchdog

	mu                sync.Mutex
	refreshRunner     *scheduler.Runner
	componentRunners  []*scheduler.Runner
	configStarted     bool
	componentsStarted bool
	countdown         *countdown.Engine
	ledger            *bounty.Ledger
	tally             *tally.Engine
	memes             *memes.Board
}

func New(cfg *config.Config, chat domain.ChatService, provider *sheet.Provider, state *hunt.State, store *statestore.Store, clock clockwork.Clock) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		chat:     chat,
		provider: provider,
		state:    state,
		store:    store,
		clock:    clock,
		watchdog: scheduler.NewWatchdog(cfg.WatchdogInterval, clock),
	}
	o.refreshRunner = scheduler.NewRunner("refresh", cfg.SheetRefreshInterval, clock, o.Tick)
	o.watchdog.Watch(o.refreshRunner)
	return o
}

// Run starts the refresh loop and blocks in the watchdog until the context
// is cancelled.
func (o *Orchestrator) Run(ctx context.Context) {
	o.refreshRunner.Start(ctx)
	o.watchdog.Run(ctx)
}

// Stop halts every runner.
func (o *Orchestrator) Stop() {
	o.watchdog.Stop()
	o.refreshRunner.Stop()

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, r := range o.componentRunners {
		r.Stop()
	}
}

// Ledger exposes the bounty ledger for a command surface.
func (o *Orchestrator) Ledger() *bounty.Ledger {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ledger
}

// Tally exposes the drop tally engine for a command surface.
func (o *Orchestrator) Tally() *tally.Engine {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tally
}

func (o *Orchestrator) memeBoard() *memes.Board {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.memes
}

// Tick is one pass of the main loop: refresh the grid, configure once,
// then watch for the start and end thresholds.
func (o *Orchestrator) Tick(ctx context.Context) error {
	if err := o.provider.Refresh(ctx); err != nil {
		// Keep running on the previous snapshot.
		slog.WarnContext(ctx, "Sheet refresh failed", "error", err)
	}

	if !o.state.Configured() {
		rs := o.provider.Table(o.cfg.ConfigTableName)
		if err := o.state.Ingest(rs); err != nil {
			return fmt.Errorf("ingesting config table: %w", err)
		}
		o.persist(ctx)
	}

	// The countdown and starboard run from configuration onward; the
	// countdown's pre-start notices have to fire before the hunt begins.
	if o.state.Configured() && !o.configComponentsStarted() {
		o.startConfigComponents(ctx)
	}

	if o.state.CheckStart() {
		o.announce(ctx, fmt.Sprintf(
			"@everyone the %s Hunt has officially begun!\nThe password is: %s",
			o.state.HuntEdition(), o.state.MasterPassword(),
		))
		o.persist(ctx)
	}

	// A restart after the hunt is over must not revive the rotations.
	if o.state.Started() && !o.state.Ended() && !o.started() {
		o.startComponents(ctx)
	}

	if o.state.CheckEnd() {
		o.announce(ctx, fmt.Sprintf(
			"@everyone The %s Hunt has officially concluded...results coming soon!",
			o.state.HuntEdition(),
		))
		if board := o.memeBoard(); board != nil {
			if err := board.PostScoreboard(ctx); err != nil {
				slog.ErrorContext(ctx, "Meme scoreboard failed", "error", err)
			}
		}
		o.persist(ctx)
		o.stopComponents()
	}

	return nil
}

func (o *Orchestrator) started() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.componentsStarted
}

func (o *Orchestrator) configComponentsStarted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.configStarted
}

// startConfigComponents brings up the components that only need the config
// table: the countdown and the starboard.
func (o *Orchestrator) startConfigComponents(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.configStarted {
		return
	}
	o.configStarted = true

	slog.InfoContext(ctx, "Hunt configured, bringing up countdown and starboard")

	if engine, err := countdown.NewEngine(o.chat, o.state); err != nil {
		slog.Error("Countdown unavailable", "error", err)
	} else {
		o.countdown = engine
		o.addRunnerLocked(ctx, "countdown", o.cfg.CountdownInterval, engine.Tick)
	}

	if sb, err := starboard.NewStarboard(o.chat, o.state); err != nil {
		slog.Error("Starboard unavailable", "error", err)
	} else {
		o.addRunnerLocked(ctx, "starboard", o.cfg.ScoreInterval, sb.Tick)
	}
}

// startComponents brings up the event-time machinery. A component that
// fails to construct is logged and skipped; the rest still start.
func (o *Orchestrator) startComponents(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.componentsStarted {
		return
	}
	o.componentsStarted = true

	slog.InfoContext(ctx, "Hunt started, bringing up event components")

	cfgMap := o.state.Config()

	if rotator, interval, err := o.buildBountyRotation(cfgMap); err != nil {
		slog.Error("Bounty rotation unavailable", "error", err)
	} else {
		o.addRunnerLocked(ctx, "bounties", interval, rotator.Tick)
	}

	if rotator, err := o.buildDailyRotation(cfgMap); err != nil {
		slog.Error("Daily rotation unavailable", "error", err)
	} else {
		o.addRunnerLocked(ctx, "dailies", dailyInterval, rotator.Tick)
	}

	if board, err := score.NewBoard(o.chat, o.provider, o.state); err != nil {
		slog.Error("Scoreboard unavailable", "error", err)
	} else {
		o.addRunnerLocked(ctx, "score", o.cfg.ScoreInterval, board.Tick)
	}

	o.ledger = bounty.NewLedger(o.state, o.clock)
	o.addRunnerLocked(ctx, "bounty-clock", time.Minute, func(context.Context) error {
		o.ledger.RecomputeRemaining()
		return nil
	})

	o.tally = tally.NewEngine(o.chat, o.state)
	o.addRunnerLocked(ctx, "tally", o.cfg.TallyInterval, o.tally.Tick)

	if engine, err := memories.NewEngine(o.chat, o.state, o.clock, o.cfg.MemoriesFile); err != nil {
		slog.Error("Memories unavailable", "error", err)
	} else {
		o.addRunnerLocked(ctx, "memories", o.cfg.MemoriesInterval, engine.Tick)
	}

	if board, err := memes.NewBoard(o.chat, o.state); err != nil {
		slog.Error("Meme board unavailable", "error", err)
	} else {
		o.memes = board
		o.addRunnerLocked(ctx, "memes", o.cfg.TallyInterval, board.Tick)
	}
}

func (o *Orchestrator) addRunnerLocked(ctx context.Context, name string, interval time.Duration, tick scheduler.TickFunc) {
	r := scheduler.NewRunner(name, interval, o.clock, tick)
	o.componentRunners = append(o.componentRunners, r)
	o.watchdog.Watch(r)
	r.Start(ctx)
}

func (o *Orchestrator) stopComponents() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, r := range o.componentRunners {
		r.Stop()
	}
}

func (o *Orchestrator) buildBountyRotation(cfgMap hunt.ConfigMap) (*rotation.Rotator, time.Duration, error) {
	channelID, err := cfgMap.ChannelID(hunt.KeyBountyChan)
	if err != nil {
		return nil, 0, err
	}
	perDay, err := cfgMap.Int(hunt.KeyBountiesPerDay)
	if err != nil {
		return nil, 0, err
	}

	rotator, err := rotation.NewRotator(
		o.chat, channelID, doubleBountyBanner,
		o.provider.Table(singleBountiesTable), o.provider.Table(doubleBountiesTable),
		singleBountiesTable, doubleBountiesTable,
	)
	if err != nil {
		return nil, 0, err
	}
	return rotator, 24 * time.Hour / time.Duration(perDay), nil
}

func (o *Orchestrator) buildDailyRotation(cfgMap hunt.ConfigMap) (*rotation.Rotator, error) {
	channelID, err := cfgMap.ChannelID(hunt.KeyDailyChan)
	if err != nil {
		return nil, err
	}
	return rotation.NewRotator(
		o.chat, channelID, doubleDailyBanner,
		o.provider.Table(singleDailiesTable), o.provider.Table(doubleDailiesTable),
		singleDailiesTable, doubleDailiesTable,
	)
}

// announce posts to the announcements channel, tolerating send failures.
func (o *Orchestrator) announce(ctx context.Context, message string) {
	channelID := o.state.AnnouncementsChannelID()
	if channelID == 0 {
		return
	}
	if _, err := o.chat.SendMessage(ctx, channelID, message); err != nil {
		slog.ErrorContext(ctx, "Announcement failed", "error", err)
	}
}

// persist snapshots the aggregate. A lock timeout fails only this update.
func (o *Orchestrator) persist(ctx context.Context) {
	if o.store == nil {
		return
	}
	if err := o.store.Save(o.state.Snapshot()); err != nil {
		slog.ErrorContext(ctx, "State snapshot failed", "error", err)
	}
}
