package bounty

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
)

// DefaultTimeLimitHours applies when a create request names no limit.
const DefaultTimeLimitHours = 48

// Bounty is one time-boxed claim. Item names are stored lowercase so
// duplicate checks are case-insensitive.
type Bounty struct {
	ItemName       string
	RewardAmount   float64
	TimeLimitHours float64
	Active         bool
	CompletedBy    string
	StartTime      time.Time
	// TimeRemaining is hours left, rounded to 2 decimals, clamped at 0.
	TimeRemaining float64

	// expiry fires when the time limit lapses; completion and time-limit
	// updates cancel it before scheduling anew.
	expiry clockwork.Timer
}

// Actor is the command context the gate checks run against: the channel the
// command came from and the caller's role names.
type Actor struct {
	ChannelID int64
	Roles     []string
}

// Ledger holds both teams' bounty lists.
type Ledger struct {
	mu    sync.Mutex
	clock clockwork.Clock
	state *hunt.State

	// bounties maps team name to that team's full history.
	bounties map[string][]*Bounty

	authorizedRoles map[string]struct{}
}

// NewLedger builds an empty ledger for the two configured teams. Mutating
// operations require one of the team-leader roles or staff.
func NewLedger(state *hunt.State, clock clockwork.Clock) *Ledger {
	teamOne, teamTwo := state.TeamOneName(), state.TeamTwoName()
	return &Ledger{
		clock: clock,
		state: state,
		bounties: map[string][]*Bounty{
			teamOne: {},
			teamTwo: {},
		},
		authorizedRoles: map[string]struct{}{
			strings.ToLower(teamOne + " team leader"): {},
			strings.ToLower(teamTwo + " team leader"): {},
			"staff": {},
		},
	}
}

// team resolves the acting team from the channel a command was issued in.
func (l *Ledger) team(actor Actor) (string, error) {
	teamOneChan, teamTwoChan := l.state.TeamChatChannels()
	switch actor.ChannelID {
	case teamOneChan:
		return l.state.TeamOneName(), nil
	case teamTwoChan:
		return l.state.TeamTwoName(), nil
	default:
		return "", &domain.Error{
			Kind:    domain.KindWrongChannel,
			Message: "This command can only be ran in the team chat channels",
		}
	}
}

func (l *Ledger) authorize(actor Actor) error {
	for _, role := range actor.Roles {
		if _, ok := l.authorizedRoles[strings.ToLower(role)]; ok {
			return nil
		}
	}
	return &domain.Error{
		Kind:    domain.KindNotAuthorized,
		Message: "You don't have permission to run that command.",
	}
}

// Create opens a new bounty for the acting team. Rejected when an active
// bounty with the same item name (case-insensitive) already exists; an
// inactive one does not block re-listing.
func (l *Ledger) Create(actor Actor, itemName, rewardAmount string, timeLimitHours float64) (*Bounty, error) {
	team, err := l.team(actor)
	if err != nil {
		return nil, err
	}
	if err := l.authorize(actor); err != nil {
		return nil, err
	}

	if rewardAmount == "" {
		return nil, &domain.Error{
			Kind:    domain.KindBadReward,
			Message: "You must provide a reward amount for the bounty.",
		}
	}
	reward, err := ParseReward(rewardAmount)
	if err != nil {
		return nil, err
	}

	if timeLimitHours <= 0 {
		return nil, &domain.Error{
			Kind:    domain.KindInvalidArgument,
			Message: "Time limit must be greater than 0.",
		}
	}

	item := strings.ToLower(itemName)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.activeLocked(team, item) != nil {
		return nil, &domain.Error{
			Kind:    domain.KindConflict,
			Message: "Error: Your team already has a bounty out for this item.",
		}
	}

	b := &Bounty{
		ItemName:       item,
		RewardAmount:   reward,
		TimeLimitHours: timeLimitHours,
		Active:         true,
		StartTime:      l.clock.Now(),
		TimeRemaining:  timeLimitHours,
	}
	b.expiry = l.clock.AfterFunc(time.Duration(timeLimitHours*float64(time.Hour)), func() {
		l.expire(team, item)
	})
	l.bounties[team] = append(l.bounties[team], b)

	slog.Info("Bounty created", "team", team, "item", item, "reward", reward, "hours", timeLimitHours)
	return b, nil
}

// RecomputeRemaining refreshes every active bounty's clock. Crossing zero
// deactivates the bounty permanently; expired bounties never reactivate.
func (l *Ledger) RecomputeRemaining() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, team := range l.bounties {
		for _, b := range team {
			l.recomputeLocked(b)
		}
	}
}

func (l *Ledger) recomputeLocked(b *Bounty) {
	if !b.Active {
		return
	}
	elapsedHours := l.clock.Since(b.StartTime).Hours()
	b.TimeRemaining = math.Round((b.TimeLimitHours-elapsedHours)*100) / 100
	if b.TimeRemaining <= 0 {
		b.TimeRemaining = 0
		b.Active = false
		slog.Info("Bounty expired", "item", b.ItemName)
	}
}

// expire is the scheduled expiry callback.
func (l *Ledger) expire(team, item string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b := l.activeLocked(team, item); b != nil {
		l.recomputeLocked(b)
	}
}

// Close completes the acting team's active bounty for the item. A missing
// or already-inactive bounty is a no-op error.
func (l *Ledger) Close(actor Actor, itemName, completedBy string) error {
	team, err := l.team(actor)
	if err != nil {
		return err
	}
	if err := l.authorize(actor); err != nil {
		return err
	}

	item := strings.ToLower(itemName)

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.activeLocked(team, item)
	if b == nil {
		return &domain.Error{
			Kind:    domain.KindNotFound,
			Message: "Error closing bounty.",
			Context: map[string]any{"item": item},
		}
	}

	b.expiry.Stop()
	b.Active = false
	b.CompletedBy = completedBy
	b.TimeRemaining = 0

	slog.Info("Bounty closed", "team", team, "item", item, "completed_by", completedBy)
	return nil
}

// Update changes the reward and/or the time limit of the acting team's
// active bounty. A new time limit restarts the clock from now rather than
// extending what was left. At least one of the two must be supplied.
func (l *Ledger) Update(actor Actor, itemName, rewardAmount string, timeLimitHours float64) error {
	team, err := l.team(actor)
	if err != nil {
		return err
	}
	if err := l.authorize(actor); err != nil {
		return err
	}

	if rewardAmount == "" && timeLimitHours == 0 {
		return &domain.Error{
			Kind:    domain.KindInvalidArgument,
			Message: "Error: You must update either the reward amount, or the time remaining.",
		}
	}

	var reward float64
	haveReward := rewardAmount != ""
	if haveReward {
		reward, err = ParseReward(rewardAmount)
		if err != nil {
			return err
		}
	}
	if timeLimitHours < 0 {
		return &domain.Error{
			Kind:    domain.KindInvalidArgument,
			Message: "Time limit must be greater than 0.",
		}
	}

	item := strings.ToLower(itemName)

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.activeLocked(team, item)
	if b == nil {
		return &domain.Error{
			Kind:    domain.KindNotFound,
			Message: "Error: Could not find bounty item '" + item + "' and update it.",
			Context: map[string]any{"item": item},
		}
	}

	if haveReward {
		b.RewardAmount = reward
	}
	if timeLimitHours > 0 {
		b.TimeLimitHours = timeLimitHours
		b.StartTime = l.clock.Now()
		b.expiry.Stop()
		b.expiry = l.clock.AfterFunc(time.Duration(timeLimitHours*float64(time.Hour)), func() {
			l.expire(team, item)
		})
	}
	l.recomputeLocked(b)

	slog.Info("Bounty updated", "team", team, "item", item)
	return nil
}

// List renders the acting team's bounty table, refreshing clocks first.
// Listing is not gated on roles, only on the channel.
func (l *Ledger) List(actor Actor) (string, error) {
	team, err := l.team(actor)
	if err != nil {
		return "", err
	}
	l.RecomputeRemaining()
	return l.RenderTable(team), nil
}

// Team returns a copy of the team's bounty history, sorted for display.
func (l *Ledger) Team(team string) []Bounty {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Bounty, len(l.bounties[team]))
	for i, b := range l.bounties[team] {
		out[i] = *b
	}
	sortForDisplay(out)
	return out
}

// activeLocked finds the team's active bounty for an item, or nil.
func (l *Ledger) activeLocked(team, item string) *Bounty {
	for _, b := range l.bounties[team] {
		if b.Active && b.ItemName == item {
			return b
		}
	}
	return nil
}

// sortForDisplay orders active bounties first, soonest-expiring first;
// inactive ones sort after all active ones.
func sortForDisplay(bounties []Bounty) {
	sort.SliceStable(bounties, func(i, j int) bool {
		if bounties[i].Active != bounties[j].Active {
			return bounties[i].Active
		}
		return bounties[i].TimeRemaining < bounties[j].TimeRemaining
	})
}
