// Package memories drips community quotes into the general channel at
// random eight-to-twelve-hour gaps while the event runs. Quotes come from
// a curated YAML file and are posted in shuffled order until the list is
// exhausted.
package memories

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v3"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/hunt"
	"github.com/abristow3/Hunt-Bot/internal/scheduler"
)

// DefaultFile is where the curated quote list lives.
const DefaultFile = "conf/memories.yaml"

const (
	minGap = 8 * time.Hour
	maxGap = 12 * time.Hour
)

// attribution matches a trailing " - Player" credit on a quote.
var attribution = regexp.MustCompile(`\s-\s(.+)$`)

type memoriesFile struct {
	Memories []string `yaml:"memories"`
}

// Engine posts one stored memory per random window, then ends its own
// schedule once the queue runs dry.
type Engine struct {
	chat  domain.ChatService
	clock clockwork.Clock

	generalChannelID int64
	queue            []string
	nextPost         time.Time
}

// NewEngine loads and shuffles the memory file. An unreadable file or an
// empty list is an error so the component is skipped instead of idling.
func NewEngine(chat domain.ChatService, state *hunt.State, clock clockwork.Clock, path string) (*Engine, error) {
	channelID, err := state.Config().ChannelID(hunt.KeyGeneralChan)
	if err != nil {
		return nil, err
	}

	queue, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		chat:             chat,
		clock:            clock,
		generalChannelID: channelID,
		queue:            queue,
		nextPost:         clock.Now().Add(randomGap()),
	}
	slog.Info("Memories loaded", "count", len(queue))
	return e, nil
}

func loadFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading memories file: %w", err)
	}

	var f memoriesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing memories file: %w", err)
	}
	if len(f.Memories) == 0 {
		return nil, fmt.Errorf("no memories found in %s", path)
	}

	queue := append([]string(nil), f.Memories...)
	rand.Shuffle(len(queue), func(i, j int) { queue[i], queue[j] = queue[j], queue[i] })
	return queue, nil
}

func randomGap() time.Duration {
	return minGap + time.Duration(rand.Int63n(int64(maxGap-minGap)))
}

// Tick posts the next memory once its window has elapsed. Ticks inside the
// window are no-ops.
func (e *Engine) Tick(ctx context.Context) error {
	if e.clock.Now().Before(e.nextPost) {
		return nil
	}
	if len(e.queue) == 0 {
		slog.Info("All memories posted")
		return scheduler.ErrStop
	}

	if _, err := e.chat.SendMessage(ctx, e.generalChannelID, render(e.queue[0])); err != nil {
		return fmt.Errorf("posting memory: %w", err)
	}
	e.queue = e.queue[1:]
	e.nextPost = e.clock.Now().Add(randomGap())
	return nil
}

// render splits the trailing attribution off a stored quote and formats it
// for the channel. Quotes without a credit are attributed to Unknown.
func render(memory string) string {
	player := "Unknown"
	text := strings.TrimSpace(memory)
	if m := attribution.FindStringSubmatchIndex(text); m != nil {
		player = strings.TrimSpace(text[m[2]:m[3]])
		text = strings.TrimSpace(text[:m[0]])
	}
	return fmt.Sprintf("\"%s\"\n\n— %s", text, player)
}
