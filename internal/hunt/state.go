package hunt

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/sheet"
)

// Hunt times are parsed and compared in one reference timezone regardless of
// where the bot runs.
const (
	ReferenceTimezone = "Europe/London"
	dateTimeLayout    = "02/01/2006 15:04"

	// A hunt always runs for nine days from its start.
	huntDuration = 9 * 24 * time.Hour
)

// State is the long-lived hunt aggregate. One instance exists per process;
// config ingestion and the periodic start/end checks are the only mutators.
// The started/ended flags are monotonic: once set they never reset for the
// lifetime of the run.
type State struct {
	mu    sync.Mutex
	clock clockwork.Clock
	loc   *time.Location

	configMap ConfigMap

	configured bool
	started    bool
	ended      bool

	startTime time.Time
	endTime   time.Time

	masterPassword string
	huntEdition    string
	womHuntURL     string

	teamOneName string
	teamTwoName string

	announcementsChannelID int64
	generalChannelID       int64
	adminChannelID         int64
	teamOneChatChannelID   int64
	teamTwoChatChannelID   int64
}

// NewState creates an unconfigured hunt aggregate. Components started before
// ingestion succeeds simply do nothing on their ticks.
func NewState(clock clockwork.Clock) *State {
	loc, err := time.LoadLocation(ReferenceTimezone)
	if err != nil {
		// The IANA database always knows Europe/London; refusing to start
		// beats running countdowns in the wrong zone.
		panic("hunt: cannot load reference timezone: " + err.Error())
	}
	return &State{clock: clock, loc: loc}
}

// Now returns the current time in the hunt's reference timezone.
func (s *State) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

// Ingest validates the config table and populates the aggregate. Every
// missing or non-coercible required field is collected before reporting, so
// operators fix the sheet in one pass. On success the aggregate is marked
// configured and the end time is derived from the start.
func (s *State) Ingest(rs sheet.RecordSet) error {
	configMap, err := NewConfigMap(rs)
	if err != nil {
		return err
	}

	var missing []string

	str := func(key string) string {
		v := configMap[key]
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	channel := func(key string) int64 {
		id, err := strconv.ParseInt(configMap[key], 10, 64)
		if err != nil || id == 0 {
			missing = append(missing, key)
			return 0
		}
		return id
	}

	startDate := str(KeyHuntStartDate)
	startClock := str(KeyHuntStartTime)
	masterPassword := str(KeyMasterPassword)
	teamOneName := str(KeyTeamOneName)
	teamTwoName := str(KeyTeamTwoName)
	huntEdition := str(KeyHuntEdition)
	womHuntURL := str(KeyWOMHuntURL)

	announcementsID := channel(KeyAnnouncementsChan)
	generalID := channel(KeyGeneralChan)
	adminID := channel(KeyAdminChan)
	teamOneChatID := channel(KeyTeamOneChatChan)
	teamTwoChatID := channel(KeyTeamTwoChatChan)

	if len(missing) > 0 {
		return domain.ConfigMissingError(missing)
	}

	startDateTime := startDate + " " + startClock
	startTime, err := time.ParseInLocation(dateTimeLayout, startDateTime, s.loc)
	if err != nil {
		return domain.DateParseError(startDateTime)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.configMap = configMap
	s.masterPassword = masterPassword
	s.huntEdition = huntEdition
	s.womHuntURL = womHuntURL
	s.teamOneName = teamOneName
	s.teamTwoName = teamTwoName
	s.announcementsChannelID = announcementsID
	s.generalChannelID = generalID
	s.adminChannelID = adminID
	s.teamOneChatChannelID = teamOneChatID
	s.teamTwoChatChannelID = teamTwoChatID
	s.startTime = startTime
	s.endTime = startTime.Add(huntDuration)
	s.configured = true

	slog.Info("Hunt configured", "edition", huntEdition, "start", startTime, "end", s.endTime)
	return nil
}

// CheckStart flips the started flag once the start time has passed. It is
// idempotent: the flip happens exactly once and only the flipping call
// returns true.
func (s *State) CheckStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured || s.started {
		return false
	}
	if s.clock.Now().In(s.loc).Before(s.startTime) {
		return false
	}
	s.started = true
	return true
}

// CheckEnd is the symmetric check against the end time.
func (s *State) CheckEnd() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured || s.ended {
		return false
	}
	if s.clock.Now().In(s.loc).Before(s.endTime) {
		return false
	}
	s.ended = true
	return true
}

// Configured reports whether ingestion has succeeded at least once.
func (s *State) Configured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configured
}

// Started reports whether the hunt start threshold has been crossed.
func (s *State) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Ended reports whether the hunt end threshold has been crossed.
func (s *State) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// StartTime returns the configured hunt start in the reference timezone.
func (s *State) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

// EndTime returns the derived hunt end in the reference timezone.
func (s *State) EndTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endTime
}

// Config returns the raw config map for components with optional keys.
func (s *State) Config() ConfigMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configMap
}

func (s *State) MasterPassword() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.masterPassword
}

func (s *State) HuntEdition() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.huntEdition
}

func (s *State) WOMHuntURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.womHuntURL
}

func (s *State) TeamOneName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teamOneName
}

func (s *State) TeamTwoName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teamTwoName
}

func (s *State) AnnouncementsChannelID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.announcementsChannelID
}

func (s *State) GeneralChannelID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generalChannelID
}

func (s *State) AdminChannelID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adminChannelID
}

// TeamChatChannels returns (team one, team two) chat channel IDs.
func (s *State) TeamChatChannels() (int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teamOneChatChannelID, s.teamTwoChatChannelID
}

// Restore rehydrates the aggregate from a persisted snapshot. The config
// map is re-ingested so the typed fields and the snapshot stay consistent;
// the started/ended flags then overwrite whatever the ingest derived.
func (s *State) Restore(snap Snapshot) error {
	if len(snap.ConfigMap) > 0 {
		rs := sheet.RecordSet{Fields: []string{"Key", "Value"}}
		for k, v := range snap.ConfigMap {
			rs.Records = append(rs.Records, sheet.Record{"Key": k, "Value": v})
		}
		if err := s.Ingest(rs); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.configured = snap.Configured
	s.started = snap.Started
	s.ended = snap.Ended
	if !snap.StartTime.IsZero() {
		s.startTime = snap.StartTime
		s.endTime = snap.EndTime
	}
	return nil
}

// Snapshot is the persistable view of the aggregate written by the state
// store between restarts.
type Snapshot struct {
	Configured bool              `yaml:"configured"`
	Started    bool              `yaml:"started"`
	Ended      bool              `yaml:"ended"`
	StartTime  time.Time         `yaml:"start_datetime"`
	EndTime    time.Time         `yaml:"end_datetime"`
	ConfigMap  map[string]string `yaml:"config_map"`
}

// Snapshot captures the current aggregate state for persistence.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	configCopy := make(map[string]string, len(s.configMap))
	for k, v := range s.configMap {
		configCopy[k] = v
	}

	return Snapshot{
		Configured: s.configured,
		Started:    s.started,
		Ended:      s.ended,
		StartTime:  s.startTime,
		EndTime:    s.endTime,
		ConfigMap:  configCopy,
	}
}
