package hunt

import (
	"strconv"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/sheet"
)

// Exact config keys consumed from the sheet's config table.
const (
	KeyHuntStartDate     = "HUNT_START_DATE"
	KeyHuntStartTime     = "HUNT_START_TIME_GMT"
	KeyMasterPassword    = "MASTER_PASSWORD"
	KeyAnnouncementsChan = "ANNOUNCEMENTS_CHANNEL_ID"
	KeyGeneralChan       = "GENERAL_CHANNEL_ID"
	KeyAdminChan         = "ADMIN_CHANNEL_ID"
	KeyTeamOneName       = "TEAM_ONE_NAME"
	KeyTeamTwoName       = "TEAM_TWO_NAME"
	KeyTeamOneChatChan   = "TEAM_1_CHAT_CHANNEL_ID"
	KeyTeamTwoChatChan   = "TEAM_2_CHAT_CHANNEL_ID"
	KeyHuntEdition       = "HUNT_EDITION"
	KeyWOMHuntURL        = "WOM_HUNT_URL"
	KeyBountiesPerDay    = "BOUNTIES_PER_DAY"
	KeyBountyChan        = "BOUNTY_CHANNEL_ID"
	KeyDailyChan         = "DAILY_CHANNEL_ID"
	KeyPointsChan        = "POINTS_CHANNEL_ID"
	KeyAlertChan         = "ALERT_CHANNEL_ID"
	KeyStarboardChan     = "STARBOARD_CHANNEL_ID"
	KeyTeamOneDropChan   = "TEAM_1_DROP_CHANNEL_ID"
	KeyTeamTwoDropChan   = "TEAM_2_DROP_CHANNEL_ID"
	KeyMemeChan          = "MEME_CHANNEL_ID"
)

// ConfigMap is the raw key/value view of the config table. Components read
// their own optional keys from it; the required core is validated by
// State.Ingest.
type ConfigMap map[string]string

// NewConfigMap zips the Key and Value columns of the config table. An empty
// result is an ingestion failure.
func NewConfigMap(rs sheet.RecordSet) (ConfigMap, error) {
	m := make(ConfigMap, rs.Len())
	for _, rec := range rs.Records {
		key, ok := rec.Get("Key")
		if !ok {
			continue
		}
		m[key] = rec.Value("Value")
	}

	if len(m) == 0 {
		return nil, domain.ConfigMissingError([]string{"Key", "Value"}).
			WithContext("reason", "configuration map is empty")
	}
	return m, nil
}

// ChannelID converts the key's value to an int64 channel ID. Missing, zero,
// or non-numeric values report a tagged config error carrying the key.
func (m ConfigMap) ChannelID(key string) (int64, error) {
	id, err := strconv.ParseInt(m[key], 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ConfigMissingError([]string{key})
	}
	return id, nil
}

// Int converts the key's value to an int, with the same missing/zero rules
// as ChannelID.
func (m ConfigMap) Int(key string) (int, error) {
	n, err := strconv.Atoi(m[key])
	if err != nil || n == 0 {
		return 0, domain.ConfigMissingError([]string{key})
	}
	return n, nil
}
