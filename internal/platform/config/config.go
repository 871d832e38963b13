// Package config loads process-level configuration from the environment.
//
// Event-level configuration (channel IDs, team names, schedule) lives in the
// shared spreadsheet and is ingested separately; this package only covers
// what the process needs before it can reach the sheet.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	SpreadsheetID   string `env:"SPREADSHEET_ID"`
	SheetName       string `env:"SHEET_NAME" default:"Hunt Bot"`
	ConfigTableName string `env:"CONFIG_TABLE_NAME" default:"BotConfig"`
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_PATH" default:"credentials.json"`
	StateFile       string `env:"STATE_FILE" default:"conf/state.yaml"`
	MemoriesFile    string `env:"MEMORIES_FILE" default:"conf/memories.yaml"`
	LogLevel        string `env:"LOG_LEVEL" default:"info"`
	LogFormat       string `env:"LOG_FORMAT" default:"text"`
	MetricsAddr     string `env:"METRICS_ADDR" default:":9183"`

	SheetRefreshInterval time.Duration `env:"SHEET_REFRESH_INTERVAL" default:"5s"`
	CountdownInterval    time.Duration `env:"COUNTDOWN_INTERVAL" default:"30s"`
	ScoreInterval        time.Duration `env:"SCORE_INTERVAL" default:"10s"`
	TallyInterval        time.Duration `env:"TALLY_INTERVAL" default:"3s"`
	MemoriesInterval     time.Duration `env:"MEMORIES_INTERVAL" default:"1m"`
	WatchdogInterval     time.Duration `env:"WATCHDOG_INTERVAL" default:"30s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"SPREADSHEET_ID": cfg.SpreadsheetID,
		"SHEET_NAME":     cfg.SheetName,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.SheetRefreshInterval <= 0 {
		return fmt.Errorf("SHEET_REFRESH_INTERVAL must be positive, got %s", cfg.SheetRefreshInterval)
	}
	if cfg.TallyInterval <= 0 {
		return fmt.Errorf("TALLY_INTERVAL must be positive, got %s", cfg.TallyInterval)
	}

	return nil
}
