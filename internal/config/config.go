package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "ticklite.db"
	DefaultLogName        = "ticklite.log"
	EnvConfigPath         = "TICKLITE_CONFIG"

	appDir = "ticklite"
)

type Keymap struct {
	Quit        string `toml:"quit"`
	Add         string `toml:"add"`
	Up          string `toml:"up"`
	Down        string `toml:"down"`
	Toggle      string `toml:"toggle"`
	Delete      string `toml:"delete"`
	Confirm     string `toml:"confirm"`
	Cancel      string `toml:"cancel"`
	Edit        string `toml:"edit"`
	Snooze      string `toml:"snooze"`
	Priority    string `toml:"priority"`
	NextView    string `toml:"next_view"`
	Search      string `toml:"search"`
	ClearAll    string `toml:"clear_all"`
	ClearSearch string `toml:"clear_search"`
}

type Reminder struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
	Window   string `toml:"window"`
	Dedupe   bool   `toml:"dedupe"`
}

type Config struct {
	DBPath       string   `toml:"db_path"`
	DefaultView  string   `toml:"default_view"`
	SnoozeDays   int      `toml:"snooze_days"`
	SeedExamples bool     `toml:"seed_examples"`
	LogLevel     string   `toml:"log_level"`
	Reminder     Reminder `toml:"reminder"`
	Keys         Keymap   `toml:"keys"`
}

// ResolveConfigPath picks the config file: $TICKLITE_CONFIG, then the user
// config dir, then the working directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDir, DefaultConfigFileName)
	}
	return DefaultConfigFileName
}

// LoadOrCreate reads path, writing the defaults there first if it does not
// exist. Keys missing from the file keep their default values.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.normalize(filepath.Dir(path))
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) normalize(dir string) {
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = filepath.Join(dir, DefaultDBName)
	}
	if c.SnoozeDays < 1 {
		c.SnoozeDays = 1
	}
	switch strings.ToLower(strings.TrimSpace(c.DefaultView)) {
	case "all", "inbox", "today", "upcoming", "completed":
		c.DefaultView = strings.ToLower(strings.TrimSpace(c.DefaultView))
	default:
		c.DefaultView = "inbox"
	}
}

// LogPath is where logs go while the terminal UI owns the screen.
func (c Config) LogPath() string {
	return filepath.Join(filepath.Dir(c.DBPath), DefaultLogName)
}

func (c Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (r Reminder) IntervalDuration() time.Duration {
	return parseDuration(r.Interval, 30*time.Second)
}

func (r Reminder) WindowDuration() time.Duration {
	return parseDuration(r.Window, 60*time.Second)
}

func parseDuration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Defaults returns the configuration written on first launch, with the
// database placed in dir.
func Defaults(dir string) Config {
	return defaultConfig(dir)
}

func defaultConfig(dir string) Config {
	return Config{
		DBPath:       filepath.Join(dir, DefaultDBName),
		DefaultView:  "inbox",
		SnoozeDays:   1,
		SeedExamples: true,
		LogLevel:     "info",
		Reminder: Reminder{
			Enabled:  true,
			Interval: "30s",
			Window:   "60s",
		},
		Keys: Keymap{
			Quit:        "q",
			Add:         "a",
			Up:          "k",
			Down:        "j",
			Toggle:      " ",
			Delete:      "d",
			Confirm:     "enter",
			Cancel:      "esc",
			Edit:        "e",
			Snooze:      "s",
			Priority:    "p",
			NextView:    "tab",
			Search:      "/",
			ClearAll:    "X",
			ClearSearch: "ctrl+u",
		},
	}
}
