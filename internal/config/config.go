// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/weekplan/internal/grid"
	"github.com/javiermolinar/weekplan/internal/task"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Themes lists the bundled TUI themes.
var Themes = []string{"mocha", "macchiato", "frappe", "latte"}

// Config holds the application configuration.
type Config struct {
	Week    grid.WeekSettings `toml:"week"`
	Storage StorageConfig     `toml:"storage"`
	User    UserConfig        `toml:"user"`
	UI      UIConfig          `toml:"ui"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	Driver string `toml:"driver"`  // "sqlite" or "postgres"
	DBPath string `toml:"db_path"` // sqlite file
	DSN    string `toml:"dsn"`     // postgres connection string
}

// UserConfig identifies whose tasks are shown.
type UserConfig struct {
	Owner string `toml:"owner"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme     string `toml:"theme"`      // "mocha", "macchiato", "frappe", "latte"
	Color     string `toml:"color"`      // default task color
	SlotLines int    `toml:"slot_lines"` // terminal lines per time slot
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Week: grid.DefaultSettings(),
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DBPath: defaultDBPath(),
		},
		User: UserConfig{
			Owner: defaultOwner(),
		},
		UI: UIConfig{
			Theme:     "frappe",
			Color:     task.DefaultColor,
			SlotLines: 1,
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "weekplan.db"
	}
	return filepath.Join(home, ".local", "share", "weekplan", "weekplan.db")
}

func defaultOwner() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "weekplan", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from path.
// It starts with defaults, overlays the file if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	// A file that sets [week] replaces the exception list rather than
	// appending to the default one.
	cfg.Week.Exceptions = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies WEEKPLAN_* variables on top of file config.
func applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"WEEKPLAN_START_HOUR", &cfg.Week.StartHour},
		{"WEEKPLAN_END_HOUR", &cfg.Week.EndHour},
		{"WEEKPLAN_INTERVAL", &cfg.Week.GlobalInterval},
		{"WEEKPLAN_SLOT_LINES", &cfg.UI.SlotLines},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"WEEKPLAN_DB_DRIVER", &cfg.Storage.Driver},
		{"WEEKPLAN_DB_PATH", &cfg.Storage.DBPath},
		{"WEEKPLAN_DSN", &cfg.Storage.DSN},
		{"WEEKPLAN_OWNER", &cfg.User.Owner},
		{"WEEKPLAN_UI_THEME", &cfg.UI.Theme},
	}
	for _, e := range strs {
		if v := os.Getenv(e.key); v != "" {
			*e.dst = v
		}
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Week.Validate(); err != nil {
		return fmt.Errorf("week: %w", err)
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.DBPath == "" {
			return errors.New("db_path must be set for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("dsn must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if strings.TrimSpace(c.User.Owner) == "" {
		return errors.New("user owner must be set")
	}
	if c.UI.Theme != "" && !slices.Contains(Themes, c.UI.Theme) {
		return fmt.Errorf("unknown theme %q", c.UI.Theme)
	}
	if c.UI.Color != "" && !isHexColor(c.UI.Color) {
		return fmt.Errorf("color must be #rrggbb, got %q", c.UI.Color)
	}
	if c.UI.SlotLines < 1 || c.UI.SlotLines > 4 {
		return fmt.Errorf("slot_lines must be between 1 and 4, got %d", c.UI.SlotLines)
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}

// SaveTo validates the configuration and writes it to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
