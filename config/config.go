package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cyp0633/calrecur/recurrence"
	"github.com/cyp0633/calrecur/reminder"
)

// RecurrenceConfig bounds rule expansion.
type RecurrenceConfig struct {
	// MaxInstances caps generated instances when a caller passes no limit.
	MaxInstances int `yaml:"max_instances"`
	// MaxIterations caps candidates examined per expansion.
	MaxIterations int `yaml:"max_iterations"`
}

// CacheConfig tunes the weather and traffic caches.
type CacheConfig struct {
	TTLMinutes             int `yaml:"ttl_minutes"`
	MaxEntries             int `yaml:"max_entries"`
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`
}

// ReminderConfig overrides selected reminder policy knobs. Everything not
// listed here keeps the built-in policy value.
type ReminderConfig struct {
	AverageSpeedKmh             float64     `yaml:"average_speed_kmh"`
	SevereTrafficAdvanceMinutes int         `yaml:"severe_traffic_advance_minutes"`
	MeetingKeywords             []string    `yaml:"meeting_keywords"`
	BusyActivities              []string    `yaml:"busy_activities"`
	Cache                       CacheConfig `yaml:"cache"`
}

// Config is the top-level configuration of the calrecur tools.
type Config struct {
	// Locale selects the wording of rule descriptions ("en" or "pt-BR").
	Locale string `yaml:"locale"`

	// Timezone is the IANA zone used for dates given without an offset.
	Timezone string `yaml:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Recurrence RecurrenceConfig `yaml:"recurrence"`
	Reminder   ReminderConfig   `yaml:"reminder"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	policy := reminder.DefaultPolicy
	return &Config{
		Locale:   recurrence.DefaultLocale,
		Timezone: "UTC",
		LogLevel: "info",
		Recurrence: RecurrenceConfig{
			MaxInstances:  recurrence.DefaultEngineConfig.MaxInstances,
			MaxIterations: recurrence.DefaultEngineConfig.MaxIterations,
		},
		Reminder: ReminderConfig{
			AverageSpeedKmh:             policy.AverageSpeedKmh,
			SevereTrafficAdvanceMinutes: int(policy.SevereTrafficAdvance / time.Minute),
			MeetingKeywords:             append([]string(nil), policy.MeetingKeywords...),
			BusyActivities:              append([]string(nil), policy.BusyActivities...),
			Cache: CacheConfig{
				TTLMinutes:             int(reminder.DefaultCacheConfig.TTL / time.Minute),
				MaxEntries:             reminder.DefaultCacheConfig.MaxEntries,
				CleanupIntervalMinutes: int(reminder.DefaultCacheConfig.CleanupInterval / time.Minute),
			},
		},
	}
}

// Normalize fills in missing or invalid values with defaults so that
// partially-filled files still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if !recurrence.SupportsLocale(c.Locale) {
		c.Locale = def.Locale
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = def.LogLevel
	}

	if c.Recurrence.MaxInstances <= 0 {
		c.Recurrence.MaxInstances = def.Recurrence.MaxInstances
	}
	if c.Recurrence.MaxIterations <= 0 {
		c.Recurrence.MaxIterations = def.Recurrence.MaxIterations
	}

	if c.Reminder.AverageSpeedKmh <= 0 {
		c.Reminder.AverageSpeedKmh = def.Reminder.AverageSpeedKmh
	}
	if c.Reminder.SevereTrafficAdvanceMinutes <= 0 {
		c.Reminder.SevereTrafficAdvanceMinutes = def.Reminder.SevereTrafficAdvanceMinutes
	}
	if c.Reminder.MeetingKeywords == nil {
		c.Reminder.MeetingKeywords = def.Reminder.MeetingKeywords
	}
	if c.Reminder.BusyActivities == nil {
		c.Reminder.BusyActivities = def.Reminder.BusyActivities
	}
	if c.Reminder.Cache.TTLMinutes <= 0 {
		c.Reminder.Cache.TTLMinutes = def.Reminder.Cache.TTLMinutes
	}
	if c.Reminder.Cache.MaxEntries <= 0 {
		c.Reminder.Cache.MaxEntries = def.Reminder.Cache.MaxEntries
	}
	if c.Reminder.Cache.CleanupIntervalMinutes < 0 {
		c.Reminder.Cache.CleanupIntervalMinutes = 0
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EngineConfig builds the recurrence engine configuration.
func (c *Config) EngineConfig(logger *slog.Logger) recurrence.EngineConfig {
	return recurrence.EngineConfig{
		MaxInstances:  c.Recurrence.MaxInstances,
		MaxIterations: c.Recurrence.MaxIterations,
		Logger:        logger,
	}
}

// Policy builds the reminder policy: the built-in policy with the
// configured overrides applied.
func (c *Config) Policy() reminder.Policy {
	p := reminder.DefaultPolicy
	p.AverageSpeedKmh = c.Reminder.AverageSpeedKmh
	p.SevereTrafficAdvance = time.Duration(c.Reminder.SevereTrafficAdvanceMinutes) * time.Minute
	p.MeetingKeywords = append([]string(nil), c.Reminder.MeetingKeywords...)
	p.BusyActivities = append([]string(nil), c.Reminder.BusyActivities...)
	return p
}

// CacheConfig builds the context cache configuration.
func (c *Config) CacheConfig() reminder.CacheConfig {
	return reminder.CacheConfig{
		TTL:             time.Duration(c.Reminder.Cache.TTLMinutes) * time.Minute,
		MaxEntries:      c.Reminder.Cache.MaxEntries,
		CleanupInterval: time.Duration(c.Reminder.Cache.CleanupIntervalMinutes) * time.Minute,
	}
}

// Load reads configuration from the given YAML path. A missing file yields
// the defaults; it is not created.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file and rename. The file
// is created with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calrecur-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
