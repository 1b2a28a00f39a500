package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "tastemap"

// DefaultTargetRestaurants is how many restaurants the data set grows to
// when config does not say otherwise
const DefaultTargetRestaurants = 100

// Language providers
const (
	ProviderGoogle    = "google"
	ProviderAnthropic = "anthropic"
)

// Config holds all application configuration
type Config struct {
	Version    int              `toml:"version"`
	Collection CollectionConfig `toml:"collection"`
	Analysis   AnalysisConfig   `toml:"analysis"`
	Output     OutputConfig     `toml:"output"`
	Schedule   ScheduleConfig   `toml:"schedule"`
	Notify     NotifyConfig     `toml:"notify"`
}

type CollectionConfig struct {
	TargetRestaurants int      `toml:"target_restaurants"`
	Phrases           []string `toml:"phrases"`
	Latitude          float64  `toml:"latitude"`
	Longitude         float64  `toml:"longitude"`
	RadiusMeters      float64  `toml:"radius_meters"`
	DetailDelayMs     int      `toml:"detail_delay_ms"`
	PhraseDelayMs     int      `toml:"phrase_delay_ms"`
	SearchBackoffMs   int      `toml:"search_backoff_ms"`
}

type AnalysisConfig struct {
	Provider     string `toml:"provider"`
	Model        string `toml:"model"`
	BatchSize    int    `toml:"batch_size"`
	BatchDelayMs int    `toml:"batch_delay_ms"`
	LexiconPath  string `toml:"lexicon_path"`
}

type OutputConfig struct {
	DataDir     string `toml:"data_dir"`
	CacheSteps  bool   `toml:"cache_steps"`
	WriteReport bool   `toml:"write_report"`
}

// ScheduleConfig turns on repeated runs. Cron is either "HH:MM" (daily) or
// a cron expression; empty runs once and exits.
type ScheduleConfig struct {
	Cron       string `toml:"cron"`
	Timezone   string `toml:"timezone"`
	RunOnStart bool   `toml:"run_on_start"`
}

// NotifyConfig mails each run report. An empty provider disables it; the
// SMTP password comes from the environment.
type NotifyConfig struct {
	Provider string `toml:"provider"`
	SMTPHost string `toml:"smtp_host"`
	SMTPPort int    `toml:"smtp_port"`
	SMTPUser string `toml:"smtp_user"`
	FromAddr string `toml:"from_address"`
	ToAddr   string `toml:"to_address"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Collection: CollectionConfig{
			TargetRestaurants: DefaultTargetRestaurants,
			Phrases: []string{
				"restaurants",
				"tapas bar",
				"spanish restaurant",
				"cafe",
				"brunch",
				"italian restaurant",
				"japanese restaurant",
				"vegetarian restaurant",
			},
			Latitude:        40.4168,
			Longitude:       -3.7038,
			RadiusMeters:    5000,
			DetailDelayMs:   300,
			PhraseDelayMs:   500,
			SearchBackoffMs: 2000,
		},
		Analysis: AnalysisConfig{
			Provider:     ProviderGoogle,
			Model:        "claude-sonnet-4-20250514",
			BatchSize:    10,
			BatchDelayMs: 500,
		},
		Output: OutputConfig{
			DataDir:     "data",
			CacheSteps:  true,
			WriteReport: true,
		},
		Notify: NotifyConfig{
			SMTPPort: 587,
		},
	}
}

// Validate checks the values a run depends on
func (c *Config) Validate() error {
	if c.Collection.TargetRestaurants < 0 {
		return fmt.Errorf("collection.target_restaurants must not be negative, got %d", c.Collection.TargetRestaurants)
	}
	if len(c.Collection.Phrases) == 0 {
		return errors.New("collection.phrases must not be empty")
	}
	switch c.Analysis.Provider {
	case ProviderGoogle, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown analysis.provider: %q", c.Analysis.Provider)
	}
	if c.Analysis.BatchSize <= 0 {
		return fmt.Errorf("analysis.batch_size must be positive, got %d", c.Analysis.BatchSize)
	}
	if c.Output.DataDir == "" {
		return errors.New("output.data_dir must be set")
	}
	return nil
}

// Millis converts a millisecond config value to a duration
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataPath returns the directory holding the CSV tables. A relative
// output.data_dir is taken relative to ConfigDir, so scheduled runs find
// the same files whatever their working directory.
func (c *Config) DataPath() (string, error) {
	if filepath.IsAbs(c.Output.DataDir) {
		return c.Output.DataDir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Output.DataDir), nil
}

// CacheDir returns the platform-appropriate cache directory.
// On macOS this is ~/Library/Caches/tastemap/
func CacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, appName), nil
}

// Load reads config from disk. Keys missing from the file keep their
// default values.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads config from a specific path
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes config to a specific path
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
