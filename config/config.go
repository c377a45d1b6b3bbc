package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the parameters of one freshening run. Values left out of the
// YAML file keep their defaults; CLI flags override loaded values.
type Config struct {
	LogLevel int `yaml:"log_level"`

	// Library is the path of the iTunes library export. Empty means probe
	// the standard locations.
	Library string `yaml:"library"`

	// Target is the device mount path music is copied to.
	Target string `yaml:"target"`

	// Playlist scopes additions to one playlist. Empty means the whole
	// library.
	Playlist string `yaml:"playlist"`

	// Ratio is the fraction of device tracks replaced per run, in [0, 1].
	Ratio float64 `yaml:"ratio"`

	// Extensions are the filename extensions treated as music files.
	Extensions []string `yaml:"extensions"`

	// MinFreeMB is the amount of free space to leave on the device.
	MinFreeMB int64 `yaml:"min_free_mb"`

	// MaxSizeMB caps the total size of the music collection on the device.
	// Zero means no cap.
	MaxSizeMB int64 `yaml:"max_size_mb"`

	// InitialFill is how many tracks to copy when the device holds none.
	InitialFill int `yaml:"initial_fill"`

	History HistoryConfig `yaml:"history"`
}

// HistoryConfig controls the recently-removed bookkeeping that stops a
// freshly removed track from being re-added right away.
type HistoryConfig struct {
	// Path of the history file. Empty disables history.
	Path string `yaml:"path"`

	// WindowDays is how long a removed track stays excluded.
	WindowDays int `yaml:"window_days"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Ratio:       0.33,
		Extensions:  []string{".mp3", ".aiff", ".m4a", ".aac", ".wav", ".ogg"},
		MinFreeMB:   100,
		InitialFill: 50,
		History: HistoryConfig{
			WindowDays: 30,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the parameters a run cannot proceed without.
func (c *Config) Validate() error {
	if c.Target == "" {
		return fmt.Errorf("no target device path configured")
	}
	if c.Ratio < 0 || c.Ratio > 1 {
		return fmt.Errorf("ratio must be between 0 and 1, got %g", c.Ratio)
	}
	if c.MinFreeMB < 0 {
		return fmt.Errorf("min_free_mb must not be negative")
	}
	if c.MaxSizeMB < 0 {
		return fmt.Errorf("max_size_mb must not be negative")
	}
	if c.InitialFill < 0 {
		return fmt.Errorf("initial_fill must not be negative")
	}
	return nil
}
