// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Fields are
// pointers so an absent key is distinguishable from a zero value.
type FileConfig struct {
	Practice  PracticeConfig  `toml:"practice"`
	Decks     DecksConfig     `toml:"decks"`
	Scheduler SchedulerConfig `toml:"scheduler"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Deck       *string `toml:"deck"`
	Mode       *string `toml:"mode"`
	ShuffleNew *bool   `toml:"shuffle-new"`
}

// DecksConfig maps default settings applied when a deck is created.
type DecksConfig struct {
	NewPerDay       *int     `toml:"new-per-day"`
	ReviewsPerDay   *int     `toml:"reviews-per-day"`
	MicroSession    *int     `toml:"micro-session"`
	Retention       *float64 `toml:"retention"`
	MaxIntervalDays *int     `toml:"max-interval-days"`
}

// SchedulerConfig maps scheduler tuning.
type SchedulerConfig struct {
	Fuzz *bool `toml:"fuzz"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
