// Package config loads game settings from an optional YAML file and
// BBB_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
)

const (
	// DefaultSpeed is the rise speed the arcade easy level uses.
	DefaultSpeed = 0x47
	// FallAnimationFrames is how long a landed panel bounces.
	FallAnimationFrames = 3
)

// Presets are the built-in difficulty levels. Easy matches the timings
// recorded from the arcade cartridge.
var Presets = map[string]game.SpeedSettings{
	"easy":   {Swap: 4, Hover: 11, Fall: 1, Flash: 45, Face: 25, Pop: 9, FallAnimation: FallAnimationFrames},
	"normal": {Swap: 3, Hover: 9, Fall: 1, Flash: 37, Face: 20, Pop: 8, FallAnimation: FallAnimationFrames},
	"hard":   {Swap: 3, Hover: 6, Fall: 1, Flash: 28, Face: 16, Pop: 7, FallAnimation: FallAnimationFrames},
}

// Config controls a play session.
type Config struct {
	Rows       int    `yaml:"rows" env:"BBB_ROWS"`
	Columns    int    `yaml:"columns" env:"BBB_COLUMNS"`
	Colors     int    `yaml:"colors" env:"BBB_COLORS"`
	StartRows  int    `yaml:"start_rows" env:"BBB_START_ROWS"`
	Speed      int    `yaml:"speed" env:"BBB_SPEED"`
	Mode       string `yaml:"mode" env:"BBB_MODE"`
	Difficulty string `yaml:"difficulty" env:"BBB_DIFFICULTY"`
	// Settings overrides the difficulty preset unless left zero.
	Settings game.SpeedSettings `yaml:"settings"`

	LogPath     string `yaml:"log" env:"BBB_LOG"`
	LogLevel    string `yaml:"log_level" env:"BBB_LOG_LEVEL"`
	RecordsPath string `yaml:"records" env:"BBB_RECORDS"`
	DataDir     string `yaml:"data_dir" env:"BBB_DATA_DIR"`
}

func DefaultConfig() Config {
	return Config{
		Rows:       12,
		Columns:    6,
		Colors:     5,
		StartRows:  6,
		Speed:      DefaultSpeed,
		Mode:       "endless",
		Difficulty: "easy",
		LogLevel:   "info",
	}
}

// Load starts from the defaults, applies the YAML file at path (when path
// is non-empty) and then the environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects out-of-range values and fills empty optional fields.
func (c *Config) Validate() error {
	if c.Rows < 3 || c.Rows > 24 {
		return fmt.Errorf("rows must be between 3 and 24, got %d", c.Rows)
	}
	if c.Columns < 3 || c.Columns > 12 {
		return fmt.Errorf("columns must be between 3 and 12, got %d", c.Columns)
	}
	if c.Colors < 3 || c.Colors > game.ColorCount {
		return fmt.Errorf("colors must be between 3 and %d, got %d", game.ColorCount, c.Colors)
	}
	if c.StartRows < 0 || c.StartRows > c.Rows {
		return fmt.Errorf("start_rows must be between 0 and %d, got %d", c.Rows, c.StartRows)
	}
	if c.Speed < 0 {
		return fmt.Errorf("speed must be >= 0, got %d", c.Speed)
	}
	switch c.Mode {
	case "", "endless", "score":
	default:
		return fmt.Errorf("invalid mode %q", c.Mode)
	}
	if c.Mode == "" {
		c.Mode = "endless"
	}
	if c.Difficulty == "" {
		c.Difficulty = "easy"
	}
	if _, ok := Presets[c.Difficulty]; !ok && !c.customSettings() {
		return fmt.Errorf("unknown difficulty %q (have %v)", c.Difficulty, Difficulties())
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.DataDir = filepath.Join(home, ".local", "share", "bottomless-block-barrage")
	}
	if c.RecordsPath == "" {
		c.RecordsPath = filepath.Join(c.DataDir, "records.db")
	}
	return nil
}

func validateSettings(s game.SpeedSettings) error {
	for name, v := range map[string]int{
		"swap": s.Swap, "hover": s.Hover, "fall": s.Fall, "flash": s.Flash,
		"face": s.Face, "pop": s.Pop, "fall_animation": s.FallAnimation,
	} {
		if v < 0 {
			return fmt.Errorf("settings.%s must be >= 0, got %d", name, v)
		}
	}
	return nil
}

// SpeedSettings resolves the panel timings for this config.
func (c Config) SpeedSettings() game.SpeedSettings {
	if c.customSettings() {
		return c.Settings
	}
	return Presets[c.Difficulty]
}

func (c Config) customSettings() bool {
	return c.Settings != game.SpeedSettings{}
}

// BoardType maps Mode to the board rules.
func (c Config) BoardType() game.BoardType {
	if c.Mode == "score" {
		return game.Score
	}
	return game.Endless
}

// Difficulties lists the preset names in a stable order.
func Difficulties() []string {
	out := make([]string, 0, len(Presets))
	for name := range Presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
