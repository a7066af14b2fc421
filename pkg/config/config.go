package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/titanous/json5"

	"github.com/user/log-console-tui/pkg/console"
	"github.com/user/log-console-tui/pkg/models"
)

const (
	appName  = "log-console-tui"
	fileName = "config.json5"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config represents application configuration
type Config struct {
	MaxNum                 int      `json:"maxNum"`
	AsyncRender            bool     `json:"asyncRender"`
	ShowHeader             bool     `json:"showHeader"`
	Levels                 []string `json:"levels"`
	Filter                 string   `json:"filter,omitempty"`
	LowPower               bool     `json:"lowPower"`
	ToleranceFactor        float64  `json:"toleranceFactor,omitempty"`
	MinTolerance           int      `json:"minTolerance,omitempty"`
	MaxTolerance           int      `json:"maxTolerance,omitempty"`
	DefaultWindowTolerance int      `json:"defaultWindowTolerance"`
	FrameIntervalMs        int      `json:"frameIntervalMs"`
	TimeFormat             string   `json:"timeFormat"`
	VimMode                bool     `json:"vimMode"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		MaxNum:                 0,
		AsyncRender:            true,
		ShowHeader:             false,
		Levels:                 []string{"verbose", "info", "warning", "error"},
		DefaultWindowTolerance: console.TerminalWindowTolerance,
		FrameIntervalMs:        16,
		TimeFormat:             "15:04:05",
		VimMode:                true,
	}
}

// GetConfigDir returns the XDG config directory for log-console-tui
func GetConfigDir() (string, error) {
	var configDir string

	// Try XDG_CONFIG_HOME first
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		configDir = filepath.Join(xdgHome, appName)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", appName)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}

	return configDir, nil
}

// DefaultPath is the config file inside GetConfigDir
func DefaultPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// LoadConfig loads configuration from the default path, returns default if
// the file doesn't exist
func LoadConfig() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFile(path)
}

// LoadFile reads a JSON5 config file. Fields missing from the file keep
// their defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// SaveConfig saves configuration to the default path
func SaveConfig(cfg Config) error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as indented JSON, which JSON5 readers accept
func SaveFile(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Validate rejects negative sizes, unknown levels and bad filter patterns
func (c Config) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"maxNum", c.MaxNum},
		{"minTolerance", c.MinTolerance},
		{"maxTolerance", c.MaxTolerance},
		{"defaultWindowTolerance", c.DefaultWindowTolerance},
		{"frameIntervalMs", c.FrameIntervalMs},
	}
	for _, check := range checks {
		if check.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, check.name)
		}
	}
	if c.ToleranceFactor < 0 {
		return fmt.Errorf("%w: toleranceFactor must not be negative", ErrInvalidConfig)
	}
	if c.MaxTolerance > 0 && c.MinTolerance > c.MaxTolerance {
		return fmt.Errorf("%w: minTolerance %d exceeds maxTolerance %d", ErrInvalidConfig, c.MinTolerance, c.MaxTolerance)
	}
	if _, err := c.levels(); err != nil {
		return err
	}
	if _, err := ParseFilter(c.Filter); err != nil {
		return err
	}
	return nil
}

func (c Config) levels() ([]models.Level, error) {
	out := make([]models.Level, 0, len(c.Levels))
	for _, name := range c.Levels {
		level, err := models.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		out = append(out, level)
	}
	return out, nil
}

// ParseFilter reads a filter string: /pattern/ is a regular expression,
// anything else a case-insensitive substring.
func ParseFilter(s string) (models.FilterSpec, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return models.NoFilter(), fmt.Errorf("%w: filter: %v", ErrInvalidConfig, err)
		}
		return models.PatternFilter(re), nil
	}
	return models.TextFilter(s), nil
}

// Tolerance returns the scroll tolerance in rows: the terminal low power
// preset or the terminal default, with explicit fields overriding either.
func (c Config) Tolerance() console.Tolerance {
	tol := console.TerminalTolerance()
	if c.LowPower {
		tol = console.TerminalLowPowerTolerance()
	}
	if c.ToleranceFactor > 0 {
		tol.Factor = c.ToleranceFactor
	}
	if c.MinTolerance > 0 {
		tol.Min = c.MinTolerance
	}
	if c.MaxTolerance > 0 {
		tol.Max = c.MaxTolerance
	}
	if tol.Min > tol.Max {
		tol.Max = tol.Min
	}
	return tol
}

// FrameInterval is the terminal host's frame period
func (c Config) FrameInterval() time.Duration {
	if c.FrameIntervalMs <= 0 {
		return 16 * time.Millisecond
	}
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

// ConsoleOptions converts the configuration into engine options
func (c Config) ConsoleOptions() (console.Options, error) {
	if err := c.Validate(); err != nil {
		return console.Options{}, err
	}
	levels, _ := c.levels()
	if len(levels) == 0 {
		levels = append([]models.Level(nil), models.AllLevels...)
	}
	filter, _ := ParseFilter(c.Filter)

	opts := console.TerminalOptions()
	opts.MaxNum = c.MaxNum
	opts.AsyncRender = c.AsyncRender
	opts.ShowHeader = c.ShowHeader
	opts.Levels = levels
	opts.Filter = filter
	opts.Tolerance = c.Tolerance()
	if c.DefaultWindowTolerance > 0 {
		opts.WindowTolerance = c.DefaultWindowTolerance
	}
	if c.TimeFormat != "" {
		opts.TimeFormat = c.TimeFormat
	}
	return opts, nil
}
