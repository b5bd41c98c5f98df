package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the defaults applied to every view started from the command
// line. Flags given on the command line override them.
type Config struct {
	Fullscreen          bool   `yaml:"fullscreen"`
	AllowWindowResizing bool   `yaml:"allow_window_resizing"`
	LazyWindow          bool   `yaml:"lazy_window"`
	ExitOnEscape        *bool  `yaml:"exit_on_escape"`
	WindowTitle         string `yaml:"window_title"`

	// CloseAfterMS closes every window after the given number of
	// milliseconds. 0 keeps windows open until closed.
	CloseAfterMS int `yaml:"close_after_ms"`

	// PollIntervalMS is the idle wait of a non-lazy window.
	PollIntervalMS int `yaml:"poll_interval_ms"`

	// ControlSocket starts the control server for every view, so that
	// `miniview close` and `miniview status` can reach it.
	ControlSocket bool `yaml:"control_socket"`

	LogLevel string `yaml:"log_level"`
}

const (
	DefaultWindowTitle    = "miniview"
	DefaultPollIntervalMS = 16
)

func DefaultConfig() *Config {
	exitOnEscape := true
	return &Config{
		ExitOnEscape:   &exitOnEscape,
		WindowTitle:    DefaultWindowTitle,
		PollIntervalMS: DefaultPollIntervalMS,
		LogLevel:       "info",
	}
}

// GetExitOnEscape returns whether escape closes the window (default: true).
func (c *Config) GetExitOnEscape() bool {
	if c.ExitOnEscape == nil {
		return true
	}
	return *c.ExitOnEscape
}

// CloseAfter returns the auto-close delay, or 0 when windows stay open.
func (c *Config) CloseAfter() time.Duration {
	return time.Duration(c.CloseAfterMS) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.WindowTitle == "" {
		return &ValidationError{Path: "window_title", Err: fmt.Errorf("window_title must not be empty")}
	}
	if c.CloseAfterMS < 0 {
		return &ValidationError{Path: "close_after_ms", Err: fmt.Errorf("close_after_ms must be >= 0")}
	}
	if c.PollIntervalMS < 1 || c.PollIntervalMS > 1000 {
		return &ValidationError{Path: "poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be between 1 and 1000")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// validationWarnings reports settings that are valid but probably not what
// the user meant.
func (c *Config) validationWarnings() []string {
	var warnings []string
	if c.LazyWindow && c.CloseAfterMS > 0 {
		warnings = append(warnings, "lazy_window is ignored when close_after_ms is set; windows poll so that they can close on time")
	}
	if c.Fullscreen && c.AllowWindowResizing {
		warnings = append(warnings, "allow_window_resizing is implied by fullscreen")
	}
	return warnings
}
