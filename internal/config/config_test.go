package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if !cfg.GetExitOnEscape() {
		t.Fatalf("expected exit_on_escape to default to true")
	}
	if cfg.PollInterval() != 16*time.Millisecond {
		t.Fatalf("expected 16ms poll interval, got %v", cfg.PollInterval())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.Config.WindowTitle != DefaultWindowTitle {
		t.Fatalf("expected default title, got %q", res.Config.WindowTitle)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.CloseAfterMS != 0 || res.Config.Fullscreen {
		t.Fatalf("expected defaults, got %+v", res.Config)
	}
}

func TestLoadFromPath_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"fullscreen: true",
		"exit_on_escape: false",
		"window_title: \"capture-me\"",
		"close_after_ms: 1500",
		"control_socket: true",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if !cfg.Fullscreen || cfg.GetExitOnEscape() || !cfg.ControlSocket {
		t.Fatalf("unexpected toggles: %+v", cfg)
	}
	if cfg.WindowTitle != "capture-me" {
		t.Fatalf("expected title capture-me, got %q", cfg.WindowTitle)
	}
	if cfg.CloseAfter() != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s close delay, got %v", cfg.CloseAfter())
	}
	if cfg.PollIntervalMS != DefaultPollIntervalMS {
		t.Fatalf("expected untouched poll interval, got %d", cfg.PollIntervalMS)
	}
}

func TestLoadFromPath_UnknownKeyFails(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "fulscreen: true\n"))
	if err == nil {
		t.Fatalf("expected unknown key to fail")
	}
	if !strings.Contains(err.Error(), "fulscreen") {
		t.Fatalf("expected error to name the key, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, "window_title: miniview\npoll_interval_ms: 0\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "poll_interval_ms" {
		t.Fatalf("expected poll_interval_ms, got %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected line 2, got %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected position in message, got %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"empty title", func(c *Config) { c.WindowTitle = "" }, "window_title"},
		{"negative close", func(c *Config) { c.CloseAfterMS = -1 }, "close_after_ms"},
		{"huge poll", func(c *Config) { c.PollIntervalMS = 5000 }, "poll_interval_ms"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("expected ValidationError at %q, got %v", tt.path, err)
			}
		})
	}
}

func TestLoadFromPath_Warnings(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "lazy_window: true\nclose_after_ms: 100\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "lazy_window") {
		t.Fatalf("expected lazy_window warning, got %v", res.Warnings)
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, "\nwindow_title: big\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "window_title")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != `"big"` || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("unexpected explain result %q %+v", value, src)
	}

	value, src, err = Explain(res, "exit_on_escape")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != "true" || FormatSource(src) != "default" {
		t.Fatalf("unexpected explain result %q %+v", value, src)
	}

	for _, key := range Keys {
		if _, _, err := Explain(res, key); err != nil {
			t.Fatalf("explain %s: %v", key, err)
		}
	}
	if _, _, err := Explain(res, "hotkey"); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Fullscreen = true
	cfg.CloseAfterMS = 250
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Config.Fullscreen || res.Config.CloseAfterMS != 250 || !res.Config.GetExitOnEscape() {
		t.Fatalf("unexpected config after round trip: %+v", res.Config)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/home/tester/.config/miniview/config.yaml" {
		t.Fatalf("unexpected path %q", path)
	}
}
