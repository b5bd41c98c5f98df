package miniview

import (
	"fmt"
	"time"
)

// DefaultWindowTitle is the window title used unless one is configured.
// Useful when another program needs to find the window.
const DefaultWindowTitle = "miniview"

// DefaultPollInterval bounds how long a non-lazy window waits for a close
// signal when no native event is pending.
const DefaultPollInterval = 16 * time.Millisecond

// CloseCondition decides, on every loop tick, whether the window should
// close on its own.
type CloseCondition interface {
	ShouldClose() bool
}

// CloseConditionFunc adapts a function to a CloseCondition.
type CloseConditionFunc func() bool

func (f CloseConditionFunc) ShouldClose() bool { return f() }

// CloseAfter returns a CloseCondition that becomes true once d has passed
// since CloseAfter was called.
func CloseAfter(d time.Duration) CloseCondition {
	start := time.Now()
	return CloseConditionFunc(func() bool {
		return time.Since(start) >= d
	})
}

// Config defines how a view is presented. It is immutable; use
// ConfigBuilder to create one.
type Config struct {
	source       Source
	fullscreen   bool
	resizable    bool
	lazyWindow   bool
	exitOnEscape bool
	windowTitle  string
	closeWhen    CloseCondition
	pollInterval time.Duration
}

// Source of the image.
func (c Config) Source() Source { return c.source }

// Fullscreen reports whether the window opens in fullscreen mode.
func (c Config) Fullscreen() bool { return c.fullscreen }

// ResizableWindow reports whether the window may be resized. Fullscreen
// implies a resizable window, otherwise most window managers refuse to
// make the window fullscreen.
func (c Config) ResizableWindow() bool { return c.fullscreen || c.resizable }

// LazyWindow reports whether the window blocks waiting for native events
// instead of polling them. A lazy window only notices a Close once some
// native event wakes it up.
func (c Config) LazyWindow() bool { return c.lazyWindow }

// ExitOnEscape reports whether pressing escape closes the window.
func (c Config) ExitOnEscape() bool { return c.exitOnEscape }

// WindowTitle is the title of the native window.
func (c Config) WindowTitle() string { return c.windowTitle }

// CloseWhen returns the auto-close condition, or nil.
func (c Config) CloseWhen() CloseCondition { return c.closeWhen }

// PollInterval is the idle wait of a non-lazy window between polls.
func (c Config) PollInterval() time.Duration { return c.pollInterval }

func (c Config) String() string {
	return fmt.Sprintf("Config(source = %s, fullscreen = %t, resizable_window = %t, lazy_window = %t, exit_on_escape = %t, window_title = %q, close_when = %t)",
		c.source, c.fullscreen, c.ResizableWindow(), c.lazyWindow, c.exitOnEscape, c.windowTitle, c.closeWhen != nil)
}

// ConfigBuilder assembles a Config. Every setter returns a new builder, so a
// partially configured builder can be shared and extended safely.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a builder with default values for the given source.
func NewConfigBuilder(source Source) ConfigBuilder {
	return ConfigBuilder{
		config: Config{
			source:       source,
			exitOnEscape: true,
			windowTitle:  DefaultWindowTitle,
			pollInterval: DefaultPollInterval,
		},
	}
}

// FromPath creates a builder for an image on the filesystem.
func FromPath(path string) ConfigBuilder {
	return NewConfigBuilder(FromPathSource(path))
}

func (b ConfigBuilder) Source(s Source) ConfigBuilder {
	b.config.source = s
	return b
}

func (b ConfigBuilder) Fullscreen(v bool) ConfigBuilder {
	b.config.fullscreen = v
	return b
}

// AllowResizableWindow allows resizing of the window. The image itself is
// never resized.
func (b ConfigBuilder) AllowResizableWindow(v bool) ConfigBuilder {
	b.config.resizable = v
	return b
}

func (b ConfigBuilder) LazyWindow(v bool) ConfigBuilder {
	b.config.lazyWindow = v
	return b
}

func (b ConfigBuilder) ExitOnEscape(v bool) ConfigBuilder {
	b.config.exitOnEscape = v
	return b
}

func (b ConfigBuilder) WindowTitle(title string) ConfigBuilder {
	b.config.windowTitle = title
	return b
}

// CloseWhen installs an auto-close condition; nil removes it.
func (b ConfigBuilder) CloseWhen(c CloseCondition) ConfigBuilder {
	b.config.closeWhen = c
	return b
}

// PollInterval sets the idle wait of a non-lazy window. Non-positive
// values fall back to DefaultPollInterval.
func (b ConfigBuilder) PollInterval(d time.Duration) ConfigBuilder {
	if d <= 0 {
		d = DefaultPollInterval
	}
	b.config.pollInterval = d
	return b
}

// Build returns the configuration.
func (b ConfigBuilder) Build() Config {
	return b.config
}
