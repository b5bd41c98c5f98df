package config

import "fmt"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies the keys set in raw on top of the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Fullscreen != nil {
		cfg.Fullscreen = *raw.Fullscreen
	}
	if raw.AllowWindowResizing != nil {
		cfg.AllowWindowResizing = *raw.AllowWindowResizing
	}
	if raw.LazyWindow != nil {
		cfg.LazyWindow = *raw.LazyWindow
	}
	if raw.ExitOnEscape != nil {
		v := *raw.ExitOnEscape
		cfg.ExitOnEscape = &v
	}
	if raw.WindowTitle != nil {
		cfg.WindowTitle = *raw.WindowTitle
	}
	if raw.CloseAfterMS != nil {
		cfg.CloseAfterMS = *raw.CloseAfterMS
	}
	if raw.PollIntervalMS != nil {
		cfg.PollIntervalMS = *raw.PollIntervalMS
	}
	if raw.ControlSocket != nil {
		cfg.ControlSocket = *raw.ControlSocket
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}

	return cfg
}
