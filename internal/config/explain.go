package config

import (
	"fmt"
	"strconv"
)

// Keys lists the configuration keys in the order they are printed.
var Keys = []string{
	"fullscreen",
	"allow_window_resizing",
	"lazy_window",
	"exit_on_escape",
	"window_title",
	"close_after_ms",
	"poll_interval_ms",
	"control_socket",
	"log_level",
}

// Explain returns the effective value of key and where it came from.
func Explain(res *LoadResult, key string) (string, Source, error) {
	if res == nil || res.Config == nil {
		return "", Source{}, fmt.Errorf("no config loaded")
	}
	if key == "" {
		return "", Source{}, fmt.Errorf("key is empty")
	}

	value, err := lookupValue(res.Config, key)
	if err != nil {
		return "", Source{}, err
	}
	if src, ok := res.Sources[key]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, key string) (string, error) {
	switch key {
	case "fullscreen":
		return strconv.FormatBool(cfg.Fullscreen), nil
	case "allow_window_resizing":
		return strconv.FormatBool(cfg.AllowWindowResizing), nil
	case "lazy_window":
		return strconv.FormatBool(cfg.LazyWindow), nil
	case "exit_on_escape":
		return strconv.FormatBool(cfg.GetExitOnEscape()), nil
	case "window_title":
		return strconv.Quote(cfg.WindowTitle), nil
	case "close_after_ms":
		return strconv.Itoa(cfg.CloseAfterMS), nil
	case "poll_interval_ms":
		return strconv.Itoa(cfg.PollIntervalMS), nil
	case "control_socket":
		return strconv.FormatBool(cfg.ControlSocket), nil
	case "log_level":
		return cfg.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// FormatSource renders a source for display, e.g. "config.yaml:3:7" or
// "default".
func FormatSource(src Source) string {
	if src.Kind == SourceFile && src.File != "" {
		return fmt.Sprintf("%s:%d:%d", src.File, src.Line, src.Column)
	}
	return string(SourceDefault)
}
