package config

// RawConfig mirrors Config with optional fields, so that a file can set
// only the keys it cares about.
type RawConfig struct {
	Fullscreen          *bool   `yaml:"fullscreen"`
	AllowWindowResizing *bool   `yaml:"allow_window_resizing"`
	LazyWindow          *bool   `yaml:"lazy_window"`
	ExitOnEscape        *bool   `yaml:"exit_on_escape"`
	WindowTitle         *string `yaml:"window_title"`
	CloseAfterMS        *int    `yaml:"close_after_ms"`
	PollIntervalMS      *int    `yaml:"poll_interval_ms"`
	ControlSocket       *bool   `yaml:"control_socket"`
	LogLevel            *string `yaml:"log_level"`
}
