package mcp

// ShowImageInput is the input for the show_image tool.
type ShowImageInput struct {
	Path         string  `json:"path" jsonschema:"required,Absolute path to the image file to show"`
	Fullscreen   *bool   `json:"fullscreen,omitempty" jsonschema:"Open the window fullscreen (default: from config)"`
	CloseAfterMS int     `json:"close_after_ms,omitempty" jsonschema:"Close the window automatically after this many milliseconds (default: from config; 0 keeps it open)"`
	Title        *string `json:"title,omitempty" jsonschema:"Window title (default: from config)"`
}

// ShowImageOutput is the output for the show_image tool.
type ShowImageOutput struct {
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	State  string `json:"state"`
}

// CloseImageInput is the input for the close_image tool.
type CloseImageInput struct{}

// CloseImageOutput is the output for the close_image tool.
type CloseImageOutput struct {
	Closed bool `json:"closed"`
	// AlreadyClosed is set when the window had been closed by the user
	// before close_image was called.
	AlreadyClosed bool `json:"already_closed,omitempty"`
}

// ImageStatusInput is the input for the image_status tool.
type ImageStatusInput struct{}

// ImageStatusOutput is the output for the image_status tool.
type ImageStatusOutput struct {
	Showing       bool   `json:"showing"`
	State         string `json:"state,omitempty"`
	Path          string `json:"path,omitempty"`
	Title         string `json:"title,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	Frames        uint64 `json:"frames,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds,omitempty"`
}
