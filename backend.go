package miniview

import "github.com/1broseidon/miniview/internal/platform"

// Window backend types, re-exported so that callers can plug in their own
// window system through WithBackend.
type (
	Backend       = platform.Backend
	Window        = platform.Window
	WindowOptions = platform.WindowOptions
	Surface       = platform.Surface
	Event         = platform.Event

	Expose         = platform.Expose
	Resized        = platform.Resized
	KeyPress       = platform.KeyPress
	CloseRequested = platform.CloseRequested
	Destroyed      = platform.Destroyed
)
