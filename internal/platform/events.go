package platform

// Event is a native window event translated into a platform-neutral value.
type Event interface{}

// Expose means (part of) the window has to be repainted.
type Expose struct{}

// Resized is delivered when the window geometry changes.
type Resized struct {
	Width  int
	Height int
}

// KeyPress carries the keycode and its keysym name (e.g. "Escape").
type KeyPress struct {
	Code  uint32
	Label string
}

// CloseRequested is sent when the window manager asks the window to close.
type CloseRequested struct{}

// Destroyed is sent when the native window no longer exists.
type Destroyed struct{}

// Unhandled wraps anything the view does not react to.
type Unhandled struct{}

// KeyEscape is the keysym label of the escape key.
const KeyEscape = "Escape"

// Redraws reports whether ev should cause the cached surface to be painted.
func Redraws(ev Event) bool {
	switch ev.(type) {
	case Expose, Resized:
		return true
	default:
		return false
	}
}

// ClosesWindow reports whether ev is a native request to close the window.
func ClosesWindow(ev Event) bool {
	switch ev.(type) {
	case CloseRequested, Destroyed:
		return true
	default:
		return false
	}
}
