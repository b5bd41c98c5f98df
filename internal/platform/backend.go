package platform

import "image"

// WindowOptions describes the native window a view asks for.
type WindowOptions struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	Resizable  bool
}

// Surface is an image that has been uploaded to the window system and can
// be painted without further conversion.
type Surface interface {
	Bounds() image.Rectangle
}

// Window is a single native window owned by exactly one goroutine.
type Window interface {
	// Upload maps the decoded image to a renderable surface. It is called
	// once, right after the window has been opened.
	Upload(img *image.RGBA) (Surface, error)
	// NextEvent blocks until the next native event arrives. It reports
	// false once the native connection is gone.
	NextEvent() (Event, bool)
	// PollEvent returns the next pending event without blocking. Once the
	// native connection is gone it keeps returning Destroyed.
	PollEvent() (Event, bool)
	Draw(s Surface)
	// RequestClose tears the window down. Calling it again is a no-op.
	RequestClose()
}

// Backend abstracts native window creation.
type Backend interface {
	Open(opts WindowOptions) (Window, error)
}
