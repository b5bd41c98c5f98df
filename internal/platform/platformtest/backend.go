// Package platformtest provides a scripted, in-memory window backend.
package platformtest

import (
	"errors"
	"image"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/miniview/internal/platform"
)

// Backend opens Windows whose events are fed by the test through Send.
type Backend struct {
	// OpenErr and UploadErr make the corresponding step fail.
	OpenErr   error
	UploadErr error
	// PanicOnUpload makes Upload panic with the given value when non-nil.
	PanicOnUpload any

	mu      sync.Mutex
	windows []*Window
	opened  chan *Window
}

var _ platform.Backend = (*Backend)(nil)

// NewBackend returns a backend with no failures configured.
func NewBackend() *Backend {
	return &Backend{opened: make(chan *Window, 8)}
}

// Open records the options and returns a new scripted window.
func (b *Backend) Open(opts platform.WindowOptions) (platform.Window, error) {
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	w := &Window{
		Options: opts,
		events:  make(chan platform.Event, 64),
		backend: b,
	}
	b.mu.Lock()
	b.windows = append(b.windows, w)
	b.mu.Unlock()
	if b.opened != nil {
		select {
		case b.opened <- w:
		default:
		}
	}
	return w, nil
}

// Opened delivers every window as it is opened.
func (b *Backend) Opened() <-chan *Window {
	return b.opened
}

// Windows returns the windows opened so far.
func (b *Backend) Windows() []*Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Window, len(b.windows))
	copy(out, b.windows)
	return out
}

// Window is a scripted platform.Window.
type Window struct {
	Options platform.WindowOptions

	backend    *Backend
	events     chan platform.Event
	closeOnce  sync.Once
	draws      atomic.Int64
	uploads    atomic.Int64
	closeCalls atomic.Int64
	closed     atomic.Bool
}

type surface struct {
	bounds image.Rectangle
}

func (s surface) Bounds() image.Rectangle { return s.bounds }

// Send queues a native event for the window.
func (w *Window) Send(ev platform.Event) {
	w.events <- ev
}

// Disconnect simulates the native connection going away.
func (w *Window) Disconnect() {
	w.closeOnce.Do(func() { close(w.events) })
}

func (w *Window) Upload(img *image.RGBA) (platform.Surface, error) {
	w.uploads.Add(1)
	if w.backend.PanicOnUpload != nil {
		panic(w.backend.PanicOnUpload)
	}
	if w.backend.UploadErr != nil {
		return nil, w.backend.UploadErr
	}
	if img == nil {
		return nil, errors.New("nil image")
	}
	return surface{bounds: img.Bounds()}, nil
}

func (w *Window) NextEvent() (platform.Event, bool) {
	ev, ok := <-w.events
	return ev, ok
}

func (w *Window) PollEvent() (platform.Event, bool) {
	select {
	case ev, ok := <-w.events:
		if !ok {
			return platform.Destroyed{}, true
		}
		return ev, true
	default:
		return nil, false
	}
}

func (w *Window) Draw(platform.Surface) {
	w.draws.Add(1)
}

// RequestClose counts every call and marks the window closed.
func (w *Window) RequestClose() {
	w.closeCalls.Add(1)
	w.closed.Store(true)
}

// Draws returns how many times Draw was called.
func (w *Window) Draws() int64 { return w.draws.Load() }

// Uploads returns how many times Upload was called.
func (w *Window) Uploads() int64 { return w.uploads.Load() }

// CloseCalls returns how many times RequestClose was called.
func (w *Window) CloseCalls() int64 { return w.closeCalls.Load() }

// Closed reports whether RequestClose has been called.
func (w *Window) Closed() bool { return w.closed.Load() }
