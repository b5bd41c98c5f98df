// Package miniview shows a single image in a native window.
//
// The window runs its own event loop on a dedicated goroutine locked to an
// OS thread. Show returns a *View which can be used to close the window
// (Close), to wait until the user closes it (WaitForExit), or which can
// simply be dropped: the window then stays open until it is closed by the
// user, the escape key or the configured CloseCondition.
//
//	cfg := miniview.FromPath("plant.jpg").Fullscreen(true).Build()
//	view, err := miniview.Show(cfg)
//	if err != nil {
//		return err
//	}
//	time.Sleep(time.Second)
//	return view.Close()
package miniview

import (
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/1broseidon/miniview/internal/platform"
	"github.com/1broseidon/miniview/internal/x11"
)

// State is the lifecycle state of the window owned by a view.
type State int32

const (
	StateOpen State = iota
	StateClosing
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type command int

const commandClose command = iota

// Option customizes Show.
type Option func(*options)

type options struct {
	backend platform.Backend
	logger  *slog.Logger
}

// WithBackend replaces the native window backend (X11 by default).
func WithBackend(b Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// noCopy makes go vet flag copies of a View.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Info is a snapshot of a running view.
type Info struct {
	Source    string
	Title     string
	Width     int
	Height    int
	State     State
	Frames    int64
	StartedAt time.Time
}

// View controls a window shown by Show. A View corresponds to exactly one
// worker and is consumed by Close or WaitForExit.
type View struct {
	noCopy noCopy

	commands chan command
	done     chan struct{}
	err      error // written by the worker before done is closed

	state    atomic.Int32
	frames   atomic.Int64
	consumed atomic.Bool

	source    string
	title     string
	size      image.Point
	startedAt time.Time
	logger    *slog.Logger
}

// Show loads the image of cfg and opens a window for it on a new worker.
// Loading happens on the calling goroutine; a failure to load is returned
// here and no worker is started. Failures of the window itself are
// reported by Close or WaitForExit.
func Show(cfg Config, opts ...Option) (*View, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.backend == nil {
		o.backend = x11.NewBackend(o.logger)
	}

	img, err := cfg.source.resolve()
	if err != nil {
		return nil, err
	}

	v := &View{
		commands:  make(chan command),
		done:      make(chan struct{}),
		source:    cfg.source.String(),
		title:     cfg.windowTitle,
		size:      img.Bounds().Size(),
		startedAt: time.Now(),
		logger:    o.logger,
	}
	w := &worker{
		view:     v,
		cfg:      cfg,
		backend:  o.backend,
		img:      img,
		commands: v.commands,
		logger:   o.logger,
	}

	v.logger.Debug("starting view", "source", cfg.source.String(), "width", v.size.X, "height", v.size.Y)
	go v.run(w)
	return v, nil
}

// Run shows the image and blocks until the window has been closed.
func Run(cfg Config, opts ...Option) error {
	v, err := Show(cfg, opts...)
	if err != nil {
		return err
	}
	return v.WaitForExit()
}

func (v *View) run(w *worker) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(v.done)
	defer func() {
		if r := recover(); r != nil {
			v.setState(StateFailed)
			v.err = fmt.Errorf("%w: panic: %v", ErrJoinFailed, r)
			v.logger.Error("view worker panicked", "panic", r)
		}
	}()

	v.err = w.run()
}

// Close signals the window to close and waits until the worker has
// exited. An error produced by the worker takes precedence; otherwise
// ErrSendFailed is returned when the worker had already exited before the
// signal could be delivered.
func (v *View) Close() error {
	if !v.consumed.CompareAndSwap(false, true) {
		return ErrViewConsumed
	}

	var sendErr error
	select {
	case v.commands <- commandClose:
	case <-v.done:
		sendErr = ErrSendFailed
	}

	if err := v.join(); err != nil {
		return err
	}
	return sendErr
}

// WaitForExit blocks until the window is closed by the user, the escape
// key or the close condition, without asking it to close.
func (v *View) WaitForExit() error {
	if !v.consumed.CompareAndSwap(false, true) {
		return ErrViewConsumed
	}
	return v.join()
}

func (v *View) join() error {
	<-v.done
	return v.err
}

// Done is closed once the worker has exited. It does not consume the view.
func (v *View) Done() <-chan struct{} {
	return v.done
}

// State returns the current window state.
func (v *View) State() State {
	return State(v.state.Load())
}

func (v *View) setState(s State) {
	v.state.Store(int32(s))
}

// Info returns a snapshot of the view.
func (v *View) Info() Info {
	return Info{
		Source:    v.source,
		Title:     v.title,
		Width:     v.size.X,
		Height:    v.size.Y,
		State:     v.State(),
		Frames:    v.frames.Load(),
		StartedAt: v.startedAt,
	}
}
