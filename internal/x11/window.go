package x11

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/miniview/internal/platform"
)

const windowEventMask = xproto.EventMaskExposure |
	xproto.EventMaskKeyPress |
	xproto.EventMaskStructureNotify

// Backend opens image windows on the X server named by $DISPLAY. Every
// window gets its own connection so that it can be driven from its own
// goroutine.
type Backend struct {
	logger *slog.Logger
}

var _ platform.Backend = (*Backend)(nil)

// NewBackend creates an X11 window backend.
func NewBackend(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

// Open connects to the X server and maps a new top-level window.
func (b *Backend) Open(opts platform.WindowOptions) (platform.Window, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", opts.Width, opts.Height)
	}

	conn, err := NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	w, err := newWindow(conn, opts, b.logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return w, nil
}

// Window is a top-level X11 window showing a single image.
type Window struct {
	conn      *Connection
	win       *xwindow.Window
	deleteMsg xproto.Atom
	logger    *slog.Logger

	ximg      *xgraphics.Image
	closeOnce sync.Once

	// events is fed by pump and closed once the connection is gone.
	events chan xevent
	quit   chan struct{}
}

type xevent struct {
	ev  xgb.Event
	err xgb.Error
}

var _ platform.Window = (*Window)(nil)

func newWindow(conn *Connection, opts platform.WindowOptions, logger *slog.Logger) (*Window, error) {
	xu := conn.XUtil

	win, err := xwindow.Generate(xu)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	x, y := 0, 0
	if mon, err := conn.ActiveMonitor(); err == nil {
		x, y = centerIn(*mon, opts.Width, opts.Height)
	} else {
		logger.Debug("no active monitor, placing window at origin", "error", err)
	}

	err = win.CreateChecked(conn.Root, x, y, opts.Width, opts.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		0x000000, windowEventMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	deleteMsg, err := xprop.Atm(xu, "WM_DELETE_WINDOW")
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to intern WM_DELETE_WINDOW: %w", err)
	}
	if err := icccm.WmProtocolsSet(xu, win.Id, []string{"WM_DELETE_WINDOW"}); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to set WM_PROTOCOLS: %w", err)
	}

	// Titles are best effort; a missing title does not stop the window.
	if err := ewmh.WmNameSet(xu, win.Id, opts.Title); err != nil {
		logger.Debug("failed to set _NET_WM_NAME", "error", err)
	}
	if err := icccm.WmNameSet(xu, win.Id, opts.Title); err != nil {
		logger.Debug("failed to set WM_NAME", "error", err)
	}

	if !opts.Resizable {
		hints := &icccm.NormalHints{
			Flags:     icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize,
			MinWidth:  uint(opts.Width),
			MinHeight: uint(opts.Height),
			MaxWidth:  uint(opts.Width),
			MaxHeight: uint(opts.Height),
		}
		if err := icccm.WmNormalHintsSet(xu, win.Id, hints); err != nil {
			logger.Debug("failed to set size hints", "error", err)
		}
	}

	if opts.Fullscreen {
		if err := ewmh.WmStateSet(xu, win.Id, []string{"_NET_WM_STATE_FULLSCREEN"}); err != nil {
			logger.Debug("failed to request fullscreen", "error", err)
		}
	}

	win.Map()

	w := &Window{
		conn:      conn,
		win:       win,
		deleteMsg: deleteMsg,
		logger:    logger,
		events:    make(chan xevent, 64),
		quit:      make(chan struct{}),
	}
	go w.pump()
	return w, nil
}

// pump moves events off the connection. xgb reports an empty queue and a
// closed connection the same way from PollForEvent, so polling goes
// through this channel instead.
func (w *Window) pump() {
	defer close(w.events)
	conn := w.conn.XUtil.Conn()
	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			w.logger.Debug("X11 connection closed")
			return
		}
		select {
		case w.events <- xevent{ev: ev, err: xerr}:
		case <-w.quit:
			return
		}
	}
}

type surface struct {
	ximg *xgraphics.Image
}

func (s surface) Bounds() image.Rectangle { return s.ximg.Bounds() }

// Upload converts the image to the X server's pixel format and installs it
// as the window background, so the server can repaint it on its own.
func (w *Window) Upload(img *image.RGBA) (platform.Surface, error) {
	ximg := xgraphics.NewConvert(w.conn.XUtil, img)
	if err := ximg.XSurfaceSet(w.win.Id); err != nil {
		ximg.Destroy()
		return nil, fmt.Errorf("failed to create pixmap: %w", err)
	}
	ximg.XDraw()
	ximg.XPaint(w.win.Id)

	w.ximg = ximg
	return surface{ximg: ximg}, nil
}

func (w *Window) NextEvent() (platform.Event, bool) {
	xe, ok := <-w.events
	if !ok {
		return nil, false
	}
	return w.translate(xe.ev, xe.err), true
}

func (w *Window) PollEvent() (platform.Event, bool) {
	select {
	case xe, ok := <-w.events:
		if !ok {
			return platform.Destroyed{}, true
		}
		return w.translate(xe.ev, xe.err), true
	default:
		return nil, false
	}
}

func (w *Window) translate(ev xgb.Event, xerr xgb.Error) platform.Event {
	if xerr != nil {
		w.logger.Debug("X11 error", "error", xerr)
		return platform.Unhandled{}
	}

	switch e := ev.(type) {
	case xproto.ExposeEvent:
		if e.Count == 0 {
			return platform.Expose{}
		}
	case xproto.ConfigureNotifyEvent:
		if e.Window == w.win.Id {
			return platform.Resized{Width: int(e.Width), Height: int(e.Height)}
		}
	case xproto.KeyPressEvent:
		return platform.KeyPress{
			Code:  uint32(e.Detail),
			Label: keybind.LookupString(w.conn.XUtil, e.State, e.Detail),
		}
	case xproto.ClientMessageEvent:
		if e.Format == 32 && xproto.Atom(e.Data.Data32[0]) == w.deleteMsg {
			return platform.CloseRequested{}
		}
	case xproto.DestroyNotifyEvent:
		if e.Window == w.win.Id {
			return platform.Destroyed{}
		}
	}
	return platform.Unhandled{}
}

func (w *Window) Draw(s platform.Surface) {
	if sf, ok := s.(surface); ok {
		sf.ximg.XPaint(w.win.Id)
	}
}

// RequestClose destroys the image, the window and the connection. Only the
// first call has an effect.
func (w *Window) RequestClose() {
	w.closeOnce.Do(func() {
		close(w.quit)
		if w.ximg != nil {
			w.ximg.Destroy()
		}
		w.win.Destroy()
		w.conn.Close()
	})
}
