package miniview

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/1broseidon/miniview/internal/platform"
)

// worker owns the window and the decoded image for the lifetime of a view.
// Nothing in it is touched by any other goroutine.
type worker struct {
	view     *View
	cfg      Config
	backend  platform.Backend
	img      *image.RGBA
	commands <-chan command
	logger   *slog.Logger
}

func (w *worker) run() error {
	opts := platform.WindowOptions{
		Title:      w.cfg.windowTitle,
		Width:      w.img.Bounds().Dx(),
		Height:     w.img.Bounds().Dy(),
		Fullscreen: w.cfg.fullscreen,
		Resizable:  w.cfg.ResizableWindow(),
	}

	win, err := w.backend.Open(opts)
	if err != nil {
		w.view.setState(StateFailed)
		return fmt.Errorf("%w: %w", ErrWindowCreate, err)
	}

	surface, err := win.Upload(w.img)
	if err != nil {
		win.RequestClose()
		w.view.setState(StateFailed)
		return fmt.Errorf("%w: %w", ErrTextureMap, err)
	}
	w.logger.Debug("window open", "title", opts.Title, "lazy", w.cfg.lazyWindow)

	var idle *time.Ticker
	if !w.cfg.lazyWindow {
		idle = time.NewTicker(w.cfg.pollInterval)
		defer idle.Stop()
	}

	for {
		select {
		case <-w.commands:
			return w.close(win, "close command")
		default:
		}

		ev, ok := w.next(win)
		if ok {
			if reason := w.closeReason(ev); reason != "" {
				return w.close(win, reason)
			}
		}

		if w.cfg.closeWhen != nil && w.cfg.closeWhen.ShouldClose() {
			return w.close(win, "close condition")
		}

		if ok && platform.Redraws(ev) {
			win.Draw(surface)
			w.view.frames.Add(1)
		}

		if !ok && idle != nil {
			select {
			case <-w.commands:
				return w.close(win, "close command")
			case <-idle.C:
			}
		}
	}
}

// next returns the next native event. A lazy window blocks for it; a
// lost native connection is reported as Destroyed.
func (w *worker) next(win platform.Window) (platform.Event, bool) {
	if !w.cfg.lazyWindow {
		return win.PollEvent()
	}
	ev, ok := win.NextEvent()
	if !ok {
		return platform.Destroyed{}, true
	}
	return ev, true
}

func (w *worker) closeReason(ev platform.Event) string {
	if platform.ClosesWindow(ev) {
		return "window closed"
	}
	if key, ok := ev.(platform.KeyPress); ok && key.Label == platform.KeyEscape && w.cfg.exitOnEscape {
		return "escape key"
	}
	return ""
}

// close moves the view through Closing to Closed. The state never goes
// back to Open.
func (w *worker) close(win platform.Window, reason string) error {
	w.view.setState(StateClosing)
	win.RequestClose()
	w.view.setState(StateClosed)
	w.logger.Debug("window closed", "reason", reason, "frames", w.view.frames.Load())
	return nil
}
