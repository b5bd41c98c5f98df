package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/miniview"
	"github.com/1broseidon/miniview/internal/config"
	"github.com/1broseidon/miniview/internal/ipc"
)

type showOptions struct {
	fromPath       string
	fromStdinPath  bool
	fromStdinBytes bool
	fullscreen     bool
	resizable      bool
	closeAfterMS   int
	lazy           bool
	noExitOnEscape bool
	title          string
	control        bool
	configPath     string
	verbose        bool
}

func (o *showOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.fromPath, "from-path", "", "Show the image at `PATH`")
	f.BoolVar(&o.fromStdinPath, "from-stdin-path", false, "Read the path to the image from stdin")
	f.BoolVar(&o.fromStdinBytes, "from-stdin-bytes", false, "Read the encoded image from stdin")
	f.BoolVar(&o.fullscreen, "fullscreen", false, "Open the window fullscreen")
	f.BoolVar(&o.resizable, "allow-window-resizing", false, "Allow the window to be resized")
	f.IntVar(&o.closeAfterMS, "close-after", 0, "Close the window after `MS` milliseconds")
	f.BoolVar(&o.lazy, "lazy", false, "Wait for window events instead of polling (lower CPU, slower remote close)")
	f.BoolVar(&o.noExitOnEscape, "no-exit-on-escape", false, "Do not close the window when escape is pressed")
	f.StringVar(&o.title, "title", "", "Window title (default \"miniview\")")
	f.BoolVar(&o.control, "control", false, "Listen on the control socket for 'miniview close' and 'miniview status'")
}

func (a *app) runShow(cmd *cobra.Command, opts *showOptions, args []string) error {
	res, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	cfg := res.Config
	logger := newLogger(a.stderr, cfg.LogLevel, opts.verbose)
	for _, w := range res.Warnings {
		logger.Warn("config: " + w)
	}

	if opts.closeAfterMS < 0 {
		return &usageError{err: fmt.Errorf("--close-after must be >= 0, got %d", opts.closeAfterMS)}
	}

	src, err := a.determineSource(opts, args, logger)
	if err != nil {
		return err
	}

	viewCfg := buildViewConfig(cmd, opts, cfg, src)
	logger.Debug("resolved config", "config", viewCfg.String())

	showOpts := []miniview.Option{miniview.WithLogger(logger)}
	if a.backend != nil {
		showOpts = append(showOpts, miniview.WithBackend(a.backend))
	}
	view, err := miniview.Show(viewCfg, showOpts...)
	if err != nil {
		return err
	}

	closeReq := make(chan struct{}, 1)
	if opts.control || cfg.ControlSocket {
		srv, err := ipc.NewServer(statusFunc(view), closeReq, logger)
		if err == nil {
			err = srv.Start()
		}
		if err != nil {
			// The window is already open; close it before reporting.
			view.Close()
			return fmt.Errorf("control socket: %w", err)
		}
		defer srv.Stop()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-view.Done():
		return view.WaitForExit()
	case <-ctx.Done():
		logger.Debug("closing on signal")
	case <-closeReq:
		logger.Debug("closing on control request")
	}

	// The window may have closed on its own in the meantime; that is not
	// a failure of the command.
	if err := view.Close(); err != nil && !errors.Is(err, miniview.ErrSendFailed) {
		return err
	}
	return nil
}

// determineSource picks the single input mode given on the command line.
func (a *app) determineSource(opts *showOptions, args []string, logger *slog.Logger) (miniview.Source, error) {
	modes := 0
	if len(args) == 1 {
		modes++
	}
	if opts.fromPath != "" {
		modes++
	}
	if opts.fromStdinPath {
		modes++
	}
	if opts.fromStdinBytes {
		modes++
	}
	if modes != 1 {
		return miniview.Source{}, miniview.ErrInputModeUndetermined
	}

	switch {
	case len(args) == 1:
		return pathSource(args[0])
	case opts.fromPath != "":
		return pathSource(opts.fromPath)
	case opts.fromStdinPath:
		a.hintIfTerminal(logger, "waiting for a path to an image on stdin")
		path, err := miniview.ReadPath(a.stdin)
		if err != nil {
			return miniview.Source{}, err
		}
		return miniview.FromPathSource(path), nil
	default:
		a.hintIfTerminal(logger, "waiting for image bytes on stdin")
		return miniview.FromReader(a.stdin), nil
	}
}

func pathSource(path string) (miniview.Source, error) {
	if path == "" {
		return miniview.Source{}, miniview.ErrEmptyInputPath
	}
	return miniview.FromPathSource(path), nil
}

// hintIfTerminal tells an interactive user that input is expected, since
// reading stdin from a terminal otherwise looks like a hang.
func (a *app) hintIfTerminal(logger *slog.Logger, msg string) {
	f, ok := a.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return
	}
	logger.Info(msg + " (end input with Ctrl-D)")
}

// buildViewConfig applies the config file and then the flags given on the
// command line.
func buildViewConfig(cmd *cobra.Command, opts *showOptions, cfg *config.Config, src miniview.Source) miniview.Config {
	flags := cmd.Flags()

	fullscreen := cfg.Fullscreen
	if flags.Changed("fullscreen") {
		fullscreen = opts.fullscreen
	}
	resizable := cfg.AllowWindowResizing
	if flags.Changed("allow-window-resizing") {
		resizable = opts.resizable
	}
	lazy := cfg.LazyWindow
	if flags.Changed("lazy") {
		lazy = opts.lazy
	}
	exitOnEscape := cfg.GetExitOnEscape()
	if flags.Changed("no-exit-on-escape") {
		exitOnEscape = !opts.noExitOnEscape
	}
	title := cfg.WindowTitle
	if flags.Changed("title") {
		title = opts.title
	}
	// close_after_ms: 0 in the file means never; --close-after 0 closes on
	// the first loop iteration.
	closeAfter := cfg.CloseAfter()
	autoClose := closeAfter > 0
	if flags.Changed("close-after") {
		closeAfter = time.Duration(opts.closeAfterMS) * time.Millisecond
		autoClose = true
	}

	b := miniview.NewConfigBuilder(src).
		Fullscreen(fullscreen).
		AllowResizableWindow(resizable).
		LazyWindow(lazy).
		ExitOnEscape(exitOnEscape).
		WindowTitle(title).
		PollInterval(cfg.PollInterval())
	if autoClose {
		// A lazy window would only notice the deadline on the next event.
		b = b.CloseWhen(miniview.CloseAfter(closeAfter)).LazyWindow(false)
	}
	return b.Build()
}

func statusFunc(view *miniview.View) ipc.StatusFunc {
	return func() ipc.StatusData {
		info := view.Info()
		return ipc.StatusData{
			State:         info.State.String(),
			Title:         info.Title,
			Source:        info.Source,
			Width:         info.Width,
			Height:        info.Height,
			Frames:        uint64(info.Frames),
			UptimeSeconds: int64(time.Since(info.StartedAt).Seconds()),
		}
	}
}
