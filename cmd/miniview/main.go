package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/miniview"
	"github.com/1broseidon/miniview/internal/config"
)

var version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks command line mistakes, which exit with exitUsage.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// app carries the process streams so that commands can be run in tests.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// backend overrides the native window backend when set.
	backend miniview.Backend
}

func main() {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(a.run(context.Background(), os.Args[1:]))
}

// run executes the command line and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(a.stderr, "miniview: %v\n", err)
	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(a.stderr, "Run '%s --help' for usage.\n", root.CommandPath())
		return exitUsage
	}
	return exitError
}

func (a *app) newRootCmd() *cobra.Command {
	opts := &showOptions{}

	root := &cobra.Command{
		Use:   "miniview [PATH]",
		Short: "Show an image in a minimal window",
		Long: `miniview shows a single image in a native window and exits when the
window is closed. The image is given as a path, as a path on stdin, or as
encoded bytes on stdin.`,
		Example: `  miniview plant.jpg
  echo plant.jpg | miniview --from-stdin-path
  curl -s https://example.com/plant.png | miniview --from-stdin-bytes --fullscreen`,
		Version:       version,
		Args:          usageArgs(cobra.MaximumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShow(cmd, opts, args)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	opts.register(root)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (default: ~/.config/miniview/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug messages to stderr")

	root.AddCommand(a.newCloseCmd())
	root.AddCommand(a.newStatusCmd())
	root.AddCommand(a.newConfigCmd(opts))
	root.AddCommand(a.newMCPCmd(opts))
	return root
}

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// newLogger builds the stderr logger. --verbose wins over log_level.
func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	lvl := parseLogLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
