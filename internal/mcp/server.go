package mcp

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/miniview"
	"github.com/1broseidon/miniview/internal/config"
)

const (
	ServerName    = "miniview"
	ServerVersion = "0.1.0"
)

// Server is the MCP server that lets an agent show an image to the user.
// It owns at most one view at a time.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	logger    *slog.Logger
	viewOpts  []miniview.Option

	mu   sync.Mutex
	view *miniview.View
	path string
	// closing is set while view.Close runs without mu held. A lazy window
	// only finishes closing on its next native event.
	closing bool

	// Hook for tests; a scripted backend has no display to find.
	ensureDisplayFn func() error
}

// NewServer creates a new MCP server. opts are passed to every
// miniview.Show call.
func NewServer(cfg *config.Config, logger *slog.Logger, opts ...miniview.Option) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:          cfg,
		logger:          logger,
		viewOpts:        append([]miniview.Option{miniview.WithLogger(logger)}, opts...),
		ensureDisplayFn: ensureDisplayEnv,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the window still shown by the server, if any.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	view, _, ok := s.beginClose()
	if !ok {
		return nil
	}
	err := s.finishClose(view)
	if errors.Is(err, miniview.ErrSendFailed) {
		return nil
	}
	return err
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_image",
		Description: "Show an image file to the user in a native window. Only one image is shown at a time; call close_image first to replace it. The call returns as soon as the window is open.",
	}, s.handleShowImage)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_image",
		Description: "Close the image window opened by show_image and wait until it is gone.",
	}, s.handleCloseImage)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "image_status",
		Description: "Report whether an image window is open, its size and how long it has been shown.",
	}, s.handleImageStatus)
}

// beginClose claims the current view for closing. It reports false when
// there is nothing to close or another close is already running.
func (s *Server) beginClose() (*miniview.View, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil || s.closing {
		return nil, "", false
	}
	s.closing = true
	return s.view, s.path, true
}

// finishClose closes view outside the lock and forgets it afterwards.
func (s *Server) finishClose(view *miniview.View) error {
	err := view.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == view {
		s.view = nil
		s.path = ""
	}
	s.closing = false
	return err
}
