package mcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/miniview"
)

func (s *Server) handleShowImage(_ context.Context, _ *mcpsdk.CallToolRequest, args ShowImageInput) (*mcpsdk.CallToolResult, ShowImageOutput, error) {
	path := strings.TrimSpace(args.Path)
	if path == "" {
		return nil, ShowImageOutput{}, miniview.ErrEmptyInputPath
	}
	if !filepath.IsAbs(path) {
		return nil, ShowImageOutput{}, fmt.Errorf("path must be absolute, got %q", path)
	}
	if args.CloseAfterMS < 0 {
		return nil, ShowImageOutput{}, fmt.Errorf("close_after_ms must be >= 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return nil, ShowImageOutput{}, fmt.Errorf("the previous image (%s) is still closing", s.path)
	}
	if s.view != nil {
		select {
		case <-s.view.Done():
			s.reapLocked()
		default:
			return nil, ShowImageOutput{}, fmt.Errorf("an image is already shown (%s); call close_image first", s.path)
		}
	}

	if err := s.ensureDisplayFn(); err != nil {
		return nil, ShowImageOutput{}, err
	}

	view, err := miniview.Show(s.buildConfig(path, args), s.viewOpts...)
	if err != nil {
		return nil, ShowImageOutput{}, err
	}
	s.view = view
	s.path = path

	info := view.Info()
	s.logger.Info("showing image", "path", path, "width", info.Width, "height", info.Height)

	return nil, ShowImageOutput{
		Title:  info.Title,
		Width:  info.Width,
		Height: info.Height,
		State:  info.State.String(),
	}, nil
}

// buildConfig applies the tool arguments on top of the configured defaults.
func (s *Server) buildConfig(path string, args ShowImageInput) miniview.Config {
	cfg := s.config

	fullscreen := cfg.Fullscreen
	if args.Fullscreen != nil {
		fullscreen = *args.Fullscreen
	}
	title := cfg.WindowTitle
	if args.Title != nil && strings.TrimSpace(*args.Title) != "" {
		title = *args.Title
	}
	closeAfter := cfg.CloseAfter()
	if args.CloseAfterMS > 0 {
		closeAfter = time.Duration(args.CloseAfterMS) * time.Millisecond
	}

	b := miniview.FromPath(path).
		Fullscreen(fullscreen).
		AllowResizableWindow(cfg.AllowWindowResizing).
		ExitOnEscape(cfg.GetExitOnEscape()).
		WindowTitle(title).
		PollInterval(cfg.PollInterval()).
		LazyWindow(cfg.LazyWindow)
	if closeAfter > 0 {
		// A lazy window would only notice the deadline on the next event.
		b = b.CloseWhen(miniview.CloseAfter(closeAfter)).LazyWindow(false)
	}
	return b.Build()
}

// reapLocked collects the result of a view whose window is already gone.
func (s *Server) reapLocked() {
	if err := s.view.WaitForExit(); err != nil {
		s.logger.Warn("previous image window failed", "path", s.path, "error", err)
	}
	s.view = nil
	s.path = ""
}

func (s *Server) handleCloseImage(_ context.Context, _ *mcpsdk.CallToolRequest, _ CloseImageInput) (*mcpsdk.CallToolResult, CloseImageOutput, error) {
	view, path, ok := s.beginClose()
	if !ok {
		return nil, CloseImageOutput{}, fmt.Errorf("no image is shown or it is already closing")
	}
	err := s.finishClose(view)

	switch {
	case errors.Is(err, miniview.ErrSendFailed):
		return nil, CloseImageOutput{Closed: true, AlreadyClosed: true}, nil
	case err != nil:
		return nil, CloseImageOutput{}, fmt.Errorf("closing %s: %w", path, err)
	}

	s.logger.Info("closed image", "path", path)
	return nil, CloseImageOutput{Closed: true}, nil
}

func (s *Server) handleImageStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ ImageStatusInput) (*mcpsdk.CallToolResult, ImageStatusOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view == nil {
		return nil, ImageStatusOutput{Showing: false}, nil
	}

	info := s.view.Info()
	return nil, ImageStatusOutput{
		Showing:       info.State == miniview.StateOpen,
		State:         info.State.String(),
		Path:          s.path,
		Title:         info.Title,
		Width:         info.Width,
		Height:        info.Height,
		Frames:        uint64(info.Frames),
		UptimeSeconds: int64(time.Since(info.StartedAt).Seconds()),
	}, nil
}
