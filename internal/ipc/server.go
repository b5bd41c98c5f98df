package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/miniview/internal/runtimepath"
)

// ErrSocketInUse is returned by Start when another viewer already answers
// on the control socket.
var ErrSocketInUse = errors.New("another viewer is already listening on the control socket")

// StatusFunc reports the state of the view served by a Server.
type StatusFunc func() StatusData

// Server handles IPC requests for a single running view
type Server struct {
	socketPath   string
	listener     net.Listener
	status       StatusFunc
	closeChan    chan<- struct{}
	logger       *slog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. A CLOSE request is forwarded to
// closeChan without blocking; the owner of the view acts on it.
func NewServer(status StatusFunc, closeChan chan<- struct{}, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	return &Server{
		socketPath: socketPath,
		status:     status,
		closeChan:  closeChan,
		logger:     logger,
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// A socket file that nobody answers on is left over from a crashed viewer.
	if conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return fmt.Errorf("%w: %s", ErrSocketInUse, s.socketPath)
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Debug("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Debug("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandClose:
		return s.handleClose()
	case CommandStatus:
		return s.handleStatus()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleClose asks the owner of the view to close it
func (s *Server) handleClose() *Response {
	s.logger.Debug("IPC: received CLOSE command")

	// Notify the owner via channel (non-blocking); a pending request is enough
	select {
	case s.closeChan <- struct{}{}:
	default:
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleStatus returns the state of the view
func (s *Server) handleStatus() *Response {
	if s.status == nil {
		return NewErrorResponse("status is not available")
	}
	resp, err := NewOKResponse(s.status())
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
