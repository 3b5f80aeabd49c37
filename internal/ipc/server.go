package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/xtiler/internal/config"
	"github.com/1broseidon/xtiler/internal/platform"
	"github.com/1broseidon/xtiler/internal/tiling"
)

// Runner executes a function on the goroutine that owns the engine.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// Engine is the part of the tiling engine exposed over IPC.
type Engine interface {
	Arrange()
	Retile(id platform.WindowID) bool
	Snapshot() []tiling.WindowState
	Layout() config.LayoutMode
	Displays() []platform.Display
}

// ReloadFunc reloads configuration from disk and applies it.
type ReloadFunc func(ctx context.Context) error

// requestTimeout bounds how long a request may wait for the event loop.
const requestTimeout = 5 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	runner       Runner
	engine       Engine
	reload       ReloadFunc
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server listening on socketPath once started.
func NewServer(socketPath string, runner Runner, engine Engine, reload ReloadFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		runner:     runner,
		engine:     engine,
		reload:     reload,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a previous daemon.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)
	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandListWindows:
		return s.handleListWindows(ctx)
	case CommandArrange:
		return s.handleArrange(ctx)
	case CommandTileWindow:
		return s.handleTileWindow(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload(ctx context.Context) *Response {
	if s.reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	if err := s.reload(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.logger.Info("config reloaded via IPC")

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	var status StatusData
	err := s.runner.Do(ctx, func() {
		windows := s.engine.Snapshot()
		status.Layout = string(s.engine.Layout())
		status.Screens = len(s.engine.Displays())
		status.Managed = len(windows)
		for _, w := range windows {
			if w.Floating {
				status.Floating++
			}
		}
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to read status: %v", err))
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListWindows(ctx context.Context) *Response {
	var data WindowsData
	if err := s.runner.Do(ctx, func() { data.Windows = s.engine.Snapshot() }); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list windows: %v", err))
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleArrange(ctx context.Context) *Response {
	if err := s.runner.Do(ctx, s.engine.Arrange); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to arrange: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleTileWindow(ctx context.Context, payload json.RawMessage) *Response {
	var req TileWindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid tile payload: %v", err))
	}
	if req.WindowID == 0 {
		return NewErrorResponse("window_id is required")
	}

	found := false
	err := s.runner.Do(ctx, func() {
		found = s.engine.Retile(platform.WindowID(req.WindowID))
		if found {
			s.engine.Arrange()
		}
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to tile window: %v", err))
	}
	if !found {
		return NewErrorResponse(fmt.Sprintf("Window %d is not managed", req.WindowID))
	}

	resp, _ := NewOKResponse(nil)
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
