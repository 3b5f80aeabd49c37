package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xtiler/internal/ipc"
	"github.com/1broseidon/xtiler/internal/tiling"
)

const (
	ServerName    = "xtiler"
	ServerVersion = "0.1.0"
)

// Daemon is the daemon API the tools call. *ipc.Client implements it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() ([]tiling.WindowState, error)
	Arrange() error
	TileWindow(windowID uint32) error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server exposing the tiling daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server that forwards tool calls to daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
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

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the tiling daemon's layout mode, screen count, and how many windows are managed and floating.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List managed windows with their class, title, screen, desktop, tiled geometry and floating state.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "arrange",
		Description: "Recompute and apply the layout on every screen of the current desktop.",
	}, s.handleArrange)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "tile_window",
		Description: "Return a floating window to the layout. Windows float when dragged away from their tile.",
	}, s.handleTileWindow)
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		Layout:        status.Layout,
		Screens:       status.Screens,
		Managed:       status.Managed,
		Floating:      status.Floating,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.daemon.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: make([]tiling.WindowState, 0, len(windows))}
	for _, w := range windows {
		if args.Screen != nil && w.Screen != *args.Screen {
			continue
		}
		if args.FloatingOnly && !w.Floating {
			continue
		}
		out.Windows = append(out.Windows, w)
	}
	return nil, out, nil
}

func (s *Server) handleArrange(_ context.Context, _ *mcpsdk.CallToolRequest, _ ArrangeInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.daemon.Arrange(); err != nil {
		return nil, nil, err
	}
	return textResult("Layout applied"), nil, nil
}

func (s *Server) handleTileWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args TileWindowInput) (*mcpsdk.CallToolResult, any, error) {
	if args.WindowID == 0 {
		return nil, nil, fmt.Errorf("window_id is required")
	}
	if err := s.daemon.TileWindow(args.WindowID); err != nil {
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("Window %d returned to the layout", args.WindowID)), nil, nil
}

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
	}
}
