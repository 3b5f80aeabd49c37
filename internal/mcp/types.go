package mcp

import "github.com/1broseidon/xtiler/internal/tiling"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Layout        string `json:"layout"`
	Screens       int    `json:"screens"`
	Managed       int    `json:"managed"`
	Floating      int    `json:"floating"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Screen       *int `json:"screen,omitempty" jsonschema:"Only list windows laid out on this screen index"`
	FloatingOnly bool `json:"floating_only,omitempty" jsonschema:"When true, only list floating windows"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []tiling.WindowState `json:"windows"`
}

// ArrangeInput is the input for the arrange tool.
type ArrangeInput struct{}

// TileWindowInput is the input for the tile_window tool.
type TileWindowInput struct {
	WindowID uint32 `json:"window_id" jsonschema:"required,X11 window ID of a floating window to return to the layout"`
}
