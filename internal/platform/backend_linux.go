//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/xtiler/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// Connection returns the underlying X11 connection.
func (b *LinuxBackend) Connection() *x11.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}

// Displays returns all active displays ordered by ID.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.Monitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, DisplayFromMonitor(m))
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// CurrentDesktop returns the active virtual desktop.
func (b *LinuxBackend) CurrentDesktop() (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	return conn.CurrentDesktop()
}

// WindowDesktop returns the desktop a window lives on, or StickyDesktop.
func (b *LinuxBackend) WindowDesktop(windowID WindowID) (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	desktop, err := conn.WindowDesktop(xproto.Window(windowID))
	if err != nil {
		return 0, err
	}
	if desktop < 0 {
		return StickyDesktop, nil
	}
	return desktop, nil
}

// MoveResize moves and resizes a window.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(windowID), bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("linux backend is not connected")
	}
	return b.conn, nil
}

// DisplayFromMonitor converts an X11 monitor into a platform display.
func DisplayFromMonitor(m x11.Monitor) Display {
	bounds := Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
	usable := bounds
	if m.Usable.Width > 0 && m.Usable.Height > 0 {
		usable = Rect{X: m.Usable.X, Y: m.Usable.Y, Width: m.Usable.Width, Height: m.Usable.Height}
	}
	return Display{
		ID:     m.ID,
		Name:   m.Name,
		Bounds: bounds,
		Usable: usable,
	}
}
