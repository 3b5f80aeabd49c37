package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

// ActivitiesAtom is the root property KWin keeps the running activity list in.
const ActivitiesAtom = "_KDE_RUNNING_ACTIVITIES"

// CurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom.
func (c *Connection) CurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// WindowDesktop returns the desktop number a window is on.
// Uses _NET_WM_DESKTOP atom. Returns -1 for "sticky" windows (visible on all desktops).
func (c *Connection) WindowDesktop(win xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, win)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	// 0xFFFFFFFF means the window is on all desktops (sticky)
	if desktop == 0xFFFFFFFF {
		return -1, nil
	}
	return int(desktop), nil
}

// ClientList returns the EWMH managed client list.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// CurrentActivity returns the first entry of the running activity list, or
// an empty string when the window manager has no activities.
func (c *Connection) CurrentActivity() string {
	reply, err := xprop.GetProperty(c.XUtil, c.Root, ActivitiesAtom)
	if err != nil {
		return ""
	}
	value := strings.TrimRight(string(reply.Value), "\x00")
	if i := strings.IndexAny(value, ",\x00"); i >= 0 {
		value = value[:i]
	}
	return value
}

// AtomName resolves an atom to its name, returning an empty string on failure.
func (c *Connection) AtomName(atom xproto.Atom) string {
	name, err := xprop.AtomName(c.XUtil, atom)
	if err != nil {
		return ""
	}
	return name
}
