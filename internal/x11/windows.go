package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowInfo is the static description of a client used to decide whether
// it is managed and tiled.
type WindowInfo struct {
	Class     string
	Instance  string
	Title     string
	Types     []string
	States    []string
	Transient bool
	FixedSize bool
}

// Normal reports whether the window is a regular application window.
func (i WindowInfo) Normal() bool {
	for _, t := range i.Types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLBAR",
			"_NET_WM_WINDOW_TYPE_MENU",
			"_NET_WM_WINDOW_TYPE_UTILITY",
			"_NET_WM_WINDOW_TYPE_DIALOG":
			return false
		}
	}
	// If no specific type is set, assume it's normal
	return len(i.Types) == 0
}

// SkipsTaskbar reports whether the window asked to be hidden from pagers.
func (i WindowInfo) SkipsTaskbar() bool {
	return hasString(i.States, "_NET_WM_STATE_SKIP_TASKBAR")
}

// Describe reads class, title, type, state and size hints for a window.
func (c *Connection) Describe(win xproto.Window) (WindowInfo, error) {
	var info WindowInfo

	if cls, err := icccm.WmClassGet(c.XUtil, win); err == nil {
		info.Class = cls.Class
		info.Instance = cls.Instance
	} else {
		return info, fmt.Errorf("window %d has no WM_CLASS: %w", win, err)
	}

	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		info.Title = name
	} else if name, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		info.Title = name
	}

	info.Types, _ = ewmh.WmWindowTypeGet(c.XUtil, win)
	info.States, _ = ewmh.WmStateGet(c.XUtil, win)

	if parent, err := icccm.WmTransientForGet(c.XUtil, win); err == nil && parent != 0 {
		info.Transient = true
	}

	if hints, err := icccm.WmNormalHintsGet(c.XUtil, win); err == nil {
		if hints.Flags&icccm.SizeHintPMinSize != 0 && hints.Flags&icccm.SizeHintPMaxSize != 0 &&
			hints.MinWidth == hints.MaxWidth && hints.MinHeight == hints.MaxHeight && hints.MaxWidth > 0 {
			info.FixedSize = true
		}
	}

	return info, nil
}

// Title returns the current window title.
func (c *Connection) Title(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		return name
	}
	name, _ := icccm.WmNameGet(c.XUtil, win)
	return name
}

// Listen subscribes to structure and property changes of a client window.
func (c *Connection) Listen(win xproto.Window) error {
	return xwindow.New(c.XUtil, win).Listen(xproto.EventMaskStructureNotify, xproto.EventMaskPropertyChange)
}

// ListenRoot subscribes to property changes on the root window.
func (c *Connection) ListenRoot() error {
	return xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange)
}

// Geometry returns the window's outer frame origin combined with its client
// size. This is the same convention MoveResizeWindow uses for requests, so a
// committed window reads back exactly what was requested.
func (c *Connection) Geometry(win xproto.Window) (Box, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return Box{}, fmt.Errorf("failed to get geometry of window %d: %w", win, err)
	}
	pos, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return Box{}, fmt.Errorf("failed to translate window %d: %w", win, err)
	}
	left, _, top, _ := c.FrameExtents(win)
	return Box{
		X:      int(pos.DstX) - left,
		Y:      int(pos.DstY) - top,
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// FrameExtents returns the window decoration sizes, or zeros when unknown.
func (c *Connection) FrameExtents(win xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, win)
	if err != nil {
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(win xproto.Window, x, y, width, height int) error {
	c.unmaximize(win)

	if err := ewmh.MoveresizeWindow(c.XUtil, win, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, win).MoveResize(x, y, width, height)
	}
	return nil
}

// unmaximize clears maximized states, since a maximized window ignores
// move-resize requests on most window managers.
func (c *Connection) unmaximize(win xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(c.XUtil, win, ewmh.StateRemove, state)
		}
	}
}

// PointerButtons reports whether button 1 or button 3 is held, which is how
// window managers drive interactive moves and resizes.
func (c *Connection) PointerButtons() (bool, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return false, fmt.Errorf("failed to query pointer: %w", err)
	}
	return ButtonsHeld(reply.Mask), nil
}

// ButtonsHeld decodes a key/button mask.
func ButtonsHeld(mask uint16) bool {
	return mask&(xproto.KeyButMaskButton1|xproto.KeyButMaskButton3) != 0
}
