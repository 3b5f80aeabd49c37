package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Box is a plain rectangle in root coordinates.
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
	// Usable excludes dock struts. Zero when no dock reserves space.
	Usable Box
}

// Box returns the full monitor area.
func (m Monitor) Box() Box {
	return Box{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

// SelectScreenChanges asks the server to deliver RandR screen change
// notifications on the root window.
func (c *Connection) SelectScreenChanges() error {
	return randr.SelectInputChecked(c.XUtil.Conn(), c.Root, randr.NotifyMaskScreenChange).Check()
}

// Monitors retrieves all active monitors using XRandR
func (c *Connection) Monitors() ([]Monitor, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}

	struts := c.dockStruts()
	if len(struts) > 0 {
		root, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
		if err == nil {
			for i := range monitors {
				monitors[i].Usable = UsableArea(monitors[i].Box(), int(root.Width), int(root.Height), struts)
			}
		}
	}

	return monitors, nil
}

// dockStruts collects the partial struts of every dock on the client list.
func (c *Connection) dockStruts() []ewmh.WmStrutPartial {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var out []ewmh.WmStrutPartial
	for _, win := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
		if err != nil || !hasString(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			out = append(out, *sp)
			continue
		}
		// Some docks only set _NET_WM_STRUT; treat it as spanning the whole edge.
		if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			out = append(out, ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: ^uint(0) >> 1, RightEndY: ^uint(0) >> 1,
				TopEndX: ^uint(0) >> 1, BottomEndX: ^uint(0) >> 1,
			})
		}
	}
	return out
}

// UsableArea shrinks a monitor by the struts that overlap it.
func UsableArea(mon Box, rootWidth, rootHeight int, struts []ewmh.WmStrutPartial) Box {
	var left, right, top, bottom int
	for _, sp := range struts {
		if sp.Top > 0 {
			reserved := Box{X: int(sp.TopStartX), Y: 0, Width: clampEnd(sp.TopEndX, rootWidth) - int(sp.TopStartX), Height: int(sp.Top)}
			top = max(top, overlap(mon, reserved).Height)
		}
		if sp.Bottom > 0 {
			reserved := Box{X: int(sp.BottomStartX), Y: rootHeight - int(sp.Bottom), Width: clampEnd(sp.BottomEndX, rootWidth) - int(sp.BottomStartX), Height: int(sp.Bottom)}
			bottom = max(bottom, overlap(mon, reserved).Height)
		}
		if sp.Left > 0 {
			reserved := Box{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: clampEnd(sp.LeftEndY, rootHeight) - int(sp.LeftStartY)}
			left = max(left, overlap(mon, reserved).Width)
		}
		if sp.Right > 0 {
			reserved := Box{X: rootWidth - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: clampEnd(sp.RightEndY, rootHeight) - int(sp.RightStartY)}
			right = max(right, overlap(mon, reserved).Width)
		}
	}

	usable := Box{
		X:      mon.X + left,
		Y:      mon.Y + top,
		Width:  mon.Width - left - right,
		Height: mon.Height - top - bottom,
	}
	if usable.Width < 1 {
		usable.Width = 1
	}
	if usable.Height < 1 {
		usable.Height = 1
	}
	return usable
}

// clampEnd converts an inclusive strut end coordinate into an exclusive one
// bounded by the root window.
func clampEnd(end uint, limit int) int {
	if end >= uint(limit) {
		return limit
	}
	return int(end) + 1
}

func overlap(a, b Box) Box {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return Box{}
	}
	return Box{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func hasString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
