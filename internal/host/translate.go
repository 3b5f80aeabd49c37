package host

import (
	"sort"

	"github.com/1broseidon/xtiler/internal/config"
	"github.com/1broseidon/xtiler/internal/platform"
	"github.com/1broseidon/xtiler/internal/x11"
)

// diffClients compares the known window set against the window manager's
// client list. Added windows keep client-list order; removed ones are sorted
// by ID so the output is stable.
func diffClients(known map[platform.WindowID]bool, current []platform.WindowID) (added, removed []platform.WindowID) {
	seen := make(map[platform.WindowID]bool, len(current))
	for _, id := range current {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !known[id] {
			added = append(added, id)
		}
	}
	for id := range known {
		if !seen[id] {
			removed = append(removed, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return added, removed
}

// diffScreens reports whether the number of screens changed and, when it did
// not, which screen indexes changed geometry.
func diffScreens(old, current []platform.Rect) (countChanged bool, resized []int) {
	if len(old) != len(current) {
		return true, nil
	}
	for i := range current {
		if old[i] != current[i] {
			resized = append(resized, i)
		}
	}
	return false, resized
}

type dragKind int

const (
	dragMove dragKind = iota + 1
	dragResize
)

func (k dragKind) String() string {
	switch k {
	case dragMove:
		return "move"
	case dragResize:
		return "resize"
	default:
		return "none"
	}
}

// event is one translated window notification.
type event int

const (
	eventMoveStart event = iota + 1
	eventMove
	eventMoveOver
	eventResizeStart
	eventResize
	eventResizeOver
	eventGeometryChanged
)

func (e event) String() string {
	switch e {
	case eventMoveStart:
		return "move-start"
	case eventMove:
		return "move"
	case eventMoveOver:
		return "move-over"
	case eventResizeStart:
		return "resize-start"
	case eventResize:
		return "resize"
	case eventResizeOver:
		return "resize-over"
	case eventGeometryChanged:
		return "geometry-changed"
	default:
		return "unknown"
	}
}

// dragTracker turns a stream of configure notifications plus pointer state
// into interactive move and resize phases for one window.
type dragTracker struct {
	kind dragKind
}

func (d *dragTracker) active() bool { return d.kind != 0 }

// configure handles a configure notification. prev and next are the window
// geometry before and after it; held reports whether a drag button is down.
func (d *dragTracker) configure(prev, next platform.Rect, held bool) []event {
	if !held {
		if d.active() {
			return d.release()
		}
		return []event{eventGeometryChanged}
	}

	if !d.active() {
		if prev.SameSize(next) {
			d.kind = dragMove
			return []event{eventMoveStart, eventMove}
		}
		d.kind = dragResize
		return []event{eventResizeStart, eventResize}
	}

	if d.kind == dragMove {
		return []event{eventMove}
	}
	return []event{eventResize}
}

// release ends an active drag. It returns nothing when no drag is active.
func (d *dragTracker) release() []event {
	kind := d.kind
	d.kind = 0
	switch kind {
	case dragMove:
		return []event{eventMoveOver}
	case dragResize:
		return []event{eventResizeOver}
	default:
		return nil
	}
}

// policy decides whether a window is managed at all and whether it takes
// part in tiling.
func policy(info x11.WindowInfo, cfg *config.Config) (manage, tileable bool) {
	if cfg.IsIgnoredClass(info.Class) || cfg.IsIgnoredClass(info.Instance) {
		return false, false
	}
	if !info.Normal() && !info.Transient {
		return false, false
	}
	manage = true
	tileable = info.Normal() &&
		!info.Transient &&
		!info.FixedSize &&
		!info.SkipsTaskbar() &&
		!cfg.IsFloatClass(info.Class) &&
		!cfg.IsFloatClass(info.Instance)
	return manage, tileable
}

// forwardsProperty reports whether a change of the named client property
// is reported to the handler as a window change.
func forwardsProperty(atom string) bool {
	switch atom {
	case "_NET_WM_DESKTOP",
		"_NET_WM_STATE",
		"WM_TRANSIENT_FOR",
		"_KDE_NET_WM_ACTIVITIES",
		"_NET_WM_WINDOW_TYPE":
		return true
	}
	return false
}

// titleProperty reports whether atom carries the window title.
func titleProperty(atom string) bool {
	return atom == "_NET_WM_NAME" || atom == "WM_NAME"
}
