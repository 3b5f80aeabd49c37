package host

import (
	"reflect"
	"testing"

	"github.com/1broseidon/xtiler/internal/config"
	"github.com/1broseidon/xtiler/internal/platform"
	"github.com/1broseidon/xtiler/internal/x11"
)

func TestDiffClients(t *testing.T) {
	known := map[platform.WindowID]bool{1: true, 2: true, 3: true}
	added, removed := diffClients(known, []platform.WindowID{5, 2, 4, 3, 4})

	if want := []platform.WindowID{5, 4}; !reflect.DeepEqual(added, want) {
		t.Fatalf("added = %v, want %v", added, want)
	}
	if want := []platform.WindowID{1}; !reflect.DeepEqual(removed, want) {
		t.Fatalf("removed = %v, want %v", removed, want)
	}
}

func TestDiffClients_EmptyList(t *testing.T) {
	known := map[platform.WindowID]bool{9: true, 3: true}
	added, removed := diffClients(known, nil)
	if len(added) != 0 {
		t.Fatalf("added = %v, want none", added)
	}
	if want := []platform.WindowID{3, 9}; !reflect.DeepEqual(removed, want) {
		t.Fatalf("removed = %v, want %v", removed, want)
	}
}

func TestDiffScreens(t *testing.T) {
	a := platform.Rect{Width: 1920, Height: 1080}
	b := platform.Rect{X: 1920, Width: 1280, Height: 1024}
	bShrunk := platform.Rect{X: 1920, Y: 30, Width: 1280, Height: 994}

	tests := []struct {
		name         string
		old, current []platform.Rect
		countChanged bool
		resized      []int
	}{
		{"first scan", nil, []platform.Rect{a}, true, nil},
		{"monitor added", []platform.Rect{a}, []platform.Rect{a, b}, true, nil},
		{"monitor removed", []platform.Rect{a, b}, []platform.Rect{a}, true, nil},
		{"unchanged", []platform.Rect{a, b}, []platform.Rect{a, b}, false, nil},
		{"panel added", []platform.Rect{a, b}, []platform.Rect{a, bShrunk}, false, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			countChanged, resized := diffScreens(tt.old, tt.current)
			if countChanged != tt.countChanged || !reflect.DeepEqual(resized, tt.resized) {
				t.Fatalf("diffScreens() = %v, %v; want %v, %v", countChanged, resized, tt.countChanged, tt.resized)
			}
		})
	}
}

func TestDragTracker_Move(t *testing.T) {
	var d dragTracker
	start := platform.Rect{X: 0, Y: 0, Width: 800, Height: 600}
	step := platform.Rect{X: 10, Y: 5, Width: 800, Height: 600}
	end := platform.Rect{X: 40, Y: 5, Width: 800, Height: 600}

	steps := []struct {
		prev, next platform.Rect
		held       bool
		want       []event
	}{
		{start, step, true, []event{eventMoveStart, eventMove}},
		{step, end, true, []event{eventMove}},
		{end, end, false, []event{eventMoveOver}},
		{end, end, false, []event{eventGeometryChanged}},
	}
	for i, s := range steps {
		if got := d.configure(s.prev, s.next, s.held); !reflect.DeepEqual(got, s.want) {
			t.Fatalf("step %d: configure() = %v, want %v", i, got, s.want)
		}
	}
}

func TestDragTracker_Resize(t *testing.T) {
	var d dragTracker
	start := platform.Rect{Width: 800, Height: 600}
	grown := platform.Rect{Width: 900, Height: 600}

	if got := d.configure(start, grown, true); !reflect.DeepEqual(got, []event{eventResizeStart, eventResize}) {
		t.Fatalf("first configure = %v", got)
	}
	// Dragging the left edge moves the origin too; still a resize.
	moved := platform.Rect{X: -50, Width: 950, Height: 600}
	if got := d.configure(grown, moved, true); !reflect.DeepEqual(got, []event{eventResize}) {
		t.Fatalf("second configure = %v", got)
	}
	if got := d.release(); !reflect.DeepEqual(got, []event{eventResizeOver}) {
		t.Fatalf("release() = %v", got)
	}
	if d.active() {
		t.Fatalf("tracker still active after release")
	}
}

func TestDragTracker_ReleaseWithoutDrag(t *testing.T) {
	var d dragTracker
	if got := d.release(); got != nil {
		t.Fatalf("release() = %v, want nil", got)
	}
}

func TestPolicy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.IgnoreClasses = []string{"Conky"}

	tests := []struct {
		name     string
		info     x11.WindowInfo
		manage   bool
		tileable bool
	}{
		{"plain app", x11.WindowInfo{Class: "kitty"}, true, true},
		{"explicit normal type", x11.WindowInfo{Class: "firefox", Types: []string{"_NET_WM_WINDOW_TYPE_NORMAL"}}, true, true},
		{"ignored class", x11.WindowInfo{Class: "conky"}, false, false},
		{"dock", x11.WindowInfo{Class: "polybar", Types: []string{"_NET_WM_WINDOW_TYPE_DOCK"}}, false, false},
		{"transient dialog", x11.WindowInfo{Class: "gimp", Types: []string{"_NET_WM_WINDOW_TYPE_DIALOG"}, Transient: true}, true, false},
		{"float class", x11.WindowInfo{Class: "Pinentry"}, true, false},
		{"fixed size", x11.WindowInfo{Class: "calc", FixedSize: true}, true, false},
		{"skip taskbar", x11.WindowInfo{Class: "dropdown", States: []string{"_NET_WM_STATE_SKIP_TASKBAR"}}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manage, tileable := policy(tt.info, cfg)
			if manage != tt.manage || tileable != tt.tileable {
				t.Fatalf("policy() = %v, %v; want %v, %v", manage, tileable, tt.manage, tt.tileable)
			}
		})
	}
}

func TestForwardsProperty(t *testing.T) {
	for _, atom := range []string{"_NET_WM_DESKTOP", "_NET_WM_STATE", "WM_TRANSIENT_FOR", "_KDE_NET_WM_ACTIVITIES", "_NET_WM_WINDOW_TYPE"} {
		if !forwardsProperty(atom) {
			t.Errorf("forwardsProperty(%q) = false", atom)
		}
	}
	for _, atom := range []string{"_NET_WM_NAME", "WM_NAME", "_NET_WM_ICON", ""} {
		if forwardsProperty(atom) {
			t.Errorf("forwardsProperty(%q) = true", atom)
		}
	}
}
