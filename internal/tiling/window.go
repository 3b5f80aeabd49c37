package tiling

import (
	"fmt"

	"github.com/1broseidon/xtiler/internal/platform"
)

// Mover applies a geometry to an on-screen window.
type Mover interface {
	MoveResize(windowID platform.WindowID, bounds platform.Rect) error
}

// Placement is either tiled, or floating at a fixed geometry. The float
// geometry only exists inside the floating variant, so a window can never
// be floating with a stale or missing float geometry.
type Placement struct {
	floating bool
	at       Rect
}

// TiledPlacement places a window under layout control.
func TiledPlacement() Placement { return Placement{} }

// FloatingPlacement excludes a window from the layout and pins it at r.
func FloatingPlacement(r Rect) Placement { return Placement{floating: true, at: r} }

// Floating returns the float geometry and true when the placement floats.
func (p Placement) Floating() (Rect, bool) {
	return p.at, p.floating
}

func (p Placement) String() string {
	if p.floating {
		return fmt.Sprintf("floating(%d,%d %dx%d)", p.at.X, p.at.Y, p.at.Width, p.at.Height)
	}
	return "tiled"
}

// WindowSpec describes a window at the time it is first seen.
type WindowSpec struct {
	ID       platform.WindowID
	Class    string
	Title    string
	Desktop  int
	Tileable bool
	Geometry Rect
}

// Window is a client window as seen by the engine and the controller.
type Window struct {
	ID      platform.WindowID
	Class   string
	Title   string
	Desktop int

	tileable  bool
	screen    int
	geometry  Rect
	actual    Rect
	placement Placement
	mover     Mover
	// answer is the size the window system granted when asked for a tiled
	// geometry it would not honour exactly, such as under resize increments.
	answer sizeAnswer
}

type sizeAnswer struct {
	asked Rect
	got   Rect
	ok    bool
}

// NewWindow creates a tiled window whose committed and actual geometry both
// start at spec.Geometry.
func NewWindow(spec WindowSpec, mover Mover) *Window {
	return &Window{
		ID:       spec.ID,
		Class:    spec.Class,
		Title:    spec.Title,
		Desktop:  spec.Desktop,
		tileable: spec.Tileable,
		geometry: spec.Geometry,
		actual:   spec.Geometry,
		mover:    mover,
	}
}

// Tileable reports whether the window currently takes part in the layout:
// it is eligible for automatic placement and not floating.
func (w *Window) Tileable() bool { return w.tileable && !w.Floating() }

// Eligible reports whether the window could be tiled at all.
func (w *Window) Eligible() bool { return w.tileable }

// Geometry is the last committed tiled geometry.
func (w *Window) Geometry() Rect { return w.geometry }

// SetGeometry records a new authoritative tiled geometry without moving the
// window. Engine.Arrange is the normal caller.
func (w *Window) SetGeometry(r Rect) { w.geometry = r }

// ActualGeometry is the last observed on-screen geometry.
func (w *Window) ActualGeometry() Rect { return w.actual }

// SetActualGeometry records what the window system reported.
func (w *Window) SetActualGeometry(r Rect) { w.actual = r }

// Screen is the index of the display the window is laid out on.
func (w *Window) Screen() int { return w.screen }

// Placement returns the current placement.
func (w *Window) Placement() Placement { return w.placement }

// Floating reports whether the window is excluded from the layout.
func (w *Window) Floating() bool {
	_, floating := w.placement.Floating()
	return floating
}

// FloatGeometry returns where a floating window is pinned.
func (w *Window) FloatGeometry() (Rect, bool) {
	return w.placement.Floating()
}

// Float takes the window out of the layout at the given geometry.
func (w *Window) Float(at Rect) {
	w.placement = FloatingPlacement(at)
}

// Tile returns the window to layout control.
func (w *Window) Tile() {
	w.placement = TiledPlacement()
}

// target is the geometry the window should be showing.
func (w *Window) target() Rect {
	if at, ok := w.placement.Floating(); ok {
		return at
	}
	return w.geometry
}

// Commit moves the on-screen window to its authoritative geometry.
func (w *Window) Commit() error {
	if w.mover == nil {
		return fmt.Errorf("window %d has no mover", w.ID)
	}
	target := w.target()
	if err := w.mover.MoveResize(w.ID, target); err != nil {
		return fmt.Errorf("commit window %d: %w", w.ID, err)
	}
	w.actual = target
	return nil
}

// refusedSize reports whether the window system already answered a request
// for the current tiled geometry with the size the window now shows.
func (w *Window) refusedSize() bool {
	return w.answer.ok && w.answer.asked == w.geometry && w.answer.got.SameSize(w.actual)
}

func (w *Window) forgetAnswer() { w.answer = sizeAnswer{} }

func (w *Window) noteAnswer() {
	w.answer = sizeAnswer{asked: w.geometry, got: w.actual, ok: true}
}

func (w *Window) String() string {
	return fmt.Sprintf("%s(%d)", w.Class, w.ID)
}
