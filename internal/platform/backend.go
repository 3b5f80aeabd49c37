package platform

import "math"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Sub returns the componentwise difference r - o.
func (r Rect) Sub(o Rect) Rect {
	return Rect{
		X:      r.X - o.X,
		Y:      r.Y - o.Y,
		Width:  r.Width - o.Width,
		Height: r.Height - o.Height,
	}
}

// Offset returns the Euclidean length of the positional part of r.
func (r Rect) Offset() float64 {
	return math.Sqrt(float64(r.X*r.X + r.Y*r.Y))
}

// Center returns the midpoint of r.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// SameSize reports whether r and o have identical dimensions.
func (r Rect) SameSize(o Rect) bool {
	return r.Width == o.Width && r.Height == o.Height
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// StickyDesktop is reported for windows visible on every desktop.
const StickyDesktop = -1

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	CurrentDesktop() (int, error)
	WindowDesktop(windowID WindowID) (int, error)
	MoveResize(windowID WindowID, bounds Rect) error
}

// DisplayAt returns the index of the display containing the point, or -1.
func DisplayAt(displays []Display, x, y int) int {
	for i, d := range displays {
		if d.Bounds.Contains(x, y) {
			return i
		}
	}
	return -1
}
