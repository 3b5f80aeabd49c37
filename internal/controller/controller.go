// Package controller translates window-manager events into tiling engine
// calls. It keeps no state of its own beyond the engine it drives and a
// read-only configuration.
package controller

import (
	"log/slog"

	"github.com/1broseidon/xtiler/internal/config"
	"github.com/1broseidon/xtiler/internal/tiling"
)

// DragThreshold is how far, in pixels, a finished drag must carry a tiled
// window before it is left floating where it was dropped. Shorter drags are
// treated as pointer jitter and snapped back. The value is empirical.
const DragThreshold = 30.0

// Engine is the arrangement engine the controller drives.
type Engine interface {
	UpdateScreenCount(count int)
	Arrange()
	ManageClient(w *tiling.Window)
	UnmanageClient(w *tiling.Window)
	AdjustLayout(w *tiling.Window)
	EnforceClientSize(w *tiling.Window)
}

// Handler is the event surface a window-manager host drives. Handlers are
// invoked one at a time and run to completion.
type Handler interface {
	OnScreenCountChanged(count int)
	OnScreenResized(screen int)
	OnCurrentActivityChanged(activity string)
	OnCurrentDesktopChanged(desktop int)
	OnWindowAdded(w *tiling.Window)
	OnWindowRemoved(w *tiling.Window)
	OnWindowMoveStart(w *tiling.Window)
	OnWindowMove(w *tiling.Window)
	OnWindowMoveOver(w *tiling.Window)
	OnWindowResizeStart(w *tiling.Window)
	OnWindowResize(w *tiling.Window)
	OnWindowResizeOver(w *tiling.Window)
	OnWindowGeometryChanged(w *tiling.Window)
	OnWindowChanged(w *tiling.Window, reason string)
}

// Controller is the Handler implementation backed by an Engine.
type Controller struct {
	engine Engine
	cfg    *config.Config
	logger *slog.Logger
}

var _ Handler = (*Controller)(nil)

// New creates a controller. cfg is read, never written.
func New(engine Engine, cfg *config.Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{engine: engine, cfg: cfg, logger: logger}
}

// OnScreenCountChanged refreshes the display list and re-arranges.
func (c *Controller) OnScreenCountChanged(count int) {
	c.logger.Debug("onScreenCountChanged", "count", count)
	c.engine.UpdateScreenCount(count)
	c.engine.Arrange()
}

// OnScreenResized re-arranges after a display changed its usable area.
func (c *Controller) OnScreenResized(screen int) {
	c.logger.Debug("onScreenResized", "screen", screen)
	c.engine.Arrange()
}

// OnCurrentActivityChanged re-arranges for the new activity.
func (c *Controller) OnCurrentActivityChanged(activity string) {
	c.logger.Debug("onCurrentActivityChanged", "activity", activity)
	c.engine.Arrange()
}

// OnCurrentDesktopChanged re-arranges for the new desktop.
func (c *Controller) OnCurrentDesktopChanged(desktop int) {
	c.logger.Debug("onCurrentDesktopChanged", "desktop", desktop)
	c.engine.Arrange()
}

// OnWindowAdded starts managing w and re-arranges.
func (c *Controller) OnWindowAdded(w *tiling.Window) {
	c.logger.Debug("onWindowAdded", "window", w)
	c.engine.ManageClient(w)
	c.engine.Arrange()
}

// OnWindowRemoved stops managing w and re-arranges.
func (c *Controller) OnWindowRemoved(w *tiling.Window) {
	c.logger.Debug("onWindowRemoved", "window", w)
	c.engine.UnmanageClient(w)
	c.engine.Arrange()
}

// OnWindowMoveStart is a no-op; nothing is decided until the drag ends.
func (c *Controller) OnWindowMoveStart(w *tiling.Window) {}

// OnWindowMove is a no-op.
func (c *Controller) OnWindowMove(w *tiling.Window) {}

// OnWindowMoveOver floats a tiled window that was dragged further than
// DragThreshold and snaps it back otherwise.
func (c *Controller) OnWindowMoveOver(w *tiling.Window) {
	c.logger.Debug("onWindowMoveOver", "window", w)
	if !w.Tileable() {
		return
	}

	actual := w.ActualGeometry()
	if DragDistance(w.Geometry(), actual) > DragThreshold {
		w.Float(actual)
		c.engine.Arrange()
		return
	}
	if err := w.Commit(); err != nil {
		c.logger.Warn("failed to snap window back", "window", w, "error", err)
	}
}

// OnWindowResizeStart is a no-op; nothing is decided until the resize ends.
func (c *Controller) OnWindowResizeStart(w *tiling.Window) {}

// OnWindowResize is a no-op.
func (c *Controller) OnWindowResize(w *tiling.Window) {}

// OnWindowResizeOver lets the layout absorb a mouse resize when enabled, and
// reverts the resize when it is not.
func (c *Controller) OnWindowResizeOver(w *tiling.Window) {
	c.logger.Debug("onWindowResizeOver", "window", w)
	switch {
	case c.cfg.MouseAdjustLayout && w.Tileable():
		c.engine.AdjustLayout(w)
		c.engine.Arrange()
	case !c.cfg.MouseAdjustLayout:
		c.engine.EnforceClientSize(w)
	}
}

// OnWindowGeometryChanged holds a tiled window to its layout size.
func (c *Controller) OnWindowGeometryChanged(w *tiling.Window) {
	c.logger.Debug("onWindowGeometryChanged", "window", w)
	c.engine.EnforceClientSize(w)
}

// OnWindowChanged re-arranges on any other window change. A nil window is
// accepted so hosts can forward events without checking.
func (c *Controller) OnWindowChanged(w *tiling.Window, reason string) {
	if w == nil {
		return
	}
	c.logger.Debug("onWindowChanged", "window", w, "reason", reason)
	// TODO: classify reasons once the engine can re-arrange a single screen.
	c.engine.Arrange()
}

// DragDistance is the Euclidean distance between the origins of the tiled
// geometry and where the window actually ended up.
func DragDistance(geometry, actual tiling.Rect) float64 {
	return actual.Sub(geometry).Offset()
}
