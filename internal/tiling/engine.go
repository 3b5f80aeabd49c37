package tiling

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/1broseidon/xtiler/internal/config"
	"github.com/1broseidon/xtiler/internal/platform"
)

// Backend is the subset of the platform backend the engine needs.
type Backend interface {
	Mover
	Displays() ([]platform.Display, error)
	CurrentDesktop() (int, error)
}

// WindowState is a read-only view of a managed window.
type WindowState struct {
	ID        platform.WindowID `json:"id"`
	Class     string            `json:"class"`
	Title     string            `json:"title"`
	Screen    int               `json:"screen"`
	Desktop   int               `json:"desktop"`
	Tileable  bool              `json:"tileable"`
	Floating  bool              `json:"floating"`
	Geometry  Rect              `json:"geometry"`
	Actual    Rect              `json:"actual"`
	FloatedAt *Rect             `json:"floated_at,omitempty"`
}

// Engine owns the managed window list and computes layouts.
//
// Engine is not safe for concurrent use. Every call is expected to come from
// the single host event loop.
type Engine struct {
	backend  Backend
	logger   *slog.Logger
	cfg      *config.Config
	displays []platform.Display
	clients  []*Window
	byID     map[platform.WindowID]*Window
	// masterPercent holds per-screen overrides set by AdjustLayout.
	masterPercent map[int]int
}

// NewEngine creates an engine. Call UpdateScreenCount before the first
// Arrange so the display list is populated.
func NewEngine(backend Backend, cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		backend:       backend,
		logger:        logger,
		cfg:           cfg,
		byID:          make(map[platform.WindowID]*Window),
		masterPercent: make(map[int]int),
	}
}

// UpdateConfig swaps layout settings. Adjusted master ratios are dropped
// when the layout mode changes.
func (e *Engine) UpdateConfig(cfg *config.Config) {
	if e.cfg == nil || e.cfg.Layout != cfg.Layout || e.cfg.MasterWidthPercent != cfg.MasterWidthPercent {
		e.masterPercent = make(map[int]int)
	}
	e.cfg = cfg
}

// UpdateScreenCount refreshes the display list. Windows on screens that no
// longer exist move to the display under their centre, or the first one.
func (e *Engine) UpdateScreenCount(count int) {
	displays, err := e.backend.Displays()
	if err != nil {
		e.logger.Warn("failed to list displays", "error", err)
		return
	}
	if len(displays) != count {
		e.logger.Debug("display count differs from reported screen count",
			"reported", count, "displays", len(displays))
	}
	e.displays = displays

	for screen := range e.masterPercent {
		if screen >= len(displays) {
			delete(e.masterPercent, screen)
		}
	}
	for _, w := range e.clients {
		if w.screen >= len(displays) {
			w.screen = e.screenFor(w.actual)
		}
	}
	e.logger.Info("screens updated", "count", len(displays))
}

// Displays returns the known displays.
func (e *Engine) Displays() []platform.Display {
	return e.displays
}

// ManageClient registers a window. Registering twice is a no-op.
func (e *Engine) ManageClient(w *Window) {
	if _, ok := e.byID[w.ID]; ok {
		return
	}
	w.screen = e.screenFor(w.actual)
	e.clients = append(e.clients, w)
	e.byID[w.ID] = w
	e.logger.Debug("managing window", "window", w.String(), "screen", w.screen, "tileable", w.tileable)
}

// UnmanageClient forgets a window. Unknown windows are ignored.
func (e *Engine) UnmanageClient(w *Window) {
	if _, ok := e.byID[w.ID]; !ok {
		return
	}
	delete(e.byID, w.ID)
	for i, c := range e.clients {
		if c.ID == w.ID {
			e.clients = append(e.clients[:i], e.clients[i+1:]...)
			break
		}
	}
	e.logger.Debug("unmanaged window", "window", w.String())
}

// Lookup returns a managed window by ID.
func (e *Engine) Lookup(id platform.WindowID) (*Window, bool) {
	w, ok := e.byID[id]
	return w, ok
}

// Arrange recomputes and commits the layout of every screen on the current
// desktop. Floating and non-tileable windows are left where they are.
func (e *Engine) Arrange() {
	desktop, err := e.backend.CurrentDesktop()
	if err != nil {
		e.logger.Warn("failed to read current desktop, arranging all desktops", "error", err)
		desktop = platform.StickyDesktop
	}

	for screen := range e.displays {
		tiles := e.tiledOn(screen, desktop)
		if len(tiles) == 0 {
			continue
		}

		area, err := e.area(screen)
		if err != nil {
			e.logger.Warn("skipping screen", "screen", screen, "error", err)
			continue
		}

		positions, err := CalculatePositions(len(tiles), area, e.cfg.Layout, e.masterPercentFor(screen), e.cfg.GapSize)
		if err != nil {
			e.logger.Warn("layout failed", "screen", screen, "windows", len(tiles), "error", err)
			continue
		}

		for i, w := range tiles {
			w.geometry = positions[i]
			if err := w.Commit(); err != nil {
				e.logger.Warn("failed to place window", "window", w.String(), "error", err)
			}
		}
		e.logger.Debug("arranged screen", "screen", screen, "desktop", desktop,
			"layout", e.cfg.Layout, "windows", len(tiles))
	}
}

// AdjustLayout folds a finished mouse resize back into the layout. Only the
// master-stack mode has a ratio to adjust.
func (e *Engine) AdjustLayout(w *Window) {
	if e.cfg.Layout != config.LayoutModeMasterStack {
		return
	}
	if _, ok := e.byID[w.ID]; !ok || w.Floating() {
		return
	}

	desktop, err := e.backend.CurrentDesktop()
	if err != nil {
		desktop = platform.StickyDesktop
	}
	tiles := e.tiledOn(w.screen, desktop)
	if len(tiles) < 2 {
		return
	}
	index := -1
	for i, t := range tiles {
		if t.ID == w.ID {
			index = i
			break
		}
	}
	if index < 0 {
		return
	}

	area, err := e.area(w.screen)
	if err != nil {
		e.logger.Warn("cannot adjust layout", "screen", w.screen, "error", err)
		return
	}
	pct := MasterPercentFor(index, w.actual, area, e.cfg.GapSize)
	e.masterPercent[w.screen] = pct
	e.logger.Debug("master ratio adjusted", "screen", w.screen, "window", w.String(), "percent", pct)
}

// EnforceClientSize snaps a tiled window back when its size drifted from
// the layout. Position drift is tolerated since decorations can shift it.
func (e *Engine) EnforceClientSize(w *Window) {
	if _, ok := e.byID[w.ID]; !ok {
		return
	}
	if w.Floating() {
		// Floating windows stay wherever the user puts them.
		w.Float(w.actual)
		return
	}
	if !w.tileable {
		return
	}
	if w.actual.SameSize(w.geometry) {
		w.forgetAnswer()
		return
	}
	// Asking again for a size the window system has already rounded would
	// only repeat the same answer.
	if w.refusedSize() {
		e.logger.Debug("window settled at granted size", "window", w.String(),
			"want", w.geometry, "got", w.actual)
		return
	}
	w.noteAnswer()
	if err := w.Commit(); err != nil {
		e.logger.Warn("failed to enforce window size", "window", w.String(), "error", err)
	}
}

// Retile puts a floating window back under layout control. It reports
// false when the window is unknown.
func (e *Engine) Retile(id platform.WindowID) bool {
	w, ok := e.byID[id]
	if !ok {
		return false
	}
	if w.Floating() {
		w.Tile()
		w.screen = e.screenFor(w.actual)
	}
	return true
}

// Snapshot lists managed windows ordered by screen and layout position.
func (e *Engine) Snapshot() []WindowState {
	out := make([]WindowState, 0, len(e.clients))
	for _, w := range e.clients {
		st := WindowState{
			ID:       w.ID,
			Class:    w.Class,
			Title:    w.Title,
			Screen:   w.screen,
			Desktop:  w.Desktop,
			Tileable: w.tileable,
			Geometry: w.geometry,
			Actual:   w.actual,
		}
		if at, ok := w.FloatGeometry(); ok {
			st.Floating = true
			st.FloatedAt = &at
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Screen < out[j].Screen
	})
	return out
}

// Layout returns the active layout mode.
func (e *Engine) Layout() config.LayoutMode {
	return e.cfg.Layout
}

func (e *Engine) tiledOn(screen, desktop int) []*Window {
	var tiles []*Window
	for _, w := range e.clients {
		if !w.tileable || w.Floating() || w.screen != screen {
			continue
		}
		if desktop != platform.StickyDesktop && w.Desktop != platform.StickyDesktop && w.Desktop != desktop {
			continue
		}
		tiles = append(tiles, w)
	}
	return tiles
}

func (e *Engine) area(screen int) (Rect, error) {
	if screen < 0 || screen >= len(e.displays) {
		return Rect{}, fmt.Errorf("screen %d out of range (%d displays)", screen, len(e.displays))
	}
	return ApplyPadding(e.displays[screen].Usable, e.cfg.ScreenPadding)
}

func (e *Engine) masterPercentFor(screen int) int {
	if pct, ok := e.masterPercent[screen]; ok {
		return pct
	}
	return e.cfg.MasterWidthPercent
}

func (e *Engine) screenFor(r Rect) int {
	x, y := r.Center()
	if i := platform.DisplayAt(e.displays, x, y); i >= 0 {
		return i
	}
	return 0
}
