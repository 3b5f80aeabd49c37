// Package host connects the X11 event stream to a controller.Handler.
//
// All handler calls are made one at a time: xgbutil callbacks run between
// the MainPing before/after pings, and timer ticks and injected commands run
// on the Run goroutine while the event loop is parked.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/1broseidon/xtiler/internal/config"
	"github.com/1broseidon/xtiler/internal/controller"
	"github.com/1broseidon/xtiler/internal/platform"
	"github.com/1broseidon/xtiler/internal/tiling"
	"github.com/1broseidon/xtiler/internal/x11"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// quitTimeout bounds how long Run waits for xevent to acknowledge Quit.
const quitTimeout = time.Second

// ErrStopped is returned by Do once the event loop has exited.
var ErrStopped = errors.New("host event loop is not running")

// client is a managed window plus its drag state.
type client struct {
	window *tiling.Window
	drag   dragTracker
}

// windowSource is the part of the X connection used to discover clients.
type windowSource interface {
	ClientList() ([]xproto.Window, error)
	Describe(win xproto.Window) (x11.WindowInfo, error)
	Geometry(win xproto.Window) (x11.Box, error)
}

// Host owns the X11 side of the daemon.
type Host struct {
	conn    *x11.Connection
	backend platform.Backend
	handler controller.Handler
	cfg     *config.Config
	logger  *slog.Logger
	windows windowSource
	// watch subscribes to a client's configure and property events.
	watch func(id platform.WindowID) error

	// seen holds every window on the client list, managed or not, so
	// ignored windows are not re-examined on every list change.
	seen     map[platform.WindowID]bool
	clients  map[platform.WindowID]*client
	screens  []platform.Rect
	desktop  int
	activity string

	commands      chan func()
	screenChanged chan struct{}
	done          chan struct{}
}

// New creates a host. Run must be called to start dispatching.
func New(conn *x11.Connection, backend platform.Backend, handler controller.Handler, cfg *config.Config, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Host{
		conn:          conn,
		backend:       backend,
		handler:       handler,
		cfg:           cfg,
		logger:        logger,
		seen:          make(map[platform.WindowID]bool),
		clients:       make(map[platform.WindowID]*client),
		commands:      make(chan func()),
		screenChanged: make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
	if conn != nil {
		h.windows = conn
	}
	h.watch = h.watchClient
	return h
}

// SetHandler swaps the event handler. Call it from inside Do.
func (h *Host) SetHandler(handler controller.Handler) {
	h.handler = handler
}

// SetConfig swaps the configuration used to classify new windows. Call it
// from inside Do.
func (h *Host) SetConfig(cfg *config.Config) {
	h.cfg = cfg
}

// Do runs fn on the event loop goroutine and waits for it to finish.
func (h *Host) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		h.dispatch("command", fn)
	}
	select {
	case h.commands <- wrapped:
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run subscribes to root and RandR events, reports the initial state and
// then dispatches events until ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	defer close(h.done)

	xu := h.conn.XUtil
	if err := h.conn.ListenRoot(); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}
	if err := h.conn.SelectScreenChanges(); err != nil {
		h.logger.Warn("screen change notifications unavailable", "error", err)
	}

	xevent.PropertyNotifyFun(h.onRootProperty).Connect(xu, h.conn.Root)
	// xevent has no RandR callbacks; pick the notification off in a hook
	// and handle it on the Run goroutine.
	xevent.HookFun(func(_ *xgbutil.XUtil, ev interface{}) bool {
		if _, ok := ev.(randr.ScreenChangeNotifyEvent); ok {
			select {
			case h.screenChanged <- struct{}{}:
			default:
			}
			return false
		}
		return true
	}).Connect(xu)

	h.scan()

	pollEvery := time.Duration(h.cfg.PointerPollMS) * time.Millisecond
	if pollEvery <= 0 {
		pollEvery = config.DefaultPointerPollMS * time.Millisecond
	}
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	before, after, quit := xevent.MainPing(xu)
	h.logger.Info("event loop started", "pointer_poll", pollEvery)

	for {
		select {
		case <-before:
			<-after
		case <-h.screenChanged:
			h.dispatch("screen-change", h.refreshScreens)
		case fn := <-h.commands:
			fn()
		case <-ticker.C:
			h.dispatch("pointer-poll", h.pollPointer)
		case <-quit:
			h.logger.Info("event loop stopped")
			return nil
		case <-ctx.Done():
			xevent.Quit(xu)
			h.drainQuit(before, after, quit)
			h.logger.Info("event loop cancelled")
			return nil
		}
	}
}

// drainQuit lets the MainPing goroutine notice Quit and exit instead of
// blocking forever on a ping nobody reads.
func (h *Host) drainQuit(before, after, quit chan struct{}) {
	timeout := time.NewTimer(quitTimeout)
	defer timeout.Stop()
	for {
		select {
		case <-before:
			<-after
		case <-quit:
			return
		case <-timeout.C:
			h.logger.Warn("event loop did not stop in time")
			return
		}
	}
}

// dispatch runs one unit of work, isolating panics to it.
func (h *Host) dispatch(name string, fn func()) {
	defer func() {
		if err := recover(); err != nil {
			h.logger.Error("event handler panic recovered", "event", name, "error", err,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Resync re-reads screens, the current desktop and the client list, and
// reports whatever changed. Call it from inside Do.
func (h *Host) Resync() {
	h.refreshScreens()
	if desktop, err := h.conn.CurrentDesktop(); err == nil && desktop != h.desktop {
		h.desktop = desktop
		h.handler.OnCurrentDesktopChanged(desktop)
	}
	h.syncClients()
}

// scan reports the state found at startup as if it had just appeared.
func (h *Host) scan() {
	h.dispatch("initial-screens", h.refreshScreens)

	if desktop, err := h.conn.CurrentDesktop(); err == nil {
		h.desktop = desktop
	}
	h.activity = h.conn.CurrentActivity()

	h.dispatch("initial-clients", h.syncClients)
}

func (h *Host) onRootProperty(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
	name := h.conn.AtomName(ev.Atom)
	h.dispatch(name, func() {
		switch name {
		case "_NET_CLIENT_LIST":
			h.syncClients()
		case "_NET_CURRENT_DESKTOP":
			desktop, err := h.conn.CurrentDesktop()
			if err != nil {
				h.logger.Warn("failed to read current desktop", "error", err)
				return
			}
			if desktop != h.desktop {
				h.desktop = desktop
				h.handler.OnCurrentDesktopChanged(desktop)
			}
		case x11.ActivitiesAtom:
			activity := h.conn.CurrentActivity()
			if activity != h.activity {
				h.activity = activity
				h.handler.OnCurrentActivityChanged(activity)
			}
		case "_NET_WORKAREA":
			// Panels changed their struts; usable areas may have moved.
			h.refreshScreens()
		}
	})
}

// refreshScreens compares the current displays against the last known set.
func (h *Host) refreshScreens() {
	displays, err := h.backend.Displays()
	if err != nil {
		h.logger.Warn("failed to list displays", "error", err)
		return
	}
	screens := make([]platform.Rect, len(displays))
	for i, d := range displays {
		screens[i] = d.Usable
	}

	countChanged, resized := diffScreens(h.screens, screens)
	h.screens = screens
	if countChanged {
		h.handler.OnScreenCountChanged(len(screens))
		return
	}
	for _, screen := range resized {
		h.handler.OnScreenResized(screen)
	}
}

// syncClients reconciles the managed set with _NET_CLIENT_LIST.
func (h *Host) syncClients() {
	list, err := h.windows.ClientList()
	if err != nil {
		h.logger.Warn("failed to read client list", "error", err)
		return
	}
	current := make([]platform.WindowID, len(list))
	for i, win := range list {
		current[i] = platform.WindowID(win)
	}

	added, removed := diffClients(h.seen, current)
	for _, id := range removed {
		delete(h.seen, id)
		h.removeClient(id)
	}
	for _, id := range added {
		h.addClient(id)
	}
}

// addClient starts managing a window. Windows that fail to be read are left
// unseen so the next client list change or resync tries them again.
func (h *Host) addClient(id platform.WindowID) {
	win := xproto.Window(id)
	info, err := h.windows.Describe(win)
	if err != nil {
		h.logger.Debug("skipping window", "window", id, "error", err)
		return
	}
	manage, tileable := policy(info, h.cfg)
	if !manage {
		h.logger.Debug("ignoring window", "window", id, "class", info.Class)
		h.seen[id] = true
		return
	}

	box, err := h.windows.Geometry(win)
	if err != nil {
		h.logger.Debug("skipping window without geometry", "window", id, "error", err)
		return
	}
	desktop, err := h.backend.WindowDesktop(id)
	if err != nil {
		desktop = h.desktop
	}

	if err := h.watch(id); err != nil {
		h.logger.Warn("failed to listen on window", "window", id, "error", err)
		return
	}

	w := tiling.NewWindow(tiling.WindowSpec{
		ID:       id,
		Class:    info.Class,
		Title:    info.Title,
		Desktop:  desktop,
		Tileable: tileable,
		Geometry: rectFromBox(box),
	}, h.backend)
	h.seen[id] = true
	h.clients[id] = &client{window: w}
	h.handler.OnWindowAdded(w)
}

func (h *Host) watchClient(id platform.WindowID) error {
	win := xproto.Window(id)
	if err := h.conn.Listen(win); err != nil {
		return err
	}
	xu := h.conn.XUtil
	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, _ xevent.ConfigureNotifyEvent) {
		h.dispatch("configure", func() { h.onConfigure(id) })
	}).Connect(xu, win)
	xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name := h.conn.AtomName(ev.Atom)
		h.dispatch(name, func() { h.onClientProperty(id, name) })
	}).Connect(xu, win)
	return nil
}

func (h *Host) removeClient(id platform.WindowID) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	xevent.Detach(h.conn.XUtil, xproto.Window(id))
	h.handler.OnWindowRemoved(c.window)
}

func (h *Host) onConfigure(id platform.WindowID) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	box, err := h.conn.Geometry(xproto.Window(id))
	if err != nil {
		// Usually the window is being destroyed.
		h.logger.Debug("failed to read geometry", "window", id, "error", err)
		return
	}
	next := rectFromBox(box)
	prev := c.window.ActualGeometry()
	c.window.SetActualGeometry(next)

	held, err := h.conn.PointerButtons()
	if err != nil {
		h.logger.Debug("failed to query pointer", "error", err)
		held = false
	}
	// A configure that lands exactly on the committed geometry is our own
	// request, not the user dragging, even with a button down elsewhere.
	if held && !c.drag.active() && next == committed(c.window) {
		held = false
	}
	h.emit(c.window, c.drag.configure(prev, next, held))
}

func (h *Host) onClientProperty(id platform.WindowID, name string) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	if titleProperty(name) {
		c.window.Title = h.conn.Title(xproto.Window(id))
		return
	}
	if !forwardsProperty(name) {
		return
	}
	if name == "_NET_WM_DESKTOP" {
		if desktop, err := h.backend.WindowDesktop(id); err == nil {
			c.window.Desktop = desktop
		}
	}
	h.handler.OnWindowChanged(c.window, name)
}

// pollPointer finishes drags whose button release produced no configure.
func (h *Host) pollPointer() {
	dragging := false
	for _, c := range h.clients {
		if c.drag.active() {
			dragging = true
			break
		}
	}
	if !dragging {
		return
	}

	held, err := h.conn.PointerButtons()
	if err != nil || held {
		return
	}
	for id, c := range h.clients {
		if !c.drag.active() {
			continue
		}
		if box, err := h.conn.Geometry(xproto.Window(id)); err == nil {
			c.window.SetActualGeometry(rectFromBox(box))
		}
		h.emit(c.window, c.drag.release())
	}
}

func (h *Host) emit(w *tiling.Window, events []event) {
	for _, ev := range events {
		switch ev {
		case eventMoveStart:
			h.handler.OnWindowMoveStart(w)
		case eventMove:
			h.handler.OnWindowMove(w)
		case eventMoveOver:
			h.handler.OnWindowMoveOver(w)
			repin(w)
		case eventResizeStart:
			h.handler.OnWindowResizeStart(w)
		case eventResize:
			h.handler.OnWindowResize(w)
		case eventResizeOver:
			h.handler.OnWindowResizeOver(w)
			repin(w)
		case eventGeometryChanged:
			h.handler.OnWindowGeometryChanged(w)
		}
	}
}

// repin keeps a floating window pinned where a finished drag left it.
func repin(w *tiling.Window) {
	if at, ok := w.FloatGeometry(); ok && at != w.ActualGeometry() {
		w.Float(w.ActualGeometry())
	}
}

// committed is the geometry the window was last asked to take.
func committed(w *tiling.Window) platform.Rect {
	if at, ok := w.FloatGeometry(); ok {
		return at
	}
	return w.Geometry()
}

func rectFromBox(b x11.Box) platform.Rect {
	return platform.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}
