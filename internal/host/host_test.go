package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/1broseidon/xtiler/internal/config"
	"github.com/1broseidon/xtiler/internal/controller"
	"github.com/1broseidon/xtiler/internal/platform"
	"github.com/1broseidon/xtiler/internal/tiling"
	"github.com/1broseidon/xtiler/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

type recordingHandler struct {
	calls []string
}

func (r *recordingHandler) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recordingHandler) OnScreenCountChanged(count int) { r.record("screens(%d)", count) }
func (r *recordingHandler) OnScreenResized(screen int)     { r.record("resized(%d)", screen) }
func (r *recordingHandler) OnCurrentActivityChanged(a string) {
	r.record("activity(%s)", a)
}
func (r *recordingHandler) OnCurrentDesktopChanged(d int)      { r.record("desktop(%d)", d) }
func (r *recordingHandler) OnWindowAdded(w *tiling.Window)     { r.record("added(%d)", w.ID) }
func (r *recordingHandler) OnWindowRemoved(w *tiling.Window)   { r.record("removed(%d)", w.ID) }
func (r *recordingHandler) OnWindowMoveStart(w *tiling.Window) { r.record("moveStart(%d)", w.ID) }
func (r *recordingHandler) OnWindowMove(w *tiling.Window)      { r.record("move(%d)", w.ID) }
func (r *recordingHandler) OnWindowMoveOver(w *tiling.Window)  { r.record("moveOver(%d)", w.ID) }
func (r *recordingHandler) OnWindowResizeStart(w *tiling.Window) {
	r.record("resizeStart(%d)", w.ID)
}
func (r *recordingHandler) OnWindowResize(w *tiling.Window)     { r.record("resize(%d)", w.ID) }
func (r *recordingHandler) OnWindowResizeOver(w *tiling.Window) { r.record("resizeOver(%d)", w.ID) }
func (r *recordingHandler) OnWindowGeometryChanged(w *tiling.Window) {
	r.record("geometry(%d)", w.ID)
}
func (r *recordingHandler) OnWindowChanged(w *tiling.Window, reason string) {
	r.record("changed(%d,%s)", w.ID, reason)
}

type fakeBackend struct {
	displays []platform.Display
}

func (b *fakeBackend) Displays() ([]platform.Display, error)             { return b.displays, nil }
func (b *fakeBackend) CurrentDesktop() (int, error)                      { return 0, nil }
func (b *fakeBackend) WindowDesktop(platform.WindowID) (int, error)      { return 0, nil }
func (b *fakeBackend) MoveResize(platform.WindowID, platform.Rect) error { return nil }

func newTestHost(backend platform.Backend) (*Host, *recordingHandler) {
	handler := &recordingHandler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(nil, backend, handler, config.DefaultConfig(), logger), handler
}

func display(x, width int) platform.Display {
	r := platform.Rect{X: x, Width: width, Height: 1080}
	return platform.Display{Bounds: r, Usable: r}
}

func TestRefreshScreens(t *testing.T) {
	backend := &fakeBackend{displays: []platform.Display{display(0, 1920)}}
	h, handler := newTestHost(backend)

	h.refreshScreens()
	h.refreshScreens()

	backend.displays = append(backend.displays, display(1920, 1280))
	h.refreshScreens()

	backend.displays[1].Usable.Y = 30
	backend.displays[1].Usable.Height = 1050
	h.refreshScreens()

	want := []string{"screens(1)", "screens(2)", "resized(1)"}
	if !reflect.DeepEqual(handler.calls, want) {
		t.Fatalf("calls = %v, want %v", handler.calls, want)
	}
}

func TestEmitTranslatesEvents(t *testing.T) {
	h, handler := newTestHost(&fakeBackend{})
	w := tiling.NewWindow(tiling.WindowSpec{ID: 7}, nil)

	h.emit(w, []event{eventMoveStart, eventMove, eventMoveOver, eventResizeStart, eventResize, eventResizeOver, eventGeometryChanged})

	want := []string{"moveStart(7)", "move(7)", "moveOver(7)", "resizeStart(7)", "resize(7)", "resizeOver(7)", "geometry(7)"}
	if !reflect.DeepEqual(handler.calls, want) {
		t.Fatalf("calls = %v, want %v", handler.calls, want)
	}
}

func TestDispatchRecoversPanics(t *testing.T) {
	h, _ := newTestHost(&fakeBackend{})
	ran := false

	h.dispatch("boom", func() { panic("handler fault") })
	h.dispatch("next", func() { ran = true })

	if !ran {
		t.Fatalf("dispatch after a panic did not run")
	}
}

func TestDoRunsOnLoop(t *testing.T) {
	h, _ := newTestHost(&fakeBackend{})
	go func() {
		fn := <-h.commands
		fn()
	}()

	value := 0
	if err := h.Do(context.Background(), func() { value = 42 }); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if value != 42 {
		t.Fatalf("command did not run, value = %d", value)
	}
}

func TestDoAfterStop(t *testing.T) {
	h, _ := newTestHost(&fakeBackend{})
	close(h.done)

	if err := h.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("Do() error = %v, want ErrStopped", err)
	}
}

func TestDoHonoursContext(t *testing.T) {
	h, _ := newTestHost(&fakeBackend{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := h.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do() error = %v, want deadline exceeded", err)
	}
}

func TestCommitted(t *testing.T) {
	tiled := platform.Rect{Width: 500, Height: 500}
	w := tiling.NewWindow(tiling.WindowSpec{ID: 1, Geometry: tiled}, nil)
	if got := committed(w); got != tiled {
		t.Fatalf("committed() = %+v, want %+v", got, tiled)
	}
	at := platform.Rect{X: 100, Y: 100, Width: 300, Height: 200}
	w.Float(at)
	if got := committed(w); got != at {
		t.Fatalf("committed() = %+v, want %+v", got, at)
	}
}

func TestFloatingWindowFollowsDrag(t *testing.T) {
	backend := &fakeBackend{displays: []platform.Display{display(0, 1920)}}
	cfg := config.DefaultConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := tiling.NewEngine(backend, cfg, logger)
	h := New(nil, backend, controller.New(engine, cfg, logger), cfg, logger)
	h.handler.OnScreenCountChanged(1)

	start := platform.Rect{X: 100, Y: 100, Width: 400, Height: 300}
	w := tiling.NewWindow(tiling.WindowSpec{ID: 1, Tileable: true, Geometry: start}, backend)
	h.handler.OnWindowAdded(w)
	w.Float(start)
	w.SetActualGeometry(start)

	var drag dragTracker
	steps := []platform.Rect{
		{X: 300, Y: 100, Width: 400, Height: 300},
		{X: 600, Y: 400, Width: 400, Height: 300},
	}
	prev := start
	for _, next := range steps {
		w.SetActualGeometry(next)
		h.emit(w, drag.configure(prev, next, true))
		prev = next
	}
	h.emit(w, drag.release())

	at, ok := w.FloatGeometry()
	if !ok {
		t.Fatalf("window should still be floating")
	}
	if at != steps[1] {
		t.Fatalf("float geometry = %+v, want %+v", at, steps[1])
	}
	if got := committed(w); got != steps[1] {
		t.Fatalf("committed() = %+v, want %+v", got, steps[1])
	}
}

type fakeWindows struct {
	list []xproto.Window
	info x11.WindowInfo
	box  x11.Box
}

func (f *fakeWindows) ClientList() ([]xproto.Window, error)           { return f.list, nil }
func (f *fakeWindows) Describe(xproto.Window) (x11.WindowInfo, error) { return f.info, nil }
func (f *fakeWindows) Geometry(xproto.Window) (x11.Box, error)        { return f.box, nil }

func TestSyncClientsRetriesFailedWindows(t *testing.T) {
	h, handler := newTestHost(&fakeBackend{})
	h.windows = &fakeWindows{
		list: []xproto.Window{5},
		info: x11.WindowInfo{Class: "kitty"},
		box:  x11.Box{Width: 400, Height: 300},
	}
	failures := 1
	h.watch = func(platform.WindowID) error {
		if failures > 0 {
			failures--
			return errors.New("bad window")
		}
		return nil
	}

	h.syncClients()
	if len(handler.calls) != 0 || h.seen[5] {
		t.Fatalf("failed window should stay unseen, calls=%v", handler.calls)
	}

	h.syncClients()
	want := []string{"added(5)"}
	if !reflect.DeepEqual(handler.calls, want) {
		t.Fatalf("calls = %v, want %v", handler.calls, want)
	}
}

func TestSyncClientsRemembersIgnoredWindows(t *testing.T) {
	h, handler := newTestHost(&fakeBackend{})
	h.windows = &fakeWindows{
		list: []xproto.Window{9},
		info: x11.WindowInfo{Class: "polybar", Types: []string{"_NET_WM_WINDOW_TYPE_DOCK"}},
	}
	watched := 0
	h.watch = func(platform.WindowID) error {
		watched++
		return nil
	}

	h.syncClients()
	h.syncClients()
	if !h.seen[9] || watched != 0 || len(handler.calls) != 0 {
		t.Fatalf("ignored window should be seen but not managed: seen=%v watched=%d calls=%v",
			h.seen[9], watched, handler.calls)
	}
}

func TestDrainQuitServicesPingsUntilQuit(t *testing.T) {
	h, _ := newTestHost(&fakeBackend{})
	before, after, quit := make(chan struct{}), make(chan struct{}), make(chan struct{})
	go func() {
		before <- struct{}{}
		after <- struct{}{}
		quit <- struct{}{}
	}()

	finished := make(chan struct{})
	go func() {
		h.drainQuit(before, after, quit)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(quitTimeout / 2):
		t.Fatal("drainQuit did not return after quit")
	}
}

func TestDrainQuitGivesUp(t *testing.T) {
	h, _ := newTestHost(&fakeBackend{})
	start := time.Now()
	h.drainQuit(make(chan struct{}), make(chan struct{}), make(chan struct{}))
	if elapsed := time.Since(start); elapsed < quitTimeout {
		t.Fatalf("drainQuit returned after %v, before the timeout", elapsed)
	}
}
