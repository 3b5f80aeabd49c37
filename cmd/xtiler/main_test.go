package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/1broseidon/xtiler/internal/ipc"
	"github.com/1broseidon/xtiler/internal/platform"
	"github.com/1broseidon/xtiler/internal/tiling"
)

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"4194307", 4194307, false},
		{"0x400003", 0x400003, false},
		{"0", 0, true},
		{"kitty", 0, true},
		{"0x1ffffffff", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseWindowID(%q) = %d, %v; want %d, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestPrinterStatusPlain(t *testing.T) {
	var buf bytes.Buffer
	newPrinterFor(&buf, false).status(&ipc.StatusData{
		Layout: "master-stack", Screens: 2, Managed: 5, Floating: 1, UptimeSeconds: 90, DaemonRunning: true,
	})

	out := buf.String()
	for _, want := range []string{"layout:         master-stack", "managed:        5", "uptime:         1m30s"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain output contains escape codes:\n%s", out)
	}
}

func TestPrinterWindowsPlain(t *testing.T) {
	at := platform.Rect{X: 300, Y: 200, Width: 640, Height: 480}
	windows := []tiling.WindowState{
		{ID: 0x400003, Class: "kitty", Title: "shell", Screen: 0, Tileable: true,
			Geometry: platform.Rect{X: 8, Y: 8, Width: 900, Height: 1000}},
		{ID: 0x600001, Class: "gimp", Screen: 1, Tileable: true, Floating: true, FloatedAt: &at},
	}

	var buf bytes.Buffer
	newPrinterFor(&buf, false).windows(windows)
	out := buf.String()

	for _, want := range []string{"screen 0", "screen 1", "0x00400003  tiled", "0x00600001  floating", "300,200", "640x480"} {
		if !strings.Contains(out, want) {
			t.Errorf("windows output missing %q:\n%s", want, out)
		}
	}
}

func TestPrinterWindowsEmpty(t *testing.T) {
	var buf bytes.Buffer
	newPrinterFor(&buf, false).windows(nil)
	if got := strings.TrimSpace(buf.String()); got != "no managed windows" {
		t.Fatalf("output = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("a-very-long-class-name", 6); got != "a-ver…" {
		t.Errorf("truncate long = %q", got)
	}
}
