package platform

import (
	"math"
	"testing"
)

func TestRectSub(t *testing.T) {
	a := Rect{X: 50, Y: 10, Width: 800, Height: 600}
	b := Rect{X: 20, Y: 30, Width: 700, Height: 600}

	got := a.Sub(b)
	want := Rect{X: 30, Y: -20, Width: 100, Height: 0}
	if got != want {
		t.Fatalf("Sub() = %+v, want %+v", got, want)
	}
}

func TestRectOffset(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want float64
	}{
		{"zero", Rect{}, 0},
		{"horizontal", Rect{X: 50}, 50},
		{"pythagorean", Rect{X: 3, Y: -4}, 5},
		{"size ignored", Rect{X: 0, Y: 0, Width: 100, Height: 100}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Offset(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Offset() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisplayAt(t *testing.T) {
	displays := []Display{
		{ID: 0, Bounds: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{ID: 1, Bounds: Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}},
	}

	if got := DisplayAt(displays, 100, 100); got != 0 {
		t.Fatalf("DisplayAt(100,100) = %d, want 0", got)
	}
	if got := DisplayAt(displays, 1920, 10); got != 1 {
		t.Fatalf("DisplayAt(1920,10) = %d, want 1", got)
	}
	if got := DisplayAt(displays, 5000, 10); got != -1 {
		t.Fatalf("DisplayAt(5000,10) = %d, want -1", got)
	}
}
