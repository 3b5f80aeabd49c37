package tiling

import (
	"testing"

	"github.com/1broseidon/xtiler/internal/config"
)

func TestCalculateGrid(t *testing.T) {
	tests := []struct {
		n, rows, cols int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{2, 1, 2},
		{3, 2, 2},
		{5, 2, 3},
		{9, 3, 3},
	}
	for _, tt := range tests {
		rows, cols := CalculateGrid(tt.n)
		if rows != tt.rows || cols != tt.cols {
			t.Errorf("CalculateGrid(%d) = %dx%d, want %dx%d", tt.n, rows, cols, tt.rows, tt.cols)
		}
	}
}

func TestCalculatePositions_MasterStack(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 1000, Height: 800}

	positions, err := CalculatePositions(3, area, config.LayoutModeMasterStack, 50, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// masterWidth = 1000*50/100 - 10 = 490
	// stackX = 490 + 20 = 510, stackWidth = 1000 - 490 - 30 = 480
	// cellHeight = (800 - 3*10) / 2 = 385
	want := []Rect{
		{X: 10, Y: 10, Width: 490, Height: 780},
		{X: 510, Y: 10, Width: 480, Height: 385},
		{X: 510, Y: 405, Width: 480, Height: 385},
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Fatalf("position %d = %+v, want %+v", i, positions[i], want[i])
		}
	}
}

func TestCalculatePositions_MasterStackSingleWindowFills(t *testing.T) {
	area := Rect{X: 100, Y: 0, Width: 1000, Height: 800}

	positions, err := CalculatePositions(1, area, config.LayoutModeMasterStack, 50, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Rect{X: 110, Y: 10, Width: 980, Height: 780}
	if positions[0] != want {
		t.Fatalf("got %+v, want %+v", positions[0], want)
	}
}

func TestCalculatePositions_AutoFlexibleLastRow(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 310, Height: 210}

	// 3 windows → 2x2 grid with one window in the last row spanning the width.
	positions, err := CalculatePositions(3, area, config.LayoutModeAuto, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if positions[0].Width != 140 || positions[1].Width != 140 {
		t.Fatalf("expected first row widths 140, got %d and %d", positions[0].Width, positions[1].Width)
	}
	if positions[2].Width != 290 || positions[2].X != 10 {
		t.Fatalf("expected last row to span, got %+v", positions[2])
	}
}

func TestCalculatePositions_VerticalAndHorizontal(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 300, Height: 300}

	vertical, err := CalculatePositions(2, area, config.LayoutModeVertical, 0, 0)
	if err != nil {
		t.Fatalf("vertical: %v", err)
	}
	if vertical[1] != (Rect{X: 0, Y: 150, Width: 300, Height: 150}) {
		t.Fatalf("vertical[1] = %+v", vertical[1])
	}

	horizontal, err := CalculatePositions(2, area, config.LayoutModeHorizontal, 0, 0)
	if err != nil {
		t.Fatalf("horizontal: %v", err)
	}
	if horizontal[1] != (Rect{X: 150, Y: 0, Width: 150, Height: 300}) {
		t.Fatalf("horizontal[1] = %+v", horizontal[1])
	}
}

func TestCalculatePositions_MonocleStacksEverything(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 400, Height: 300}

	positions, err := CalculatePositions(3, area, config.LayoutModeMonocle, 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(positions))
	}
	for i, p := range positions {
		if p != (Rect{X: 5, Y: 5, Width: 390, Height: 290}) {
			t.Fatalf("position %d = %+v", i, p)
		}
	}
}

func TestCalculatePositions_ErrorsWhenInsufficientSpace(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 20, Height: 10}

	if _, err := CalculatePositions(2, area, config.LayoutModeHorizontal, 0, 20); err == nil {
		t.Fatalf("expected error for insufficient space")
	}
	if _, err := CalculatePositions(3, area, config.LayoutModeMasterStack, 50, 20); err == nil {
		t.Fatalf("expected master-stack error for insufficient space")
	}
}

func TestCalculatePositions_UnknownMode(t *testing.T) {
	if _, err := CalculatePositions(1, Rect{Width: 10, Height: 10}, "spiral", 0, 0); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestMasterPercentFor_InvertsLayout(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 1000, Height: 800}
	positions, err := CalculatePositions(2, area, config.LayoutModeMasterStack, 60, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := MasterPercentFor(0, positions[0], area, 10); got != 60 {
		t.Fatalf("master inversion = %d, want 60", got)
	}
	if got := MasterPercentFor(1, positions[1], area, 10); got != 60 {
		t.Fatalf("stack inversion = %d, want 60", got)
	}
}

func TestMasterPercentFor_Clamps(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 1000, Height: 800}

	if got := MasterPercentFor(0, Rect{Width: 20}, area, 0); got != config.MinMasterWidthPercent {
		t.Fatalf("expected clamp to min, got %d", got)
	}
	if got := MasterPercentFor(0, Rect{Width: 990}, area, 0); got != config.MaxMasterWidthPercent {
		t.Fatalf("expected clamp to max, got %d", got)
	}
}

func TestApplyPadding(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	got, err := ApplyPadding(area, config.Margins{Top: 10, Left: 5, Right: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (Rect{X: 5, Y: 10, Width: 90, Height: 90}) {
		t.Fatalf("got %+v", got)
	}

	if _, err := ApplyPadding(area, config.Margins{Left: 60, Right: 60}); err == nil {
		t.Fatalf("expected error when padding consumes the area")
	}
}
