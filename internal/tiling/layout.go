package tiling

import (
	"fmt"
	"math"

	"github.com/1broseidon/xtiler/internal/config"
	"github.com/1broseidon/xtiler/internal/platform"
)

// Rect represents a window position and size
type Rect = platform.Rect

// CalculateGrid determines the optimal grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows == 0 {
		return 0, 0
	}

	// Calculate columns first (ceiling of square root)
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))

	// Calculate rows needed
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	return rows, cols
}

// CalculatePositions computes tile rectangles for numWindows windows inside
// area. masterPercent only matters for the master-stack mode.
func CalculatePositions(numWindows int, area Rect, mode config.LayoutMode, masterPercent, gapSize int) ([]Rect, error) {
	if numWindows == 0 {
		return nil, nil
	}

	switch mode {
	case config.LayoutModeAuto:
		rows, cols := CalculateGrid(numWindows)
		return gridPositions(numWindows, rows, cols, area, gapSize, true)
	case config.LayoutModeVertical:
		return gridPositions(numWindows, numWindows, 1, area, gapSize, false)
	case config.LayoutModeHorizontal:
		return gridPositions(numWindows, 1, numWindows, area, gapSize, false)
	case config.LayoutModeMonocle:
		full, err := gridPositions(1, 1, 1, area, gapSize, false)
		if err != nil {
			return nil, err
		}
		positions := make([]Rect, numWindows)
		for i := range positions {
			positions[i] = full[0]
		}
		return positions, nil
	case config.LayoutModeMasterStack:
		return masterStackPositions(numWindows, area, masterPercent, gapSize)
	default:
		return nil, fmt.Errorf("unsupported layout mode: %q", mode)
	}
}

// gridPositions lays windows out row-major.
func gridPositions(numWindows, rows, cols int, area Rect, gapSize int, flexibleLastRow bool) ([]Rect, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions: rows=%d cols=%d", rows, cols)
	}

	slotWidth := (area.Width - (cols+1)*gapSize) / cols
	slotHeight := (area.Height - (rows+1)*gapSize) / rows
	if slotWidth <= 0 || slotHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for layout: area=%dx%d rows=%d cols=%d gap=%d (slot=%dx%d)",
			area.Width, area.Height, rows, cols, gapSize, slotWidth, slotHeight,
		)
	}

	lastRow := rows - 1
	inLastRow := numWindows - lastRow*cols
	lastRowWidth := slotWidth
	if flexibleLastRow && inLastRow > 0 && inLastRow < cols {
		// Last row has fewer windows - they expand to fill the width
		lastRowWidth = (area.Width - (inLastRow+1)*gapSize) / inLastRow
	}

	positions := make([]Rect, numWindows)
	for i := 0; i < numWindows; i++ {
		row := i / cols
		col := i % cols
		width := slotWidth
		if row == lastRow {
			width = lastRowWidth
		}
		positions[i] = Rect{
			X:      area.X + gapSize + col*(width+gapSize),
			Y:      area.Y + gapSize + row*(slotHeight+gapSize),
			Width:  width,
			Height: slotHeight,
		}
	}
	return positions, nil
}

func masterStackPositions(numWindows int, area Rect, masterPercent, gapSize int) ([]Rect, error) {
	if numWindows == 1 {
		return gridPositions(1, 1, 1, area, gapSize, false)
	}

	masterWidth := area.Width*masterPercent/100 - gapSize
	stackX := area.X + masterWidth + 2*gapSize
	stackWidth := area.Width - masterWidth - 3*gapSize
	stackCount := numWindows - 1
	cellHeight := (area.Height - (stackCount+1)*gapSize) / stackCount

	if masterWidth <= 0 || stackWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for master-stack layout: area=%dx%d masterWidth=%d stackWidth=%d cellHeight=%d gap=%d",
			area.Width, area.Height, masterWidth, stackWidth, cellHeight, gapSize,
		)
	}

	positions := make([]Rect, numWindows)
	positions[0] = Rect{
		X:      area.X + gapSize,
		Y:      area.Y + gapSize,
		Width:  masterWidth,
		Height: area.Height - 2*gapSize,
	}
	for i := 0; i < stackCount; i++ {
		positions[i+1] = Rect{
			X:      stackX,
			Y:      area.Y + gapSize + i*(cellHeight+gapSize),
			Width:  stackWidth,
			Height: cellHeight,
		}
	}
	return positions, nil
}

// MasterPercentFor infers the master width percentage implied by a window
// the user resized. index 0 is the master; anything else is in the stack and
// its left edge marks the split.
func MasterPercentFor(index int, resized, area Rect, gapSize int) int {
	if area.Width <= 0 {
		return config.DefaultMasterWidthPercent
	}
	var pct int
	if index == 0 {
		pct = (resized.Width + gapSize) * 100 / area.Width
	} else {
		pct = (resized.X - area.X - gapSize) * 100 / area.Width
	}
	return clampPercent(pct)
}

func clampPercent(pct int) int {
	if pct < config.MinMasterWidthPercent {
		return config.MinMasterWidthPercent
	}
	if pct > config.MaxMasterWidthPercent {
		return config.MaxMasterWidthPercent
	}
	return pct
}

// ApplyPadding shrinks area by the configured screen padding.
func ApplyPadding(area Rect, padding config.Margins) (Rect, error) {
	adjusted := Rect{
		X:      area.X + padding.Left,
		Y:      area.Y + padding.Top,
		Width:  area.Width - padding.Left - padding.Right,
		Height: area.Height - padding.Top - padding.Bottom,
	}
	if adjusted.Width < 1 || adjusted.Height < 1 {
		return Rect{}, fmt.Errorf(
			"screen_padding leaves no usable space: %dx%d at %d,%d",
			adjusted.Width, adjusted.Height, adjusted.X, adjusted.Y,
		)
	}
	return adjusted, nil
}
