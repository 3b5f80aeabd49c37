package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/xtiler/internal/ipc"
	"github.com/1broseidon/xtiler/internal/tiling"
)

// printer renders command output, styled only when writing to a terminal.
type printer struct {
	out    io.Writer
	styled bool

	label  lipgloss.Style
	value  lipgloss.Style
	header lipgloss.Style
	dim    lipgloss.Style
	float  lipgloss.Style
}

func newPrinter(f *os.File) *printer {
	return newPrinterFor(f, term.IsTerminal(int(f.Fd())))
}

func newPrinterFor(out io.Writer, styled bool) *printer {
	return &printer{
		out:    out,
		styled: styled,
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(16),
		value:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		header: lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		float:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	}
}

func (p *printer) status(s *ipc.StatusData) {
	uptime := (time.Duration(s.UptimeSeconds) * time.Second).String()
	rows := [][2]string{
		{"daemon_running", fmt.Sprint(s.DaemonRunning)},
		{"layout", s.Layout},
		{"screens", fmt.Sprint(s.Screens)},
		{"managed", fmt.Sprint(s.Managed)},
		{"floating", fmt.Sprint(s.Floating)},
		{"uptime", uptime},
	}
	for _, row := range rows {
		if p.styled {
			fmt.Fprintln(p.out, p.label.Render(row[0])+p.value.Render(row[1]))
			continue
		}
		fmt.Fprintf(p.out, "%-16s%s\n", row[0]+":", row[1])
	}
}

func (p *printer) windows(windows []tiling.WindowState) {
	if len(windows) == 0 {
		fmt.Fprintln(p.out, p.render(p.dim, "no managed windows"))
		return
	}

	lastScreen := -1
	for _, w := range windows {
		if w.Screen != lastScreen {
			lastScreen = w.Screen
			fmt.Fprintln(p.out, p.render(p.header, fmt.Sprintf("screen %d", w.Screen)))
		}

		placement := "tiled"
		geom := w.Geometry
		switch {
		case w.Floating:
			placement = "floating"
			if w.FloatedAt != nil {
				geom = *w.FloatedAt
			}
		case !w.Tileable:
			placement = "untiled"
			geom = w.Actual
		}

		line := fmt.Sprintf("  0x%08x  %-9s %-20s %4d,%-4d %4dx%-4d  %s",
			uint32(w.ID), placement, truncate(w.Class, 20),
			geom.X, geom.Y, geom.Width, geom.Height, truncate(w.Title, 40))
		if w.Floating {
			line = p.render(p.float, line)
		}
		fmt.Fprintln(p.out, line)
	}
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
