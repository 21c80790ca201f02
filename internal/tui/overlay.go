package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// placeOverlay draws box centered over base, keeping the base visible around
// it. base is padded or cut to width x height first.
func placeOverlay(base string, width, height int, box string) string {
	if width <= 0 || height <= 0 || box == "" {
		return base
	}

	boxLines := strings.Split(strings.TrimRight(box, "\n"), "\n")
	boxW := 0
	for _, l := range boxLines {
		boxW = max(boxW, lipgloss.Width(l))
	}
	boxW = min(boxW, width)
	if len(boxLines) > height {
		boxLines = boxLines[:height]
	}

	top := max(0, (height-len(boxLines))/2)
	left := max(0, (width-boxW)/2)

	lines := normalizeLines(base, width, height)
	for i, l := range boxLines {
		row := top + i
		if w := lipgloss.Width(l); w > boxW {
			l = ansi.Cut(l, 0, boxW)
		} else if w < boxW {
			l += strings.Repeat(" ", boxW-w)
		}
		lines[row] = ansi.Cut(lines[row], 0, left) + l + ansi.Cut(lines[row], left+boxW, width)
	}
	return strings.Join(lines, "\n")
}

// normalizeLines splits s into exactly height lines of exactly width cells.
func normalizeLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	for i, line := range lines {
		w := lipgloss.Width(line)
		switch {
		case w > width:
			lines[i] = ansi.Cut(line, 0, width)
		case w < width:
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return lines
}
