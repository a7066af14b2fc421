package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// chrome rows drawn around the log pane: top bar, pane header, status rule, status line
const chromeRows = 4

// paneHeight returns the rows left for the log pane after chrome and any
// bottom panels.
func paneHeight(total int, extra int) int {
	return maxInt(1, total-chromeRows-extra)
}

// CreateHeader renders a pane rule with title
func CreateHeader(title string, width int, focused bool) string {
	corner := "┏"
	rule := "━"
	if !focused {
		corner = "┌"
		rule = "─"
	}
	line := corner + " " + title + " "
	return line + strings.Repeat(rule, maxInt(0, width-lipgloss.Width(line)))
}

// renderCenteredPopup overlays popup on the middle rows of base
func renderCenteredPopup(base, popup string, width, height int) string {
	baseLines := strings.Split(strings.TrimRight(base, "\n"), "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}
	popupLines := strings.Split(strings.TrimRight(popup, "\n"), "\n")
	startRow := maxInt(1, (height-len(popupLines))/2)
	for i, line := range popupLines {
		row := startRow + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		leftPad := maxInt(0, (width-lipgloss.Width(line))/2)
		baseLines[row] = strings.Repeat(" ", leftPad) + line
	}
	return strings.Join(baseLines, "\n")
}

// truncate shortens s to width cells
func truncate(s string, width int) string {
	if width <= 3 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
