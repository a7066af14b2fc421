package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// HelpModal shows the full key reference
type HelpModal struct {
	visible bool
	width   int
	height  int
	keys    help.KeyMap
	short   help.Model
}

// NewHelpModal creates a hidden help modal listing keys
func NewHelpModal(keys help.KeyMap) *HelpModal {
	return &HelpModal{
		width:  80,
		height: 24,
		keys:   keys,
		short:  help.New(),
	}
}

// SetKeys replaces the key map after a key mode change
func (hm *HelpModal) SetKeys(keys help.KeyMap) {
	hm.keys = keys
}

// SetVisible toggles visibility
func (hm *HelpModal) SetVisible(visible bool) {
	hm.visible = visible
}

// IsVisible returns current visibility state
func (hm *HelpModal) IsVisible() bool {
	return hm.visible
}

// Render renders the help modal
func (hm *HelpModal) Render(width, height int) string {
	if !hm.visible {
		return ""
	}
	hm.width = width
	hm.height = height

	style := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(1).
		Width(maxInt(20, width-4))
	return style.Render(hm.getHelpContent())
}

func (hm *HelpModal) getHelpContent() string {
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("LOG CONSOLE HELP"))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("Prompt: enter applies, esc cancels. Expressions run jq against the last result."))
	sb.WriteString("\n\n")
	sb.WriteString(hm.renderResponsiveTable(hm.rows()))
	return sb.String()
}

// rows flattens the key map into group/key/action triples
func (hm *HelpModal) rows() [][3]string {
	var rows [][3]string
	for i, group := range hm.keys.FullHelp() {
		name := ""
		if i < len(helpGroupNames) {
			name = helpGroupNames[i]
		}
		for _, b := range group {
			if !b.Enabled() {
				continue
			}
			h := b.Help()
			rows = append(rows, [3]string{name, h.Key, h.Desc})
		}
	}
	return rows
}

func (hm *HelpModal) renderResponsiveTable(rows [][3]string) string {
	var sb strings.Builder
	contentWidth := maxInt(56, hm.width-10)

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	separatorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	if contentWidth >= 90 {
		groupWidth := 8
		keyWidth := 16
		actionWidth := contentWidth - groupWidth - keyWidth - 6
		sb.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %-*s", groupWidth, "GROUP", keyWidth, "KEY", actionWidth, "ACTION")))
		sb.WriteString("\n")
		sb.WriteString(separatorStyle.Render(strings.Repeat("─", groupWidth+keyWidth+actionWidth+2)))
		sb.WriteString("\n")
		for _, row := range rows {
			for i, line := range wrapWords(row[2], actionWidth) {
				groupCell, keyCell := "", ""
				if i == 0 {
					groupCell, keyCell = row[0], row[1]
				}
				sb.WriteString(fmt.Sprintf("%-*s %-*s %-*s\n", groupWidth, groupCell, keyWidth, keyCell, actionWidth, line))
			}
		}
		return sb.String()
	}

	keyWidth := 16
	actionWidth := contentWidth - keyWidth - 4
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s", keyWidth, "KEY", actionWidth, "ACTION")))
	sb.WriteString("\n")
	sb.WriteString(separatorStyle.Render(strings.Repeat("─", keyWidth+actionWidth+1)))
	sb.WriteString("\n")
	for _, row := range rows {
		for i, line := range wrapWords(row[2], actionWidth) {
			keyCell := ""
			if i == 0 {
				keyCell = row[1]
			}
			sb.WriteString(fmt.Sprintf("%-*s %-*s\n", keyWidth, keyCell, actionWidth, line))
		}
	}
	return sb.String()
}

func wrapWords(input string, width int) []string {
	if width < 8 {
		return []string{input}
	}
	words := strings.Fields(input)
	if len(words) == 0 {
		return []string{""}
	}
	lines := make([]string, 0, 2)
	current := words[0]
	for _, w := range words[1:] {
		if len(current)+1+len(w) <= width {
			current += " " + w
			continue
		}
		lines = append(lines, current)
		current = w
	}
	return append(lines, current)
}

// GetShortHelp returns the one-line key reference
func (hm *HelpModal) GetShortHelp(width int) string {
	hm.short.Width = width
	return hm.short.ShortHelpView(hm.keys.ShortHelp())
}
