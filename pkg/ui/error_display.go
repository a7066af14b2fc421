package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ErrorDisplay keeps the short-lived notices shown under the status line
type ErrorDisplay struct {
	messages []ErrorMessage
	maxSize  int
	now      func() time.Time
}

// ErrorMessage is one notice. A zero Duration never expires.
type ErrorMessage struct {
	Text      string
	IsError   bool
	Timestamp time.Time
	Duration  time.Duration
}

// NewErrorDisplay creates an empty display
func NewErrorDisplay() *ErrorDisplay {
	return &ErrorDisplay{
		maxSize: 10,
		now:     time.Now,
	}
}

// AddError records a failure notice
func (ed *ErrorDisplay) AddError(text string, duration time.Duration) {
	ed.add(ErrorMessage{Text: text, IsError: true, Duration: duration})
}

// AddInfo records a status notice
func (ed *ErrorDisplay) AddInfo(text string, duration time.Duration) {
	ed.add(ErrorMessage{Text: text, Duration: duration})
}

func (ed *ErrorDisplay) add(msg ErrorMessage) {
	msg.Timestamp = ed.now()
	ed.messages = append(ed.messages, msg)
	if len(ed.messages) > ed.maxSize {
		ed.messages = ed.messages[len(ed.messages)-ed.maxSize:]
	}
}

// ClearExpired removes expired notices
func (ed *ErrorDisplay) ClearExpired() {
	now := ed.now()
	active := ed.messages[:0]
	for _, msg := range ed.messages {
		if msg.Duration == 0 || now.Sub(msg.Timestamp) < msg.Duration {
			active = append(active, msg)
		}
	}
	ed.messages = active
}

// GetLatest returns the most recent live notice
func (ed *ErrorDisplay) GetLatest() *ErrorMessage {
	ed.ClearExpired()
	if len(ed.messages) == 0 {
		return nil
	}
	return &ed.messages[len(ed.messages)-1]
}

// HasErrors reports whether any live notice is a failure
func (ed *ErrorDisplay) HasErrors() bool {
	ed.ClearExpired()
	for _, msg := range ed.messages {
		if msg.IsError {
			return true
		}
	}
	return false
}

// RenderLine renders the latest notice as one status row
func (ed *ErrorDisplay) RenderLine(width int) string {
	latest := ed.GetLatest()
	if latest == nil {
		return ""
	}
	color := lipgloss.Color("111")
	prefix := ""
	if latest.IsError {
		color = lipgloss.Color("203")
		prefix = "⚠ "
	}
	return lipgloss.NewStyle().Foreground(color).Render(truncate(prefix+latest.Text, width))
}

// RenderList renders the newest live notices, oldest first
func (ed *ErrorDisplay) RenderList(width, maxHeight int) string {
	ed.ClearExpired()
	if len(ed.messages) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render("Recent Notices"))
	sb.WriteString("\n")

	count := minInt(len(ed.messages), maxHeight)
	for _, msg := range ed.messages[len(ed.messages)-count:] {
		sb.WriteString("  • ")
		sb.WriteString(truncate(msg.Text, width-4))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Clear removes all notices
func (ed *ErrorDisplay) Clear() {
	ed.messages = nil
}
