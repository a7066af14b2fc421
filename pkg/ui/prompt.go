package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type promptMode string

const (
	promptNone   promptMode = ""
	promptFilter promptMode = "filter"
	promptRegex  promptMode = "regex"
	promptEval   promptMode = "eval"
)

const maxPromptHistory = 25

var promptLabels = map[promptMode]string{
	promptFilter: "filter> ",
	promptRegex:  "regex> ",
	promptEval:   "jq> ",
}

// Prompt is the one-line input used for filters and expressions. Each
// mode keeps its own history.
type Prompt struct {
	input   textinput.Model
	mode    promptMode
	history map[promptMode][]string
	cursor  int
}

// NewPrompt creates a closed prompt
func NewPrompt() *Prompt {
	input := textinput.New()
	input.PromptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	input.CharLimit = 4096
	return &Prompt{
		input:   input,
		history: make(map[promptMode][]string),
		cursor:  -1,
	}
}

// Open focuses the prompt in mode with an initial value
func (p *Prompt) Open(mode promptMode, value string) tea.Cmd {
	p.mode = mode
	p.cursor = -1
	p.input.Prompt = promptLabels[mode]
	p.input.SetValue(value)
	p.input.CursorEnd()
	return p.input.Focus()
}

// Close blurs the prompt and forgets its value
func (p *Prompt) Close() {
	p.mode = promptNone
	p.input.Blur()
	p.input.Reset()
}

// Mode returns the open mode, or promptNone
func (p *Prompt) Mode() promptMode {
	return p.mode
}

// Value returns the trimmed input
func (p *Prompt) Value() string {
	return strings.TrimSpace(p.input.Value())
}

// SetWidth sizes the input field
func (p *Prompt) SetWidth(width int) {
	p.input.Width = maxInt(10, width-lipgloss.Width(p.input.Prompt)-1)
}

// Update feeds a message to the text input
func (p *Prompt) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// View renders the input line
func (p *Prompt) View() string {
	return p.input.View()
}

// Remember moves value to the front of the current mode's history
func (p *Prompt) Remember(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	list := p.history[p.mode]
	for i, existing := range list {
		if existing == value {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	list = append([]string{value}, list...)
	if len(list) > maxPromptHistory {
		list = list[:maxPromptHistory]
	}
	p.history[p.mode] = list
}

// SetHistory replaces mode's history with values, newest first
func (p *Prompt) SetHistory(mode promptMode, values []string) {
	if len(values) > maxPromptHistory {
		values = values[:maxPromptHistory]
	}
	p.history[mode] = append([]string(nil), values...)
}

// History returns the current mode's history, newest first
func (p *Prompt) History() []string {
	return p.history[p.mode]
}

// Recall steps through history; delta 1 goes back in time
func (p *Prompt) Recall(delta int) {
	list := p.history[p.mode]
	if len(list) == 0 {
		return
	}
	p.cursor = maxInt(0, minInt(len(list)-1, p.cursor+delta))
	p.input.SetValue(list[p.cursor])
	p.input.CursorEnd()
}
