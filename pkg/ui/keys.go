package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Next       key.Binding
	Prev       key.Binding
	Toggle     key.Binding
	Copy       key.Binding
	CopyFormat key.Binding
	Filter     key.Binding
	Regex      key.Binding
	Evaluate   key.Binding
	Severity   key.Binding
	Clear      key.Binding
	Deselect   key.Binding
	KeyMode    key.Binding
	Help       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup/ctrl+b", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+f"), key.WithHelp("pgdn/ctrl+f", "page down")),
		Top:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom, follow tail")),
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "select next visible entry")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "select previous visible entry")),
		Toggle:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "collapse / expand group")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy selected entry")),
		CopyFormat: key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "cycle copy format (line/text/json)")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "text filter")),
		Regex:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "regex filter")),
		Evaluate:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "evaluate jq expression")),
		Severity:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "level filter")),
		Clear:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear console")),
		Deselect:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "deselect / close")),
		KeyMode:    key.NewBinding(key.WithKeys("f6"), key.WithHelp("f6", "toggle key mode (vim/standard)")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// setVimMode enables or disables the single-letter navigation keys
func (k *keyMap) setVimMode(enabled bool) {
	if enabled {
		k.Up.SetKeys("up", "k")
		k.Down.SetKeys("down", "j")
		k.Top.SetKeys("home", "g")
		k.Bottom.SetKeys("end", "G")
		k.Up.SetHelp("↑/k", "scroll up")
		k.Down.SetHelp("↓/j", "scroll down")
		k.Top.SetHelp("g", "top")
		k.Bottom.SetHelp("G", "bottom, follow tail")
		return
	}
	k.Up.SetKeys("up")
	k.Down.SetKeys("down")
	k.Top.SetKeys("home")
	k.Bottom.SetKeys("end")
	k.Up.SetHelp("↑", "scroll up")
	k.Down.SetHelp("↓", "scroll down")
	k.Top.SetHelp("home", "top")
	k.Bottom.SetHelp("end", "bottom, follow tail")
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Filter, k.Evaluate, k.Toggle, k.ForceQuit}
}

// FullHelp implements help.KeyMap; each inner slice is one help group
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Next, k.Prev, k.Toggle, k.Copy, k.CopyFormat, k.Deselect},
		{k.Filter, k.Regex, k.Severity, k.Evaluate, k.Clear},
		{k.KeyMode, k.Help, k.Quit, k.ForceQuit},
	}
}

var helpGroupNames = []string{"Nav", "Entry", "Filter", "Other"}
