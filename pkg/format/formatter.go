package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/log-console-tui/pkg/host"
	"github.com/user/log-console-tui/pkg/models"
)

// Plain renders entries without styling. It is the headless default.
type Plain struct{}

// Render implements host.TextFormatter
func (Plain) Render(e *models.Entry, ctx host.RenderContext) (models.Fragment, string, error) {
	text, body := Body(e)
	return models.Fragment(compose(e, ctx, body, plainPaint)), text, nil
}

// Body returns an entry's plain-text projection and the body it displays.
// Tables and dir entries display more than they match on.
func Body(e *models.Entry) (text, body string) {
	switch e.Type {
	case models.TypeTable:
		if len(e.Args) == 0 {
			return "", ""
		}
		var cols []string
		if len(e.Args) > 1 {
			if c, ok := e.Args[1].([]string); ok {
				cols = c
			}
		}
		body = Table(e.Args[0], cols)
		return body, body
	case models.TypeDir:
		if len(e.Args) == 0 {
			return "", ""
		}
		body = Indented(e.Args[0])
		return body, body
	case models.TypeHTML:
		text = Args(e.Args)
		return stripTags(text), text
	}
	text = Args(e.Args)
	return text, text
}

type part int

const (
	partHeader part = iota
	partGuide
	partMarker
	partBadge
	partBody
)

type paintFunc func(p part, typ models.EntryType, s string) string

func plainPaint(_ part, _ models.EntryType, s string) string {
	return s
}

// marker prefixes the first body line of an entry
func marker(e *models.Entry, ctx host.RenderContext) string {
	switch e.Type {
	case models.TypeGroup, models.TypeGroupCollapsed:
		if ctx.GroupCollapsed {
			return "▸ "
		}
		return "▾ "
	case models.TypeWarn:
		return "⚠ "
	case models.TypeError:
		return "✖ "
	case models.TypeInfo:
		return "ℹ "
	case models.TypeDebug:
		return "· "
	case models.TypeInput:
		return "› "
	case models.TypeOutput:
		return "‹ "
	}
	return "  "
}

// guides draws one nesting rail per indent level; the innermost ClosedLevels
// rails end on the entry's last line.
func guides(e *models.Entry, indent int, last bool) string {
	if indent <= 0 {
		return ""
	}
	closed := e.ClosedLevels
	if closed > indent {
		closed = indent
	}
	var sb strings.Builder
	for i := 0; i < indent; i++ {
		if last && i >= indent-closed {
			sb.WriteString("╰ ")
		} else {
			sb.WriteString("│ ")
		}
	}
	return sb.String()
}

func compose(e *models.Entry, ctx host.RenderContext, body string, paint paintFunc) string {
	var lines []string

	if e.Header != nil {
		header := strings.TrimSpace(e.Header.Time + " " + e.Header.From)
		lines = append(lines, paint(partGuide, e.Type, guides(e, ctx.Indent, false))+paint(partHeader, e.Type, header))
	}

	bodyLines := strings.Split(body, "\n")
	for i, line := range bodyLines {
		var sb strings.Builder
		sb.WriteString(paint(partGuide, e.Type, guides(e, ctx.Indent, i == len(bodyLines)-1)))
		if i == 0 {
			sb.WriteString(paint(partMarker, e.Type, marker(e, ctx)))
			if e.Count > 1 {
				sb.WriteString(paint(partBadge, e.Type, fmt.Sprintf("%d", e.Count)))
				sb.WriteString(" ")
			}
		} else {
			sb.WriteString("  ")
		}
		sb.WriteString(paint(partBody, e.Type, line))
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

// Styled renders entries with lipgloss colors per entry type
type Styled struct{}

// Render implements host.TextFormatter
func (Styled) Render(e *models.Entry, ctx host.RenderContext) (models.Fragment, string, error) {
	text, body := Body(e)
	return models.Fragment(compose(e, ctx, body, stylePaint)), text, nil
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	guideStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	badgeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("245")).Padding(0, 1)
	groupStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
)

func typeStyle(typ models.EntryType) lipgloss.Style {
	switch typ {
	case models.TypeError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	case models.TypeWarn:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	case models.TypeInfo:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	case models.TypeDebug:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	case models.TypeInput:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	case models.TypeOutput:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("150"))
	case models.TypeGroup, models.TypeGroupCollapsed:
		return groupStyle
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	}
}

func stylePaint(p part, typ models.EntryType, s string) string {
	if s == "" {
		return s
	}
	switch p {
	case partHeader:
		return headerStyle.Render(s)
	case partGuide:
		return guideStyle.Render(s)
	case partBadge:
		return badgeStyle.Render(s)
	default:
		return typeStyle(typ).Render(s)
	}
}

func stripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

var (
	_ host.TextFormatter = Plain{}
	_ host.TextFormatter = Styled{}
)
