package ui

import (
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/log-console-tui/pkg/models"
)

// LogPane is the terminal render surface. Positions and sizes are in rows.
// Only mounted fragments are laid out; spacer rows draw blank.
type LogPane struct {
	mu        sync.Mutex
	width     int
	mounted   map[int64]models.Fragment
	// wrapped caches the laid out rows of mounted fragments at width
	wrapped   map[int64][]string
	top       int
	bottom    int
	total     int
	scrollTop int
	selected  int64
}

// NewLogPane creates an empty pane
func NewLogPane() *LogPane {
	return &LogPane{
		mounted: make(map[int64]models.Fragment),
		wrapped: make(map[int64][]string),
	}
}

// wrap lays a fragment out at width columns
func wrap(f models.Fragment, width int) []string {
	if width <= 0 {
		width = 1
	}
	rendered := lipgloss.NewStyle().Width(width).Render(string(f))
	return strings.Split(rendered, "\n")
}

func (p *LogPane) Measure(f models.Fragment, width int) (int, int) {
	if string(f) == "" {
		return width, 1
	}
	return width, len(wrap(f, width))
}

func (p *LogPane) Mount(id int64, f models.Fragment) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mounted[id] = f
	delete(p.wrapped, id)
}

func (p *LogPane) Unmount(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.mounted, id)
	delete(p.wrapped, id)
}

func (p *LogPane) SetSpacers(top, bottom, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.top, p.bottom, p.total = top, bottom, total
}

func (p *LogPane) ScrollTo(position int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrollTop = position
}

// SetWidth sets the layout width used by View
func (p *LogPane) SetWidth(width int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if width != p.width {
		p.wrapped = make(map[int64][]string)
	}
	p.width = width
}

// SetSelected highlights the rows of entry id; 0 clears the highlight
func (p *LogPane) SetSelected(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = id
}

// ScrollTop returns the first visible row
func (p *LogPane) ScrollTop() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrollTop
}

// MaxScroll is the largest scroll position for a viewport of height rows
func (p *LogPane) MaxScroll(height int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maxInt(0, p.total-height)
}

// Total returns the height of the whole scroll track
func (p *LogPane) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

func (p *LogPane) mountedIDs() []int64 {
	ids := make([]int64, 0, len(p.mounted))
	for id := range p.mounted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// layout returns the mounted rows and the entry owning each row
func (p *LogPane) layout() ([]string, []int64) {
	var (
		rows   []string
		owners []int64
	)
	for _, id := range p.mountedIDs() {
		lines, ok := p.wrapped[id]
		if !ok {
			lines = wrap(p.mounted[id], p.width)
			p.wrapped[id] = lines
		}
		for _, line := range lines {
			rows = append(rows, line)
			owners = append(owners, id)
		}
	}
	return rows, owners
}

// VisibleIDs lists the entries with at least one row inside the viewport
func (p *LogPane) VisibleIDs(height int) []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, owners := p.layout()
	var ids []int64
	for y := p.scrollTop; y < p.scrollTop+height; y++ {
		i := y - p.top
		if i < 0 || i >= len(owners) {
			continue
		}
		if len(ids) == 0 || ids[len(ids)-1] != owners[i] {
			ids = append(ids, owners[i])
		}
	}
	return ids
}

// View draws height rows starting at the scroll position
func (p *LogPane) View(height int) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, owners := p.layout()
	out := make([]string, 0, height)
	for y := p.scrollTop; y < p.scrollTop+height; y++ {
		i := y - p.top
		if i < 0 || i >= len(rows) {
			out = append(out, "")
			continue
		}
		line := rows[i]
		if p.selected != 0 && owners[i] == p.selected {
			line = selectedRowStyle.Render(padRight(line, p.width))
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

var selectedRowStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("230")).
	Background(lipgloss.Color("25"))

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
