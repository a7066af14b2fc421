package headless

import (
	"sort"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/user/log-console-tui/pkg/models"
)

// SizeFunc computes the box size of a fragment at a container width
type SizeFunc func(f models.Fragment, width int) (int, int)

// LineSize wraps each fragment line at width display cells
func LineSize(f models.Fragment, width int) (int, int) {
	if width <= 0 {
		width = 1
	}
	rows := 0
	for _, line := range strings.Split(string(f), "\n") {
		cells := runewidth.StringWidth(line)
		if cells == 0 {
			rows++
			continue
		}
		rows += (cells + width - 1) / width
	}
	return width, rows
}

// Surface records mounts and spacer geometry instead of drawing
type Surface struct {
	mu        sync.Mutex
	size      SizeFunc
	mounted   map[int64]models.Fragment
	top       int
	bottom    int
	total     int
	scrollTop int

	Measures int
	Mounts   int
	Unmounts int
}

// NewSurface creates a surface measuring with size, or LineSize when nil
func NewSurface(size SizeFunc) *Surface {
	if size == nil {
		size = LineSize
	}
	return &Surface{
		size:    size,
		mounted: make(map[int64]models.Fragment),
	}
}

func (s *Surface) Measure(f models.Fragment, width int) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Measures++
	return s.size(f, width)
}

func (s *Surface) Mount(id int64, f models.Fragment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Mounts++
	s.mounted[id] = f
}

func (s *Surface) Unmount(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Unmounts++
	delete(s.mounted, id)
}

func (s *Surface) SetSpacers(top, bottom, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.top, s.bottom, s.total = top, bottom, total
}

func (s *Surface) ScrollTo(position int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollTop = position
}

// Spacers returns the last spacer geometry set by the console
func (s *Surface) Spacers() (top, bottom, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.top, s.bottom, s.total
}

// ScrollTop returns the last position the console scrolled to
func (s *Surface) ScrollTop() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollTop
}

// Mounted returns the mounted entry ids in display order
func (s *Surface) Mounted() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.mounted))
	for id := range s.mounted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Fragment returns the fragment mounted for id
func (s *Surface) Fragment(id int64) (models.Fragment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.mounted[id]
	return f, ok
}

// Dump joins the mounted fragments in display order
func (s *Surface) Dump() string {
	ids := s.Mounted()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		f, _ := s.Fragment(id)
		parts = append(parts, string(f))
	}
	return strings.Join(parts, "\n")
}
