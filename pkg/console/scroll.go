package console

import (
	"math"
	"time"

	"github.com/user/log-console-tui/pkg/logging"
)

// jumpGap separates a fling from a discontinuous jump
const jumpGap = time.Second

type scrollTracker struct {
	tolerance Tolerance
	lastPos   int
	lastTime  time.Time
	seen      bool
	skipped   int
}

// next returns the tolerance for a move to pos at now
func (s *scrollTracker) next(pos int, now time.Time) int {
	gap := now.Sub(s.lastTime)
	delta := pos - s.lastPos
	first := !s.seen

	s.seen = true
	s.lastPos = pos
	s.lastTime = now

	if first || gap > jumpGap {
		return s.tolerance.Max
	}

	ms := float64(gap) / float64(time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	speed := math.Abs(float64(delta)) / ms
	return clamp(int(speed*s.tolerance.Factor), s.tolerance.Min, s.tolerance.Max)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NotifyScroll reports the surface's new scroll position. Positions outside
// the scroll track are clamped.
func (c *Console) NotifyScroll(position int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := &c.view
	maxTop := v.maxScroll()
	position = clamp(position, 0, maxTop)
	down := position > v.scroll

	tol := c.scroll.next(position, c.scheduler.Now())
	topTol, bottomTol := tol, c.scroll.tolerance.Min
	if down {
		topTol, bottomTol = c.scroll.tolerance.Min, tol
	}

	v.scroll = position
	v.atBottom = position >= maxTop

	w := v.window
	if w.TopSpacer < position-topTol && w.TopSpacer+w.MountedHeight > position+v.height+bottomTol {
		c.scroll.skipped++
		return
	}
	logging.Debug("Scroll", "position %d, tolerance %d/%d", position, topTol, bottomTol)
	c.requestRender(&windowTolerance{top: topTol * 2, bottom: bottomTol * 2})
}

// NotifyResize reports the surface's new container size
func (c *Console) NotifyResize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width == c.view.width && height == c.view.height {
		return
	}
	c.view.width = width
	c.view.height = height
	c.requestRender(nil)
}

// ScrollPosition reports the tracked scroll position and whether the view
// follows the tail.
func (c *Console) ScrollPosition() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.scroll, c.view.atBottom
}
