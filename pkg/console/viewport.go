package console

import (
	"github.com/user/log-console-tui/pkg/host"
	"github.com/user/log-console-tui/pkg/models"
)

// windowTolerance is the margin mounted beyond each viewport edge
type windowTolerance struct {
	top    int
	bottom int
}

// Window describes the outcome of the last render pass
type Window struct {
	TopSpacer       int
	BottomSpacer    int
	Total           int
	ScrollTop       int
	ViewportHeight  int
	TopTolerance    int
	BottomTolerance int
	// Mounted lists the ids on the live surface in display order
	Mounted []int64
	// MountedHeight is the summed height of the mounted entries
	MountedHeight int
}

type viewport struct {
	width    int
	height   int
	scroll   int
	atBottom bool

	renderPending bool
	frame         host.Handle
	// tolerance requested by the last scroll, consumed by the next pass
	tolerance *windowTolerance

	mounted map[int64]models.Fragment
	window  Window
	passes  int
}

func (v *viewport) init() {
	v.atBottom = true
	v.mounted = make(map[int64]models.Fragment)
}

func (v *viewport) maxScroll() int {
	if top := v.window.Total - v.height; top > 0 {
		return top
	}
	return 0
}

// requestRender schedules one render pass on the next frame. A tolerance
// carried by the request survives until that pass runs.
func (c *Console) requestRender(tol *windowTolerance) {
	v := &c.view
	if tol != nil {
		v.tolerance = tol
	}
	if v.renderPending {
		return
	}
	v.renderPending = true
	v.frame = c.scheduler.OnNextFrame(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		v.renderPending = false
		c.renderViewport()
	})
}

func (c *Console) renderViewport() {
	v := &c.view
	if v.height <= 0 {
		return
	}

	tol := windowTolerance{top: c.opts.WindowTolerance, bottom: c.opts.WindowTolerance}
	if v.tolerance != nil {
		tol = *v.tolerance
		v.tolerance = nil
	}

	total := 0
	for _, e := range c.display.entries {
		if e.Height == 0 || e.Width != v.width {
			_, h := c.surface.Measure(e.Fragment, v.width)
			if h < 1 {
				h = 1
			}
			e.Width = v.width
			e.Height = h
		}
		total += e.Height
	}

	maxTop := total - v.height
	if maxTop < 0 {
		maxTop = 0
	}
	if v.atBottom || v.scroll > maxTop {
		v.atBottom = true
		if v.scroll != maxTop {
			v.scroll = maxTop
			c.surface.ScrollTo(maxTop)
		}
	}

	windowTop := v.scroll - tol.top
	windowBottom := v.scroll + v.height + tol.bottom

	var (
		topSpacer, bottomSpacer, mountedHeight int
		mount                                  []*models.Entry
	)
	offset := 0
	for _, e := range c.display.entries {
		switch {
		case offset > windowBottom:
			bottomSpacer += e.Height
		case offset+e.Height > windowTop:
			mount = append(mount, e)
			mountedHeight += e.Height
		default:
			topSpacer += e.Height
		}
		offset += e.Height
	}

	c.surface.SetSpacers(topSpacer, bottomSpacer, total)

	keep := make(map[int64]bool, len(mount))
	for _, e := range mount {
		keep[e.ID] = true
	}
	for id := range v.mounted {
		if !keep[id] {
			c.surface.Unmount(id)
			delete(v.mounted, id)
		}
	}
	ids := make([]int64, len(mount))
	for i, e := range mount {
		ids[i] = e.ID
		if frag, ok := v.mounted[e.ID]; !ok || frag != e.Fragment {
			c.surface.Mount(e.ID, e.Fragment)
			v.mounted[e.ID] = e.Fragment
		}
	}

	v.passes++
	v.window = Window{
		TopSpacer:       topSpacer,
		BottomSpacer:    bottomSpacer,
		Total:           total,
		ScrollTop:       v.scroll,
		ViewportHeight:  v.height,
		TopTolerance:    tol.top,
		BottomTolerance: tol.bottom,
		Mounted:         ids,
		MountedHeight:   mountedHeight,
	}
}

// Window returns the geometry of the last render pass
func (c *Console) Window() Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.view.window
	w.Mounted = make([]int64, len(c.view.window.Mounted))
	copy(w.Mounted, c.view.window.Mounted)
	return w
}

// RenderPasses counts completed render passes
func (c *Console) RenderPasses() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.passes
}
