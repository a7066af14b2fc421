package console

import (
	"sort"

	"github.com/user/log-console-tui/pkg/models"
)

// displayIndex is the ordered, filtered projection of the store the
// viewport walks. It is ascending by id at all times.
type displayIndex struct {
	entries []*models.Entry
}

func (d *displayIndex) len() int {
	return len(d.entries)
}

func (d *displayIndex) reset() {
	d.entries = nil
}

// insert places e by id. Inserting an entry that is already present is a no-op.
func (d *displayIndex) insert(e *models.Entry) {
	n := len(d.entries)
	if n == 0 || e.ID > d.entries[n-1].ID {
		d.entries = append(d.entries, e)
		return
	}

	idx := sort.Search(n, func(i int) bool {
		return d.entries[i].ID >= e.ID
	})
	if idx < n && d.entries[idx].ID == e.ID {
		return
	}
	d.entries = append(d.entries, nil)
	copy(d.entries[idx+1:], d.entries[idx:])
	d.entries[idx] = e
}

func (d *displayIndex) remove(e *models.Entry) bool {
	for i, cur := range d.entries {
		if cur == e {
			copy(d.entries[i:], d.entries[i+1:])
			d.entries[len(d.entries)-1] = nil
			d.entries = d.entries[:len(d.entries)-1]
			return true
		}
	}
	return false
}

func (d *displayIndex) indexOf(e *models.Entry) int {
	idx := sort.Search(len(d.entries), func(i int) bool {
		return d.entries[i].ID >= e.ID
	})
	if idx < len(d.entries) && d.entries[idx] == e {
		return idx
	}
	return -1
}

// passes applies the level and text filters
func (c *Console) passes(e *models.Entry) bool {
	if e.IgnoreFilter {
		return true
	}
	if !c.levelActive(e.Level()) {
		return false
	}
	return c.opts.Filter.Match(e)
}

func (c *Console) levelActive(l models.Level) bool {
	for _, active := range c.opts.Levels {
		if active == l {
			return true
		}
	}
	return false
}

func (c *Console) visible(e *models.Entry) bool {
	return !e.Collapsed && c.passes(e)
}

// attach adds e to the display index if it is visible
func (c *Console) attach(e *models.Entry) {
	if !c.visible(e) {
		return
	}
	c.display.insert(e)
	c.requestRender(nil)
}

func (c *Console) detach(e *models.Entry) {
	if c.display.remove(e) {
		c.requestRender(nil)
	}
}

// reindex rebuilds the display index from the store and pins the view to
// the tail again.
func (c *Console) reindex() {
	c.display.reset()
	for _, e := range c.entries {
		if c.visible(e) {
			c.display.entries = append(c.display.entries, e)
		}
	}
	if c.selected != nil && c.display.indexOf(c.selected) < 0 {
		c.selectEntry(nil)
	}
	c.view.atBottom = true
	c.requestRender(nil)
}
