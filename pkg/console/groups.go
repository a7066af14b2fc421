package console

import (
	"github.com/google/uuid"

	"github.com/user/log-console-tui/pkg/models"
)

// groupArena stores every group ever opened since the last clear, addressed
// by index. Parents are indices too, so evicting the owning entry simply
// leaves a slot nothing points at any more.
type groupArena struct {
	groups []models.Group
	stack  []models.GroupID
}

func (a *groupArena) reset() {
	a.groups = nil
	a.stack = nil
}

func (a *groupArena) top() models.GroupID {
	if len(a.stack) == 0 {
		return models.NoGroup
	}
	return a.stack[len(a.stack)-1]
}

// open creates a group nested in the current top and pushes it
func (a *groupArena) open(collapsed bool) models.GroupID {
	id := models.GroupID(len(a.groups))
	a.groups = append(a.groups, models.Group{
		ID:          uuid.NewString(),
		Collapsed:   collapsed,
		Parent:      a.top(),
		IndentLevel: len(a.stack) + 1,
	})
	a.stack = append(a.stack, id)
	return id
}

func (a *groupArena) pop() {
	if len(a.stack) > 0 {
		a.stack = a.stack[:len(a.stack)-1]
	}
}

func (a *groupArena) get(id models.GroupID) *models.Group {
	if id < 0 || int(id) >= len(a.groups) {
		return nil
	}
	return &a.groups[id]
}

func (a *groupArena) indent(id models.GroupID) int {
	if g := a.get(id); g != nil {
		return g.IndentLevel
	}
	return 0
}

// collapsed reports whether id or any of its ancestors is collapsed
func (a *groupArena) collapsed(id models.GroupID) bool {
	for g := a.get(id); g != nil; g = a.get(g.Parent) {
		if g.Collapsed {
			return true
		}
	}
	return false
}

// within reports whether id is ancestor or one of its descendants
func (a *groupArena) within(id, ancestor models.GroupID) bool {
	for cur := id; cur != models.NoGroup; {
		if cur == ancestor {
			return true
		}
		g := a.get(cur)
		if g == nil {
			return false
		}
		cur = g.Parent
	}
	return false
}

// refreshCollapsed recomputes e's effective collapsed flag and reports
// whether it changed.
func (c *Console) refreshCollapsed(e *models.Entry) bool {
	collapsed := c.groups.collapsed(e.Group)
	if collapsed == e.Collapsed {
		return false
	}
	e.Collapsed = collapsed
	return true
}

// toggleGroup flips the group opened by entries[idx] and walks the group's
// span. The span is contiguous: a group never returns to the stack once
// closed, so the first entry outside it ends the walk. An unchanged direct
// child means a collapsed ancestor masks the whole span, which also ends it.
func (c *Console) toggleGroup(idx int) {
	opener := c.entries[idx]
	target := opener.TargetGroup
	g := c.groups.get(target)
	g.Collapsed = !g.Collapsed
	c.render(opener)
	opener.ResetSize()

	for _, e := range c.entries[idx+1:] {
		if !c.groups.within(e.Group, target) {
			break
		}
		if !c.refreshCollapsed(e) {
			if e.Group == target {
				break
			}
			continue
		}
		if e.Collapsed {
			c.detach(e)
		} else {
			c.attach(e)
		}
	}
	c.requestRender(nil)
}
