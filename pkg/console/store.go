package console

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/user/log-console-tui/pkg/host"
	"github.com/user/log-console-tui/pkg/logging"
	"github.com/user/log-console-tui/pkg/models"
)

// request is one pending admission
type request struct {
	Type         models.EntryType
	Args         []interface{}
	IgnoreFilter bool
	Header       *models.Header
}

// AppendOptions tune a single Append call
type AppendOptions struct {
	// IgnoreFilter keeps the entry visible regardless of level and text filters
	IgnoreFilter bool
}

// Append admits one log request of the given type
func (c *Console) Append(typ models.EntryType, args []interface{}, opts AppendOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueue(request{Type: typ, Args: args, IgnoreFilter: opts.IgnoreFilter}, c.header())
}

func (c *Console) enqueue(req request, header *models.Header) {
	req.Header = header
	if !c.opts.AsyncRender {
		c.admit(req)
		return
	}
	c.queue.pending = append(c.queue.pending, req)
	c.scheduleDrain(c.opts.IngestDelay)
}

// admit applies one request to the store, group stack and display index.
func (c *Console) admit(req request) {
	if !req.Type.Valid() {
		logging.Debug("Store", "dropping candidate with unknown type %q", req.Type)
		return
	}

	if req.Type == models.TypeGroupEnd {
		c.closeGroup()
		return
	}

	e := &models.Entry{
		Type:         req.Type,
		Args:         req.Args,
		Group:        c.groups.top(),
		TargetGroup:  models.NoGroup,
		Header:       req.Header,
		Count:        1,
		IgnoreFilter: req.IgnoreFilter,
	}
	if req.Type.OpensGroup() {
		if len(e.Args) == 0 {
			e.Args = []interface{}{"console.group"}
		}
		e.TargetGroup = c.groups.open(req.Type == models.TypeGroupCollapsed)
	}
	e.Collapsed = c.groups.collapsed(e.Group)
	c.render(e)

	if last := c.lastEntry; last != nil && c.coalesces(last, e) {
		last.Count++
		if e.Header != nil && last.Header != nil {
			refreshed := *last.Header
			refreshed.Time = e.Header.Time
			last.Header = &refreshed
		}
		c.render(last)
		last.ResetSize()
		c.requestRender(nil)
		c.events.publish(Event{Kind: EventInsert, Entry: *last})
		return
	}

	c.nextID++
	e.ID = c.nextID
	c.entries = append(c.entries, e)
	c.lastEntry = e

	if limit := c.opts.MaxNum; limit > 0 {
		for len(c.entries) > limit {
			c.evictOldest()
		}
	}

	c.attach(e)
	c.events.publish(Event{Kind: EventInsert, Entry: *e})
}

func (c *Console) coalesces(last, e *models.Entry) bool {
	return !e.Type.Structural() &&
		last.Type == e.Type &&
		e.IsSimple() &&
		last.Text == e.Text
}

func (c *Console) evictOldest() {
	first := c.entries[0]
	c.detach(first)
	if c.selected == first {
		c.selectEntry(nil)
	}
	c.entries[0] = nil
	c.entries = c.entries[1:]
	logging.Debug("Store", "evicted entry %d", first.ID)
}

// closeGroup pops the group stack and marks the last entry's innermost open
// nesting guide as closed.
func (c *Console) closeGroup() {
	if last := c.lastEntry; last != nil {
		if last.ClosedLevels < c.groups.indent(last.Group) {
			last.ClosedLevels++
			c.render(last)
			c.requestRender(nil)
		}
	}
	c.groups.pop()
}

// find locates a stored entry by id
func (c *Console) find(id int64) (int, *models.Entry) {
	idx := sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].ID >= id
	})
	if idx < len(c.entries) && c.entries[idx].ID == id {
		return idx, c.entries[idx]
	}
	return -1, nil
}

// render refreshes an entry's fragment and plain text. Formatter failures
// never reach the caller.
func (c *Console) render(e *models.Entry) {
	ctx := host.RenderContext{Indent: c.groups.indent(e.Group)}
	if g := c.groups.get(e.TargetGroup); g != nil {
		ctx.GroupCollapsed = g.Collapsed
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Format", fmt.Errorf("%v", r), "formatter panicked on %s entry", e.Type)
			c.placeholder(e)
		}
	}()

	frag, text, err := c.formatter.Render(e, ctx)
	if err != nil {
		logging.Error("Format", err, "formatter failed on %s entry", e.Type)
		c.placeholder(e)
		return
	}
	e.Fragment = frag
	e.Text = text
}

func (c *Console) placeholder(e *models.Entry) {
	text := fmt.Sprintf("[unformattable %s entry]", e.Type)
	e.Fragment = models.Fragment(text)
	e.Text = text
}

func (c *Console) header() *models.Header {
	if !c.opts.ShowHeader {
		return nil
	}
	return c.headerFrom(callerOrigin())
}

func (c *Console) headerFrom(from string) *models.Header {
	if !c.opts.ShowHeader {
		return nil
	}
	return &models.Header{
		Time: c.scheduler.Now().Format(c.opts.TimeFormat),
		From: from,
	}
}

var packagePrefix = func() string {
	pc, _, _, _ := runtime.Caller(0)
	name := runtime.FuncForPC(pc).Name()
	slash := strings.LastIndex(name, "/")
	dot := strings.Index(name[slash+1:], ".")
	return name[:slash+1+dot+1]
}()

// callerOrigin reports file:line of the first caller outside this package
func callerOrigin() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, packagePrefix) {
			return fmt.Sprintf("%s:%d", shortPath(frame.File), frame.Line)
		}
		if !more {
			return ""
		}
	}
}

func shortPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, "/")
}
