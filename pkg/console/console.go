// Package console is the log buffer and viewport engine behind the log
// console: batched ingestion, repeat coalescing, collapsible groups, the
// filtered display index and virtual windowing over a render surface.
//
// A Console is driven from a single logical thread. Every exported method
// takes the console lock, and scheduler callbacks take it too, so a host may
// call in from several goroutines as long as its Scheduler never runs a
// callback synchronously. Host operations only enqueue work; completion is
// observed through Subscribe.
package console

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/log-console-tui/pkg/format"
	"github.com/user/log-console-tui/pkg/host"
	"github.com/user/log-console-tui/pkg/models"
)

var (
	// ErrUnknownEntry is returned when an id does not name a stored entry
	ErrUnknownEntry = errors.New("unknown entry")
	// ErrNotGroup is returned when toggling an entry that opens no group
	ErrNotGroup = errors.New("entry does not open a group")
)

// Dependencies are the host capabilities a Console runs on
type Dependencies struct {
	Surface   host.RenderSurface
	Scheduler host.Scheduler
	// Formatter defaults to format.Plain
	Formatter host.TextFormatter
	// Clipboard is optional; without it the copy helper reports an error entry
	Clipboard host.Clipboard
}

// Console holds the entry store, group arena, ingest queue, display index
// and viewport state.
type Console struct {
	mu sync.Mutex

	opts      Options
	surface   host.RenderSurface
	scheduler host.Scheduler
	formatter host.TextFormatter
	clipboard host.Clipboard

	nextID    int64
	entries   []*models.Entry
	lastEntry *models.Entry
	groups    groupArena
	display   displayIndex
	queue     ingestQueue
	view      viewport
	scroll    scrollTracker

	timers     map[string]time.Time
	counters   map[string]int
	selected   *models.Entry
	lastResult interface{}

	events *emitter
}

// New creates a console drawing onto deps.Surface
func New(opts Options, deps Dependencies) (*Console, error) {
	if deps.Surface == nil {
		return nil, fmt.Errorf("console: render surface is required")
	}
	if deps.Scheduler == nil {
		return nil, fmt.Errorf("console: scheduler is required")
	}
	if deps.Formatter == nil {
		deps.Formatter = format.Plain{}
	}

	opts = opts.withDefaults()
	c := &Console{
		opts:      opts,
		surface:   deps.Surface,
		scheduler: deps.Scheduler,
		formatter: deps.Formatter,
		clipboard: deps.Clipboard,
		timers:    make(map[string]time.Time),
		counters:  make(map[string]int),
		events:    newEmitter(),
	}
	c.groups.reset()
	c.view.init()
	c.scroll.tolerance = opts.Tolerance
	return c, nil
}

// Subscribe returns a channel of insert/select/deselect events and a
// function that cancels the subscription. Events are dropped, never
// blocked on, when the buffer is full.
func (c *Console) Subscribe(buffer int) (<-chan Event, func()) {
	return c.events.subscribe(buffer)
}

// DroppedEvents counts events lost to full subscriber buffers
func (c *Console) DroppedEvents() int64 {
	return c.events.droppedCount()
}

// Options returns a copy of the current options
func (c *Console) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// Clear resets all state. Unless silent, a notice entry is admitted.
func (c *Console) Clear(silent bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear(silent)
}

func (c *Console) clear(silent bool) {
	c.entries = nil
	c.display.reset()
	c.selectEntry(nil)
	c.lastEntry = nil
	c.counters = make(map[string]int)
	c.timers = make(map[string]time.Time)
	c.groups.reset()
	c.queue.cancel(c.scheduler)
	c.reindex()

	if silent {
		return
	}
	c.enqueue(request{
		Type: models.TypeLog,
		Args: []interface{}{"Console was cleared"},
	}, c.header())
}

// SetFilter replaces the text filter and rebuilds the display index
func (c *Console) SetFilter(f models.FilterSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Filter = f
	c.reindex()
}

// SetLevels replaces the active level set and rebuilds the display index
func (c *Console) SetLevels(levels []models.Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Levels = append([]models.Level(nil), levels...)
	c.reindex()
}

// SetMaxNum changes retention; shrinking below the stored count evicts the oldest entries
func (c *Console) SetMaxNum(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 0 {
		n = 0
	}
	c.opts.MaxNum = n
	if n > 0 && len(c.entries) > n {
		c.entries = append([]*models.Entry(nil), c.entries[len(c.entries)-n:]...)
		c.reindex()
	}
}

// ToggleGroup collapses or expands the group opened by entry id
func (c *Console) ToggleGroup(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, e := c.find(id)
	if e == nil {
		return fmt.Errorf("toggle %d: %w", id, ErrUnknownEntry)
	}
	if e.TargetGroup == models.NoGroup {
		return fmt.Errorf("toggle %d: %w", id, ErrNotGroup)
	}
	c.toggleGroup(idx)
	return nil
}

// Select makes id the single selected entry; id 0 clears the selection
func (c *Console) Select(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == 0 {
		c.selectEntry(nil)
		return nil
	}
	_, e := c.find(id)
	if e == nil {
		return fmt.Errorf("select %d: %w", id, ErrUnknownEntry)
	}
	c.selectEntry(e)
	return nil
}

// Selected returns the selected entry id, or 0
func (c *Console) Selected() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return 0
	}
	return c.selected.ID
}

// Lookup returns a copy of the stored entry with the given id
func (c *Console) Lookup(id int64) (models.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, e := c.find(id)
	if e == nil {
		return models.Entry{}, fmt.Errorf("lookup %d: %w", id, ErrUnknownEntry)
	}
	return *e, nil
}

// InvalidateSize marks an entry's rendered box as stale, e.g. after the
// host expanded it. The view stops following the tail.
func (c *Console) InvalidateSize(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, e := c.find(id)
	if e == nil {
		return fmt.Errorf("invalidate %d: %w", id, ErrUnknownEntry)
	}
	e.ResetSize()
	c.view.atBottom = false
	c.requestRender(nil)
	return nil
}

// Stats is a point-in-time summary for status lines
type Stats struct {
	Stored    int
	Displayed int
	Pending   int
	Groups    int
	AtBottom  bool
	LastID    int64
}

// Stats returns the current counters
func (c *Console) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Stored:    len(c.entries),
		Displayed: c.display.len(),
		Pending:   len(c.queue.pending),
		Groups:    len(c.groups.stack),
		AtBottom:  c.view.atBottom,
		LastID:    c.nextID,
	}
}

// Entries returns copies of the stored entries in id order
func (c *Console) Entries() []models.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = *e
	}
	return out
}

// DisplayIDs returns the display index as entry ids
func (c *Console) DisplayIDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int64, c.display.len())
	for i, e := range c.display.entries {
		ids[i] = e.ID
	}
	return ids
}

// GroupInfo returns a copy of the group addressed by id
func (c *Console) GroupInfo(id models.GroupID) (models.Group, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.groups.get(id)
	if g == nil {
		return models.Group{}, false
	}
	return *g, true
}

func (c *Console) selectEntry(e *models.Entry) {
	c.selected = e
	if e == nil {
		c.events.publish(Event{Kind: EventDeselect})
		return
	}
	c.events.publish(Event{Kind: EventSelect, Entry: *e})
}
