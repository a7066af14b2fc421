package console

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/log-console-tui/pkg/headless"
	"github.com/user/log-console-tui/pkg/host"
	"github.com/user/log-console-tui/pkg/models"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func oneRow(models.Fragment, int) (int, int) { return 80, 1 }

func syncOptions() Options {
	opts := DefaultOptions()
	opts.AsyncRender = false
	return opts
}

type harness struct {
	c       *Console
	sched   *headless.Scheduler
	surface *headless.Surface
}

func newHarness(t *testing.T, opts Options, size headless.SizeFunc) *harness {
	t.Helper()
	if size == nil {
		size = oneRow
	}
	h := &harness{
		sched:   headless.NewScheduler(epoch),
		surface: headless.NewSurface(size),
	}
	c, err := New(opts, Dependencies{Surface: h.surface, Scheduler: h.sched})
	require.NoError(t, err)
	h.c = c
	c.NotifyResize(80, 10)
	return h
}

func (h *harness) flush() {
	h.sched.Flush(1 << 20)
}

func (h *harness) texts() []string {
	var out []string
	for _, e := range h.c.Entries() {
		out = append(out, e.Text)
	}
	return out
}

func (h *harness) displayedTexts() []string {
	byID := make(map[int64]string)
	for _, e := range h.c.Entries() {
		byID[e.ID] = e.Text
	}
	var out []string
	for _, id := range h.c.DisplayIDs() {
		out = append(out, byID[id])
	}
	return out
}

func (h *harness) idOf(t *testing.T, text string) int64 {
	t.Helper()
	for _, e := range h.c.Entries() {
		if e.Text == text {
			return e.ID
		}
	}
	t.Fatalf("no entry with text %q", text)
	return 0
}

// effectiveCollapsed walks the ancestor chain through the public group accessor
func effectiveCollapsed(c *Console, id models.GroupID) bool {
	for id != models.NoGroup {
		g, ok := c.GroupInfo(id)
		if !ok {
			return false
		}
		if g.Collapsed {
			return true
		}
		id = g.Parent
	}
	return false
}

// assertIndexConsistent checks membership and strict ordering of the display index
func assertIndexConsistent(t *testing.T, c *Console, passes func(models.Entry) bool) {
	t.Helper()
	ids := c.DisplayIDs()
	require.True(t, sort.SliceIsSorted(ids, func(i, j int) bool { return ids[i] < ids[j] }))
	for i := 1; i < len(ids); i++ {
		require.Less(t, ids[i-1], ids[i], "display index must be strictly ascending")
	}

	shown := make(map[int64]bool, len(ids))
	for _, id := range ids {
		shown[id] = true
	}
	for _, e := range c.Entries() {
		want := (e.IgnoreFilter || passes(e)) && !effectiveCollapsed(c, e.Group)
		assert.Equal(t, want, shown[e.ID], "entry %d (%s %q)", e.ID, e.Type, e.Text)
		assert.Equal(t, effectiveCollapsed(c, e.Group), e.Collapsed, "collapsed cache of entry %d", e.ID)
	}
}

func passAll(models.Entry) bool { return true }

func TestNewRequiresSurfaceAndScheduler(t *testing.T) {
	_, err := New(DefaultOptions(), Dependencies{Scheduler: headless.NewScheduler(epoch)})
	assert.Error(t, err)

	_, err = New(DefaultOptions(), Dependencies{Surface: headless.NewSurface(nil)})
	assert.Error(t, err)
}

func TestRepeatCoalescing(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)
	for i := 0; i < 3; i++ {
		h.c.Log("ping")
	}
	h.flush()

	entries := h.c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Count)
	assert.Len(t, h.c.DisplayIDs(), 1)
}

func TestRepeatCoalescingAsync(t *testing.T) {
	h := newHarness(t, DefaultOptions(), nil)
	for i := 0; i < 50; i++ {
		h.c.Log("ping")
	}
	assert.Equal(t, 50, h.c.Pending())
	h.flush()

	entries := h.c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 50, entries[0].Count)
	assert.Equal(t, int64(1), entries[0].ID)
}

func TestCoalescingRules(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)

	h.c.Log("same")
	h.c.Warn("same")
	h.c.Log(map[string]interface{}{"a": 1})
	h.c.Log(map[string]interface{}{"a": 1})
	h.c.Group("g")
	h.c.GroupEnd()
	h.c.Group("g")
	h.c.GroupEnd()
	h.c.HTML("<b>x</b>")
	h.c.HTML("<b>x</b>")
	h.flush()

	entries := h.c.Entries()
	assert.Len(t, entries, 8)
	for _, e := range entries {
		assert.Equal(t, 1, e.Count, "entry %d (%s)", e.ID, e.Type)
	}
}

func TestCoalescingRefreshesHeaderTime(t *testing.T) {
	opts := syncOptions()
	opts.ShowHeader = true
	h := newHarness(t, opts, nil)

	h.c.Log("tick")
	h.sched.Advance(2 * time.Second)
	h.c.Log("tick")

	entries := h.c.Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Header)
	assert.Equal(t, "00:00:02", entries[0].Header.Time)
	assert.NotEmpty(t, entries[0].Header.From)
}

func TestCollapsedGroupToggleRevealsChildren(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)

	h.c.GroupCollapsed("batch")
	for i := 0; i < 5; i++ {
		h.c.Log(fmt.Sprintf("item %d", i))
	}
	h.c.GroupEnd()
	h.flush()

	before := len(h.c.DisplayIDs())
	assert.Equal(t, 1, before)

	require.NoError(t, h.c.ToggleGroup(h.idOf(t, "batch")))
	h.flush()

	assert.Equal(t, before+5, len(h.c.DisplayIDs()))
	assertIndexConsistent(t, h.c, passAll)
}

func TestGroupToggleIdempotence(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)

	h.c.Log("before")
	h.c.Group("outer")
	h.c.Log("a")
	h.c.GroupCollapsed("inner")
	h.c.Log("b")
	h.c.Group("deep")
	h.c.Log("c")
	h.c.GroupEnd()
	h.c.GroupEnd()
	h.c.Log("d")
	h.c.GroupEnd()
	h.c.Log("after")
	h.flush()

	snapshot := func() ([]int64, map[int64]bool) {
		flags := make(map[int64]bool)
		for _, e := range h.c.Entries() {
			flags[e.ID] = e.Collapsed
		}
		return h.c.DisplayIDs(), flags
	}

	for _, label := range []string{"outer", "inner", "deep"} {
		ids, flags := snapshot()
		id := h.idOf(t, label)

		require.NoError(t, h.c.ToggleGroup(id))
		assertIndexConsistent(t, h.c, passAll)
		require.NoError(t, h.c.ToggleGroup(id))
		assertIndexConsistent(t, h.c, passAll)

		gotIDs, gotFlags := snapshot()
		assert.Equal(t, ids, gotIDs, "toggling %s twice", label)
		assert.Equal(t, flags, gotFlags, "toggling %s twice", label)
	}
}

func TestNestedGroupToggles(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)

	h.c.Group("outer")
	h.c.Log("a")
	h.c.GroupCollapsed("inner")
	h.c.Log("b")
	h.c.Log("c")
	h.c.GroupEnd()
	h.c.Log("d")
	h.c.GroupEnd()
	h.c.Log("e")
	h.flush()

	assert.Equal(t, []string{"outer", "a", "inner", "d", "e"}, h.displayedTexts())

	require.NoError(t, h.c.ToggleGroup(h.idOf(t, "outer")))
	assert.Equal(t, []string{"outer", "e"}, h.displayedTexts())

	// expanding a group hidden by its parent changes nothing visible
	require.NoError(t, h.c.ToggleGroup(h.idOf(t, "inner")))
	assert.Equal(t, []string{"outer", "e"}, h.displayedTexts())
	assertIndexConsistent(t, h.c, passAll)

	require.NoError(t, h.c.ToggleGroup(h.idOf(t, "outer")))
	assert.Equal(t, []string{"outer", "a", "inner", "b", "c", "d", "e"}, h.displayedTexts())
	assertIndexConsistent(t, h.c, passAll)
}

func TestSiblingGroupsToggleIndependently(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)

	h.c.Group("first")
	h.c.Log("x")
	h.c.GroupEnd()
	h.c.Group("second")
	h.c.Log("y")
	h.c.GroupEnd()
	h.flush()

	require.NoError(t, h.c.ToggleGroup(h.idOf(t, "first")))
	assert.Equal(t, []string{"first", "second", "y"}, h.displayedTexts())

	require.NoError(t, h.c.ToggleGroup(h.idOf(t, "second")))
	assert.Equal(t, []string{"first", "second"}, h.displayedTexts())

	require.NoError(t, h.c.ToggleGroup(h.idOf(t, "first")))
	assert.Equal(t, []string{"first", "x", "second"}, h.displayedTexts())
	assertIndexConsistent(t, h.c, passAll)
}

func TestGroupNesting(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)

	h.c.Group("outer")
	h.c.Group("inner")
	h.c.Log("leaf")
	h.c.GroupEnd()
	h.c.GroupEnd()

	entries := h.c.Entries()
	require.Len(t, entries, 3)
	outer, inner, leaf := entries[0], entries[1], entries[2]

	assert.Equal(t, models.NoGroup, outer.Group)
	assert.Equal(t, outer.TargetGroup, inner.Group)
	assert.Equal(t, inner.TargetGroup, leaf.Group)
	assert.Equal(t, models.NoGroup, leaf.TargetGroup)

	g, ok := h.c.GroupInfo(inner.TargetGroup)
	require.True(t, ok)
	assert.Equal(t, 2, g.IndentLevel)
	assert.Equal(t, outer.TargetGroup, g.Parent)
	assert.NotEmpty(t, g.ID)

	assert.Equal(t, 2, leaf.ClosedLevels)
	assert.Equal(t, 0, h.c.Stats().Groups)
}

func TestGroupEndWithoutGroup(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)
	h.c.Log("x")
	h.c.GroupEnd()
	h.c.GroupEnd()

	entries := h.c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].ClosedLevels)
}

func TestToggleErrors(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)
	h.c.Log("plain")

	err := h.c.ToggleGroup(h.idOf(t, "plain"))
	assert.True(t, errors.Is(err, ErrNotGroup))

	err = h.c.ToggleGroup(999)
	assert.True(t, errors.Is(err, ErrUnknownEntry))
}

func TestRetentionBound(t *testing.T) {
	opts := syncOptions()
	opts.MaxNum = 100
	h := newHarness(t, opts, nil)

	for i := 0; i < 150; i++ {
		h.c.Log(fmt.Sprintf("line %d", i))
		require.LessOrEqual(t, len(h.c.Entries()), 100)
	}

	entries := h.c.Entries()
	require.Len(t, entries, 100)
	for i, e := range entries {
		assert.Equal(t, int64(51+i), e.ID)
	}
	assert.Len(t, h.c.DisplayIDs(), 100)
	assertIndexConsistent(t, h.c, passAll)
}

func TestSetMaxNumShrinks(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)
	for i := 0; i < 20; i++ {
		h.c.Log(fmt.Sprintf("line %d", i))
	}

	h.c.SetMaxNum(5)
	entries := h.c.Entries()
	require.Len(t, entries, 5)
	assert.Equal(t, int64(16), entries[0].ID)
	assert.Equal(t, []int64{16, 17, 18, 19, 20}, h.c.DisplayIDs())

	h.c.Log("next")
	assert.Equal(t, int64(21), h.c.Entries()[4].ID)
}

func TestIDsNeverReused(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)
	h.c.Log("a")
	h.c.Log("b")
	h.c.Clear(true)
	h.c.Log("c")

	entries := h.c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ID)
	assert.Equal(t, int64(3), h.c.Stats().LastID)
}

func TestFiltersAndLevels(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)

	h.c.Log("GET /users 200")
	h.c.Warn("slow query on users")
	h.c.Error("connection refused")
	h.c.Debug("cache miss")
	h.c.Group("request")
	h.c.Log("inside")
	h.c.GroupEnd()
	h.flush()

	h.c.SetFilter(models.TextFilter("USERS"))
	assert.Equal(t, []string{"GET /users 200", "slow query on users", "request"}, h.displayedTexts())
	filter := models.TextFilter("USERS")
	assertIndexConsistent(t, h.c, func(e models.Entry) bool { return filter.Match(&e) })

	h.c.SetFilter(models.NoFilter())
	h.c.SetLevels([]models.Level{models.LevelError})
	assert.Equal(t, []string{"connection refused", "request"}, h.displayedTexts())

	h.c.SetLevels(models.AllLevels)
	assert.Len(t, h.c.DisplayIDs(), 6)
}

func TestNewEntriesRespectFilter(t *testing.T) {
	opts := syncOptions()
	opts.Filter = models.TextFilter("keep")
	h := newHarness(t, opts, nil)

	h.c.Log("keep me")
	h.c.Log("drop me")
	assert.Equal(t, []string{"keep me"}, h.displayedTexts())
}

func TestDisplayIndexInsertAndRemove(t *testing.T) {
	var d displayIndex
	entries := make(map[int64]*models.Entry)
	for _, id := range []int64{5, 1, 9, 3, 3, 7, 9} {
		if entries[id] == nil {
			entries[id] = &models.Entry{ID: id}
		}
		d.insert(entries[id])
	}

	var ids []int64
	for _, e := range d.entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{1, 3, 5, 7, 9}, ids)

	assert.True(t, d.remove(entries[5]))
	assert.False(t, d.remove(entries[5]))
	assert.Equal(t, 4, d.len())
	assert.Equal(t, -1, d.indexOf(entries[5]))
	assert.Equal(t, 2, d.indexOf(entries[7]))
}

func TestSelection(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)
	events, cancel := h.c.Subscribe(16)
	defer cancel()

	h.c.Log("one")
	h.c.Log("two")
	id := h.idOf(t, "two")

	require.NoError(t, h.c.Select(id))
	assert.Equal(t, id, h.c.Selected())
	require.NoError(t, h.c.Select(0))
	assert.Equal(t, int64(0), h.c.Selected())
	assert.True(t, errors.Is(h.c.Select(42), ErrUnknownEntry))

	var kinds []EventKind
	for len(events) > 0 {
		kinds = append(kinds, (<-events).Kind)
	}
	assert.Equal(t, []EventKind{EventInsert, EventInsert, EventSelect, EventDeselect}, kinds)
}

func TestSelectionDroppedWhenFilteredOut(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)
	h.c.Log("alpha")
	h.c.Log("beta")
	require.NoError(t, h.c.Select(h.idOf(t, "alpha")))

	h.c.SetFilter(models.TextFilter("beta"))
	assert.Equal(t, int64(0), h.c.Selected())
}

func TestSubscribeDropsWhenFull(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)
	_, cancel := h.c.Subscribe(1)

	h.c.Log("a")
	h.c.Log("b")
	h.c.Log("c")
	assert.Equal(t, int64(2), h.c.DroppedEvents())

	cancel()
	cancel()
}

func TestClearCancelsPendingIngest(t *testing.T) {
	h := newHarness(t, DefaultOptions(), nil)
	for i := 0; i < 10; i++ {
		h.c.Log(fmt.Sprintf("line %d", i))
	}
	h.c.Clear(true)
	h.sched.Advance(5 * time.Second)

	assert.Empty(t, h.c.Entries())
	assert.Equal(t, 0, h.c.Pending())
}

func TestClearNotice(t *testing.T) {
	h := newHarness(t, DefaultOptions(), nil)
	h.c.Log("old")
	h.flush()

	h.c.Time("t")
	h.c.Count("n")
	h.c.Group("open")
	h.c.Clear(false)
	h.flush()

	assert.Equal(t, []string{"Console was cleared"}, h.texts())
	assert.Equal(t, 0, h.c.Stats().Groups)

	h.c.Count("n")
	h.c.TimeEnd("t")
	h.flush()
	assert.Equal(t, []string{"Console was cleared", "n: 1", "Timer 't' does not exist"}, h.texts())
}

type failingFormatter struct{ panics bool }

func (f failingFormatter) Render(e *models.Entry, _ host.RenderContext) (models.Fragment, string, error) {
	if f.panics {
		panic("boom")
	}
	return "", "", errors.New("cannot format")
}

func TestFormatterFailureDegradesToPlaceholder(t *testing.T) {
	for _, panics := range []bool{false, true} {
		sched := headless.NewScheduler(epoch)
		c, err := New(syncOptions(), Dependencies{
			Surface:   headless.NewSurface(nil),
			Scheduler: sched,
			Formatter: failingFormatter{panics: panics},
		})
		require.NoError(t, err)

		c.Log("x")
		entries := c.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "[unformattable log entry]", entries[0].Text)
	}
}

func TestUnknownTypeIsDropped(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)
	h.c.Append("bogus", []interface{}{"x"}, AppendOptions{})
	h.c.Append(models.TypeLog, []interface{}{"y"}, AppendOptions{IgnoreFilter: true})

	entries := h.c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ID)
	assert.True(t, entries[0].IgnoreFilter)
}

func TestLookup(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)
	h.c.Info("hello")

	e, err := h.c.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, models.TypeInfo, e.Type)
	assert.Equal(t, "hello", e.Text)

	_, err = h.c.Lookup(2)
	assert.True(t, errors.Is(err, ErrUnknownEntry))
}

// activeFilter mirrors the console's level and text predicate for the
// options currently in force.
func activeFilter(c *Console) func(models.Entry) bool {
	opts := c.Options()
	return func(e models.Entry) bool {
		for _, l := range opts.Levels {
			if l == e.Level() {
				return opts.Filter.Match(&e)
			}
		}
		return false
	}
}

func TestToggleUnderFilterAndLevels(t *testing.T) {
	h := newHarness(t, syncOptions(), nil)

	h.c.Log("boot")
	h.c.Group("req")
	h.c.Log("GET users")
	h.c.Log("GET orders")
	h.c.Warn("slow users")
	h.c.Debug("users cache")
	h.c.GroupCollapsed("users detail")
	h.c.Error("users timeout")
	h.c.GroupEnd()
	h.c.GroupEnd()
	h.c.Log("users done")
	h.flush()

	h.c.SetFilter(models.TextFilter("users"))
	h.c.SetLevels([]models.Level{models.LevelInfo, models.LevelWarning, models.LevelError})
	assert.Equal(t, []string{"req", "GET users", "slow users", "users detail", "users done"}, h.displayedTexts())
	assertIndexConsistent(t, h.c, activeFilter(h.c))

	req := h.idOf(t, "req")
	require.NoError(t, h.c.ToggleGroup(req))
	assert.Equal(t, []string{"req", "users done"}, h.displayedTexts())
	assertIndexConsistent(t, h.c, activeFilter(h.c))

	// expanding the nested group while its parent is collapsed reveals nothing
	require.NoError(t, h.c.ToggleGroup(h.idOf(t, "users detail")))
	assert.Equal(t, []string{"req", "users done"}, h.displayedTexts())
	assertIndexConsistent(t, h.c, activeFilter(h.c))

	require.NoError(t, h.c.ToggleGroup(req))
	assert.Equal(t, []string{"req", "GET users", "slow users", "users detail", "users timeout", "users done"}, h.displayedTexts())
	assertIndexConsistent(t, h.c, activeFilter(h.c))

	// the verbose child stays out while its level is inactive
	h.c.SetLevels(models.AllLevels)
	assert.Contains(t, h.displayedTexts(), "users cache")
	assert.NotContains(t, h.displayedTexts(), "GET orders")
	assertIndexConsistent(t, h.c, activeFilter(h.c))
}

func TestToggleDuringAsyncIngest(t *testing.T) {
	h := newHarness(t, DefaultOptions(), nil)

	h.c.GroupCollapsed("burst")
	for i := 0; i < 3000; i++ {
		h.c.Log(fmt.Sprintf("item %d", i))
	}
	h.c.GroupEnd()
	h.c.Log("after")

	h.sched.Advance(20 * time.Millisecond)
	stats := h.c.Stats()
	require.Greater(t, stats.Pending, 0, "first batch leaves a backlog")
	require.Greater(t, stats.Stored, 0)
	assert.Equal(t, []string{"burst"}, h.displayedTexts())

	require.NoError(t, h.c.ToggleGroup(h.idOf(t, "burst")))
	assert.Len(t, h.c.DisplayIDs(), stats.Stored)
	assertIndexConsistent(t, h.c, passAll)

	h.flush()
	assert.Equal(t, 0, h.c.Pending())
	assert.Len(t, h.c.DisplayIDs(), 3002)
	assertIndexConsistent(t, h.c, passAll)

	require.NoError(t, h.c.ToggleGroup(h.idOf(t, "burst")))
	assert.Equal(t, []string{"burst", "after"}, h.displayedTexts())
	assertIndexConsistent(t, h.c, passAll)
}

func TestToggleAfterEviction(t *testing.T) {
	opts := syncOptions()
	opts.MaxNum = 8
	h := newHarness(t, opts, nil)

	h.c.Group("outer")
	outer := h.idOf(t, "outer")
	h.c.Log("o1")
	h.c.GroupCollapsed("inner")
	for i := 1; i <= 4; i++ {
		h.c.Log(fmt.Sprintf("i%d", i))
	}
	h.c.GroupEnd()
	h.c.Log("o2")
	h.c.GroupEnd()
	h.c.Log("tail1")
	h.c.Log("tail2")

	_, err := h.c.Lookup(outer)
	require.ErrorIs(t, err, ErrUnknownEntry, "the opener was evicted")
	assert.Equal(t, []string{"inner", "o2", "tail1", "tail2"}, h.displayedTexts())
	assertIndexConsistent(t, h.c, passAll)

	assert.ErrorIs(t, h.c.ToggleGroup(outer), ErrUnknownEntry)

	require.NoError(t, h.c.ToggleGroup(h.idOf(t, "inner")))
	assert.Equal(t, []string{"inner", "i1", "i2", "i3", "i4", "o2", "tail1", "tail2"}, h.displayedTexts())
	assertIndexConsistent(t, h.c, passAll)

	// children of an evicted collapsed opener stay hidden
	h.c.GroupCollapsed("gone")
	h.c.Log("g1")
	h.c.Log("g2")
	h.c.GroupEnd()
	for i := 0; i < 6; i++ {
		h.c.Log(fmt.Sprintf("fresh %d", i))
	}
	assert.Equal(t, []string{"fresh 0", "fresh 1", "fresh 2", "fresh 3", "fresh 4", "fresh 5"}, h.displayedTexts())
	assert.Len(t, h.c.Entries(), 8)
	assertIndexConsistent(t, h.c, passAll)
}

func TestRandomizedOperationSequences(t *testing.T) {
	texts := []string{"GET users", "POST orders", "cache miss", "users slow", "tick"}
	filters := []models.FilterSpec{
		models.NoFilter(),
		models.TextFilter("users"),
		models.TextFilter("o"),
	}
	levelSets := [][]models.Level{
		models.AllLevels,
		{models.LevelInfo, models.LevelWarning, models.LevelError},
		{models.LevelError},
		{models.LevelVerbose, models.LevelWarning},
	}

	for seed := int64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			opts := DefaultOptions()
			opts.MaxNum = 40
			h := newHarness(t, opts, nil)

			for op := 0; op < 150; op++ {
				flushed := false
				switch n := rng.Intn(100); {
				case n < 30:
					h.c.Log(texts[rng.Intn(len(texts))])
				case n < 36:
					h.c.Warn(texts[rng.Intn(len(texts))])
				case n < 42:
					h.c.Debug(texts[rng.Intn(len(texts))])
				case n < 46:
					h.c.Error(texts[rng.Intn(len(texts))])
				case n < 52:
					h.c.Group(fmt.Sprintf("group %d", op))
				case n < 58:
					h.c.GroupCollapsed(fmt.Sprintf("collapsed %d", op))
				case n < 66:
					h.c.GroupEnd()
				case n < 76:
					var openers []int64
					for _, e := range h.c.Entries() {
						if e.TargetGroup != models.NoGroup {
							openers = append(openers, e.ID)
						}
					}
					if len(openers) > 0 {
						require.NoError(t, h.c.ToggleGroup(openers[rng.Intn(len(openers))]))
					}
				case n < 80:
					h.c.SetFilter(filters[rng.Intn(len(filters))])
				case n < 84:
					h.c.SetLevels(levelSets[rng.Intn(len(levelSets))])
				case n < 90:
					h.sched.Advance(time.Duration(rng.Intn(60)) * time.Millisecond)
				case n < 95:
					h.c.NotifyScroll(rng.Intn(h.c.Window().Total + 1))
				default:
					h.flush()
					flushed = true
				}

				require.LessOrEqual(t, len(h.c.Entries()), opts.MaxNum)
				assertIndexConsistent(t, h.c, activeFilter(h.c))
				if flushed {
					w := assertCoverage(t, h)
					assert.Equal(t, len(h.c.DisplayIDs()), w.Total)
				}
			}

			h.flush()
			assertIndexConsistent(t, h.c, activeFilter(h.c))
			w := assertCoverage(t, h)
			assert.Equal(t, len(h.c.DisplayIDs()), w.Total)
		})
	}
}
