package ui

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestLogPaneMeasureWraps(t *testing.T) {
	p := NewLogPane()

	if _, h := p.Measure("short", 20); h != 1 {
		t.Errorf("Expected 1 row, got %d", h)
	}
	if _, h := p.Measure("", 20); h != 1 {
		t.Errorf("Empty fragment should take one row, got %d", h)
	}
	if _, h := p.Measure("one\ntwo\nthree", 20); h != 3 {
		t.Errorf("Expected 3 rows for 3 lines, got %d", h)
	}
	if _, h := p.Measure("aaaa bbbb cccc dddd", 10); h < 2 {
		t.Errorf("Long fragment should wrap, got %d rows", h)
	}
}

func TestLogPaneViewHonoursSpacers(t *testing.T) {
	p := NewLogPane()
	p.SetWidth(20)
	p.Mount(3, "third")
	p.Mount(2, "second")
	p.SetSpacers(1, 4, 7)

	p.ScrollTo(0)
	rows := strings.Split(p.View(4), "\n")
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}
	if strings.TrimSpace(rows[0]) != "" {
		t.Errorf("Top spacer row should be blank, got %q", rows[0])
	}
	if strings.TrimSpace(rows[1]) != "second" || strings.TrimSpace(rows[2]) != "third" {
		t.Errorf("Mounted entries should follow the top spacer in id order, got %q", rows)
	}
	if strings.TrimSpace(rows[3]) != "" {
		t.Errorf("Bottom spacer row should be blank, got %q", rows[3])
	}

	if p.MaxScroll(4) != 3 {
		t.Errorf("Expected max scroll 3, got %d", p.MaxScroll(4))
	}
}

func TestLogPaneVisibleIDs(t *testing.T) {
	p := NewLogPane()
	p.SetWidth(20)
	p.Mount(1, "a\nb")
	p.Mount(2, "c")
	p.Mount(3, "d")
	p.SetSpacers(0, 0, 4)

	p.ScrollTo(1)
	if ids := p.VisibleIDs(2); !reflect.DeepEqual(ids, []int64{1, 2}) {
		t.Errorf("Expected [1 2], got %v", ids)
	}

	p.Unmount(1)
	p.SetSpacers(2, 0, 4)
	if ids := p.VisibleIDs(2); !reflect.DeepEqual(ids, []int64{2}) {
		t.Errorf("Expected [2] after unmount, got %v", ids)
	}
}

func TestLogPaneSelectionHighlight(t *testing.T) {
	p := NewLogPane()
	p.SetWidth(10)
	p.Mount(1, "x")
	p.SetSpacers(0, 0, 1)

	plain := p.View(1)
	p.SetSelected(1)
	selected := p.View(1)
	if !strings.Contains(selected, "x") {
		t.Error("Selected row should keep its text")
	}
	if len(selected) < len(plain) {
		t.Error("Selected row should be padded to the pane width")
	}
}

func TestLogPaneRewrapsOnRemountAndWidth(t *testing.T) {
	p := NewLogPane()
	p.SetWidth(40)
	p.Mount(1, "first version")
	p.SetSpacers(0, 0, 1)

	if !strings.Contains(p.View(1), "first version") {
		t.Fatal("Mounted fragment should be drawn")
	}

	p.Mount(1, "second version")
	if view := p.View(1); !strings.Contains(view, "second version") {
		t.Errorf("Remounting should replace the cached rows, got %q", view)
	}

	p.SetWidth(7)
	p.SetSpacers(0, 0, 2)
	rows, _ := p.layout()
	if len(rows) < 2 {
		t.Errorf("A narrower pane should wrap the cached fragment again, got %q", rows)
	}
}

func TestAppMountsFewRowsBeyondViewport(t *testing.T) {
	testApp := newTestApp(t)
	testApp.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	for i := 0; i < 5000; i++ {
		testApp.Console().Log(fmt.Sprintf("row %d", i))
	}
	pump(testApp)

	limit := 4 * testApp.logRows()
	rows, _ := testApp.pane.layout()
	if len(rows) == 0 || len(rows) > limit {
		t.Errorf("Tailing should mount between 1 and %d rows, got %d", limit, len(rows))
	}

	press(testApp, "k")
	pump(testApp)
	rows, _ = testApp.pane.layout()
	if len(rows) > limit {
		t.Errorf("A one row scroll should mount at most %d rows, got %d", limit, len(rows))
	}
	view := testApp.View()
	if !strings.Contains(view, "row 4954") || strings.Contains(view, "row 4999") {
		t.Errorf("Scrolling up one row should shift the window, got:\n%s", view)
	}
}
