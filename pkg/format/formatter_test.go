package format

import (
	"errors"
	"strings"
	"testing"

	"github.com/user/log-console-tui/pkg/host"
	"github.com/user/log-console-tui/pkg/models"
)

func TestArgsSubstitution(t *testing.T) {
	tests := []struct {
		name     string
		args     []interface{}
		expected string
	}{
		{"empty", nil, ""},
		{"single", []interface{}{"hello"}, "hello"},
		{"joined", []interface{}{"a", 1, true, nil}, "a 1 true null"},
		{"string verb", []interface{}{"user %s logged in", "ann"}, "user ann logged in"},
		{"int verb", []interface{}{"%d items", 3.9}, "3 items"},
		{"int from string", []interface{}{"%i", "42"}, "42"},
		{"not a number", []interface{}{"%d", "abc"}, "NaN"},
		{"float verb", []interface{}{"%f", 1.5}, "1.5"},
		{"object verb", []interface{}{"cfg %o", map[string]int{"a": 1}}, `cfg {"a":1}`},
		{"css verb dropped", []interface{}{"%cstyled", "color:red"}, "styled"},
		{"literal percent", []interface{}{"100%% done"}, "100% done"},
		{"missing arg", []interface{}{"%s and %s", "one"}, "one and %s"},
		{"extra args", []interface{}{"%s", "a", "b"}, "a b"},
		{"error value", []interface{}{errors.New("boom")}, "boom"},
		{"non-string first", []interface{}{42, "%s"}, "42 %s"},
	}

	for _, tt := range tests {
		if got := Args(tt.args); got != tt.expected {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, got)
		}
	}
}

func TestValue(t *testing.T) {
	if got := Value([]int{1, 2}); got != "[1,2]" {
		t.Errorf("Expected [1,2], got %s", got)
	}

	if got := Value(struct{ Name string }{"x"}); got != `{"Name":"x"}` {
		t.Errorf("Expected struct JSON, got %s", got)
	}

	if got := Inline("quoted"); got != `"quoted"` {
		t.Errorf("Expected quoted string, got %s", got)
	}
}

func TestTable(t *testing.T) {
	out := Table([]map[string]interface{}{
		{"host": "a", "up": true},
		{"host": "b"},
	}, nil)

	for _, want := range []string{"(index)", "host", "up", "true"} {
		if !strings.Contains(out, want) {
			t.Errorf("Table should contain %q:\n%s", want, out)
		}
	}

	if lines := strings.Count(out, "\n"); lines < 4 {
		t.Errorf("Expected header and two rows, got %d lines", lines)
	}
}

func TestTableColumnsAndPrimitives(t *testing.T) {
	out := Table(map[string]interface{}{
		"first":  map[string]interface{}{"a": 1, "b": 2},
		"second": "plain",
	}, []string{"a"})

	if strings.Contains(out, "│ b") {
		t.Errorf("Column b should be filtered out:\n%s", out)
	}

	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("Table should list both keys:\n%s", out)
	}

	primitives := Table([]string{"x", "y"}, nil)
	if !strings.Contains(primitives, "Value") {
		t.Errorf("Primitive rows should get a Value column:\n%s", primitives)
	}

	if got := Table(7, nil); got != "7" {
		t.Errorf("Expected scalar fallback, got %q", got)
	}
}

func TestTableTruncatesWideCells(t *testing.T) {
	out := Table([]string{strings.Repeat("w", 200)}, nil)
	if strings.Contains(out, strings.Repeat("w", maxCellWidth+1)) {
		t.Error("Wide cell should be truncated")
	}
	if !strings.Contains(out, "…") {
		t.Error("Truncated cell should end with an ellipsis")
	}
}

func TestPlainRender(t *testing.T) {
	e := &models.Entry{
		Type:  models.TypeWarn,
		Args:  []interface{}{"disk at %d%%", 91},
		Count: 3,
	}

	frag, text, err := Plain{}.Render(e, host.RenderContext{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if text != "disk at 91%" {
		t.Errorf("Expected plain text without badge, got %q", text)
	}

	if !strings.Contains(string(frag), "3 disk at 91%") {
		t.Errorf("Fragment should carry the repeat badge, got %q", frag)
	}

	if !strings.HasPrefix(string(frag), "⚠") {
		t.Errorf("Warn fragment should start with its marker, got %q", frag)
	}
}

func TestPlainRenderGroups(t *testing.T) {
	e := &models.Entry{Type: models.TypeGroup, Args: []interface{}{"request"}, Count: 1}

	open, _, _ := Plain{}.Render(e, host.RenderContext{})
	closed, _, _ := Plain{}.Render(e, host.RenderContext{GroupCollapsed: true})

	if !strings.HasPrefix(string(open), "▾") {
		t.Errorf("Expanded group marker missing: %q", open)
	}
	if !strings.HasPrefix(string(closed), "▸") {
		t.Errorf("Collapsed group marker missing: %q", closed)
	}
}

func TestPlainRenderIndentAndHeader(t *testing.T) {
	e := &models.Entry{
		Type:         models.TypeLog,
		Args:         []interface{}{"line one\nline two"},
		Count:        1,
		ClosedLevels: 1,
		Header:       &models.Header{Time: "12:00:00", From: "main.go:10"},
	}

	frag, text, _ := Plain{}.Render(e, host.RenderContext{Indent: 2})
	lines := strings.Split(string(frag), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and two body lines, got %d: %q", len(lines), frag)
	}

	if lines[0] != "│ │ 12:00:00 main.go:10" {
		t.Errorf("Unexpected header line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "│ │ ") {
		t.Errorf("Body line should carry open guides, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "│ ╰ ") {
		t.Errorf("Last line should close the inner guide, got %q", lines[2])
	}

	if strings.Contains(text, "12:00:00") {
		t.Error("Plain text should not include the header")
	}
}

func TestBodyProjections(t *testing.T) {
	html := &models.Entry{Type: models.TypeHTML, Args: []interface{}{"<b>bold</b> move"}}
	text, body := Body(html)
	if text != "bold move" {
		t.Errorf("Expected tags stripped from text, got %q", text)
	}
	if body != "<b>bold</b> move" {
		t.Errorf("Expected raw markup in body, got %q", body)
	}

	dir := &models.Entry{Type: models.TypeDir, Args: []interface{}{map[string]int{"a": 1}}}
	if text, _ := Body(dir); !strings.Contains(text, "\"a\": 1") {
		t.Errorf("Expected indented JSON, got %q", text)
	}

	empty := &models.Entry{Type: models.TypeTable}
	if text, body := Body(empty); text != "" || body != "" {
		t.Error("Empty table should render nothing")
	}
}

func TestStyledRenderKeepsPlainText(t *testing.T) {
	e := &models.Entry{Type: models.TypeError, Args: []interface{}{"failed"}, Count: 1}

	frag, text, err := Styled{}.Render(e, host.RenderContext{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if text != "failed" {
		t.Errorf("Expected plain text 'failed', got %q", text)
	}
	if !strings.Contains(string(frag), "failed") {
		t.Errorf("Fragment should contain the message, got %q", frag)
	}
}
