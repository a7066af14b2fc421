// Package host declares the capabilities the console engine consumes from
// its embedding program: a text formatter, a render surface, a frame
// scheduler and an optional clipboard.
package host

import (
	"time"

	"github.com/user/log-console-tui/pkg/models"
)

// Handle identifies a scheduled callback
type Handle uint64

// Scheduler runs callbacks cooperatively on the host's single logical thread.
// Implementations must never invoke a callback synchronously from After or
// OnNextFrame.
type Scheduler interface {
	Now() time.Time
	OnNextFrame(fn func()) Handle
	After(d time.Duration, fn func()) Handle
	Cancel(h Handle)
}

// RenderSurface is where mounted fragments live.
type RenderSurface interface {
	// Measure reports the box size of f laid out at the given container width
	Measure(f models.Fragment, width int) (w, h int)
	Mount(id int64, f models.Fragment)
	Unmount(id int64)
	// SetSpacers sizes the unrendered content above and below the mount set
	// and the scroll track as a whole
	SetSpacers(top, bottom, total int)
	ScrollTo(position int)
}

// RenderContext is the nesting state a formatter needs besides the entry
type RenderContext struct {
	Indent int
	// GroupCollapsed is the state of the group the entry opens, if any
	GroupCollapsed bool
}

// TextFormatter produces an entry's mountable fragment and its plain-text projection
type TextFormatter interface {
	Render(e *models.Entry, ctx RenderContext) (models.Fragment, string, error)
}

// Clipboard receives text copied from evaluation helpers
type Clipboard interface {
	Copy(text string) error
}
