package console

import (
	"time"

	"github.com/user/log-console-tui/pkg/models"
)

// Tolerance sizes the adaptive scroll margin, in surface units
type Tolerance struct {
	Factor float64
	Min    int
	Max    int
}

// DefaultTolerance suits surfaces that render quickly
func DefaultTolerance() Tolerance {
	return Tolerance{Factor: 100, Min: 100, Max: 2000}
}

// LowPowerTolerance widens the margins for slow render surfaces
func LowPowerTolerance() Tolerance {
	return Tolerance{Factor: 800, Min: 800, Max: 3000}
}

// TerminalWindowTolerance is the resting margin, in rows, for surfaces that
// measure in terminal rows
const TerminalWindowTolerance = 20

// TerminalTolerance is DefaultTolerance rescaled to terminal rows
func TerminalTolerance() Tolerance {
	return Tolerance{Factor: 100, Min: 8, Max: 40}
}

// TerminalLowPowerTolerance is LowPowerTolerance rescaled to terminal rows
func TerminalLowPowerTolerance() Tolerance {
	return Tolerance{Factor: 400, Min: 20, Max: 80}
}

// Options configures a Console
type Options struct {
	// MaxNum caps the number of stored entries; zero means unlimited
	MaxNum int
	// AsyncRender admits entries through the batched ingest queue
	AsyncRender bool
	// ShowHeader captures a time/origin header for every entry
	ShowHeader bool
	Levels     []models.Level
	Filter     models.FilterSpec
	Tolerance  Tolerance
	// WindowTolerance is the margin used when a render is not driven by scrolling
	WindowTolerance int
	// IngestDelay is the wait before the first drain cycle of a burst
	IngestDelay time.Duration
	TimeFormat  string
}

// DefaultOptions mirrors the console's out-of-the-box behaviour
func DefaultOptions() Options {
	return Options{
		AsyncRender:     true,
		Levels:          append([]models.Level(nil), models.AllLevels...),
		Filter:          models.NoFilter(),
		Tolerance:       DefaultTolerance(),
		WindowTolerance: 500,
		IngestDelay:     20 * time.Millisecond,
		TimeFormat:      "15:04:05",
	}
}

// TerminalOptions is DefaultOptions with margins measured in rows rather
// than pixels
func TerminalOptions() Options {
	opts := DefaultOptions()
	opts.Tolerance = TerminalTolerance()
	opts.WindowTolerance = TerminalWindowTolerance
	return opts
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Levels == nil {
		o.Levels = def.Levels
	}
	if o.Tolerance == (Tolerance{}) {
		o.Tolerance = def.Tolerance
	}
	if o.WindowTolerance <= 0 {
		o.WindowTolerance = def.WindowTolerance
	}
	if o.IngestDelay <= 0 {
		o.IngestDelay = def.IngestDelay
	}
	if o.TimeFormat == "" {
		o.TimeFormat = def.TimeFormat
	}
	if o.MaxNum < 0 {
		o.MaxNum = 0
	}
	return o
}
