package console

import (
	"fmt"

	"github.com/user/log-console-tui/pkg/models"
)

const defaultLabel = "default"

func (c *Console) insert(typ models.EntryType, args []interface{}, ignoreFilter bool) {
	c.enqueue(request{Type: typ, Args: args, IgnoreFilter: ignoreFilter}, c.header())
}

func (c *Console) helper(typ models.EntryType, args []interface{}) {
	if len(args) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(typ, args, false)
}

// Log admits a plain entry
func (c *Console) Log(args ...interface{}) { c.helper(models.TypeLog, args) }

// Info admits an info entry
func (c *Console) Info(args ...interface{}) { c.helper(models.TypeInfo, args) }

// Warn admits a warning entry
func (c *Console) Warn(args ...interface{}) { c.helper(models.TypeWarn, args) }

// Error admits an error entry
func (c *Console) Error(args ...interface{}) { c.helper(models.TypeError, args) }

// Debug admits a verbose entry
func (c *Console) Debug(args ...interface{}) { c.helper(models.TypeDebug, args) }

// HTML admits raw markup
func (c *Console) HTML(args ...interface{}) { c.helper(models.TypeHTML, args) }

// Dir admits an expanded view of v
func (c *Console) Dir(v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(models.TypeDir, []interface{}{v}, false)
}

// Table admits data rendered as a table, optionally restricted to columns
func (c *Console) Table(data interface{}, columns ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	args := []interface{}{data}
	if len(columns) > 0 {
		args = append(args, columns)
	}
	c.insert(models.TypeTable, args, false)
}

// Group opens an expanded group
func (c *Console) Group(label ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(models.TypeGroup, label, true)
}

// GroupCollapsed opens a collapsed group
func (c *Console) GroupCollapsed(label ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(models.TypeGroupCollapsed, label, true)
}

// GroupEnd closes the innermost open group
func (c *Console) GroupEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(models.TypeGroupEnd, nil, false)
}

// Time starts a timer. Starting a running timer logs a warning.
func (c *Console) Time(label string) {
	if label == "" {
		label = defaultLabel
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.timers[label]; ok {
		c.insert(models.TypeWarn, []interface{}{fmt.Sprintf("Timer '%s' already exists", label)}, false)
		return
	}
	c.timers[label] = c.scheduler.Now()
}

// TimeLog logs the elapsed time of a running timer
func (c *Console) TimeLog(label string) {
	if label == "" {
		label = defaultLabel
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeLog(label)
}

func (c *Console) timeLog(label string) bool {
	start, ok := c.timers[label]
	if !ok {
		c.insert(models.TypeWarn, []interface{}{fmt.Sprintf("Timer '%s' does not exist", label)}, false)
		return false
	}
	elapsed := c.scheduler.Now().Sub(start)
	c.insert(models.TypeInfo, []interface{}{fmt.Sprintf("%s: %vms", label, elapsed.Milliseconds())}, false)
	return true
}

// TimeEnd logs the elapsed time and stops the timer
func (c *Console) TimeEnd(label string) {
	if label == "" {
		label = defaultLabel
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timeLog(label) {
		delete(c.timers, label)
	}
}

// Count increments and logs a counter
func (c *Console) Count(label string) {
	if label == "" {
		label = defaultLabel
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[label]++
	c.insert(models.TypeInfo, []interface{}{fmt.Sprintf("%s: %d", label, c.counters[label])}, false)
}

// CountReset sets a counter back to zero
func (c *Console) CountReset(label string) {
	if label == "" {
		label = defaultLabel
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[label] = 0
}

// Assert logs an error entry when cond is false
func (c *Console) Assert(cond bool, args ...interface{}) {
	if cond {
		return
	}
	if len(args) == 0 {
		args = []interface{}{"console.assert"}
	}
	args = append([]interface{}{"Assertion failed:"}, args...)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(models.TypeError, args, false)
}
