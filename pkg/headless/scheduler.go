// Package headless provides a deterministic scheduler and render surface so
// the console can run without a terminal: in tests and in replay mode.
package headless

import (
	"sort"
	"sync"
	"time"

	"github.com/user/log-console-tui/pkg/host"
)

// FrameInterval is the simulated render-frame period
const FrameInterval = 16 * time.Millisecond

type task struct {
	handle host.Handle
	due    time.Time
	fn     func()
}

// Scheduler is a manual clock. Nothing runs until the caller advances it.
type Scheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   host.Handle
	tasks []task
}

// NewScheduler creates a scheduler whose clock starts at start
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the simulated time
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// After schedules fn to run d after the current simulated time
func (s *Scheduler) After(d time.Duration, fn func()) host.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(s.now.Add(d), fn)
}

// OnNextFrame schedules fn on the next frame boundary
func (s *Scheduler) OnNextFrame(fn func()) host.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.now.Truncate(FrameInterval).Add(FrameInterval)
	return s.add(next, fn)
}

// Cancel drops a pending callback; unknown handles are ignored
func (s *Scheduler) Cancel(h host.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.handle == h {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// Pending returns the number of callbacks waiting to run
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// RunNext moves the clock to the earliest pending callback and runs it.
// It returns false when nothing is pending.
func (s *Scheduler) RunNext() bool {
	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return false
	}
	t := s.tasks[0]
	s.tasks = s.tasks[1:]
	if t.due.After(s.now) {
		s.now = t.due
	}
	s.mu.Unlock()

	t.fn()
	return true
}

// Advance runs every callback due within d, including ones scheduled by
// callbacks that ran, and leaves the clock at now+d.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	deadline := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if len(s.tasks) == 0 || s.tasks[0].due.After(deadline) {
			s.now = deadline
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		s.RunNext()
	}
}

// Flush runs callbacks until none remain or limit callbacks have run.
// It returns the number of callbacks that ran.
func (s *Scheduler) Flush(limit int) int {
	ran := 0
	for ran < limit && s.RunNext() {
		ran++
	}
	return ran
}

func (s *Scheduler) add(due time.Time, fn func()) host.Handle {
	s.seq++
	t := task{handle: s.seq, due: due, fn: fn}
	idx := sort.Search(len(s.tasks), func(i int) bool {
		return s.tasks[i].due.After(due)
	})
	s.tasks = append(s.tasks, task{})
	copy(s.tasks[idx+1:], s.tasks[idx:])
	s.tasks[idx] = t
	return t.handle
}
