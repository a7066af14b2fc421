package ui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/log-console-tui/pkg/host"
)

const firedBuffer = 256

// schedulerMsg asks the update loop to run a due console callback
type schedulerMsg struct {
	handle host.Handle
}

type pendingTask struct {
	fn    func()
	timer *time.Timer
}

// TeaScheduler runs console callbacks on the bubbletea update loop. Timers
// fire on their own goroutines but only report the handle; the callback
// itself runs when Update receives the matching schedulerMsg.
type TeaScheduler struct {
	mu     sync.Mutex
	seq    host.Handle
	frame  time.Duration
	tasks  map[host.Handle]*pendingTask
	fired  chan host.Handle
	now    func() time.Time
	closed bool
}

// NewTeaScheduler creates a scheduler whose frames are frame apart
func NewTeaScheduler(frame time.Duration) *TeaScheduler {
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	return &TeaScheduler{
		frame: frame,
		tasks: make(map[host.Handle]*pendingTask),
		fired: make(chan host.Handle, firedBuffer),
		now:   time.Now,
	}
}

func (s *TeaScheduler) Now() time.Time {
	return s.now()
}

func (s *TeaScheduler) OnNextFrame(fn func()) host.Handle {
	return s.After(s.frame, fn)
}

func (s *TeaScheduler) After(d time.Duration, fn func()) host.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	h := s.seq
	task := &pendingTask{fn: fn}
	s.tasks[h] = task
	task.timer = time.AfterFunc(d, func() { s.deliver(h) })
	return h
}

func (s *TeaScheduler) Cancel(h host.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.tasks[h]; ok {
		task.timer.Stop()
		delete(s.tasks, h)
	}
}

// deliver hands a due handle to the update loop. A full buffer moves the
// send off the timer goroutine so a busy loop never stalls other timers.
func (s *TeaScheduler) deliver(h host.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.fired <- h:
	default:
		go s.deliverLater(h)
	}
}

func (s *TeaScheduler) deliverLater(h host.Handle) {
	// Stop may close the channel while we wait
	defer func() { _ = recover() }()
	s.fired <- h
}

// Run executes the callback registered under h, if it is still pending.
// It reports whether a callback ran.
func (s *TeaScheduler) Run(h host.Handle) bool {
	s.mu.Lock()
	task, ok := s.tasks[h]
	delete(s.tasks, h)
	s.mu.Unlock()
	if !ok {
		return false
	}
	task.fn()
	return true
}

// Pending returns the number of callbacks not yet run
func (s *TeaScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Wait returns a command that blocks until a callback is due
func (s *TeaScheduler) Wait() tea.Cmd {
	return func() tea.Msg {
		h, ok := <-s.fired
		if !ok {
			return nil
		}
		return schedulerMsg{handle: h}
	}
}

// Stop cancels every pending callback and releases waiters
func (s *TeaScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for h, task := range s.tasks {
		task.timer.Stop()
		delete(s.tasks, h)
	}
	close(s.fired)
}
