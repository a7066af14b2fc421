package console

import (
	"time"

	"github.com/user/log-console-tui/pkg/host"
	"github.com/user/log-console-tui/pkg/logging"
)

// BatchPlan is the work chosen for one drain cycle
type BatchPlan struct {
	Backlog int
	Batch   int
	Delay   time.Duration
}

var batchSteps = []struct {
	below int
	batch int
	delay time.Duration
}{
	{1000, 200, 400 * time.Millisecond},
	{5000, 500, 800 * time.Millisecond},
	{10000, 800, 1000 * time.Millisecond},
	{25000, 1000, 1200 * time.Millisecond},
	{50000, 1500, 1500 * time.Millisecond},
}

// PlanBatch picks the batch size and next-cycle delay for a backlog length
func PlanBatch(backlog int) BatchPlan {
	for _, step := range batchSteps {
		if backlog < step.below {
			return BatchPlan{Backlog: backlog, Batch: step.batch, Delay: step.delay}
		}
	}
	return BatchPlan{Backlog: backlog, Batch: 2000, Delay: 2500 * time.Millisecond}
}

type ingestQueue struct {
	pending []request

	timer    host.Handle
	timerSet bool
	frame    host.Handle
	frameSet bool

	lastPlan BatchPlan
	cycles   int
}

// cancel drops pending requests and any scheduled continuation
func (q *ingestQueue) cancel(s host.Scheduler) {
	if q.timerSet {
		s.Cancel(q.timer)
		q.timerSet = false
	}
	if q.frameSet {
		s.Cancel(q.frame)
		q.frameSet = false
	}
	q.pending = nil
}

// scheduleDrain arms a drain cycle after d unless one is already scheduled
func (c *Console) scheduleDrain(d time.Duration) {
	q := &c.queue
	if q.timerSet || q.frameSet {
		return
	}
	q.timerSet = true
	q.timer = c.scheduler.After(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		q.timerSet = false
		c.drainCycle()
	})
}

// drainCycle admits one batch and, while a backlog remains, schedules the
// next cycle on the following frame.
func (c *Console) drainCycle() {
	q := &c.queue
	backlog := len(q.pending)
	if backlog == 0 {
		return
	}

	plan := PlanBatch(backlog)
	q.lastPlan = plan
	q.cycles++

	n := plan.Batch
	if n > backlog {
		n = backlog
	}
	batch := q.pending[:n]
	q.pending = q.pending[n:]
	for _, req := range batch {
		c.admit(req)
	}
	logging.Debug("Ingest", "cycle %d admitted %d of %d, next in %s", q.cycles, n, backlog, plan.Delay)

	if len(q.pending) == 0 {
		q.pending = nil
		return
	}
	q.frameSet = true
	q.frame = c.scheduler.OnNextFrame(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		q.frameSet = false
		c.scheduleDrain(plan.Delay)
	})
}

// LastBatchPlan reports the plan chosen by the most recent drain cycle
func (c *Console) LastBatchPlan() BatchPlan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.lastPlan
}

// Pending is the number of requests waiting in the ingest queue
func (c *Console) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue.pending)
}
