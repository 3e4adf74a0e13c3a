package blitcast

import (
	"container/heap"
	"sync"
	"time"
)

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped the
	// timer; false means it already fired or was already stopped.
	Stop() bool
}

// Scheduler drives controllers. All callbacks it runs (timer callbacks and
// Go continuations) run on a single goroutine, one at a time.
type Scheduler interface {
	// Now returns the scheduler's current time, measured from its creation.
	Now() time.Duration
	// AfterFunc runs fn on the scheduler goroutine once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
	// Go runs work on a new goroutine. The continuation work returns (if
	// non-nil) is run on the scheduler goroutine.
	Go(work func() func())
}

// minTimerDelay is the timer resolution. Shorter delays are clamped so a
// zero repeat delay loops tightly without ever starving the host.
const minTimerDelay = time.Millisecond

// Clock is a cooperative, virtual-time Scheduler. Time only moves when the
// host calls Advance, typically once per tick of its frame loop, which makes
// playback deterministic and easy to test.
type Clock struct {
	now    time.Duration
	seq    uint64
	timers timerHeap

	mu      sync.Mutex
	posted  []func()
	workers sync.WaitGroup
}

// NewClock creates a clock at time zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Duration {
	return c.now
}

// AfterFunc schedules fn to run when the clock has advanced by d.
func (c *Clock) AfterFunc(d time.Duration, fn func()) Timer {
	if d < minTimerDelay {
		d = minTimerDelay
	}
	c.seq++
	t := &clockTimer{clock: c, when: c.now + d, seq: c.seq, fn: fn}
	heap.Push(&c.timers, t)
	return t
}

// Go runs work on a worker goroutine and queues its continuation for the
// next Advance or Flush.
func (c *Clock) Go(work func() func()) {
	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		if cont := work(); cont != nil {
			c.Post(cont)
		}
	}()
}

// Post queues fn to run on the clock goroutine. Safe for concurrent use.
func (c *Clock) Post(fn func()) {
	c.mu.Lock()
	c.posted = append(c.posted, fn)
	c.mu.Unlock()
}

// Advance moves time forward by d. Queued continuations run first; then every
// timer due within the window fires in deadline order (ties in scheduling
// order), with Now reporting the timer's own deadline while it runs.
func (c *Clock) Advance(d time.Duration) {
	target := c.now + d
	c.runPosted()
	for len(c.timers) > 0 && c.timers[0].when <= target {
		t := heap.Pop(&c.timers).(*clockTimer)
		c.now = t.when
		t.fn()
	}
	c.now = target
}

// Flush waits for every in-flight worker started by Go and runs the queued
// continuations, repeating until no work remains. Time does not move.
func (c *Clock) Flush() {
	for {
		c.workers.Wait()
		if c.runPosted() == 0 {
			return
		}
	}
}

// Pending returns the number of scheduled timers.
func (c *Clock) Pending() int {
	return len(c.timers)
}

// NextDeadline returns the deadline of the earliest timer.
func (c *Clock) NextDeadline() (time.Duration, bool) {
	if len(c.timers) == 0 {
		return 0, false
	}
	return c.timers[0].when, true
}

func (c *Clock) runPosted() int {
	c.mu.Lock()
	posted := c.posted
	c.posted = nil
	c.mu.Unlock()
	for _, fn := range posted {
		fn()
	}
	return len(posted)
}

// --- Timer heap ---

type clockTimer struct {
	clock *Clock
	when  time.Duration
	seq   uint64
	fn    func()
	index int // heap index; -1 once fired or stopped
}

func (t *clockTimer) Stop() bool {
	if t.index < 0 {
		return false
	}
	heap.Remove(&t.clock.timers, t.index)
	return true
}

type timerHeap []*clockTimer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when != h[j].when {
		return h[i].when < h[j].when
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*clockTimer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
