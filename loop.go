package blitcast

import (
	"context"
	"sync"
	"time"
)

// EventLoop is a wall-clock Scheduler. Timers are backed by time.AfterFunc,
// but their callbacks are posted to a channel and executed by Run on a single
// goroutine, so controllers never see concurrent mutation.
type EventLoop struct {
	start  time.Time
	events chan func()
	done   chan struct{}
	once   sync.Once
}

// NewEventLoop creates an event loop. Nothing runs until Run is called.
func NewEventLoop() *EventLoop {
	return &EventLoop{
		start:  time.Now(),
		events: make(chan func(), 64),
		done:   make(chan struct{}),
	}
}

// Now returns the wall-clock time elapsed since the loop was created.
func (l *EventLoop) Now() time.Duration {
	return time.Since(l.start)
}

// AfterFunc runs fn on the loop goroutine after d.
func (l *EventLoop) AfterFunc(d time.Duration, fn func()) Timer {
	if d < minTimerDelay {
		d = minTimerDelay
	}
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped {
				return
			}
			t.fired = true
			fn()
		})
	})
	return t
}

// Go runs work on a worker goroutine and posts its continuation to the loop.
func (l *EventLoop) Go(work func() func()) {
	go func() {
		if cont := work(); cont != nil {
			l.Post(cont)
		}
	}()
}

// Post queues fn to run on the loop goroutine. Safe for concurrent use; fn is
// dropped once the loop has stopped.
func (l *EventLoop) Post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

// Run executes posted callbacks until ctx is done. It returns ctx.Err().
// A loop cannot be restarted after Run returns.
func (l *EventLoop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			fn()
		}
	}
}

type loopTimer struct {
	timer   *time.Timer
	stopped bool // loop goroutine only
	fired   bool // loop goroutine only
}

// Stop must be called from the loop goroutine. A callback already posted to
// the loop will see the flag and not run.
func (t *loopTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}
