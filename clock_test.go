package blitcast

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClockFiresInDeadlineOrder(t *testing.T) {
	c := NewClock()
	var got []string
	c.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	c.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	c.AfterFunc(20*time.Millisecond, func() { got = append(got, "b1") })
	c.AfterFunc(20*time.Millisecond, func() { got = append(got, "b2") })

	c.Advance(25 * time.Millisecond)
	if want := "a b1 b2"; strings.Join(got, " ") != want {
		t.Errorf("fired %q, want %q", strings.Join(got, " "), want)
	}
	c.Advance(5 * time.Millisecond)
	if want := "a b1 b2 c"; strings.Join(got, " ") != want {
		t.Errorf("fired %q, want %q", strings.Join(got, " "), want)
	}
	if c.Now() != 30*time.Millisecond {
		t.Errorf("Now = %v, want 30ms", c.Now())
	}
}

func TestClockNowDuringCallback(t *testing.T) {
	c := NewClock()
	var at time.Duration
	c.AfterFunc(40*time.Millisecond, func() { at = c.Now() })
	c.Advance(time.Second)
	if at != 40*time.Millisecond {
		t.Errorf("Now in callback = %v, want 40ms", at)
	}
}

func TestClockChainedTimersWithinOneAdvance(t *testing.T) {
	c := NewClock()
	n := 0
	var tick func()
	tick = func() {
		n++
		c.AfterFunc(10*time.Millisecond, tick)
	}
	c.AfterFunc(10*time.Millisecond, tick)
	c.Advance(55 * time.Millisecond)
	if n != 5 {
		t.Errorf("ticks = %d, want 5", n)
	}
}

func TestClockStop(t *testing.T) {
	c := NewClock()
	fired := false
	tm := c.AfterFunc(10*time.Millisecond, func() { fired = true })
	if !tm.Stop() {
		t.Error("first Stop should report true")
	}
	if tm.Stop() {
		t.Error("second Stop should report false")
	}
	c.Advance(time.Second)
	if fired {
		t.Error("stopped timer fired")
	}

	done := c.AfterFunc(time.Millisecond, func() {})
	c.Advance(time.Millisecond)
	if done.Stop() {
		t.Error("Stop after firing should report false")
	}
}

func TestClockStopMiddleOfHeap(t *testing.T) {
	c := NewClock()
	var got []int
	var timers []Timer
	for i := 1; i <= 5; i++ {
		timers = append(timers, c.AfterFunc(time.Duration(i)*time.Millisecond, func() { got = append(got, i) }))
	}
	timers[2].Stop()
	c.Advance(10 * time.Millisecond)
	want := []int{1, 2, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("fired %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fired %v, want %v", got, want)
		}
	}
}

func TestClockClampsZeroDelay(t *testing.T) {
	c := NewClock()
	fired := false
	c.AfterFunc(0, func() { fired = true })
	c.Advance(0)
	if fired {
		t.Error("zero-delay timer fired without time passing")
	}
	if d, ok := c.NextDeadline(); !ok || d != minTimerDelay {
		t.Errorf("NextDeadline = %v, %v; want %v", d, ok, minTimerDelay)
	}
	c.Advance(minTimerDelay)
	if !fired {
		t.Error("timer should fire after the minimum delay")
	}
}

func TestClockGoContinuationRunsOnFlush(t *testing.T) {
	c := NewClock()
	var worked atomic.Bool
	ran := false
	c.Go(func() func() {
		worked.Store(true)
		return func() {
			ran = true
			// Continuations may start more work; Flush drains it too.
			c.Go(func() func() { return nil })
		}
	})
	c.Flush()
	if !worked.Load() || !ran {
		t.Errorf("worked = %v, ran = %v; want both", worked.Load(), ran)
	}
	if c.Now() != 0 {
		t.Errorf("Flush moved time to %v", c.Now())
	}
}

func TestClockPostRunsBeforeTimers(t *testing.T) {
	c := NewClock()
	var got []string
	c.AfterFunc(time.Millisecond, func() { got = append(got, "timer") })
	c.Post(func() { got = append(got, "post") })
	c.Advance(time.Millisecond)
	if want := "post timer"; strings.Join(got, " ") != want {
		t.Errorf("order %q, want %q", strings.Join(got, " "), want)
	}
}

func TestClockPending(t *testing.T) {
	c := NewClock()
	if _, ok := c.NextDeadline(); ok {
		t.Error("empty clock should have no deadline")
	}
	c.AfterFunc(5*time.Millisecond, func() {})
	c.AfterFunc(3*time.Millisecond, func() {})
	if c.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", c.Pending())
	}
	if d, _ := c.NextDeadline(); d != 3*time.Millisecond {
		t.Errorf("NextDeadline = %v, want 3ms", d)
	}
}
