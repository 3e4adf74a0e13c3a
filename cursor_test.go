package blitcast

import (
	"image"
	"math"
	"sync"
	"testing"
	"time"
)

func near(a, b Vec2) bool {
	return math.Abs(a.X-b.X) < 0.5 && math.Abs(a.Y-b.Y) < 0.5
}

func TestCursorSnapsOnFrameZero(t *testing.T) {
	clock := NewClock()
	c := NewCursorOverlay([]Vec2{{X: 5, Y: 6}, {X: 100, Y: 50}}, clock)
	c.Advance(0, 1, 100*time.Millisecond)
	if got := c.Position(); got != (Vec2{X: 5, Y: 6}) {
		t.Errorf("Position = %v, want {5 6}", got)
	}
}

func TestCursorGlidesOverDelay(t *testing.T) {
	clock := NewClock()
	c := NewCursorOverlay([]Vec2{{X: 0, Y: 0}, {X: 100, Y: 50}}, clock)
	c.Advance(0, 1, 100*time.Millisecond)

	clock.Advance(50 * time.Millisecond)
	if got := c.Position(); !near(got, Vec2{X: 50, Y: 25}) {
		t.Errorf("halfway Position = %v, want ~{50 25}", got)
	}
	if got := c.Target(); got != (Vec2{X: 100, Y: 50}) {
		t.Errorf("Target = %v, want {100 50}", got)
	}

	clock.Advance(50 * time.Millisecond)
	if got := c.Position(); got != (Vec2{X: 100, Y: 50}) {
		t.Errorf("final Position = %v, want {100 50}", got)
	}
}

func TestCursorHoldsWhenPositionsRunOut(t *testing.T) {
	tl := uniformTimeline(10, 100)
	tl.Cursor = []Vec2{{X: 0, Y: 0}, {X: 20, Y: 20}}
	clock := NewClock()
	ctl := NewController("cursor", tl, &recordingRenderer{clock: clock}, clock, DefaultConfig())

	var positions []Vec2
	ctl.SetStepHook(func(frame int) {
		if frame >= 2 {
			positions = append(positions, ctl.Cursor().Position())
		}
	})
	ctl.Start()
	clock.Advance(950 * time.Millisecond)

	if len(positions) != 8 {
		t.Fatalf("recorded %d positions for frames 2-9, want 8", len(positions))
	}
	for i, p := range positions {
		if p != (Vec2{X: 20, Y: 20}) {
			t.Errorf("frame %d Position = %v, want {20 20}", i+2, p)
		}
	}
	if got := ctl.Cursor().Moves(); got != 1 {
		t.Errorf("Moves = %d, want 1", got)
	}
}

func TestCursorLoopSnapsBack(t *testing.T) {
	clock := NewClock()
	c := NewCursorOverlay([]Vec2{{X: 1, Y: 1}, {X: 9, Y: 9}}, clock)
	c.Advance(0, 1, 10*time.Millisecond)
	clock.Advance(10 * time.Millisecond)
	c.Advance(1, 0, time.Second) // last frame wraps; no glide toward frame 0
	if got := c.Position(); got != (Vec2{X: 9, Y: 9}) {
		t.Errorf("Position = %v, want {9 9} held through the repeat delay", got)
	}
	c.Advance(0, 1, 10*time.Millisecond)
	if got := c.Position(); got != (Vec2{X: 1, Y: 1}) {
		t.Errorf("Position = %v, want {1 1} after the loop", got)
	}
}

func TestCursorZeroDelaySnaps(t *testing.T) {
	clock := NewClock()
	c := NewCursorOverlay([]Vec2{{X: 0, Y: 0}, {X: 7, Y: 8}}, clock)
	c.Advance(0, 1, 0)
	if got := c.Position(); got != (Vec2{X: 7, Y: 8}) {
		t.Errorf("Position = %v, want {7 8}", got)
	}
}

func TestCursorAttachesLazily(t *testing.T) {
	clock := NewClock()
	none := NewCursorOverlay(nil, clock)
	none.Advance(0, 1, 10*time.Millisecond)
	if none.Attached() {
		t.Error("overlay without positions should never attach")
	}

	c := NewCursorOverlay([]Vec2{{X: 1, Y: 1}}, clock)
	if c.Attached() {
		t.Error("overlay should not attach before its first step")
	}
	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	c.Composite(dst)
	for _, b := range dst.Pix {
		if b != 0 {
			t.Fatal("unattached overlay painted pixels")
		}
	}

	c.Advance(0, 1, 10*time.Millisecond)
	if !c.Attached() {
		t.Error("overlay should attach on its first step")
	}
	c.Advance(0, 1, 10*time.Millisecond)
	if !c.Attached() {
		t.Error("overlay should never detach")
	}
}

func TestDefaultCursorImage(t *testing.T) {
	img := defaultCursorImage()
	if got := img.Bounds().Size(); got != image.Pt(32, 32) {
		t.Errorf("cursor size = %v, want 32x32", got)
	}
}

func TestDefaultCursorImageSharedAcrossGoroutines(t *testing.T) {
	imgs := make([]image.Image, 8)
	var wg sync.WaitGroup
	for i := range imgs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			imgs[i] = defaultCursorImage()
		}()
	}
	wg.Wait()
	for i, img := range imgs {
		if img != imgs[0] {
			t.Fatalf("goroutine %d decoded its own cursor image", i)
		}
	}
}
