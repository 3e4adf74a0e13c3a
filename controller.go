package blitcast

import (
	"image"
	"image/draw"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
)

// State is the playback state of a Controller.
type State uint8

const (
	StateIdle    State = iota // constructed or stopped; no timer pending
	StatePlaying              // stepping on timers
	StatePaused               // frame index retained, nothing scheduled
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Controller plays one Timeline through one BlitRenderer, moving a
// CursorOverlay in lockstep. It must only be used from its scheduler's
// goroutine.
type Controller struct {
	// ID identifies the controller in logs and capture file names.
	ID string
	// Name is the animation's source key.
	Name string

	timeline *Timeline
	config   Config
	renderer BlitRenderer
	cursor   *CursorOverlay
	sched    Scheduler

	frame    int
	timer    Timer
	paused   bool
	started  bool
	disposed bool

	stats  Stats
	onStep func(frame int)
}

// NewController creates an idle controller. Call Start once the renderer's
// atlas has loaded. cfg is used as given; callers validate it first.
func NewController(name string, tl *Timeline, r BlitRenderer, sched Scheduler, cfg Config) *Controller {
	return &Controller{
		ID:       uuid.NewString(),
		Name:     name,
		timeline: tl,
		config:   cfg,
		renderer: r,
		cursor:   NewCursorOverlay(tl.Cursor, sched),
		sched:    sched,
	}
}

// Start plays from frame 0. When already playing it acts as a hard restart.
// Start also clears a pending pause.
func (c *Controller) Start() {
	if c.disposed {
		return
	}
	c.paused = false
	c.begin()
}

// begin rewinds to frame 0 and plays, leaving the pause flag alone. A
// controller paused before its atlas loaded stays paused on frame 0 until
// Resume paints it.
func (c *Controller) begin() {
	if c.disposed {
		return
	}
	c.Stop()
	c.started = true
	debugf("%s (%s) start, loop %v", c.Name, c.ID, c.timeline.RunTime(c.config)+c.config.repeatDelay())
	c.step()
}

// Stop cancels the pending step, rewinds to frame 0 and clears the surface.
// Renderer resources are kept for the next Start.
func (c *Controller) Stop() {
	c.cancel()
	c.frame = 0
	c.started = false
	c.renderer.Clear()
}

// Pause freezes playback at the current frame. The pending step is
// cancelled; nothing advances until Resume.
func (c *Controller) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.cancel()
}

// Resume clears the pause and immediately steps the frame that was due,
// without waiting out the old delay. On a controller that was never started
// it only clears the flag.
func (c *Controller) Resume() {
	if !c.paused {
		return
	}
	c.paused = false
	if !c.started || c.disposed {
		return
	}
	c.cancel()
	c.step()
}

// TogglePause pauses a playing controller or resumes a paused one.
func (c *Controller) TogglePause() {
	if c.paused {
		c.Resume()
	} else {
		c.Pause()
	}
}

// Dispose stops the controller for good; every later call is a no-op.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.Stop()
	c.disposed = true
	c.onStep = nil
}

// step paints the current frame and schedules the next one.
func (c *Controller) step() {
	if c.paused || c.disposed {
		return
	}

	frame := c.frame
	f := c.timeline.Frames[frame]

	if frame == 0 {
		c.renderer.Clear()
	}
	c.renderer.DrawBlits(f.Blits)
	c.stats.Steps++
	c.stats.Blits += uint64(len(f.Blits))

	var delay time.Duration
	if frame+1 >= len(c.timeline.Frames) {
		// The last frame's own delay is replaced by the repeat delay.
		c.frame = 0
		delay = c.config.repeatDelay()
		c.stats.Cycles++
		debugf("%s (%s) cycle %d, %s", c.Name, c.ID, c.stats.Cycles, c.stats)
	} else {
		c.frame = frame + 1
		delay = c.config.frameDelay(f)
	}

	c.cursor.Advance(frame, c.frame, delay)
	c.timer = c.sched.AfterFunc(delay, c.step)

	// The hook may Stop, Pause or Start; the timer is already in place for
	// those to cancel.
	if c.onStep != nil {
		c.onStep(frame)
	}
}

func (c *Controller) cancel() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// State returns the playback state.
func (c *Controller) State() State {
	switch {
	case !c.started:
		return StateIdle
	case c.paused:
		return StatePaused
	default:
		return StatePlaying
	}
}

// Frame returns the index of the frame the next step will paint.
func (c *Controller) Frame() int {
	return c.frame
}

// Paused reports whether the controller is paused.
func (c *Controller) Paused() bool {
	return c.paused
}

// Disposed reports whether Dispose has been called.
func (c *Controller) Disposed() bool {
	return c.disposed
}

// Timeline returns the timeline being played.
func (c *Controller) Timeline() *Timeline {
	return c.timeline
}

// Config returns the playback options.
func (c *Controller) Config() Config {
	return c.config
}

// Renderer returns the renderer chosen at construction.
func (c *Controller) Renderer() BlitRenderer {
	return c.renderer
}

// Cursor returns the cursor overlay.
func (c *Controller) Cursor() *CursorOverlay {
	return c.cursor
}

// Stats returns the playback counters.
func (c *Controller) Stats() Stats {
	return c.stats
}

// SetStepHook registers fn to be called after each frame is painted, with
// the index of that frame. Pass nil to remove it.
func (c *Controller) SetStepHook(fn func(frame int)) {
	c.onStep = fn
}

// Bounds returns the viewport rectangle.
func (c *Controller) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.timeline.Width, c.timeline.Height)
}

// Composite paints the visible surface and the cursor onto dst.
func (c *Controller) Composite(dst draw.Image) {
	c.renderer.Composite(dst)
	c.cursor.Composite(dst)
}

// Snapshot returns a copy of what is visible right now.
func (c *Controller) Snapshot() *image.RGBA {
	img := image.NewRGBA(c.Bounds())
	c.Composite(img)
	return img
}

// Draw paints the visible surface and the cursor onto screen.
func (c *Controller) Draw(screen *ebiten.Image) {
	c.renderer.Draw(screen)
	c.cursor.Draw(screen)
}
