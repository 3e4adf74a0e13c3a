package blitcast

import (
	"bytes"
	_ "embed"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	xdraw "golang.org/x/image/draw"
)

//go:embed assets/cursor.png
var cursorPNG []byte

// CursorHotspot is the offset between a recorded position and the top-left
// corner of the cursor sprite.
const CursorHotspot = 2

// defaultCursorImage decodes the embedded 32×32 arrow on first use.
var defaultCursorImage = sync.OnceValue(func() image.Image {
	img, _, err := image.Decode(bytes.NewReader(cursorPNG))
	if err != nil {
		panic("blitcast: embedded cursor: " + err.Error())
	}
	return img
})

var cursorGPU = sync.OnceValue(func() *ebiten.Image {
	return ebiten.NewImageFromImage(defaultCursorImage())
})

// CursorOverlay is a pointer indicator layered above the render surface. It
// follows the recorded per-frame positions: snapping to the first on frame 0
// and then gliding toward the position of each upcoming frame over that
// frame's delay, so it arrives as the frame paints.
//
// Positions are sampled from the scheduler clock, so the overlay needs no
// per-tick update.
type CursorOverlay struct {
	// Ease shapes each glide. Defaults to ease.InOutQuad.
	Ease ease.TweenFunc

	positions []Vec2
	clock     Scheduler

	tweens   [2]*gween.Tween
	start    time.Duration
	pos      Vec2 // position when no glide is active
	gliding  bool
	attached bool
	moves    int
}

// NewCursorOverlay creates an overlay for the given recorded positions.
// An empty list yields an overlay that never appears.
func NewCursorOverlay(positions []Vec2, clock Scheduler) *CursorOverlay {
	return &CursorOverlay{
		Ease:      ease.InOutQuad,
		positions: positions,
		clock:     clock,
	}
}

// Advance updates the overlay for a step of frame that is followed by
// upcoming after delay. On frame 0 the overlay snaps to the first position.
// It glides toward positions[upcoming] when that exists; once the positions
// are exhausted it holds still. A wrap back to frame 0 is left to the snap.
func (c *CursorOverlay) Advance(frame, upcoming int, delay time.Duration) {
	if len(c.positions) == 0 {
		return
	}
	if frame == 0 {
		c.snap(c.positions[0])
	}
	c.attached = true
	if upcoming == 0 || upcoming >= len(c.positions) {
		return
	}
	c.glide(c.positions[upcoming], delay)
}

func (c *CursorOverlay) snap(p Vec2) {
	c.pos = p
	c.gliding = false
	c.tweens = [2]*gween.Tween{}
}

func (c *CursorOverlay) glide(to Vec2, d time.Duration) {
	from := c.Position()
	c.moves++
	if d <= 0 {
		c.snap(to)
		return
	}
	secs := float32(d.Seconds())
	c.tweens[0] = gween.New(float32(from.X), float32(to.X), secs, c.Ease)
	c.tweens[1] = gween.New(float32(from.Y), float32(to.Y), secs, c.Ease)
	c.start = c.clock.Now()
	c.pos = to
	c.gliding = true
}

// Position returns the indicator position at the scheduler's current time.
func (c *CursorOverlay) Position() Vec2 {
	if !c.gliding {
		return c.pos
	}
	elapsed := float32((c.clock.Now() - c.start).Seconds())
	x, doneX := c.tweens[0].Set(elapsed)
	y, doneY := c.tweens[1].Set(elapsed)
	if doneX && doneY {
		c.gliding = false
		return c.pos
	}
	return Vec2{X: float64(x), Y: float64(y)}
}

// Target returns the position the overlay is heading to (or resting at).
func (c *CursorOverlay) Target() Vec2 {
	return c.pos
}

// Attached reports whether the overlay has appeared. Once attached it is
// never detached.
func (c *CursorOverlay) Attached() bool {
	return c.attached
}

// Moves returns the number of glides started so far.
func (c *CursorOverlay) Moves() int {
	return c.moves
}

// Composite draws the cursor sprite onto dst.
func (c *CursorOverlay) Composite(dst draw.Image) {
	if !c.attached {
		return
	}
	img := defaultCursorImage()
	p := c.Position()
	at := image.Pt(int(p.X)+CursorHotspot, int(p.Y)+CursorHotspot)
	r := img.Bounds().Sub(img.Bounds().Min).Add(at)
	xdraw.Draw(dst, r, img, img.Bounds().Min, xdraw.Over)
}

// Draw draws the cursor sprite onto screen, relative to its bounds.
func (c *CursorOverlay) Draw(screen *ebiten.Image) {
	if !c.attached {
		return
	}
	p := c.Position()
	origin := screen.Bounds().Min
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(origin.X)+p.X+CursorHotspot, float64(origin.Y)+p.Y+CursorHotspot)
	screen.DrawImage(cursorGPU(), &op)
}
