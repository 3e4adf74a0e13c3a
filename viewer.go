package blitcast

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig configures RunViewer.
type RunConfig struct {
	Title string
	// Width and Height size the window. Zero fits the page content.
	Width, Height int
	ShowFPS       bool
}

// Viewer is an ebiten.Game that shows every animation of a page stacked
// vertically. Each Update advances the clock by one tick, so all controllers
// run on the game loop goroutine.
//
// Keys: Space pauses or resumes everything, R restarts everything, and a
// click toggles the animation under the pointer.
type Viewer struct {
	// Padding is the gap between animations in pixels.
	Padding int
	// ClearColor fills the window behind the animations.
	ClearColor color.RGBA
	// ShowFPS prints the FPS and TPS in the top-left corner.
	ShowFPS bool

	page  *Page
	clock *Clock
	slots []image.Rectangle
}

// NewViewer creates a viewer for page, driven by clock.
func NewViewer(page *Page, clock *Clock) *Viewer {
	return &Viewer{
		Padding:    16,
		ClearColor: color.RGBA{R: 26, G: 26, B: 38, A: 255},
		page:       page,
		clock:      clock,
	}
}

// Update advances playback by one tick and handles input.
func (v *Viewer) Update() error {
	v.clock.Advance(time.Second / time.Duration(ebiten.TPS()))

	controllers := v.page.Controllers()
	v.layoutSlots(controllers)

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		anyPlaying := false
		for _, c := range controllers {
			if c.State() == StatePlaying {
				anyPlaying = true
				break
			}
		}
		for _, c := range controllers {
			if anyPlaying {
				c.Pause()
			} else {
				c.Resume()
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		for _, c := range controllers {
			c.Start()
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if i := v.hit(x, y); i >= 0 {
			controllers[i].TogglePause()
		}
	}
	return nil
}

// Draw paints every animation into its slot.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(v.ClearColor)
	for i, c := range v.page.Controllers() {
		if i >= len(v.slots) {
			break
		}
		slot := v.slots[i]
		c.Draw(screen.SubImage(slot).(*ebiten.Image))
		if c.Paused() {
			ebitenutil.DebugPrintAt(screen, "paused", slot.Min.X+4, slot.Min.Y+4)
		}
	}
	if v.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

// Layout uses the window size as the logical screen size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// ContentSize returns the size needed to show every attached animation.
func (v *Viewer) ContentSize() (int, int) {
	w, h := 0, v.Padding
	for _, c := range v.page.Controllers() {
		tl := c.Timeline()
		w = max(w, tl.Width)
		h += tl.Height + v.Padding
	}
	return w + 2*v.Padding, h
}

func (v *Viewer) layoutSlots(controllers []*Controller) {
	v.slots = v.slots[:0]
	y := v.Padding
	for _, c := range controllers {
		tl := c.Timeline()
		v.slots = append(v.slots, image.Rect(v.Padding, y, v.Padding+tl.Width, y+tl.Height))
		y += tl.Height + v.Padding
	}
}

// hit returns the slot index containing (x, y), or -1.
func (v *Viewer) hit(x, y int) int {
	p := image.Pt(x, y)
	for i, r := range v.slots {
		if p.In(r) {
			return i
		}
	}
	return -1
}

// RunViewer opens a window and runs the viewer until it is closed.
func RunViewer(v *Viewer, cfg RunConfig) error {
	w, h := cfg.Width, cfg.Height
	if w == 0 || h == 0 {
		cw, ch := v.ContentSize()
		w, h = max(cw, 320), max(ch, 240)
	}
	v.ShowFPS = v.ShowFPS || cfg.ShowFPS
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(v)
}
