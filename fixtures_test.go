package blitcast

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/fs"
	"sync"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Test fixtures ---

// gradientImage returns a w×h opaque image where pixel (x, y) is
// RGBA{x, y, 7, 255}, so every source pixel is distinguishable.
func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

// testAtlas returns a loaded atlas over gradientImage(w, h).
func testAtlas(t *testing.T, w, h int) *SpriteAtlas {
	t.Helper()
	a := NewSpriteAtlas("test.png")
	if err := a.Load(gradientImage(w, h)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return a
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// twoFrameTimeline is the canonical scenario: one 10×10 blit, then an empty
// frame.
func twoFrameTimeline() *Timeline {
	return &Timeline{
		Width:  32,
		Height: 32,
		Frames: []Frame{
			{Delay: 100, Blits: []BlitOp{{SrcX: 0, SrcY: 0, Width: 10, Height: 10, DstX: 0, DstY: 0}}},
			{Delay: 200},
		},
	}
}

// uniformTimeline has n frames of delay ms, each with one blit.
func uniformTimeline(n int, delay float64) *Timeline {
	tl := &Timeline{Width: 32, Height: 32}
	for i := 0; i < n; i++ {
		tl.Frames = append(tl.Frames, Frame{Delay: delay, Blits: []BlitOp{
			{SrcX: i, SrcY: i, Width: 4, Height: 4, DstX: 2 * i, DstY: i},
		}})
	}
	return tl
}

// fakeFetcher serves in-memory resources and records requests.
type fakeFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	errs  map[string]error
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{files: map[string][]byte{}, errs: map[string]error{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	data, ok := f.files[name]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", name, fs.ErrNotExist)
	}
	return data, nil
}

func (f *fakeFetcher) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// renderCall is one call observed by recordingRenderer.
type renderCall struct {
	at    time.Duration
	clear bool
	blits int
}

// recordingRenderer records every call with the clock time it happened at.
type recordingRenderer struct {
	clock   Scheduler
	calls   []renderCall
	painted int
}

func (r *recordingRenderer) Clear() {
	r.calls = append(r.calls, renderCall{at: r.clock.Now(), clear: true})
	r.painted = 0
}

func (r *recordingRenderer) DrawBlits(ops []BlitOp) {
	r.calls = append(r.calls, renderCall{at: r.clock.Now(), blits: len(ops)})
	r.painted += len(ops)
}

func (r *recordingRenderer) Painted() int { return r.painted }

func (r *recordingRenderer) Composite(dst draw.Image) {}

func (r *recordingRenderer) Draw(screen *ebiten.Image) {}

// stepRecord is one step observed through the step hook.
type stepRecord struct {
	at    time.Duration
	frame int
}

func recordSteps(c *Controller, clock Scheduler) *[]stepRecord {
	var steps []stepRecord
	c.SetStepHook(func(frame int) {
		steps = append(steps, stepRecord{at: clock.Now(), frame: frame})
	})
	return &steps
}
