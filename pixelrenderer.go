package blitcast

import (
	"image"
	"image/draw"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"
)

// PixelRenderer paints blits into one persistent RGBA surface sized to the
// viewport. Memory is O(1) in the number of frames; cost scales with blit
// area.
type PixelRenderer struct {
	atlas   *SpriteAtlas
	surface *image.RGBA
	painted int

	gpu   *ebiten.Image
	dirty bool
	op    ebiten.DrawImageOptions
}

// NewPixelRenderer creates a pixel buffer renderer for a w×h viewport.
func NewPixelRenderer(atlas *SpriteAtlas, w, h int) *PixelRenderer {
	return &PixelRenderer{
		atlas:   atlas,
		surface: image.NewRGBA(image.Rect(0, 0, w, h)),
		dirty:   true,
	}
}

// Clear wipes the whole surface to transparent.
func (r *PixelRenderer) Clear() {
	clear(r.surface.Pix)
	r.painted = 0
	r.dirty = true
}

// DrawBlits copies each source rectangle onto the surface, compositing over
// existing content.
func (r *PixelRenderer) DrawBlits(ops []BlitOp) {
	src := r.atlas.Image()
	if src == nil || len(ops) == 0 {
		return
	}
	for _, op := range ops {
		xdraw.Draw(r.surface, op.DstRect(), src, r.atlas.srcPoint(op), xdraw.Over)
	}
	r.painted += len(ops)
	r.dirty = true
}

// Painted returns the number of blits painted since the last Clear.
func (r *PixelRenderer) Painted() int {
	return r.painted
}

// Surface returns the live surface. Callers must not modify it.
func (r *PixelRenderer) Surface() *image.RGBA {
	return r.surface
}

// Composite paints the surface onto dst.
func (r *PixelRenderer) Composite(dst draw.Image) {
	xdraw.Draw(dst, r.surface.Bounds(), r.surface, image.Point{}, xdraw.Over)
}

// Draw uploads the surface when it changed and draws it onto screen.
func (r *PixelRenderer) Draw(screen *ebiten.Image) {
	if r.gpu == nil {
		b := r.surface.Bounds()
		r.gpu = ebiten.NewImage(b.Dx(), b.Dy())
	}
	if r.dirty {
		r.gpu.WritePixels(r.surface.Pix)
		r.dirty = false
	}
	origin := screen.Bounds().Min
	r.op.GeoM.Reset()
	r.op.GeoM.Translate(float64(origin.X), float64(origin.Y))
	screen.DrawImage(r.gpu, &r.op)
}
