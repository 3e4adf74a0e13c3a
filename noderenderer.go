package blitcast

import (
	"image"
	"image/draw"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"
)

// NodeRenderer represents every blit as a positioned, sized element node
// cropping into one shared atlas image. Elements are pooled: Clear detaches
// them without destroying them, and DrawBlits reuses them before constructing
// new ones.
type NodeRenderer struct {
	atlas   *SpriteAtlas
	surface *Node
	pool    elementPool
	op      ebiten.DrawImageOptions
}

// NewNodeRenderer creates a node pool renderer for a w×h viewport.
func NewNodeRenderer(atlas *SpriteAtlas, w, h int) *NodeRenderer {
	return &NodeRenderer{
		atlas:   atlas,
		surface: NewSurface("surface", w, h),
		pool:    elementPool{atlas: atlas},
	}
}

// Clear detaches all in-use elements and returns them to the free pool.
func (r *NodeRenderer) Clear() {
	r.surface.RemoveChildren()
	r.pool.reclaim()
}

// DrawBlits attaches one element per op, in order.
func (r *NodeRenderer) DrawBlits(ops []BlitOp) {
	for _, op := range ops {
		el := r.pool.acquire()
		el.place(op)
		r.surface.attach(el)
	}
}

// Painted returns the number of attached elements.
func (r *NodeRenderer) Painted() int {
	return r.surface.NumChildren()
}

// Surface returns the container node holding the attached elements.
func (r *NodeRenderer) Surface() *Node {
	return r.surface
}

// Created returns the number of elements constructed so far.
func (r *NodeRenderer) Created() int {
	return r.pool.created
}

// Free returns the number of pooled elements ready for reuse.
func (r *NodeRenderer) Free() int {
	return len(r.pool.free)
}

// InUse returns the number of elements currently attached.
func (r *NodeRenderer) InUse() int {
	return len(r.pool.inUse)
}

// Composite paints the attached elements onto dst in child order, clipped to
// the viewport.
func (r *NodeRenderer) Composite(dst draw.Image) {
	if r.atlas.Image() == nil {
		return
	}
	view := image.Rect(0, 0, r.surface.Width, r.surface.Height)
	for _, el := range r.surface.Children() {
		dr := el.Bounds().Intersect(view)
		if dr.Empty() {
			continue
		}
		sp := r.atlas.srcPoint(el.crop()).Add(dr.Min.Sub(el.Bounds().Min))
		xdraw.Draw(dst, dr, r.atlas.Region(el.crop()), sp, xdraw.Over)
	}
}

// Draw paints the attached elements onto screen, clipped to the viewport.
func (r *NodeRenderer) Draw(screen *ebiten.Image) {
	view := screen.SubImage(image.Rect(0, 0, r.surface.Width, r.surface.Height).
		Add(screen.Bounds().Min)).(*ebiten.Image)
	origin := view.Bounds().Min
	for _, el := range r.surface.Children() {
		region := r.atlas.ebitenRegion(el.crop())
		if region == nil {
			return
		}
		r.op.GeoM.Reset()
		r.op.GeoM.Translate(float64(origin.X+el.X), float64(origin.Y+el.Y))
		view.DrawImage(region, &r.op)
	}
}
