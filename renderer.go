package blitcast

import (
	"fmt"
	"image/draw"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// BlitRenderer composites blits from a SpriteAtlas onto a viewport-sized
// surface. Implementations are chosen once by SelectRenderer and never
// swapped at runtime.
type BlitRenderer interface {
	// Clear removes all painted content, restoring a blank viewport.
	Clear()
	// DrawBlits paints each op in list order at 1:1 scale.
	DrawBlits(ops []BlitOp)
	// Painted returns the number of blits painted since the last Clear.
	Painted() int
	// Composite paints the visible surface onto dst at the origin.
	Composite(dst draw.Image)
	// Draw paints the visible surface onto an on-screen image.
	Draw(screen *ebiten.Image)
}

// RendererKind selects a BlitRenderer implementation.
type RendererKind uint8

const (
	RendererAuto  RendererKind = iota // pixel buffer when available, else node pool
	RendererPixel                     // force PixelRenderer when available
	RendererNode                      // force NodeRenderer
)

// String returns the manifest spelling of the kind.
func (k RendererKind) String() string {
	switch k {
	case RendererPixel:
		return "pixel"
	case RendererNode:
		return "node"
	default:
		return "auto"
	}
}

// ParseRendererKind parses "auto", "pixel" or "node". The empty string is
// RendererAuto.
func ParseRendererKind(s string) (RendererKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return RendererAuto, nil
	case "pixel", "canvas":
		return RendererPixel, nil
	case "node", "dom":
		return RendererNode, nil
	}
	return RendererAuto, fmt.Errorf("blitcast: unknown renderer %q", s)
}

// Surface limits for the pixel buffer renderer.
const (
	MaxSurfaceDim  = 16384
	MaxSurfaceArea = 1 << 26
)

// Capabilities describes which renderers can serve a viewport.
type Capabilities struct {
	PixelBuffer bool
}

// DetectCapabilities reports whether a w×h pixel buffer can be allocated
// within the surface limits. The node renderer has no prerequisite.
func DetectCapabilities(w, h int) Capabilities {
	ok := w > 0 && h > 0 &&
		w <= MaxSurfaceDim && h <= MaxSurfaceDim &&
		w*h <= MaxSurfaceArea
	return Capabilities{PixelBuffer: ok}
}

// SelectRenderer constructs the renderer for a w×h viewport. Selection never
// fails: when the pixel buffer is unavailable or not wanted, the node pool
// renderer is used.
func SelectRenderer(kind RendererKind, atlas *SpriteAtlas, w, h int) BlitRenderer {
	caps := DetectCapabilities(w, h)
	if kind != RendererNode && caps.PixelBuffer {
		return NewPixelRenderer(atlas, w, h)
	}
	return NewNodeRenderer(atlas, w, h)
}
