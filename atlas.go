package blitcast

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/webp"
)

// SpriteAtlas wraps the single sprite-sheet image of one animation. It starts
// unloaded; Load installs the decoded image once, after which the atlas is
// immutable. An atlas belongs to exactly one Controller.
type SpriteAtlas struct {
	// Source identifies where the image came from (for logs).
	Source string

	img    image.Image
	bounds image.Rectangle
	gpu    *ebiten.Image // created on first on-screen draw
}

// NewSpriteAtlas creates an unloaded atlas.
func NewSpriteAtlas(source string) *SpriteAtlas {
	return &SpriteAtlas{Source: source}
}

// DecodeAtlas decodes a PNG, GIF, JPEG or WebP image into a loaded atlas.
func DecodeAtlas(source string, r io.Reader) (*SpriteAtlas, error) {
	img, err := decodeImage(source, r)
	if err != nil {
		return nil, err
	}
	a := NewSpriteAtlas(source)
	if err := a.Load(img); err != nil {
		return nil, err
	}
	return a, nil
}

func decodeImage(source string, r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrAtlasLoad, source, err)
	}
	return img, nil
}

// Load installs the decoded image. It fails if the atlas is already loaded.
func (a *SpriteAtlas) Load(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: %s: nil image", ErrAtlasLoad, a.Source)
	}
	if a.img != nil {
		return fmt.Errorf("%w: %s: already loaded", ErrAtlasLoad, a.Source)
	}
	a.img = img
	a.bounds = img.Bounds()
	return nil
}

// Loaded reports whether Load has completed.
func (a *SpriteAtlas) Loaded() bool {
	return a.img != nil
}

// Image returns the underlying image, or nil before Load.
func (a *SpriteAtlas) Image() image.Image {
	return a.img
}

// NaturalWidth returns the image width in pixels.
func (a *SpriteAtlas) NaturalWidth() int {
	return a.bounds.Dx()
}

// NaturalHeight returns the image height in pixels.
func (a *SpriteAtlas) NaturalHeight() int {
	return a.bounds.Dy()
}

// srcPoint maps atlas coordinates to image coordinates. Decoded images
// normally start at (0, 0) but sub-images need not.
func (a *SpriteAtlas) srcPoint(op BlitOp) image.Point {
	return a.bounds.Min.Add(image.Pt(op.SrcX, op.SrcY))
}

// Region returns the pixels a blit copies from.
func (a *SpriteAtlas) Region(op BlitOp) image.Image {
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	r := op.SrcRect().Add(a.bounds.Min)
	if si, ok := a.img.(subImager); ok {
		return si.SubImage(r)
	}
	return a.img
}

// Contains reports whether the rectangle, in atlas coordinates, lies inside
// the image.
func (a *SpriteAtlas) Contains(r image.Rectangle) bool {
	return r.Add(a.bounds.Min).In(a.bounds)
}

// Validate checks every blit of the timeline against the atlas bounds. It is
// called once, when the atlas finishes loading.
func (a *SpriteAtlas) Validate(tl *Timeline) error {
	if !a.Loaded() {
		return fmt.Errorf("%w: %s: not loaded", ErrAtlasLoad, a.Source)
	}
	var errs []error
	for i, f := range tl.Frames {
		for j, op := range f.Blits {
			if op.Width == 0 || op.Height == 0 {
				continue
			}
			if !a.Contains(op.SrcRect()) {
				errs = append(errs, fmt.Errorf("%w: frame %d blit %d: %v not in %dx%d",
					ErrAtlasBounds, i, j, op.SrcRect(), a.NaturalWidth(), a.NaturalHeight()))
			}
		}
	}
	return errors.Join(errs...)
}

// ebitenImage mirrors the atlas into GPU memory for on-screen drawing.
func (a *SpriteAtlas) ebitenImage() *ebiten.Image {
	if a.gpu == nil && a.img != nil {
		a.gpu = ebiten.NewImageFromImage(a.img)
	}
	return a.gpu
}

// ebitenRegion returns the GPU sub-image a blit copies from.
func (a *SpriteAtlas) ebitenRegion(op BlitOp) *ebiten.Image {
	img := a.ebitenImage()
	if img == nil {
		return nil
	}
	// NewImageFromImage rebases the image to (0, 0).
	return img.SubImage(op.SrcRect()).(*ebiten.Image)
}
