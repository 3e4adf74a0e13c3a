package blitcast

import (
	"image"
	"sync/atomic"
)

// nodeIDCounter is shared by every renderer, whichever scheduler drives it.
var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// Node is a positioned rectangle on a surface. A surface node is a
// container; its children are blit elements whose visible content is a crop
// window into the shared atlas image.
type Node struct {
	ID   uint32
	Name string

	Parent   *Node
	children []*Node

	// Placement in parent (viewport) space.
	X, Y          int
	Width, Height int

	// Crop offset into Atlas: the element shows
	// Atlas[CropX:CropX+Width, CropY:CropY+Height].
	CropX, CropY int
	Atlas        *SpriteAtlas
}

// NewSurface creates a container node of the given viewport size.
func NewSurface(name string, w, h int) *Node {
	return &Node{ID: nextNodeID(), Name: name, Width: w, Height: h}
}

// newElement creates a blit element that crops into atlas.
func newElement(atlas *SpriteAtlas) *Node {
	return &Node{ID: nextNodeID(), Name: "blit", Atlas: atlas}
}

// place positions, sizes and crops the element for op.
func (n *Node) place(op BlitOp) {
	n.X, n.Y = op.DstX, op.DstY
	n.Width, n.Height = op.Width, op.Height
	n.CropX, n.CropY = op.SrcX, op.SrcY
}

// Bounds returns the node's rectangle in parent space.
func (n *Node) Bounds() image.Rectangle {
	return image.Rect(n.X, n.Y, n.X+n.Width, n.Y+n.Height)
}

// crop returns the blit this element currently represents.
func (n *Node) crop() BlitOp {
	return BlitOp{SrcX: n.CropX, SrcY: n.CropY, Width: n.Width, Height: n.Height, DstX: n.X, DstY: n.Y}
}

// attach appends child to the surface. Later children paint over earlier
// ones.
func (n *Node) attach(child *Node) {
	child.Parent = n
	n.children = append(n.children, child)
	if globalDebug {
		debugCheckChildCount(n)
	}
}

// RemoveChildren detaches every element. The elements keep their placement
// so the pool can hand them out again.
func (n *Node) RemoveChildren() {
	for i, child := range n.children {
		child.Parent = nil
		n.children[i] = nil
	}
	n.children = n.children[:0]
}

// Children returns the attached elements in paint order. Callers must not
// modify the slice.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}
