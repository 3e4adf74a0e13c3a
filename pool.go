package blitcast

// elementPool owns the blit elements of one NodeRenderer. Elements move
// between a free stack and an in-use list; after the first loop reaches its
// peak blit count, acquire never allocates again.
type elementPool struct {
	atlas   *SpriteAtlas
	free    []*Node
	inUse   []*Node
	created int
}

// acquire pops a free element or constructs a new one, and marks it in use.
func (p *elementPool) acquire() *Node {
	var el *Node
	if n := len(p.free); n > 0 {
		el = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		el = newElement(p.atlas)
		p.created++
		debugf("%s: element pool grew to %d", p.atlas.Source, p.created)
	}
	p.inUse = append(p.inUse, el)
	return el
}

// reclaim returns every in-use element to the free stack. Elements already
// free stay free, so nothing constructed is ever dropped.
func (p *elementPool) reclaim() {
	p.free = append(p.free, p.inUse...)
	clear(p.inUse)
	p.inUse = p.inUse[:0]
}
