package depot

import (
	"encoding/binary"
	"iter"
)

func newCursor(view *QueryView) *Cursor {
	return &Cursor{view: view}
}

// Next advances to the next entity of the view.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
		return c.advance()
	}
	if c.local+1 < c.remaining {
		c.local++
		c.index++
		return true
	}
	c.segment++
	c.local = 0
	return c.advance()
}

func (c *Cursor) advance() bool {
	segs := c.view.entities.segments
	for c.segment < len(segs) {
		c.remaining = segs[c.segment].length
		if c.remaining > 0 {
			c.index = segs[c.segment].start
			return true
		}
		c.segment++
	}
	c.Reset()
	return false
}

func (c *Cursor) initialize() {
	c.segment = 0
	c.local = 0
	c.index = 0
	c.remaining = 0
	c.initialized = true
}

// Entities yields the index and id of every entity in the view.
func (c *Cursor) Entities() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		for c.Next() {
			if !yield(c.index, c.Entity()) {
				c.Reset()
				return
			}
		}
	}
}

func (c *Cursor) Reset() {
	c.segment = 0
	c.local = 0
	c.index = 0
	c.remaining = 0
	c.initialized = false
}

// Entity is the entity at the cursor position.
// It is 0 before the first Next.
func (c *Cursor) Entity() Entity {
	segs := c.view.entities.segments
	if !c.initialized || c.segment >= len(segs) {
		return 0
	}
	seg := segs[c.segment]
	return Entity(binary.NativeEndian.Uint32(seg.element(c.local, entityIDSize)))
}

// Index is the cursor position within the whole view.
func (c *Cursor) Index() int {
	return c.index
}

// RemainingInSegment counts entities after the current one in the same chunk.
func (c *Cursor) RemainingInSegment() int {
	return c.remaining - c.local - 1
}

func (c *Cursor) TotalMatched() int {
	return c.view.Len()
}

// bytesFor returns the current entity's bytes in col, or nil when col is not part
// of the cursor's view.
func (c *Cursor) bytesFor(key TypeKey) []byte {
	col, ok := c.view.columns[key]
	if !ok || !c.initialized || c.segment >= len(col.segments) {
		return nil
	}
	return col.segments[c.segment].element(c.local, col.elemSize)
}
