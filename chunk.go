package depot

import "encoding/binary"

const entityIDSize = 4

// Chunk is a fixed-capacity slab holding entities of one archetype in
// struct-of-arrays form: an entity id column followed by one column per component.
//
//	[ ids: capacity*4 ][ comp0: capacity*size0 ][ comp1: capacity*size1 ] ...
type Chunk struct {
	archetype *Archetype
	index     int
	capacity  int
	count     int
	data      []byte
}

func chunkBytes(a *Archetype, capacity int) int {
	return capacity * (entityIDSize + a.TotalSize())
}

func (c *Chunk) Len() int {
	return c.count
}

func (c *Chunk) Capacity() int {
	return c.capacity
}

func (c *Chunk) full() bool {
	return c.count >= c.capacity
}

// Index is the chunk's position in its archetype's chunk list.
func (c *Chunk) Index() int {
	return c.index
}

func (c *Chunk) entityAt(i int) Entity {
	return Entity(binary.NativeEndian.Uint32(c.data[i*entityIDSize:]))
}

func (c *Chunk) setEntity(i int, e Entity) {
	binary.NativeEndian.PutUint32(c.data[i*entityIDSize:], uint32(e))
}

// idColumn is the used part of the entity id column.
func (c *Chunk) idColumn() []byte {
	return c.data[:c.count*entityIDSize]
}

func (c *Chunk) columnBase(e *componentEntry) int {
	return entityIDSize*c.capacity + e.offset*c.capacity
}

// column is the used part of one component column.
func (c *Chunk) column(e *componentEntry) []byte {
	base := c.columnBase(e)
	return c.data[base : base+c.count*e.size]
}

func (c *Chunk) slot(e *componentEntry, i int) []byte {
	start := c.columnBase(e) + i*e.size
	return c.data[start : start+e.size : start+e.size]
}
