package depot

import (
	"encoding/binary"
	"iter"
	"sort"
	"unsafe"
)

// QueryView is the per-call set of chunk ranges matching a list of TypeKeys. It
// aliases chunk memory: writes through it land in storage. A view is only valid
// until the next structural change of its storage.
type QueryView struct {
	keys     []TypeKey
	columns  map[TypeKey]*Column
	entities *EntityArray
}

func newQueryView(keys []TypeKey) *QueryView {
	view := &QueryView{
		columns:  make(map[TypeKey]*Column, len(keys)),
		entities: &EntityArray{Column{elemSize: entityIDSize}},
	}
	for _, key := range keys {
		if _, dup := view.columns[key]; dup {
			continue
		}
		view.keys = append(view.keys, key)
		view.columns[key] = &Column{key: key}
	}
	return view
}

// Keys returns the requested keys, without duplicates, in request order.
func (v *QueryView) Keys() []TypeKey {
	return v.keys
}

func (v *QueryView) Column(key TypeKey) (*Column, error) {
	col, ok := v.columns[key]
	if !ok {
		return nil, ComponentNotFoundError{Key: key}
	}
	return col, nil
}

func (v *QueryView) Entities() *EntityArray {
	return v.entities
}

// Len is the number of matched entities.
func (v *QueryView) Len() int {
	return v.entities.total
}

// Segments is the number of chunks the view spans.
func (v *QueryView) Segments() int {
	return len(v.entities.segments)
}

type segment struct {
	data   []byte
	start  int
	length int
}

// Column is a virtual array over one component's columns in many chunks.
type Column struct {
	key      TypeKey
	elemSize int
	segments []segment
	total    int
}

func (c *Column) appendSegment(data []byte, count int) {
	if count > 0 && c.elemSize == 0 {
		c.elemSize = len(data) / count
	}
	c.segments = append(c.segments, segment{data: data, start: c.total, length: count})
	c.total += count
}

func (c *Column) Key() TypeKey {
	return c.key
}

func (c *Column) Len() int {
	return c.total
}

func (c *Column) ElemSize() int {
	return c.elemSize
}

// locate finds the segment owning global index i by binary search over segment
// start indices.
func (c *Column) locate(i int) (int, int, error) {
	if i < 0 || i >= c.total {
		return 0, 0, IndexOutOfRangeError{Index: i, Length: c.total}
	}
	s := sort.Search(len(c.segments), func(j int) bool {
		return c.segments[j].start+c.segments[j].length > i
	})
	return s, i - c.segments[s].start, nil
}

// Index returns the bytes of element i, aliasing chunk memory.
func (c *Column) Index(i int) ([]byte, error) {
	s, local, err := c.locate(i)
	if err != nil {
		return nil, err
	}
	return c.segments[s].element(local, c.elemSize), nil
}

// Segments yields each chunk's contiguous bytes with the global index of its first
// element. Segments never overlap, so each may be processed independently.
func (c *Column) Segments() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for _, seg := range c.segments {
			if !yield(seg.start, seg.data) {
				return
			}
		}
	}
}

func (s segment) element(local, size int) []byte {
	start := local * size
	return s.data[start : start+size : start+size]
}

// EntityArray is the entity id column of a view.
type EntityArray struct {
	Column
}

func (ea *EntityArray) At(i int) (Entity, error) {
	b, err := ea.Index(i)
	if err != nil {
		return 0, err
	}
	return Entity(binary.NativeEndian.Uint32(b)), nil
}

func (ea *EntityArray) All() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		for _, seg := range ea.segments {
			for j := range seg.length {
				en := Entity(binary.NativeEndian.Uint32(seg.element(j, entityIDSize)))
				if !yield(seg.start+j, en) {
					return
				}
			}
		}
	}
}

// Array is a typed view over a Column.
type Array[T any] struct {
	col *Column
}

// ArrayOf returns the typed array for key. T's size must equal the registered size.
func ArrayOf[T any](view *QueryView, key TypeKey) (Array[T], error) {
	col, err := view.Column(key)
	if err != nil {
		return Array[T]{}, err
	}
	var zero T
	if size := int(unsafe.Sizeof(zero)); col.elemSize != 0 && col.elemSize != size {
		return Array[T]{}, InvalidComponentError{Key: key, Reason: "type size does not match column"}
	}
	return Array[T]{col: col}, nil
}

func (a Array[T]) Len() int {
	return a.col.total
}

// Get returns a pointer into chunk memory. It panics when i is out of range.
func (a Array[T]) Get(i int) *T {
	b, err := a.col.Index(i)
	if err != nil {
		panic(err)
	}
	return (*T)(unsafe.Pointer(&b[0]))
}

func (a Array[T]) At(i int) (*T, error) {
	b, err := a.col.Index(i)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(&b[0])), nil
}

// Segments yields each chunk's elements as a slice sharing chunk memory.
func (a Array[T]) Segments() iter.Seq2[int, []T] {
	return func(yield func(int, []T) bool) {
		for _, seg := range a.col.segments {
			if seg.length == 0 {
				continue
			}
			s := unsafe.Slice((*T)(unsafe.Pointer(&seg.data[0])), seg.length)
			if !yield(seg.start, s) {
				return
			}
		}
	}
}

func (a Array[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for start, items := range a.Segments() {
			for j := range items {
				if !yield(start+j, &items[j]) {
					return
				}
			}
		}
	}
}
