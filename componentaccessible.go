package depot

import (
	"reflect"
	"slices"
	"unsafe"
)

var _ Component = AccessibleComponent[struct{ X int }]{}

func newAccessibleComponent[T any](def T) (AccessibleComponent[T], error) {
	key := TypeKeyOf[T]()
	if err := ValidatePlainData(reflect.TypeFor[T]()); err != nil {
		return AccessibleComponent[T]{}, InvalidComponentError{Key: key, Reason: err.Error()}
	}
	return AccessibleComponent[T]{
		key:  key,
		size: int(unsafe.Sizeof(def)),
		def:  bytesOf(&def),
	}, nil
}

// bytesOf copies the raw bytes of *v.
func bytesOf[T any](v *T) []byte {
	b := unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
	return slices.Clone(b)
}

func (c AccessibleComponent[T]) Key() TypeKey {
	return c.key
}

func (c AccessibleComponent[T]) Size() int {
	return c.size
}

func (c AccessibleComponent[T]) DefaultBytes() []byte {
	return slices.Clone(c.def)
}

// Decode reinterprets b, which must be Size bytes long, as a T.
func (c AccessibleComponent[T]) Decode(b []byte) (T, error) {
	var v T
	if len(b) != c.size {
		return v, InvalidComponentError{Key: c.key, Reason: "byte length does not match component size"}
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&v)), c.size), b)
	return v, nil
}

func (c AccessibleComponent[T]) Encode(v T) []byte {
	return bytesOf(&v)
}

// GetFromEntity returns a pointer into the entity's chunk.
func (c AccessibleComponent[T]) GetFromEntity(sto Storage, e Entity) (*T, error) {
	b, err := sto.Slot(e, c.key)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(&b[0])), nil
}

func (c AccessibleComponent[T]) SetOnEntity(sto Storage, e Entity, v T) error {
	return sto.SetComponent(e, c.key, bytesOf(&v))
}

// GetFromCursor retrieves the component of the entity at the cursor position. It
// returns nil when the component is not part of the cursor's view.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	b := cursor.bytesFor(c.key)
	if b == nil {
		return nil
	}
	return (*T)(unsafe.Pointer(&b[0]))
}

// GetFromCursorSafe is GetFromCursor with an explicit found flag.
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	v := c.GetFromCursor(cursor)
	return v != nil, v
}

// Check determines whether the archetype holds this component.
func (c AccessibleComponent[T]) Check(a *Archetype) bool {
	return a.Contains(c.key)
}

func (c AccessibleComponent[T]) Array(view *QueryView) (Array[T], error) {
	return ArrayOf[T](view, c.key)
}
