package depot

import (
	"bytes"
	"slices"
)

type archetypeID uint32

type componentEntry struct {
	key    TypeKey
	offset int
	size   int
	def    []byte
}

// Archetype is the layout shared by every entity with the same component set.
//
// Entries are always kept in ascending TypeKey order, so the order of Register calls
// never changes offsets or the composite key. An archetype becomes immutable once it
// is attached to a storage, which happens at the latest when its first entity is
// created.
type Archetype struct {
	id        archetypeID
	owner     *storage
	entries   []componentEntry
	totalSize int
	key       TypeKey
	frozen    bool
}

func newArchetype() *Archetype {
	return &Archetype{}
}

// Register adds a component of the given byte size. A nil def means all-zero bytes.
func (a *Archetype) Register(key TypeKey, size int, def []byte) error {
	if a.frozen {
		return LayoutFrozenError{Archetype: a.key, Key: key}
	}
	if size <= 0 {
		return InvalidComponentError{Key: key, Reason: "size must be positive"}
	}
	if def == nil {
		def = make([]byte, size)
	}
	if len(def) != size {
		return InvalidComponentError{Key: key, Reason: "default value does not match size"}
	}
	pos, found := a.search(key)
	if found {
		return DuplicateComponentError{Key: key}
	}
	entry := componentEntry{
		key:  key,
		size: size,
		def:  slices.Clone(def),
	}
	a.entries = slices.Insert(a.entries, pos, entry)
	a.relayout()
	return nil
}

// relayout recomputes offsets, total size and the composite key in key order.
func (a *Archetype) relayout() {
	offset := 0
	keys := make([]TypeKey, len(a.entries))
	for i := range a.entries {
		a.entries[i].offset = offset
		offset += a.entries[i].size
		keys[i] = a.entries[i].key
	}
	a.totalSize = offset
	a.key = Concat(keys...)
}

func (a *Archetype) search(key TypeKey) (int, bool) {
	return slices.BinarySearchFunc(a.entries, key, func(e componentEntry, k TypeKey) int {
		return Compare(e.key, k)
	})
}

func (a *Archetype) entry(key TypeKey) (*componentEntry, error) {
	i, found := a.search(key)
	if !found {
		return nil, ComponentNotFoundError{Key: key}
	}
	return &a.entries[i], nil
}

// Offset is the component's byte offset within one packed row of the archetype.
func (a *Archetype) Offset(key TypeKey) (int, error) {
	e, err := a.entry(key)
	if err != nil {
		return 0, err
	}
	return e.offset, nil
}

func (a *Archetype) Size(key TypeKey) (int, error) {
	e, err := a.entry(key)
	if err != nil {
		return 0, err
	}
	return e.size, nil
}

// Default returns a copy of the component's default bytes.
func (a *Archetype) Default(key TypeKey) ([]byte, error) {
	e, err := a.entry(key)
	if err != nil {
		return nil, err
	}
	return slices.Clone(e.def), nil
}

func (a *Archetype) Contains(key TypeKey) bool {
	_, found := a.search(key)
	return found
}

// Freeze rejects any further Register call. Calling it again has no effect.
func (a *Archetype) Freeze() {
	a.frozen = true
}

func (a *Archetype) Frozen() bool {
	return a.frozen
}

// Key is the concatenation of the member keys in canonical order.
func (a *Archetype) Key() TypeKey {
	return a.key
}

func (a *Archetype) Components() []TypeKey {
	keys := make([]TypeKey, len(a.entries))
	for i, e := range a.entries {
		keys[i] = e.key
	}
	return keys
}

func (a *Archetype) Len() int {
	return len(a.entries)
}

// TotalSize is the byte size of one entity's components, excluding its id.
func (a *Archetype) TotalSize() int {
	return a.totalSize
}

// ID is the archetype's index in its storage, starting at 1. It is 0 until the
// archetype is attached.
func (a *Archetype) ID() uint32 {
	return uint32(a.id)
}

// sameLayout compares member keys and sizes element-wise.
func (a *Archetype) sameLayout(other *Archetype) bool {
	if len(a.entries) != len(other.entries) {
		return false
	}
	for i := range a.entries {
		if !a.entries[i].key.Equal(other.entries[i].key) || a.entries[i].size != other.entries[i].size {
			return false
		}
	}
	return true
}

// sameDefaults reports whether both archetypes carry identical default bytes. It
// assumes sameLayout already holds.
func (a *Archetype) sameDefaults(other *Archetype) bool {
	for i := range a.entries {
		if !bytes.Equal(a.entries[i].def, other.entries[i].def) {
			return false
		}
	}
	return true
}

func (a *Archetype) clone() *Archetype {
	c := &Archetype{
		entries:   make([]componentEntry, len(a.entries)),
		totalSize: a.totalSize,
		key:       a.key,
	}
	for i, e := range a.entries {
		e.def = slices.Clone(e.def)
		c.entries[i] = e
	}
	return c
}
