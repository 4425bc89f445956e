package depot

import (
	"fmt"
	"iter"
	"math"

	"github.com/TheBitDrifter/mask"
	iter_util "github.com/TheBitDrifter/util/iter"
	"go.uber.org/zap"
)

var _ Storage = &storage{}

type storage struct {
	locked     bool
	opts       Options
	arena      *arena
	components Cache[componentInfo]
	archetypes *archetypes
	opQueue    opQueue
	entities   []entityRecord
}

type archetypes struct {
	nextID           archetypeID
	asSlice          []*archetypeStore
	idsGroupedByMask map[mask.Mask]archetypeID
}

type componentInfo struct {
	key  TypeKey
	size int
}

// entityRecord locates an entity without scanning chunk id columns.
type entityRecord struct {
	store *archetypeStore
	chunk *Chunk
	index int
}

func newStorage(opts Options) (*storage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	archetypes := &archetypes{
		nextID:           1,
		idsGroupedByMask: make(map[mask.Mask]archetypeID),
	}
	sto := &storage{
		opts:       opts,
		arena:      newArena(opts.ArenaSize),
		components: FactoryNewCache[componentInfo](MaxComponentTypes),
		archetypes: archetypes,
		opQueue:    newOpQueue(),
	}
	return sto, nil
}

// registerComponent returns the signature bit for key, assigning one on first use.
// A key keeps the size it was first registered with.
func (sto *storage) registerComponent(key TypeKey, size int) (uint32, error) {
	if idx, ok := sto.components.GetIndex(string(key)); ok {
		info := sto.components.GetItem(idx)
		if info.size != size {
			return 0, InvalidComponentError{
				Key:    key,
				Reason: fmt.Sprintf("registered with size %d, got %d", info.size, size),
			}
		}
		return uint32(idx), nil
	}
	idx, err := sto.components.Register(string(key), componentInfo{key: key, size: size})
	if err != nil {
		return 0, CapacityExhaustedError{
			Resource:  "component registry",
			Requested: 1,
			Available: 0,
		}
	}
	return uint32(idx), nil
}

// signatureFor checks every member against the registry before assigning bits to
// new keys, so a rejected archetype leaves the registry untouched.
func (sto *storage) signatureFor(a *Archetype) (mask.Mask, error) {
	fresh := 0
	for _, e := range a.entries {
		idx, ok := sto.components.GetIndex(string(e.key))
		if !ok {
			fresh++
			continue
		}
		if info := sto.components.GetItem(idx); info.size != e.size {
			return mask.Mask{}, InvalidComponentError{
				Key:    e.key,
				Reason: fmt.Sprintf("registered with size %d, got %d", info.size, e.size),
			}
		}
	}
	if available := MaxComponentTypes - sto.components.Len(); fresh > available {
		return mask.Mask{}, CapacityExhaustedError{
			Resource:  "component registry",
			Requested: fresh,
			Available: available,
		}
	}

	var sig mask.Mask
	for _, e := range a.entries {
		bit, err := sto.registerComponent(e.key, e.size)
		if err != nil {
			return mask.Mask{}, err
		}
		sig.Mark(bit)
	}
	return sig, nil
}

func (sto *storage) NewOrExistingArchetype(components ...Component) (*Archetype, error) {
	a := newArchetype()
	for _, c := range components {
		if err := a.Register(c.Key(), c.Size(), c.DefaultBytes()); err != nil {
			return nil, err
		}
	}
	return sto.AttachArchetype(a)
}

// AttachArchetype freezes a and returns the storage's archetype for a's component
// set. When the set is already known the existing archetype is returned and a
// becomes an alias of it.
func (sto *storage) AttachArchetype(a *Archetype) (*Archetype, error) {
	if a == nil {
		return nil, InvalidComponentError{Reason: "nil archetype"}
	}
	if a.owner == sto {
		return sto.archetypes.asSlice[a.id-1].archetype, nil
	}
	sig, err := sto.signatureFor(a)
	if err != nil {
		return nil, err
	}
	if id, found := sto.archetypes.idsGroupedByMask[sig]; found {
		existing := sto.archetypes.asSlice[id-1].archetype
		if !existing.sameLayout(a) {
			return nil, InvalidComponentError{Key: a.key, Reason: "layout does not match archetype with same component set"}
		}
		if !existing.sameDefaults(a) {
			return nil, InvalidComponentError{Key: a.key, Reason: "defaults differ from archetype with same component set"}
		}
		if a.owner == nil {
			a.Freeze()
			a.owner = sto
			a.id = id
		}
		return existing, nil
	}

	created := a
	if a.owner != nil {
		created = a.clone()
	}
	created.Freeze()
	created.owner = sto
	created.id = sto.archetypes.nextID

	sto.archetypes.asSlice = append(sto.archetypes.asSlice, &archetypeStore{
		archetype: created,
		signature: sig,
	})
	sto.archetypes.idsGroupedByMask[sig] = created.id
	sto.archetypes.nextID++

	Config.logger.Info("archetype created",
		zap.Uint32("id", created.ID()),
		zap.Int("components", created.Len()),
		zap.Int("row_size", created.TotalSize()),
	)
	return created, nil
}

func (sto *storage) storeFor(a *Archetype) (*archetypeStore, error) {
	if a == nil || a.owner != sto {
		attached, err := sto.AttachArchetype(a)
		if err != nil {
			return nil, err
		}
		a = attached
	}
	return sto.archetypes.asSlice[a.id-1], nil
}

func (sto *storage) Archetypes() []*Archetype {
	result := make([]*Archetype, len(sto.archetypes.asSlice))
	for i, as := range sto.archetypes.asSlice {
		result[i] = as.archetype
	}
	return result
}

func (sto *storage) ArchetypeOf(e Entity) (*Archetype, error) {
	rec, err := sto.record(e)
	if err != nil {
		return nil, err
	}
	return rec.store.archetype, nil
}

func (sto *storage) NewEntity(a *Archetype) (Entity, error) {
	if sto.locked {
		return 0, LockedStorageError{}
	}
	store, err := sto.storeFor(a)
	if err != nil {
		return 0, err
	}
	return sto.newEntityIn(store)
}

// NewEntities creates n entities. On failure the entities created so far are
// returned along with the error.
func (sto *storage) NewEntities(n int, a *Archetype) ([]Entity, error) {
	if sto.locked {
		return nil, LockedStorageError{}
	}
	store, err := sto.storeFor(a)
	if err != nil {
		return nil, err
	}
	entities := make([]Entity, 0, n)
	for range n {
		en, err := sto.newEntityIn(store)
		if err != nil {
			return entities, err
		}
		entities = append(entities, en)
	}
	return entities, nil
}

func (sto *storage) newEntityIn(store *archetypeStore) (Entity, error) {
	if len(sto.entities) >= math.MaxUint32-1 {
		return 0, CapacityExhaustedError{Resource: "entity table", Requested: 1, Available: 0}
	}
	chunk, err := store.chunkWithSpace(sto.arena, sto.opts.ChunkCapacity)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate chunk: %w", err)
	}
	en := Entity(len(sto.entities) + 1)
	idx := chunk.count
	chunk.setEntity(idx, en)
	for i := range store.archetype.entries {
		entry := &store.archetype.entries[i]
		copy(chunk.slot(entry, idx), entry.def)
	}
	chunk.count++
	store.length++
	sto.entities = append(sto.entities, entityRecord{
		store: store,
		chunk: chunk,
		index: idx,
	})
	return en, nil
}

func (sto *storage) record(e Entity) (*entityRecord, error) {
	if e == 0 || int(e) > len(sto.entities) {
		return nil, EntityNotFoundError{Entity: e}
	}
	return &sto.entities[e-1], nil
}

func (sto *storage) Slot(e Entity, key TypeKey) ([]byte, error) {
	rec, err := sto.record(e)
	if err != nil {
		return nil, err
	}
	entry, err := rec.store.archetype.entry(key)
	if err != nil {
		return nil, err
	}
	return rec.chunk.slot(entry, rec.index), nil
}

func (sto *storage) SetComponent(e Entity, key TypeKey, value []byte) error {
	slot, err := sto.Slot(e, key)
	if err != nil {
		return err
	}
	if len(value) != len(slot) {
		return InvalidComponentError{
			Key:    key,
			Reason: fmt.Sprintf("value is %d bytes, component is %d", len(value), len(slot)),
		}
	}
	copy(slot, value)
	return nil
}

// Component returns a copy of the entity's component bytes.
func (sto *storage) Component(e Entity, key TypeKey) ([]byte, error) {
	slot, err := sto.Slot(e, key)
	if err != nil {
		return nil, err
	}
	value := make([]byte, len(slot))
	copy(value, slot)
	return value, nil
}

func (sto *storage) HasComponent(e Entity, key TypeKey) (bool, error) {
	rec, err := sto.record(e)
	if err != nil {
		return false, err
	}
	return rec.store.archetype.Contains(key), nil
}

// EntitiesWith lists entities whose archetype contains key, in archetype then chunk
// order.
func (sto *storage) EntitiesWith(key TypeKey) []Entity {
	var result []Entity
	for _, store := range sto.archetypes.asSlice {
		if !store.archetype.Contains(key) {
			continue
		}
		for _, c := range store.chunks {
			for i := range c.count {
				result = append(result, c.entityAt(i))
			}
		}
	}
	return result
}

func (sto *storage) AllEntities() []Entity {
	return iter_util.Collect(sto.allEntities())
}

func (sto *storage) allEntities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for i := range sto.entities {
			if !yield(Entity(i + 1)) {
				return
			}
		}
	}
}

func (sto *storage) BuildQueryView(keys ...TypeKey) (*QueryView, error) {
	return sto.BuildFilteredView(nil, keys...)
}

// BuildFilteredView collects every archetype holding all of keys and, when filter is
// not nil, accepted by filter. It records chunk byte ranges only; nothing is copied.
func (sto *storage) BuildFilteredView(filter QueryNode, keys ...TypeKey) (*QueryView, error) {
	view := newQueryView(keys)

	var required mask.Mask
	for _, key := range keys {
		bit, ok := sto.RowIndexFor(key)
		if !ok {
			// No archetype can hold an unregistered key.
			return view, nil
		}
		required.Mark(bit)
	}

	for _, store := range sto.archetypes.asSlice {
		if !store.signature.ContainsAll(required) {
			continue
		}
		if filter != nil && !filter.Evaluate(store.archetype, sto) {
			continue
		}
		for _, c := range store.chunks {
			if c.count == 0 {
				continue
			}
			view.entities.appendSegment(c.idColumn(), c.count)
			for _, key := range view.keys {
				entry, err := store.archetype.entry(key)
				if err != nil {
					return nil, err
				}
				view.columns[key].appendSegment(c.column(entry), c.count)
			}
		}
	}
	return view, nil
}

func (sto *storage) Registered(key TypeKey) bool {
	_, ok := sto.components.GetIndex(string(key))
	return ok
}

func (sto *storage) RowIndexFor(key TypeKey) (uint32, bool) {
	idx, ok := sto.components.GetIndex(string(key))
	if !ok {
		return 0, false
	}
	return uint32(idx), true
}

// Signature returns the component mask of a. Keys unknown to this storage are left
// out.
func (sto *storage) Signature(a *Archetype) mask.Mask {
	if a.owner == sto {
		return sto.archetypes.asSlice[a.id-1].signature
	}
	var sig mask.Mask
	for _, e := range a.entries {
		if bit, ok := sto.RowIndexFor(e.key); ok {
			sig.Mark(bit)
		}
	}
	return sig
}

func (sto *storage) Stats() Stats {
	stats := Stats{
		Archetypes: len(sto.archetypes.asSlice),
		Entities:   len(sto.entities),
		ArenaUsed:  sto.arena.cursor,
		ArenaSize:  sto.arena.size(),
	}
	for _, store := range sto.archetypes.asSlice {
		stats.Chunks += len(store.chunks)
	}
	return stats
}

func (sto *storage) Locked() bool {
	return sto.locked
}

func (sto *storage) Lock() {
	sto.locked = true
}

// Unlock applies every operation queued while the storage was locked.
func (sto *storage) Unlock() error {
	sto.locked = false
	return sto.processOperationQueue()
}

func (sto *storage) EnqueueNewEntities(n int, a *Archetype) error {
	if !sto.locked {
		_, err := sto.NewEntities(n, a)
		if err != nil {
			return fmt.Errorf("failed to create entities directly: %w", err)
		}
		return nil
	}
	sto.opQueue.enqueueOp(operation{
		typ:       opCreate,
		amount:    n,
		archetype: a,
	})
	return nil
}
