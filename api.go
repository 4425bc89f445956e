package depot

import (
	"time"

	"github.com/TheBitDrifter/mask"
)

type Storage interface {
	NewOrExistingArchetype(...Component) (*Archetype, error)
	AttachArchetype(*Archetype) (*Archetype, error)
	Archetypes() []*Archetype
	ArchetypeOf(Entity) (*Archetype, error)

	NewEntity(*Archetype) (Entity, error)
	NewEntities(int, *Archetype) ([]Entity, error)
	EnqueueNewEntities(int, *Archetype) error

	SetComponent(Entity, TypeKey, []byte) error
	Component(Entity, TypeKey) ([]byte, error)
	Slot(Entity, TypeKey) ([]byte, error)
	HasComponent(Entity, TypeKey) (bool, error)

	EntitiesWith(TypeKey) []Entity
	AllEntities() []Entity

	BuildQueryView(...TypeKey) (*QueryView, error)
	BuildFilteredView(QueryNode, ...TypeKey) (*QueryView, error)

	Registered(TypeKey) bool
	RowIndexFor(TypeKey) (uint32, bool)
	Signature(*Archetype) mask.Mask
	Stats() Stats

	Locked() bool
	Lock()
	Unlock() error
}

// Entity is a 1-based id. The zero Entity never refers to a stored entity.
type Entity uint32

// Component is anything that can describe itself as a fixed-size byte record.
type Component interface {
	Key() TypeKey
	Size() int
	DefaultBytes() []byte
}

type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

type QueryNode interface {
	Evaluate(archetype *Archetype, storage Storage) bool
}

// System consumes one query view per tick.
//
// DeclareRequirements is called once when the system is bound. Bind receives the
// freshly built view before Process and nil after it; the view must not be kept
// beyond that.
type System interface {
	DeclareRequirements() Requirements
	Bind(view *QueryView)
	Process(dt time.Duration) error
}

type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
	Len() int
}

type Stats struct {
	Archetypes int
	Chunks     int
	Entities   int
	ArenaUsed  int
	ArenaSize  int
}

// Cursor walks a query view entity by entity, chunk segment by chunk segment.
type Cursor struct {
	view *QueryView

	// Current iteration state
	segment   int
	local     int
	index     int
	remaining int

	initialized bool
}

// AccessibleComponent is a typed component backed by plain data.
type AccessibleComponent[T any] struct {
	key  TypeKey
	size int
	def  []byte
}

type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}
