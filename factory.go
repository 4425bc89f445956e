package depot

type factory struct{}

var Factory factory

func (f factory) NewStorage(opts Options) (Storage, error) {
	return newStorage(opts)
}

// NewArchetype returns an empty, unattached archetype to be filled with Register.
func (f factory) NewArchetype() *Archetype {
	return newArchetype()
}

func (f factory) NewQuery() Query {
	return newQuery()
}

func (f factory) NewCursor(view *QueryView) *Cursor {
	return newCursor(view)
}

func (f factory) NewSystemDriver(storage Storage) *SystemDriver {
	return newSystemDriver(storage)
}

// FactoryNewComponent describes T as a component whose default is T's zero value.
// It panics when T is not plain data.
func FactoryNewComponent[T any]() AccessibleComponent[T] {
	var zero T
	return FactoryNewComponentWithDefault(zero)
}

// FactoryNewComponentWithDefault is FactoryNewComponent with def as the value new
// entities start with.
func FactoryNewComponentWithDefault[T any](def T) AccessibleComponent[T] {
	c, err := newAccessibleComponent(def)
	if err != nil {
		panic(err)
	}
	return c
}

// FactoryTryNewComponent is FactoryNewComponent returning the validation error.
func FactoryTryNewComponent[T any]() (AccessibleComponent[T], error) {
	var zero T
	return newAccessibleComponent(zero)
}

func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}
