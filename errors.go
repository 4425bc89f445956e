package depot

import "fmt"

type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "storage is currently locked"
}

// LayoutFrozenError is returned when registering a component on an archetype that
// already has entities.
type LayoutFrozenError struct {
	Archetype TypeKey
	Key       TypeKey
}

func (e LayoutFrozenError) Error() string {
	return fmt.Sprintf("archetype %q is frozen, cannot register %q", e.Archetype, e.Key)
}

type DuplicateComponentError struct {
	Key TypeKey
}

func (e DuplicateComponentError) Error() string {
	return fmt.Sprintf("component already registered on archetype: %q", e.Key)
}

type ComponentNotFoundError struct {
	Key TypeKey
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist: %q", e.Key)
}

type EntityNotFoundError struct {
	Entity Entity
}

func (e EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %d does not exist", e.Entity)
}

// CapacityExhaustedError reports that a fixed-size resource (the arena, the
// component registry) has no room left.
type CapacityExhaustedError struct {
	Resource  string
	Requested int
	Available int
}

func (e CapacityExhaustedError) Error() string {
	return fmt.Sprintf("%s exhausted: requested %d, available %d", e.Resource, e.Requested, e.Available)
}

// InvalidComponentError reports a component that cannot be stored as raw bytes,
// or bytes that do not match a component's registered size.
type InvalidComponentError struct {
	Key    TypeKey
	Reason string
}

func (e InvalidComponentError) Error() string {
	return fmt.Sprintf("invalid component %q: %s", e.Key, e.Reason)
}

type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Length)
}
