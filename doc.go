/*
Package depot provides a columnar Entity-Component store.

Entities with the same set of components share an archetype. Each archetype keeps its
entities in fixed-capacity chunks carved from one pre-reserved arena; inside a chunk
every component lives in its own contiguous column. Query views stitch the columns of
many chunks into one indexable sequence without copying.

Core Concepts:

  - TypeKey: An ordered identity for a component type.
  - Component: A fixed-size, reference-free record attached to an entity.
  - Archetype: The frozen component layout shared by a group of entities.
  - QueryView: The chunk ranges holding a set of components for one tick.
  - SystemDriver: Runs systems over their views once per frame.

Basic Usage:

	storage, _ := depot.Factory.NewStorage(depot.DefaultOptions())

	position := depot.FactoryNewComponent[Position]()
	velocity := depot.FactoryNewComponent[Velocity]()

	archetype, _ := storage.NewOrExistingArchetype(position, velocity)
	storage.NewEntities(100, archetype)

	view, _ := storage.BuildQueryView(position.Key(), velocity.Key())
	cursor := depot.Factory.NewCursor(view)

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

A storage is not safe for concurrent use. Views must not outlive the tick they were
built for.
*/
package depot
