/*
Package archway provides an archetype-partitioned entity-component
database: entities grouped by their exact component set into dense,
column-oriented tables for cache-friendly iteration and O(1) insert/
remove.

Core Concepts:

  - EntityID: a unique handle for a row somewhere in the store.
  - Component: a data container, declared with NewComponentType[T] and
    identified by a namespaced name plus a process-unique type token.
  - ArchetypeTable: a dense table holding every entity sharing one exact
    component set.
  - EntityStore: the entity -> (table, row) index; creates/selects tables
    on schema change and relocates rows between them.
  - QueryIterator: walks every table matching a query, yielding rows.

Basic Usage:

	store := archway.NewStore()

	Position := archway.NewComponentType[Pos]("game", "position")
	Velocity := archway.NewComponentType[Vel]("game", "velocity")

	e, _ := store.New()
	archway.SetComponent(store, e, Position, Pos{X: 0, Y: 0})
	archway.SetComponent(store, e, Velocity, Vel{X: 1, Y: 0})

	it := store.Query(archway.All(Position, Velocity))
	for it.Next() {
		pos, _ := Position.Get(it.CurrentTable(), it.CurrentRow())
		vel, _ := Velocity.Get(it.CurrentTable(), it.CurrentRow())
		pos.X += vel.X
		pos.Y += vel.Y
		Position.Set(it.CurrentTable(), it.CurrentRow(), pos)
	}
*/
package archway
