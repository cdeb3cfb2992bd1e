package archway

// This file collects the package's public surface in one place, the way
// the teacher's api.go does, now that the concrete types backing it
// (EntityStore, ArchetypeTable, QueryIterator, ComponentType) live in
// their own files rather than behind interfaces over an external storage
// engine.
//
// Store is the entity/component database (table.go + store.go).
// Query construction: All / Any / Not (query.go).
// Components are declared with NewComponentType[T] (component.go).

// Store is an alias for EntityStore, named to match the teacher's
// top-level Storage naming without resurrecting its table.Entry-backed
// interface (this package owns its storage engine outright, so the
// interface indirection the teacher needed to swap engines no longer
// serves a purpose).
type Store = EntityStore
