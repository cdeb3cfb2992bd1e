package archway

// StoreEvents is the named-at-the-interface collaborator for change
// notification (SPEC_FULL.md section 1 lists "event hooks" as out of
// scope beyond their interface). A store that isn't given one behaves as
// if every method were a no-op; nothing in this package requires a
// listener to function, and the hooks exist purely for visualisers and
// diagnostics built on top.
type StoreEvents interface {
	// OnTableCreated fires once, right after a new ArchetypeTable is
	// installed under its canonical hash.
	OnTableCreated(hash uint64, columns []string)
	// OnRelocated fires whenever a live entity's row moves between tables
	// (a schema transition), after the index has been updated to reflect
	// the move.
	OnRelocated(e EntityID, from, to TableIndex)
}

// NoopEvents is the default StoreEvents: every method is a no-op.
type NoopEvents struct{}

// OnTableCreated implements StoreEvents.
func (NoopEvents) OnTableCreated(hash uint64, columns []string) {}

// OnRelocated implements StoreEvents.
func (NoopEvents) OnRelocated(e EntityID, from, to TableIndex) {}

// Config holds process-wide defaults for newly constructed stores, mirroring
// the teacher's global Config pattern for cross-cutting, rarely-changed
// settings.
var Config = config{
	events:    NoopEvents{},
	allocator: defaultAllocator,
}

type config struct {
	events    StoreEvents
	allocator Allocator
}

// SetEvents configures the default StoreEvents used by NewStore when no
// explicit StoreOption overrides it.
func (c *config) SetEvents(e StoreEvents) {
	c.events = e
}

// SetAllocator configures the default Allocator used by NewStore when no
// explicit StoreOption overrides it.
func (c *config) SetAllocator(a Allocator) {
	c.allocator = a
}
