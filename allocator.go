package archway

// Allocator is the named-at-the-interface collaborator for column buffer
// growth (SPEC_FULL.md section 1: "a memory allocator" is explicitly out
// of scope beyond this boundary). ArchetypeTable never calls make([]byte,
// n) directly — it always goes through the store's configured Allocator,
// so host applications can swap in an arena, a pool, or — for testing —
// something that fails on command.
type Allocator interface {
	// Alloc returns a zeroed byte slice of exactly n bytes, or an error if
	// the allocation cannot be satisfied.
	Alloc(n int) ([]byte, error)
}

// StandardAllocator is the default Allocator, a thin wrapper over make.
// It never fails.
type StandardAllocator struct{}

// Alloc implements Allocator.
func (StandardAllocator) Alloc(n int) ([]byte, error) {
	return make([]byte, n), nil
}

// defaultAllocator is used whenever a store is constructed without an
// explicit Allocator.
var defaultAllocator Allocator = StandardAllocator{}
