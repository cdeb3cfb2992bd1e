package archway

// EntityID is an opaque handle to a record stored in an EntityStore. IDs
// are allocated from a per-store monotonic counter and are never reused
// within the store's lifetime (spec invariant 5), so a stale ID is always
// reliably distinguishable from a live one rather than silently aliasing a
// different record.
type EntityID uint64

// idComponentName is the reserved column name for the EntityID column that
// every ArchetypeTable carries (invariant I1).
const idComponentName = "id"

// TableIndex addresses a table's position within an EntityStore's ordered
// table list. It stays valid for the duration of any Pointer that names it
// (see the table_index stability rule in SPEC_FULL.md section 4.2).
type TableIndex uint32

// RowIndex addresses a row within a single ArchetypeTable.
type RowIndex uint32

// Pointer locates an entity's row: which table, and which row within it.
// Holding one across a mutation that isn't a pure update-in-place is
// unsafe — see EntityStore's docs on relocation.
type Pointer struct {
	Table TableIndex
	Row   RowIndex
}

// voidTableIndex is the table_index of the distinguished void archetype
// (only the id column), present for the entire lifetime of a store.
const voidTableIndex TableIndex = 0
