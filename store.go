package archway

import (
	"sync"
	"unsafe"

	"github.com/TheBitDrifter/mask"
)

// idDescriptor is the reserved id column every table carries (invariant
// I1): always token 0, so it sorts first under "order by type token
// ascending" no matter what else is in the table.
var idDescriptor = ComponentDescriptor{
	Name:  idComponentName,
	Token: idToken,
	Size:  unsafe.Sizeof(EntityID(0)),
	Align: unsafe.Alignof(EntityID(0)),
}

// bitRegistry assigns a stable bit position to each component name on
// first sight, purely to let QueryIterator test containment with a
// mask.Mask instead of a string-set scan per table per query — an
// optimization layered on top of the hash-keyed identity map, not a
// replacement for it (SPEC_FULL.md section 2).
type bitRegistry struct {
	mu     sync.Mutex
	next   uint32
	byName map[string]uint32
}

func newBitRegistry() *bitRegistry {
	return &bitRegistry{byName: make(map[string]uint32)}
}

func (r *bitRegistry) bitFor(name string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.byName[name]; ok {
		return b
	}
	b := r.next
	r.next++
	r.byName[name] = b
	return b
}

// StoreOption configures a newly constructed EntityStore.
type StoreOption func(*EntityStore)

// WithAllocator overrides the store's Allocator (default StandardAllocator).
func WithAllocator(a Allocator) StoreOption {
	return func(s *EntityStore) { s.alloc = a }
}

// WithEvents overrides the store's StoreEvents (default NoopEvents).
func WithEvents(e StoreEvents) StoreOption {
	return func(s *EntityStore) { s.events = e }
}

// EntityStore is the database of ArchetypeTables: it owns the
// entity -> (table, row) index, creates/selects tables on schema change,
// and relocates row payloads between tables atomically from the caller's
// perspective (SPEC_FULL.md section 4.2).
type EntityStore struct {
	index   map[EntityID]Pointer
	tables  []*ArchetypeTable
	byHash  map[archetypeHash]TableIndex
	masks   []mask.Mask
	bits    *bitRegistry
	nextID  EntityID
	alloc   Allocator
	events  StoreEvents
}

// NewStore constructs an EntityStore with the void archetype (only the id
// column) already installed at table_index 0.
func NewStore(opts ...StoreOption) *EntityStore {
	s := &EntityStore{
		index:  make(map[EntityID]Pointer),
		byHash: make(map[archetypeHash]TableIndex),
		bits:   newBitRegistry(),
		nextID: 1,
		alloc:  Config.allocator,
		events: Config.events,
	}
	for _, opt := range opts {
		opt(s)
	}
	voidTable := newArchetypeTable(s.alloc, []ComponentDescriptor{idDescriptor})
	// The void archetype is the one table whose hash is NOT its canonical
	// recompute: it is pinned to the reserved sentinel so that an entity
	// later stripped back down to just {id} gets routed to a brand new
	// table rather than silently merged back into table_index 0 (spec.md
	// section 3's "distinguished void archetype ... under a sentinel
	// hash", see realHashMask in hash.go).
	voidTable.hash = voidArchetypeHash
	s.tables = []*ArchetypeTable{voidTable}
	s.byHash[voidTable.hash] = voidTableIndex
	s.masks = []mask.Mask{{}}
	s.events.OnTableCreated(uint64(voidTable.hash), []string{idComponentName})
	return s
}

// New allocates a fresh EntityID and places it in the void archetype.
func (s *EntityStore) New() (EntityID, error) {
	e := s.nextID
	s.nextID++

	void := s.tables[voidTableIndex]
	row, err := void.AppendUndefined()
	if err != nil {
		return 0, err
	}
	SetTyped[EntityID](void, row, idComponentName, idToken, e)
	s.index[e] = Pointer{Table: voidTableIndex, Row: row}
	return e, nil
}

// Remove deletes e from the store, swap-removing its row and fixing up
// whichever entity was displaced into the vacated slot.
func (s *EntityStore) Remove(e EntityID) error {
	p, ok := s.index[e]
	if !ok {
		return ErrEntityNotFound
	}
	s.removeRowFixup(p.Table, p.Row)
	delete(s.index, e)
	return nil
}

// removeRowFixup reads the id of the row that swap-remove will displace
// into `row` (if any), patches the index for it, then performs the
// swap-remove. Must read before mutating — SwapRemove physically moves
// the bytes.
func (s *EntityStore) removeRowFixup(t TableIndex, row RowIndex) {
	tbl := s.tables[t]
	if tbl.Len() > 1 {
		last := RowIndex(tbl.Len() - 1)
		if last != row {
			displacedID, _ := GetTyped[EntityID](tbl, last, idComponentName, idToken)
			s.index[displacedID] = Pointer{Table: t, Row: row}
		}
	}
	tbl.SwapRemove(row)
}

// ArchetypeOf returns the table e currently lives in.
func (s *EntityStore) ArchetypeOf(e EntityID) (*ArchetypeTable, error) {
	p, ok := s.index[e]
	if !ok {
		return nil, ErrEntityNotFound
	}
	return s.tables[p.Table], nil
}

// Locate returns e's current (table, row) pointer.
func (s *EntityStore) Locate(e EntityID) (Pointer, bool) {
	p, ok := s.index[e]
	return p, ok
}

// Tables returns every table in insertion order, including the void
// archetype at index 0. Exposed for introspection/visualisers.
func (s *EntityStore) Tables() []*ArchetypeTable {
	out := make([]*ArchetypeTable, len(s.tables))
	copy(out, s.tables)
	return out
}

// columnNames extracts Name from each descriptor, in the order given.
func columnNames(descs []ComponentDescriptor) []string {
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	return names
}

// maskFor computes the query-matching bitmask for a column set, assigning
// fresh bits for any component name seen for the first time. The id
// column never participates — queries only ever name components.
func (s *EntityStore) maskFor(descs []ComponentDescriptor) mask.Mask {
	var m mask.Mask
	for _, d := range descs {
		if d.Name == idComponentName {
			continue
		}
		m.Mark(s.bits.bitFor(d.Name))
	}
	return m
}

// getOrCreateTable resolves the table for exactly the given column set.
// estHash is the caller's (possibly incremental) estimate of that set's
// content hash; getOrCreateTable always keys the tables map by the
// canonical hash recomputed by newArchetypeTable, re-keying if the
// estimate disagrees with it (SPEC_FULL.md section 9's
// hash-canonicalisation rule). The newly built table, if used, is
// guaranteed to land at the end of s.tables.
func (s *EntityStore) getOrCreateTable(estHash archetypeHash, descs []ComponentDescriptor) (idx TableIndex, created bool, err error) {
	if idx, ok := s.byHash[estHash]; ok {
		return idx, false, nil
	}

	candidate := newArchetypeTable(s.alloc, descs)
	canonical := candidate.hash
	if canonical != estHash {
		if idx, ok := s.byHash[canonical]; ok {
			return idx, false, nil
		}
	}

	idx = TableIndex(len(s.tables))
	s.tables = append(s.tables, candidate)
	s.byHash[canonical] = idx
	s.masks = append(s.masks, s.maskFor(descs))
	return idx, true, nil
}

// dropTrailingTable undoes a table creation that getOrCreateTable just
// performed, when the row append that was meant to populate it failed
// (spec scenario S6: no dangling tables entry survives a rolled-back
// allocation failure). Only ever called with idx == len(s.tables)-1, so
// no other table_index shifts.
func (s *EntityStore) dropTrailingTable(idx TableIndex) {
	tbl := s.tables[idx]
	delete(s.byHash, tbl.hash)
	s.tables = s.tables[:idx]
	s.masks = s.masks[:idx]
}

// addColumn performs the add-component schema transition shared by
// SetComponent (when the entity doesn't already carry the column) and any
// other caller that needs to widen an entity's archetype: locate/create
// the destination table, append a row, copy every surviving column,
// invoke writeNew to populate the new column, then relocate.
func (s *EntityStore) addColumn(e EntityID, p Pointer, desc ComponentDescriptor, writeNew func(dest *ArchetypeTable, row RowIndex)) error {
	src := s.tables[p.Table]
	srcCols := src.Columns()
	estHash := src.hash ^ hashString(desc.Name)

	destDescs := make([]ComponentDescriptor, len(srcCols), len(srcCols)+1)
	copy(destDescs, srcCols)
	destDescs = append(destDescs, desc)

	destIdx, created, err := s.getOrCreateTable(estHash, destDescs)
	if err != nil {
		return err
	}
	dest := s.tables[destIdx]

	newRow, err := dest.AppendUndefined()
	if err != nil {
		if created {
			s.dropTrailingTable(destIdx)
		}
		return err
	}
	if created {
		s.events.OnTableCreated(uint64(dest.hash), columnNames(destDescs))
	}

	for _, col := range srcCols {
		src.copyCell(p.Row, dest, newRow, col.Name)
	}
	writeNew(dest, newRow)

	s.removeRowFixup(p.Table, p.Row)
	s.index[e] = Pointer{Table: destIdx, Row: newRow}
	s.events.OnRelocated(e, p.Table, destIdx)
	return nil
}

// removeColumn performs the remove-component schema transition: locate/
// create a table for src's columns minus `name`, copy every surviving
// column across, then relocate. A no-op if src never had that column.
func (s *EntityStore) removeColumn(e EntityID, name string) error {
	p, ok := s.index[e]
	if !ok {
		return ErrEntityNotFound
	}
	src := s.tables[p.Table]
	if !src.HasComponent(name) {
		return nil
	}

	srcCols := src.Columns()
	destDescs := make([]ComponentDescriptor, 0, len(srcCols)-1)
	for _, c := range srcCols {
		if c.Name != name {
			destDescs = append(destDescs, c)
		}
	}
	estHash := xorFold(columnNames(destDescs))

	destIdx, created, err := s.getOrCreateTable(estHash, destDescs)
	if err != nil {
		return err
	}
	dest := s.tables[destIdx]

	newRow, err := dest.AppendUndefined()
	if err != nil {
		if created {
			s.dropTrailingTable(destIdx)
		}
		return err
	}
	if created {
		s.events.OnTableCreated(uint64(dest.hash), columnNames(destDescs))
	}
	for _, col := range destDescs {
		src.copyCell(p.Row, dest, newRow, col.Name)
	}

	s.removeRowFixup(p.Table, p.Row)
	s.index[e] = Pointer{Table: destIdx, Row: newRow}
	s.events.OnRelocated(e, p.Table, destIdx)
	return nil
}

// SetComponent writes value for component c on entity e, relocating e to
// a new archetype if it doesn't already carry that column (an
// update-in-place otherwise, which never changes e's archetype hash or
// any other entity's pointer).
func SetComponent[T any](s *EntityStore, e EntityID, c ComponentType[T], value T) error {
	p, ok := s.index[e]
	if !ok {
		return ErrEntityNotFound
	}
	desc := c.Descriptor()
	src := s.tables[p.Table]
	if src.HasComponent(desc.Name) {
		SetTyped[T](src, p.Row, desc.Name, desc.Token, value)
		return nil
	}
	return s.addColumn(e, p, desc, func(dest *ArchetypeTable, row RowIndex) {
		SetTyped[T](dest, row, desc.Name, desc.Token, value)
	})
}

// GetComponent returns e's value for c, or (zero, false, nil) if e
// doesn't carry that component. Returns ErrEntityNotFound if e isn't in
// the store.
func GetComponent[T any](s *EntityStore, e EntityID, c ComponentType[T]) (T, bool, error) {
	var zero T
	p, ok := s.index[e]
	if !ok {
		return zero, false, ErrEntityNotFound
	}
	desc := c.Descriptor()
	v, found := GetTyped[T](s.tables[p.Table], p.Row, desc.Name, desc.Token)
	return v, found, nil
}

// RemoveComponent removes c from e. A no-op (not an error) if e doesn't
// carry that component.
func RemoveComponent[T any](s *EntityStore, e EntityID, c ComponentType[T]) error {
	return s.removeColumn(e, c.Descriptor().Name)
}

// HasComponent reports whether e currently carries the component c
// describes.
func HasComponent[T any](s *EntityStore, e EntityID, c ComponentType[T]) (bool, error) {
	p, ok := s.index[e]
	if !ok {
		return false, ErrEntityNotFound
	}
	return s.tables[p.Table].HasComponent(c.Descriptor().Name), nil
}
