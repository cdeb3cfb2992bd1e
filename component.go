package archway

import (
	"reflect"
	"sync"
	"unsafe"
)

// ComponentToken is a process-unique identifier for a component's Go type.
// Two tokens are equal iff they were derived from the identical type —
// the only requirement the spec places on type tokens (SPEC_FULL.md
// section 9). It is implemented as a monotonically assigned integer
// granted on first registration, one of the two implementation strategies
// the design notes call out for languages with a reflection facility.
type ComponentToken uint64

// idToken is reserved for the EntityID column so it always sorts first
// under "order by type token ascending" (invariant I1): the registry hands
// out every other token starting at 1.
const idToken ComponentToken = 0

var tokenRegistry = struct {
	mu    sync.Mutex
	next  ComponentToken
	byTy  map[reflect.Type]ComponentToken
	names map[ComponentToken]string
}{
	next:  1,
	byTy:  map[reflect.Type]ComponentToken{reflect.TypeOf(EntityID(0)): idToken},
	names: map[ComponentToken]string{idToken: "archway.EntityID"},
}

// tokenFor returns the stable token for a Go type, registering it on first
// use.
func tokenFor(t reflect.Type) ComponentToken {
	tokenRegistry.mu.Lock()
	defer tokenRegistry.mu.Unlock()
	if tok, ok := tokenRegistry.byTy[t]; ok {
		return tok
	}
	tok := tokenRegistry.next
	tokenRegistry.next++
	tokenRegistry.byTy[t] = tok
	if t != nil {
		tokenRegistry.names[tok] = t.String()
	} else {
		tokenRegistry.names[tok] = "<nil>"
	}
	return tok
}

// tokenTypeName returns the registered type name for a token, for
// diagnostics on a TypeMismatch.
func tokenTypeName(tok ComponentToken) string {
	tokenRegistry.mu.Lock()
	defer tokenRegistry.mu.Unlock()
	if name, ok := tokenRegistry.names[tok]; ok {
		return name
	}
	return "<unknown>"
}

// ComponentDescriptor is the per-column metadata an ArchetypeTable
// operates on: a stable column name, a type token, and the byte layout.
// Zero-sized components (Size == 0) are permitted; the column exists
// (presence carries information) but occupies no storage bytes.
type ComponentDescriptor struct {
	Name  string
	Token ComponentToken
	Size  uintptr
	Align uintptr
}

// ComponentSource is the boundary the spec's external "component-set
// declaration mechanism" is named at: anything that can produce a
// ComponentDescriptor can be used to add/inspect a column, whether or not
// it was built with NewComponentType.
type ComponentSource interface {
	Descriptor() ComponentDescriptor
}

// ComponentType is the generic, compile-time-checked front door onto a
// column of type T. It derives its ComponentDescriptor from T via
// reflect, the idiomatic Go substitute for the spec's external namespaced
// component-kind registry (SPEC_FULL.md section 3.1) — EntityStore and
// ArchetypeTable themselves only ever see the raw ComponentDescriptor.
type ComponentType[T any] struct {
	desc ComponentDescriptor
}

// NewComponentType derives a ComponentType[T] for namespace.name. Calling
// it more than once for the same T yields descriptors with the same
// Token (registration is memoized) but is otherwise cheap to call
// per-site, matching the teacher's FactoryNewComponent[T] idiom.
func NewComponentType[T any](namespace, name string) ComponentType[T] {
	var zero T
	t := reflect.TypeOf(zero)
	token := tokenFor(t)
	size := unsafe.Sizeof(zero)
	align := uintptr(1)
	if t != nil {
		align = uintptr(t.Align())
	}
	return ComponentType[T]{
		desc: ComponentDescriptor{
			Name:  namespace + "." + name,
			Token: token,
			Size:  size,
			Align: align,
		},
	}
}

// Descriptor implements ComponentSource.
func (c ComponentType[T]) Descriptor() ComponentDescriptor {
	return c.desc
}

// Name returns the column name ("namespace.component").
func (c ComponentType[T]) Name() string {
	return c.desc.Name
}

// Get reads c's value at (tbl, row), the table-oriented counterpart to
// GetComponent for callers already holding a table/row pair (typically
// from a QueryIterator). Mirrors the teacher's AccessibleComponent.Get.
func (c ComponentType[T]) Get(tbl *ArchetypeTable, row RowIndex) (T, bool) {
	return GetTyped[T](tbl, row, c.desc.Name, c.desc.Token)
}

// Set writes value at (tbl, row). Returns false if tbl has no such column.
func (c ComponentType[T]) Set(tbl *ArchetypeTable, row RowIndex, value T) bool {
	return SetTyped[T](tbl, row, c.desc.Name, c.desc.Token, value)
}

// GetFromIterator reads c's value at the iterator's current position,
// matching the teacher's AccessibleComponent.GetFromCursor idiom.
func (c ComponentType[T]) GetFromIterator(it *QueryIterator) (T, bool) {
	return c.Get(it.CurrentTable(), it.CurrentRow())
}

// Check reports whether the iterator's current table carries c, matching
// the teacher's AccessibleComponent.CheckCursor idiom — useful inside an
// Any() query where not every matched table carries every component.
func (c ComponentType[T]) Check(it *QueryIterator) bool {
	return it.CurrentTable().HasComponent(c.desc.Name)
}
