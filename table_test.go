package archway

import (
	"errors"
	"testing"
)

var errAllocatorInjected = errors.New("injected allocation failure")

type position struct{ X, Y float64 }

type tag struct{}

func newTestTable(t *testing.T, extra ...ComponentDescriptor) *ArchetypeTable {
	t.Helper()
	descs := append([]ComponentDescriptor{idDescriptor}, extra...)
	return newArchetypeTable(StandardAllocator{}, descs)
}

func TestArchetypeTableAppendAndSwapRemove(t *testing.T) {
	posComp := NewComponentType[position]("test", "position")
	tbl := newTestTable(t, posComp.Descriptor())

	var rows []RowIndex
	for i := 0; i < 5; i++ {
		row, err := tbl.AppendUndefined()
		if err != nil {
			t.Fatalf("AppendUndefined: %v", err)
		}
		SetTyped[EntityID](tbl, row, idComponentName, idToken, EntityID(i+1))
		posComp.Set(tbl, row, position{X: float64(i)})
		rows = append(rows, row)
	}
	if tbl.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", tbl.Len())
	}

	// Swap-remove row 1: row 4 (last) should be moved into row 1.
	tbl.SwapRemove(1)
	if tbl.Len() != 4 {
		t.Fatalf("Len() after SwapRemove = %d, want 4", tbl.Len())
	}
	id, _ := GetTyped[EntityID](tbl, 1, idComponentName, idToken)
	if id != 5 {
		t.Fatalf("row 1 id after SwapRemove = %d, want 5 (displaced last row)", id)
	}
	pos, _ := posComp.Get(tbl, 1)
	if pos.X != 4 {
		t.Fatalf("row 1 position.X after SwapRemove = %v, want 4", pos.X)
	}
}

func TestArchetypeTableSwapRemoveLastRow(t *testing.T) {
	tbl := newTestTable(t)
	row, _ := tbl.AppendUndefined()
	SetTyped[EntityID](tbl, row, idComponentName, idToken, EntityID(1))
	tbl.SwapRemove(row)
	if tbl.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", tbl.Len())
	}
}

func TestArchetypeTableGrowthFormula(t *testing.T) {
	cases := []struct {
		cur, need, want uint64
	}{
		{0, 1, 8},
		{8, 9, 20},
		{0, 0, 0},
		{8, 8, 8},
	}
	for _, c := range cases {
		got := growthTarget(c.cur, c.need)
		if got != c.want {
			t.Errorf("growthTarget(%d, %d) = %d, want %d", c.cur, c.need, got, c.want)
		}
	}
}

func TestArchetypeTableZeroSizedComponent(t *testing.T) {
	tagComp := NewComponentType[tag]("test", "tag")
	tbl := newTestTable(t, tagComp.Descriptor())
	row, err := tbl.AppendUndefined()
	if err != nil {
		t.Fatalf("AppendUndefined: %v", err)
	}
	if !tbl.HasComponent(tagComp.Name()) {
		t.Fatalf("zero-sized column not present after construction")
	}
	if _, ok := tagComp.Get(tbl, row); !ok {
		t.Fatalf("zero-sized component not readable")
	}
}

func TestArchetypeTableHashIsOrderIndependent(t *testing.T) {
	a := NewComponentType[position]("test", "a")
	b := NewComponentType[tag]("test", "b")

	t1 := newArchetypeTable(StandardAllocator{}, []ComponentDescriptor{idDescriptor, a.Descriptor(), b.Descriptor()})
	t2 := newArchetypeTable(StandardAllocator{}, []ComponentDescriptor{idDescriptor, b.Descriptor(), a.Descriptor()})
	if t1.Hash() != t2.Hash() {
		t.Fatalf("hash depends on input order: %d != %d", t1.Hash(), t2.Hash())
	}
}

func TestArchetypeTableIDColumnSortsFirst(t *testing.T) {
	a := NewComponentType[position]("test", "a")
	tbl := newArchetypeTable(StandardAllocator{}, []ComponentDescriptor{a.Descriptor(), idDescriptor})
	if tbl.Columns()[0].Name != idComponentName {
		t.Fatalf("Columns()[0] = %q, want %q", tbl.Columns()[0].Name, idComponentName)
	}
}

func TestArchetypeTableAllocationFailureLeavesStateUnchanged(t *testing.T) {
	posComp := NewComponentType[position]("test", "position")
	tbl := newArchetypeTable(&failingAllocator{failAfter: 0}, []ComponentDescriptor{idDescriptor, posComp.Descriptor()})
	beforeCap := tbl.Cap()
	beforeLen := tbl.Len()
	_, err := tbl.AppendUndefined()
	if err == nil {
		t.Fatalf("expected allocation failure")
	}
	if tbl.Cap() != beforeCap || tbl.Len() != beforeLen {
		t.Fatalf("table state changed after failed allocation: cap %d->%d len %d->%d", beforeCap, tbl.Cap(), beforeLen, tbl.Len())
	}
}

type failingAllocator struct {
	failAfter int
	calls     int
}

func (f *failingAllocator) Alloc(n int) ([]byte, error) {
	if f.calls >= f.failAfter {
		return nil, errAllocatorInjected
	}
	f.calls++
	return make([]byte, n), nil
}
