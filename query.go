package archway

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

// QueryNode is one node of a composable query over component-name sets
// (SPEC_FULL.md section 4.3). Evaluate is resolved against a candidate
// table's precomputed mask rather than its column list, so matching a
// table costs a handful of bitwise ops regardless of how many components
// it carries.
type QueryNode interface {
	evaluate(s *EntityStore, tableMask mask.Mask) bool
}

type queryOperation int

const (
	opAnd queryOperation = iota
	opOr
	opNot
)

// compositeNode implements All/Any/Not, optionally composed with nested
// query nodes — grounded on the teacher's query.go composite-node
// evaluator, generalized from mask.Maskable-typed components to bare
// component names.
type compositeNode struct {
	op       queryOperation
	names    []string
	children []QueryNode
}

func (n *compositeNode) evaluate(s *EntityStore, tableMask mask.Mask) bool {
	var nodeMask mask.Mask
	for _, name := range n.names {
		nodeMask.Mark(s.bits.bitFor(name))
	}
	switch n.op {
	case opAnd:
		if !tableMask.ContainsAll(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if !child.evaluate(s, tableMask) {
				return false
			}
		}
		return true
	case opOr:
		if len(n.names) > 0 && tableMask.ContainsAny(nodeMask) {
			return true
		}
		for _, child := range n.children {
			if child.evaluate(s, tableMask) {
				return true
			}
		}
		return false
	case opNot:
		if len(n.children) == 0 {
			return tableMask.ContainsNone(nodeMask)
		}
		if len(n.names) > 0 && !tableMask.ContainsNone(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if child.evaluate(s, tableMask) {
				return false
			}
		}
		return true
	}
	return false
}

// All builds a conjunction: a table matches iff it carries every named
// component (and every nested node also matches).
func All(items ...interface{}) QueryNode {
	names, children := processQueryItems(items...)
	return &compositeNode{op: opAnd, names: names, children: children}
}

// Any builds a disjunction: a table matches iff it carries at least one
// named component, or any nested node matches. This completes the
// semantics spec.md reserved but left unimplemented.
func Any(items ...interface{}) QueryNode {
	names, children := processQueryItems(items...)
	return &compositeNode{op: opOr, names: names, children: children}
}

// Not builds a negation: a table matches iff it carries none of the named
// components and no nested node matches.
func Not(items ...interface{}) QueryNode {
	names, children := processQueryItems(items...)
	return &compositeNode{op: opNot, names: names, children: children}
}

// processQueryItems accepts a mix of component names (string), component
// sources (ComponentSource, whose Descriptor().Name is used), slices of
// either, and nested QueryNodes.
func processQueryItems(items ...interface{}) ([]string, []QueryNode) {
	names := make([]string, 0, len(items))
	children := make([]QueryNode, 0)
	for _, item := range items {
		switch v := item.(type) {
		case string:
			names = append(names, v)
		case []string:
			names = append(names, v...)
		case ComponentSource:
			names = append(names, v.Descriptor().Name)
		case []ComponentSource:
			for _, src := range v {
				names = append(names, src.Descriptor().Name)
			}
		case QueryNode:
			children = append(children, v)
		default:
			panic(bark.AddTrace(fmt.Errorf("archway: invalid query item type %T", item)))
		}
	}
	return names, children
}

// QueryIterator walks an EntityStore's tables in insertion order, starting
// after the void archetype, yielding one row at a time from every table
// whose length is nonzero and whose column set satisfies the query
// (SPEC_FULL.md section 4.3). It holds an implicit borrow of the store:
// mutating the tables map while an iterator is live is a programming
// error, per spec.
type QueryIterator struct {
	query   QueryNode
	store   *EntityStore
	matched []TableIndex
	tblPos  int
	row     int
	started bool
}

// Query builds a QueryIterator over s for q.
func (s *EntityStore) Query(q QueryNode) *QueryIterator {
	return &QueryIterator{query: q, store: s}
}

func (it *QueryIterator) initialize() {
	it.row = -1
	for idx := 1; idx < len(it.store.tables); idx++ {
		tbl := it.store.tables[idx]
		if tbl.Len() == 0 {
			continue
		}
		if it.query.evaluate(it.store, it.store.masks[idx]) {
			it.matched = append(it.matched, TableIndex(idx))
		}
	}
	it.started = true
}

// Next advances to the next matching row, returning false once exhausted.
func (it *QueryIterator) Next() bool {
	if !it.started {
		it.initialize()
	}
	for it.tblPos < len(it.matched) {
		tbl := it.store.tables[it.matched[it.tblPos]]
		if it.row+1 < int(tbl.Len()) {
			it.row++
			return true
		}
		it.tblPos++
		it.row = -1
	}
	return false
}

// CurrentTable returns the table the iterator is positioned in. Valid
// only after a Next() that returned true.
func (it *QueryIterator) CurrentTable() *ArchetypeTable {
	return it.store.tables[it.matched[it.tblPos]]
}

// CurrentTableIndex returns the table_index the iterator is positioned in.
func (it *QueryIterator) CurrentTableIndex() TableIndex {
	return it.matched[it.tblPos]
}

// CurrentRow returns the row the iterator is positioned at within
// CurrentTable().
func (it *QueryIterator) CurrentRow() RowIndex {
	return RowIndex(it.row)
}

// CurrentEntity returns the EntityID at the iterator's current position.
func (it *QueryIterator) CurrentEntity() EntityID {
	tbl := it.CurrentTable()
	id, _ := GetTyped[EntityID](tbl, it.CurrentRow(), idComponentName, idToken)
	return id
}

// Reset rewinds the iterator so a subsequent Next() re-initializes it
// against the store's current table set.
func (it *QueryIterator) Reset() {
	it.matched = nil
	it.tblPos = 0
	it.row = -1
	it.started = false
}
