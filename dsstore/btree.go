package dsstore

import (
	"fmt"

	"github.com/robert-malhotra/go-dsstore/internal/binary"
	"github.com/robert-malhotra/go-dsstore/internal/buddy"
)

// masterBlockName is the directory entry naming the B-tree master block.
const masterBlockName = "DSDB"

// expectedPageSize is the node page size every known container declares.
// It is sanity-checked but not otherwise used.
const expectedPageSize = 0x1000

// Master is the B-tree master record: the root node id and the declared
// shape of the tree.
type Master struct {
	RootNode    uint32
	Depth       uint32 // number of internal levels; 0 means the root is a leaf
	RecordCount uint32
	NodeCount   uint32
	PageSize    uint32
}

// readMaster locates the master block through the named-block directory
// and decodes its five fields.
func readMaster(store *buddy.Store) (Master, error) {
	var m Master

	id, err := store.Lookup(masterBlockName)
	if err != nil {
		return m, err
	}
	block, err := store.Resolve(id)
	if err != nil {
		return m, fmt.Errorf("resolving master block: %w", err)
	}

	r := binary.NewReader(block)
	fields := []*uint32{&m.RootNode, &m.Depth, &m.RecordCount, &m.NodeCount, &m.PageSize}
	for i, f := range fields {
		if *f, err = r.ReadUint32(); err != nil {
			return m, fmt.Errorf("reading master record field %d: %w", i, err)
		}
	}
	return m, nil
}

// Corruption marks a localized decode failure. Traversal continues with
// sibling and ancestor subtrees; only records at or below the marked node
// are lost.
type Corruption struct {
	// Node is the block id of the node where decoding stopped.
	Node uint32

	Err error
}

func (c Corruption) String() string {
	return fmt.Sprintf("node %d: %v", c.Node, c.Err)
}

// traversal accumulates the in-order record sequence and any corruption
// markers found along the way. It holds no mutable state beyond its own
// output, so independent traversals of the same store never interfere.
type traversal struct {
	store   *buddy.Store
	records []Record
	corrupt []Corruption
	visited map[uint32]bool
}

// walk visits the subtree rooted at the given node in ascending key
// order. The caller tracks depth, decrementing on each descent; zero
// marks a leaf. Every node starts with two words: the trailing (rightmost)
// child pointer, which is zero on leaves, and the node's record count.
//
// Internal nodes interleave (child, record) pairs, so the emitted order is
// child[0], record[0], child[1], record[1], ..., trailing child.
//
// A well-formed tree references every node exactly once, so a repeated
// block id means the node graph has a cycle. Flagging the revisit instead
// of descending again bounds recursion by the number of distinct blocks,
// whatever depth the master record declares.
func (t *traversal) walk(id uint32, depth uint32) {
	if t.visited[id] {
		t.fail(id, ErrCycle)
		return
	}
	t.visited[id] = true

	block, err := t.store.Resolve(id)
	if err != nil {
		t.fail(id, err)
		return
	}

	r := binary.NewReader(block)
	trailing, err := r.ReadUint32()
	if err != nil {
		t.fail(id, fmt.Errorf("reading node header: %w", err))
		return
	}
	count, err := r.ReadUint32()
	if err != nil {
		t.fail(id, fmt.Errorf("reading node header: %w", err))
		return
	}

	if depth == 0 {
		if trailing != 0 {
			// Declared depth disagrees with the node's own shape.
			// Decode the records it claims anyway.
			t.fail(id, fmt.Errorf("leaf node carries child pointer %d", trailing))
		}
		for i := uint32(0); i < count; i++ {
			rec, err := decodeRecord(r)
			if err != nil {
				t.fail(id, fmt.Errorf("record %d: %w", i, err))
				return
			}
			t.records = append(t.records, rec)
		}
		return
	}

	for i := uint32(0); i < count; i++ {
		child, err := r.ReadUint32()
		if err != nil {
			t.fail(id, fmt.Errorf("child pointer %d: %w", i, err))
			break
		}
		t.walk(child, depth-1)

		rec, err := decodeRecord(r)
		if err != nil {
			t.fail(id, fmt.Errorf("record %d: %w", i, err))
			break
		}
		t.records = append(t.records, rec)
	}

	// The trailing pointer was read before any record, so the rightmost
	// subtree stays reachable even when this node's records are corrupt.
	t.walk(trailing, depth-1)
}

func (t *traversal) fail(id uint32, err error) {
	t.corrupt = append(t.corrupt, Corruption{Node: id, Err: err})
}
