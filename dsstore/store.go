package dsstore

import (
	"fmt"

	"github.com/robert-malhotra/go-dsstore/internal/buddy"
)

// Store is a fully decoded container: the in-order record sequence plus
// the diagnostics gathered while producing it. It is read-only once
// Decode returns.
type Store struct {
	// Master is the B-tree master record as declared by the container.
	Master Master

	// Records holds every decoded record in ascending (filename,
	// attribute code) order.
	Records []Record

	// Corruptions lists subtrees whose records could not be decoded.
	// Records outside those subtrees are still present in Records.
	Corruptions []Corruption

	// Warnings holds non-fatal integrity findings, such as a
	// *CountMismatchError or an unexpected page size.
	Warnings []error

	blocks *buddy.Store
}

// CountMismatchError reports that traversal yielded a different number of
// records than the master record declares. It is a warning, not a hard
// failure: partially corrupt containers still yield best-effort output.
type CountMismatchError struct {
	Declared int
	Actual   int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("record count mismatch: master declares %d, traversal yielded %d",
		e.Declared, e.Actual)
}

// Decode parses a whole .DS_Store container from buf. The buffer must be
// complete and must remain unmodified while the returned store is in use.
//
// Header-level failures (ErrBadMagic, ErrHeaderMismatch, ErrTruncated on
// the bookkeeping block, ErrNameNotFound for the index root) return an
// error and no store; there is no recoverable structure without a valid
// header and index root. Corruption inside the tree is localized per
// subtree and reported through Corruptions and Warnings instead.
//
// Decoding is deterministic: two calls over the same buffer produce
// identical stores.
func Decode(buf []byte) (*Store, error) {
	blocks, err := buddy.Open(buf)
	if err != nil {
		return nil, err
	}

	master, err := readMaster(blocks)
	if err != nil {
		return nil, err
	}

	t := &traversal{store: blocks, visited: make(map[uint32]bool)}
	t.walk(master.RootNode, master.Depth)

	s := &Store{
		Master:      master,
		Records:     t.records,
		Corruptions: t.corrupt,
		blocks:      blocks,
	}
	if master.PageSize != expectedPageSize {
		s.Warnings = append(s.Warnings,
			fmt.Errorf("unexpected page size 0x%x (expected 0x%x)", master.PageSize, expectedPageSize))
	}
	if len(s.Records) != int(master.RecordCount) {
		s.Warnings = append(s.Warnings, &CountMismatchError{
			Declared: int(master.RecordCount),
			Actual:   len(s.Records),
		})
	}
	return s, nil
}

// Clean reports whether decoding completed with no corruption markers and
// no integrity warnings.
func (s *Store) Clean() bool {
	return len(s.Corruptions) == 0 && len(s.Warnings) == 0
}

// Names returns all entries of the named-block directory in sorted order.
// Only the index root name is interpreted; the rest are preserved as-is.
func (s *Store) Names() []string {
	return s.blocks.Names()
}

// FreeList returns the block offsets recorded as free for the given
// allocation order (0..31). The lists are diagnostic only.
func (s *Store) FreeList(order int) []uint32 {
	return s.blocks.FreeList(order)
}
