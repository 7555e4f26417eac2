package buddy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/robert-malhotra/go-dsstore/internal/binary"
)

// Container signature: a version word of 1 followed by "Bud1".
const (
	magicVersion = 0x00000001
	magicBud1    = 0x42756431 // "Bud1"
)

const (
	// headerSize is the fixed container header: two magic words, two
	// redundant copies of the bookkeeping offset, the bookkeeping size,
	// and 16 reserved bytes.
	headerSize = 36

	// arenaSkew is added to every stored block offset: the allocated
	// arena starts after the 4-byte version word.
	arenaSkew = 4

	// numFreeLists is one free list per allocation order.
	numFreeLists = 32

	// descriptorPad pads the descriptor table to a multiple of this many
	// entries.
	descriptorPad = 256
)

// Errors
var (
	ErrBadMagic       = errors.New("bad magic: not a buddy-allocated container")
	ErrHeaderMismatch = errors.New("header mismatch: redundant bookkeeping offsets disagree")
	ErrTruncated      = errors.New("block extends past end of buffer")
	ErrOutOfRange     = errors.New("block id out of range")
	ErrNameNotFound   = errors.New("named block not found")
)

// Store resolves block identifiers to byte ranges within a container
// buffer. It is immutable after Open and safe for concurrent use.
type Store struct {
	buf    []byte
	blocks []Block
	names  map[string]uint32
	free   [numFreeLists][]uint32
}

// Open parses the container header and bookkeeping block of buf.
// The buffer must remain unmodified for the lifetime of the store.
func Open(buf []byte) (*Store, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: %d byte buffer is smaller than the %d byte header",
			ErrTruncated, len(buf), headerSize)
	}

	r := binary.NewReader(buf)

	magic1, _ := r.ReadUint32()
	magic2, _ := r.ReadUint32()
	if magic1 != magicVersion || magic2 != magicBud1 {
		return nil, fmt.Errorf("%w: got %08x %08x", ErrBadMagic, magic1, magic2)
	}

	offset1, _ := r.ReadUint32()
	size, _ := r.ReadUint32()
	offset2, _ := r.ReadUint32()
	if offset1 != offset2 {
		return nil, fmt.Errorf("%w: 0x%x != 0x%x", ErrHeaderMismatch, offset1, offset2)
	}

	end := uint64(offset1) + arenaSkew + uint64(size)
	if end > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: bookkeeping block [0x%x, 0x%x) in %d byte buffer",
			ErrTruncated, offset1+arenaSkew, end, len(buf))
	}

	s := &Store{buf: buf}
	if err := s.readBookkeeping(buf[offset1+arenaSkew : end]); err != nil {
		return nil, err
	}
	return s, nil
}

// readBookkeeping parses the descriptor table, the named-block directory,
// and the per-order free lists.
func (s *Store) readBookkeeping(block []byte) error {
	r := binary.NewReader(block)

	count, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("reading block count: %w", err)
	}
	if _, err := r.ReadUint32(); err != nil { // reserved
		return fmt.Errorf("reading reserved word: %w", err)
	}

	// The table is padded to a multiple of 256 slots; only the first
	// count slots carry block ids. Zero slots inside the table are
	// unused, not valid blocks.
	padded := (int(count) + descriptorPad - 1) / descriptorPad * descriptorPad
	s.blocks = make([]Block, count)
	for i := 0; i < padded; i++ {
		v, err := r.ReadUint32()
		if err != nil {
			return fmt.Errorf("reading block descriptor %d: %w", i, err)
		}
		if i < int(count) {
			s.blocks[i] = blockFromDescriptor(v)
		}
	}

	dirCount, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("reading directory count: %w", err)
	}
	s.names = make(map[string]uint32, dirCount)
	for i := uint32(0); i < dirCount; i++ {
		nameLen, err := r.ReadUint8()
		if err != nil {
			return fmt.Errorf("reading directory entry %d: %w", i, err)
		}
		name, err := r.ReadBytes(int(nameLen))
		if err != nil {
			return fmt.Errorf("reading directory entry %d: %w", i, err)
		}
		id, err := r.ReadUint32()
		if err != nil {
			return fmt.Errorf("reading directory entry %d: %w", i, err)
		}
		s.names[string(name)] = id
	}

	// Free lists are diagnostic only; a short or inconsistent free-list
	// region must not prevent traversal, so parsing stops quietly at the
	// first short read.
	for order := 0; order < numFreeLists; order++ {
		n, err := r.ReadUint32()
		if err != nil {
			break
		}
		if n == 0 {
			continue
		}
		ids := make([]uint32, 0, n)
		short := false
		for j := uint32(0); j < n; j++ {
			id, err := r.ReadUint32()
			if err != nil {
				short = true
				break
			}
			ids = append(ids, id)
		}
		s.free[order] = ids
		if short {
			break
		}
	}

	return nil
}

// Resolve returns the byte range of the block with the given id.
func (s *Store) Resolve(id uint32) ([]byte, error) {
	b, err := s.Info(id)
	if err != nil {
		return nil, err
	}
	start := uint64(b.Addr()) + arenaSkew
	end := start + uint64(b.Size())
	if end > uint64(len(s.buf)) {
		return nil, fmt.Errorf("%w: block %d spans [0x%x, 0x%x) in %d byte buffer",
			ErrTruncated, id, start, end, len(s.buf))
	}
	return s.buf[start:end], nil
}

// Info returns the descriptor for the given block id.
func (s *Store) Info(id uint32) (Block, error) {
	if int(id) >= len(s.blocks) {
		return Block{}, fmt.Errorf("%w: block %d of %d", ErrOutOfRange, id, len(s.blocks))
	}
	b := s.blocks[id]
	if b.IsZero() {
		return Block{}, fmt.Errorf("%w: block %d is an unused slot", ErrOutOfRange, id)
	}
	return b, nil
}

// NumBlocks returns the number of slots in the descriptor table,
// including unused ones.
func (s *Store) NumBlocks() int {
	return len(s.blocks)
}

// Lookup returns the block id registered under the given short name.
func (s *Store) Lookup(name string) (uint32, error) {
	id, ok := s.names[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNameNotFound, name)
	}
	return id, nil
}

// Names returns all registered block names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FreeList returns the block offsets recorded as free for the given
// allocation order, or nil. The lists are informational: nothing in block
// resolution depends on them being consistent.
func (s *Store) FreeList(order int) []uint32 {
	if order < 0 || order >= numFreeLists {
		return nil
	}
	return s.free[order]
}
