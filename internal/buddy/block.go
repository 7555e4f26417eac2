package buddy

// Block describes one allocated block: a byte offset into the arena and a
// power-of-two size order, unpacked from a 32-bit descriptor. The low 5
// bits of the descriptor carry the order; the remaining bits carry the
// offset, which is therefore always a multiple of 32.
type Block struct {
	addr  uint32
	order uint8
}

// blockFromDescriptor unpacks a packed 32-bit block descriptor.
func blockFromDescriptor(v uint32) Block {
	return Block{
		addr:  v &^ 0x1F,
		order: uint8(v & 0x1F),
	}
}

// Addr returns the block's byte offset within the arena.
func (b Block) Addr() uint32 {
	return b.addr
}

// Order returns the block's buddy allocation order.
func (b Block) Order() uint8 {
	return b.order
}

// Size returns the block size in bytes (1 << order).
func (b Block) Size() uint32 {
	return uint32(1) << b.order
}

// IsZero reports whether b is an unused descriptor slot. A zero order and
// zero offset never describe a real block.
func (b Block) IsZero() bool {
	return b.addr == 0 && b.order == 0
}
