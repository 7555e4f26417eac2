package dsstore

import (
	"bytes"
	"encoding/binary"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// containerBuilder assembles synthetic containers: a header, data blocks
// laid out sequentially, and a trailing bookkeeping block. Block ids are
// assigned in the order blocks are added.
type containerBuilder struct {
	payloads [][]byte
	rawDesc  map[int]uint32 // id → verbatim descriptor, payload ignored
	names    []nameEntry
	free     map[int][]uint32
}

type nameEntry struct {
	name string
	id   uint32
}

func newContainer() *containerBuilder {
	return &containerBuilder{
		rawDesc: make(map[int]uint32),
		free:    make(map[int][]uint32),
	}
}

func (c *containerBuilder) addBlock(payload []byte) uint32 {
	c.payloads = append(c.payloads, payload)
	return uint32(len(c.payloads) - 1)
}

// addBadBlock reserves a block id whose descriptor is written verbatim,
// letting tests point a block outside the buffer.
func (c *containerBuilder) addBadBlock(descriptor uint32) uint32 {
	id := c.addBlock(nil)
	c.rawDesc[int(id)] = descriptor
	return id
}

func (c *containerBuilder) setName(name string, id uint32) {
	c.names = append(c.names, nameEntry{name, id})
}

func (c *containerBuilder) build(t *testing.T) []byte {
	t.Helper()

	// Lay data blocks out back to back; power-of-two sizes keep every
	// address a multiple of 32, as the descriptor packing requires.
	addr := uint32(0x40)
	descriptors := make([]uint32, len(c.payloads))
	positions := make([]uint32, len(c.payloads))
	for i, p := range c.payloads {
		if d, ok := c.rawDesc[i]; ok {
			descriptors[i] = d
			continue
		}
		order := uint32(5)
		for (uint32(1) << order) < uint32(len(p)) {
			order++
		}
		descriptors[i] = addr | order
		positions[i] = addr
		addr += uint32(1) << order
	}
	bookAddr := addr

	book := new(bytes.Buffer)
	be := func(v uint32) {
		if err := binary.Write(book, binary.BigEndian, v); err != nil {
			t.Fatalf("building bookkeeping block: %v", err)
		}
	}
	be(uint32(len(descriptors)))
	be(0) // reserved
	padded := (len(descriptors) + 255) / 256 * 256
	for i := 0; i < padded; i++ {
		if i < len(descriptors) {
			be(descriptors[i])
		} else {
			be(0)
		}
	}
	be(uint32(len(c.names)))
	for _, e := range c.names {
		book.WriteByte(byte(len(e.name)))
		book.WriteString(e.name)
		be(e.id)
	}
	for order := 0; order < 32; order++ {
		ids := c.free[order]
		be(uint32(len(ids)))
		for _, id := range ids {
			be(id)
		}
	}

	buf := make([]byte, int(bookAddr)+4+book.Len()+32)
	for i, v := range []uint32{0x00000001, 0x42756431, bookAddr, uint32(book.Len()), bookAddr} {
		binary.BigEndian.PutUint32(buf[4*i:], v)
	}
	for i, p := range c.payloads {
		if _, ok := c.rawDesc[i]; ok {
			continue
		}
		copy(buf[int(positions[i])+4:], p)
	}
	copy(buf[int(bookAddr)+4:], book.Bytes())
	return buf
}

// --- wire encoding helpers ---

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func be64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func utf16be(t *testing.T, s string) []byte {
	t.Helper()
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	raw, _, err := transform.Bytes(enc, []byte(s))
	if err != nil {
		t.Fatalf("encoding %q as UTF-16: %v", s, err)
	}
	return raw
}

// encRecord encodes one on-disk record: filename, attribute code, type
// tag, and the already-encoded value payload.
func encRecord(t *testing.T, name, code, tag string, payload []byte) []byte {
	t.Helper()
	raw := utf16be(t, name)
	var b bytes.Buffer
	b.Write(be32(uint32(len(raw) / 2)))
	b.Write(raw)
	b.WriteString(code)
	b.WriteString(tag)
	b.Write(payload)
	return b.Bytes()
}

func recLong(t *testing.T, name, code string, v int32) []byte {
	return encRecord(t, name, code, "long", be32(uint32(v)))
}

func recShor(t *testing.T, name, code string, v int16) []byte {
	return encRecord(t, name, code, "shor", be32(uint32(uint16(v))))
}

func recBool(t *testing.T, name, code string, v bool) []byte {
	payload := []byte{0}
	if v {
		payload[0] = 1
	}
	return encRecord(t, name, code, "bool", payload)
}

func recBlob(t *testing.T, name, code string, data []byte) []byte {
	return encRecord(t, name, code, "blob", append(be32(uint32(len(data))), data...))
}

func recUStr(t *testing.T, name, code, s string) []byte {
	raw := utf16be(t, s)
	return encRecord(t, name, code, "ustr", append(be32(uint32(len(raw)/2)), raw...))
}

func recType(t *testing.T, name, code, tag string) []byte {
	return encRecord(t, name, code, "type", []byte(tag))
}

func recComp(t *testing.T, name, code string, v uint64) []byte {
	return encRecord(t, name, code, "comp", be64(v))
}

func recDUtc(t *testing.T, name, code string, v uint64) []byte {
	return encRecord(t, name, code, "dutc", be64(v))
}

// leafNode encodes a leaf: zero trailing pointer, record count, records.
func leafNode(records ...[]byte) []byte {
	var b bytes.Buffer
	b.Write(be32(0))
	b.Write(be32(uint32(len(records))))
	for _, r := range records {
		b.Write(r)
	}
	return b.Bytes()
}

type childRec struct {
	child uint32
	rec   []byte
}

// internalNode encodes an internal node: the trailing child pointer, the
// record count, then interleaved (child id, record) pairs.
func internalNode(trailing uint32, pairs ...childRec) []byte {
	var b bytes.Buffer
	b.Write(be32(trailing))
	b.Write(be32(uint32(len(pairs))))
	for _, p := range pairs {
		b.Write(be32(p.child))
		b.Write(p.rec)
	}
	return b.Bytes()
}

// masterPayload encodes the five-field B-tree master record.
func masterPayload(root, depth, recordCount, nodeCount, pageSize uint32) []byte {
	var b bytes.Buffer
	for _, v := range []uint32{root, depth, recordCount, nodeCount, pageSize} {
		b.Write(be32(v))
	}
	return b.Bytes()
}

// buildFlatContainer builds a container whose index is a single leaf.
func buildFlatContainer(t *testing.T, records ...[]byte) []byte {
	t.Helper()
	c := newContainer()
	leaf := c.addBlock(leafNode(records...))
	master := c.addBlock(masterPayload(leaf, 0, uint32(len(records)), 1, 0x1000))
	c.setName("DSDB", master)
	return c.build(t)
}
