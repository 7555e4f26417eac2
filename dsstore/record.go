package dsstore

import (
	"fmt"

	"github.com/robert-malhotra/go-dsstore/internal/binary"
)

// Record is one (filename, attribute code, typed value) triple stored in
// the container's index.
type Record struct {
	// FileName is the name of the file or folder the attribute applies
	// to ("." refers to the directory itself in some containers).
	FileName string

	// Code is the 4-character attribute code, e.g. "Iloc" or "bwsp".
	Code string

	// Value is the attribute's typed payload.
	Value Value
}

// Value type tags as stored on the wire.
const (
	tagLong = "long"
	tagShor = "shor"
	tagBool = "bool"
	tagBlob = "blob"
	tagType = "type"
	tagUStr = "ustr"
	tagComp = "comp"
	tagDUtc = "dutc"
)

// decodeRecord reads one record at the cursor, leaving it exactly past
// the bytes the record occupies so the next record in the node remains
// decodable. The one exception is an unrecognized type tag: its payload
// length is undeclared, so the cursor cannot be advanced past it and the
// caller must stop decoding the containing node. The partially decoded
// record (with an Unknown value) is returned alongside ErrUnknownType.
func decodeRecord(r *binary.Reader) (Record, error) {
	var rec Record

	nameLen, err := r.ReadUint32()
	if err != nil {
		return rec, fmt.Errorf("reading filename length: %w", err)
	}
	rec.FileName, err = r.ReadUTF16(int(nameLen))
	if err != nil {
		return rec, fmt.Errorf("reading filename: %w", err)
	}

	code, err := r.ReadBytes(4)
	if err != nil {
		return rec, fmt.Errorf("reading attribute code: %w", err)
	}
	rec.Code = string(code)

	tag, err := r.ReadBytes(4)
	if err != nil {
		return rec, fmt.Errorf("reading value type tag: %w", err)
	}

	rec.Value, err = decodeValue(r, string(tag))
	if err != nil {
		return rec, fmt.Errorf("decoding %q value for %q/%s: %w",
			string(tag), rec.FileName, rec.Code, err)
	}
	return rec, nil
}

// decodeValue dispatches on the 4-character type tag and consumes exactly
// the value's payload.
func decodeValue(r *binary.Reader, tag string) (Value, error) {
	switch tag {
	case tagLong:
		v, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		return Long(v), nil

	case tagShor:
		// Stored in 4 bytes; only the low 16 bits are significant.
		v, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		return Shor(int16(v & 0xFFFF)), nil

	case tagBool:
		v, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		return Bool(v != 0), nil

	case tagBlob:
		n, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		raw, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, err
		}
		return Blob(raw), nil

	case tagType:
		raw, err := r.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		return TypeTag(raw), nil

	case tagUStr:
		n, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		s, err := r.ReadUTF16(int(n))
		if err != nil {
			return nil, err
		}
		return UStr(s), nil

	case tagComp:
		v, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		return Comp(v), nil

	case tagDUtc:
		v, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		return DUtc(v), nil

	default:
		return Unknown{Tag: tag}, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}
}
