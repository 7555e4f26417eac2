package dsstore

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the decoded representation of a record value.
type Kind uint8

const (
	KindLong    Kind = iota // signed 32-bit integer
	KindShor                // signed 16-bit integer, stored padded to 4 bytes
	KindBool                // single byte, nonzero is true
	KindBlob                // length-prefixed raw bytes
	KindType                // 4-character type tag
	KindUStr                // UTF-16BE string
	KindComp                // opaque 8-byte value
	KindDUtc                // 8-byte date, 1/65536 s since 1904-01-01 UTC
	KindUnknown             // unrecognized type tag
)

var kindNames = [...]string{"long", "shor", "bool", "blob", "type", "ustr", "comp", "dutc", "unknown"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Value is the typed payload of a record: a closed union over the value
// encodings the container defines, plus Unknown for unrecognized tags.
// All implementations are immutable value types.
type Value interface {
	Kind() Kind
	// String renders the value for human-readable dumps.
	String() string

	isValue()
}

// Long is a signed 32-bit integer ('long').
type Long int32

func (Long) Kind() Kind       { return KindLong }
func (Long) isValue()         {}
func (v Long) String() string { return strconv.FormatInt(int64(v), 10) }

// Shor is a signed 16-bit integer ('shor'). The container stores it in a
// 4-byte field whose high half is ignored.
type Shor int16

func (Shor) Kind() Kind       { return KindShor }
func (Shor) isValue()         {}
func (v Shor) String() string { return strconv.FormatInt(int64(v), 10) }

// Bool is a single-byte boolean ('bool').
type Bool bool

func (Bool) Kind() Kind       { return KindBool }
func (Bool) isValue()         {}
func (v Bool) String() string { return strconv.FormatBool(bool(v)) }

// Blob is an opaque length-prefixed byte sequence ('blob').
type Blob []byte

func (Blob) Kind() Kind { return KindBlob }
func (Blob) isValue()   {}
func (v Blob) String() string {
	return fmt.Sprintf("<%d bytes> %x", len(v), []byte(v))
}

// TypeTag is a 4-character tag kept as a value ('type').
type TypeTag string

func (TypeTag) Kind() Kind       { return KindType }
func (TypeTag) isValue()         {}
func (v TypeTag) String() string { return string(v) }

// UStr is a UTF-16BE string value ('ustr').
type UStr string

func (UStr) Kind() Kind       { return KindUStr }
func (UStr) isValue()         {}
func (v UStr) String() string { return string(v) }

// Comp is an opaque 8-byte value ('comp').
type Comp uint64

func (Comp) Kind() Kind       { return KindComp }
func (Comp) isValue()         {}
func (v Comp) String() string { return fmt.Sprintf("0x%016x", uint64(v)) }

// DUtc is a date value ('dutc'): 1/65536-second intervals since
// 1904-01-01 00:00:00 UTC.
type DUtc uint64

func (DUtc) Kind() Kind { return KindDUtc }
func (DUtc) isValue()   {}

// macEpoch is the zero point of 'dutc' timestamps.
var macEpoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// Time converts the raw tick count to a time.Time.
func (v DUtc) Time() time.Time {
	secs := int64(v >> 16)
	frac := int64(v&0xFFFF) * int64(time.Second) / 65536
	return macEpoch.Add(time.Duration(secs)*time.Second + time.Duration(frac))
}

func (v DUtc) String() string { return v.Time().UTC().Format(time.RFC3339) }

// Unknown preserves the raw tag of a value whose type is not in the known
// table. Its payload length is undeclared, so no bytes can be attributed
// to it; decoding of the containing node stops at this point.
type Unknown struct {
	Tag string
}

func (Unknown) Kind() Kind       { return KindUnknown }
func (Unknown) isValue()         {}
func (v Unknown) String() string { return fmt.Sprintf("<unknown type %q>", v.Tag) }
