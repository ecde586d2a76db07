// Package binio reads and writes typed binary values through a stream.Window.
//
// Reader and Writer carry an Endianness and a default text Encoding. Every
// other piece of state lives in the window: values are read and written at
// its cursor, which they advance.
//
// The set of values that can be read or written by Kind is closed. ReadByType
// and WriteByType dispatch over it with a single switch, and the generic Read
// and Write helpers resolve their type parameter to a Kind without reflection.
package binio

import (
	"fmt"
	"strings"

	apperrors "github.com/FocuswithJustin/winstream/core/errors"
)

// Endianness selects the byte order of multi-byte integers.
type Endianness int

const (
	// LittleEndian stores the least significant byte first.
	LittleEndian Endianness = iota
	// BigEndian stores the most significant byte first.
	BigEndian
)

// String returns the byte order name.
func (e Endianness) String() string {
	switch e {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return fmt.Sprintf("endianness(%d)", int(e))
	}
}

// ParseEndianness parses "little"/"le" or "big"/"be".
func ParseEndianness(s string) (Endianness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "little", "le", "":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	}
	return LittleEndian, apperrors.NewValidation("endianness", fmt.Sprintf("unknown byte order %q", s))
}

// Kind identifies a value that can be read or written by type.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindChar   // one character in the text encoding
	KindString // null-terminated string in the text encoding
)

var kindNames = map[Kind]string{
	KindInt8:   "int8",
	KindUint8:  "uint8",
	KindInt16:  "int16",
	KindUint16: "uint16",
	KindInt32:  "int32",
	KindUint32: "uint32",
	KindInt64:  "int64",
	KindUint64: "uint64",
	KindChar:   "char",
	KindString: "string",
}

var kindAliases = map[string]Kind{
	"i8": KindInt8, "u8": KindUint8, "byte": KindUint8,
	"i16": KindInt16, "u16": KindUint16,
	"i32": KindInt32, "u32": KindUint32,
	"i64": KindInt64, "u64": KindUint64,
	"str": KindString, "str0": KindString,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Size returns the encoded width of integer kinds, and 0 for the others.
func (k Kind) Size() int {
	switch k {
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32:
		return 4
	case KindInt64, KindUint64:
		return 8
	default:
		return 0
	}
}

// IsInteger reports whether k is one of the fixed-width integer kinds.
func (k Kind) IsInteger() bool {
	return k.Size() > 0
}

// Signed reports whether k is a signed integer kind.
func (k Kind) Signed() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	default:
		return false
	}
}

// ParseKind accepts the kind names ("uint16") and short aliases ("u16").
func ParseKind(name string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if k, ok := kindAliases[key]; ok {
		return k, nil
	}
	for k, n := range kindNames {
		if n == key {
			return k, nil
		}
	}
	return KindInvalid, apperrors.NewUnsupported("kind", fmt.Sprintf("%q is not a known kind", name))
}

func unsupportedKind(k Kind) error {
	return apperrors.NewUnsupported("kind", fmt.Sprintf("%s has no read/write mapping", k))
}

// Char is a single character, distinct from int32 so that it selects
// KindChar in the generic helpers.
type Char rune

// Value lists the Go types that map onto a Kind.
type Value interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | Char | string
}

// KindOf returns the Kind for T.
func KindOf[T Value]() Kind {
	var zero T
	switch any(zero).(type) {
	case int8:
		return KindInt8
	case uint8:
		return KindUint8
	case int16:
		return KindInt16
	case uint16:
		return KindUint16
	case int32:
		return KindInt32
	case uint32:
		return KindUint32
	case int64:
		return KindInt64
	case uint64:
		return KindUint64
	case Char:
		return KindChar
	case string:
		return KindString
	}
	return KindInvalid
}

// Read reads a T through the ReadByType table.
func Read[T Value](r *Reader) (T, error) {
	var zero T
	v, err := r.ReadByType(KindOf[T]())
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Write writes v through the WriteByType table.
func Write[T Value](w *Writer, v T) error {
	return w.WriteByType(KindOf[T](), v)
}
