package binio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/FocuswithJustin/winstream/core/encoding"
	apperrors "github.com/FocuswithJustin/winstream/core/errors"
	"github.com/FocuswithJustin/winstream/core/stream"
)

// repeatChunkSize bounds the buffer used by WriteRepeated.
const repeatChunkSize = 64 * 1024

// Writer encodes typed values into a window.
type Writer struct {
	// Endianness is the byte order of multi-byte integers. Writing a
	// multi-byte integer with any other value fails with ErrUnsupported.
	Endianness Endianness

	// Encoding is the text encoding used when a call passes nil.
	Encoding encoding.Encoding

	w *stream.Window
}

// NewWriter returns a little-endian, UTF-8 writer over w.
func NewWriter(w *stream.Window) *Writer {
	return &Writer{
		Endianness: LittleEndian,
		Encoding:   encoding.UTF8,
		w:          w,
	}
}

// Stream returns the window being written.
func (w *Writer) Stream() *stream.Window {
	return w.w
}

func (w *Writer) encodingOr(enc encoding.Encoding) encoding.Encoding {
	if enc != nil {
		return enc
	}
	if w.Encoding != nil {
		return w.Encoding
	}
	return encoding.UTF8
}

// WriteBytes writes all of p at the cursor.
func (w *Writer) WriteBytes(p []byte) error {
	_, err := w.w.Write(p)
	return err
}

// writeFixed writes the low size bytes of v in the writer's byte order.
func (w *Writer) writeFixed(size int, v uint64) error {
	if size == 1 {
		return w.w.WriteByte(byte(v))
	}
	var order binary.AppendByteOrder
	switch w.Endianness {
	case LittleEndian:
		order = binary.LittleEndian
	case BigEndian:
		order = binary.BigEndian
	default:
		return apperrors.NewUnsupported("endianness", fmt.Sprintf("cannot write with %s", w.Endianness))
	}
	var scratch [8]byte
	var buf []byte
	switch size {
	case 2:
		buf = order.AppendUint16(scratch[:0], uint16(v))
	case 4:
		buf = order.AppendUint32(scratch[:0], uint32(v))
	default:
		buf = order.AppendUint64(scratch[:0], v)
	}
	return w.WriteBytes(buf)
}

// WriteUint8 writes one byte.
func (w *Writer) WriteUint8(v uint8) error { return w.writeFixed(1, uint64(v)) }

// WriteInt8 writes one signed byte.
func (w *Writer) WriteInt8(v int8) error { return w.writeFixed(1, uint64(v)) }

// WriteUint16 writes a 16-bit unsigned integer.
func (w *Writer) WriteUint16(v uint16) error { return w.writeFixed(2, uint64(v)) }

// WriteInt16 writes a 16-bit signed integer.
func (w *Writer) WriteInt16(v int16) error { return w.writeFixed(2, uint64(v)) }

// WriteUint32 writes a 32-bit unsigned integer.
func (w *Writer) WriteUint32(v uint32) error { return w.writeFixed(4, uint64(v)) }

// WriteInt32 writes a 32-bit signed integer.
func (w *Writer) WriteInt32(v int32) error { return w.writeFixed(4, uint64(v)) }

// WriteUint64 writes a 64-bit unsigned integer.
func (w *Writer) WriteUint64(v uint64) error { return w.writeFixed(8, v) }

// WriteInt64 writes a 64-bit signed integer.
func (w *Writer) WriteInt64(v int64) error { return w.writeFixed(8, uint64(v)) }

// WriteChar encodes one character.
func (w *Writer) WriteChar(ch rune, enc encoding.Encoding) error {
	var scratch [8]byte
	buf, err := w.encodingOr(enc).AppendRune(scratch[:0], ch)
	if err != nil {
		return err
	}
	return w.WriteBytes(buf)
}

// WriteRepeated writes b count times, in chunks.
func (w *Writer) WriteRepeated(b byte, count int64) error {
	if count < 0 {
		return apperrors.NewRange("count", count, 0, -1)
	}
	if count == 0 {
		return nil
	}
	chunk := bytes.Repeat([]byte{b}, int(min(count, repeatChunkSize)))
	for count > 0 {
		n := min(count, int64(len(chunk)))
		if err := w.WriteBytes(chunk[:n]); err != nil {
			return err
		}
		count -= n
	}
	return nil
}

// WriteUntilLength appends fill at the window end until the window is
// target bytes long. The cursor always ends at the window end, so at
// max(length, target).
func (w *Writer) WriteUntilLength(fill byte, target int64) error {
	if target < 0 {
		return apperrors.NewRange("length", target, 0, -1)
	}
	length, err := w.w.Length()
	if err != nil {
		return err
	}
	if _, err := w.w.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	if length >= target {
		return nil
	}
	return w.WriteRepeated(fill, target-length)
}

// WritePadding writes fill until the position is a multiple of multiple.
// With absolute set the store position is aligned instead of the window
// position. A multiple of 0 or 1 does nothing.
func (w *Writer) WritePadding(fill byte, multiple int, absolute bool) error {
	n, err := paddingNeeded(w.w, multiple, absolute)
	if err != nil {
		return err
	}
	return w.WriteRepeated(fill, n)
}

// WriteString encodes text, followed by the encoded null character when
// terminated is set.
func (w *Writer) WriteString(text string, terminated bool, enc encoding.Encoding) error {
	enc = w.encodingOr(enc)
	buf, err := encoding.EncodeString(enc, text)
	if err != nil {
		return err
	}
	if terminated {
		buf = append(buf, encoding.Terminator(enc)...)
	}
	return w.WriteBytes(buf)
}

// WriteStringPadded writes text into a null-terminated field of exactly
// maxSize bytes in the writer's encoding.
func (w *Writer) WriteStringPadded(text string, maxSize int) error {
	return w.WriteFixedString(text, maxSize, true, nil)
}

// WriteFixedString writes text into a field of exactly size bytes. Whole
// characters that do not fit are dropped. With terminated set, room for the
// null character is reserved first. The rest of the field is zero-filled.
func (w *Writer) WriteFixedString(text string, size int, terminated bool, enc encoding.Encoding) error {
	if size < 0 {
		return apperrors.NewRange("size", int64(size), 0, -1)
	}
	enc = w.encodingOr(enc)
	var term []byte
	if terminated {
		term = encoding.Terminator(enc)
	}
	buf, err := encoding.AppendTruncated(make([]byte, 0, size), enc, text, size-len(term))
	if err != nil {
		return err
	}
	if len(buf)+len(term) <= size {
		buf = append(buf, term...)
	}
	if err := w.WriteBytes(buf); err != nil {
		return err
	}
	return w.WriteRepeated(0, int64(size-len(buf)))
}

// WriteSizedString writes the encoded byte count of text as a sizeKind
// integer, then the text. A maxSize of zero or more caps the text bytes,
// terminator included; a negative maxSize leaves it uncapped. The count
// covers the terminator when one is written.
func (w *Writer) WriteSizedString(text string, sizeKind Kind, terminated bool, enc encoding.Encoding, maxSize int) error {
	if !sizeKind.IsInteger() {
		return unsupportedKind(sizeKind)
	}
	enc = w.encodingOr(enc)
	var buf []byte
	var err error
	if maxSize < 0 {
		buf, err = encoding.EncodeString(enc, text)
	} else {
		buf, err = encoding.AppendTruncated(nil, enc, text, maxSize)
	}
	if err != nil {
		return err
	}
	if terminated {
		term := encoding.Terminator(enc)
		if maxSize < 0 || len(buf)+len(term) <= maxSize {
			buf = append(buf, term...)
		}
	}
	if err := w.WriteByType(sizeKind, len(buf)); err != nil {
		return err
	}
	return w.WriteBytes(buf)
}

// WriteByType writes value as kind. Integers of any Go type are accepted
// when they fit the kind's range; KindChar also takes a one-character
// string. Anything else fails with ErrInvalidCast.
func (w *Writer) WriteByType(kind Kind, value any) error {
	switch kind {
	case KindChar:
		ch, ok := toRune(value)
		if !ok {
			return apperrors.NewInvalidCast(value, kind.String())
		}
		return w.WriteChar(ch, nil)
	case KindString:
		s, ok := value.(string)
		if !ok {
			return apperrors.NewInvalidCast(value, kind.String())
		}
		return w.WriteString(s, true, nil)
	}
	if !kind.IsInteger() {
		return unsupportedKind(kind)
	}
	bits, ok := fitInteger(kind, value)
	if !ok {
		return apperrors.NewInvalidCast(value, kind.String())
	}
	return w.writeFixed(kind.Size(), bits)
}

// integerOf splits an integer value into its signed or unsigned form.
func integerOf(value any) (i int64, u uint64, signed, ok bool) {
	switch v := value.(type) {
	case int:
		return int64(v), 0, true, true
	case int8:
		return int64(v), 0, true, true
	case int16:
		return int64(v), 0, true, true
	case int32:
		return int64(v), 0, true, true
	case int64:
		return v, 0, true, true
	case Char:
		return int64(v), 0, true, true
	case uint:
		return 0, uint64(v), false, true
	case uint8:
		return 0, uint64(v), false, true
	case uint16:
		return 0, uint64(v), false, true
	case uint32:
		return 0, uint64(v), false, true
	case uint64:
		return 0, v, false, true
	case uintptr:
		return 0, uint64(v), false, true
	}
	return 0, 0, false, false
}

// fitInteger returns value as raw bits for kind, or false when value is not
// an integer or lies outside the kind's range.
func fitInteger(kind Kind, value any) (uint64, bool) {
	i, u, signed, ok := integerOf(value)
	if !ok {
		return 0, false
	}
	bits := uint(8 * kind.Size())
	if kind.Signed() {
		maxVal := int64(math.MaxInt64 >> (64 - bits))
		minVal := -maxVal - 1
		if signed {
			return uint64(i), i >= minVal && i <= maxVal
		}
		return u, u <= uint64(maxVal)
	}
	maxVal := uint64(math.MaxUint64 >> (64 - bits))
	if signed {
		return uint64(i), i >= 0 && uint64(i) <= maxVal
	}
	return u, u <= maxVal
}

func toRune(value any) (rune, bool) {
	if s, ok := value.(string); ok {
		r, size := utf8.DecodeRuneInString(s)
		return r, size > 0 && size == len(s) && r != utf8.RuneError
	}
	i, u, signed, ok := integerOf(value)
	if !ok {
		return 0, false
	}
	if !signed {
		if u > utf8.MaxRune {
			return 0, false
		}
		i = int64(u)
	}
	return rune(i), i >= 0 && utf8.ValidRune(rune(i))
}
