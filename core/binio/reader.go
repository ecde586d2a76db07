package binio

import (
	"encoding/binary"
	"io"
	"math"
	"strings"

	"github.com/FocuswithJustin/winstream/core/encoding"
	apperrors "github.com/FocuswithJustin/winstream/core/errors"
	"github.com/FocuswithJustin/winstream/core/stream"
)

// Reader decodes typed values from a window.
type Reader struct {
	// Endianness is the byte order of multi-byte integers. A value other
	// than LittleEndian or BigEndian makes integer reads of two bytes or
	// more return all bits set instead of failing.
	Endianness Endianness

	// Encoding is the text encoding used when a call passes nil.
	Encoding encoding.Encoding

	w *stream.Window
}

// NewReader returns a little-endian, UTF-8 reader over w.
func NewReader(w *stream.Window) *Reader {
	return &Reader{
		Endianness: LittleEndian,
		Encoding:   encoding.UTF8,
		w:          w,
	}
}

// Stream returns the window being read.
func (r *Reader) Stream() *stream.Window {
	return r.w
}

func (r *Reader) encodingOr(enc encoding.Encoding) encoding.Encoding {
	if enc != nil {
		return enc
	}
	if r.Encoding != nil {
		return r.Encoding
	}
	return encoding.UTF8
}

func (r *Reader) remaining() (int64, error) {
	pos, err := r.w.Position()
	if err != nil {
		return 0, err
	}
	length, err := r.w.Length()
	if err != nil {
		return 0, err
	}
	return length - pos, nil
}

// ReadBytes reads exactly n bytes. If fewer remain nothing is consumed and
// ErrEndOfStream is returned.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, apperrors.NewRange("count", int64(n), 0, -1)
	}
	left, err := r.remaining()
	if err != nil {
		return nil, err
	}
	if int64(n) > left {
		return nil, apperrors.ErrEndOfStream
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.w, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readFixed reads an unsigned integer of size bytes in the reader's byte
// order.
func (r *Reader) readFixed(size int) (uint64, error) {
	buf, err := r.ReadBytes(size)
	if err != nil {
		return 0, err
	}
	if size == 1 {
		return uint64(buf[0]), nil
	}
	switch r.Endianness {
	case LittleEndian:
		switch size {
		case 2:
			return uint64(binary.LittleEndian.Uint16(buf)), nil
		case 4:
			return uint64(binary.LittleEndian.Uint32(buf)), nil
		default:
			return binary.LittleEndian.Uint64(buf), nil
		}
	case BigEndian:
		switch size {
		case 2:
			return uint64(binary.BigEndian.Uint16(buf)), nil
		case 4:
			return uint64(binary.BigEndian.Uint32(buf)), nil
		default:
			return binary.BigEndian.Uint64(buf), nil
		}
	default:
		return math.MaxUint64 >> (64 - 8*size), nil
	}
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() (uint8, error) {
	v, err := r.readFixed(1)
	return uint8(v), err
}

// ReadInt8 reads one signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.readFixed(1)
	return int8(v), err
}

// ReadUint16 reads a 16-bit unsigned integer.
func (r *Reader) ReadUint16() (uint16, error) {
	v, err := r.readFixed(2)
	return uint16(v), err
}

// ReadInt16 reads a 16-bit signed integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.readFixed(2)
	return int16(v), err
}

// ReadUint32 reads a 32-bit unsigned integer.
func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.readFixed(4)
	return uint32(v), err
}

// ReadInt32 reads a 32-bit signed integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.readFixed(4)
	return int32(v), err
}

// ReadUint64 reads a 64-bit unsigned integer.
func (r *Reader) ReadUint64() (uint64, error) {
	return r.readFixed(8)
}

// ReadInt64 reads a 64-bit signed integer.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.readFixed(8)
	return int64(v), err
}

// ReadChar decodes one character. A nil enc selects the reader's encoding.
// A character cut short by the window end yields ErrEndOfStream.
func (r *Reader) ReadChar(enc encoding.Encoding) (rune, error) {
	enc = r.encodingOr(enc)
	buf := make([]byte, 0, enc.MaxRuneLen())
	for {
		b, err := r.w.ReadByte()
		if err != nil {
			return 0, err
		}
		buf = append(buf, b)
		ch, size, err := enc.DecodeRune(buf)
		if err == encoding.ErrIncomplete {
			continue
		}
		if err != nil {
			return 0, err
		}
		if extra := len(buf) - size; extra > 0 {
			if _, err := r.w.Seek(int64(-extra), io.SeekCurrent); err != nil {
				return 0, err
			}
		}
		return ch, nil
	}
}

// ReadChars decodes n characters.
func (r *Reader) ReadChars(n int, enc encoding.Encoding) (string, error) {
	if n < 0 {
		return "", apperrors.NewRange("count", int64(n), 0, -1)
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		ch, err := r.ReadChar(enc)
		if err != nil {
			return sb.String(), err
		}
		sb.WriteRune(ch)
	}
	return sb.String(), nil
}

// ReadString decodes characters up to a null character. The terminator is
// consumed but not returned. Reaching the window end first yields
// ErrEndOfStream.
func (r *Reader) ReadString(enc encoding.Encoding) (string, error) {
	enc = r.encodingOr(enc)
	var sb strings.Builder
	for {
		ch, err := r.ReadChar(enc)
		if err != nil {
			return sb.String(), err
		}
		if ch == 0 {
			return sb.String(), nil
		}
		sb.WriteRune(ch)
	}
}

// ReadFixedString decodes exactly byteCount bytes. Null characters are kept.
func (r *Reader) ReadFixedString(byteCount int, enc encoding.Encoding) (string, error) {
	buf, err := r.ReadBytes(byteCount)
	if err != nil {
		return "", err
	}
	return encoding.DecodeString(r.encodingOr(enc), buf)
}

// ReadSizedString reads a byte count of sizeKind, then that many bytes of
// text.
func (r *Reader) ReadSizedString(sizeKind Kind, enc encoding.Encoding) (string, error) {
	size, err := r.readSize(sizeKind)
	if err != nil {
		return "", err
	}
	return r.ReadFixedString(size, enc)
}

func (r *Reader) readSize(kind Kind) (int, error) {
	if !kind.IsInteger() {
		return 0, unsupportedKind(kind)
	}
	raw, err := r.readFixed(kind.Size())
	if err != nil {
		return 0, err
	}
	var size int64
	if kind.Signed() {
		shift := 64 - 8*kind.Size()
		size = int64(raw<<shift) >> shift
	} else if raw > math.MaxInt64 {
		return 0, apperrors.NewRange("size", -1, 0, math.MaxInt64)
	} else {
		size = int64(raw)
	}
	if size < 0 || size > math.MaxInt32 {
		return 0, apperrors.NewRange("size", size, 0, math.MaxInt32)
	}
	return int(size), nil
}

// ReadByType reads one value of kind. The dynamic type of the result is
// the Go type listed in Value for that kind.
func (r *Reader) ReadByType(kind Kind) (any, error) {
	switch kind {
	case KindInt8:
		return r.ReadInt8()
	case KindUint8:
		return r.ReadUint8()
	case KindInt16:
		return r.ReadInt16()
	case KindUint16:
		return r.ReadUint16()
	case KindInt32:
		return r.ReadInt32()
	case KindUint32:
		return r.ReadUint32()
	case KindInt64:
		return r.ReadInt64()
	case KindUint64:
		return r.ReadUint64()
	case KindChar:
		ch, err := r.ReadChar(nil)
		return Char(ch), err
	case KindString:
		return r.ReadString(nil)
	default:
		return nil, unsupportedKind(kind)
	}
}

// ReadPadding skips bytes until the position is a multiple of multiple.
// With absolute set the store position is aligned instead of the window
// position. A multiple of 0 or 1 does nothing.
func (r *Reader) ReadPadding(multiple int, absolute bool) error {
	n, err := paddingNeeded(r.w, multiple, absolute)
	if err != nil || n == 0 {
		return err
	}
	left, err := r.remaining()
	if err != nil {
		return err
	}
	if n > left {
		return apperrors.ErrEndOfStream
	}
	_, err = r.w.Seek(n, io.SeekCurrent)
	return err
}

// paddingNeeded returns how many bytes move the cursor to the next multiple.
func paddingNeeded(w *stream.Window, multiple int, absolute bool) (int64, error) {
	if multiple < 0 {
		return 0, apperrors.NewRange("multiple", int64(multiple), 0, -1)
	}
	var ref int64
	var err error
	if absolute {
		ref, err = w.AbsolutePosition()
	} else {
		ref, err = w.Position()
	}
	if err != nil {
		return 0, err
	}
	if multiple <= 1 {
		return 0, nil
	}
	rem := ref % int64(multiple)
	if rem == 0 {
		return 0, nil
	}
	return int64(multiple) - rem, nil
}
