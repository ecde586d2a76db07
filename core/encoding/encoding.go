// Package encoding provides the text encodings used by the binary reader and
// writer, plus helpers that work on any of them.
//
// An Encoding only knows how to turn one character into bytes and back.
// Everything else (whole strings, terminators, truncation at a character
// boundary) is built from those two operations by the free functions in this
// package.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "github.com/FocuswithJustin/winstream/core/errors"
)

// ErrIncomplete is returned by DecodeRune when p holds only the start of a
// character.
var ErrIncomplete = errors.New("incomplete character")

// Encoding converts single characters to and from bytes.
type Encoding interface {
	// Name returns the WHATWG name of the encoding (e.g. "utf-8").
	Name() string

	// DecodeRune decodes the first character of p and returns it with the
	// number of bytes it used. Invalid bytes decode to utf8.RuneError.
	DecodeRune(p []byte) (r rune, size int, err error)

	// AppendRune appends the encoded form of r to dst.
	AppendRune(dst []byte, r rune) ([]byte, error)

	// MaxRuneLen is the largest number of bytes one character can take.
	MaxRuneLen() int
}

// Predefined encodings.
var (
	UTF8        Encoding = utf8Encoding{}
	UTF16LE     Encoding = FromText("utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), 4)
	UTF16BE     Encoding = FromText("utf-16be", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), 4)
	ShiftJIS    Encoding = FromText("shift_jis", japanese.ShiftJIS, 2)
	EUCJP       Encoding = FromText("euc-jp", japanese.EUCJP, 3)
	Latin1      Encoding = FromText("iso-8859-1", charmap.ISO8859_1, 1)
	Windows1252 Encoding = FromText("windows-1252", charmap.Windows1252, 1)
)

var predefined = map[string]Encoding{
	"utf-8":        UTF8,
	"utf-16le":     UTF16LE,
	"utf-16be":     UTF16BE,
	"shift_jis":    ShiftJIS,
	"euc-jp":       EUCJP,
	"iso-8859-1":   Latin1,
	"windows-1252": Windows1252,
}

// Lookup returns the encoding with the given name or label. Labels follow
// the WHATWG Encoding Standard ("utf8", "sjis", "latin1" and so on).
func Lookup(name string) (Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return UTF8, nil
	}
	if enc, ok := predefined[key]; ok {
		return enc, nil
	}
	xenc, err := htmlindex.Get(key)
	if err != nil {
		return nil, &apperrors.NotFoundError{Resource: "encoding", ID: name, Err: err}
	}
	canonical, err := htmlindex.Name(xenc)
	if err != nil {
		return nil, &apperrors.NotFoundError{Resource: "encoding", ID: name, Err: err}
	}
	if enc, ok := predefined[canonical]; ok {
		return enc, nil
	}
	return FromText(canonical, xenc, utf8.UTFMax), nil
}

type utf8Encoding struct{}

func (utf8Encoding) Name() string { return "utf-8" }

func (utf8Encoding) MaxRuneLen() int { return utf8.UTFMax }

func (utf8Encoding) DecodeRune(p []byte) (rune, int, error) {
	if !utf8.FullRune(p) {
		return 0, 0, ErrIncomplete
	}
	r, size := utf8.DecodeRune(p)
	return r, size, nil
}

func (utf8Encoding) AppendRune(dst []byte, r rune) ([]byte, error) {
	return utf8.AppendRune(dst, r), nil
}

// textEncoding adapts a golang.org/x/text encoding.
type textEncoding struct {
	name   string
	enc    xencoding.Encoding
	maxLen int
}

// FromText wraps an x/text encoding. maxLen is the longest byte sequence a
// single character may use.
func FromText(name string, enc xencoding.Encoding, maxLen int) Encoding {
	return &textEncoding{name: name, enc: enc, maxLen: maxLen}
}

func (e *textEncoding) Name() string { return e.name }

func (e *textEncoding) MaxRuneLen() int { return e.maxLen }

// DecodeRune feeds the decoder one more byte at a time until it produces a
// character, and reports only the bytes that character used.
func (e *textEncoding) DecodeRune(p []byte) (rune, int, error) {
	dec := e.enc.NewDecoder()
	var out [2 * utf8.UTFMax]byte
	limit := min(len(p), e.maxLen)
	for n := 1; n <= limit; n++ {
		dec.Reset()
		nDst, nSrc, err := dec.Transform(out[:], p[:n], false)
		if nDst > 0 {
			r, size := utf8.DecodeRune(out[:nDst])
			if size == nDst && nSrc == n {
				return r, n, nil
			}
			// A malformed sequence can yield a replacement character and
			// the next character in one pass. Measure the first alone.
			dec.Reset()
			_, used, _ := dec.Transform(out[:size], p[:n], false)
			if used == 0 {
				used = nSrc
			}
			return r, used, nil
		}
		if err == transform.ErrShortSrc {
			continue
		}
		if err != nil {
			return 0, 0, fmt.Errorf("decode %s: %w", e.name, err)
		}
	}
	if len(p) < e.maxLen {
		return 0, 0, ErrIncomplete
	}
	return utf8.RuneError, 1, nil
}

func (e *textEncoding) AppendRune(dst []byte, r rune) ([]byte, error) {
	var src [utf8.UTFMax]byte
	n := utf8.EncodeRune(src[:], r)
	var out [8]byte
	nDst, _, err := e.enc.NewEncoder().Transform(out[:], src[:n], true)
	if err != nil {
		return dst, apperrors.NewUnsupported("character", fmt.Sprintf("%q cannot be encoded as %s", r, e.name))
	}
	return append(dst, out[:nDst]...), nil
}
