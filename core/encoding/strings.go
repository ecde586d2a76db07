package encoding

import (
	"strings"
	"unicode/utf8"
)

// Terminator returns the encoded null character for enc.
func Terminator(enc Encoding) []byte {
	out, err := enc.AppendRune(nil, 0)
	if err != nil || len(out) == 0 {
		return []byte{0}
	}
	return out
}

// EncodeString encodes s character by character.
func EncodeString(enc Encoding, s string) ([]byte, error) {
	return AppendString(make([]byte, 0, len(s)), enc, s)
}

// AppendString appends the encoded form of s to dst.
func AppendString(dst []byte, enc Encoding, s string) ([]byte, error) {
	if enc == UTF8 {
		return append(dst, s...), nil
	}
	var err error
	for _, r := range s {
		if dst, err = enc.AppendRune(dst, r); err != nil {
			return dst, err
		}
	}
	return dst, nil
}

// AppendTruncated appends as many whole characters of s as fit in limit
// bytes. A character that would not fit entirely is dropped along with
// everything after it, so a multi-byte character is never split.
func AppendTruncated(dst []byte, enc Encoding, s string, limit int) ([]byte, error) {
	if limit <= 0 {
		return dst, nil
	}
	start := len(dst)
	var scratch [8]byte
	for _, r := range s {
		encoded, err := enc.AppendRune(scratch[:0], r)
		if err != nil {
			return dst, err
		}
		if len(dst)-start+len(encoded) > limit {
			break
		}
		dst = append(dst, encoded...)
	}
	return dst, nil
}

// DecodeString decodes all of p. A trailing partial character decodes to
// utf8.RuneError.
func DecodeString(enc Encoding, p []byte) (string, error) {
	if enc == UTF8 && utf8.Valid(p) {
		return string(p), nil
	}
	var sb strings.Builder
	for len(p) > 0 {
		r, size, err := enc.DecodeRune(p)
		if err == ErrIncomplete {
			sb.WriteRune(utf8.RuneError)
			break
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteRune(r)
		p = p[size:]
	}
	return sb.String(), nil
}
