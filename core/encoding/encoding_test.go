package encoding

import (
	"bytes"
	"errors"
	"testing"
	"unicode/utf8"

	apperrors "github.com/FocuswithJustin/winstream/core/errors"
)

func TestRoundTripRune(t *testing.T) {
	tests := []struct {
		name  string
		enc   Encoding
		r     rune
		bytes []byte
	}{
		{"utf-8 ascii", UTF8, 'A', []byte{0x41}},
		{"utf-8 hiragana", UTF8, 'あ', []byte{0xE3, 0x81, 0x82}},
		{"utf-16le ascii", UTF16LE, 'A', []byte{0x41, 0x00}},
		{"utf-16be ascii", UTF16BE, 'A', []byte{0x00, 0x41}},
		{"utf-16le surrogate pair", UTF16LE, '😀', []byte{0x3D, 0xD8, 0x00, 0xDE}},
		{"shift_jis hiragana", ShiftJIS, 'あ', []byte{0x82, 0xA0}},
		{"shift_jis ascii", ShiftJIS, 'z', []byte{0x7A}},
		{"euc-jp hiragana", EUCJP, 'あ', []byte{0xA4, 0xA2}},
		{"latin1 e-acute", Latin1, 'é', []byte{0xE9}},
		{"windows-1252 euro", Windows1252, '€', []byte{0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.enc.AppendRune(nil, tt.r)
			if err != nil {
				t.Fatalf("AppendRune(%q) error: %v", tt.r, err)
			}
			if !bytes.Equal(got, tt.bytes) {
				t.Errorf("AppendRune(%q) = % X, want % X", tt.r, got, tt.bytes)
			}

			// Trailing bytes must not be consumed.
			input := append(append([]byte{}, tt.bytes...), 0x41, 0x41, 0x41, 0x41)
			r, size, err := tt.enc.DecodeRune(input)
			if err != nil {
				t.Fatalf("DecodeRune error: %v", err)
			}
			if r != tt.r || size != len(tt.bytes) {
				t.Errorf("DecodeRune = %q,%d want %q,%d", r, size, tt.r, len(tt.bytes))
			}
		})
	}
}

func TestDecodeRuneIncomplete(t *testing.T) {
	tests := []struct {
		name  string
		enc   Encoding
		input []byte
	}{
		{"utf-8 truncated", UTF8, []byte{0xE3, 0x81}},
		{"utf-8 empty", UTF8, nil},
		{"utf-16le half unit", UTF16LE, []byte{0x41}},
		{"utf-16le lone high surrogate", UTF16LE, []byte{0x3D, 0xD8}},
		{"shift_jis lead byte", ShiftJIS, []byte{0x82}},
		{"latin1 empty", Latin1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.enc.DecodeRune(tt.input)
			if !errors.Is(err, ErrIncomplete) {
				t.Errorf("DecodeRune(% X) error = %v, want ErrIncomplete", tt.input, err)
			}
		})
	}
}

func TestDecodeRuneLoneSurrogate(t *testing.T) {
	tests := []struct {
		name     string
		enc      Encoding
		input    []byte
		wantSize int
	}{
		{"utf-16le high then ascii", UTF16LE, []byte{0x00, 0xD8, 0x41, 0x00}, 2},
		{"utf-16le low then ascii", UTF16LE, []byte{0x00, 0xDC, 0x41, 0x00}, 2},
		{"utf-16be high then ascii", UTF16BE, []byte{0xD8, 0x00, 0x00, 0x41}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, size, err := tt.enc.DecodeRune(tt.input)
			if err != nil {
				t.Fatalf("DecodeRune(% X) error = %v", tt.input, err)
			}
			if r != utf8.RuneError || size != tt.wantSize {
				t.Errorf("DecodeRune(% X) = %U, %d; want U+FFFD, %d", tt.input, r, size, tt.wantSize)
			}
		})
	}

	got, err := DecodeString(UTF16LE, []byte{0x00, 0xD8, 0x41, 0x00, 0x42, 0x00})
	if err != nil {
		t.Fatalf("DecodeString() error = %v", err)
	}
	if got != "\uFFFDAB" {
		t.Errorf("DecodeString() = %q, want %q", got, "\uFFFDAB")
	}
}

func TestAppendRuneUnsupported(t *testing.T) {
	_, err := Latin1.AppendRune(nil, '日')
	if !errors.Is(err, apperrors.ErrUnsupported) {
		t.Errorf("AppendRune error = %v, want ErrUnsupported", err)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		label    string
		wantName string
		wantErr  error
	}{
		{"", "utf-8", nil},
		{"UTF-8", "utf-8", nil},
		{"utf8", "utf-8", nil},
		{"sjis", "shift_jis", nil},
		{"Shift_JIS", "shift_jis", nil},
		{"euc-jp", "euc-jp", nil},
		{"utf-16be", "utf-16be", nil},
		{"koi8-r", "koi8-r", nil},
		{"no-such-encoding", "", apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			enc, err := Lookup(tt.label)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Lookup(%q) error = %v, want %v", tt.label, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q) error: %v", tt.label, err)
			}
			if enc.Name() != tt.wantName {
				t.Errorf("Lookup(%q).Name() = %q, want %q", tt.label, enc.Name(), tt.wantName)
			}
		})
	}
}

func TestTerminator(t *testing.T) {
	if got := Terminator(UTF8); !bytes.Equal(got, []byte{0}) {
		t.Errorf("Terminator(UTF8) = % X", got)
	}
	if got := Terminator(UTF16LE); !bytes.Equal(got, []byte{0, 0}) {
		t.Errorf("Terminator(UTF16LE) = % X", got)
	}
}

func TestEncodeDecodeString(t *testing.T) {
	for _, enc := range []Encoding{UTF8, UTF16LE, UTF16BE, ShiftJIS, EUCJP} {
		t.Run(enc.Name(), func(t *testing.T) {
			const text = "abc あいう"
			encoded, err := EncodeString(enc, text)
			if err != nil {
				t.Fatalf("EncodeString error: %v", err)
			}
			decoded, err := DecodeString(enc, encoded)
			if err != nil {
				t.Fatalf("DecodeString error: %v", err)
			}
			if decoded != text {
				t.Errorf("round trip = %q, want %q", decoded, text)
			}
		})
	}
}

func TestDecodeStringTrailingPartial(t *testing.T) {
	got, err := DecodeString(UTF16LE, []byte{0x41, 0x00, 0x42})
	if err != nil {
		t.Fatalf("DecodeString error: %v", err)
	}
	if want := "A" + string(utf8.RuneError); got != want {
		t.Errorf("DecodeString = %q, want %q", got, want)
	}
}

func TestAppendTruncated(t *testing.T) {
	tests := []struct {
		name  string
		enc   Encoding
		text  string
		limit int
		want  []byte
	}{
		{"fits", UTF8, "ab", 4, []byte("ab")},
		{"cut before multi-byte", UTF8, "ああ", 4, []byte{0xE3, 0x81, 0x82}},
		{"exact", UTF8, "ああ", 6, []byte("ああ")},
		{"nothing fits", UTF8, "あ", 2, nil},
		{"zero limit", UTF8, "abc", 0, nil},
		{"utf-16 odd limit", UTF16LE, "AB", 3, []byte{0x41, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AppendTruncated(nil, tt.enc, tt.text, tt.limit)
			if err != nil {
				t.Fatalf("AppendTruncated error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("AppendTruncated = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestEscapeControl(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Hello World", "Hello World"},
		{"nul", "a\x00b", `a\0b`},
		{"newline and tab", "a\nb\tc", `a\nb\tc`},
		{"backslash", `a\b`, `a\\b`},
		{"bell", "\a", `\x07`},
		{"c1 control", "\u0085", `\x85`},
		{"unicode", "日本語", "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeControl(tt.input); got != tt.want {
				t.Errorf("EscapeControl(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
