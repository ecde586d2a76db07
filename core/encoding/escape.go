package encoding

import (
	"fmt"
	"strings"
	"unicode"
)

var controlReplacer = strings.NewReplacer(
	"\\", "\\\\",
	"\x00", "\\0",
	"\n", "\\n",
	"\r", "\\r",
	"\t", "\\t",
)

// EscapeControl escapes backslashes and control characters so decoded text
// can be printed on one line. Named escapes are used for NUL, newline,
// carriage return and tab; other control characters become \xNN or \uNNNN.
func EscapeControl(s string) string {
	s = controlReplacer.Replace(s)
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		switch {
		case !unicode.IsControl(r):
			sb.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&sb, "\\x%02x", r)
		default:
			fmt.Fprintf(&sb, "\\u%04x", r)
		}
	}
	return sb.String()
}
