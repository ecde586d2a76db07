package layout

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/winstream/core/binio"
	"github.com/FocuswithJustin/winstream/core/encoding"
	apperrors "github.com/FocuswithJustin/winstream/core/errors"
)

// Field is one decoded value.
type Field struct {
	Name   string
	Offset int64 // window position the field started at
	Value  any
}

// String formats the value for display. Text is escaped onto one line and
// bytes are shown as hex.
func (f Field) String() string {
	switch v := f.Value.(type) {
	case string:
		return fmt.Sprintf("%q", encoding.EscapeControl(v))
	case binio.Char:
		return fmt.Sprintf("'%s'", encoding.EscapeControl(string(rune(v))))
	case []byte:
		return hex.EncodeToString(v)
	default:
		return fmt.Sprint(v)
	}
}

// Record is the decoded form of a layout, in field order.
type Record []Field

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Map returns the record keyed by field name.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Name] = f.Value
	}
	return m
}

// Decode reads one record at the reader's cursor. Byte order and encoding
// directives apply until the end of the layout; the reader's own settings
// are restored afterwards. On error the fields decoded so far are returned.
func (l *Layout) Decode(r *binio.Reader) (Record, error) {
	defer func(order binio.Endianness, enc encoding.Encoding) {
		r.Endianness, r.Encoding = order, enc
	}(r.Endianness, r.Encoding)

	w := r.Stream()
	rec := make(Record, 0, len(l.Steps))
	for _, s := range l.Steps {
		switch s.Op {
		case OpOrder:
			r.Endianness = s.Endianness
		case OpEncoding:
			r.Encoding = s.Encoding
		case OpPad, OpAlignAbsolute:
			if err := r.ReadPadding(s.Count, s.Op == OpAlignAbsolute); err != nil {
				return rec, stepError(s, err)
			}
		case OpSkip:
			if _, err := r.ReadBytes(s.Count); err != nil {
				return rec, stepError(s, err)
			}
		case OpField:
			pos, err := w.Position()
			if err != nil {
				return rec, err
			}
			v, err := decodeField(r, s)
			if err != nil {
				return rec, stepError(s, err)
			}
			rec = append(rec, Field{Name: s.Name, Offset: pos, Value: v})
		}
	}
	return rec, nil
}

func decodeField(r *binio.Reader, s Step) (any, error) {
	switch s.Type {
	case TypeFixedString:
		text, err := r.ReadFixedString(s.Count, nil)
		if err != nil {
			return nil, err
		}
		if i := strings.IndexByte(text, 0); i >= 0 {
			text = text[:i]
		}
		return text, nil
	case TypeSizedString:
		return r.ReadSizedString(s.Kind, nil)
	case TypeBytes:
		return r.ReadBytes(s.Count)
	default:
		return r.ReadByType(s.Kind)
	}
}

// Encode writes one record at the writer's cursor, taking field values from
// values by name. Gap items are written as zero bytes.
func (l *Layout) Encode(w *binio.Writer, values map[string]any) error {
	defer func(order binio.Endianness, enc encoding.Encoding) {
		w.Endianness, w.Encoding = order, enc
	}(w.Endianness, w.Encoding)

	for _, s := range l.Steps {
		var err error
		switch s.Op {
		case OpOrder:
			w.Endianness = s.Endianness
		case OpEncoding:
			w.Encoding = s.Encoding
		case OpPad, OpAlignAbsolute:
			err = w.WritePadding(0, s.Count, s.Op == OpAlignAbsolute)
		case OpSkip:
			err = w.WriteRepeated(0, int64(s.Count))
		case OpField:
			v, ok := values[s.Name]
			if !ok {
				return apperrors.NewNotFound("field", s.Name)
			}
			err = encodeField(w, s, v)
		}
		if err != nil {
			return stepError(s, err)
		}
	}
	return nil
}

func encodeField(w *binio.Writer, s Step, v any) error {
	switch s.Type {
	case TypeFixedString:
		text, ok := v.(string)
		if !ok {
			return apperrors.NewInvalidCast(v, "string")
		}
		return w.WriteFixedString(text, s.Count, false, nil)
	case TypeSizedString:
		text, ok := v.(string)
		if !ok {
			return apperrors.NewInvalidCast(v, "string")
		}
		return w.WriteSizedString(text, s.Kind, false, nil, -1)
	case TypeBytes:
		b, ok := v.([]byte)
		if !ok || len(b) > s.Count {
			return apperrors.NewInvalidCast(v, fmt.Sprintf("bytes[%d]", s.Count))
		}
		if err := w.WriteBytes(b); err != nil {
			return err
		}
		return w.WriteRepeated(0, int64(s.Count-len(b)))
	default:
		return w.WriteByType(s.Kind, v)
	}
}

func stepError(s Step, err error) error {
	return apperrors.Wrap(err, s.Source)
}
