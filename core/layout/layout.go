// Package layout describes binary records with a small text language and
// decodes or encodes them through binio.
//
// A layout is a sequence of items separated by whitespace or semicolons.
// Fields are written name:type. Supported types:
//
//	u8 i8 u16 i16 u32 i32 u64 i64   fixed-width integers
//	char                            one character
//	str                             null-terminated string
//	str[N]                          N-byte string, trailing nulls trimmed
//	pstr(K)                         string prefixed by a K-typed byte count
//	bytes[N]                        N raw bytes
//
// Unnamed items change how the rest of the record is read:
//
//	le, be          byte order
//	enc("name")     text encoding
//	pad(N)          align the window position to N
//	apad(N)         align the store position to N
//	skip(N)         skip N bytes
//
// A # starts a comment that runs to the end of the line.
package layout

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/winstream/core/binio"
	"github.com/FocuswithJustin/winstream/core/encoding"
	apperrors "github.com/FocuswithJustin/winstream/core/errors"
)

// Op is the kind of a layout step.
type Op int

const (
	OpField Op = iota
	OpOrder
	OpEncoding
	OpPad
	OpAlignAbsolute
	OpSkip
)

// FieldType is the shape of a field's value.
type FieldType int

const (
	TypeScalar      FieldType = iota // a binio.Kind
	TypeFixedString                  // str[N]
	TypeSizedString                  // pstr(K)
	TypeBytes                        // bytes[N]
)

// Step is one compiled layout item.
type Step struct {
	Op   Op
	Name string

	Type FieldType
	// Kind is the scalar kind for TypeScalar and the prefix kind for
	// TypeSizedString.
	Kind binio.Kind
	// Count is the byte count of str[N], bytes[N] and the gap items.
	Count int

	Endianness binio.Endianness
	Encoding   encoding.Encoding

	// Source is the item as written, for error messages.
	Source string
}

// Layout is a compiled record description.
type Layout struct {
	Steps []Step
}

// Parse compiles a layout. Field names must be unique, types must be known
// and encodings must resolve through encoding.Lookup.
func Parse(src string) (*Layout, error) {
	if strings.TrimSpace(src) == "" {
		return nil, apperrors.NewValidation("layout", "empty layout")
	}
	tree, err := layoutParser.ParseString("", src)
	if err != nil {
		return nil, apperrors.NewParse("layout", "", err.Error())
	}

	l := &Layout{Steps: make([]Step, 0, len(tree.Items))}
	seen := make(map[string]bool)
	for _, it := range tree.Items {
		step, err := compileItem(it)
		if err != nil {
			return nil, apperrors.Wrapf(err, "%s", it.Pos)
		}
		if step.Op == OpField {
			if seen[step.Name] {
				return nil, apperrors.NewValidation(step.Name, fmt.Sprintf("%s: duplicate field", it.Pos))
			}
			seen[step.Name] = true
		}
		l.Steps = append(l.Steps, step)
	}
	return l, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) *Layout {
	l, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return l
}

func compileItem(it *itemNode) (Step, error) {
	switch {
	case it.Order != nil:
		order, err := binio.ParseEndianness(*it.Order)
		return Step{Op: OpOrder, Endianness: order, Source: *it.Order}, err
	case it.Encoding != nil:
		enc, err := encoding.Lookup(*it.Encoding)
		return Step{Op: OpEncoding, Encoding: enc, Source: fmt.Sprintf("enc(%q)", *it.Encoding)}, err
	case it.Gap != nil:
		return compileGap(it.Gap)
	default:
		return compileField(it.Field)
	}
}

func compileGap(g *gapNode) (Step, error) {
	step := Step{Count: g.Count, Source: fmt.Sprintf("%s(%d)", g.Op, g.Count)}
	switch g.Op {
	case "pad":
		step.Op = OpPad
	case "apad":
		step.Op = OpAlignAbsolute
	default:
		step.Op = OpSkip
	}
	return step, nil
}

func compileField(f *fieldNode) (Step, error) {
	t := f.Type
	step := Step{Op: OpField, Name: f.Name, Source: f.Name + ":" + t.Name}
	switch t.Name {
	case "str":
		if t.Count != nil {
			step.Type = TypeFixedString
			step.Count = *t.Count
			step.Source += fmt.Sprintf("[%d]", *t.Count)
			return step, nil
		}
		step.Kind = binio.KindString
	case "bytes":
		if t.Count == nil {
			return step, apperrors.NewValidation(f.Name, "bytes needs a count, as in bytes[4]")
		}
		step.Type = TypeBytes
		step.Count = *t.Count
		step.Source += fmt.Sprintf("[%d]", *t.Count)
		return step, nil
	case "pstr":
		if t.Param == nil {
			return step, apperrors.NewValidation(f.Name, "pstr needs a size type, as in pstr(u16)")
		}
		kind, err := binio.ParseKind(*t.Param)
		if err != nil {
			return step, err
		}
		if !kind.IsInteger() {
			return step, apperrors.NewValidation(f.Name, fmt.Sprintf("pstr size type %s is not an integer", kind))
		}
		step.Type = TypeSizedString
		step.Kind = kind
		step.Source += "(" + *t.Param + ")"
		return step, nil
	default:
		kind, err := binio.ParseKind(t.Name)
		if err != nil {
			return step, err
		}
		step.Kind = kind
	}
	if t.Count != nil || t.Param != nil {
		return step, apperrors.NewValidation(f.Name, fmt.Sprintf("%s takes no argument", t.Name))
	}
	step.Type = TypeScalar
	return step, nil
}

// Fields returns the field names in layout order.
func (l *Layout) Fields() []string {
	var names []string
	for _, s := range l.Steps {
		if s.Op == OpField {
			names = append(names, s.Name)
		}
	}
	return names
}

// String renders the layout in its canonical form.
func (l *Layout) String() string {
	parts := make([]string, len(l.Steps))
	for i, s := range l.Steps {
		parts[i] = s.Source
	}
	return strings.Join(parts, "; ")
}
