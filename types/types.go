package types

import (
	"errors"
	"fmt"
)

// FieldType classifies how safe a field is to edit.
type FieldType int

const (
	Editable     FieldType = iota + 1
	Denormalized           // derived from other fields (e.g. firepower sums); edit the sources instead
	ReadOnly
	Unknown // meaning not worked out yet
)

func (t FieldType) String() string {
	switch t {
	case Editable:
		return "editable"
	case Denormalized:
		return "denormalized"
	case ReadOnly:
		return "read-only"
	case Unknown:
		return "unknown"
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Family selects the record layout policy of a file.
type Family int

const (
	// FamilyPlain files hold one independent row per entity; the header count is the row count.
	FamilyPlain Family = iota
	// FamilyGrouped files hold runs of rows: a group row, a run-length row, the container and its contents.
	// The header counts groups, taken from the first column.
	FamilyGrouped
	// FamilyTable files are the *TB.DAT probability and simple tables. They count like plain files
	// but carry a type-name string at the end of the header.
	FamilyTable
)

func (f Family) String() string {
	switch f {
	case FamilyPlain:
		return "plain"
	case FamilyGrouped:
		return "grouped"
	case FamilyTable:
		return "table"
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// FieldDef declares one field. Format is a single token, see Format.
type FieldDef struct {
	Name   string
	Format string
	Type   FieldType
	Help   string
}

// Field is a FieldDef placed in a schema.
type Field struct {
	FieldDef
	Codec  Format
	Offset int
}

// Schema is the layout of one file family: a header shape plus an ordered list of fields.
// Field order is wire order.
type Schema struct {
	family      Family
	header      []Format
	fields      []Field
	index       map[string]int
	width       int
	headerWidth int
}

// NewSchema checks and lays out the given fields.
func NewSchema(family Family, headerFormat string, defs ...FieldDef) (*Schema, error) {
	header, err := ParseFormats(headerFormat)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if err := checkHeaderShape(header); err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, errors.New("schema has no fields")
	}

	s := &Schema{family: family, header: header, index: map[string]int{}}
	for _, f := range header {
		s.headerWidth += f.Width
	}

	for i, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("field %v has no name", i)
		}
		if _, dup := s.index[def.Name]; dup {
			return nil, fmt.Errorf("duplicate field %q", def.Name)
		}
		codec, err := ParseFormat(def.Format)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", def.Name, err)
		}
		s.index[def.Name] = i
		s.fields = append(s.fields, Field{FieldDef: def, Codec: codec, Offset: s.width})
		s.width += codec.Width
	}

	if family == FamilyGrouped && s.fields[0].Codec.Bytes {
		return nil, errors.New("grouped schema needs an integer group column first")
	}

	return s, nil
}

// MustSchema is NewSchema for static tables.
func MustSchema(family Family, headerFormat string, defs ...FieldDef) *Schema {
	s, err := NewSchema(family, headerFormat, defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Headers are always magic, count, floor, then either a ceiling or a type-name tag.
func checkHeaderShape(h []Format) error {
	if len(h) != 4 {
		return fmt.Errorf("%w: header must have 4 fields, got %v", ErrUnknownFormat, len(h))
	}
	for _, f := range h[:3] {
		if f.Bytes || f.Signed || f.Width != 4 {
			return fmt.Errorf("%w: header must start with 3 unsigned 32-bit ints (%v)", ErrUnknownFormat, joinFormats(h))
		}
	}
	if !h[3].Bytes && h[3].Width != 4 {
		return fmt.Errorf("%w: header ceiling must be 32-bit (%v)", ErrUnknownFormat, joinFormats(h))
	}
	return nil
}

func (s *Schema) Family() Family { return s.family }

// RecordWidth is the sum of all field widths.
func (s *Schema) RecordWidth() int { return s.width }

func (s *Schema) HeaderWidth() int { return s.headerWidth }

// HeaderTagWidth is the width of the trailing header string, or 0 for a plain ceiling.
func (s *Schema) HeaderTagWidth() int {
	if s.header[3].Bytes {
		return s.header[3].Width
	}
	return 0
}

func (s *Schema) Fields() []Field { return s.fields }

func (s *Schema) Len() int { return len(s.fields) }

func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Format is the packed record layout, e.g. "<IIIIIHH...".
func (s *Schema) Format() string {
	fs := make([]Format, len(s.fields))
	for i, f := range s.fields {
		fs[i] = f.Codec
	}
	return joinFormats(fs)
}

func (s *Schema) HeaderFormat() string { return joinFormats(s.header) }

// NewRecord makes a zeroed record with every schema field present.
func (s *Schema) NewRecord() *Record {
	r := NewRecord()
	for _, f := range s.fields {
		if f.Codec.Bytes {
			r.Set(f.Name, BytesValue(make([]byte, f.Codec.Width)))
		} else {
			r.Set(f.Name, IntValue(0))
		}
	}
	return r
}
