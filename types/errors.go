package types

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFormat   = errors.New("unknown format token")
	ErrHeaderMismatch  = errors.New("header mismatch")
	ErrMalformedRecord = errors.New("malformed record")
	ErrTrailingBytes   = errors.New("trailing bytes")
	ErrMissingField    = errors.New("missing field")
	ErrFieldRange      = errors.New("field value out of range")
	ErrCountMismatch   = errors.New("record count does not match header")
	ErrNotEditable     = errors.New("field is not editable")
)

// FieldError describes a record value that is inconsistent with its schema.
// Err is ErrMissingField or ErrFieldRange.
type FieldError struct {
	Field  string
	Format Format
	Value  Value
	Err    error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrMissingField) {
		return fmt.Sprintf("%v: %q", e.Err, e.Field)
	}
	return fmt.Sprintf("%v: %q (%v) cannot hold %v", e.Err, e.Field, e.Format, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Err }

// HeaderMismatchError is returned when a structural header field disagrees with the reference.
// Masked is set when the count was ignored because the file had been modified before.
type HeaderMismatchError struct {
	File     string
	Expected Header
	Actual   Header
	Masked   bool
}

func (e *HeaderMismatchError) Error() string {
	expected, actual := e.Expected.String(), e.Actual.String()
	if e.Masked {
		expected, actual = e.Expected.maskedString(), e.Actual.maskedString()
	}
	return fmt.Sprintf("%v: %v expected header %v, got %v", ErrHeaderMismatch, e.File, expected, actual)
}

func (e *HeaderMismatchError) Unwrap() error { return ErrHeaderMismatch }
