package types

import (
	"bytes"
	"fmt"
	"strconv"
)

type Kind int

const (
	KindInt Kind = iota
	KindBytes
	KindText   // resolved display string
	KindAbsent // a display string that could not be resolved
)

// Value is one field of a record. Decoded fields are ints or byte strings;
// Text and Absent only appear in derived name fields.
type Value struct {
	Kind  Kind
	Int   int64
	Bytes []byte
	Text  string
}

func IntValue(n int64) Value    { return Value{Kind: KindInt, Int: n} }
func BytesValue(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }
func TextValue(s string) Value  { return Value{Kind: KindText, Text: s} }
func AbsentValue() Value        { return Value{Kind: KindAbsent} }

func (v Value) IsAbsent() bool { return v.Kind == KindAbsent }

func (v Value) Equal(o Value) bool {
	return v.Kind == o.Kind && v.Int == o.Int && v.Text == o.Text && bytes.Equal(v.Bytes, o.Bytes)
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBytes:
		return strconv.Quote(string(bytes.TrimRight(v.Bytes, "\x00")))
	case KindText:
		return strconv.Quote(v.Text)
	}
	return "None"
}

// Any converts to a plain Go value for document encoders: int64, string or nil.
func (v Value) Any() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindBytes:
		return string(bytes.TrimRight(v.Bytes, "\x00"))
	case KindText:
		return v.Text
	}
	return nil
}

// Record is one decoded row: field name to value, in insertion order.
// Decoded fields come first in schema order; derived fields (names) follow.
type Record struct {
	keys   []string
	values map[string]Value
}

func NewRecord() *Record {
	return &Record{values: map[string]Value{}}
}

// Set adds or replaces a field. New fields go to the end.
func (r *Record) Set(name string, v Value) {
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = v
}

func (r *Record) SetInt(name string, n int64) { r.Set(name, IntValue(n)) }

func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Int returns the integer value of a field, or 0 if it is missing or not an integer.
func (r *Record) Int(name string) int64 {
	v, ok := r.values[name]
	if !ok || v.Kind != KindInt {
		return 0
	}
	return v.Int
}

func (r *Record) Delete(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	for i, k := range r.keys {
		if k == name {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns field names in insertion order. The slice is a copy.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

func (r *Record) Len() int { return len(r.keys) }

func (r *Record) Clone() *Record {
	c := NewRecord()
	for _, k := range r.keys {
		v := r.values[k]
		if v.Bytes != nil {
			v.Bytes = append([]byte(nil), v.Bytes...)
		}
		c.Set(k, v)
	}
	return c
}

// Equal compares keys, order and values.
func (r *Record) Equal(o *Record) bool {
	if len(r.keys) != len(o.keys) {
		return false
	}
	for i, k := range r.keys {
		if o.keys[i] != k || !r.values[k].Equal(o.values[k]) {
			return false
		}
	}
	return true
}

func (r *Record) String() string {
	var b bytes.Buffer
	b.WriteString("{")
	for i, k := range r.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v: %v", k, r.values[k])
	}
	b.WriteString("}")
	return b.String()
}
