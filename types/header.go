package types

import (
	"bytes"
	"fmt"
	"strings"
)

// Header is the fixed prefix of every GDATA file.
//
// Verbatim from the old swrebellion.com forum notes: the normal game data files (*SD.DAT) share a
// four DWORD header:
//   - always 1
//   - the number of things in the file
//   - the "lower" family identifier in the file
//   - the "higher" (not included) family identifier
//
// The *TB.DAT tables replace the last DWORD with a fixed-length type name such as "IntTableEntry".
type Header struct {
	Magic   uint32
	Count   uint32
	Floor   uint32
	Ceiling uint32
	Tag     []byte // nil unless the header shape ends in a string
}

// CountIndex is the position of Count in Values.
const CountIndex = 1

// Values is the positional view of the header, as it sits on disk.
func (h Header) Values() []Value {
	last := IntValue(int64(h.Ceiling))
	if h.Tag != nil {
		last = BytesValue(h.Tag)
	}
	return []Value{IntValue(int64(h.Magic)), IntValue(int64(h.Count)), IntValue(int64(h.Floor)), last}
}

func (h Header) WithCount(n uint32) Header {
	h.Count = n
	return h
}

func (h Header) Equal(o Header) bool {
	return h.Magic == o.Magic && h.Count == o.Count && h.Floor == o.Floor && h.Ceiling == o.Ceiling &&
		(h.Tag == nil) == (o.Tag == nil) && bytes.Equal(h.Tag, o.Tag)
}

// EqualIgnoringCount compares everything but the count, which legitimately drifts after edits.
func (h Header) EqualIgnoringCount(o Header) bool {
	return h.WithCount(0).Equal(o.WithCount(0))
}

func (h Header) String() string {
	return h.format(false)
}

func (h Header) maskedString() string {
	return h.format(true)
}

func (h Header) format(mask bool) string {
	parts := []string{}
	for i, v := range h.Values() {
		if mask && i == CountIndex {
			parts = append(parts, "XXX")
			continue
		}
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("(%v)", strings.Join(parts, ", "))
}
