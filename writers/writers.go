package writers

// Functions for writing records back out.
// Everything is built in memory; nothing here touches a file, so a failed encode can't leave
// half a data file behind.

import (
	"encoding/binary"
	"fmt"

	"swredit/types"
)

// PutPadded writes a variable-length string into a fixed-length slot.
// Unneeded bytes are padded out with 0s.
func PutPadded(dst []byte, b []byte) error {
	if len(b) > len(dst) {
		return fmt.Errorf("%w: %v bytes do not fit in %v", types.ErrFieldRange, len(b), len(dst))
	}
	n := copy(dst, b)
	clear(dst[n:])
	return nil
}

// PutInt writes n little-endian. The caller has checked the range.
func PutInt(dst []byte, f types.Format, n int64) {
	switch f.Width {
	case 1:
		dst[0] = uint8(n)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(n))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(n))
	default:
		panic(fmt.Sprintf("unexpected integer width %v", f.Width))
	}
}

func putValue(dst []byte, field types.Field, v types.Value) error {
	f := field.Codec
	rangeErr := &types.FieldError{Field: field.Name, Format: f, Value: v, Err: types.ErrFieldRange}

	if f.Bytes {
		if v.Kind != types.KindBytes {
			return rangeErr
		}
		if err := PutPadded(dst[:f.Width], v.Bytes); err != nil {
			return rangeErr
		}
		return nil
	}

	// Wrapping around is how save games get silently trashed, so refuse instead
	if v.Kind != types.KindInt || !f.Fits(v.Int) {
		return rangeErr
	}
	PutInt(dst, f, v.Int)
	return nil
}

// AppendRecord appends the encoding of r to dst.
// Only schema fields are read; derived fields such as resolved names are ignored.
func AppendRecord(dst []byte, s *types.Schema, r *types.Record) ([]byte, error) {
	start := len(dst)
	dst = append(dst, make([]byte, s.RecordWidth())...)
	out := dst[start:]

	for _, field := range s.Fields() {
		v, ok := r.Get(field.Name)
		if !ok {
			return dst[:start], &types.FieldError{Field: field.Name, Format: field.Codec, Err: types.ErrMissingField}
		}
		if err := putValue(out[field.Offset:], field, v); err != nil {
			return dst[:start], err
		}
	}
	return dst, nil
}

// Encode serializes one record into exactly RecordWidth bytes.
func Encode(s *types.Schema, r *types.Record) ([]byte, error) {
	return AppendRecord(make([]byte, 0, s.RecordWidth()), s, r)
}

// EncodeAll serializes records in list order. On error nothing is returned.
func EncodeAll(s *types.Schema, records []*types.Record) ([]byte, error) {
	out := make([]byte, 0, len(records)*s.RecordWidth())
	for i, r := range records {
		var err error
		out, err = AppendRecord(out, s, r)
		if err != nil {
			return nil, fmt.Errorf("record %v: %w", i, err)
		}
	}
	return out, nil
}

// EncodeHeader serializes a header in the schema's header shape.
func EncodeHeader(s *types.Schema, h types.Header) ([]byte, error) {
	out := make([]byte, s.HeaderWidth())
	binary.LittleEndian.PutUint32(out[0:], h.Magic)
	binary.LittleEndian.PutUint32(out[4:], h.Count)
	binary.LittleEndian.PutUint32(out[8:], h.Floor)

	tw := s.HeaderTagWidth()
	switch {
	case tw > 0:
		if err := PutPadded(out[12:12+tw], h.Tag); err != nil {
			return nil, fmt.Errorf("header tag %q: %w", h.Tag, err)
		}
	case h.Tag != nil:
		return nil, fmt.Errorf("%w: header shape %v has no tag, got %q", types.ErrFieldRange, s.HeaderFormat(), h.Tag)
	default:
		binary.LittleEndian.PutUint32(out[12:], h.Ceiling)
	}
	return out, nil
}
