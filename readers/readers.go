package readers

import (
	"encoding/binary"
	"fmt"

	"swredit/types"
)

// ReadInt reads one little-endian integer of the given format from the start of b.
func ReadInt(b []byte, f types.Format) int64 {
	switch f.Width {
	case 1:
		if f.Signed {
			return int64(int8(b[0]))
		}
		return int64(b[0])
	case 2:
		u := binary.LittleEndian.Uint16(b)
		if f.Signed {
			return int64(int16(u))
		}
		return int64(u)
	case 4:
		u := binary.LittleEndian.Uint32(b)
		if f.Signed {
			return int64(int32(u))
		}
		return int64(u)
	}
	// ParseFormats never produces anything else
	panic(fmt.Sprintf("unexpected integer width %v", f.Width))
}

func readValue(b []byte, f types.Format) types.Value {
	if f.Bytes {
		return types.BytesValue(append([]byte(nil), b[:f.Width]...))
	}
	return types.IntValue(ReadInt(b, f))
}

// Decode unpacks exactly one record. Values are zipped onto field names in schema order.
func Decode(s *types.Schema, raw []byte) (*types.Record, error) {
	if len(raw) != s.RecordWidth() {
		return nil, fmt.Errorf("%w: got %v bytes, record is %v", types.ErrMalformedRecord, len(raw), s.RecordWidth())
	}

	r := types.NewRecord()
	for _, f := range s.Fields() {
		r.Set(f.Name, readValue(raw[f.Offset:], f.Codec))
	}
	return r, nil
}

// DecodeAll decodes back-to-back records until raw is used up.
func DecodeAll(s *types.Schema, raw []byte) ([]*types.Record, error) {
	width := s.RecordWidth()
	if len(raw)%width != 0 {
		return nil, fmt.Errorf("%w: %v bytes is not a multiple of the %v byte record (%v left over)",
			types.ErrTrailingBytes, len(raw), width, len(raw)%width)
	}

	out := make([]*types.Record, 0, len(raw)/width)
	for cur := 0; cur < len(raw); cur += width {
		r, err := Decode(s, raw[cur:cur+width])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// DecodeHeader unpacks the fixed header prefix of a file.
func DecodeHeader(s *types.Schema, raw []byte) (types.Header, error) {
	if len(raw) != s.HeaderWidth() {
		return types.Header{}, fmt.Errorf("%w: header needs %v bytes, got %v", types.ErrMalformedRecord, s.HeaderWidth(), len(raw))
	}

	h := types.Header{
		Magic: binary.LittleEndian.Uint32(raw[0:]),
		Count: binary.LittleEndian.Uint32(raw[4:]),
		Floor: binary.LittleEndian.Uint32(raw[8:]),
	}
	if tw := s.HeaderTagWidth(); tw > 0 {
		h.Tag = append([]byte{}, raw[12:12+tw]...)
	} else {
		h.Ceiling = binary.LittleEndian.Uint32(raw[12:])
	}
	return h, nil
}
