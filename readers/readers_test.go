package readers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swredit/types"
)

var fleet = types.MustSchema(types.FamilyGrouped, "III20s",
	types.FieldDef{Name: "group", Format: "I", Type: types.ReadOnly},
	types.FieldDef{Name: "is_header", Format: "I", Type: types.ReadOnly},
	types.FieldDef{Name: "value", Format: "H", Type: types.Editable},
	types.FieldDef{Name: "unknown", Format: "B", Type: types.Unknown},
	types.FieldDef{Name: "family_id", Format: "B", Type: types.Editable},
)

var signed = types.MustSchema(types.FamilyTable, "III13s",
	types.FieldDef{Name: "a", Format: "b", Type: types.ReadOnly},
	types.FieldDef{Name: "b", Format: "h", Type: types.ReadOnly},
	types.FieldDef{Name: "c", Format: "i", Type: types.ReadOnly},
	types.FieldDef{Name: "tag", Format: "3s", Type: types.ReadOnly},
)

func TestDecode(t *testing.T) {
	raw := []byte{
		1, 0, 0, 0,
		0, 0, 0, 0,
		136, 0,
		0,
		24,
	}
	r, err := Decode(fleet, raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"group", "is_header", "value", "unknown", "family_id"}, r.Keys())
	assert.Equal(t, int64(1), r.Int("group"))
	assert.Equal(t, int64(136), r.Int("value"))
	assert.Equal(t, int64(24), r.Int("family_id"))
}

func TestDecode_Signed(t *testing.T) {
	raw := []byte{0xff, 0xfe, 0xff, 0xfd, 0xff, 0xff, 0xff, 'a', 'b', 0}
	r, err := Decode(signed, raw)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), r.Int("a"))
	assert.Equal(t, int64(-2), r.Int("b"))
	assert.Equal(t, int64(-3), r.Int("c"))
	tag, _ := r.Get("tag")
	assert.Equal(t, []byte{'a', 'b', 0}, tag.Bytes)

	// decoded byte strings must not alias the input
	raw[7] = 'z'
	assert.Equal(t, byte('a'), tag.Bytes[0])
}

func TestDecode_WrongLength(t *testing.T) {
	_, err := Decode(fleet, make([]byte, fleet.RecordWidth()-1))
	assert.ErrorIs(t, err, types.ErrMalformedRecord)
	_, err = Decode(fleet, make([]byte, fleet.RecordWidth()+1))
	assert.ErrorIs(t, err, types.ErrMalformedRecord)
}

func TestDecodeAll(t *testing.T) {
	width := fleet.RecordWidth()

	recs, err := DecodeAll(fleet, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)

	raw := make([]byte, 3*width)
	raw[0] = 1
	raw[width] = 2
	raw[2*width] = 3
	recs, err = DecodeAll(fleet, raw)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i, r := range recs {
		assert.Equal(t, int64(i+1), r.Int("group"))
	}

	for _, n := range []int{1, width - 1, width + 1, 3*width - 1} {
		_, err := DecodeAll(fleet, make([]byte, n))
		assert.ErrorIs(t, err, types.ErrTrailingBytes, "length %v", n)
	}
}

func TestDecodeHeader(t *testing.T) {
	plain := types.MustSchema(types.FamilyPlain, "IIII", types.FieldDef{Name: "id", Format: "I", Type: types.ReadOnly})
	h, err := DecodeHeader(plain, []byte{1, 0, 0, 0, 30, 0, 0, 0, 20, 0, 0, 0, 28, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, types.Header{Magic: 1, Count: 30, Floor: 20, Ceiling: 28}, h)

	raw := append([]byte{1, 0, 0, 0, 2, 0, 0, 0, 20, 0, 0, 0}, []byte("SeedFamilyTableEntry")...)
	h, err = DecodeHeader(fleet, raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), h.Count)
	assert.Equal(t, []byte("SeedFamilyTableEntry"), h.Tag)
	assert.Zero(t, h.Ceiling)

	_, err = DecodeHeader(fleet, raw[:20])
	assert.ErrorIs(t, err, types.ErrMalformedRecord)
}
