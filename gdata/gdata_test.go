package gdata

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swredit/textstra"
	"swredit/types"
	"swredit/writers"
)

var capitalShips = &types.FileType{
	Filename: "CAPSHPSD.DAT",
	Location: "GDATA",
	Schema: types.MustSchema(types.FamilyPlain, "IIII",
		types.FieldDef{Name: "id", Format: "I", Type: types.ReadOnly},
		types.FieldDef{Name: "name_id_1", Format: "H", Type: types.ReadOnly},
		types.FieldDef{Name: "name_id_2", Format: "H", Type: types.ReadOnly},
		types.FieldDef{Name: "alliance", Format: "I", Type: types.ReadOnly},
		types.FieldDef{Name: "imperial", Format: "I", Type: types.ReadOnly},
		types.FieldDef{Name: "maintenance", Format: "I", Type: types.Editable},
	),
	ExpectedHeader: types.Header{Magic: 1, Count: 4, Floor: 20, Ceiling: 28},
	Names:          types.DefaultNames,
}

var fleets = &types.FileType{
	Filename: "CMUNEFTB.DAT",
	Location: "GDATA",
	Schema: types.MustSchema(types.FamilyGrouped, "III20s",
		types.FieldDef{Name: "group", Format: "I", Type: types.ReadOnly},
		types.FieldDef{Name: "is_header", Format: "I", Type: types.ReadOnly},
		types.FieldDef{Name: "value", Format: "H", Type: types.Editable},
		types.FieldDef{Name: "unknown", Format: "B", Type: types.Unknown},
		types.FieldDef{Name: "family_id", Format: "B", Type: types.Editable},
	),
	ExpectedHeader: types.Header{Magic: 1, Count: 1, Floor: 20, Tag: []byte("SeedFamilyTableEntry")},
}

// with overrides the reference checksum, so the same layout can be tested as pristine or edited.
func with(ft *types.FileType, checksum string) *types.FileType {
	c := *ft
	c.ExpectedChecksum = checksum
	return &c
}

func ship(id, nameID, imperial, maintenance int64) *types.Record {
	r := capitalShips.Schema.NewRecord()
	r.SetInt("id", id)
	r.SetInt("name_id_1", nameID)
	r.SetInt("name_id_2", nameID)
	r.SetInt("alliance", 1-imperial)
	r.SetInt("imperial", imperial)
	r.SetInt("maintenance", maintenance)
	return r
}

func shipRecords() []*types.Record {
	return []*types.Record{
		ship(0, 4360, 1, 25),
		ship(1, 4361, 0, 18),
		ship(2, 4362, 1, 7),
		ship(3, 4363, 1, 1),
	}
}

func fleetRecords() []*types.Record {
	rows := [][]int64{{1, 1, 1, 0, 0}, {1, 1, 43, 0, 0}, {1, 0, 136, 0, 24}}
	for range 24 {
		rows = append(rows, []int64{1, 0, 5, 0, 28})
	}
	for range 18 {
		rows = append(rows, []int64{1, 0, 6, 0, 16})
	}
	rows = append(rows, []int64{2, 1, 2, 0, 0}, []int64{1, 1, 10, 0, 0}, []int64{1, 0, 133, 0, 20})
	for range 6 {
		rows = append(rows, []int64{1, 0, 5, 0, 28})
	}
	for range 3 {
		rows = append(rows, []int64{1, 0, 6, 0, 16})
	}

	names := fleets.Schema.FieldNames()
	out := []*types.Record{}
	for _, row := range rows {
		r := types.NewRecord()
		for i, n := range row {
			r.SetInt(names[i], n)
		}
		out = append(out, r)
	}
	return out
}

func fileBytes(t *testing.T, s *types.Schema, h types.Header, records []*types.Record) []byte {
	t.Helper()
	head, err := writers.EncodeHeader(s, h)
	require.NoError(t, err)
	body, err := writers.EncodeAll(s, records)
	require.NoError(t, err)
	return append(head, body...)
}

// writeGame lays out a fake game directory holding one data file.
func writeGame(t *testing.T, ft *types.FileType, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ft.Location), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ft.Location, ft.Filename), data, 0o644))
	return dir
}

func TestValidate(t *testing.T) {
	expected := types.Header{Magic: 1, Count: 30, Floor: 20, Ceiling: 28}

	testCases := []struct {
		name     string
		header   types.Header
		pristine bool
		ok       bool
	}{
		{"identical, pristine", expected, true, true},
		{"identical, edited", expected, false, true},
		{"count differs, edited", expected.WithCount(31), false, true},
		{"count differs, pristine", expected.WithCount(31), true, false},
		{"floor differs, edited", types.Header{Magic: 1, Count: 30, Floor: 21, Ceiling: 28}, false, false},
		{"floor differs, pristine", types.Header{Magic: 1, Count: 30, Floor: 21, Ceiling: 28}, true, false},
		{"magic differs, edited", types.Header{Magic: 2, Count: 30, Floor: 20, Ceiling: 28}, false, false},
		{"ceiling differs, edited", types.Header{Magic: 1, Count: 30, Floor: 20, Ceiling: 29}, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := "d41d8cd98f00b204e9800998ecf8427e"
			reference := actual
			if !tc.pristine {
				reference = "6ebce9890547475adc09dc2071bd9216"
			}
			err := Validate(tc.header, expected, actual, reference)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, types.ErrHeaderMismatch)
			var hm *types.HeaderMismatchError
			require.ErrorAs(t, err, &hm)
			assert.Equal(t, !tc.pristine, hm.Masked)
		})
	}
}

func TestValidate_Tag(t *testing.T) {
	expected := types.Header{Magic: 1, Count: 12, Floor: 13, Tag: []byte("IntTableEntry")}
	assert.NoError(t, Validate(expected.WithCount(2), expected, "a", "b"))

	other := types.Header{Magic: 1, Count: 12, Floor: 13, Tag: []byte("SeedTableEntr")}
	assert.ErrorIs(t, Validate(other, expected, "a", "b"), types.ErrHeaderMismatch)
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Checksum(nil))
	assert.NotEqual(t, Checksum([]byte{1}), Checksum([]byte{2}))
}

func TestCount_Grouped(t *testing.T) {
	records := fleetRecords()
	require.Len(t, records, 57)

	n, err := Count(fleets.Schema, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Count(capitalShips.Schema, shipRecords())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	bad := fleetRecords()
	bad[5].Set("group", types.TextValue("x"))
	_, err = Count(fleets.Schema, bad)
	assert.ErrorIs(t, err, types.ErrFieldRange)

	bad[5].Delete("group")
	_, err = Count(fleets.Schema, bad)
	assert.ErrorIs(t, err, types.ErrMissingField)
}

func TestGroups(t *testing.T) {
	groups, err := Groups(fleets.Schema, fleetRecords())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.EqualValues(t, 43, groups[0].Length.Int("value"))
	assert.EqualValues(t, 136, groups[0].Container.Int("value"))
	assert.Len(t, groups[0].Contents, 42)

	assert.EqualValues(t, 2, groups[1].Header.Int("group"))
	assert.EqualValues(t, 133, groups[1].Container.Int("value"))
	assert.Len(t, groups[1].Contents, 9)

	_, err = Groups(fleets.Schema, fleetRecords()[:50])
	assert.Error(t, err)

	_, err = Groups(capitalShips.Schema, shipRecords())
	assert.Error(t, err)
}

func TestRoundTrip_Pristine(t *testing.T) {
	data := fileBytes(t, capitalShips.Schema, capitalShips.ExpectedHeader, shipRecords())
	ft := with(capitalShips, Checksum(data))
	dir := writeGame(t, ft, data)

	m := New(ft, dir)
	require.NoError(t, m.Load())
	assert.Equal(t, Loaded, m.State())
	assert.True(t, m.Pristine())
	assert.Equal(t, 4, m.HeaderCount)
	require.Len(t, m.Records, 4)

	out, err := m.Prepare()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, out))

	require.NoError(t, m.Save())
	assert.Equal(t, Saved, m.State())
	assert.True(t, m.Pristine())

	onDisk, err := os.ReadFile(m.Path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, onDisk))
}

func TestRoundTrip_Grouped(t *testing.T) {
	h := fleets.ExpectedHeader.WithCount(2)
	data := fileBytes(t, fleets.Schema, h, fleetRecords())
	ft := with(fleets, "")
	dir := writeGame(t, ft, data)

	m := New(ft, dir)
	require.NoError(t, m.Load())
	assert.Equal(t, 2, m.HeaderCount)
	assert.Len(t, m.Records, 57)
	assert.False(t, m.Pristine())

	require.NoError(t, m.Save())
	onDisk, err := os.ReadFile(m.Path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, onDisk))
}

func TestLoad_PristineHeaderMismatch(t *testing.T) {
	// the checksum says reference file, but the header was never the reference one
	data := fileBytes(t, capitalShips.Schema, capitalShips.ExpectedHeader.WithCount(3), shipRecords()[:3])
	ft := with(capitalShips, Checksum(data))
	m := New(ft, writeGame(t, ft, data))

	err := m.Load()
	assert.ErrorIs(t, err, types.ErrHeaderMismatch)
	var hm *types.HeaderMismatchError
	require.ErrorAs(t, err, &hm)
	assert.Equal(t, "CAPSHPSD.DAT", hm.File)
	assert.False(t, hm.Masked)
}

func TestLoad_Failures(t *testing.T) {
	good := fileBytes(t, capitalShips.Schema, capitalShips.ExpectedHeader, shipRecords())

	testCases := []struct {
		name string
		data []byte
		err  error
	}{
		{"wrong floor", fileBytes(t, capitalShips.Schema, types.Header{Magic: 1, Count: 4, Floor: 21, Ceiling: 28}, shipRecords()), types.ErrHeaderMismatch},
		{"short header", good[:10], types.ErrMalformedRecord},
		{"trailing bytes", append(append([]byte{}, good...), 0, 0, 0), types.ErrTrailingBytes},
		{"count mismatch", good[:len(good)-capitalShips.Schema.RecordWidth()], types.ErrCountMismatch},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ft := with(capitalShips, "6ebce9890547475adc09dc2071bd9216")
			dir := writeGame(t, ft, good)
			m := New(ft, dir)
			require.NoError(t, m.Load())

			require.NoError(t, os.WriteFile(m.Path, tc.data, 0o644))
			err := m.Load()
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, Unloaded, m.State())
			assert.Nil(t, m.Records)
			assert.Empty(t, m.Checksum)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	m := New(capitalShips, t.TempDir())
	assert.ErrorIs(t, m.Load(), os.ErrNotExist)
	assert.Equal(t, Unloaded, m.State())
}

func TestSave_BeforeLoad(t *testing.T) {
	m := New(capitalShips, t.TempDir())
	assert.Panics(t, func() { m.Save() })
}

func TestSave_FieldRangeLeavesFileUntouched(t *testing.T) {
	data := fileBytes(t, capitalShips.Schema, capitalShips.ExpectedHeader, shipRecords())
	ft := with(capitalShips, Checksum(data))
	m := New(ft, writeGame(t, ft, data), WithBackup(true))
	require.NoError(t, m.Load())

	for _, bad := range []int64{-1, 1 << 32} {
		m.Records[2].SetInt("maintenance", bad)
		err := m.Save()
		assert.ErrorIs(t, err, types.ErrFieldRange)
		assert.Equal(t, Loaded, m.State())

		onDisk, err := os.ReadFile(m.Path)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(data, onDisk))
		assert.NoFileExists(t, BackupPath(m.Path))
	}

	entries, err := os.ReadDir(filepath.Dir(m.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSave_RecountsRows(t *testing.T) {
	data := fileBytes(t, capitalShips.Schema, capitalShips.ExpectedHeader, shipRecords())
	ft := with(capitalShips, Checksum(data))
	m := New(ft, writeGame(t, ft, data))
	require.NoError(t, m.Load())

	m.Records = append(m.Records, ship(4, 4364, 0, 3))
	require.NoError(t, m.Save())
	assert.Equal(t, 5, m.HeaderCount)
	assert.False(t, m.Pristine())

	again := New(ft, filepath.Dir(filepath.Dir(m.Path)))
	require.NoError(t, again.Load())
	assert.EqualValues(t, 5, again.Header.Count)
	assert.Len(t, again.Records, 5)
}

func TestSave_Backup(t *testing.T) {
	data := fileBytes(t, capitalShips.Schema, capitalShips.ExpectedHeader, shipRecords())
	ft := with(capitalShips, Checksum(data))
	m := New(ft, writeGame(t, ft, data), WithBackup(true))
	require.NoError(t, m.Load())

	m.Records[0].SetInt("maintenance", 99)
	require.NoError(t, m.Save())

	assert.Equal(t, "CAPSHPSD.old", filepath.Base(BackupPath(m.Path)))
	old, err := os.ReadFile(BackupPath(m.Path))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, old))

	current, err := os.ReadFile(m.Path)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(data, current))
}

func TestLoad_Names(t *testing.T) {
	data := fileBytes(t, capitalShips.Schema, capitalShips.ExpectedHeader, shipRecords())
	ft := with(capitalShips, Checksum(data))
	dir := writeGame(t, ft, data)

	names := textstra.Static{4360: "Star Destroyer", 4362: "Dreadnaught"}
	m := New(ft, dir, WithNames(names))
	require.NoError(t, m.Load())

	name, ok := m.Records[0].Get("name")
	require.True(t, ok)
	assert.Equal(t, types.TextValue("Star Destroyer"), name)

	name, ok = m.Records[1].Get("name")
	require.True(t, ok)
	assert.True(t, name.IsAbsent())

	// derived fields never reach the file
	require.NoError(t, m.Save())
	onDisk, err := os.ReadFile(m.Path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, onDisk))

	// without a resolver no derived fields are added
	plain := New(ft, dir)
	require.NoError(t, plain.Load())
	_, ok = plain.Records[0].Get("name")
	assert.False(t, ok)

	// an unavailable resolver degrades to absent names
	nop := New(ft, dir, WithNames(textstra.Nop{}))
	require.NoError(t, nop.Load())
	name, _ = nop.Records[0].Get("name")
	assert.True(t, name.IsAbsent())
}

func TestLoad_NameOffsets(t *testing.T) {
	ft := with(capitalShips, "")
	ft.Names = []types.NameRule{{Field: "name", Key: "name_id_1"}, {Field: "name_admiral", Key: "name_id_1", Offset: 27648}, {Field: "name_missing", Key: "nope"}}
	data := fileBytes(t, ft.Schema, ft.ExpectedHeader, shipRecords())

	m := New(ft, writeGame(t, ft, data), WithNames(textstra.Static{4360 + 27648: "Admiral Piett"}))
	require.NoError(t, m.Load())

	v, _ := m.Records[0].Get("name_admiral")
	assert.Equal(t, "Admiral Piett", v.Text)
	v, _ = m.Records[0].Get("name_missing")
	assert.True(t, v.IsAbsent())
}

func TestScenario_ImperialMaintenance(t *testing.T) {
	data := fileBytes(t, capitalShips.Schema, capitalShips.ExpectedHeader, shipRecords())
	ft := with(capitalShips, Checksum(data))
	dir := writeGame(t, ft, data)

	m := New(ft, dir)
	require.NoError(t, m.Load())
	for _, r := range m.Records {
		if r.Int("imperial") == 1 {
			r.SetInt("maintenance", r.Int("maintenance")*8/10)
		}
	}
	require.NoError(t, m.Save())

	reloaded := New(ft, dir)
	require.NoError(t, reloaded.Load())
	require.Len(t, reloaded.Records, len(m.Records))
	assert.Equal(t, m.HeaderCount, reloaded.HeaderCount)

	want := []int64{20, 18, 5, 0}
	for i, r := range reloaded.Records {
		assert.Equal(t, want[i], r.Int("maintenance"), "record %v", i)
		assert.True(t, r.Equal(m.Records[i]))
	}
}

func TestSave_KeepsFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no unix permissions")
	}
	data := fileBytes(t, capitalShips.Schema, capitalShips.ExpectedHeader, shipRecords())
	ft := with(capitalShips, Checksum(data))
	m := New(ft, writeGame(t, ft, data))
	require.NoError(t, os.Chmod(m.Path, 0o640))
	require.NoError(t, m.Load())

	m.Records[1].SetInt("maintenance", 17)
	require.NoError(t, m.Save())

	fi, err := os.Stat(m.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unloaded", Unloaded.String())
	assert.Equal(t, "saved", Saved.String())
	assert.Equal(t, "State(7)", State(7).String())
}
