package tables

import (
	"sort"
	"strings"

	"swredit/types"
)

// Location is where the game keeps its data files.
const Location = "GDATA"

// All lists every file type this tool understands, sorted by filename.
var All []*types.FileType

// ByFile maps an upper-case filename to its file type.
var ByFile map[string]*types.FileType

func plain(filename, description string, header types.Header, checksum string, defs []types.FieldDef, names []types.NameRule) *types.FileType {
	return &types.FileType{
		Filename:         filename,
		Location:         Location,
		Description:      description,
		Schema:           types.MustSchema(types.FamilyPlain, "IIII", defs...),
		ExpectedHeader:   header,
		ExpectedChecksum: checksum,
		Names:            names,
	}
}

func table(family types.Family, headerFormat, filename, description string, header types.Header, checksum string, defs []types.FieldDef) *types.FileType {
	return &types.FileType{
		Filename:         filename,
		Location:         Location,
		Description:      description,
		Schema:           types.MustSchema(family, headerFormat, defs...),
		ExpectedHeader:   header,
		ExpectedChecksum: checksum,
	}
}

func hdr(count, floor, ceiling uint32) types.Header {
	return types.Header{Magic: 1, Count: count, Floor: floor, Ceiling: ceiling}
}

func tagged(count, floor uint32, tag string) types.Header {
	return types.Header{Magic: 1, Count: count, Floor: floor, Tag: []byte(tag)}
}

func init() {
	names := types.DefaultNames
	All = []*types.FileType{
		plain("FIGHTSD.DAT", "fighters", hdr(8, 28, 32), "572eb17566f6501be1141575f456c7f0", fighters, names),
		plain("TROOPSD.DAT", "troops", hdr(10, 16, 20), "c33fe785bfb1c0a42328009f9d28a68d", troops, names),
		plain("CAPSHPSD.DAT", "capital ships", hdr(30, 20, 28), "6ebce9890547475adc09dc2071bd9216", capitalShips, names),
		plain("SECTORSD.DAT", "sectors", hdr(20, 128, 144), "21b49b9e8a0c2829da55e083cab16969", sectors, names),
		plain("MISSNSD.DAT", "missions", hdr(25, 64, 128), "3671b7e692a198a042b92a89ad0846c8", missions, names),
		plain("SYSTEMSD.DAT", "systems", hdr(200, 144, 152), "6896149fc26d1573118d1193b0d0366d", systems, names),
		plain("DEFFACSD.DAT", "defensive facilities", hdr(6, 34, 40), "ec67675858ebff9a186c7984b63d8d8e",
			facility(f("firepower", "I", ed), f("shield_generation", "I", ed)), names),
		plain("MANFACSD.DAT", "manufacturing facilities", hdr(6, 40, 44), "75d1e916c00a411ca58b48eb46b055ae",
			facility(f("manufacturing_rate", "I", ed, "days to build one unit")), names),
		plain("PROFACSD.DAT", "production facilities", hdr(2, 44, 48), "eb5418ffb7dcea3eb8a4ed70b003a3cd",
			facility(f("production_rate", "I", ed, "days to produce one unit")), names),
		plain("SPECFCSD.DAT", "special forces", hdr(9, 60, 64), "310154da0e88381afc602185a545200d", specialForces, names),
		plain("MJCHARSD.DAT", "major characters", hdr(6, 48, 56), "63b9fa47abd1707abbffe1d0a8f03f4b", characters, characterNames),
		plain("MNCHARSD.DAT", "minor characters", hdr(54, 56, 60), "3df29ab3d514f2824f43527d96c32bbb", characters, characterNames),

		table(types.FamilyTable, "III14s", "SYFCCRTB.DAT", "core system facility seeds", tagged(8, 14, "SeedTableEntry"), "2aeb4ffebd247b0dc81e29e3d380b9c8", seedTable),
		table(types.FamilyTable, "III14s", "SYFCRMTB.DAT", "rim system facility seeds", tagged(7, 14, "SeedTableEntry"), "38f60c0ada2af36ab4eb23eab554ba50", seedTable),

		table(types.FamilyGrouped, "III20s", "CMUNEFTB.DAT", "empire fleet homes", tagged(1, 20, "SeedFamilyTableEntry"), "b60d31a01f65232001bac5119e8873f7", familyTable),
		table(types.FamilyGrouped, "III20s", "CMUNAFTB.DAT", "alliance fleet homes", tagged(2, 20, "SeedFamilyTableEntry"), "83fd5f8a0d3f067df788d7dab1fff684", familyTable),
	}
	for _, t := range intTables {
		All = append(All, table(types.FamilyTable, "III13s", t.filename, t.description, tagged(t.count, 13, string(intTableTag)), t.checksum, intTable))
	}

	sort.Slice(All, func(i, j int) bool { return All[i].Filename < All[j].Filename })

	ByFile = make(map[string]*types.FileType, len(All))
	for _, ft := range All {
		if _, ok := ByFile[ft.Filename]; ok {
			panic("duplicate file type " + ft.Filename)
		}
		ByFile[ft.Filename] = ft
	}
}

// Lookup finds a file type by filename, ignoring case. The .DAT extension is optional.
func Lookup(name string) (*types.FileType, bool) {
	name = strings.ToUpper(name)
	if ft, ok := ByFile[name]; ok {
		return ft, true
	}
	ft, ok := ByFile[name+".DAT"]
	return ft, ok
}
