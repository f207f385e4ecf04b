package tables

// These tables are in their own file because they are large.

import "swredit/types"

const (
	ed = types.Editable
	dn = types.Denormalized
	ro = types.ReadOnly
	un = types.Unknown
)

func f(name, format string, t types.FieldType, help ...string) types.FieldDef {
	d := types.FieldDef{Name: name, Format: format, Type: t}
	if len(help) > 0 {
		d.Help = help[0]
	}
	return d
}

func fields(groups ...[]types.FieldDef) []types.FieldDef {
	out := []types.FieldDef{}
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Every *SD.DAT row starts like this.
func entity(family types.FieldType) []types.FieldDef {
	return []types.FieldDef{
		f("id", "I", ro),
		f("active", "I", un, "maybe the active flag, always 1"),
		f("producing_facility_family_id", "I", ro),
		f("producing_facility_family_id_one_based", "I", ro),
		f("family_id", "I", family),
		f("name_id_1", "H", ro, "string id in TEXTSTRA.DLL"),
		f("name_id_2", "H", ro, "always 2"),
	}
}

func sides(t types.FieldType) []types.FieldDef {
	return []types.FieldDef{f("alliance", "I", t), f("imperial", "I", t)}
}

func costs() []types.FieldDef {
	return []types.FieldDef{
		f("construction_cost", "I", ed),
		f("maintenance", "I", ed),
		f("research_order", "I", ed),
	}
}

// Ship movement and weapons, shared by fighters and capital ships.
func weapons() []types.FieldDef {
	out := []types.FieldDef{
		f("detection", "I", ed),
		f("shield", "I", ed),
		f("sublight_speed", "I", ed),
		f("maneuverability", "I", ed),
		f("hyperdrive", "I", ed),
		f("unknown_3", "I", un, "backup hyperdrive, always 0"),
	}
	for _, arc := range []string{"front", "rear", "left", "right"} {
		for _, gun := range []string{"turbolaser", "ion", "laser"} {
			out = append(out, f(gun+"_firepower_"+arc, "I", ed))
		}
	}
	return append(out,
		f("turbolasers_range", "I", ed),
		f("ion_range", "I", ed),
		f("laser_range", "I", ed),
		f("turbolaser_firepower_sum", "I", dn),
		f("ion_firepower_sum", "I", dn),
		f("laser_firepower_sum", "I", dn),
		f("firepower_sum", "I", dn),
	)
}

func skills() []types.FieldDef {
	out := []types.FieldDef{}
	for _, s := range []string{"diplomacy", "espionage", "ship_research", "troop_research", "facility_research", "combat", "leadership", "loyalty"} {
		out = append(out, f(s+"_base", "I", ed), f(s+"_variance", "I", ed))
	}
	return out
}

func facility(extra ...types.FieldDef) []types.FieldDef {
	return fields(entity(ro), sides(ed), costs(), []types.FieldDef{
		f("unknown_2", "I", un, "maybe research difficulty"),
		f("bombardment_defense", "I", un),
	}, extra)
}

var fighters = fields(entity(ro), sides(ed), costs(), []types.FieldDef{
	f("unknown_1", "I", un, "maybe research difficulty"),
	f("unknown_2", "I", un, "maybe morale modifier, always 0"),
}, weapons(), []types.FieldDef{
	f("torpedo_power", "I", ed),
	f("torpedo_range", "I", ed),
	f("squadron_size", "I", ed, "always 12"),
	f("bombardment", "I", ed),
})

var troops = fields(entity(ed), sides(ed), costs(), []types.FieldDef{
	f("unknown_2", "I", un, "maybe research difficulty"),
	f("unknown_3", "I", un, "maybe morale modifier, always 0"),
	f("detection", "I", ed),
	f("bombardment_defense", "I", ed),
	f("attack", "I", ed),
	f("defense", "I", ed),
})

var capitalShips = fields(entity(ro), sides(ro), costs(), []types.FieldDef{
	f("unknown_1", "I", un, "maybe research difficulty"),
	f("unknown_2", "I", un, "roughly 0.45 * construction_cost"),
}, weapons(), []types.FieldDef{
	f("hull", "I", ed),
	f("tractor_beam_power", "I", ed),
	f("tractor_beam_range", "I", ed),
	f("gravity_well_1", "H", ed, "4 if present"),
	f("gravity_well_2", "H", ed, "100 if present"),
	f("unknown_4", "I", ro, "always 0"),
	f("bombardment", "I", ed),
	f("damage_control", "I", ed),
	f("weapon_recharge", "I", ed),
	f("shield_recharge", "I", ed),
	f("fighter_squadrons", "I", ed),
	f("troop_contingents", "I", ed),
	f("unknown_5", "I", ed),
})

var sectors = fields(entity(ro), []types.FieldDef{
	f("importance", "I", ed, "1 high, 2 medium, 3 low"),
	f("game_size", "I", ed, "1 small, 2 medium, 3 large"),
	f("position_x", "H", ed),
	f("position_y", "H", ed),
})

var missions = func() []types.FieldDef {
	out := fields(entity(ro), sides(ro), []types.FieldDef{
		f("special_forces_code", "I", ro, "which special forces may take the mission"),
		f("tbd_04_1", "H", ro, "always 0"),
		f("tbd_04_2", "H", ro, "0 for recon, 1 for everything else"),
		f("length", "I", ro),
		f("length_variance", "I", ro),
		f("has_progress_reports", "I", ro),
		f("tbd_08", "I", ro, "1 if not selectable in the mission screen"),
		f("tbd_09", "I", ro, "0 for bounty, 1 for everything else"),
		f("tbd_10", "I", ro, "0 if selectable in the mission screen"),
		f("tbd_11", "I", ro),
	})
	for _, n := range []string{"12", "13", "14", "15", "16", "17", "18", "19", "20", "21", "22"} {
		out = append(out, f("tbd_"+n, "I", ro))
	}
	return out
}()

var systems = fields(entity(ro), []types.FieldDef{
	f("sector_id", "I", ed),
	f("type", "I", ed, "picture, 1-26"),
	f("unknown_2", "I", un, "always 1"),
	f("position_x", "H", ed),
	f("position_y", "H", ed),
	f("unknown_3", "I", un, "always 0"),
})

var specialForces = fields(entity(ro), sides(ed), []types.FieldDef{
	f("construction_cost", "I", ed),
	f("maintenance", "I", ed),
	f("research_order", "I", un, "always 0"),
	f("unknown_5", "I", un, "always 0"),
}, skills(), []types.FieldDef{
	f("mission_available", "I", ed),
})

var characters = fields(entity(ro), sides(ed), []types.FieldDef{
	f("construction_cost", "I", un, "always 0"),
	f("maintenance", "I", un, "always 0"),
	f("research_order", "I", un, "always 0"),
	f("unknown_5", "I", un, "always 0"),
}, skills(), []types.FieldDef{
	f("jedi_probability", "I", ed),
	f("known_jedi", "I", ed),
	f("jedi_level_base", "I", ed),
	f("jedi_level_variance", "I", ed),
	f("can_be_admiral", "I", ed),
	f("can_be_commander", "I", ed),
	f("can_be_general", "I", ed),
	f("wont_betray_own_side", "I", ed),
	f("can_train_jedis", "I", ed),
})

// Characters have a name per rank, at fixed offsets from the base name.
var characterNames = []types.NameRule{
	{Field: "name", Key: "name_id_1"},
	{Field: "name_general", Key: "name_id_1", Offset: 28672},
	{Field: "name_commander", Key: "name_id_1", Offset: 26624},
	{Field: "name_admiral", Key: "name_id_1", Offset: 27648},
}

var seedTable = []types.FieldDef{
	f("id", "I", ro),
	f("one", "I", ro, "always 1"),
	f("percent", "I", ro),
	f("level", "H", ro),
	f("unknown", "B", ro, "always 0"),
	f("family_id", "B", ro),
}

var intTable = []types.FieldDef{
	f("index", "I", ro),
	f("one", "I", ro, "always 1"),
	f("score", "i", ro),
	f("probability", "I", ro),
}

// Grouped rows: see gdata.Groups for how the columns nest.
var familyTable = []types.FieldDef{
	f("group", "I", ro, "1-based group index on group rows"),
	f("is_header", "I", ro, "1 on group and run-length rows"),
	f("value", "H", ro),
	f("unknown", "B", un),
	f("family_id", "B", ro),
}

var intTableTag = []byte("IntTableEntry")

type intTableFile struct {
	filename, description string
	count                 uint32
	checksum              string
}

// Probability tables and the simpler IntTableEntry tables share one layout.
var intTables = []intTableFile{
	{"ASSNMSTB.DAT", "assassination mission", 12, "50b57a95d01346b92eed3eb457600ad2"},
	{"ABDCMSTB.DAT", "abduction mission", 12, "b5c809a85ae68ff810a0699116925ff6"},
	{"DIPLMSTB.DAT", "diplomacy mission", 10, "2ce657d774bedac233c01612be93000a"},
	{"DSSBMSTB.DAT", "Death Star sabotage mission", 12, "f9fe00827aa2045d3122aec5f4335b61"},
	{"ESPIMSTB.DAT", "espionage mission", 12, "f9fe00827aa2045d3122aec5f4335b61"},
	{"INCTMSTB.DAT", "incite uprising mission", 13, "1f1df0a27ab78493c33816bd9c2dbdf3"},
	{"RCRTMSTB.DAT", "recruitment mission", 11, "25aed57916a6e3d37fbc3de5874235fe"},
	{"RESCMSTB.DAT", "rescue mission", 12, "f9fe00827aa2045d3122aec5f4335b61"},
	{"SBTGMSTB.DAT", "sabotage mission", 12, "f9fe00827aa2045d3122aec5f4335b61"},
	{"SUBDMSTB.DAT", "subdue uprising mission", 13, "1f1df0a27ab78493c33816bd9c2dbdf3"},
	{"TDECOYTB.DAT", "troop decoy", 14, "54fce80164c1df2687658f97a9f6a052"},
	{"FDECOYTB.DAT", "fleet decoy", 14, "54fce80164c1df2687658f97a9f6a052"},
	{"FOILTB.DAT", "foil mission", 14, "9529c4f5933bbfe6784126c3423500cc"},
	{"ESCAPETB.DAT", "escape attempt", 9, "a58848ece67376e2250ac628a2436de6"},
	{"RLEVADTB.DAT", "evade capture", 14, "46d6a46ac8a4da3ef7ad9ebabfecd067"},
	{"UPRIS1TB.DAT", "uprising start", 3, "dc62ec45b75e57822e48dbe6ace4404f"},
	{"UPRIS2TB.DAT", "uprising continuation", 4, "c50c36b5be1684524bfc62c889654916"},
	{"INFORMTB.DAT", "informants", 8, "711482e9e194f98ad33979d83a1b183f"},
	{"RESRCTB.DAT", "research mission", 4, "a4f540cdd3f44779c7b7a4f7e876a05d"},
}
