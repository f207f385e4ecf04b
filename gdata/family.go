package gdata

import (
	"fmt"

	"swredit/types"
)

// Count is the number the header should carry for these records.
//
// Plain and table files count rows. Grouped files count groups: their rows are runs of
// group row, run-length row, container, contents, and the first column doubles as the 1-based
// group index, so the count is the largest value in it and not len(records).
func Count(s *types.Schema, records []*types.Record) (int, error) {
	if s.Family() != types.FamilyGrouped {
		return len(records), nil
	}

	first := s.Fields()[0].Name
	max := int64(0)
	for i, r := range records {
		v, ok := r.Get(first)
		if !ok {
			return 0, fmt.Errorf("record %v: %w", i, &types.FieldError{Field: first, Format: s.Fields()[0].Codec, Err: types.ErrMissingField})
		}
		if v.Kind != types.KindInt {
			return 0, fmt.Errorf("record %v: %w", i, &types.FieldError{Field: first, Format: s.Fields()[0].Codec, Value: v, Err: types.ErrFieldRange})
		}
		if v.Int > max {
			max = v.Int
		}
	}
	return int(max), nil
}

// Group is one run of a grouped file, split out for display.
type Group struct {
	Header    *types.Record   // the row that opens the group
	Length    *types.Record   // the run-length row
	Container *types.Record   // first member, e.g. the capital ship
	Contents  []*types.Record // everything carried by the container
}

// Groups splits a grouped file into its runs.
// A run starts with a header row (second column 1) followed by a run-length row whose third column
// says how many member rows follow.
func Groups(s *types.Schema, records []*types.Record) ([]Group, error) {
	if s.Family() != types.FamilyGrouped {
		return nil, fmt.Errorf("%v is not a grouped layout", s.Family())
	}
	fields := s.FieldNames()
	if len(fields) < 3 {
		return nil, fmt.Errorf("grouped layout needs at least 3 columns")
	}
	flag, value := fields[1], fields[2]

	out := []Group{}
	for i := 0; i < len(records); {
		if i+1 >= len(records) || records[i].Int(flag) != 1 || records[i+1].Int(flag) != 1 {
			return nil, fmt.Errorf("row %v: expected a group header and run length", i)
		}
		g := Group{Header: records[i], Length: records[i+1]}
		n := int(records[i+1].Int(value))
		i += 2
		if n < 1 || i+n > len(records) {
			return nil, fmt.Errorf("row %v: run of %v rows does not fit (%v rows left)", i-1, n, len(records)-i)
		}
		g.Container = records[i]
		g.Contents = records[i+1 : i+n]
		i += n
		out = append(out, g)
	}
	return out, nil
}
