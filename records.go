package main

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"swredit/gdata"
	"swredit/types"
	"swredit/utils"
)

func (a *app) dumpCmd() *cobra.Command {
	var asJSON, names bool
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Display every record of a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := a.manager(args[0], names)
			if err != nil {
				return err
			}
			defer release()
			if err := m.Load(); err != nil {
				return err
			}
			if asJSON {
				return a.dumpJSON(m)
			}
			a.dumpText(m)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON instead of text")
	cmd.Flags().BoolVar(&names, "names", false, "resolve display names from TEXTSTRA.DLL")
	return cmd
}

func (a *app) dumpText(m *gdata.Manager) {
	status := "modified"
	if m.Pristine() {
		status = "pristine"
	}
	fmt.Fprintf(a.out, "%v (%v) header %v, %v\n", m.Type.Filename, m.Type.Description, m.Header, status)
	for i, r := range m.Records {
		fmt.Fprintf(a.out, "#%v\n", i)
		for _, k := range r.Keys() {
			v, _ := r.Get(k)
			fmt.Fprintf(a.out, "   %v: %v\n", k, v)
		}
	}
}

// orderedRecord keeps field order in JSON, which a map would lose.
type orderedRecord struct{ *types.Record }

func (o orderedRecord) MarshalJSON() ([]byte, error) {
	out := []byte{'{'}
	for i, k := range o.Keys() {
		if i > 0 {
			out = append(out, ',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		v, _ := o.Get(k)
		value, err := json.Marshal(v.Any())
		if err != nil {
			return nil, err
		}
		out = append(append(append(out, key...), ':'), value...)
	}
	return append(out, '}'), nil
}

type jsonDump struct {
	File     string          `json:"file"`
	Header   string          `json:"header"`
	Checksum string          `json:"checksum"`
	Pristine bool            `json:"pristine"`
	Records  []orderedRecord `json:"records"`
}

func (a *app) dumpJSON(m *gdata.Manager) error {
	doc := jsonDump{
		File:     m.Type.Filename,
		Header:   m.Header.String(),
		Checksum: m.Checksum,
		Pristine: m.Pristine(),
		Records:  make([]orderedRecord, 0, len(m.Records)),
	}
	for _, r := range m.Records {
		doc.Records = append(doc.Records, orderedRecord{r})
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

// locate finds one field of one record. The field name is fuzzy matched against the schema.
func locate(m *gdata.Manager, rowArg, fieldArg string) (*types.Record, types.Field, error) {
	row, err := strconv.Atoi(rowArg)
	if err != nil {
		return nil, types.Field{}, fmt.Errorf("row %q is not a number", rowArg)
	}
	if row < 0 || row >= len(m.Records) {
		return nil, types.Field{}, fmt.Errorf("row %v out of range, %v has %v records", row, m.Type.Filename, len(m.Records))
	}
	name, err := utils.FuzzyMatch(fieldArg, m.Type.Schema.FieldNames(), "field of "+m.Type.Filename)
	if err != nil {
		return nil, types.Field{}, err
	}
	field, _ := m.Type.Schema.Field(name)
	return m.Records[row], field, nil
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> <row> <field>",
		Short: "Display one field of one record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := a.manager(args[0], false)
			if err != nil {
				return err
			}
			defer release()
			if err := m.Load(); err != nil {
				return err
			}
			r, field, err := locate(m, args[1], args[2])
			if err != nil {
				return err
			}
			v, _ := r.Get(field.Name)
			fmt.Fprintf(a.out, "%v: %v (%v)\n", field.Name, v, field.Type)
			return nil
		},
	}
}

// parseValue turns a command line argument into a value for field.
func parseValue(field types.Field, s string) (types.Value, error) {
	if field.Codec.Bytes {
		return types.BytesValue([]byte(s)), nil
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return types.Value{}, fmt.Errorf("%v needs a number, got %q", field.Name, s)
	}
	if !field.Codec.Fits(n) {
		return types.Value{}, &types.FieldError{Field: field.Name, Format: field.Codec, Value: types.IntValue(n), Err: types.ErrFieldRange}
	}
	return types.IntValue(n), nil
}

func (a *app) setCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "set <file> <row> <field> <value>",
		Short: "Change one field of one record and save the file",
		Long: `set changes one field and saves the file straight away.

Only editable fields can be set. Read-only, denormalized and unknown fields need --force;
the game may not cope with what you put there.

A negative value looks like a flag, so put flags first and end them with --:
  swredit set assnmstb 0 score --force -- -5`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := a.manager(args[0], false)
			if err != nil {
				return err
			}
			defer release()
			if err := m.Load(); err != nil {
				return err
			}
			r, field, err := locate(m, args[1], args[2])
			if err != nil {
				return err
			}
			if field.Type != types.Editable && !force {
				return fmt.Errorf("%w: %v is %v (use --force)", types.ErrNotEditable, field.Name, field.Type)
			}
			v, err := parseValue(field, args[3])
			if err != nil {
				return err
			}

			old, _ := r.Get(field.Name)
			r.Set(field.Name, v)
			if err := m.Save(); err != nil {
				return err
			}
			a.log.Info("saved", "file", m.Type.Filename, "row", args[1], "field", field.Name, "from", old.String(), "to", v.String())
			fmt.Fprintln(a.out, field.Name, "set to", v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "allow setting fields that are not marked editable")
	return cmd
}
