package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"swredit/gdata"
	"swredit/types"
)

// Record documents look like this, with fields in file order:
//
//	file: TROOPSD.DAT
//	header: (1, 10, 16, 20)
//	records:
//	  - id: 0
//	    active: 1
//	    ...
//
// The header is informational; import recomputes it.

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func exportDoc(m *gdata.Manager) *yaml.Node {
	records := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range m.Records {
		rec := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range m.Type.Schema.Fields() {
			v, _ := r.Get(f.Name)
			value := scalar("!!int", strconv.FormatInt(v.Int, 10))
			if v.Kind == types.KindBytes {
				value = scalar("!!str", fmt.Sprint(v.Any()))
			}
			rec.Content = append(rec.Content, scalar("!!str", f.Name), value)
		}
		records.Content = append(records.Content, rec)
	}

	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			scalar("!!str", "file"), scalar("!!str", m.Type.Filename),
			scalar("!!str", "header"), scalar("!!str", m.Header.String()),
			scalar("!!str", "records"), records,
		},
	}}}
}

type importDoc struct {
	File    string      `yaml:"file"`
	Header  string      `yaml:"header"`
	Records []yaml.Node `yaml:"records"`
}

// importRecords turns a record document back into records for ft. Every schema field must be
// present; derived name fields are ignored; anything else is an error.
func importRecords(ft *types.FileType, data []byte) ([]*types.Record, error) {
	var doc importDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse record document")
	}
	if doc.File != ft.Filename {
		return nil, fmt.Errorf("document is for %q, not %v", doc.File, ft.Filename)
	}

	derived := map[string]bool{}
	for _, rule := range ft.Names {
		derived[rule.Field] = true
	}

	s := ft.Schema
	out := make([]*types.Record, 0, len(doc.Records))
	for i, node := range doc.Records {
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("record %v: line %v: expected a mapping", i, node.Line)
		}
		r := s.NewRecord()
		seen := map[string]bool{}
		for j := 0; j+1 < len(node.Content); j += 2 {
			key, value := node.Content[j].Value, node.Content[j+1]
			field, ok := s.Field(key)
			if !ok {
				if derived[key] {
					continue
				}
				return nil, fmt.Errorf("record %v: line %v: %v has no field %q", i, value.Line, ft.Filename, key)
			}
			if field.Codec.Bytes {
				var str string
				if err := value.Decode(&str); err != nil {
					return nil, errors.Wrapf(err, "record %v: %v", i, key)
				}
				r.Set(key, types.BytesValue([]byte(str)))
			} else {
				var n int64
				if err := value.Decode(&n); err != nil {
					return nil, errors.Wrapf(err, "record %v: %v", i, key)
				}
				r.SetInt(key, n)
			}
			seen[key] = true
		}
		for _, f := range s.Fields() {
			if !seen[f.Name] {
				return nil, fmt.Errorf("record %v: %w", i, &types.FieldError{Field: f.Name, Format: f.Codec, Err: types.ErrMissingField})
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file> <out.yaml>",
		Short: "Write the records of a data file to a YAML document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := a.manager(args[0], false)
			if err != nil {
				return err
			}
			defer release()
			if err := m.Load(); err != nil {
				return err
			}

			var buf bytes.Buffer
			enc := yaml.NewEncoder(&buf)
			enc.SetIndent(2)
			if err := enc.Encode(exportDoc(m)); err != nil {
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}
			if err := os.WriteFile(args[1], buf.Bytes(), 0o644); err != nil {
				return errors.Wrap(err, "export")
			}
			fmt.Fprintln(a.out, len(m.Records), "records written to", args[1])
			return nil
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file> <in.yaml>",
		Short: "Replace the records of a data file with a YAML document and save it",
		Long: `import replaces every record of a data file with the records of a document written by
export. The current file must still load; its header count is recomputed on save.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := a.manager(args[0], false)
			if err != nil {
				return err
			}
			defer release()

			data, err := os.ReadFile(args[1])
			if err != nil {
				return errors.Wrap(err, "import")
			}
			records, err := importRecords(m.Type, data)
			if err != nil {
				return err
			}
			if err := m.Load(); err != nil {
				return err
			}

			m.Records = records
			if err := m.Save(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, len(records), "records saved to", m.Type.Filename)
			return nil
		},
	}
}
