package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"swredit/gdata"
	"swredit/tables"
	"swredit/utils"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the data files swredit understands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, ft := range tables.All {
				present := "missing"
				if _, err := os.Stat(filepath.Join(a.dir, ft.Location, ft.Filename)); err == nil {
					present = "present"
				}
				fmt.Fprintf(a.out, "%-13v %-8v %-8v %v\n", ft.Filename, ft.Schema.Family(), present, ft.Description)
			}
			return nil
		},
	}
}

func (a *app) unknownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unknown",
		Short: "List data files in GDATA that swredit does not understand yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := utils.ListUnprocessed(a.dataDir(), tables.All)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(a.out, name)
			}
			return nil
		},
	}
}

var errCheckFailed = errors.New("check failed")

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Sanity check every known data file that is present",
		Long: `check loads every known data file, validates its header and verifies that saving it
unchanged would reproduce it byte for byte. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, ft := range tables.All {
				m := gdata.New(ft, a.dir, gdata.WithLogger(a.log))
				if _, err := os.Stat(m.Path); err != nil {
					continue
				}
				status, err := check(m)
				if err != nil {
					failed++
					fmt.Fprintf(a.out, "%-13v FAILED  %v\n", ft.Filename, err)
					continue
				}
				fmt.Fprintf(a.out, "%-13v %-8v %v records\n", ft.Filename, status, len(m.Records))
			}
			if failed > 0 {
				return fmt.Errorf("%w: %v files", errCheckFailed, failed)
			}
			return nil
		},
	}
}

func check(m *gdata.Manager) (string, error) {
	if err := m.Load(); err != nil {
		return "", err
	}
	data, err := m.Prepare()
	if err != nil {
		return "", err
	}
	if sum := gdata.Checksum(data); sum != m.Checksum {
		return "", fmt.Errorf("re-encoding changes the file (%v != %v)", sum, m.Checksum)
	}
	if m.Pristine() {
		return "pristine", nil
	}
	return "modified", nil
}
