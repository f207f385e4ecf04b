package main

// Data file reader/editor for Star Wars Rebellion
//
// example usage:
//
// swredit list
// swredit dump capshpsd --names
// swredit get capshpsd 3 maintenance
// swredit set capshpsd 3 maint 20
// swredit export troopsd troops.yaml
// swredit import troopsd troops.yaml
// swredit watch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"swredit/config"
	"swredit/gdata"
	"swredit/tables"
	"swredit/textstra"
	"swredit/types"
	"swredit/utils"
)

// app is what every command gets to work with once flags and config are sorted out.
type app struct {
	cfg config.Config
	dir string
	log *slog.Logger
	out io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "swredit",
		Short: "Star Wars Rebellion data file editor",
		Long: `swredit reads and writes the GDATA files of Star Wars Rebellion.

It is usually not necessary to type the full name of a file or field:
"capshp" will be recognized as CAPSHPSD.DAT and "maint" as maintenance.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, errOut)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().String("dir", "", "game directory (default: $"+config.DirEnv+", then the config file, then the current directory)")
	root.PersistentFlags().String("config", "", "config file (default "+config.DefaultFile+")")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error")
	root.PersistentFlags().Bool("backup", true, "keep the previous version of a saved file as <name>.old")

	root.AddCommand(
		a.listCmd(),
		a.unknownCmd(),
		a.checkCmd(),
		a.dumpCmd(),
		a.getCmd(),
		a.setCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.watchCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, errOut io.Writer) error {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(orDefault(path, config.DefaultFile), path != "")
	if err != nil {
		return err
	}

	if level, _ := flags.GetString("log-level"); level != "" {
		if cfg.LogLevel, err = config.ParseLevel(level); err != nil {
			return err
		}
	}
	if flags.Changed("backup") {
		cfg.Backup, _ = flags.GetBool("backup")
	}

	dir, _ := flags.GetString("dir")
	a.cfg = cfg
	a.dir = config.ResolveDir(dir, cfg)
	a.log = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: cfg.LogLevel}))
	a.log.Debug("configured", "dir", a.dir, "backup", cfg.Backup, "settle", cfg.Settle)
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (a *app) dataDir() string {
	return filepath.Join(a.dir, tables.Location)
}

// fileType resolves a fuzzy filename argument against the registry.
func fileType(arg string) (*types.FileType, error) {
	if ft, ok := tables.Lookup(arg); ok {
		return ft, nil
	}
	names := make([]string, 0, len(tables.All))
	for _, ft := range tables.All {
		names = append(names, ft.Filename)
	}
	name, err := utils.FuzzyMatch(arg, names, "data file")
	if err != nil {
		return nil, err
	}
	return tables.ByFile[name], nil
}

// manager builds a manager for a fuzzy filename. The returned func releases the name library.
func (a *app) manager(arg string, names bool) (*gdata.Manager, func(), error) {
	ft, err := fileType(arg)
	if err != nil {
		return nil, nil, err
	}

	opts := []gdata.Option{gdata.WithLogger(a.log), gdata.WithBackup(a.cfg.Backup)}
	release := func() {}
	if names {
		var resolver gdata.NameResolver = textstra.Nop{}
		lib, err := textstra.Open(a.dir)
		if err != nil {
			a.log.Warn("names unavailable", "err", err)
		} else {
			resolver = lib
			release = func() { lib.Close() }
		}
		opts = append(opts, gdata.WithNames(resolver))
	}

	return gdata.New(ft, a.dir, opts...), release, nil
}

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
