package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"swredit/tables"
	"swredit/watch"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report every change to a known data file until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w := watch.New_watcher(a.dir, tables.All, a.cfg.Settle, a.log)
			events := make(chan *watch.Event)
			if err := w.Start_watching(events); err != nil {
				return err
			}
			defer w.Stop_watching()

			fmt.Fprintln(a.out, "Watching", a.dataDir())
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev := <-events:
					a.report(ev)
				}
			}
		},
	}
}

func (a *app) report(ev *watch.Event) {
	switch {
	case ev.Err != nil:
		fmt.Fprintf(a.out, "%-13v BROKEN   %v\n", ev.Filename, ev.Err)
	case ev.Pristine:
		fmt.Fprintf(a.out, "%-13v pristine %v records\n", ev.Filename, ev.Records)
	default:
		fmt.Fprintf(a.out, "%-13v modified %v records (%v)\n", ev.Filename, ev.Records, ev.Checksum)
	}
}
