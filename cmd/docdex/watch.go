package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docdex/internal/watcher"
)

func newWatchCmd(c *cli) *cobra.Command {
	var (
		owner    string
		debounce time.Duration
		noScan   bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Keep a directory indexed as files are added and removed",
		Long: `Ingest every supported file in <dir>, then follow the directory: new files are
ingested once, removed or renamed files have their document deleted. Edits to a file
that is already indexed are ignored; remove and re-add it to re-index.

--owner and --debounce default to the watch section of the config.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("owner") {
				owner = c.cfg.Watch.Owner
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = c.cfg.Watch.Debounce()
			}

			w := watcher.New(args[0], a.ingest, a.documents, a.logger).
				WithOwner(owner).
				WithDebounce(debounce).
				OnResult(func(r watcher.Result) {
					if r.Err != nil {
						cmd.PrintErrf("%s\t%s\t%v\n", r.Path, r.Action, r.Err)
						return
					}
					cmd.Printf("%s\t%s\t%s\t%s\t%d chunks\n", r.Path, r.Action, r.DocumentID, r.Status, r.ChunkCount)
				})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !noScan {
				if err := w.Scan(ctx); err != nil {
					return err
				}
			}
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner recorded on ingested documents")
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet period before a change is applied")
	cmd.Flags().BoolVar(&noScan, "no-scan", false, "skip ingesting files already in the directory")
	return cmd
}
