package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docdex/internal/extract"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
)

func newIngestCmd(c *cli) *cobra.Command {
	var (
		owner string
		id    string
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Extract, chunk and index local files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id != "" && len(args) > 1 {
				return errors.New("--id can only be used with a single file")
			}

			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var errs []error
			for _, path := range args {
				data, err := os.ReadFile(filepath.Clean(path))
				if err != nil {
					errs = append(errs, fmt.Errorf("read %s: %w", path, err))
					continue
				}

				doc, err := a.ingest.Ingest(cmd.Context(), ingestuc.Upload{
					ID:          id,
					Filename:    filepath.Base(path),
					ContentType: extract.ContentTypeFor(path),
					Owner:       owner,
					Data:        data,
				})
				if err != nil {
					errs = append(errs, fmt.Errorf("ingest %s: %w", path, err))
					continue
				}
				cmd.Printf("%s\t%s\t%s\t%d chunks\n", path, doc.ID(), doc.Status(), doc.ChunkCount())
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner recorded on the documents")
	cmd.Flags().StringVar(&id, "id", "", "document id (single file only; generated when empty)")
	return cmd
}
