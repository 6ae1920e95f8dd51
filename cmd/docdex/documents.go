package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newDocumentsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "documents",
		Short: "List indexed documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			docs, err := a.documents.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list documents: %w", err)
			}
			if len(docs) == 0 {
				cmd.Println("No documents.")
				return nil
			}
			for i := range docs {
				d := &docs[i]
				cmd.Printf("%s\t%s\t%s\t%d chunks\t%s\n",
					d.ID(), d.Filename(), d.Status(), d.ChunkCount(), d.CreatedAt().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document and all of its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.documents.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete %s: %w", args[0], err)
			}
			cmd.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}
