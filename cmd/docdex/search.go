package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docdex/internal/domain/search/result"
)

type searchHitJSON struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkText  string  `json:"chunk_text"`
	Score      float64 `json:"score"`
}

func newSearchCmd(c *cli) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank indexed chunks against a query",
		Long: `Scores every indexed chunk by keyword overlap (Jaccard index) with the query
and prints the best matches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			hits, err := a.retrieval.Search(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if asJSON {
				return printHitsJSON(cmd, hits)
			}
			printHits(cmd, hits)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (0 uses the configured default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}

func printHitsJSON(cmd *cobra.Command, hits []result.Hit) error {
	out := make([]searchHitJSON, len(hits))
	for i := range hits {
		out[i] = searchHitJSON{
			DocumentID: hits[i].DocumentID(),
			Filename:   hits[i].Filename(),
			ChunkText:  hits[i].Text(),
			Score:      hits[i].Score(),
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printHits(cmd *cobra.Command, hits []result.Hit) {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range hits {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, hits[i].Filename(), hits[i].Score())
		cmd.Printf("      %s\n", result.Truncate(hits[i].Text(), 160))
		cmd.Println()
	}
}
