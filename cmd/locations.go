package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLocationsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Extract locations from unprocessed articles",
		Long: `Runs location extraction over articles not yet marked processed. Extracted
places are stored with confidence tiers and optional coordinates, and each
article is marked processed in the same transaction.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireStore(a); err != nil {
				return err
			}

			report, err := a.Enricher().ExtractPending(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("location extraction run: %w", err)
			}
			return printJSON(cmd, report)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "max articles to process")
	return cmd
}
