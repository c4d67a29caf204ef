package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Run political violence classification over stored articles",
		Long: `Classifies articles that lack a verdict from the active provider's model.
Results are stored per (article, model version), so re-running after a model
change classifies everything again under the new version.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireStore(a); err != nil {
				return err
			}

			report, err := a.Enricher().ClassifyPending(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("classification run: %w", err)
			}
			return printJSON(cmd, report)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "max articles to classify")
	return cmd
}
