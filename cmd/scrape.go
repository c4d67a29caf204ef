package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redline-bd/redline/internal/scrape"
)

func newScrapeCmd() *cobra.Command {
	var (
		sourceKey string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape latest articles from a news source",
		Long: `Discovers article URLs on the source's section pages, scrapes each new
article and stores it. Already-stored URLs are skipped.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireStore(a); err != nil {
				return err
			}

			profile, err := scrape.ProfileFor(sourceKey)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = a.Cfg.Scrape.DefaultLimit
			}

			result, err := a.Orchestrator(profile).Run(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("scrape run: %w", err)
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&sourceKey, "source", "dailystar", "source to scrape (dailystar, prothomalo)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max articles to scrape (0 = configured default)")
	return cmd
}

func printJSON(cmd *cobra.Command, payload any) error {
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}
