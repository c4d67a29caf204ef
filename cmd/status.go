package cmd

import (
	"github.com/spf13/cobra"

	"github.com/redline-bd/redline/internal/enrich"
	"github.com/redline-bd/redline/internal/news"
	"github.com/redline-bd/redline/internal/scrape"
)

type statusOutput struct {
	Providers []enrich.ProviderStatus `json:"providers"`
	Sources   []news.Source           `json:"sources"`
	Database  string                  `json:"database"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show provider and pipeline configuration status",

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			out := statusOutput{
				Providers: a.Selector.Status(),
				Sources:   sourceList(),
				Database:  "not configured",
			}
			if a.Store != nil {
				out.Database = "ok"
				if err := a.Store.Ping(cmd.Context()); err != nil {
					out.Database = "unreachable: " + err.Error()
				}
			}
			return printJSON(cmd, out)
		},
	}
}

func sourceList() []news.Source {
	profiles := scrape.Profiles()
	sources := make([]news.Source, 0, len(profiles))
	for _, p := range profiles {
		sources = append(sources, p.Source)
	}
	return sources
}
