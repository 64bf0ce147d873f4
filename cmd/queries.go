package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/derm-scout/internal/discovery"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List the active search query catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := discovery.LoadCatalog(cfg.Discovery.QueriesFile)
		if err != nil {
			return eris.Wrap(err, "load query catalog")
		}
		out := cmd.OutOrStdout()
		for i, q := range catalog.Queries {
			marker := " "
			if i < cfg.Discovery.DefaultMaxQueries {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %2d. %s\n", marker, i+1, q)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queriesCmd)
}
