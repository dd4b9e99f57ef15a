package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quickmenu/internal/search"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Rank menu items against a query",
	Long: `Capture the menu bar once and print the items matching the query, best
match first. Every word of the query must appear in an item's breadcrumb.
An empty query lists the top-level menus.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of results (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	src, err := openSource()
	if err != nil {
		return err
	}

	_, _, items, err := capture(cmd.Context(), src, cfg)
	if err != nil {
		return err
	}

	limit := cfg.MaxResults
	if searchLimit > 0 {
		limit = searchLimit
	}

	out := cmd.OutOrStdout()
	for _, item := range search.Search(strings.Join(args, " "), items, limit) {
		line := item.Breadcrumb
		if !item.Enabled {
			line += " (disabled)"
		}
		fmt.Fprintf(out, "%-12s %s\n", item.Path, line)
	}
	return nil
}
