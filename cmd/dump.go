package cmd

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"quickmenu/internal/domain"
	"quickmenu/internal/menu"
	"quickmenu/internal/ui"
)

var (
	dumpJSON  bool
	dumpPager bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the captured menu tree",
	Long: `Capture the menu bar once and print it. The tree view shows each node's
path next to its title; --json prints the searchable index instead.`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpJSON, "json", false, "Print the flattened index as JSON")
	dumpCmd.Flags().BoolVar(&dumpPager, "pager", false, "Browse the tree in a pager")
	rootCmd.AddCommand(dumpCmd)
}

// itemJSON is the JSON shape of one index entry
type itemJSON struct {
	Title      string `json:"title"`
	Breadcrumb string `json:"breadcrumb"`
	Path       []int  `json:"path"`
	Enabled    bool   `json:"enabled"`
	Depth      int    `json:"depth"`
	Submenu    bool   `json:"submenu,omitempty"`
}

func toJSON(items []domain.Item) []itemJSON {
	out := make([]itemJSON, len(items))
	for i, item := range items {
		out[i] = itemJSON{
			Title:      item.Title,
			Breadcrumb: item.Breadcrumb,
			Path:       item.Path,
			Enabled:    item.Enabled,
			Depth:      item.Depth,
			Submenu:    item.Submenu,
		}
	}
	return out
}

func runDump(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	src, err := openSource()
	if err != nil {
		return err
	}

	target, tree, items, err := capture(cmd.Context(), src, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dumpJSON {
		data, err := json.MarshalIndent(toJSON(items), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode index: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s (%d items)\n", target, len(items))
	if err := menu.Print(&buf, tree); err != nil {
		return err
	}
	if dumpPager {
		return ui.Page(buf.String())
	}
	_, err = buf.WriteTo(out)
	return err
}
