package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quickmenu/internal/executor"
	"quickmenu/internal/logging"
	"quickmenu/internal/search"
)

var execCmd = &cobra.Command{
	Use:   "exec <breadcrumb>",
	Short: "Run a menu item by its breadcrumb",
	Long: `Capture the menu bar once and run the item whose breadcrumb matches,
for example:

  quickmenu exec --menu editor.yaml "File → Save"

Matching ignores case and surrounding whitespace.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	src, err := openSource()
	if err != nil {
		return err
	}

	target, _, items, err := capture(cmd.Context(), src, cfg)
	if err != nil {
		return err
	}

	breadcrumb := strings.Join(args, " ")
	item, ok := search.FindBreadcrumb(items, breadcrumb)
	if !ok {
		return fmt.Errorf("no menu item %q in %s", breadcrumb, target)
	}
	if !item.Enabled {
		return fmt.Errorf("%q is disabled", item.Breadcrumb)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ActionTimeout())
	defer cancel()

	// No overlay to dismiss, so no delay
	if err := executor.New(src, 0).Execute(ctx, target, item.Path); err != nil {
		return err
	}
	logging.Log.WithField("path", item.Path.Key()).Infof("Ran %q", item.Breadcrumb)
	fmt.Fprintf(cmd.OutOrStdout(), "Ran %s\n", item.Breadcrumb)
	return nil
}
