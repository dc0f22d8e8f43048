package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stillhq/sadb-tools/internal/catalog"
	"github.com/stillhq/sadb-tools/internal/ui"
)

func init() {
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Remove records from the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		path := e.cfg.CatalogPath()
		cat, err := catalog.Load(path)
		if err != nil {
			return err
		}

		for _, id := range args {
			if !cat.Delete(id) {
				return fmt.Errorf("record %q not found", id)
			}
		}
		if err := cat.Save(path); err != nil {
			return err
		}
		for _, id := range args {
			ui.Success("Removed %s", ui.White.Render(id))
		}
		return nil
	},
}
