package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stillhq/sadb-tools/internal/catalog"
	"github.com/stillhq/sadb-tools/internal/ui"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List catalog records, optionally filtered by a search query",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		cat, err := catalog.Load(e.cfg.CatalogPath())
		if err != nil {
			return err
		}

		ids := cat.IDs()
		if len(args) == 1 {
			ids = cat.Search(args[0])
		}
		for _, id := range ids {
			r, _ := cat.Get(id)
			fmt.Println(ui.White.Render(fmt.Sprintf("%-24s", id)) + " " + ui.Dim.Render(r.Summary))
		}
		fmt.Println(ui.Dim.Render(fmt.Sprintf("%d of %d records", len(ids), cat.Len())))
		return nil
	},
}
