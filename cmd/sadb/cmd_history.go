package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stillhq/sadb-tools/internal/history"
	"github.com/stillhq/sadb-tools/internal/ui"
)

var (
	historyLimit     int
	historyDownloads string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of imports to show (0 for all)")
	historyCmd.Flags().StringVar(&historyDownloads, "downloads", "", "show downloaded files for a record ID instead")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent imports and downloads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		store, err := history.Open(e.cfg.HistoryPath())
		if err != nil {
			return err
		}
		defer store.Close()

		if historyDownloads != "" {
			downloads, err := store.ListDownloads(historyDownloads)
			if err != nil {
				return err
			}
			for _, d := range downloads {
				fmt.Println(ui.Dim.Render(d.CreatedAt.Local().Format(time.DateTime)) + " " +
					ui.White.Render(d.Path) + ui.Dim.Render(fmt.Sprintf(" (%d bytes) ", d.Bytes)) + d.URL)
			}
			return nil
		}

		imports, err := store.ListImports(historyLimit)
		if err != nil {
			return err
		}
		if len(imports) == 0 {
			fmt.Println(ui.Dim.Render("No imports recorded."))
			return nil
		}
		for _, imp := range imports {
			mark := ui.Green.Render("added   ")
			if imp.Replaced {
				mark = ui.Yellow.Render("replaced")
			}
			fmt.Println(ui.Dim.Render(imp.CreatedAt.Local().Format(time.DateTime)) + " " + mark + " " +
				ui.White.Render(imp.RecordID) + ui.Dim.Render(" <- "+imp.FlatpakID))
		}
		return nil
	},
}
