package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stillhq/sadb-tools/internal/artifacts"
	"github.com/stillhq/sadb-tools/internal/catalog"
	"github.com/stillhq/sadb-tools/internal/history"
	"github.com/stillhq/sadb-tools/internal/ui"
)

var redownloadNoProgress bool

func init() {
	redownloadCmd.Flags().BoolVar(&redownloadNoProgress, "no-progress", false, "do not draw a progress bar")
	rootCmd.AddCommand(redownloadCmd)
}

var redownloadCmd = &cobra.Command{
	Use:   "redownload",
	Short: "Wipe and re-download every icon and screenshot in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		cat, err := catalog.Load(e.cfg.CatalogPath())
		if err != nil {
			return err
		}
		store, err := history.Open(e.cfg.HistoryPath())
		if err != nil {
			return err
		}
		defer store.Close()

		opts := []artifacts.Option{
			artifacts.WithLogger(e.logger.WithPrefix("artifacts")),
			artifacts.WithRecorder(store),
		}
		if !redownloadNoProgress {
			opts = append(opts, artifacts.WithProgress(os.Stderr))
		}
		m := artifacts.New(e.cfg.ArtifactsDir, e.fetcher(), opts...)

		report, err := m.Redownload(cmd.Context(), cat)
		if err != nil {
			return err
		}
		ui.Success("Downloaded %d icons and %d screenshots for %d records into %s",
			report.Icons, report.Screenshots, report.Records, m.Dir())
		return nil
	},
}
