package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stillhq/sadb-tools/internal/catalog"
	"github.com/stillhq/sadb-tools/internal/history"
	"github.com/stillhq/sadb-tools/internal/imagepick"
	"github.com/stillhq/sadb-tools/internal/importer"
	"github.com/stillhq/sadb-tools/internal/ui"
)

var (
	importYes       bool
	importDryRun    bool
	importAppStream []string
	importOrigin    string
)

func init() {
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "save without showing the review form")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "print the records instead of saving them")
	importCmd.Flags().StringSliceVar(&importAppStream, "appstream", nil, "additional AppStream collection files to load")
	importCmd.Flags().StringVar(&importOrigin, "origin", "", "only match components from this origin (overrides config)")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <flatpak-id>...",
	Short: "Import Flatpak applications into the catalog",
	Long: "Looks up each Flatpak ID in the AppStream metadata, picks the largest rendition of\n" +
		"every screenshot and writes the resulting record to repo.yaml after review.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		pool, err := e.pool(importAppStream)
		if err != nil {
			return err
		}

		origin := e.cfg.AppStream.Origin
		if importOrigin != "" {
			origin = importOrigin
		}
		imp := importer.New(pool, imagepick.New(e.fetcher()),
			importer.WithOrigin(origin),
			importer.WithPrimarySrc(e.cfg.Import.PrimarySrc),
			importer.WithArch(e.cfg.Import.Arch),
			importer.WithBranch(e.cfg.Import.Branch),
			importer.WithIconURLTemplate(e.cfg.Import.IconURLTemplate),
			importer.WithConcurrency(e.cfg.Import.PickConcurrency),
			importer.WithLogger(e.logger.WithPrefix("importer")),
		)

		catPath := e.cfg.CatalogPath()
		cat, err := catalog.Load(catPath)
		if err != nil {
			return err
		}

		var store *history.Store
		if !importDryRun {
			store, err = history.Open(e.cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()
		}

		// Every ID is fetched in the background while earlier ones are
		// being reviewed.
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		tasks := make([]*importer.Task, len(args))
		for i, flatpakID := range args {
			tasks[i] = imp.Start(ctx, flatpakID)
		}

		for i, flatpakID := range args {
			fmt.Println(ui.Dim.Render("Importing " + flatpakID + "..."))
			res, err := tasks[i].Wait()
			if err != nil {
				return err
			}

			if importDryRun {
				printRecord(res.ID, res.Record)
				continue
			}

			if !importYes {
				save, err := importer.Review(res)
				if err != nil {
					return err
				}
				if !save {
					ui.Warn("Discarded %s", res.ID)
					continue
				}
			} else if err := res.Record.Validate(res.ID); err != nil {
				return err
			}

			if old, ok := cat.Get(res.ID); ok && res.Record.Extra == nil {
				res.Record.Extra = old.Extra
			}
			replaced := cat.Put(res.ID, res.Record)
			if err := cat.Save(catPath); err != nil {
				return err
			}
			if err := store.RecordImport(&history.Import{
				RecordID:  res.ID,
				FlatpakID: res.FlatpakID,
				Replaced:  replaced,
			}); err != nil {
				return err
			}

			verb := "Added"
			if replaced {
				verb = "Replaced"
			}
			ui.Success("%s %s (%d screenshots)", verb, ui.White.Render(res.ID), len(res.Record.ScreenshotURLs))
		}
		return nil
	},
}

func printRecord(id string, r *catalog.Record) {
	fmt.Println(ui.Green.Render(id))
	ui.Field("Name", r.Name)
	ui.Field("Author", r.Author)
	ui.Field("Summary", r.Summary)
	ui.Field("Source", r.PrimarySrc+" "+r.SrcPkgName)
	ui.Field("Categories", strings.Join(r.Categories, ", "))
	ui.Field("Keywords", strings.Join(r.Keywords, ", "))
	ui.Field("MIME types", strings.Join(r.MimeTypes, ", "))
	ui.Field("License", r.License)
	ui.Field("Homepage", r.Homepage)
	ui.Field("Donate", r.DonateURL)
	ui.Field("Icon", r.IconURL)
	for i, u := range r.ScreenshotURLs {
		ui.Field(fmt.Sprintf("Screenshot %d", i), u)
	}
	if r.Description != "" {
		fmt.Println()
		fmt.Println(r.Description)
	}
	fmt.Println()
}
