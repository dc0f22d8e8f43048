package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stillhq/sadb-tools/internal/catalog"
	"github.com/stillhq/sadb-tools/internal/ui"
)

func init() {
	rootCmd.AddCommand(duplicatesCmd)
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List catalog records that share a source package",
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

		dups := cat.DuplicateSrcPkgNames()
		if len(dups) == 0 {
			ui.Success("No duplicates among %d records", cat.Len())
			return nil
		}
		pkgs := make([]string, 0, len(dups))
		for pkg := range dups {
			pkgs = append(pkgs, pkg)
		}
		sort.Strings(pkgs)
		for _, pkg := range pkgs {
			label := pkg
			if label == "" {
				label = `""`
			}
			fmt.Println(ui.Yellow.Render(label) + ui.Dim.Render(": ") + strings.Join(dups[pkg], ", "))
		}
		return fmt.Errorf("%d source packages are used by more than one record", len(dups))
	},
}
