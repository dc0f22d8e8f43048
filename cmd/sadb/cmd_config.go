package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stillhq/sadb-tools/internal/config"
	"github.com/stillhq/sadb-tools/internal/ui"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and create the sadb-tools configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println(ui.Cyan.Render("Artifacts: ") + ui.White.Render(cfg.ArtifactsDir))
		fmt.Println(ui.Cyan.Render("Catalog:   ") + ui.White.Render(cfg.CatalogPath()))
		fmt.Println(ui.Cyan.Render("History:   ") + ui.White.Render(cfg.HistoryPath()))
		fmt.Println(ui.Cyan.Render("Log level: ") + ui.White.Render(cfg.LogLevel))
		fmt.Println()
		fmt.Println(ui.Cyan.Render("AppStream:"))
		fmt.Println(ui.Dim.Render("  Paths:     ") + ui.White.Render(strings.Join(cfg.AppStream.Paths, ", ")))
		origin := cfg.AppStream.Origin
		if origin == "" {
			origin = "(any)"
		}
		fmt.Println(ui.Dim.Render("  Origin:    ") + ui.White.Render(origin))
		fmt.Println()
		fmt.Println(ui.Cyan.Render("Import:"))
		fmt.Println(ui.Dim.Render("  Source:    ") + ui.White.Render(cfg.Import.PrimarySrc))
		fmt.Println(ui.Dim.Render("  Ref:       ") + ui.White.Render(cfg.Import.Arch+"/"+cfg.Import.Branch))
		fmt.Println(ui.Dim.Render("  Icon URL:  ") + ui.White.Render(cfg.Import.IconURLTemplate))
		fmt.Println(ui.Dim.Render("  Parallel:  ") + ui.White.Render(fmt.Sprintf("%d", cfg.Import.PickConcurrency)))
		fmt.Println()
		fmt.Println(ui.Cyan.Render("HTTP:"))
		fmt.Println(ui.Dim.Render("  Timeout:   ") + ui.White.Render(cfg.HTTP.Timeout.String()))
		fmt.Println(ui.Dim.Render("  Retries:   ") + ui.White.Render(fmt.Sprintf("%d", cfg.HTTP.Retries)))
		fmt.Println(ui.Dim.Render("  Rate:      ") + ui.White.Render(fmt.Sprintf("%g req/s", cfg.HTTP.RequestsPerSec)))
		fmt.Println()
		fmt.Println(ui.Dim.Render("Config file: " + configPath))

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		cfg := config.Default()
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		ui.Success("Wrote %s", ui.White.Render(configPath))
		return nil
	},
}
