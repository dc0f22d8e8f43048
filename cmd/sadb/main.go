package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stillhq/sadb-tools/internal/config"
	"github.com/stillhq/sadb-tools/internal/ui"
	"github.com/stillhq/sadb-tools/internal/version"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "sadb",
	Short:         "Curation tools for the Still app database",
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Long = ui.Green.Render("sadb-tools") + " " + ui.Cyan.Render(version.Version) + "\n" +
		ui.Dim.Render("Import Flatpak applications from AppStream metadata into repo.yaml and maintain the downloaded artifacts.")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "path to sadb.yml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Red.Render("error:")+" "+err.Error())
		os.Exit(1)
	}
}
