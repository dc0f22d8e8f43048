package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stillhq/sadb-tools/internal/imagepick"
	"github.com/stillhq/sadb-tools/internal/ui"
)

var pickVerbose bool

func init() {
	pickCmd.Flags().BoolVarP(&pickVerbose, "verbose", "v", false, "print the dimensions of every candidate")
	rootCmd.AddCommand(pickCmd)
}

var pickCmd = &cobra.Command{
	Use:   "pick <url>...",
	Short: "Print the image URL with the largest pixel area",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		picker := imagepick.New(e.fetcher())

		if !pickVerbose {
			best, err := picker.PickBest(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), best)
			return nil
		}

		var best imagepick.Candidate
		for _, u := range args {
			c, err := picker.Measure(cmd.Context(), u)
			if err != nil {
				return err
			}
			fmt.Println(ui.Dim.Render(fmt.Sprintf("%6dx%-6d", c.Width, c.Height)) + " " + u)
			if c.Area() > best.Area() {
				best = c
			}
		}
		fmt.Println(ui.Green.Render("best: ") + best.URL)
		return nil
	},
}
