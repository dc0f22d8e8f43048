package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stillhq/sadb-tools/internal/ui"
)

var componentsAppStream []string

func init() {
	componentsCmd.Flags().StringSliceVar(&componentsAppStream, "appstream", nil, "additional AppStream collection files to load")
	rootCmd.AddCommand(componentsCmd)
}

var componentsCmd = &cobra.Command{
	Use:   "components [query]",
	Short: "List AppStream components available for import",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		pool, err := e.pool(componentsAppStream)
		if err != nil {
			return err
		}

		var query string
		if len(args) == 1 {
			query = strings.ToLower(args[0])
		}
		shown := 0
		for _, c := range pool.Components() {
			if query != "" && !strings.Contains(strings.ToLower(c.ID), query) && !strings.Contains(strings.ToLower(c.Name), query) {
				continue
			}
			fmt.Println(ui.White.Render(fmt.Sprintf("%-40s", c.ID)) + " " + c.Name + ui.Dim.Render(" ["+c.Origin+"]"))
			shown++
		}
		fmt.Println(ui.Dim.Render(fmt.Sprintf("%d of %d components", shown, pool.Len())))
		return nil
	},
}
