package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stillhq/sadb-tools/internal/textconv"
)

func init() {
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert HTML description markup to plain text",
	Long:  "Reads markup from the file (or stdin when omitted or \"-\") and prints the plain text used for catalog descriptions.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("reading markup: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), textconv.ToPlainText(string(data)))
		return nil
	},
}
