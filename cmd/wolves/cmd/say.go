package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var sayCmd = &cobra.Command{
	Use:   "say <message...>",
	Short: "Print a timestamped status line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newPrinter().Say(strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(sayCmd)
}
