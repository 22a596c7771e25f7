package main

import (
	"github.com/newthinker/pricefeed/internal/render"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all supported symbols",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return render.AssetList(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
