package main

import (
	"context"
	"fmt"

	"github.com/newthinker/pricefeed/internal/app"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [filepath]",
	Short: "Export all prices to JSON",
	Long: `Fetch fresh prices of every asset, bypassing the cache, and write them
as a JSON snapshot. The target is a local path (default prices.json) or an
s3://bucket/key URI.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	target := app.DefaultExportPath
	if len(args) == 1 {
		target = args[0]
	}

	return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
		snap, err := e.app.Export(ctx, target)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Prices exported to %s (%d assets)\n", target, snap.Count)
		return nil
	})
}
