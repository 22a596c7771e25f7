package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheClear bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache management",
	Args:  cobra.NoArgs,
	RunE:  runCache,
}

func init() {
	cacheCmd.Flags().BoolVar(&cacheClear, "clear", false, "remove every cache entry")
	rootCmd.AddCommand(cacheCmd)
}

func runCache(cmd *cobra.Command, args []string) error {
	return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
		out := cmd.OutOrStdout()
		if !cacheClear {
			fmt.Fprintf(out, "Cache directory: %s\n", e.cfg.Cache.Dir)
			fmt.Fprintf(out, "TTL: %s\n", e.cfg.CacheTTL())
			return nil
		}

		n, err := e.app.ClearCache(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Cache cleared (%d entries)\n", n)
		return nil
	})
}
