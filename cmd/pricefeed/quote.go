package main

import (
	"context"

	"github.com/newthinker/pricefeed/internal/render"
	"github.com/spf13/cobra"
)

var (
	quoteNoCache bool
	quoteJSON    bool
)

var quoteCmd = &cobra.Command{
	Use:     "quote <symbol>",
	Short:   "Fetch a single quote",
	Example: "  pricefeed quote BTC\n  pricefeed quote aapl --json",
	Args:    cobra.ExactArgs(1),
	RunE:    runQuote,
}

func init() {
	quoteCmd.Flags().BoolVar(&quoteNoCache, "no-cache", false, "bypass the cache")
	quoteCmd.Flags().BoolVar(&quoteJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
		q, err := e.app.Quote(ctx, args[0], !quoteNoCache)
		if err != nil {
			return err
		}
		if quoteJSON {
			return render.JSON(cmd.OutOrStdout(), q)
		}
		return render.QuoteSummary(cmd.OutOrStdout(), *q)
	})
}
