package main

import (
	"context"
	"time"

	"github.com/newthinker/pricefeed/internal/core"
	"github.com/newthinker/pricefeed/internal/render"
	"github.com/spf13/cobra"
)

var (
	quotesAll         bool
	quotesStocks      bool
	quotesCrypto      bool
	quotesCommodities bool
	quotesNoCache     bool
	quotesJSON        bool
)

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Fetch price quotes",
	Args:  cobra.NoArgs,
	RunE:  runQuotes,
}

func init() {
	f := quotesCmd.Flags()
	f.BoolVar(&quotesAll, "all", false, "fetch all assets (default)")
	f.BoolVar(&quotesStocks, "stocks", false, "fetch stocks and ETFs only")
	f.BoolVar(&quotesCrypto, "crypto", false, "fetch crypto only")
	f.BoolVar(&quotesCommodities, "commodities", false, "fetch commodities only")
	f.BoolVar(&quotesNoCache, "no-cache", false, "bypass the cache")
	f.BoolVar(&quotesJSON, "json", false, "output as JSON")
	quotesCmd.MarkFlagsMutuallyExclusive("all", "stocks", "crypto", "commodities")

	rootCmd.AddCommand(quotesCmd)
}

// quotesScope returns the selected category, or "" for all.
func quotesScope() core.Category {
	switch {
	case quotesStocks:
		return core.CategoryStocks
	case quotesCrypto:
		return core.CategoryCrypto
	case quotesCommodities:
		return core.CategoryCommodities
	default:
		return ""
	}
}

func runQuotes(cmd *cobra.Command, args []string) error {
	return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
		useCache := !quotesNoCache

		var (
			quotes []core.Quote
			err    error
		)
		if scope := quotesScope(); scope != "" {
			quotes, err = e.app.CategoryQuotes(ctx, scope, useCache)
		} else {
			quotes, err = e.app.AllQuotes(ctx, useCache)
		}
		if err != nil {
			return err
		}

		if quotesJSON {
			if quotes == nil {
				quotes = []core.Quote{}
			}
			return render.JSON(cmd.OutOrStdout(), quotes)
		}
		return render.QuotesTable(cmd.OutOrStdout(), quotes, time.Now())
	})
}
