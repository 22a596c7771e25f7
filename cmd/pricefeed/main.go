package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// exitInterrupted is the conventional status for a run stopped by SIGINT.
const exitInterrupted = 130

var (
	cfgFile     string
	debug       bool
	metricsFile string
)

var rootCmd = &cobra.Command{
	Use:   "pricefeed",
	Short: "Fetch asset prices from TwelveData and CoinGecko",
	Long: `pricefeed fetches current and historical prices for stocks, ETFs,
commodities and cryptocurrencies, caches them briefly on disk and prints
them as a table or as JSON.

Examples:
  pricefeed quotes --all            Fetch all prices
  pricefeed quotes --crypto         Fetch crypto prices only
  pricefeed quote BTC               Fetch a single quote
  pricefeed history BTC --window 1M Fetch historical data
  pricefeed export prices.json      Export all prices to JSON
  pricefeed list                    List all supported symbols`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this textfile on exit")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	code := exitCode(err)
	switch code {
	case exitInterrupted:
		fmt.Fprintln(os.Stderr, "Aborted")
	case 1:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return 1
	}
}
