package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/newthinker/pricefeed/internal/app"
	"github.com/newthinker/pricefeed/internal/render"
	"github.com/spf13/cobra"
)

var (
	historyWindow  string
	historyNoCache bool
	historyJSON    bool
)

var historyCmd = &cobra.Command{
	Use:     "history <symbol>",
	Short:   "Fetch historical data",
	Example: "  pricefeed history BTC --window 1Y",
	Args:    cobra.ExactArgs(1),
	RunE:    runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyWindow, "window", app.DefaultWindow,
		fmt.Sprintf("time window, one of %s", strings.Join(app.Windows, ", ")))
	historyCmd.Flags().BoolVar(&historyNoCache, "no-cache", false, "bypass the cache")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func validateWindow(w string) (string, error) {
	w = strings.ToUpper(w)
	if !slices.Contains(app.Windows, w) {
		return "", fmt.Errorf("invalid window %q, want one of %s", w, strings.Join(app.Windows, ", "))
	}
	return w, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	window, err := validateWindow(historyWindow)
	if err != nil {
		return err
	}

	return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
		series, err := e.app.History(ctx, args[0], window, !historyNoCache)
		if err != nil {
			return fmt.Errorf("could not fetch historical data for %s: %w", args[0], err)
		}
		if historyJSON {
			return render.JSON(cmd.OutOrStdout(), series)
		}
		return render.HistorySummary(cmd.OutOrStdout(), *series, window, time.Local)
	})
}
