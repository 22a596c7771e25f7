package collector

import (
	"context"
	"net/http"

	"github.com/newthinker/pricefeed/internal/core"
)

//go:generate mockgen -source=interface.go -destination=mocks/mocks.go -package=mocks

// HTTPClient is the subset of *http.Client the upstream clients use.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// EquitySource serves stocks, ETFs and commodities.
type EquitySource interface {
	// Name returns the provider identifier (e.g., "twelvedata")
	Name() string

	// FetchStockQuotes returns quotes for every registered stock and ETF
	FetchStockQuotes(ctx context.Context) ([]core.Quote, error)

	// FetchCommodityQuotes returns quotes for every registered commodity
	FetchCommodityQuotes(ctx context.Context) ([]core.Quote, error)

	// FetchHistory returns candles for a registry symbol over a named window
	// ("1D", "1W", "1M", "3M", "1Y", "5Y").
	FetchHistory(ctx context.Context, symbol, window string) (*core.HistoricalSeries, error)
}

// CryptoSource serves cryptocurrencies.
type CryptoSource interface {
	// Name returns the provider identifier (e.g., "coingecko")
	Name() string

	// FetchCryptoQuotes returns quotes for every registered coin
	FetchCryptoQuotes(ctx context.Context) ([]core.Quote, error)

	// FetchHistory returns candles for a registry symbol over the last days
	FetchHistory(ctx context.Context, symbol string, days int) (*core.HistoricalSeries, error)
}
