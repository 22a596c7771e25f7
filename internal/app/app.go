package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/pricefeed/internal/cache"
	"github.com/newthinker/pricefeed/internal/collector"
	"github.com/newthinker/pricefeed/internal/core"
	"github.com/newthinker/pricefeed/internal/metrics"
	"github.com/newthinker/pricefeed/internal/storage/archive"
	"go.uber.org/zap"
)

// Cache keys, one per fetch scope.
const (
	KeyAllQuotes       = "all_quotes"
	KeyStockQuotes     = "stock_quotes"
	KeyCommodityQuotes = "commodity_quotes"
	KeyCryptoQuotes    = "crypto_quotes"
)

// CategoryKey returns the cache key of a category's quote list.
func CategoryKey(c core.Category) string {
	switch c {
	case core.CategoryCommodities:
		return KeyCommodityQuotes
	case core.CategoryCrypto:
		return KeyCryptoQuotes
	default:
		return KeyStockQuotes
	}
}

// HistoryKey extends the category key of asset with the symbol and window.
func HistoryKey(asset core.AssetDescriptor, window string) string {
	return CategoryKey(asset.Type.Category()) + ":history:" + asset.Symbol + ":" + window
}

// DefaultWindow is used when no or an unknown window is given.
const DefaultWindow = "1M"

// Windows lists the accepted history windows, shortest first.
var Windows = []string{"1D", "1W", "1M", "3M", "1Y", "5Y"}

var windowDays = map[string]int{
	"1D": 1,
	"1W": 7,
	"1M": 30,
	"3M": 90,
	"1Y": 365,
	"5Y": 1825,
}

// NormalizeWindow upper-cases w and maps unknown names to DefaultWindow.
func NormalizeWindow(w string) string {
	w = strings.ToUpper(strings.TrimSpace(w))
	if _, ok := windowDays[w]; ok {
		return w
	}
	return DefaultWindow
}

// WindowDays returns the crypto lookback in days for a window.
func WindowDays(w string) int {
	return windowDays[NormalizeWindow(w)]
}

// App ties the upstream sources to the cache and the export targets.
type App struct {
	equities collector.EquitySource
	crypto   collector.CryptoSource
	cache    *cache.Cache
	logger   *zap.Logger
	metrics  *metrics.Registry
	exportS3 archive.S3Config
	now      func() time.Time
}

// Option configures an App.
type Option func(*App)

// WithCache enables caching. Without it every call goes upstream.
func WithCache(c *cache.Cache) Option {
	return func(a *App) { a.cache = c }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithMetrics records fetch counts and category failures on reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(a *App) { a.metrics = reg }
}

// WithExportS3 sets the endpoint and credentials used for s3:// export targets.
func WithExportS3(cfg archive.S3Config) Option {
	return func(a *App) { a.exportS3 = cfg }
}

// WithClock sets the time source of export snapshots.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New creates an App over the two upstream sources.
func New(equities collector.EquitySource, crypto collector.CryptoSource, opts ...Option) *App {
	a := &App{
		equities: equities,
		crypto:   crypto,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AllQuotes returns quotes of every category. A failing category is logged
// and left out; only cancellation makes the call fail.
func (a *App) AllQuotes(ctx context.Context, useCache bool) ([]core.Quote, error) {
	if quotes, ok := a.cachedQuotes(ctx, KeyAllQuotes, useCache); ok {
		a.logger.Info("returning cached quotes", zap.String("key", KeyAllQuotes))
		return quotes, nil
	}

	var quotes []core.Quote
	for _, c := range core.Categories {
		got, err := a.fetchCategory(ctx, c)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			a.metrics.RecordCategoryFailure(string(c))
			if errors.Is(err, core.ErrConfigMissing) {
				a.logger.Warn("provider not configured, skipping category",
					zap.String("category", string(c)),
					zap.Error(err))
				continue
			}
			a.logger.Error("failed to fetch category",
				zap.String("category", string(c)),
				zap.Error(err))
			continue
		}
		a.logger.Info("fetched quotes",
			zap.String("category", string(c)),
			zap.Int("count", len(got)))
		quotes = append(quotes, got...)
	}

	if len(quotes) > 0 {
		a.store(ctx, KeyAllQuotes, quotes)
	}
	return quotes, nil
}

// CategoryQuotes returns quotes of one category. Failures propagate.
func (a *App) CategoryQuotes(ctx context.Context, c core.Category, useCache bool) ([]core.Quote, error) {
	key := CategoryKey(c)
	if quotes, ok := a.cachedQuotes(ctx, key, useCache); ok {
		return quotes, nil
	}

	quotes, err := a.fetchCategory(ctx, c)
	if err != nil {
		a.metrics.RecordCategoryFailure(string(c))
		return nil, err
	}
	if len(quotes) > 0 {
		a.store(ctx, key, quotes)
	}
	return quotes, nil
}

// StockQuotes returns stock and ETF quotes.
func (a *App) StockQuotes(ctx context.Context, useCache bool) ([]core.Quote, error) {
	return a.CategoryQuotes(ctx, core.CategoryStocks, useCache)
}

// CommodityQuotes returns commodity quotes.
func (a *App) CommodityQuotes(ctx context.Context, useCache bool) ([]core.Quote, error) {
	return a.CategoryQuotes(ctx, core.CategoryCommodities, useCache)
}

// CryptoQuotes returns cryptocurrency quotes.
func (a *App) CryptoQuotes(ctx context.Context, useCache bool) ([]core.Quote, error) {
	return a.CategoryQuotes(ctx, core.CategoryCrypto, useCache)
}

// Quote returns one symbol's quote taken from its category's list.
func (a *App) Quote(ctx context.Context, symbol string, useCache bool) (*core.Quote, error) {
	asset, ok := core.LookupAsset(symbol)
	if !ok {
		return nil, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("unknown symbol: %s", symbol))
	}

	quotes, err := a.CategoryQuotes(ctx, asset.Type.Category(), useCache)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		if quotes[i].Symbol == asset.Symbol {
			return &quotes[i], nil
		}
	}
	return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no quote returned for %s", asset.Symbol))
}

// History returns candles of one symbol over a named window. Crypto windows
// are translated to a day count.
func (a *App) History(ctx context.Context, symbol, window string, useCache bool) (*core.HistoricalSeries, error) {
	asset, ok := core.LookupAsset(symbol)
	if !ok {
		return nil, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("unknown symbol: %s", symbol))
	}
	window = NormalizeWindow(window)
	key := HistoryKey(asset, window)

	if useCache && a.cache != nil {
		if raw, ok := a.cache.Get(ctx, key); ok {
			var series core.HistoricalSeries
			if err := json.Unmarshal(raw, &series); err == nil && len(series.Candles) > 0 {
				return &series, nil
			}
		}
	}

	var (
		series *core.HistoricalSeries
		err    error
	)
	if asset.Type.Category() == core.CategoryCrypto {
		series, err = a.crypto.FetchHistory(ctx, asset.Symbol, WindowDays(window))
	} else {
		series, err = a.equities.FetchHistory(ctx, asset.Symbol, window)
	}
	if err != nil {
		return nil, err
	}

	if len(series.Candles) > 0 {
		a.store(ctx, key, series)
	}
	return series, nil
}

// ClearCache removes every cache entry and returns how many were removed.
func (a *App) ClearCache(ctx context.Context) (int, error) {
	if a.cache == nil {
		return 0, nil
	}
	n, err := a.cache.Clear(ctx)
	if err != nil {
		return n, err
	}
	a.logger.Info("cache cleared", zap.Int("entries", n))
	return n, nil
}

func (a *App) fetchCategory(ctx context.Context, c core.Category) ([]core.Quote, error) {
	var (
		quotes []core.Quote
		err    error
	)
	switch c {
	case core.CategoryStocks:
		quotes, err = a.equities.FetchStockQuotes(ctx)
	case core.CategoryCommodities:
		quotes, err = a.equities.FetchCommodityQuotes(ctx)
	case core.CategoryCrypto:
		quotes, err = a.crypto.FetchCryptoQuotes(ctx)
	default:
		return nil, fmt.Errorf("unknown category: %s", c)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching %s quotes: %w", c, err)
	}
	a.metrics.RecordQuotesFetched(string(c), len(quotes))
	return quotes, nil
}

// cachedQuotes returns a cached quote list. An empty list counts as a miss.
func (a *App) cachedQuotes(ctx context.Context, key string, useCache bool) ([]core.Quote, bool) {
	if !useCache || a.cache == nil {
		return nil, false
	}
	raw, ok := a.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var quotes []core.Quote
	if err := json.Unmarshal(raw, &quotes); err != nil || len(quotes) == 0 {
		a.logger.Debug("discarding unusable cache entry", zap.String("key", key))
		return nil, false
	}
	return quotes, true
}

// store overwrites the cache entry for key. Failures are logged, not returned.
func (a *App) store(ctx context.Context, key string, payload any) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Set(ctx, key, payload); err != nil {
		a.logger.Warn("failed to write cache entry",
			zap.String("key", key),
			zap.Error(err))
	}
}
