// Package coingecko fetches cryptocurrency prices from the CoinGecko API.
package coingecko

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/pricefeed/internal/collector"
	"github.com/newthinker/pricefeed/internal/core"
	"github.com/newthinker/pricefeed/internal/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultBaseURL    = "https://api.coingecko.com/api/v3"
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second

	// demoKeyHeader carries the optional demo API key.
	demoKeyHeader = "x-cg-demo-api-key"
)

// The market_chart endpoint only returns closing prices. Candles built from it
// use the price as open and close, and a fixed band around it as high and low.
// These are not provider-reported extremes.
const (
	syntheticHighFactor = 1.005
	syntheticLowFactor  = 0.995
)

// Client implements collector.CryptoSource.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient collector.HTTPClient
	maxRetries int
	retryDelay time.Duration
	sleep      collector.Sleeper
	logger     *zap.Logger
	metrics    *metrics.Registry
	now        func() time.Time

	retrier *collector.Retrier
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(httpClient collector.HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetry sets the transport failure budget and the base backoff delay.
// Rate-limit waits are not counted against it.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

// WithSleeper replaces the sleep used for backoff and rate-limit waits.
func WithSleeper(sleep collector.Sleeper) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records retries and rate-limit waits on reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Client) {
		c.metrics = reg
	}
}

// WithClock sets the time source for quote timestamps and Retry-After dates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a CoinGecko client. apiKey is optional.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		sleep:      collector.Sleep,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retrier = &collector.Retrier{
		Provider:   core.SourceCoinGecko,
		MaxRetries: c.maxRetries,
		Delay:      c.retryDelay,
		Sleep:      c.sleep,
		Logger:     c.logger,
		Metrics:    c.metrics,
	}
	return c
}

func (c *Client) Name() string {
	return core.SourceCoinGecko
}

// request GETs endpoint and decodes the JSON body into out. A 429 reply is
// turned into a rate-limit wait of the advertised Retry-After.
func (c *Client) request(ctx context.Context, endpoint string, params url.Values, out any) error {
	rawURL := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	var header http.Header
	if c.apiKey != "" {
		header = http.Header{}
		header.Set(demoKeyHeader, c.apiKey)
	}

	return c.retrier.Do(ctx, func(ctx context.Context) error {
		resp, err := collector.Get(ctx, c.httpClient, rawURL, header)
		if err != nil {
			return err
		}
		if resp.Status == http.StatusTooManyRequests {
			return &collector.RateLimitError{
				RetryAfter: collector.ParseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
			}
		}
		if !collector.IsSuccess(resp.Status) {
			return collector.StatusError(resp.Status)
		}
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return core.WrapError(core.ErrTransport, fmt.Errorf("decoding %s: %w", endpoint, err))
		}
		return nil
	})
}

// market is one element of the coins/markets response.
type market struct {
	ID                       string   `json:"id"`
	CurrentPrice             *float64 `json:"current_price"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	PriceChange24h           *float64 `json:"price_change_24h"`
	High24h                  *float64 `json:"high_24h"`
	Low24h                   *float64 `json:"low_24h"`
	TotalVolume              *float64 `json:"total_volume"`
	MarketCap                *float64 `json:"market_cap"`
}

// FetchCryptoQuotes returns quotes for every registered coin, in registry order.
func (c *Client) FetchCryptoQuotes(ctx context.Context) ([]core.Quote, error) {
	assets := core.Assets(core.CategoryCrypto)
	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.ProviderID
	}

	params := url.Values{
		"vs_currency":             {"usd"},
		"ids":                     {strings.Join(ids, ",")},
		"order":                   {"market_cap_desc"},
		"per_page":                {"100"},
		"page":                    {"1"},
		"sparkline":               {"false"},
		"price_change_percentage": {"24h"},
	}

	var markets []market
	if err := c.request(ctx, "coins/markets", params, &markets); err != nil {
		return nil, err
	}

	byID := make(map[string]market, len(markets))
	for _, m := range markets {
		byID[m.ID] = m
	}

	now := c.now().UTC()
	quotes := make([]core.Quote, 0, len(assets))
	for _, a := range assets {
		m, ok := byID[a.ProviderID]
		if !ok {
			c.logger.Warn("no data for coin",
				zap.String("symbol", a.Symbol),
				zap.String("coin_id", a.ProviderID))
			continue
		}
		if m.CurrentPrice == nil {
			c.logger.Warn("coin has no price",
				zap.String("symbol", a.Symbol),
				zap.String("coin_id", a.ProviderID))
			continue
		}
		quotes = append(quotes, core.Quote{
			Symbol:       a.Symbol,
			Name:         a.Name,
			Price:        *m.CurrentPrice,
			Change24h:    round(m.PriceChangePercentage24h, 2),
			Change24hUSD: round(m.PriceChange24h, 4),
			High24h:      m.High24h,
			Low24h:       m.Low24h,
			Volume24h:    m.TotalVolume,
			MarketCap:    m.MarketCap,
			Timestamp:    now,
			Source:       core.SourceCoinGecko,
			AssetType:    core.AssetCrypto,
		})
	}
	return quotes, nil
}

// round treats a null change as zero.
func round(v *float64, places int32) float64 {
	if v == nil {
		return 0
	}
	return decimal.NewFromFloat(*v).Round(places).InexactFloat64()
}

// marketChart is the coins/{id}/market_chart response. Points are
// [unix millis, value]; nulls are kept so they can be skipped.
type marketChart struct {
	Prices       *[][]*float64 `json:"prices"`
	TotalVolumes [][]*float64  `json:"total_volumes"`
}

// Interval returns the sampling label for a day count.
func Interval(days int) string {
	if days > 1 {
		return "1day"
	}
	return "1hour"
}

// FetchHistory returns one candle per price point over the last days.
// Open and close equal the price; high and low are a ±0.5% band around it.
func (c *Client) FetchHistory(ctx context.Context, symbol string, days int) (*core.HistoricalSeries, error) {
	asset, ok := core.LookupAssetIn(core.CategoryCrypto, symbol)
	if !ok {
		return nil, core.WrapError(core.ErrSymbolNotFound,
			fmt.Errorf("%q is not a registered cryptocurrency", symbol))
	}

	granularity := "hourly"
	if days > 1 {
		granularity = "daily"
	}
	params := url.Values{
		"vs_currency": {"usd"},
		"days":        {strconv.Itoa(days)},
		"interval":    {granularity},
	}

	var chart marketChart
	endpoint := "coins/" + url.PathEscape(asset.ProviderID) + "/market_chart"
	if err := c.request(ctx, endpoint, params, &chart); err != nil {
		return nil, err
	}
	if chart.Prices == nil {
		return nil, core.WrapError(core.ErrDataShape,
			fmt.Errorf("market_chart for %s has no prices", asset.Symbol))
	}

	volumes := make(map[int64]float64, len(chart.TotalVolumes))
	for _, v := range chart.TotalVolumes {
		if len(v) < 2 || v[0] == nil || v[1] == nil {
			continue
		}
		volumes[int64(*v[0]/1000)] = *v[1]
	}

	points := *chart.Prices
	candles := make([]core.Candle, 0, len(points))
	for i, p := range points {
		if len(p) < 2 || p[0] == nil || p[1] == nil {
			c.logger.Warn("skipping invalid price point",
				zap.String("symbol", asset.Symbol),
				zap.Int("index", i))
			continue
		}
		ts := int64(*p[0] / 1000)
		price := *p[1]
		candles = append(candles, core.Candle{
			Time:   ts,
			Open:   price,
			High:   price * syntheticHighFactor,
			Low:    price * syntheticLowFactor,
			Close:  price,
			Volume: volumes[ts],
		})
	}
	slices.SortStableFunc(candles, func(a, b core.Candle) int {
		return cmp.Compare(a.Time, b.Time)
	})

	return &core.HistoricalSeries{
		Symbol:   asset.Symbol,
		Name:     asset.Name,
		Interval: Interval(days),
		Source:   core.SourceCoinGecko,
		Candles:  candles,
	}, nil
}
