// Package twelvedata fetches stock, ETF and commodity prices from the
// TwelveData REST API.
package twelvedata

import (
	"context"
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
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	defaultBaseURL    = "https://api.twelvedata.com"
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second

	// DefaultWindow is used for unknown window names.
	DefaultWindow = "1M"
)

// Window is the sampling used for a named history window.
type Window struct {
	Interval   string
	OutputSize int
}

var windows = map[string]Window{
	"1D": {Interval: "15min", OutputSize: 96},
	"1W": {Interval: "1h", OutputSize: 168},
	"1M": {Interval: "1day", OutputSize: 30},
	"3M": {Interval: "1day", OutputSize: 90},
	"1Y": {Interval: "1day", OutputSize: 365},
	"5Y": {Interval: "1week", OutputSize: 260},
}

// WindowFor maps a window name to its interval and sample count.
// Unknown names fall back to DefaultWindow.
func WindowFor(name string) Window {
	if w, ok := windows[strings.ToUpper(name)]; ok {
		return w
	}
	return windows[DefaultWindow]
}

var hundred = decimal.NewFromInt(100)

// Client implements collector.EquitySource.
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

// WithRetry sets the attempt budget and the base backoff delay.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

// WithSleeper replaces the backoff sleep.
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

// WithMetrics records retries on reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Client) {
		c.metrics = reg
	}
}

// WithClock sets the time source used for quote timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a TwelveData client. An empty apiKey is accepted here; every
// fetch then fails with core.ErrConfigMissing.
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
		Provider:   core.SourceTwelveData,
		MaxRetries: c.maxRetries,
		Delay:      c.retryDelay,
		Sleep:      c.sleep,
		Logger:     c.logger,
		Metrics:    c.metrics,
	}
	return c
}

func (c *Client) Name() string {
	return core.SourceTwelveData
}

func (c *Client) requireKey() error {
	if c.apiKey == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("TWELVE_DATA_API_KEY not configured"))
	}
	return nil
}

// request calls one endpoint with retries and returns the parsed body.
// A body with "status":"error" is returned as core.ErrProviderError without retrying.
func (c *Client) request(ctx context.Context, endpoint string, params url.Values) (gjson.Result, error) {
	params.Set("apikey", c.apiKey)
	rawURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	var body gjson.Result
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		resp, err := collector.Get(ctx, c.httpClient, rawURL, nil)
		if err != nil {
			return err
		}
		if !collector.IsSuccess(resp.Status) {
			return collector.StatusError(resp.Status)
		}
		if !gjson.ValidBytes(resp.Body) {
			return core.WrapError(core.ErrTransport, fmt.Errorf("%s: invalid JSON body", endpoint))
		}

		parsed := gjson.ParseBytes(resp.Body)
		if parsed.Get("status").String() == "error" {
			msg := parsed.Get("message").String()
			if msg == "" {
				msg = "unknown API error"
			}
			return core.WrapError(core.ErrProviderError, fmt.Errorf("%s: %s", endpoint, msg))
		}
		body = parsed
		return nil
	})
	return body, err
}

// FetchStockQuotes returns quotes for every registered stock and ETF.
func (c *Client) FetchStockQuotes(ctx context.Context) ([]core.Quote, error) {
	return c.fetchQuotes(ctx, core.Assets(core.CategoryStocks))
}

// FetchCommodityQuotes returns quotes for every registered commodity.
func (c *Client) FetchCommodityQuotes(ctx context.Context) ([]core.Quote, error) {
	return c.fetchQuotes(ctx, core.Assets(core.CategoryCommodities))
}

// FetchQuote returns the quote of one registered stock, ETF or commodity.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*core.Quote, error) {
	asset, err := lookupEquity(symbol)
	if err != nil {
		return nil, err
	}
	quotes, err := c.fetchQuotes(ctx, []core.AssetDescriptor{asset})
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no quote returned for %s", asset.Symbol))
	}
	return &quotes[0], nil
}

func (c *Client) fetchQuotes(ctx context.Context, assets []core.AssetDescriptor) ([]core.Quote, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.ProviderID
	}

	body, err := c.request(ctx, "quote", url.Values{"symbol": {strings.Join(ids, ",")}})
	if err != nil {
		return nil, err
	}

	entries := batchEntries(body)
	now := c.now().UTC()
	quotes := make([]core.Quote, 0, len(assets))
	for _, a := range assets {
		entry, ok := entries[a.ProviderID]
		if !ok {
			c.logger.Warn("symbol missing from batch response",
				zap.String("symbol", a.Symbol),
				zap.String("provider_id", a.ProviderID))
			continue
		}
		if entry.Get("status").String() == "error" {
			c.logger.Warn("skipping symbol",
				zap.String("symbol", a.Symbol),
				zap.String("reason", entry.Get("message").String()))
			continue
		}

		q, err := normalizeQuote(a, entry, now)
		if err != nil {
			c.logger.Warn("skipping symbol",
				zap.String("symbol", a.Symbol),
				zap.Error(err))
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// batchEntries returns the per-ticker objects of a quote response. A request
// for one ticker answers with that ticker's object itself, a request for
// several answers with an object keyed by ticker.
func batchEntries(body gjson.Result) map[string]gjson.Result {
	if sym := body.Get("symbol"); sym.Exists() {
		return map[string]gjson.Result{sym.String(): body}
	}
	entries := make(map[string]gjson.Result)
	body.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() {
			entries[key.String()] = value
		}
		return true
	})
	return entries
}

func normalizeQuote(a core.AssetDescriptor, entry gjson.Result, now time.Time) (core.Quote, error) {
	price, ok := decimalField(entry, "close")
	if !ok {
		return core.Quote{}, core.WrapError(core.ErrDataShape, fmt.Errorf("missing or invalid close"))
	}
	prev, ok := decimalField(entry, "previous_close")
	if !ok {
		prev = price
	}

	changeUSD := price.Sub(prev)
	pct := decimal.Zero
	if prev.IsPositive() {
		pct = changeUSD.Div(prev).Mul(hundred)
	}

	usdPlaces := int32(2)
	if a.Type == core.AssetCommodity {
		usdPlaces = 4
	}

	q := core.Quote{
		Symbol:       a.Symbol,
		Name:         a.Name,
		Price:        price.InexactFloat64(),
		Change24h:    pct.Round(2).InexactFloat64(),
		Change24hUSD: changeUSD.Round(usdPlaces).InexactFloat64(),
		High24h:      optionalField(entry, "high"),
		Low24h:       optionalField(entry, "low"),
		Timestamp:    now,
		Source:       core.SourceTwelveData,
		AssetType:    a.Type,
	}
	// Commodity pairs trade like forex and carry no volume.
	if a.Type != core.AssetCommodity {
		q.Volume24h = optionalField(entry, "volume")
	}
	return q, nil
}

// FetchHistory returns candles for a registered stock, ETF or commodity,
// oldest first.
func (c *Client) FetchHistory(ctx context.Context, symbol, window string) (*core.HistoricalSeries, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}
	asset, err := lookupEquity(symbol)
	if err != nil {
		return nil, err
	}

	w := WindowFor(window)
	body, err := c.request(ctx, "time_series", url.Values{
		"symbol":     {asset.ProviderID},
		"interval":   {w.Interval},
		"outputsize": {strconv.Itoa(w.OutputSize)},
	})
	if err != nil {
		return nil, err
	}

	values := body.Get("values")
	if !values.IsArray() {
		return nil, core.WrapError(core.ErrDataShape, fmt.Errorf("time_series for %s has no values", asset.Symbol))
	}

	loc := exchangeLocation(body.Get("meta.exchange_timezone").String())
	samples := values.Array()
	candles := make([]core.Candle, 0, len(samples))
	// Samples arrive newest first.
	for i := len(samples) - 1; i >= 0; i-- {
		candle, err := parseCandle(samples[i], loc)
		if err != nil {
			c.logger.Warn("skipping invalid candle",
				zap.String("symbol", asset.Symbol),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		candles = append(candles, candle)
	}
	slices.SortStableFunc(candles, func(a, b core.Candle) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})

	return &core.HistoricalSeries{
		Symbol:   asset.Symbol,
		Name:     asset.Name,
		Interval: w.Interval,
		Source:   core.SourceTwelveData,
		Candles:  candles,
	}, nil
}

func lookupEquity(symbol string) (core.AssetDescriptor, error) {
	if a, ok := core.LookupAssetIn(core.CategoryStocks, symbol); ok {
		return a, nil
	}
	if a, ok := core.LookupAssetIn(core.CategoryCommodities, symbol); ok {
		return a, nil
	}
	return core.AssetDescriptor{}, core.WrapError(core.ErrSymbolNotFound,
		fmt.Errorf("%q is not a registered stock, ETF or commodity", symbol))
}

// exchangeLocation resolves the exchange timezone reported in the series meta.
// Unknown or empty names fall back to UTC.
func exchangeLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

var datetimeLayouts = []string{time.DateTime, time.DateOnly}

func parseCandle(v gjson.Result, loc *time.Location) (core.Candle, error) {
	raw := v.Get("datetime").String()
	var (
		ts  time.Time
		err error
	)
	for _, layout := range datetimeLayouts {
		if ts, err = time.ParseInLocation(layout, raw, loc); err == nil {
			break
		}
	}
	if err != nil {
		return core.Candle{}, fmt.Errorf("datetime %q: %w", raw, err)
	}

	var ohlc [4]float64
	for i, key := range []string{"open", "high", "low", "close"} {
		f, err := floatField(v, key)
		if err != nil {
			return core.Candle{}, err
		}
		ohlc[i] = f
	}

	volume := 0.0
	if vol := v.Get("volume"); vol.Exists() {
		if volume, err = floatField(v, "volume"); err != nil {
			return core.Candle{}, err
		}
	}

	return core.Candle{
		Time:   ts.Unix(),
		Open:   ohlc[0],
		High:   ohlc[1],
		Low:    ohlc[2],
		Close:  ohlc[3],
		Volume: volume,
	}, nil
}

// decimalField reads a number that the API may encode as a string.
func decimalField(r gjson.Result, key string) (decimal.Decimal, bool) {
	v := r.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v.String()))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// optionalField returns nil when the value is missing, unparseable or zero.
func optionalField(r gjson.Result, key string) *float64 {
	d, ok := decimalField(r, key)
	if !ok {
		return nil
	}
	return core.NonZero(d.InexactFloat64())
}

func floatField(r gjson.Result, key string) (float64, error) {
	v := r.Get(key)
	if !v.Exists() {
		return 0, fmt.Errorf("missing %s", key)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, v.String())
	}
	return f, nil
}
