package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newthinker/pricefeed/internal/collector"
	"github.com/newthinker/pricefeed/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingSleeper struct {
	waits []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) (*Client, *recordingSleeper) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := &recordingSleeper{}
	c := New(apiKey,
		WithBaseURL(srv.URL),
		WithRetry(3, time.Second),
		WithSleeper(s.sleep),
		WithClock(func() time.Time { return fixedNow }),
	)
	return c, s
}

var _ collector.CryptoSource = (*Client)(nil)

func TestCoinGecko_Name(t *testing.T) {
	c := New("")
	if c.Name() != "coingecko" {
		t.Errorf("expected 'coingecko', got '%s'", c.Name())
	}
}

const marketsBody = `[
	{"id":"bitcoin","current_price":64000.5,"price_change_percentage_24h":2.3456,"price_change_24h":1466.12345,
	 "high_24h":65000,"low_24h":62000,"total_volume":31000000000,"market_cap":1260000000000},
	{"id":"ethereum","current_price":3400.25,"price_change_percentage_24h":null,"price_change_24h":null,
	 "high_24h":null,"low_24h":null,"total_volume":null,"market_cap":null},
	{"id":"tether","current_price":null,"price_change_percentage_24h":0.01,"price_change_24h":0.0001}
]`

func TestFetchCryptoQuotes(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "usd", q.Get("vs_currency"))
		assert.Equal(t, "market_cap_desc", q.Get("order"))
		assert.Equal(t, "100", q.Get("per_page"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "false", q.Get("sparkline"))
		assert.Equal(t, "24h", q.Get("price_change_percentage"))
		assert.Contains(t, q.Get("ids"), "bitcoin,ethereum,usd-coin")
		assert.Empty(t, r.Header.Get(demoKeyHeader))
		fmt.Fprint(w, marketsBody)
	})

	quotes, err := c.FetchCryptoQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2, "coins without data or price are skipped")

	btc := quotes[0]
	assert.Equal(t, "BTC", btc.Symbol)
	assert.Equal(t, "Bitcoin", btc.Name)
	assert.Equal(t, 64000.5, btc.Price)
	assert.Equal(t, 2.35, btc.Change24h)
	assert.Equal(t, 1466.1235, btc.Change24hUSD)
	require.NotNil(t, btc.High24h)
	assert.Equal(t, 65000.0, *btc.High24h)
	require.NotNil(t, btc.MarketCap)
	assert.Equal(t, 1.26e12, *btc.MarketCap)
	assert.Equal(t, core.SourceCoinGecko, btc.Source)
	assert.Equal(t, core.AssetCrypto, btc.AssetType)
	assert.Equal(t, fixedNow, btc.Timestamp)

	eth := quotes[1]
	assert.Equal(t, "ETH", eth.Symbol)
	assert.Zero(t, eth.Change24h, "null change becomes zero")
	assert.Zero(t, eth.Change24hUSD)
	assert.Nil(t, eth.High24h)
	assert.Nil(t, eth.Volume24h)
	assert.Nil(t, eth.MarketCap)
}

func TestFetchCryptoQuotes_SendsDemoKey(t *testing.T) {
	c, _ := newTestClient(t, "demo-key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "demo-key", r.Header.Get(demoKeyHeader))
		fmt.Fprint(w, `[]`)
	})

	quotes, err := c.FetchCryptoQuotes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestRequest_RateLimitWaitsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	c, s := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, marketsBody)
	})
	// A budget of one transport failure: the rate-limit wait must not use it.
	c.retrier.MaxRetries = 1

	quotes, err := c.FetchCryptoQuotes(context.Background())
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []time.Duration{7 * time.Second}, s.waits)
}

func TestRequest_RateLimitDefaultsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	c, s := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `[]`)
	})

	_, err := c.FetchCryptoQuotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{collector.DefaultRetryAfter, collector.DefaultRetryAfter}, s.waits)
}

func TestRequest_RateLimitZeroRetryAfterStillWaits(t *testing.T) {
	var calls atomic.Int32
	c, s := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `[]`)
	})
	c.retrier.MaxRetries = 1

	_, err := c.FetchCryptoQuotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{collector.MinRateLimitWait, collector.MinRateLimitWait}, s.waits)
}

func TestRequest_RateLimitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.FetchCryptoQuotes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequest_ServerErrorsExhaustRetries(t *testing.T) {
	var calls atomic.Int32
	c, s := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FetchCryptoQuotes(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTransport), "got %v", err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, s.waits)
}

func TestFetchHistory_SynthesizesCandles(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		assert.Equal(t, "daily", r.URL.Query().Get("interval"))
		fmt.Fprint(w, `{
			"prices": [[1704067200000, 100.0], [1704153600000, 200.0], [1704240000000, null], [1704326400500, 300.0]],
			"total_volumes": [[1704067200000, 5000.0], [1704326400900, 7000.0]]
		}`)
	})

	series, err := c.FetchHistory(context.Background(), "btc", 30)
	require.NoError(t, err)

	assert.Equal(t, "BTC", series.Symbol)
	assert.Equal(t, "Bitcoin", series.Name)
	assert.Equal(t, "1day", series.Interval)
	assert.Equal(t, core.SourceCoinGecko, series.Source)
	require.Len(t, series.Candles, 3)
	assert.True(t, series.IsOrdered())

	first := series.Candles[0]
	assert.Equal(t, int64(1704067200), first.Time)
	assert.Equal(t, 100.0, first.Open)
	assert.Equal(t, 100.0, first.Close)
	assert.InDelta(t, 100.5, first.High, 1e-9)
	assert.InDelta(t, 99.5, first.Low, 1e-9)
	assert.Equal(t, 5000.0, first.Volume)

	assert.Zero(t, series.Candles[1].Volume, "no matching volume defaults to zero")

	last := series.Candles[2]
	assert.Equal(t, int64(1704326400), last.Time)
	assert.Equal(t, 7000.0, last.Volume, "volumes match on truncated seconds")
}

func TestFetchHistory_SortsOutOfOrderPoints(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"prices": [[1700003600000, 37100.0], [1700000000000, 37000.0]],
			"total_volumes": [[1700003600000, 9.0], [1700000000000, 8.0]]
		}`)
	})

	series, err := c.FetchHistory(context.Background(), "BTC", 1)
	require.NoError(t, err)
	require.Len(t, series.Candles, 2)
	assert.True(t, series.IsOrdered())
	assert.Equal(t, int64(1700000000), series.Candles[0].Time)
	assert.Equal(t, 37000.0, series.Candles[0].Close)
	assert.Equal(t, 8.0, series.Candles[0].Volume)
	assert.Equal(t, int64(1700003600), series.Candles[1].Time)
}

func TestFetchHistory_HourlyForOneDay(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/solana/market_chart", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("days"))
		assert.Equal(t, "hourly", r.URL.Query().Get("interval"))
		fmt.Fprint(w, `{"prices": []}`)
	})

	series, err := c.FetchHistory(context.Background(), "SOL", 1)
	require.NoError(t, err)
	assert.Equal(t, "1hour", series.Interval)
	assert.Empty(t, series.Candles)
}

func TestFetchHistory_MissingPrices(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_volumes": []}`)
	})

	_, err := c.FetchHistory(context.Background(), "ETH", 7)
	assert.True(t, errors.Is(err, core.ErrDataShape), "got %v", err)
}

func TestFetchHistory_UnknownSymbol(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.FetchHistory(context.Background(), "AAPL", 30)
	assert.True(t, errors.Is(err, core.ErrSymbolNotFound), "got %v", err)
}

func TestInterval(t *testing.T) {
	assert.Equal(t, "1hour", Interval(1))
	assert.Equal(t, "1hour", Interval(0))
	assert.Equal(t, "1day", Interval(2))
	assert.Equal(t, "1day", Interval(1825))
}

// Integration test - skip in CI
func TestCoinGecko_FetchCryptoQuotes_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	quotes, err := New("").FetchCryptoQuotes(context.Background())
	if err != nil {
		t.Fatalf("FetchCryptoQuotes failed: %v", err)
	}
	if len(quotes) == 0 {
		t.Fatal("expected quotes")
	}
	t.Logf("BTC price: %.2f", quotes[0].Price)
}
