package core

import "time"

// AssetType represents the type of financial asset
type AssetType string

const (
	AssetStock     AssetType = "stock"
	AssetETF       AssetType = "etf"
	AssetCommodity AssetType = "commodity"
	AssetCrypto    AssetType = "crypto"
)

// Category groups asset types by the upstream fetch that serves them.
type Category string

const (
	CategoryStocks      Category = "stocks" // stocks and ETFs
	CategoryCommodities Category = "commodities"
	CategoryCrypto      Category = "crypto"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryStocks, CategoryCommodities, CategoryCrypto}

// Category returns the fetch category for an asset type.
func (t AssetType) Category() Category {
	switch t {
	case AssetCommodity:
		return CategoryCommodities
	case AssetCrypto:
		return CategoryCrypto
	default:
		return CategoryStocks
	}
}

// Provider names as they appear in quotes and series.
const (
	SourceTwelveData = "twelvedata"
	SourceCoinGecko  = "coingecko"
)

// Quote represents a point-in-time price snapshot for one asset.
// Optional fields are nil when the provider reported nothing.
type Quote struct {
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Change24h    float64   `json:"change_24h"`     // percent
	Change24hUSD float64   `json:"change_24h_usd"` // absolute
	High24h      *float64  `json:"high_24h"`
	Low24h       *float64  `json:"low_24h"`
	Volume24h    *float64  `json:"volume_24h"`
	MarketCap    *float64  `json:"market_cap"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	AssetType    AssetType `json:"asset_type"`
}

// IsValid checks if the quote has required fields
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Price > 0
}

// Candle is a single OHLCV sample.
type Candle struct {
	Time   int64   `json:"time"` // unix seconds
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// HistoricalSeries holds candles for one symbol, oldest first.
type HistoricalSeries struct {
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Interval string   `json:"interval"`
	Source   string   `json:"source"`
	Candles  []Candle `json:"candles"`
}

// IsOrdered reports whether candle timestamps never decrease.
func (s HistoricalSeries) IsOrdered() bool {
	for i := 1; i < len(s.Candles); i++ {
		if s.Candles[i].Time < s.Candles[i-1].Time {
			return false
		}
	}
	return true
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// NonZero returns nil for a zero value, otherwise a pointer to v.
// Used for providers that report missing numbers as 0.
func NonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
