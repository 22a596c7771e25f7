package core

import (
	"fmt"
	"strings"
)

// AssetDescriptor is static reference data for one supported asset.
type AssetDescriptor struct {
	Symbol string
	Name   string
	Type   AssetType
	// ProviderID is the ticker for TwelveData or the coin id for CoinGecko.
	ProviderID string
	// LegacySymbol is the futures ticker a commodity used to be quoted under.
	LegacySymbol string
}

var stockAssets = []AssetDescriptor{
	{Symbol: "SPY", Name: "S&P 500 ETF", Type: AssetETF, ProviderID: "SPY"},
	{Symbol: "QQQ", Name: "Nasdaq 100 ETF", Type: AssetETF, ProviderID: "QQQ"},
	{Symbol: "AAPL", Name: "Apple Inc", Type: AssetStock, ProviderID: "AAPL"},
	{Symbol: "MSFT", Name: "Microsoft Corp", Type: AssetStock, ProviderID: "MSFT"},
	{Symbol: "GOOGL", Name: "Alphabet Inc", Type: AssetStock, ProviderID: "GOOGL"},
	{Symbol: "AMZN", Name: "Amazon.com Inc", Type: AssetStock, ProviderID: "AMZN"},
	{Symbol: "NVDA", Name: "NVIDIA Corp", Type: AssetStock, ProviderID: "NVDA"},
	{Symbol: "META", Name: "Meta Platforms", Type: AssetStock, ProviderID: "META"},
	{Symbol: "TSLA", Name: "Tesla Inc", Type: AssetStock, ProviderID: "TSLA"},
}

var commodityAssets = []AssetDescriptor{
	{Symbol: "GOLD", Name: "Gold", Type: AssetCommodity, ProviderID: "XAU/USD", LegacySymbol: "GC=F"},
	{Symbol: "SILVER", Name: "Silver", Type: AssetCommodity, ProviderID: "XAG/USD", LegacySymbol: "SI=F"},
	{Symbol: "OIL", Name: "Crude Oil (WTI)", Type: AssetCommodity, ProviderID: "WTI/USD", LegacySymbol: "CL=F"},
}

var cryptoAssets = []AssetDescriptor{
	{Symbol: "BTC", Name: "Bitcoin", Type: AssetCrypto, ProviderID: "bitcoin"},
	{Symbol: "ETH", Name: "Ethereum", Type: AssetCrypto, ProviderID: "ethereum"},
	{Symbol: "USDC", Name: "USD Coin", Type: AssetCrypto, ProviderID: "usd-coin"},
	{Symbol: "USDT", Name: "Tether", Type: AssetCrypto, ProviderID: "tether"},
	{Symbol: "BNB", Name: "BNB", Type: AssetCrypto, ProviderID: "binancecoin"},
	{Symbol: "SOL", Name: "Solana", Type: AssetCrypto, ProviderID: "solana"},
	{Symbol: "ARB", Name: "Arbitrum", Type: AssetCrypto, ProviderID: "arbitrum"},
	{Symbol: "OP", Name: "Optimism", Type: AssetCrypto, ProviderID: "optimism"},
	{Symbol: "MATIC", Name: "Polygon", Type: AssetCrypto, ProviderID: "matic-network"},
	{Symbol: "LINK", Name: "Chainlink", Type: AssetCrypto, ProviderID: "chainlink"},
	{Symbol: "UNI", Name: "Uniswap", Type: AssetCrypto, ProviderID: "uniswap"},
	{Symbol: "AAVE", Name: "Aave", Type: AssetCrypto, ProviderID: "aave"},
	{Symbol: "CRV", Name: "Curve DAO", Type: AssetCrypto, ProviderID: "curve-dao-token"},
}

// assetIndex is built once at init and only read afterwards.
var assetIndex = buildAssetIndex(stockAssets, commodityAssets, cryptoAssets)

func buildAssetIndex(groups ...[]AssetDescriptor) map[string]AssetDescriptor {
	idx := make(map[string]AssetDescriptor)
	for _, group := range groups {
		for _, a := range group {
			if _, dup := idx[a.Symbol]; dup {
				panic(fmt.Sprintf("duplicate asset symbol %q", a.Symbol))
			}
			idx[a.Symbol] = a
		}
	}
	return idx
}

// Assets returns the registry entries of one category in definition order.
func Assets(c Category) []AssetDescriptor {
	var src []AssetDescriptor
	switch c {
	case CategoryStocks:
		src = stockAssets
	case CategoryCommodities:
		src = commodityAssets
	case CategoryCrypto:
		src = cryptoAssets
	}
	out := make([]AssetDescriptor, len(src))
	copy(out, src)
	return out
}

// AllAssets returns every registry entry, stocks first, then commodities, then crypto.
func AllAssets() []AssetDescriptor {
	out := make([]AssetDescriptor, 0, len(assetIndex))
	for _, c := range Categories {
		out = append(out, Assets(c)...)
	}
	return out
}

// LookupAsset finds a registry entry by symbol, ignoring case.
func LookupAsset(symbol string) (AssetDescriptor, bool) {
	a, ok := assetIndex[strings.ToUpper(strings.TrimSpace(symbol))]
	return a, ok
}

// LookupAssetIn finds a registry entry restricted to one category.
func LookupAssetIn(c Category, symbol string) (AssetDescriptor, bool) {
	a, ok := LookupAsset(symbol)
	if !ok || a.Type.Category() != c {
		return AssetDescriptor{}, false
	}
	return a, true
}
