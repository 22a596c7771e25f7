package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssets_SymbolsUniqueAcrossCategories(t *testing.T) {
	seen := make(map[string]Category)
	for _, c := range Categories {
		for _, a := range Assets(c) {
			prev, dup := seen[a.Symbol]
			require.False(t, dup, "symbol %s in both %s and %s", a.Symbol, prev, c)
			seen[a.Symbol] = c
		}
	}
	assert.Len(t, seen, len(AllAssets()))
}

func TestAssets_CategoryMatchesType(t *testing.T) {
	for _, c := range Categories {
		for _, a := range Assets(c) {
			assert.Equal(t, c, a.Type.Category(), "asset %s", a.Symbol)
			assert.NotEmpty(t, a.ProviderID, "asset %s", a.Symbol)
			assert.NotEmpty(t, a.Name, "asset %s", a.Symbol)
		}
	}
}

func TestAssets_ReturnsCopy(t *testing.T) {
	list := Assets(CategoryCrypto)
	list[0].Symbol = "MUTATED"

	a, ok := LookupAsset("BTC")
	require.True(t, ok)
	assert.Equal(t, "BTC", a.Symbol)
	assert.Equal(t, "BTC", Assets(CategoryCrypto)[0].Symbol)
}

func TestLookupAsset(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"BTC", "bitcoin", true},
		{"btc", "bitcoin", true},
		{" gold ", "XAU/USD", true},
		{"SPY", "SPY", true},
		{"DOGE", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		a, ok := LookupAsset(tt.input)
		assert.Equal(t, tt.wantOK, ok, "LookupAsset(%q)", tt.input)
		assert.Equal(t, tt.want, a.ProviderID, "LookupAsset(%q)", tt.input)
	}
}

func TestLookupAssetIn(t *testing.T) {
	_, ok := LookupAssetIn(CategoryStocks, "AAPL")
	assert.True(t, ok)

	_, ok = LookupAssetIn(CategoryCrypto, "AAPL")
	assert.False(t, ok)

	a, ok := LookupAssetIn(CategoryCommodities, "oil")
	require.True(t, ok)
	assert.Equal(t, "CL=F", a.LegacySymbol)
}

func TestBuildAssetIndex_PanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		buildAssetIndex(
			[]AssetDescriptor{{Symbol: "X", Type: AssetStock}},
			[]AssetDescriptor{{Symbol: "X", Type: AssetCrypto}},
		)
	})
}
