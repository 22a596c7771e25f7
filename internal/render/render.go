// Package render prints quotes and series for humans or as indented JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/newthinker/pricefeed/internal/core"
	"github.com/shopspring/decimal"
)

// Price formats a USD amount: thousands separators and two decimals, or six
// decimals below one dollar. Negative amounts print as -$1.23.
func Price(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.Abs().LessThan(decimal.NewFromInt(1)) {
		return dollars(d.Round(6), 6)
	}
	return dollars(d.Round(2), 2)
}

// Amount formats a whole-dollar amount with thousands separators.
func Amount(v float64) string {
	return dollars(decimal.NewFromFloat(v).Round(0), 0)
}

// dollars prints an already rounded d with the sign ahead of the $.
func dollars(d decimal.Decimal, places int32) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + grouped(d.Abs().StringFixed(places))
}

// Change formats a percentage with an explicit sign.
func Change(pct float64) string {
	s := decimal.NewFromFloat(pct).StringFixed(2)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}

// grouped inserts commas into the integer part of a fixed-point string.
func grouped(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

// JSON writes v indented by two spaces.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// QuotesTable prints quotes sorted by asset type then symbol. quotes is not modified.
func QuotesTable(w io.Writer, quotes []core.Quote, now time.Time) error {
	if len(quotes) == 0 {
		_, err := fmt.Fprintln(w, "No quotes available")
		return err
	}

	sorted := slices.Clone(quotes)
	slices.SortFunc(sorted, func(a, b core.Quote) int {
		if c := strings.Compare(string(a.AssetType), string(b.AssetType)); c != 0 {
			return c
		}
		return strings.Compare(a.Symbol, b.Symbol)
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Symbol\tName\tPrice\t24h Change\tType\tSource\t")
	for _, q := range sorted {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			q.Symbol, q.Name, Price(q.Price), Change(q.Change24h), q.AssetType, q.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d assets | Updated: %s\n", len(quotes), now.Format(time.DateTime))
	return err
}

// QuoteSummary prints one quote. Optional fields appear only when present.
func QuoteSummary(w io.Writer, q core.Quote) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n", q.Symbol, q.Name)
	fmt.Fprintf(&b, "Price: %s\n", Price(q.Price))
	fmt.Fprintf(&b, "24h Change: %s (%s)\n", Change(q.Change24h), Price(q.Change24hUSD))
	if q.High24h != nil {
		fmt.Fprintf(&b, "24h High: %s\n", Price(*q.High24h))
	}
	if q.Low24h != nil {
		fmt.Fprintf(&b, "24h Low: %s\n", Price(*q.Low24h))
	}
	if q.Volume24h != nil {
		fmt.Fprintf(&b, "24h Volume: %s\n", Amount(*q.Volume24h))
	}
	if q.MarketCap != nil {
		fmt.Fprintf(&b, "Market Cap: %s\n", Amount(*q.MarketCap))
	}
	fmt.Fprintf(&b, "Source: %s\n", q.Source)

	_, err := io.WriteString(w, b.String())
	return err
}

// HistorySummary prints the span and period change of a series.
// Times are shown in loc.
func HistorySummary(w io.Writer, s core.HistoricalSeries, window string, loc *time.Location) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s (%s)\n", s.Symbol, s.Name, window)
	fmt.Fprintf(&b, "Interval: %s\n", s.Interval)
	fmt.Fprintf(&b, "Data points: %d\n", len(s.Candles))
	if len(s.Candles) > 0 {
		first, last := s.Candles[0], s.Candles[len(s.Candles)-1]
		fmt.Fprintf(&b, "Range: %s to %s\n",
			time.Unix(first.Time, 0).In(loc).Format(time.DateTime),
			time.Unix(last.Time, 0).In(loc).Format(time.DateTime))
		fmt.Fprintf(&b, "Open: %s -> Close: %s\n", Price(first.Open), Price(last.Close))
		if first.Open != 0 {
			fmt.Fprintf(&b, "Period Change: %s\n", Change((last.Close-first.Open)/first.Open*100))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// AssetList prints the registry grouped by category, symbols sorted.
func AssetList(w io.Writer) error {
	headings := map[core.Category]string{
		core.CategoryStocks:      "Stocks & ETFs (TwelveData)",
		core.CategoryCommodities: "Commodities (TwelveData)",
		core.CategoryCrypto:      "Cryptocurrencies (CoinGecko)",
	}

	var b strings.Builder
	b.WriteString("Supported Symbols:\n")
	total := 0
	for _, c := range core.Categories {
		assets := core.Assets(c)
		slices.SortFunc(assets, func(x, y core.AssetDescriptor) int {
			return strings.Compare(x.Symbol, y.Symbol)
		})
		fmt.Fprintf(&b, "\n--- %s ---\n", headings[c])
		for _, a := range assets {
			fmt.Fprintf(&b, "  %-10s %s\n", a.Symbol, a.Name)
		}
		total += len(assets)
	}
	fmt.Fprintf(&b, "\nTotal: %d assets\n", total)

	_, err := io.WriteString(w, b.String())
	return err
}
