package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/newthinker/pricefeed/internal/core"
	"github.com/newthinker/pricefeed/internal/storage/archive"
	"go.uber.org/zap"
)

// DefaultExportPath is used when export is given no target.
const DefaultExportPath = "prices.json"

// Snapshot is the exported document.
type Snapshot struct {
	Timestamp time.Time                `json:"timestamp"`
	Count     int                      `json:"count"`
	Prices    map[string]SnapshotEntry `json:"prices"`
}

// SnapshotEntry is one symbol's record in a Snapshot.
type SnapshotEntry struct {
	Name         string         `json:"name"`
	Price        float64        `json:"price"`
	Change24h    float64        `json:"change_24h"`
	Change24hUSD float64        `json:"change_24h_usd"`
	High24h      *float64       `json:"high_24h"`
	Low24h       *float64       `json:"low_24h"`
	Volume24h    *float64       `json:"volume_24h"`
	MarketCap    *float64       `json:"market_cap"`
	Source       string         `json:"source"`
	Type         core.AssetType `json:"type"`
}

// NewSnapshot builds a snapshot of quotes taken at ts.
func NewSnapshot(quotes []core.Quote, ts time.Time) *Snapshot {
	s := &Snapshot{
		Timestamp: ts,
		Count:     len(quotes),
		Prices:    make(map[string]SnapshotEntry, len(quotes)),
	}
	for _, q := range quotes {
		s.Prices[q.Symbol] = SnapshotEntry{
			Name:         q.Name,
			Price:        q.Price,
			Change24h:    q.Change24h,
			Change24hUSD: q.Change24hUSD,
			High24h:      q.High24h,
			Low24h:       q.Low24h,
			Volume24h:    q.Volume24h,
			MarketCap:    q.MarketCap,
			Source:       q.Source,
			Type:         q.AssetType,
		}
	}
	return s
}

// Export fetches fresh quotes of every category and writes a snapshot to
// target, a local path or an s3://bucket/key URI.
func (a *App) Export(ctx context.Context, target string) (*Snapshot, error) {
	if target == "" {
		target = DefaultExportPath
	}

	quotes, err := a.AllQuotes(ctx, false)
	if err != nil {
		return nil, err
	}
	snap := NewSnapshot(quotes, a.now().UTC())

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	store, path, err := archive.ForTarget(target, a.exportS3)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	if err := store.Write(ctx, path, data); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("writing %s: %w", target, err))
	}

	a.logger.Info("exported prices",
		zap.String("target", target),
		zap.Int("count", snap.Count))
	return snap, nil
}
