package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findFamily(t *testing.T, reg *Registry, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}
}

func TestRegistry_RecordUpstream(t *testing.T) {
	reg := NewRegistry()

	reg.RecordUpstream("coingecko", 200, 0.05)

	if findFamily(t, reg, "pricefeed_upstream_requests_total") == nil {
		t.Error("expected pricefeed_upstream_requests_total metric")
	}
}

func TestRegistry_RecordUpstream_StatusCodes(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{0, "error"},
		{100, "1xx"},
		{200, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{429, "429"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			reg := NewRegistry()
			reg.RecordUpstream("twelvedata", tt.status, 0.01)

			mf := findFamily(t, reg, "pricefeed_upstream_requests_total")
			if mf == nil {
				t.Fatal("metric not found")
			}
			found := false
			for _, m := range mf.GetMetric() {
				for _, label := range m.GetLabel() {
					if label.GetName() == "status" && label.GetValue() == tt.expected {
						found = true
					}
				}
			}
			if !found {
				t.Errorf("expected status label %s for status code %d", tt.expected, tt.status)
			}
		})
	}
}

func TestRegistry_DurationHistogram(t *testing.T) {
	reg := NewRegistry()

	reg.RecordUpstream("coingecko", 200, 0.123)

	mf := findFamily(t, reg, "pricefeed_upstream_request_duration_seconds")
	if mf == nil {
		t.Fatal("expected pricefeed_upstream_request_duration_seconds metric")
	}
	for _, m := range mf.GetMetric() {
		hist := m.GetHistogram()
		if hist.GetSampleCount() != 1 {
			t.Errorf("expected sample count 1, got %d", hist.GetSampleCount())
		}
		if hist.GetSampleSum() < 0.12 || hist.GetSampleSum() > 0.13 {
			t.Errorf("expected sample sum ~0.123, got %v", hist.GetSampleSum())
		}
	}
}

func TestRegistry_RateLimitWait(t *testing.T) {
	reg := NewRegistry()

	reg.RecordRateLimitWait("coingecko", 30)
	reg.RecordRateLimitWait("coingecko", 60)

	mf := findFamily(t, reg, "pricefeed_rate_limit_wait_seconds_total")
	if mf == nil {
		t.Fatal("expected pricefeed_rate_limit_wait_seconds_total metric")
	}
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 90 {
		t.Errorf("expected 90 seconds waited, got %v", got)
	}
}

func TestRegistry_CacheLookups(t *testing.T) {
	reg := NewRegistry()

	reg.RecordCacheLookup("hit")
	reg.RecordCacheLookup("hit")
	reg.RecordCacheLookup("miss")

	mf := findFamily(t, reg, "pricefeed_cache_lookups_total")
	if mf == nil {
		t.Fatal("expected pricefeed_cache_lookups_total metric")
	}
	if len(mf.GetMetric()) != 2 {
		t.Errorf("expected 2 label sets, got %d", len(mf.GetMetric()))
	}
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var reg *Registry

	// None of these may panic
	reg.RecordUpstream("x", 200, 1)
	reg.InFlightInc()
	reg.InFlightDec()
	reg.RecordRetry("x")
	reg.RecordRateLimitWait("x", 1)
	reg.RecordCacheLookup("hit")
	reg.RecordQuotesFetched("crypto", 3)
	reg.RecordCategoryFailure("crypto")
	if err := reg.WriteTextfile("/nonexistent/dir/metrics.prom"); err != nil {
		t.Errorf("nil registry should not write: %v", err)
	}
}

func TestRegistry_WriteTextfile(t *testing.T) {
	reg := NewRegistry()
	reg.RecordQuotesFetched("crypto", 13)
	reg.RecordCategoryFailure("stocks")

	path := filepath.Join(t.TempDir(), "pricefeed.prom")
	if err := reg.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `pricefeed_quotes_fetched_total{category="crypto"} 13`) {
		t.Errorf("textfile missing quotes counter:\n%s", text)
	}
	if !strings.Contains(text, `pricefeed_category_failures_total{category="stocks"} 1`) {
		t.Errorf("textfile missing failure counter:\n%s", text)
	}
}

// Ensure the registry implements prometheus.Gatherer interface
func TestRegistry_ImplementsGatherer(t *testing.T) {
	reg := NewRegistry()
	var _ prometheus.Gatherer = reg
}
