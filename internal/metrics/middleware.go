package metrics

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// roundTripperFunc adapts a function to http.RoundTripper.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func orDefault(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		return http.DefaultTransport
	}
	return next
}

// Transport wraps next and records upstream metrics for provider.
func Transport(reg *Registry, provider string, next http.RoundTripper) http.RoundTripper {
	next = orDefault(next)
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		reg.InFlightInc()
		defer reg.InFlightDec()

		start := time.Now()
		resp, err := next.RoundTrip(r)

		status := 0
		if err == nil {
			status = resp.StatusCode
		}
		reg.RecordUpstream(provider, status, time.Since(start).Seconds())
		return resp, err
	})
}

// LoggingTransport wraps next and debug-logs each upstream round trip.
// The query string is never logged since it may carry an API key.
func LoggingTransport(logger *zap.Logger, provider string, next http.RoundTripper) http.RoundTripper {
	next = orDefault(next)
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)

		fields := []zap.Field{
			zap.String("provider", provider),
			zap.String("method", r.Method),
			zap.String("host", r.URL.Host),
			zap.String("path", r.URL.Path),
			zap.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
		}
		if err != nil {
			logger.Debug("upstream request failed", append(fields, zap.Error(err))...)
			return resp, err
		}
		logger.Debug("upstream request", append(fields, zap.Int("status", resp.StatusCode))...)
		return resp, nil
	})
}
