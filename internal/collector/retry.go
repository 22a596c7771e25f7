package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/pricefeed/internal/core"
	"github.com/newthinker/pricefeed/internal/metrics"
	"go.uber.org/zap"
)

// DefaultRetryAfter is used when a 429 response carries no usable Retry-After.
const DefaultRetryAfter = 60 * time.Second

// MinRateLimitWait is the shortest wait after a 429, including a Retry-After of
// zero or a date in the past.
const MinRateLimitWait = time.Second

// UserAgent is sent with every upstream request.
const UserAgent = "pricefeed/1.0"

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RateLimitError asks the retry loop to wait RetryAfter and try again.
// Waiting on it does not use up a retry.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultRetryAfter
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return DefaultRetryAfter
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return DefaultRetryAfter
}

// Retrier runs a request with exponential backoff on transport failures.
type Retrier struct {
	Provider   string
	MaxRetries int
	Delay      time.Duration
	Sleep      Sleeper
	Logger     *zap.Logger
	Metrics    *metrics.Registry
}

// Backoff returns the wait after the zero-based failed attempt: Delay * 2^attempt.
func (r *Retrier) Backoff(attempt int) time.Duration {
	return r.Delay << attempt
}

// Do calls attempt until it succeeds, returns a non-transport error, or
// MaxRetries transport failures have happened. A *RateLimitError makes Do wait
// and call attempt again without counting a failure.
func (r *Retrier) Do(ctx context.Context, attempt func(ctx context.Context) error) error {
	sleep := r.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxRetries := max(r.MaxRetries, 1)

	var lastErr error
	failures := 0
	for failures < maxRetries {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := attempt(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var limited *RateLimitError
		if errors.As(err, &limited) {
			wait := max(limited.RetryAfter, MinRateLimitWait)
			log.Warn("rate limited, waiting",
				zap.String("provider", r.Provider),
				zap.Duration("retry_after", wait))
			r.Metrics.RecordRateLimitWait(r.Provider, wait.Seconds())
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		if !errors.Is(err, core.ErrTransport) {
			return err
		}

		lastErr = err
		failures++
		log.Warn("upstream attempt failed",
			zap.String("provider", r.Provider),
			zap.Int("attempt", failures),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if failures < maxRetries {
			r.Metrics.RecordRetry(r.Provider)
			if err := sleep(ctx, r.Backoff(failures-1)); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("%s: giving up after %d attempts: %w", r.Provider, failures, lastErr)
}
