package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/newthinker/pricefeed/internal/app"
	"github.com/newthinker/pricefeed/internal/cache"
	"github.com/newthinker/pricefeed/internal/collector/coingecko"
	"github.com/newthinker/pricefeed/internal/collector/twelvedata"
	"github.com/newthinker/pricefeed/internal/config"
	"github.com/newthinker/pricefeed/internal/core"
	"github.com/newthinker/pricefeed/internal/logger"
	"github.com/newthinker/pricefeed/internal/metrics"
	"github.com/newthinker/pricefeed/internal/storage/archive"
	"go.uber.org/zap"
)

// env holds everything one command invocation needs.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Registry
	app     *app.App
}

// newEnv loads configuration and wires the clients, cache and aggregator.
func newEnv() (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}
	if metricsFile != "" {
		cfg.Metrics.File = metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log, runID := logger.WithRunID(logger.Must(debug))
	log.Debug("starting run", zap.String("run_id", runID), zap.String("cache_dir", cfg.Cache.Dir))

	var reg *metrics.Registry
	if cfg.Metrics.File != "" {
		reg = metrics.NewRegistry()
	}

	c, err := cache.New(cfg.Cache.Dir, cfg.CacheTTL(),
		cache.WithLogger(log),
		cache.WithMetrics(reg),
	)
	if err != nil {
		return nil, err
	}

	td := twelvedata.New(cfg.TwelveData.APIKey,
		twelvedata.WithHTTPClient(newHTTPClient(cfg, reg, log, core.SourceTwelveData)),
		twelvedata.WithRetry(cfg.HTTP.MaxRetries, config.RetryDelay),
		twelvedata.WithLogger(log),
		twelvedata.WithMetrics(reg),
	)
	cg := coingecko.New(cfg.CoinGecko.APIKey,
		coingecko.WithHTTPClient(newHTTPClient(cfg, reg, log, core.SourceCoinGecko)),
		coingecko.WithRetry(cfg.HTTP.MaxRetries, config.RetryDelay),
		coingecko.WithLogger(log),
		coingecko.WithMetrics(reg),
	)

	a := app.New(td, cg,
		app.WithCache(c),
		app.WithLogger(log),
		app.WithMetrics(reg),
		app.WithExportS3(archive.S3Config{
			Endpoint:  cfg.Export.S3.Endpoint,
			Region:    cfg.Export.S3.Region,
			AccessKey: cfg.Export.S3.AccessKey,
			SecretKey: cfg.Export.S3.SecretKey,
		}),
	)

	return &env{cfg: cfg, log: log, metrics: reg, app: a}, nil
}

func newHTTPClient(cfg *config.Config, reg *metrics.Registry, log *zap.Logger, provider string) *http.Client {
	return &http.Client{
		Timeout:   cfg.RequestTimeout(),
		Transport: metrics.Transport(reg, provider, metrics.LoggingTransport(log, provider, nil)),
	}
}

// close flushes metrics and logs. It runs even when the command failed.
func (e *env) close() {
	if e.metrics != nil {
		if err := e.metrics.WriteTextfile(e.cfg.Metrics.File); err != nil {
			e.log.Warn("failed to write metrics file",
				zap.String("path", e.cfg.Metrics.File),
				zap.Error(err))
		}
	}
	_ = e.log.Sync()
}

// withEnv runs fn with a freshly built env and closes it afterwards.
func withEnv(ctx context.Context, fn func(ctx context.Context, e *env) error) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()
	return fn(ctx, e)
}
