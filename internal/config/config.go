package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/pricefeed/internal/core"
	"github.com/spf13/viper"
)

// RetryDelay is the base delay of the exponential backoff between attempts.
const RetryDelay = time.Second

type Config struct {
	TwelveData TwelveDataConfig `mapstructure:"twelvedata"`
	CoinGecko  CoinGeckoConfig  `mapstructure:"coingecko"`
	Cache      CacheConfig      `mapstructure:"cache"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Export     ExportConfig     `mapstructure:"export"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type TwelveDataConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type CoinGeckoConfig struct {
	APIKey string `mapstructure:"api_key"` // optional demo key
}

type CacheConfig struct {
	Dir        string `mapstructure:"dir"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	MaxRetries     int `mapstructure:"max_retries"`
}

// ExportConfig holds settings for s3:// export targets.
type ExportConfig struct {
	S3 S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	File string `mapstructure:"file"` // prometheus textfile, empty disables
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"twelvedata.api_key":   "TWELVE_DATA_API_KEY",
	"coingecko.api_key":    "COINGECKO_API_KEY",
	"cache.dir":            "PRICE_CACHE_DIR",
	"cache.ttl_seconds":    "PRICE_CACHE_TTL",
	"http.timeout_seconds": "PRICE_REQUEST_TIMEOUT",
	"http.max_retries":     "PRICE_MAX_RETRIES",
	"export.s3.endpoint":   "PRICE_S3_ENDPOINT",
	"export.s3.region":     "PRICE_S3_REGION",
	"export.s3.access_key": "PRICE_S3_ACCESS_KEY",
	"export.s3.secret_key": "PRICE_S3_SECRET_KEY",
	"metrics.file":         "PRICE_METRICS_FILE",
}

// Load reads configuration from the environment and, when path is set, from a file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttl_seconds", d.Cache.TTLSeconds)
	v.SetDefault("http.timeout_seconds", d.HTTP.TimeoutSeconds)
	v.SetDefault("http.max_retries", d.HTTP.MaxRetries)
	v.SetDefault("export.s3.region", d.Export.S3.Region)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}

		// Expand environment variables in string values
		for _, key := range v.AllKeys() {
			val := v.GetString(key)
			if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
				envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
				v.Set(key, os.Getenv(envKey))
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Cache: CacheConfig{
			Dir:        ".price_cache",
			TTLSeconds: 60,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 15,
			MaxRetries:     3,
		},
		Export: ExportConfig{
			S3: S3Config{Region: "us-east-1"},
		},
	}
}

// Validate checks the configuration for errors.
// A missing TwelveData key is not an error here: crypto commands work without it.
func (c *Config) Validate() error {
	if c.Cache.Dir == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("cache dir must be set"))
	}
	if c.Cache.TTLSeconds < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cache ttl cannot be negative, got %d", c.Cache.TTLSeconds))
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("request timeout must be positive, got %d", c.HTTP.TimeoutSeconds))
	}
	if c.HTTP.MaxRetries < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max retries must be at least 1, got %d", c.HTTP.MaxRetries))
	}
	return nil
}

// CacheTTL returns the cache validity window.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// RequestTimeout returns the per-request network timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
