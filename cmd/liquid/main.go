package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/tokenized/config"
	"github.com/tokenized/logger"
)

// Config is loaded from the environment.
type Config struct {
	Network string `default:"liquidv1" envconfig:"LIQUID_NETWORK" json:"network"`

	LogDevelopment bool   `default:"false" envconfig:"LOG_DEVELOPMENT" json:"log_development"`
	LogText        bool   `default:"true" envconfig:"LOG_TEXT" json:"log_text"`
	LogFile        string `envconfig:"LOG_FILE" json:"log_file"`

	EsploraURL       string `envconfig:"ESPLORA_URL" json:"esplora_url"`
	EsploraTimeoutMS int    `default:"10000" envconfig:"ESPLORA_TIMEOUT_MS" json:"esplora_timeout_ms"`

	// AssetCacheBucket is "standalone" for the filesystem, "mock" for memory, a redis url, an S3
	// bucket name, or "none" to disable the cache.
	AssetCacheBucket        string `default:"standalone" envconfig:"ASSET_CACHE_BUCKET" json:"asset_cache_bucket" masked:"true"`
	AssetCacheRoot          string `default:"./.liquid" envconfig:"ASSET_CACHE_ROOT" json:"asset_cache_root"`
	AssetCacheMaxAgeSeconds int    `default:"3600" envconfig:"ASSET_CACHE_MAX_AGE_SECONDS" json:"asset_cache_max_age_seconds"`
	AssetCacheMaxRetries    int    `default:"4" envconfig:"ASSET_CACHE_MAX_RETRIES" json:"asset_cache_max_retries"`
	AssetCacheRetryDelayMS  int    `default:"2000" envconfig:"ASSET_CACHE_RETRY_DELAY_MS" json:"asset_cache_retry_delay_ms"`
}

func main() {
	ctx := logger.ContextWithLogger(context.Background(), false, true, "")

	cfg := &Config{}
	if err := config.LoadConfig(ctx, cfg); err != nil {
		logger.Fatal(ctx, "Failed to load config : %s", err)
	}

	ctx = logger.ContextWithLogger(context.Background(), cfg.LogDevelopment, cfg.LogText,
		cfg.LogFile)

	if err := logConfig(ctx, cfg); err != nil {
		logger.Fatal(ctx, "Failed to log config : %s", err)
	}

	app := newApp(newApplication(ctx, cfg, os.Stdout))

	// Actions return exit errors that are handled by the cli package. Anything else is a usage
	// error.
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.Cause(err))
		os.Exit(exitFailure)
	}
}

// logConfig logs the config with secret values masked.
func logConfig(ctx context.Context, cfg *Config) error {
	maskedConfig, err := config.MarshalJSONMaskedRaw(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	logger.VerboseWithFields(ctx, []logger.Field{
		logger.JSON("config", maskedConfig),
	}, "Config")
	return nil
}
