package main

import (
	"context"
	"fmt"

	"github.com/opscart/vm-rightsizer/pkg/datasource"
	"github.com/opscart/vm-rightsizer/pkg/models"
	"github.com/opscart/vm-rightsizer/pkg/pricing"
	"github.com/opscart/vm-rightsizer/pkg/recommender"
	"github.com/opscart/vm-rightsizer/pkg/storage"
)

// openSource returns the Prometheus source when configured and reachable,
// otherwise the file source.
func openSource(ctx context.Context) datasource.Source {
	files := datasource.NewFileSource(cfg.DataDir, cfg.Region)
	if cfg.PrometheusURL == "" {
		logger.Info("using utilization files", "dir", cfg.DataDir)
		return files
	}

	prom, err := datasource.NewPrometheusSource(cfg.PrometheusURL, cfg.LookbackDuration,
		datasource.DefaultMetrics(), files, logger)
	if err != nil {
		logger.Warn("prometheus initialization failed, falling back to files", "error", err)
		return files
	}
	if !prom.IsAvailable(ctx) {
		logger.Warn("prometheus not reachable, falling back to files", "url", cfg.PrometheusURL)
		return files
	}

	if cfg.PrometheusStep > 0 {
		prom.UseRangeQueries(cfg.PrometheusStep)
	}
	logger.Info("using prometheus", "url", cfg.PrometheusURL, "lookback_days", cfg.LookbackDays, "step", cfg.PrometheusStep)
	return prom
}

// loadRun reads the SKU catalog and the normalized utilization tables
func loadRun(ctx context.Context, src datasource.Source) ([]*models.ComputeSku, *recommender.Inputs, error) {
	skus, err := src.ComputeSkus(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load compute skus: %w", err)
	}

	in, err := recommender.LoadInputs(ctx, src, models.NewComputeCatalog(skus), logger)
	if err != nil {
		return nil, nil, err
	}
	return skus, in, nil
}

// loadPrices reads the price list file, or fetches the region from the
// retail API through the configured cache.
func loadPrices(ctx context.Context) ([]pricing.PriceItem, error) {
	if cfg.PriceListFile != "" {
		logger.Info("using price list file", "path", cfg.PriceListFile)
		return pricing.LoadPriceList(cfg.PriceListFile)
	}

	var cache pricing.PriceCache = pricing.NewMemoryCache(cfg.PriceCacheTTL)
	if cfg.RedisAddr != "" {
		redisCache, err := pricing.NewRedisCache(cfg.RedisAddr, "", 0, cfg.PriceCacheTTL)
		if err != nil {
			logger.Warn("redis cache unavailable, using memory cache", "error", err)
		} else {
			defer redisCache.Close()
			cache = redisCache
		}
	}

	client := pricing.NewRetailClient("", cache, logger)
	return client.FetchPrices(ctx, cfg.Region)
}

// openStore connects to Postgres. Storage must be enabled.
func openStore(ctx context.Context) (storage.Store, error) {
	if !cfg.StorageEnabled {
		return nil, fmt.Errorf("storage is disabled, set STORAGE_ENABLED=true")
	}
	store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}
