package initializer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	infra_cache "github.com/amirasaad/feescope/infra/cache"
	"github.com/amirasaad/feescope/infra/caching"
	infra_provider "github.com/amirasaad/feescope/infra/provider"
	currencyfixtures "github.com/amirasaad/feescope/internal/fixtures/currency"
	"github.com/amirasaad/feescope/pkg/app"
	"github.com/amirasaad/feescope/pkg/cache"
	"github.com/amirasaad/feescope/pkg/config"
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/pkg/ratewatch"
)

// EmbeddedSource selects the copy of a fixture compiled into the binary.
const EmbeddedSource = "embedded"

const (
	redisConnectTimeout = 5 * time.Second
	memoryCleanup       = time.Minute
)

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	logger := SetupLogger(os.Stdout, cfg.Log)
	return Build(context.Background(), cfg, logger)
}

// Build wires the dependencies with an existing logger.
func Build(ctx context.Context, cfg *config.App, logger *slog.Logger) (*app.Deps, error) {
	if logger == nil {
		logger = slog.Default()
	}
	deps := &app.Deps{Logger: logger}

	deps.CurrencyRegistry = loadRegistry(logger)

	store, err := newStore(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, err
	}
	deps.Cache = store

	feeSrc, err := newFeeSource(cfg.FeeSource, logger)
	if err != nil {
		return nil, err
	}
	rateSrc, pairSrc, err := newRateSources(cfg.ExchangeRate, logger)
	if err != nil {
		return nil, err
	}

	deps.FeeSource = caching.NewFeeSource(feeSrc, store, cfg.FeeSource.CacheTTL, logger)
	deps.RateSource = caching.NewRateSource(rateSrc, store, cfg.ExchangeRate.CacheTTL, logger)
	deps.PairSource = pairSrc

	if cfg.RateWatch != nil && cfg.RateWatch.Enabled {
		deps.Watcher = ratewatch.New(
			pairSrc,
			currency.Normalize(cfg.RateWatch.From),
			currency.Normalize(cfg.RateWatch.To),
			ratewatch.Options{
				Interval:   cfg.RateWatch.Interval,
				Window:     cfg.RateWatch.Window,
				MaxSamples: cfg.RateWatch.MaxSamples,
				Logger:     logger,
			},
		)
	}

	logger.Info("Dependencies initialized",
		"fee_source", describeFeeSource(cfg.FeeSource),
		"rate_provider", rateSrc.Name(),
		"watcher", deps.Watcher != nil,
	)
	return deps, nil
}

func loadRegistry(logger *slog.Logger) *currency.Registry {
	metas, err := currencyfixtures.LoadCurrencyMetaCSV("")
	if err != nil {
		logger.Warn("Failed to load currency meta from CSV", "error", err)
		return currency.NewRegistry()
	}
	registry := currency.NewRegistry(metas...)
	logger.Debug("Loaded currency fixtures", "registered_count", registry.Count())
	return registry
}

// newStore connects to redis when a URL is configured. A redis that cannot
// be reached falls back to memory so the estimator still serves.
func newStore(ctx context.Context, cfg *config.Redis, logger *slog.Logger) (cache.Store, error) {
	if cfg == nil || cfg.URL == "" {
		return infra_cache.NewMemoryStore(memoryCleanup), nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()
	store, err := infra_cache.NewRedisStore(ctx, cfg, logger)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", "error", err)
		return infra_cache.NewMemoryStore(memoryCleanup), nil
	}
	return store, nil
}

func newFeeSource(cfg *config.FeeSource, logger *slog.Logger) (provider.FeeSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("fee source config is missing")
	}
	switch cfg.Path {
	case "":
		return infra_provider.NewFeeAPIProvider(cfg, logger), nil
	case EmbeddedSource:
		return infra_provider.NewFileProvider("", "", logger), nil
	default:
		return infra_provider.NewFileProvider(cfg.Path, "", logger), nil
	}
}

func newRateSources(cfg *config.ExchangeRate, logger *slog.Logger) (provider.RateSource, provider.PairSource, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("exchange rate config is missing")
	}
	switch cfg.Provider {
	case "vitalswap", "":
		vs := infra_provider.NewVitalSwapProvider(cfg, logger)
		return vs, vs, nil
	case "exchangerate-api":
		api := infra_provider.NewExchangeRateAPIProvider(cfg, logger)
		// Pair quotes still come from the live USD/NGN endpoint.
		return api, infra_provider.NewVitalSwapProvider(cfg, logger), nil
	case "file":
		path := cfg.FilePath
		if path == EmbeddedSource {
			path = ""
		}
		fp := infra_provider.NewFileProvider("", path, logger)
		return fp, fp, nil
	default:
		return nil, nil, fmt.Errorf("unknown exchange rate provider %q", cfg.Provider)
	}
}

func describeFeeSource(cfg *config.FeeSource) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	return cfg.URL
}
