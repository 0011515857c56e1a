package app

import (
	"log/slog"

	"github.com/amirasaad/feescope/pkg/cache"
	"github.com/amirasaad/feescope/pkg/config"
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/pkg/ratewatch"
	"github.com/amirasaad/feescope/pkg/service/estimate"
	"github.com/amirasaad/feescope/pkg/service/exchange"
)

// Deps contains all the dependencies the services are built from
type Deps struct {
	CurrencyRegistry *currency.Registry
	FeeSource        provider.FeeSource
	RateSource       provider.RateSource
	PairSource       provider.PairSource
	Cache            cache.Store
	Watcher          *ratewatch.Watcher
	Logger           *slog.Logger
}

type App struct {
	Deps            *Deps
	Config          *config.App
	EstimateService *estimate.Service
	ExchangeService *exchange.Service
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.CurrencyRegistry == nil {
		deps.CurrencyRegistry = currency.Default()
	}
	return &App{
		Deps:            deps,
		Config:          cfg,
		EstimateService: estimate.New(deps.FeeSource, deps.RateSource, deps.Logger),
		ExchangeService: exchange.New(deps.PairSource, deps.RateSource, deps.CurrencyRegistry, deps.Logger),
	}
}
