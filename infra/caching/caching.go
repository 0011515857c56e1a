// Package caching wraps upstream sources with a read-through cache.
package caching

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/amirasaad/feescope/pkg/cache"
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/feetable"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/pkg/rates"
	"golang.org/x/sync/singleflight"
)

const (
	feesKey        = "fees:schedule"
	ratesKeyPrefix = "rates:"
)

// FeeSource caches the fee schedule of an upstream FeeSource.
type FeeSource struct {
	next   provider.FeeSource
	store  cache.Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewFeeSource returns a read-through FeeSource.
func NewFeeSource(next provider.FeeSource, store cache.Store, ttl time.Duration, logger *slog.Logger) *FeeSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeeSource{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "fee_cache")),
	}
}

// FetchFees implements provider.FeeSource.
func (c *FeeSource) FetchFees(ctx context.Context) (feetable.Table, error) {
	var cached feetable.Table
	if lookup(ctx, c.store, c.logger, feesKey, &cached) {
		return cached, nil
	}
	v, err, shared := c.group.Do(feesKey, func() (any, error) {
		table, err := c.next.FetchFees(ctx)
		if err != nil {
			return nil, err
		}
		store(ctx, c.store, c.logger, feesKey, table, c.ttl)
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Fee schedule loaded", "shared", shared)
	return v.(feetable.Table), nil
}

// Invalidate drops the cached schedule.
func (c *FeeSource) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, feesKey)
}

// RateSource caches rate tables per base currency.
type RateSource struct {
	next   provider.RateSource
	store  cache.Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewRateSource returns a read-through RateSource.
func NewRateSource(next provider.RateSource, store cache.Store, ttl time.Duration, logger *slog.Logger) *RateSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateSource{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "rate_cache"), slog.String("provider", next.Name())),
	}
}

// FetchRates implements provider.RateSource.
func (c *RateSource) FetchRates(ctx context.Context, base currency.Code) (*rates.Table, error) {
	key := ratesKeyPrefix + base.String()
	var cached rates.Table
	if lookup(ctx, c.store, c.logger, key, &cached) {
		return rates.NewTable(cached.Base, cached.Rates, cached.Timestamp, cached.Source), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		tbl, err := c.next.FetchRates(ctx, base)
		if err != nil {
			return nil, err
		}
		store(ctx, c.store, c.logger, key, tbl, c.ttl)
		return tbl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*rates.Table), nil
}

// Name returns the wrapped provider's name.
func (c *RateSource) Name() string {
	return c.next.Name()
}

// Invalidate drops the cached table for base.
func (c *RateSource) Invalidate(ctx context.Context, base currency.Code) error {
	return c.store.Delete(ctx, ratesKeyPrefix+base.String())
}

// lookup reports a hit only when the value decodes. Store errors count as
// misses.
func lookup(ctx context.Context, s cache.Store, logger *slog.Logger, key string, dst any) bool {
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		logger.Warn("Cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Warn("Dropping undecodable cache entry", "key", key, "error", err)
		_ = s.Delete(ctx, key)
		return false
	}
	return true
}

func store(ctx context.Context, s cache.Store, logger *slog.Logger, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("Cache write failed", "key", key, "error", err)
	}
}

var (
	_ provider.FeeSource  = (*FeeSource)(nil)
	_ provider.RateSource = (*RateSource)(nil)
)
