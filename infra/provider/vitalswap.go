package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/amirasaad/feescope/pkg/config"
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/pkg/rates"
	"golang.org/x/sync/errgroup"
)

// VitalSwapProvider quotes pairs from the VitalSwap exchange endpoint
// (GET <url>?from=USD&to=NGN). As a RateSource it assembles a table from
// one quote per tracked currency.
type VitalSwapProvider struct {
	endpoint   string
	currencies []currency.Code
	http       *httpClient
	logger     *slog.Logger
	now        func() time.Time
}

// NewVitalSwapProvider creates the provider from config.
func NewVitalSwapProvider(cfg *config.ExchangeRate, logger *slog.Logger) *VitalSwapProvider {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "vitalswap")
	codes := make([]currency.Code, 0, len(cfg.Currencies))
	for _, c := range cfg.Currencies {
		if code := currency.Normalize(c); code.IsValid() {
			codes = append(codes, code)
		}
	}
	return &VitalSwapProvider{
		endpoint:   cfg.VitalSwapURL,
		currencies: codes,
		http:       newHTTPClient(cfg.HTTPTimeout, cfg.RequestsPerMinute, cfg.BurstSize, logger),
		logger:     logger,
		now:        time.Now,
	}
}

// FetchQuote implements provider.PairSource.
func (p *VitalSwapProvider) FetchQuote(ctx context.Context, from, to currency.Code) (*rates.Quote, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid exchange endpoint: %w", err)
	}
	q := u.Query()
	q.Set("from", from.String())
	q.Set("to", to.String())
	u.RawQuery = q.Encode()

	body, err := p.http.get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s/%s: %w", from, to, err)
	}
	quote, err := rates.DecodeQuote(body, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrUnexpectedResponse, err)
	}
	quote.Source = p.Name()
	if quote.Timestamp.IsZero() {
		quote.Timestamp = p.now().UTC()
	}
	return quote, nil
}

// FetchRates implements provider.RateSource. Currencies whose quote fails
// are left out of the table; it is an error only when every quote fails.
func (p *VitalSwapProvider) FetchRates(ctx context.Context, base currency.Code) (*rates.Table, error) {
	var (
		mu     sync.Mutex
		table  = make(map[currency.Code]float64, len(p.currencies))
		latest time.Time
		errs   []error
	)
	g := new(errgroup.Group)
	g.SetLimit(4)
	for _, code := range p.currencies {
		if code == base {
			continue
		}
		g.Go(func() error {
			q, err := p.FetchQuote(ctx, base, code)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.logger.Warn("Skipping currency", "base", base, "currency", code, "error", err)
				errs = append(errs, err)
				return nil
			}
			table[code] = q.Rate
			if q.Timestamp.After(latest) {
				latest = q.Timestamp
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(table) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("no rates for %s: %w", base, errors.Join(errs...))
	}
	if latest.IsZero() {
		latest = p.now().UTC()
	}
	tbl := rates.NewTable(base, table, latest, p.Name())
	if err := tbl.Validate(); err != nil {
		return nil, err
	}
	return tbl, nil
}

// Name returns the provider's name
func (p *VitalSwapProvider) Name() string {
	return "vitalswap"
}

var (
	_ provider.PairSource = (*VitalSwapProvider)(nil)
	_ provider.RateSource = (*VitalSwapProvider)(nil)
)
