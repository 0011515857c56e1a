package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/feescope/pkg/config"
	"github.com/amirasaad/feescope/pkg/feetable"
	"github.com/amirasaad/feescope/pkg/provider"
)

// FeeAPIProvider reads the published fee schedule over HTTP.
type FeeAPIProvider struct {
	url    string
	http   *httpClient
	logger *slog.Logger
}

// NewFeeAPIProvider creates a fee schedule provider from config.
func NewFeeAPIProvider(cfg *config.FeeSource, logger *slog.Logger) *FeeAPIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "fee_api")
	return &FeeAPIProvider{
		url:    cfg.URL,
		http:   newHTTPClient(cfg.HTTPTimeout, 0, 1, logger),
		logger: logger,
	}
}

// FetchFees implements provider.FeeSource.
func (p *FeeAPIProvider) FetchFees(ctx context.Context) (feetable.Table, error) {
	p.logger.Info("Fetching fee schedule", "url", p.url)
	body, err := p.http.get(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fees: %w", err)
	}
	table, err := feetable.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrUnexpectedResponse, err)
	}
	return table, nil
}

var _ provider.FeeSource = (*FeeAPIProvider)(nil)
