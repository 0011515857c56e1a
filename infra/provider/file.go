package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/feescope/internal/fixtures/fees"
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/feetable"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/pkg/rates"
)

// FileProvider serves the fee schedule and rate table from local JSON
// files. An empty path falls back to the copies embedded in the binary.
type FileProvider struct {
	feesPath  string
	ratesPath string
	logger    *slog.Logger
}

// NewFileProvider creates a provider reading feesPath and ratesPath.
func NewFileProvider(feesPath, ratesPath string, logger *slog.Logger) *FileProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileProvider{
		feesPath:  feesPath,
		ratesPath: ratesPath,
		logger:    logger.With("component", "file_provider"),
	}
}

// FetchFees implements provider.FeeSource.
func (p *FileProvider) FetchFees(ctx context.Context) (feetable.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := fees.Schedule(p.feesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrProviderUnavailable, err)
	}
	return feetable.Decode(raw)
}

// FetchRates implements provider.RateSource.
func (p *FileProvider) FetchRates(ctx context.Context, base currency.Code) (*rates.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := fees.Rates(p.ratesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrProviderUnavailable, err)
	}
	tbl, err := rates.DecodeTable(raw)
	if err != nil {
		return nil, err
	}
	if tbl.Source == "" {
		tbl.Source = p.Name()
	}
	p.logger.Debug("Loaded rate table", "path", p.ratesPath, "count", len(tbl.Rates))
	return tbl.Rebase(base)
}

// FetchQuote implements provider.PairSource from the file's table.
func (p *FileProvider) FetchQuote(ctx context.Context, from, to currency.Code) (*rates.Quote, error) {
	return provider.TablePairs{Source: p, Base: from}.FetchQuote(ctx, from, to)
}

// Name returns the provider's name
func (p *FileProvider) Name() string {
	return "file"
}

var (
	_ provider.FeeSource  = (*FileProvider)(nil)
	_ provider.RateSource = (*FileProvider)(nil)
	_ provider.PairSource = (*FileProvider)(nil)
)
