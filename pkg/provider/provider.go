// Package provider defines the upstream sources the estimator reads fee
// schedules and exchange rates from.
package provider

import (
	"context"
	"errors"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/feetable"
	"github.com/amirasaad/feescope/pkg/rates"
)

// Common errors for provider operations
var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrUnsupportedPair     = errors.New("unsupported currency pair")
	ErrUnexpectedResponse  = errors.New("unexpected provider response")
)

// FeeSource loads the published fee schedule.
type FeeSource interface {
	FetchFees(ctx context.Context) (feetable.Table, error)
}

// RateSource loads a whole rate table relative to base.
type RateSource interface {
	// FetchRates returns the rates one unit of base buys.
	FetchRates(ctx context.Context, base currency.Code) (*rates.Table, error)

	// Name returns the provider's name for logging and identification.
	Name() string
}

// PairSource quotes a single currency pair.
type PairSource interface {
	FetchQuote(ctx context.Context, from, to currency.Code) (*rates.Quote, error)
}

// FeeSourceFunc adapts a function to FeeSource.
type FeeSourceFunc func(ctx context.Context) (feetable.Table, error)

// FetchFees calls f.
func (f FeeSourceFunc) FetchFees(ctx context.Context) (feetable.Table, error) {
	return f(ctx)
}

// PairSourceFunc adapts a function to PairSource.
type PairSourceFunc func(ctx context.Context, from, to currency.Code) (*rates.Quote, error)

// FetchQuote calls f.
func (f PairSourceFunc) FetchQuote(ctx context.Context, from, to currency.Code) (*rates.Quote, error) {
	return f(ctx, from, to)
}

// TablePairs answers pair quotes from a RateSource by cross-rating its
// table.
type TablePairs struct {
	Source RateSource
	Base   currency.Code
}

// FetchQuote implements PairSource.
func (p TablePairs) FetchQuote(ctx context.Context, from, to currency.Code) (*rates.Quote, error) {
	tbl, err := p.Source.FetchRates(ctx, p.Base)
	if err != nil {
		return nil, err
	}
	q, err := tbl.Quote(from, to)
	if err != nil {
		return nil, errors.Join(ErrUnsupportedPair, err)
	}
	return q, nil
}
