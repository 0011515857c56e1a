// Package exchange converts amounts between currencies for the FX
// calculator.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/pkg/rates"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	ErrInvalidAmount    = errors.New("enter a valid amount > 0")
	ErrMissingCurrency  = errors.New("select both currencies")
	ErrSameCurrency     = errors.New("choose two different currencies")
	ErrInvalidConverted = errors.New("invalid converted value")
)

var printer = message.NewPrinter(language.English)

// Conversion is the outcome of one calculator run.
type Conversion struct {
	From      currency.Code `json:"from"`
	To        currency.Code `json:"to"`
	Amount    float64       `json:"amount"`
	Rate      float64       `json:"rate"`
	Converted float64       `json:"converted"`
	Display   string        `json:"display"`
	Date      string        `json:"date"`
	Source    string        `json:"source,omitempty"`
}

// Service quotes USD/NGN through the pair source and every other pair
// through the rate table.
type Service struct {
	pairs    provider.PairSource
	rates    provider.RateSource
	registry *currency.Registry
	logger   *slog.Logger
	now      func() time.Time
}

// New returns an exchange service. Either source may be nil.
func New(pairs provider.PairSource, rates provider.RateSource, registry *currency.Registry, logger *slog.Logger) *Service {
	if registry == nil {
		registry = currency.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pairs:    pairs,
		rates:    rates,
		registry: registry,
		logger:   logger.With("service", "exchange"),
		now:      time.Now,
	}
}

// Convert converts amount from one currency to another.
func (s *Service) Convert(ctx context.Context, from, to currency.Code, amount float64) (*Conversion, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if from == "" || to == "" {
		return nil, ErrMissingCurrency
	}
	if !from.IsValid() || !to.IsValid() {
		return nil, fmt.Errorf("%w: %s/%s", currency.ErrInvalidCode, from, to)
	}
	if from == to {
		return nil, ErrSameCurrency
	}

	q, err := s.quote(ctx, from, to)
	if err != nil {
		s.logger.Warn("Quote failed", "from", from, "to", to, "error", err)
		return nil, err
	}

	converted, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(q.Rate)).
		Round(2).
		Float64()
	if math.IsNaN(converted) || math.IsInf(converted, 0) {
		return nil, ErrInvalidConverted
	}

	date := q.Timestamp
	if date.IsZero() {
		date = s.now()
	}
	// The pair endpoint may answer for the inverse pair; report what it
	// actually quoted.
	return &Conversion{
		From:      q.From,
		To:        q.To,
		Amount:    amount,
		Rate:      q.Rate,
		Converted: converted,
		Display:   s.format(q.To, converted),
		Date:      date.UTC().Format(time.DateOnly),
		Source:    q.Source,
	}, nil
}

func (s *Service) quote(ctx context.Context, from, to currency.Code) (*rates.Quote, error) {
	if s.pairs != nil && usesPairEndpoint(from, to) {
		return s.pairs.FetchQuote(ctx, from, to)
	}
	if s.rates == nil {
		return nil, fmt.Errorf("%w: %s/%s", provider.ErrUnsupportedPair, from, to)
	}
	tbl, err := s.rates.FetchRates(ctx, currency.DefaultCode)
	if err != nil {
		return nil, err
	}
	q, err := tbl.Quote(from, to)
	if err != nil {
		return nil, errors.Join(provider.ErrUnsupportedPair, err)
	}
	return q, nil
}

func usesPairEndpoint(from, to currency.Code) bool {
	return (from == currency.USD && to == currency.NGN) ||
		(from == currency.NGN && to == currency.USD)
}

// format prints v with exactly two decimals behind the currency symbol.
func (s *Service) format(code currency.Code, v float64) string {
	symbol := ""
	if meta, err := s.registry.Get(code); err == nil {
		symbol = meta.Symbol
	}
	return symbol + printer.Sprintf("%v", number.Decimal(v,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
