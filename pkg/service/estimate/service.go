// Package estimate evaluates fee strings and looks up fees in the
// published schedule.
package estimate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/fee"
	"github.com/amirasaad/feescope/pkg/feetable"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/pkg/rates"
)

// Evaluation is a parsed rule and its computed result.
type Evaluation struct {
	Fee      string        `json:"fee"`
	Amount   float64       `json:"amount"`
	Currency currency.Code `json:"currency"`
	Rule     fee.Rule      `json:"rule"`
	Result   fee.Result    `json:"result"`
	Issues   []string      `json:"issues,omitempty"`
	// RatesAsOf is set when a rate table was consulted.
	RatesAsOf   *time.Time `json:"rates_as_of,omitempty"`
	RatesSource string     `json:"rates_source,omitempty"`
}

// Request selects a fee from the schedule.
type Request struct {
	UserType string        `json:"user_type"`
	Section  string        `json:"section"`
	Service  string        `json:"service"`
	Amount   float64       `json:"amount"`
	Currency currency.Code `json:"currency"`
}

// Estimate is a scheduled fee evaluated for an amount.
type Estimate struct {
	UserType feetable.UserType `json:"user_type"`
	Section  string            `json:"section"`
	Entry    feetable.Entry    `json:"entry"`
	Evaluation
}

// Item is a schedule entry with its parsed rule.
type Item struct {
	feetable.Entry
	Label   string   `json:"label"`
	Rule    fee.Rule `json:"rule"`
	Summary string   `json:"summary"`
}

// Section is a named group of items.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Service answers fee questions against the current schedule and rates.
type Service struct {
	fees   provider.FeeSource
	rates  provider.RateSource
	logger *slog.Logger
}

// New returns an estimate service. rates may be nil, in which case
// cross-currency components are reported as unavailable.
func New(fees provider.FeeSource, rates provider.RateSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fees: fees, rates: rates, logger: logger.With("service", "estimate")}
}

// Evaluate parses raw and computes it for amount in target.
func (s *Service) Evaluate(ctx context.Context, raw string, amount float64, target currency.Code) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rule := fee.Parse(raw)
	conv := &lazyConverter{ctx: ctx, src: s.rates, logger: s.logger}
	res := fee.Compute(rule, amount, target, conv)

	ev := &Evaluation{
		Fee:      rule.Raw,
		Amount:   amount,
		Currency: target,
		Rule:     rule,
		Result:   res,
	}
	for _, issue := range res.Issues {
		ev.Issues = append(ev.Issues, issue.Error())
	}
	if conv.table != nil {
		ts := conv.table.Timestamp
		ev.RatesAsOf = &ts
		ev.RatesSource = conv.table.Source
	}
	return ev, nil
}

// Estimate looks the fee up in the schedule and evaluates it.
func (s *Service) Estimate(ctx context.Context, req Request) (*Estimate, error) {
	ut, err := feetable.UserTypeFor(req.UserType)
	if err != nil {
		return nil, err
	}
	table, err := s.fees.FetchFees(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading fee schedule: %w", err)
	}
	entry, err := table.Find(ut, req.Section, req.Service)
	if err != nil {
		return nil, err
	}
	ev, err := s.Evaluate(ctx, entry.Fee, req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	return &Estimate{UserType: ut, Section: req.Section, Entry: entry, Evaluation: *ev}, nil
}

// Schedule lists every section of a user type with parsed rules.
func (s *Service) Schedule(ctx context.Context, userType string) ([]Section, error) {
	ut, err := feetable.UserTypeFor(userType)
	if err != nil {
		return nil, err
	}
	table, err := s.fees.FetchFees(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading fee schedule: %w", err)
	}
	names, err := table.Sections(ut)
	if err != nil {
		return nil, err
	}
	out := make([]Section, 0, len(names))
	for _, name := range names {
		entries, _ := table.Section(ut, name)
		sec := Section{Name: name, Items: make([]Item, 0, len(entries))}
		for _, e := range entries {
			rule := fee.Parse(e.Fee)
			sec.Items = append(sec.Items, Item{
				Entry:   e,
				Label:   e.Label(),
				Rule:    rule,
				Summary: fee.Describe(rule),
			})
		}
		out = append(out, sec)
	}
	return out, nil
}

// lazyConverter fetches the USD table on the first cross-currency
// conversion only.
type lazyConverter struct {
	ctx    context.Context
	src    provider.RateSource
	logger *slog.Logger

	once  sync.Once
	table *rates.Table
	err   error
}

func (c *lazyConverter) Convert(amount float64, from, to currency.Code) (float64, error) {
	c.once.Do(func() {
		if c.src == nil {
			c.err = fmt.Errorf("no rate source configured")
			return
		}
		c.table, c.err = c.src.FetchRates(c.ctx, currency.DefaultCode)
		if c.err != nil {
			c.logger.Warn("Rate table unavailable", "error", c.err)
		}
	})
	if c.err != nil {
		return 0, c.err
	}
	return c.table.Convert(amount, from, to)
}
