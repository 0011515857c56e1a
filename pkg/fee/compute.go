package fee

import (
	"fmt"
	"math"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/shopspring/decimal"
)

const unavailableNote = " (rate unavailable)"

var hundred = decimal.NewFromInt(100)

// Converter converts an amount between two currencies.
type Converter interface {
	Convert(amount float64, from, to currency.Code) (float64, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(amount float64, from, to currency.Code) (float64, error)

// Convert calls f.
func (f ConverterFunc) Convert(amount float64, from, to currency.Code) (float64, error) {
	return f(amount, from, to)
}

// Result is the outcome of applying a Rule to an amount.
type Result struct {
	// Computed is nil when nothing could be computed.
	Computed *float64      `json:"computed"`
	Display  string        `json:"display"`
	Currency currency.Code `json:"currency"`
	// Partial is set when a component was left out because its conversion
	// was unavailable.
	Partial bool `json:"partial"`
	// Clamped is "min" or "max" when a bound replaced the computed total.
	Clamped string  `json:"clamped,omitempty"`
	Issues  []error `json:"-"`
}

// Value returns the computed fee and whether there is one.
func (r Result) Value() (float64, bool) {
	if r.Computed == nil {
		return 0, false
	}
	return *r.Computed, true
}

// Compute applies rule to amount expressed in target. Fixed amounts and
// bounds are converted into target through conv; a failed conversion leaves
// that component out and is reported in Display, Partial and Issues.
func Compute(rule Rule, amount float64, target currency.Code, conv Converter) Result {
	res := Result{Currency: target}
	if rule.IsFree {
		res.Computed = floatPtr(0)
		res.Display = FreeLabel
		return res
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		res.Display = Describe(rule)
		res.Issues = append(res.Issues, ErrInvalidAmount)
		return res
	}
	if !target.IsValid() {
		res.Display = Describe(rule)
		res.Issues = append(res.Issues, ErrInvalidCurrency)
		return res
	}
	if !rule.Matched {
		res.Display = rule.Raw
		res.Issues = append(res.Issues, ErrUnrecognized)
		return res
	}

	targetSymbol := currency.Symbol(target)
	total := decimal.Zero
	// A rule with neither percent nor fixed amount ("₦0", a bare range)
	// computes to zero before bounds apply.
	computed := rule.Percent == 0 && rule.Fixed == 0

	var parts []string
	if rule.Percent > 0 {
		total = total.Add(decimal.NewFromFloat(amount).
			Mul(decimal.NewFromFloat(rule.Percent)).
			Div(hundred))
		computed = true
		parts = append(parts, formatPercent(rule.Percent))
	}

	if rule.Fixed > 0 {
		from := rule.FixedCurrency()
		label := formatAmount(rule.fixedSymbol(), rule.Fixed)
		v, err := convert(conv, rule.Fixed, from, target)
		switch {
		case err != nil:
			res.Partial = true
			res.Issues = append(res.Issues, err)
			label += unavailableNote
		default:
			total = total.Add(decimal.NewFromFloat(v))
			computed = true
			if from != target {
				label += " (" + formatAmount(targetSymbol, v) + ")"
			}
		}
		parts = append(parts, label)
	}

	var bounds []string
	if rule.Min > 0 {
		label, v, ok := res.bound(conv, rule, rule.Min, targetSymbol)
		bounds = append(bounds, "min "+label)
		if ok && computed && total.LessThan(v) {
			total = v
			res.Clamped = "min"
		}
	}
	if rule.Max > 0 {
		label, v, ok := res.bound(conv, rule, rule.Max, targetSymbol)
		bounds = append(bounds, "max "+label)
		if ok && computed && total.GreaterThan(v) {
			total = v
			res.Clamped = "max"
		}
	}

	res.Display = joinDisplay(parts, bounds, rule.Raw)
	if computed {
		f, _ := round2(total).Float64()
		res.Computed = &f
	}
	return res
}

// Evaluate parses raw and computes it in one step.
func Evaluate(raw string, amount float64, target currency.Code, conv Converter) Result {
	return Compute(Parse(raw), amount, target, conv)
}

func (res *Result) bound(
	conv Converter,
	rule Rule,
	value float64,
	targetSymbol string,
) (string, decimal.Decimal, bool) {
	v, err := convert(conv, value, rule.BoundCurrency(), res.Currency)
	if err != nil {
		res.Partial = true
		res.Issues = append(res.Issues, err)
		return formatAmount(rule.boundSymbol(), value) + unavailableNote, decimal.Zero, false
	}
	return formatAmount(targetSymbol, v), decimal.NewFromFloat(v), true
}

func convert(conv Converter, amount float64, from, to currency.Code) (float64, error) {
	if from == to {
		return amount, nil
	}
	if conv == nil {
		return 0, fmt.Errorf("%w: %s to %s: no converter", ErrConversionUnavailable, from, to)
	}
	v, err := conv.Convert(amount, from, to)
	if err != nil {
		return 0, fmt.Errorf("%w: %s to %s: %w", ErrConversionUnavailable, from, to, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s to %s: non-finite result", ErrConversionUnavailable, from, to)
	}
	return v, nil
}

// round2 rounds half-up on the cent boundary.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func floatPtr(v float64) *float64 {
	return &v
}
