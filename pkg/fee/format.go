package fee

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// formatNumber renders v with thousands separators and at most two
// decimals: 1500 -> "1,500", 1.5 -> "1.5".
func formatNumber(v float64) string {
	rounded, _ := round2(decimal.NewFromFloat(v)).Float64()
	return printer.Sprintf("%v", number.Decimal(rounded, number.MaxFractionDigits(2)))
}

func formatPercent(p float64) string {
	return decimal.NewFromFloat(p).String() + "%"
}

func formatAmount(symbol string, v float64) string {
	return symbol + formatNumber(v)
}

// Describe renders a rule without converting anything, e.g.
// "1.5% (min $1, max $5)".
func Describe(r Rule) string {
	if r.IsFree {
		return FreeLabel
	}
	var parts []string
	if r.Percent > 0 {
		parts = append(parts, formatPercent(r.Percent))
	}
	if r.Fixed > 0 {
		parts = append(parts, formatAmount(r.fixedSymbol(), r.Fixed))
	}
	var bounds []string
	if r.Min > 0 {
		bounds = append(bounds, "min "+formatAmount(r.boundSymbol(), r.Min))
	}
	if r.Max > 0 {
		bounds = append(bounds, "max "+formatAmount(r.boundSymbol(), r.Max))
	}
	return joinDisplay(parts, bounds, r.Raw)
}

func joinDisplay(parts, bounds []string, fallback string) string {
	if len(parts) == 0 && len(bounds) == 0 {
		return fallback
	}
	var b strings.Builder
	b.WriteString(strings.Join(parts, " + "))
	if len(bounds) > 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("(" + strings.Join(bounds, ", ") + ")")
	}
	return b.String()
}
