// Package fee parses free-text fee descriptions ("FREE", "$1", "₦200",
// "1.5% ($1 – $5)") into rules and applies them to transaction amounts.
//
// Invariants:
//   - Parse never fails: any fragment that cannot be read degrades to 0.
//   - A free rule carries no numeric component.
//   - A bare percent and a bare fixed amount are never combined from the same
//     string; only a parenthesised range contributes bounds next to a percent.
//   - Compute never performs I/O; currency conversion is delegated to the
//     caller's Converter.
package fee

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/amirasaad/feescope/pkg/currency"
)

// FreeLabel is the fee string (case-insensitive) meaning no charge.
const FreeLabel = "FREE"

var (
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?|\.\d+)\s*%`)
	amountPattern  = regexp.MustCompile(`[$₦€£]?\s*(\d[\d,]*(?:\.\d+)?|\.\d+)`)
	groupPattern   = regexp.MustCompile(`\(([^()]*)\)`)
)

const dashes = "-–—"

// Rule is the structured form of a fee description.
type Rule struct {
	IsFree         bool    `json:"is_free"`
	Percent        float64 `json:"percent"`
	Fixed          float64 `json:"fixed"`
	CurrencySymbol string  `json:"currency_symbol"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	// BoundSymbol is the symbol written on the range sides, if any.
	BoundSymbol string `json:"bound_symbol,omitempty"`
	// Matched is set when at least one numeric component was recognised,
	// including an explicit zero amount such as "₦0".
	Matched bool   `json:"matched"`
	Raw     string `json:"raw"`
}

// Parse turns a raw fee description into a Rule.
func Parse(raw string) Rule {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Rule{}
	}
	if strings.EqualFold(trimmed, FreeLabel) {
		return Rule{IsFree: true, Raw: trimmed}
	}

	rule := Rule{Raw: trimmed}
	first, _ := utf8.DecodeRuneInString(trimmed)
	if isFeeSymbol(string(first)) {
		rule.CurrencySymbol = string(first)
	}

	percentFound := false
	if m := percentPattern.FindStringSubmatch(trimmed); m != nil {
		rule.Percent = parseNumber(m[1])
		rule.Matched = true
		percentFound = true
	}

	outside := trimmed
	if loc := rangeGroup(trimmed); loc != nil {
		rule.Min, rule.Max, rule.BoundSymbol = parseRange(trimmed[loc[2]:loc[3]])
		if rule.HasBounds() {
			rule.Matched = true
		}
		outside = trimmed[:loc[0]] + " " + trimmed[loc[1]:]
	}

	// Percent and fixed are mutually exclusive from the bare text.
	if !percentFound {
		if m := amountPattern.FindStringSubmatch(outside); m != nil {
			rule.Fixed = parseNumber(m[1])
			rule.Matched = true
		}
	}
	return rule
}

// FixedCurrency is the currency of the fixed amount: the leading symbol's
// currency, USD when there is none.
func (r Rule) FixedCurrency() currency.Code {
	if code, ok := currency.CodeForFeeSymbol(r.CurrencySymbol); ok {
		return code
	}
	return currency.DefaultCode
}

// BoundCurrency is the currency of the min/max bounds.
func (r Rule) BoundCurrency() currency.Code {
	if code, ok := currency.CodeForFeeSymbol(r.BoundSymbol); ok {
		return code
	}
	return r.FixedCurrency()
}

func (r Rule) fixedSymbol() string {
	if r.CurrencySymbol != "" {
		return r.CurrencySymbol
	}
	return currency.Symbol(currency.DefaultCode)
}

func (r Rule) boundSymbol() string {
	if r.BoundSymbol != "" {
		return r.BoundSymbol
	}
	return r.fixedSymbol()
}

// HasBounds reports whether the rule caps the computed fee.
func (r Rule) HasBounds() bool {
	return r.Min > 0 || r.Max > 0
}

// rangeGroup returns the submatch indexes of the first parenthesised group
// that reads as a range: a dash between two sides where either side carries
// a currency symbol or both sides are plain numbers. "(2-5 days)" is not one.
func rangeGroup(s string) []int {
	for _, loc := range groupPattern.FindAllStringSubmatchIndex(s, -1) {
		left, right, ok := splitRange(s[loc[2]:loc[3]])
		if !ok {
			continue
		}
		if leadingSymbol(left) != "" || leadingSymbol(right) != "" {
			return loc
		}
		_, lok := readNumber(left)
		_, rok := readNumber(right)
		if lok && rok {
			return loc
		}
	}
	return nil
}

func splitRange(inner string) (left, right string, ok bool) {
	i := strings.IndexAny(inner, dashes)
	if i < 0 {
		return "", "", false
	}
	_, size := utf8.DecodeRuneInString(inner[i:])
	return inner[:i], inner[i+size:], true
}

func parseRange(inner string) (low, high float64, symbol string) {
	left, right, ok := splitRange(inner)
	if !ok {
		return 0, 0, ""
	}
	symbol = leadingSymbol(left)
	if symbol == "" {
		symbol = leadingSymbol(right)
	}
	return parseNumber(left), parseNumber(right), symbol
}

func leadingSymbol(s string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(s))
	if isFeeSymbol(string(r)) {
		return string(r)
	}
	return ""
}

// parseNumber reads a number with optional currency symbols and thousands
// separators. Anything unreadable is 0.
func parseNumber(s string) float64 {
	v, _ := readNumber(s)
	return v
}

func readNumber(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ',' || unicode.IsSpace(r):
			return -1
		case isFeeSymbol(string(r)):
			return -1
		}
		return r
	}, s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func isFeeSymbol(s string) bool {
	for _, sym := range currency.FeeSymbols {
		if s == sym {
			return true
		}
	}
	return false
}
