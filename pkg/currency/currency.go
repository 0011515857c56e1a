// Package currency holds the currency codes, symbols and metadata the fee
// estimator understands.
package currency

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

const (
	// DefaultDecimals is the default number of decimal places for currencies
	DefaultDecimals = 2
)

var (
	// ErrInvalidCode is returned when a currency code is not 3 uppercase letters.
	ErrInvalidCode = errors.New("invalid currency code")
	// ErrNotFound is returned when a currency is not registered.
	ErrNotFound = errors.New("currency not found")
)

// Code represents an ISO 4217 currency code (e.g., "USD", "NGN").
type Code string

// Currencies the fee schedule is quoted in.
const (
	USD Code = "USD" // US Dollar
	NGN Code = "NGN" // Nigerian Naira
	EUR Code = "EUR" // Euro
	GBP Code = "GBP" // British Pound
)

// DefaultCode is used for amounts written without a currency symbol.
const DefaultCode = USD

// Normalize upper-cases and trims a user supplied code.
func Normalize(code string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(code)))
}

// IsValid checks if the currency code is 3 uppercase letters.
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	return c[0] >= 'A' && c[0] <= 'Z' &&
		c[1] >= 'A' && c[1] <= 'Z' &&
		c[2] >= 'A' && c[2] <= 'Z'
}

// String returns the string representation of the currency code.
func (c Code) String() string {
	return string(c)
}

// Meta holds currency-specific metadata
type Meta struct {
	Code     Code   `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Country  string `json:"country,omitempty"`
	Region   string `json:"region,omitempty"`
	Active   bool   `json:"active"`
}

// builtins are the currencies whose symbols may prefix a fee string.
var builtins = []Meta{
	{Code: USD, Name: "US Dollar", Symbol: "$", Decimals: 2, Country: "United States", Region: "North America", Active: true},
	{Code: NGN, Name: "Nigerian Naira", Symbol: "₦", Decimals: 2, Country: "Nigeria", Region: "Africa", Active: true},
	{Code: EUR, Name: "Euro", Symbol: "€", Decimals: 2, Country: "European Union", Region: "Europe", Active: true},
	{Code: GBP, Name: "British Pound", Symbol: "£", Decimals: 2, Country: "United Kingdom", Region: "Europe", Active: true},
}

// FeeSymbols lists the symbols recognised at the start of a fee string.
var FeeSymbols = []string{"$", "₦", "€", "£"}

// CodeForFeeSymbol maps a fee-string symbol to its currency. It only knows
// the built-in symbols since "$" or "£" are ambiguous across registries.
func CodeForFeeSymbol(symbol string) (Code, bool) {
	for _, m := range builtins {
		if m.Symbol == symbol {
			return m.Code, true
		}
	}
	return "", false
}

// Registry is a thread-safe set of currency metadata keyed by code.
type Registry struct {
	mu    sync.RWMutex
	metas map[Code]Meta
}

// NewRegistry creates a registry seeded with the built-in currencies and
// any extra metadata passed in.
func NewRegistry(extra ...Meta) *Registry {
	r := &Registry{metas: make(map[Code]Meta, len(builtins)+len(extra))}
	for _, m := range builtins {
		r.metas[m.Code] = m
	}
	for _, m := range extra {
		_ = r.Register(m)
	}
	return r
}

// Register adds or updates a currency in the registry
func (r *Registry) Register(meta Meta) error {
	meta.Code = Normalize(string(meta.Code))
	if !meta.Code.IsValid() {
		return ErrInvalidCode
	}
	if meta.Name == "" {
		meta.Name = meta.Code.String()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metas[meta.Code] = meta
	return nil
}

// Get returns currency metadata for the given code
func (r *Registry) Get(code Code) (Meta, error) {
	if !code.IsValid() {
		return Meta{}, ErrInvalidCode
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metas[code]
	if !ok {
		return Meta{}, ErrNotFound
	}
	return m, nil
}

// IsSupported reports whether code is registered and active.
func (r *Registry) IsSupported(code Code) bool {
	m, err := r.Get(code)
	return err == nil && m.Active
}

// Symbol returns the display symbol for code, falling back to the code
// itself for unknown currencies.
func (r *Registry) Symbol(code Code) string {
	if m, err := r.Get(code); err == nil && m.Symbol != "" {
		return m.Symbol
	}
	return code.String() + " "
}

// List returns all registered currencies sorted by code.
func (r *Registry) List() []Meta {
	r.mu.RLock()
	out := make([]Meta, 0, len(r.metas))
	for _, m := range r.metas {
		out = append(out, m)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Count returns the total number of registered currencies
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metas)
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Symbol returns the display symbol for code from the default registry.
func Symbol(code Code) string {
	return defaultRegistry.Symbol(code)
}
