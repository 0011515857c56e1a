// Package rates holds exchange-rate tables and pair quotes and converts
// amounts between currencies through them.
package rates

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/schema"
)

var (
	// ErrRateNotFound is returned when a table has no rate for a currency.
	ErrRateNotFound = errors.New("exchange rate not found")
	// ErrInvalidRate is returned for zero, negative or non-finite rates.
	ErrInvalidRate = errors.New("invalid exchange rate")
	// ErrInvalidTable is returned when a table fails validation.
	ErrInvalidTable = errors.New("invalid exchange rate table")
)

var (
	//go:embed schema/rates.schema.json
	tableSchemaJSON []byte
	//go:embed schema/quote.schema.json
	quoteSchemaJSON []byte

	tableSchema = schema.New("rates.schema.json", tableSchemaJSON)
	quoteSchema = schema.New("quote.schema.json", quoteSchemaJSON)
)

// timeLayouts are the timestamp shapes the rate endpoints have been seen
// to return.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Table maps currencies to their rate against Base: one unit of Base buys
// Rates[c] units of c.
type Table struct {
	Base      currency.Code             `json:"base"`
	Rates     map[currency.Code]float64 `json:"rates"`
	Timestamp time.Time                 `json:"timestamp"`
	Source    string                    `json:"source,omitempty"`
}

// NewTable builds a table, normalising codes and pinning the base rate to 1.
func NewTable(base currency.Code, rates map[currency.Code]float64, ts time.Time, source string) *Table {
	if base == "" {
		base = currency.DefaultCode
	}
	t := &Table{
		Base:      currency.Normalize(base.String()),
		Rates:     make(map[currency.Code]float64, len(rates)+1),
		Timestamp: ts,
		Source:    source,
	}
	for code, r := range rates {
		t.Rates[currency.Normalize(code.String())] = r
	}
	t.Rates[t.Base] = 1
	return t
}

// Validate checks every code and rate in the table.
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil table", ErrInvalidTable)
	}
	if !t.Base.IsValid() {
		return fmt.Errorf("%w: base %q: %w", ErrInvalidTable, t.Base, currency.ErrInvalidCode)
	}
	for code, r := range t.Rates {
		if !code.IsValid() {
			return fmt.Errorf("%w: %q: %w", ErrInvalidTable, code, currency.ErrInvalidCode)
		}
		if !validRate(r) {
			return fmt.Errorf("%w: %s=%v: %w", ErrInvalidTable, code, r, ErrInvalidRate)
		}
	}
	return nil
}

// Rate returns the rate of code against the table base.
func (t *Table) Rate(code currency.Code) (float64, error) {
	if code == t.Base {
		return 1, nil
	}
	r, ok := t.Rates[code]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrRateNotFound, code)
	}
	if !validRate(r) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRate, code)
	}
	return r, nil
}

// Convert converts amount from one currency to another through the base.
// It satisfies fee.Converter.
func (t *Table) Convert(amount float64, from, to currency.Code) (float64, error) {
	if from == to {
		return amount, nil
	}
	rate, err := t.CrossRate(from, to)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}

// CrossRate returns how many units of to one unit of from buys.
func (t *Table) CrossRate(from, to currency.Code) (float64, error) {
	rf, err := t.Rate(from)
	if err != nil {
		return 0, err
	}
	rt, err := t.Rate(to)
	if err != nil {
		return 0, err
	}
	return rt / rf, nil
}

// Quote returns the pair quote for from/to derived from the table.
func (t *Table) Quote(from, to currency.Code) (*Quote, error) {
	rate, err := t.CrossRate(from, to)
	if err != nil {
		return nil, err
	}
	return &Quote{From: from, To: to, Rate: rate, Timestamp: t.Timestamp, Source: t.Source}, nil
}

// Rebase returns the table expressed against base.
func (t *Table) Rebase(base currency.Code) (*Table, error) {
	if base == t.Base {
		return t, nil
	}
	rb, err := t.Rate(base)
	if err != nil {
		return nil, err
	}
	out := make(map[currency.Code]float64, len(t.Rates))
	for code, r := range t.Rates {
		out[code] = r / rb
	}
	return NewTable(base, out, t.Timestamp, t.Source), nil
}

// Currencies lists the codes the table can convert.
func (t *Table) Currencies() []currency.Code {
	out := make([]currency.Code, 0, len(t.Rates))
	for code := range t.Rates {
		out = append(out, code)
	}
	return out
}

type tableWire struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Timestamp *string            `json:"timestamp"`
	Source    string             `json:"source"`
}

// DecodeTable validates data against the rate table schema and decodes it.
func DecodeTable(data []byte) (*Table, error) {
	if err := tableSchema.Validate(data); err != nil {
		return nil, err
	}
	var w tableWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding rate table: %w", err)
	}
	rates := make(map[currency.Code]float64, len(w.Rates))
	for code, r := range w.Rates {
		rates[currency.Code(code)] = r
	}
	var ts time.Time
	if w.Timestamp != nil {
		ts = ParseTimestamp(*w.Timestamp)
	}
	t := NewTable(currency.Code(w.Base), rates, ts, w.Source)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Quote is a single pair rate: one unit of From buys Rate units of To.
type Quote struct {
	From      currency.Code `json:"from"`
	To        currency.Code `json:"to"`
	Rate      float64       `json:"rate"`
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source,omitempty"`
}

type quoteWire struct {
	Rate      json.RawMessage `json:"rate"`
	RateAlt   json.RawMessage `json:"Rate"`
	Timestamp *string         `json:"timestamp"`
	From      string          `json:"from"`
	FromAlt   string          `json:"From"`
	To        string          `json:"to"`
	ToAlt     string          `json:"To"`
}

// DecodeQuote validates and decodes a pair quote. The rate may come as
// "rate" or "Rate", as a number or a numeric string; missing from/to fall
// back to the requested pair.
func DecodeQuote(data []byte, from, to currency.Code) (*Quote, error) {
	if err := quoteSchema.Validate(data); err != nil {
		return nil, err
	}
	var w quoteWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding quote: %w", err)
	}
	raw := w.Rate
	if len(raw) == 0 || string(raw) == "null" {
		raw = w.RateAlt
	}
	rate, err := parseRate(raw)
	if err != nil {
		return nil, err
	}
	q := &Quote{
		From: pick(w.From, w.FromAlt, from),
		To:   pick(w.To, w.ToAlt, to),
		Rate: rate,
	}
	if w.Timestamp != nil {
		q.Timestamp = ParseTimestamp(*w.Timestamp)
	}
	return q, nil
}

func parseRate(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%w: missing rate", ErrInvalidRate)
	}
	s := strings.Trim(string(raw), `"`)
	r, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !validRate(r) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRate, s)
	}
	return r, nil
}

func pick(primary, alt string, fallback currency.Code) currency.Code {
	for _, s := range []string{primary, alt} {
		if c := currency.Normalize(s); c.IsValid() {
			return c
		}
	}
	return fallback
}

// ParseTimestamp reads the timestamp formats used by rate endpoints. An
// unreadable timestamp is the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC()
	}
	return time.Time{}
}

func validRate(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}
