package rates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/fee"
	"github.com/amirasaad/feescope/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return NewTable(currency.USD, map[currency.Code]float64{
		"ngn": 1500,
		"EUR": 0.9,
		"GBP": 0.75,
	}, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), "test")
}

func TestTable_Convert(t *testing.T) {
	tbl := sampleTable()
	require.NoError(t, tbl.Validate())

	tests := []struct {
		name     string
		amount   float64
		from, to currency.Code
		want     float64
	}{
		{"usd to ngn", 2, currency.USD, currency.NGN, 3000},
		{"ngn to usd", 3000, currency.NGN, currency.USD, 2},
		{"cross eur to gbp", 9, currency.EUR, currency.GBP, 7.5},
		{"identity", 42, "XYZ", "XYZ", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.Convert(tt.amount, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, err := tbl.Convert(1, currency.USD, "JPY")
	assert.ErrorIs(t, err, ErrRateNotFound)
}

func TestTable_IsFeeConverter(t *testing.T) {
	var conv fee.Converter = sampleTable()
	res := fee.Evaluate("$1", 1000, currency.NGN, conv)
	v, ok := res.Value()
	require.True(t, ok)
	assert.Equal(t, 1500.0, v)
}

func TestTable_Validate(t *testing.T) {
	tbl := sampleTable()
	tbl.Rates["EUR"] = 0
	assert.ErrorIs(t, tbl.Validate(), ErrInvalidTable)
	assert.ErrorIs(t, tbl.Validate(), ErrInvalidRate)

	tbl = sampleTable()
	tbl.Rates["euro"] = 1
	assert.ErrorIs(t, tbl.Validate(), currency.ErrInvalidCode)

	var nilTable *Table
	assert.ErrorIs(t, nilTable.Validate(), ErrInvalidTable)
}

func TestTable_Quote(t *testing.T) {
	q, err := sampleTable().Quote(currency.NGN, currency.USD)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/1500, q.Rate, 1e-12)
	assert.Equal(t, "test", q.Source)
}

func TestDecodeTable(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tbl, err := DecodeTable([]byte(`{"base":"usd","rates":{"NGN":1500.5,"EUR":0.91},"timestamp":"2025-09-01"}`))
		require.NoError(t, err)
		assert.Equal(t, currency.USD, tbl.Base)
		assert.Equal(t, 1500.5, tbl.Rates[currency.NGN])
		assert.Equal(t, 1.0, tbl.Rates[currency.USD])
		assert.Equal(t, 2025, tbl.Timestamp.Year())
	})

	t.Run("round trips through json", func(t *testing.T) {
		data, err := json.Marshal(sampleTable())
		require.NoError(t, err)
		tbl, err := DecodeTable(data)
		require.NoError(t, err)
		assert.Equal(t, sampleTable().Rates, tbl.Rates)
		assert.True(t, sampleTable().Timestamp.Equal(tbl.Timestamp))
	})

	t.Run("schema violations", func(t *testing.T) {
		for _, doc := range []string{
			`{"base":"USD"}`,
			`{"rates":{}}`,
			`{"rates":{"NGN":-1}}`,
			`{"rates":{"NGN":"1500"}}`,
			`{"rates":{"NAIRA":1500}}`,
			`[]`,
		} {
			_, err := DecodeTable([]byte(doc))
			assert.ErrorIs(t, err, schema.ErrInvalidDocument, doc)
		}
	})
}

func TestDecodeQuote(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want float64
		from currency.Code
	}{
		{"lower-case numeric", `{"rate": 1530.25}`, 1530.25, currency.USD},
		{"upper-case string", `{"Rate": "1530.25", "From": "usd"}`, 1530.25, currency.USD},
		{"response pair wins", `{"rate": 0.00065, "from": "NGN", "to": "USD"}`, 0.00065, currency.NGN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := DecodeQuote([]byte(tt.doc), currency.USD, currency.NGN)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Rate)
			assert.Equal(t, tt.from, q.From)
		})
	}

	_, err := DecodeQuote([]byte(`{"price": 1}`), currency.USD, currency.NGN)
	assert.ErrorIs(t, err, schema.ErrInvalidDocument)

	_, err = DecodeQuote([]byte(`{"rate": "abc"}`), currency.USD, currency.NGN)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = DecodeQuote([]byte(`{"rate": 0}`), currency.USD, currency.NGN)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestParseTimestamp(t *testing.T) {
	assert.Equal(t, 2025, ParseTimestamp("2025-01-02T03:04:05Z").Year())
	assert.Equal(t, 2025, ParseTimestamp("2025-01-02 03:04:05").Year())
	assert.Equal(t, int64(1700000000), ParseTimestamp("1700000000").Unix())
	assert.True(t, ParseTimestamp("yesterday").IsZero())
}

func TestTable_Rebase(t *testing.T) {
	tbl, err := sampleTable().Rebase(currency.NGN)
	require.NoError(t, err)
	assert.Equal(t, currency.NGN, tbl.Base)
	assert.Equal(t, 1.0, tbl.Rates[currency.NGN])
	assert.InDelta(t, 1.0/1500, tbl.Rates[currency.USD], 1e-12)

	got, err := tbl.Convert(3000, currency.NGN, currency.USD)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got, 1e-9)

	_, err = sampleTable().Rebase("JPY")
	assert.ErrorIs(t, err, ErrRateNotFound)
}
