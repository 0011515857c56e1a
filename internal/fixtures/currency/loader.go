// Package currency embeds the currency metadata table seeded into the
// registry at startup.
package currency

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/amirasaad/feescope/pkg/currency"
)

//go:embed meta.csv
var metaCSV string

const columns = 7

// LoadCurrencyMetaCSV loads currency metadata from a CSV file or embedded content.
// If path is empty, it uses the embedded CSV content.
func LoadCurrencyMetaCSV(path string) ([]currency.Meta, error) {
	var r io.Reader = strings.NewReader(metaCSV)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return parseCurrencyMetaCSV(r)
}

func parseCurrencyMetaCSV(r io.Reader) ([]currency.Meta, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	if len(records[0]) < columns {
		return nil, fmt.Errorf(
			"invalid CSV format: expected at least %d columns, got %d",
			columns,
			len(records[0]),
		)
	}

	metas := make([]currency.Meta, 0, len(records)-1)
	for _, rec := range records[1:] {
		// Skip malformed rows
		if len(rec) < columns {
			continue
		}
		code := currency.Normalize(rec[0])
		if !code.IsValid() {
			continue
		}
		decimals, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			decimals = 2
		}
		metas = append(metas, currency.Meta{
			Code:     code,
			Name:     strings.TrimSpace(rec[1]),
			Symbol:   strings.TrimSpace(rec[2]),
			Decimals: decimals,
			Country:  strings.TrimSpace(rec[4]),
			Region:   strings.TrimSpace(rec[5]),
			Active:   strings.EqualFold(strings.TrimSpace(rec[6]), "true"),
		})
	}
	return metas, nil
}
