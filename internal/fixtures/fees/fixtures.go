// Package fees embeds an offline copy of the fee schedule and a rate table.
package fees

import (
	_ "embed"
	"fmt"
	"os"
)

var (
	//go:embed fees.json
	feesJSON []byte
	//go:embed rates.json
	ratesJSON []byte
)

// Schedule returns the raw fee schedule from path, or the embedded copy
// when path is empty.
func Schedule(path string) ([]byte, error) {
	return load(path, feesJSON)
}

// Rates returns the raw rate table from path, or the embedded copy when
// path is empty.
func Rates(path string) ([]byte, error) {
	return load(path, ratesJSON)
}

func load(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		out := make([]byte, len(embedded))
		copy(out, embedded)
		return out, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return data, nil
}
