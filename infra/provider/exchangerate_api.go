package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/feescope/pkg/config"
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/pkg/rates"
)

// ExchangeRateAPIProvider reads whole rate tables from exchangerate-api.com
// (v6 endpoint).
type ExchangeRateAPIProvider struct {
	apiKey  string
	baseURL string
	http    *httpClient
	logger  *slog.Logger
}

// ExchangeRateAPIResponseV6 represents the v6 response from the ExchangeRate API
// See: https://www.exchangerate-api.com/docs/standard-requests
type ExchangeRateAPIResponseV6 struct {
	Result             string             `json:"result"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	TimeNextUpdateUnix int64              `json:"time_next_update_unix"`
	BaseCode           string             `json:"base_code"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
	ErrorType          string             `json:"error-type,omitempty"`
}

// NewExchangeRateAPIProvider creates a new ExchangeRate API provider using config
func NewExchangeRateAPIProvider(cfg *config.ExchangeRate, logger *slog.Logger) *ExchangeRateAPIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "exchangerate_api")
	return &ExchangeRateAPIProvider{
		apiKey:  cfg.ApiKey,
		baseURL: strings.TrimRight(cfg.ApiUrl, "/"), // https://v6.exchangerate-api.com/v6
		http:    newHTTPClient(cfg.HTTPTimeout, cfg.RequestsPerMinute, cfg.BurstSize, logger),
		logger:  logger,
	}
}

// FetchRates implements provider.RateSource.
func (p *ExchangeRateAPIProvider) FetchRates(ctx context.Context, base currency.Code) (*rates.Table, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", p.baseURL, p.apiKey, base)
	p.logger.Info("Fetching exchange rates from API", "base", base)

	body, err := p.http.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}

	var apiResp ExchangeRateAPIResponseV6
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", provider.ErrUnexpectedResponse, err)
	}
	if apiResp.Result != "success" {
		return nil, fmt.Errorf("%w: API returned result=%s error-type=%s",
			provider.ErrProviderUnavailable, apiResp.Result, apiResp.ErrorType)
	}

	table := make(map[currency.Code]float64, len(apiResp.ConversionRates))
	for code, r := range apiResp.ConversionRates {
		table[currency.Code(code)] = r
	}
	var ts time.Time
	if apiResp.TimeLastUpdateUnix > 0 {
		ts = time.Unix(apiResp.TimeLastUpdateUnix, 0).UTC()
	}
	tbl := rates.NewTable(currency.Code(apiResp.BaseCode), table, ts, p.Name())
	if err := tbl.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrUnexpectedResponse, err)
	}
	p.logger.Info("Exchange rates fetched", "base", tbl.Base, "count", len(tbl.Rates))
	return tbl.Rebase(currency.Normalize(base.String()))
}

// Name returns the provider's name
func (p *ExchangeRateAPIProvider) Name() string {
	return "exchangerate-api"
}

var _ provider.RateSource = (*ExchangeRateAPIProvider)(nil)
