// Package testutils builds an offline API for handler tests.
package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	infra_cache "github.com/amirasaad/feescope/infra/cache"
	"github.com/amirasaad/feescope/infra/caching"
	infra_provider "github.com/amirasaad/feescope/infra/provider"
	"github.com/amirasaad/feescope/pkg/app"
	"github.com/amirasaad/feescope/pkg/config"
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/ratewatch"
	"github.com/amirasaad/feescope/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// Options tweak the test app.
type Options struct {
	// RateLimit overrides the default of 1000 requests per minute.
	RateLimit *config.RateLimit
	// NoWatcher leaves the live rate endpoints disabled.
	NoWatcher bool
}

// Env is a running test API and its dependencies.
type Env struct {
	App   *fiber.App
	Deps  *app.Deps
	Store *infra_cache.MemoryStore
}

// NewEnv builds the API over the embedded schedule and rate table.
func NewEnv(t *testing.T, opts Options) *Env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rl := opts.RateLimit
	if rl == nil {
		rl = &config.RateLimit{MaxRequests: 1000, Window: time.Minute}
	}
	cfg := &config.App{Env: "test", RateLimit: rl}

	store := infra_cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	files := infra_provider.NewFileProvider("", "", logger)
	deps := &app.Deps{
		CurrencyRegistry: currency.NewRegistry(),
		FeeSource:        caching.NewFeeSource(files, store, time.Minute, logger),
		RateSource:       caching.NewRateSource(files, store, time.Minute, logger),
		PairSource:       files,
		Cache:            store,
		Logger:           logger,
	}
	if !opts.NoWatcher {
		deps.Watcher = ratewatch.New(files, currency.USD, currency.NGN, ratewatch.Options{Logger: logger})
	}
	return &Env{
		App:   webapi.SetupApp(app.New(deps, cfg)),
		Deps:  deps,
		Store: store,
	}
}

// MakeRequest sends a request with an optional JSON body.
func (e *Env) MakeRequest(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// Decode reads a JSON response body into a generic map.
func Decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// Data returns the data field of a success envelope.
func Data(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body := Decode(t, resp)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	return data
}
