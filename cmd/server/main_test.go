package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/amirasaad/feescope/infra/initializer"
	"github.com/amirasaad/feescope/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before any tests and applies globally for all tests in the package.
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestServe_StartsAndShutsDown(t *testing.T) {
	cfg := &config.App{
		Env:       "test",
		Server:    &config.Server{Scheme: "http", Host: "127.0.0.1", Port: freePort(t)},
		RateLimit: &config.RateLimit{MaxRequests: 100, Window: time.Minute},
		Redis:     &config.Redis{},
		FeeSource: &config.FeeSource{Path: initializer.EmbeddedSource, CacheTTL: time.Minute},
		ExchangeRate: &config.ExchangeRate{
			Provider: "file",
			FilePath: initializer.EmbeddedSource,
			CacheTTL: time.Minute,
		},
		RateWatch: &config.RateWatch{Enabled: true, From: "USD", To: "NGN", Interval: time.Hour},
	}
	deps, err := initializer.Build(context.Background(), cfg, slog.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, deps) }()

	url := cfg.Server.URL() + "/api/rates/live"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:gosec,noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close() //nolint: errcheck
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	assert.Eventually(t, func() bool {
		return deps.Watcher.Snapshot().Rate != nil
	}, 5*time.Second, 20*time.Millisecond, "watcher polls on start")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}
