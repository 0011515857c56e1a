// Package handler exposes the API as a single serverless function.
package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/amirasaad/feescope/infra/initializer"
	"github.com/amirasaad/feescope/pkg/app"
	"github.com/amirasaad/feescope/pkg/config"
	"github.com/amirasaad/feescope/webapi"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var (
	once    sync.Once
	handler http.HandlerFunc
)

// Handler is the main entry point of the application.
// Think of it like the main() method
func Handler(w http.ResponseWriter, r *http.Request) {
	// This is needed to set the proper request path in `*fiber.Ctx`
	r.RequestURI = r.URL.String()

	once.Do(func() { handler = build() })
	handler.ServeHTTP(w, r)
}

// build wires the app once per instance. The watcher is never started
// here; POST /api/rates/live/refresh polls it on demand.
func build() http.HandlerFunc {
	cfg, err := config.Load()
	if err != nil {
		return failed(err)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return failed(err)
	}
	return adaptor.FiberApp(webapi.SetupApp(app.New(deps, cfg)))
}

func failed(err error) http.HandlerFunc {
	slog.Error("Failed to initialize application", "error", err)
	return func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}
}
