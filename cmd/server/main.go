package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/amirasaad/feescope/docs"
	"github.com/amirasaad/feescope/infra/initializer"
	"github.com/amirasaad/feescope/pkg/app"
	"github.com/amirasaad/feescope/pkg/config"
	"github.com/amirasaad/feescope/webapi"
	log "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// @title Fee Estimator API
// @version 1.0.0
// @description Fee schedule evaluation, FX conversion and live USD/NGN rates
// @license.name MIT
// @host localhost:3000
// @BasePath /
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	// Initialize all dependencies
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg, deps)
}

// serve runs the HTTP server and the rate watcher until ctx is done.
func serve(ctx context.Context, cfg *config.App, deps *app.Deps) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if closer, ok := deps.Cache.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Warn("Failed to close cache", "error", err)
			}
		}
	}()

	fiberApp := webapi.SetupApp(app.New(deps, cfg))
	ready := make(chan struct{})
	fiberApp.Hooks().OnListen(func(fiber.ListenData) error {
		close(ready)
		return nil
	})

	g, ctx := errgroup.WithContext(ctx)
	if deps.Watcher != nil {
		g.Go(func() error {
			if err := deps.Watcher.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	listenDone := make(chan struct{})
	g.Go(func() error {
		defer close(listenDone)
		logger.Info("Starting server",
			"env", cfg.Env,
			"address", cfg.Server.Addr(),
			"scheme", cfg.Server.Scheme,
		)
		return fiberApp.Listen(cfg.Server.Addr())
	})
	g.Go(func() error {
		<-ctx.Done()
		select {
		case <-ready:
			logger.Info("Shutting down server")
			return fiberApp.ShutdownWithTimeout(shutdownTimeout)
		case <-listenDone:
			return nil
		}
	})
	return g.Wait()
}
