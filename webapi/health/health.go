// Package health serves the readiness probe.
package health

import (
	"context"
	"time"

	"github.com/amirasaad/feescope/pkg/app"
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/webapi/common"
	"github.com/gofiber/fiber/v2"
)

const (
	checkTimeout = 5 * time.Second
	pingKey      = "health:ping"
)

// Checks returns the readiness checks for the app's dependencies.
func Checks(d *app.Deps) map[string]provider.HealthChecker {
	checks := make(map[string]provider.HealthChecker, 3)
	if d.FeeSource != nil {
		checks["fee_source"] = provider.HealthCheckFunc(func(ctx context.Context) error {
			_, err := d.FeeSource.FetchFees(ctx)
			return err
		})
	}
	if d.RateSource != nil {
		checks["rate_source"] = provider.HealthCheckFunc(func(ctx context.Context) error {
			_, err := d.RateSource.FetchRates(ctx, currency.DefaultCode)
			return err
		})
	}
	if d.Cache != nil {
		checks["cache"] = provider.HealthCheckFunc(func(ctx context.Context) error {
			if err := d.Cache.Set(ctx, pingKey, []byte("pong"), time.Minute); err != nil {
				return err
			}
			_, _, err := d.Cache.Get(ctx, pingKey)
			return err
		})
	}
	return checks
}

// Routes registers the readiness probe.
func Routes(app *fiber.App, checks map[string]provider.HealthChecker) {
	app.Get("/health", Handler(checks))
}

// Handler returns a Fiber handler running every check.
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} common.Response
// @Failure 503 {object} common.ProblemDetails
// @Router /health [get]
func Handler(checks map[string]provider.HealthChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), checkTimeout)
		defer cancel()

		results := provider.HealthCheckAll(ctx, checks)
		status := make(map[string]string, len(results))
		for name, err := range results {
			status[name] = "ok"
			if err != nil {
				status[name] = err.Error()
			}
		}
		if err := provider.AllHealthy(results); err != nil {
			return common.ProblemDetailsJSON(c, "Service Unavailable", err, fiber.StatusServiceUnavailable, status)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "ok", status)
	}
}
