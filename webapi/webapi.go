// Package webapi provides the HTTP API of the fee estimator.
// It is organized into sub-packages per domain:
// - fees: fee evaluation, schedule lookups and parsing
// - exchange: the FX calculator
// - rates: the rate table and the live USD/NGN watcher
// - currency: currency metadata
// - health: the readiness probe
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/feescope/pkg/app"
	"github.com/amirasaad/feescope/webapi/common"
	currencyweb "github.com/amirasaad/feescope/webapi/currency"
	exchangeweb "github.com/amirasaad/feescope/webapi/exchange"
	feesweb "github.com/amirasaad/feescope/webapi/fees"
	"github.com/amirasaad/feescope/webapi/health"
	ratesweb "github.com/amirasaad/feescope/webapi/rates"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "feescope",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled: true,
	}))

	fiberApp.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	if a.Config != nil && a.Config.RateLimit != nil {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:          a.Config.RateLimit.MaxRequests,
			Expiration:   a.Config.RateLimit.Window,
			KeyGenerator: clientKey,
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Fee estimator is running! 🚀")
	})

	// Debug endpoint to list all routes
	fiberApp.Get("/debug/routes", func(c *fiber.Ctx) error {
		routeList := make([]fiber.Map, 0)
		for _, route := range fiberApp.GetRoutes(true) {
			if route.Path != "" {
				routeList = append(routeList, fiber.Map{
					"method": route.Method,
					"path":   route.Path,
				})
			}
		}
		return c.JSON(routeList)
	})

	health.Routes(fiberApp, health.Checks(a.Deps))
	feesweb.Routes(fiberApp, a.EstimateService)
	exchangeweb.Routes(fiberApp, a.ExchangeService)
	ratesweb.Routes(fiberApp, a.Deps.RateSource, a.Deps.Watcher)
	currencyweb.Routes(fiberApp, a.Deps.CurrencyRegistry)
	return fiberApp
}

// clientKey uses X-Forwarded-For when behind a proxy, then X-Real-IP, then
// the direct IP.
func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		// Take the first IP in the chain
		if first, _, found := strings.Cut(forwardedFor, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
