// Package rates serves the live USD/NGN watcher and the rate table.
package rates

import (
	"errors"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/pkg/ratewatch"
	"github.com/amirasaad/feescope/webapi/common"
	"github.com/gofiber/fiber/v2"
)

var errWatcherDisabled = errors.New("rate watcher is disabled")

// TableQuery represents the query of the rate table endpoint.
type TableQuery struct {
	Base string `query:"base" validate:"omitempty,len=3,alpha"`
}

// Routes registers HTTP routes for rates. A nil watcher leaves the live
// endpoints answering 404.
func Routes(app *fiber.App, src provider.RateSource, w *ratewatch.Watcher) {
	g := app.Group("/api/rates")
	g.Get("/", Table(src))
	g.Get("/live", Live(w))
	g.Post("/live/refresh", Refresh(w))
}

// Table returns a Fiber handler serving the rate table for a base.
// @Summary Rate table
// @Tags rates
// @Produce json
// @Param base query string false "Base currency" default(USD)
// @Success 200 {object} common.Response
// @Failure 422 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /api/rates [get]
func Table(src provider.RateSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, _ := common.BindQuery[TableQuery](c)
		if q == nil {
			return nil
		}
		base := currency.DefaultCode
		if q.Base != "" {
			base = currency.Normalize(q.Base)
		}
		tbl, err := src.FetchRates(c.Context(), base)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch rates", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rates fetched", tbl)
	}
}

// Live returns a Fiber handler serving the watcher snapshot.
// @Summary Live USD/NGN rate
// @Description Latest rate, change against the previous sample and the recent history
// @Tags rates
// @Produce json
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/rates/live [get]
func Live(w *ratewatch.Watcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if w == nil {
			return common.ProblemDetailsJSON(c, "Live rate unavailable", errWatcherDisabled, fiber.StatusNotFound)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Live rate", w.Snapshot())
	}
}

// Refresh returns a Fiber handler forcing a watcher poll.
// @Summary Refresh the live rate
// @Tags rates
// @Produce json
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /api/rates/live/refresh [post]
func Refresh(w *ratewatch.Watcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if w == nil {
			return common.ProblemDetailsJSON(c, "Live rate unavailable", errWatcherDisabled, fiber.StatusNotFound)
		}
		if err := w.Refresh(c.Context()); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to refresh rate", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Live rate refreshed", w.Snapshot())
	}
}
