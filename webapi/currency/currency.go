package currency

import (
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers HTTP routes for currency metadata.
func Routes(app *fiber.App, registry *currency.Registry) {
	g := app.Group("/api/currencies")
	g.Get("/", ListCurrencies(registry))
	g.Get("/:code", GetCurrency(registry))
}

// ListCurrencies returns a Fiber handler for listing all known currencies.
// @Summary List all currencies
// @Description Get a list of all currencies the calculators know about
// @Tags currencies
// @Produce json
// @Success 200 {object} common.Response
// @Failure 429 {object} common.ProblemDetails
// @Router /api/currencies [get]
func ListCurrencies(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currencies fetched successfully", registry.List())
	}
}

// GetCurrency returns currency information by code
// @Summary Get currency by code
// @Description Get currency information by ISO 4217 code
// @Tags currencies
// @Produce json
// @Param code path string true "Currency code" example(NGN)
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /api/currencies/{code} [get]
func GetCurrency(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		meta, err := registry.Get(currency.Normalize(c.Params("code")))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Currency not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currency fetched successfully", meta)
	}
}
