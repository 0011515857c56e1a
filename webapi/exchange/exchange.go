package exchange

import (
	"github.com/amirasaad/feescope/pkg/currency"
	exchangesvc "github.com/amirasaad/feescope/pkg/service/exchange"
	"github.com/amirasaad/feescope/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// ConvertQuery represents the query of the convert endpoint.
type ConvertQuery struct {
	From   string  `query:"from"`
	To     string  `query:"to"`
	Amount float64 `query:"amount"`
}

// Routes registers HTTP routes for the FX calculator.
func Routes(app *fiber.App, svc *exchangesvc.Service) {
	app.Get("/api/exchange/convert", Convert(svc))
}

// Convert returns a Fiber handler converting an amount between currencies.
// @Summary Convert an amount
// @Description USD/NGN is quoted live, every other pair through the rate table
// @Tags exchange
// @Produce json
// @Param from query string true "Source currency" example(USD)
// @Param to query string true "Target currency" example(NGN)
// @Param amount query number true "Amount to convert"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /api/exchange/convert [get]
func Convert(svc *exchangesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, _ := common.BindQuery[ConvertQuery](c)
		if q == nil {
			return nil
		}
		conv, err := svc.Convert(
			c.Context(),
			currency.Normalize(q.From),
			currency.Normalize(q.To),
			q.Amount,
		)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Conversion failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Conversion successful", conv)
	}
}
