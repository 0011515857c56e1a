package fees

import (
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/fee"
	"github.com/amirasaad/feescope/pkg/service/estimate"
	"github.com/amirasaad/feescope/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers HTTP routes for fee evaluation and the fee schedule.
func Routes(app *fiber.App, svc *estimate.Service) {
	g := app.Group("/api/fees")
	g.Post("/evaluate", Evaluate(svc))
	g.Post("/estimate", Estimate(svc))
	g.Get("/schedule", Schedule(svc))
	g.Get("/parse", Parse())
}

// Evaluate returns a Fiber handler computing a raw fee string for an amount.
// @Summary Evaluate a fee string
// @Description Parse a fee description such as "1.5% ($1 – $5)" and compute it for an amount
// @Tags fees
// @Accept json
// @Produce json
// @Param request body EvaluateRequest true "Fee, amount and currency"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Router /api/fees/evaluate [post]
func Evaluate(svc *estimate.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, _ := common.BindAndValidate[EvaluateRequest](c)
		if input == nil {
			return nil // problem already written
		}
		ev, err := svc.Evaluate(c.Context(), input.Fee, input.Amount, currency.Normalize(input.Currency))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to evaluate fee", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Fee evaluated", ev)
	}
}

// Estimate returns a Fiber handler evaluating a fee from the schedule.
// @Summary Estimate a scheduled fee
// @Description Look a service up in the fee schedule and compute its fee for an amount
// @Tags fees
// @Accept json
// @Produce json
// @Param request body EstimateRequest true "Schedule entry, amount and currency"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /api/fees/estimate [post]
func Estimate(svc *estimate.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, _ := common.BindAndValidate[EstimateRequest](c)
		if input == nil {
			return nil // problem already written
		}
		est, err := svc.Estimate(c.Context(), input.toServiceRequest())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to estimate fee", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Fee estimated", est)
	}
}

// Schedule returns a Fiber handler listing the fee schedule of a user type.
// @Summary Fee schedule
// @Description List every section of the fee schedule with parsed rules
// @Tags fees
// @Produce json
// @Param user_type query string false "individual or business" default(individual)
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /api/fees/schedule [get]
func Schedule(svc *estimate.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, _ := common.BindQuery[ScheduleQuery](c)
		if q == nil {
			return nil
		}
		sections, err := svc.Schedule(c.Context(), q.UserType)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load fee schedule", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Fee schedule fetched", sections)
	}
}

// Parse returns a Fiber handler parsing a fee string without computing it.
// @Summary Parse a fee string
// @Tags fees
// @Produce json
// @Param fee query string true "Fee description"
// @Success 200 {object} common.Response
// @Router /api/fees/parse [get]
func Parse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, _ := common.BindQuery[ParseQuery](c)
		if q == nil {
			return nil
		}
		rule := fee.Parse(q.Fee)
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Fee parsed", ParseResponse{
			Rule:    rule,
			Summary: fee.Describe(rule),
		})
	}
}
