// Package common holds the response envelopes and request binding shared
// by the HTTP handlers.
package common

import (
	"errors"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/feetable"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/pkg/rates"
	"github.com/amirasaad/feescope/pkg/schema"
	"github.com/amirasaad/feescope/pkg/service/exchange"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

var validate = validator.New()

// SuccessResponseJSON writes the Response envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ProblemDetailsJSON writes an RFC 9457 problem. Optional args may carry a
// detail string and a status code; without a status it is derived from err.
// Any other arg becomes the errors member.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	status := 0
	detail := ""
	var extra any
	for _, a := range args {
		switch v := a.(type) {
		case int:
			status = v
		case string:
			detail = v
		default:
			extra = v
		}
	}
	if status == 0 {
		status = ErrorToStatusCode(err)
	}
	if detail == "" && err != nil {
		detail = err.Error()
	}

	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.OriginalURL(),
		Errors:   extra,
	}
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		pd.Errors = ve.Issues
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		pd.Errors = fieldErrors(fields)
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func fieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// ErrorToStatusCode maps domain errors to appropriate HTTP status codes.
func ErrorToStatusCode(err error) int {
	var fiberErr *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusInternalServerError
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, feetable.ErrUserTypeNotFound),
		errors.Is(err, feetable.ErrSectionNotFound),
		errors.Is(err, feetable.ErrServiceNotFound),
		errors.Is(err, currency.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, exchange.ErrInvalidAmount),
		errors.Is(err, exchange.ErrMissingCurrency),
		errors.Is(err, exchange.ErrSameCurrency):
		return fiber.StatusBadRequest
	case errors.Is(err, currency.ErrInvalidCode),
		errors.Is(err, provider.ErrUnsupportedPair),
		errors.Is(err, rates.ErrRateNotFound):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, provider.ErrProviderUnavailable),
		errors.Is(err, provider.ErrUnexpectedResponse),
		errors.Is(err, schema.ErrInvalidDocument),
		errors.Is(err, exchange.ErrInvalidConverted):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// Returns a pointer to the struct (populated), or writes an error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		_ = ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		_ = ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest)
		return nil, err
	}
	return &input, nil
}

// BindQuery parses and validates query parameters the same way.
func BindQuery[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.QueryParser(&input); err != nil {
		_ = ProblemDetailsJSON(c, "Invalid query parameters", err, fiber.StatusBadRequest)
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		_ = ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest)
		return nil, err
	}
	return &input, nil
}
