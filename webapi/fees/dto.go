package fees

import (
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/fee"
	"github.com/amirasaad/feescope/pkg/service/estimate"
)

// EvaluateRequest represents the request body for evaluating a fee string.
type EvaluateRequest struct {
	Fee      string  `json:"fee" validate:"max=200"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency" validate:"required,len=3,alpha"`
}

// EstimateRequest represents the request body for estimating a scheduled fee.
type EstimateRequest struct {
	UserType string  `json:"user_type" validate:"omitempty,oneof=individual business Customer Business"`
	Section  string  `json:"section" validate:"required"`
	Service  string  `json:"service" validate:"required"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency" validate:"required,len=3,alpha"`
}

func (r *EstimateRequest) toServiceRequest() estimate.Request {
	return estimate.Request{
		UserType: r.UserType,
		Section:  r.Section,
		Service:  r.Service,
		Amount:   r.Amount,
		Currency: currency.Normalize(r.Currency),
	}
}

// ParseQuery represents the query of the parse endpoint.
type ParseQuery struct {
	Fee string `query:"fee" validate:"max=200"`
}

// ScheduleQuery represents the query of the schedule endpoint.
type ScheduleQuery struct {
	UserType string `query:"user_type" validate:"omitempty,oneof=individual business Customer Business"`
}

// ParseResponse is a parsed fee string.
type ParseResponse struct {
	Rule    fee.Rule `json:"rule"`
	Summary string   `json:"summary"`
}
