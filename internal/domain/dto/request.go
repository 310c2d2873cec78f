// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
package dto

import (
	"github.com/baryc/quote-service/internal/domain/model"
)

// maxOrderLines bounds the number of pieces in one order request.
const maxOrderLines = 100

// QuoteRequest represents the JSON request body for the quote endpoint.
//
// Numbers are not range-checked: invalid or negative values count as 0 so a
// half-filled form still gets a quote.
//
// @Description Request to price one piece of furniture
// @Example {"dimensions": {"length": 1.0, "width": 0.5, "height": 0.8}, "services": ["sanding"], "transport": {"mode": "operator", "distance_km": 5}, "item_count": 1}
type QuoteRequest struct {
	Dimensions model.Dimensions `json:"dimensions"`
	// Services lists the selected per-area service keys
	Services []string `json:"services" example:"sanding,varnish"`
	// Hardware maps hardware service keys to unit counts
	Hardware  map[string]int        `json:"hardware,omitempty"`
	Transport model.TransportConfig `json:"transport"`
	// ItemCount is the number of pieces transported together
	ItemCount int `json:"item_count,omitempty" example:"1"`
} // @name QuoteRequest

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

// ErrInvalidTransportMode is returned for a mode other than self or operator.
var ErrInvalidTransportMode = &ValidationError{
	Field:   "transport.mode",
	Message: "must be self or operator",
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate performs custom validation on the request.
func (r *QuoteRequest) Validate() error {
	switch r.Transport.Mode {
	case "", model.TransportSelf, model.TransportOperator:
		return nil
	default:
		return ErrInvalidTransportMode
	}
}

// ToInput converts the request to the pricing input. An empty mode means self.
func (r *QuoteRequest) ToInput() model.QuoteInput {
	services := make(map[string]bool, len(r.Services))
	for _, key := range r.Services {
		services[key] = true
	}
	transport := r.Transport
	if transport.Mode == "" {
		transport.Mode = model.TransportSelf
	}
	return model.QuoteInput{
		Dimensions: r.Dimensions,
		Services:   services,
		Hardware:   r.Hardware,
		Transport:  transport,
		ItemCount:  r.ItemCount,
	}
}

// CostBasisRequest represents the JSON request body for the cost-basis endpoint.
//
// @Description Request to estimate the internal cost and profitability of a quote
// @Example {"quote": {"dimensions": {"length": 1.0, "width": 0.5, "height": 0.8}, "services": ["sanding"]}, "cost_overrides": {"sanding": 6.5}}
type CostBasisRequest struct {
	Quote QuoteRequest `json:"quote"`
	// CostOverrides are user-entered costs keyed by service key; they win
	// over the configured costs and the margin rule
	CostOverrides map[string]float64 `json:"cost_overrides,omitempty"`
	// ExtraHourlyCost is added to the target hourly rate
	ExtraHourlyCost float64 `json:"extra_hourly_cost,omitempty" example:"0"`
} // @name CostBasisRequest

// Validate performs custom validation on the request.
func (r *CostBasisRequest) Validate() error {
	return r.Quote.Validate()
}

// ToInput converts the request to the estimator input.
func (r *CostBasisRequest) ToInput() model.CostBasisInput {
	return model.CostBasisInput{
		Quote:           r.Quote.ToInput(),
		CostOverrides:   r.CostOverrides,
		ExtraHourlyCost: r.ExtraHourlyCost,
	}
}

// OrderTotalsRequest represents the JSON request body for the order totals endpoint.
//
// @Description Request to total several quoted pieces sharing one transport
type OrderTotalsRequest struct {
	Lines     []model.OrderLine     `json:"lines" binding:"required,min=1"`
	Transport model.TransportConfig `json:"transport"`
} // @name OrderTotalsRequest

// Validate performs custom validation on the request.
func (r *OrderTotalsRequest) Validate() error {
	if len(r.Lines) == 0 {
		return &ValidationError{Field: "lines", Message: "at least one line is required"}
	}
	if len(r.Lines) > maxOrderLines {
		return &ValidationError{Field: "lines", Message: "too many lines"}
	}
	q := QuoteRequest{Transport: r.Transport}
	return q.Validate()
}

// ToInput converts the request to the order input.
func (r *OrderTotalsRequest) ToInput() model.OrderInput {
	transport := r.Transport
	if transport.Mode == "" {
		transport.Mode = model.TransportSelf
	}
	return model.OrderInput{Lines: r.Lines, Transport: transport}
}
