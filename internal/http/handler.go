package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/i18n"
	"github.com/baryc/quote-service/internal/middleware"
	"github.com/baryc/quote-service/internal/service"
)

// Handler provides the HTTP handlers for the quoting routes.
type Handler struct {
	calculator service.QuoteCalculator
}

// NewHandler creates a new Handler instance.
func NewHandler(calculator service.QuoteCalculator) *Handler {
	return &Handler{calculator: calculator}
}

// Quote handles POST /api/quote requests.
//
// @Summary      Price one piece of furniture
// @Description  Computes the treated surface, the goods amounts (TTC, HT, TVA) and the transport quote against the active pricing configuration. Invalid or negative numbers count as 0. Supports idempotency via Idempotency-Key header.
// @Tags         Quotes
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Param        request body dto.QuoteRequest true "Piece to price"
// @Success      200 {object} dto.SuccessResponse{data=model.PricingResult} "Priced quote"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Failure      429 {object} dto.ErrorResponse "Too many requests - rate limit exceeded"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     ApiKeyAuth
// @Router       /api/quote [post]
func (h *Handler) Quote(c *gin.Context) {
	req, ok := bindRequest[dto.QuoteRequest](c)
	if !ok {
		return
	}

	result := h.calculator.Quote(req.ToInput())
	c.Set(middleware.SnapshotVersionKey, result.SnapshotVersion)
	NewResponseBuilder(c).SuccessOK(result)
}

// CostBasis handles POST /api/cost-basis requests.
//
// @Summary      Estimate cost basis and profitability
// @Description  Prices the piece, then resolves the internal cost of each selected service (override, configured cost, margin rule, unknown) and derives the profitability and the breakeven labor hours. Incomplete is true when a cost is unknown.
// @Tags         Quotes
// @Accept       json
// @Produce      json
// @Param        request body dto.CostBasisRequest true "Piece and cost overrides"
// @Success      200 {object} dto.SuccessResponse{data=model.CostBasisResult} "Cost basis"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Failure      429 {object} dto.ErrorResponse "Too many requests - rate limit exceeded"
// @Security     ApiKeyAuth
// @Router       /api/cost-basis [post]
func (h *Handler) CostBasis(c *gin.Context) {
	req, ok := bindRequest[dto.CostBasisRequest](c)
	if !ok {
		return
	}

	result := h.calculator.CostBasis(req.ToInput())
	c.Set(middleware.SnapshotVersionKey, result.Pricing.SnapshotVersion)
	NewResponseBuilder(c).SuccessOK(result)
}

// HourlyCost handles POST /api/hourly-cost requests.
//
// @Summary      Compute the workshop hourly cost
// @Description  Turns monthly charges, salary and variable costs into a cost per productive hour.
// @Tags         Quotes
// @Accept       json
// @Produce      json
// @Param        request body model.HourlyCostInput true "Hourly cost sheet"
// @Success      200 {object} dto.SuccessResponse{data=model.HourlyCostResult} "Hourly cost"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Security     ApiKeyAuth
// @Router       /api/hourly-cost [post]
func (h *Handler) HourlyCost(c *gin.Context) {
	var in model.HourlyCostInput
	if err := decodeBody(c, &in); err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	NewResponseBuilder(c).SuccessOK(h.calculator.HourlyCost(in))
}

// OrderTotals handles POST /api/order/totals requests.
//
// @Summary      Total an order
// @Description  Sums the goods of several quoted pieces and adds a single transport line priced for all of them.
// @Tags         Quotes
// @Accept       json
// @Produce      json
// @Param        request body dto.OrderTotalsRequest true "Order lines"
// @Success      200 {object} dto.SuccessResponse{data=model.OrderTotals} "Order totals"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Security     ApiKeyAuth
// @Router       /api/order/totals [post]
func (h *Handler) OrderTotals(c *gin.Context) {
	req, ok := bindRequest[dto.OrderTotalsRequest](c)
	if !ok {
		return
	}

	result := h.calculator.OrderTotals(req.ToInput())
	c.Set(middleware.SnapshotVersionKey, result.SnapshotVersion)
	NewResponseBuilder(c).SuccessOK(result)
}

// PricingConfig handles GET /api/pricing-config requests.
//
// @Summary      Get the active pricing configuration
// @Description  Returns the catalog, VAT rate, transport tariff and cost settings quotes are computed against.
// @Tags         Pricing
// @Produce      json
// @Success      200 {object} dto.SuccessResponse{data=model.PricingSnapshot} "Active configuration"
// @Router       /api/pricing-config [get]
func (h *Handler) PricingConfig(c *gin.Context) {
	snap := h.calculator.Snapshot()
	c.Set(middleware.SnapshotVersionKey, snap.Version)
	NewResponseBuilder(c).SuccessOK(snap)
}
