package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/i18n"
	"github.com/baryc/quote-service/internal/middleware"
	"github.com/baryc/quote-service/internal/service"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AdminHandler provides the handlers that change the pricing configuration.
// Every change is published to the running calculators before the response
// is written.
type AdminHandler struct {
	pricing        service.PricingConfigService
	loggingService service.LoggingService
	historyLimit   int
}

// NewAdminHandler creates an AdminHandler. loggingService may be nil, in
// which case changes are not audited and the audit route returns 404.
func NewAdminHandler(pricing service.PricingConfigService, loggingService service.LoggingService, historyLimit int) *AdminHandler {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &AdminHandler{
		pricing:        pricing,
		loggingService: loggingService,
		historyLimit:   historyLimit,
	}
}

// ReplacePricingConfig handles PUT /api/admin/pricing-config requests.
//
// @Summary      Replace the pricing configuration
// @Description  Validates the configuration and publishes it as the next version.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body dto.PricingConfigRequest true "Full configuration"
// @Success      200 {object} dto.SuccessResponse{data=model.PricingSnapshot} "Published configuration"
// @Failure      400 {object} dto.ErrorResponse "Invalid configuration"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      409 {object} dto.ErrorResponse "Changed concurrently"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Security     BearerAuth
// @Router       /api/admin/pricing-config [put]
func (h *AdminHandler) ReplacePricingConfig(c *gin.Context) {
	var req dto.PricingConfigRequest
	if err := decodeBody(c, &req); err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	snap, err := h.pricing.Replace(c.Request.Context(), req.ToSnapshot(), middleware.GetActor(c))
	h.respond(c, model.ActionUpdatePricing, "Pricing configuration replaced", snap, err, nil)
}

// History handles GET /api/admin/pricing-config/history requests.
//
// @Summary      List configuration versions
// @Description  Returns the most recent configuration versions, newest first.
// @Tags         Admin
// @Produce      json
// @Param        limit query int false "Maximum versions to return"
// @Success      200 {object} dto.SuccessResponse{data=[]model.PricingSnapshot} "Versions"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Security     BearerAuth
// @Router       /api/admin/pricing-config/history [get]
func (h *AdminHandler) History(c *gin.Context) {
	limit := queryInt(c, "limit", h.historyLimit, h.historyLimit)

	history, err := h.pricing.History(c.Request.Context(), limit)
	if err != nil {
		NewResponseBuilder(c).FromError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(history)
}

// AddService handles POST /api/admin/pricing-config/services requests.
//
// @Summary      Add a catalog service
// @Description  Adds a per-area service. The key is derived from the label and suffixed with -2, -3, ... when taken.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body dto.AddServiceRequest true "Service"
// @Success      201 {object} dto.SuccessResponse{data=dto.AddServiceResponse} "Created"
// @Failure      400 {object} dto.ErrorResponse "Invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      409 {object} dto.ErrorResponse "Changed concurrently"
// @Security     BearerAuth
// @Router       /api/admin/pricing-config/services [post]
func (h *AdminHandler) AddService(c *gin.Context) {
	req, ok := bindRequest[dto.AddServiceRequest](c)
	if !ok {
		return
	}

	key, snap, err := h.pricing.AddService(c.Request.Context(), req.Label, *req.PriceTTCPerArea, middleware.GetActor(c))
	fields := map[string]interface{}{"key": key, "label": req.Label, "price_ttc_per_m2": *req.PriceTTCPerArea}
	if err != nil {
		h.fail(c, model.ActionAddService, "Adding service failed", err, fields)
		return
	}

	c.Set(middleware.SnapshotVersionKey, snap.Version)
	middleware.AuditLog(h.loggingService, c, model.ActionAddService, "Service added", snap.Version, fields)
	NewResponseBuilder(c).SuccessCreated(dto.AddServiceResponse{Key: key, Snapshot: snap})
}

// UpdateService handles PATCH /api/admin/pricing-config/services/:key requests.
//
// @Summary      Rename or reprice a service
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        key path string true "Service key"
// @Param        request body dto.UpdateServiceRequest true "Changes"
// @Success      200 {object} dto.SuccessResponse{data=model.PricingSnapshot} "Published configuration"
// @Failure      400 {object} dto.ErrorResponse "Invalid input"
// @Failure      404 {object} dto.ErrorResponse "Unknown service"
// @Security     BearerAuth
// @Router       /api/admin/pricing-config/services/{key} [patch]
func (h *AdminHandler) UpdateService(c *gin.Context) {
	req, ok := bindRequest[dto.UpdateServiceRequest](c)
	if !ok {
		return
	}

	key := c.Param("key")
	update := service.ServiceUpdate{Label: req.Label, PriceTTCPerArea: req.PriceTTCPerArea}
	snap, err := h.pricing.UpdateService(c.Request.Context(), key, update, middleware.GetActor(c))

	fields := map[string]interface{}{"key": key}
	if req.Label != nil {
		fields["label"] = *req.Label
	}
	if req.PriceTTCPerArea != nil {
		fields["price_ttc_per_m2"] = *req.PriceTTCPerArea
	}
	h.respond(c, model.ActionUpdateService, "Service updated", snap, err, fields)
}

// RemoveService handles DELETE /api/admin/pricing-config/services/:key requests.
//
// @Summary      Remove a service
// @Description  Removes the service and its configured cost.
// @Tags         Admin
// @Produce      json
// @Param        key path string true "Service key"
// @Success      200 {object} dto.SuccessResponse{data=model.PricingSnapshot} "Published configuration"
// @Failure      404 {object} dto.ErrorResponse "Unknown service"
// @Security     BearerAuth
// @Router       /api/admin/pricing-config/services/{key} [delete]
func (h *AdminHandler) RemoveService(c *gin.Context) {
	key := c.Param("key")
	snap, err := h.pricing.RemoveService(c.Request.Context(), key, middleware.GetActor(c))
	h.respond(c, model.ActionRemoveService, "Service removed", snap, err, map[string]interface{}{"key": key})
}

// SetCost handles PUT /api/admin/pricing-config/costs/:key requests.
//
// @Summary      Set the internal cost of a service
// @Description  Sets the cost per m² used by the cost-basis estimator. A null cost removes the entry so the margin rule applies again.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        key path string true "Service key"
// @Param        request body dto.SetCostRequest true "Cost"
// @Success      200 {object} dto.SuccessResponse{data=model.PricingSnapshot} "Published configuration"
// @Failure      400 {object} dto.ErrorResponse "Invalid input"
// @Failure      404 {object} dto.ErrorResponse "Unknown service"
// @Security     BearerAuth
// @Router       /api/admin/pricing-config/costs/{key} [put]
func (h *AdminHandler) SetCost(c *gin.Context) {
	req, ok := bindRequest[dto.SetCostRequest](c)
	if !ok {
		return
	}

	key := c.Param("key")
	snap, err := h.pricing.SetCostPerArea(c.Request.Context(), key, req.Cost, middleware.GetActor(c))

	fields := map[string]interface{}{"key": key, "cost": nil}
	if req.Cost != nil {
		fields["cost"] = *req.Cost
	}
	h.respond(c, model.ActionSetCostPerArea, "Service cost updated", snap, err, fields)
}

// AuditLog handles GET /api/admin/audit requests.
//
// @Summary      List audit entries
// @Description  Returns administrative actions, newest first.
// @Tags         Admin
// @Produce      json
// @Param        action query string false "Action type, e.g. add_service"
// @Param        actor query string false "Admin username"
// @Param        since query string false "RFC 3339 lower bound"
// @Param        limit query int false "Page size"
// @Param        skip query int false "Entries to skip"
// @Success      200 {object} dto.SuccessResponse{data=dto.AuditLogResponse} "Entries"
// @Failure      400 {object} dto.ErrorResponse "Invalid query"
// @Failure      404 {object} dto.ErrorResponse "Audit log disabled"
// @Security     BearerAuth
// @Router       /api/admin/audit [get]
func (h *AdminHandler) AuditLog(c *gin.Context) {
	builder := NewResponseBuilder(c)
	if h.loggingService == nil {
		builder.Error(http.StatusNotFound, i18n.ErrKeyNotFound, nil)
		return
	}

	action := c.Query("action")
	if action != "" && !model.IsAuditAction(action) {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, &dto.ValidationError{Field: "action", Message: "unknown action type"})
		return
	}

	opts := model.LogQueryOptions{
		ActionType: action,
		Actor:      c.Query("actor"),
		AuditOnly:  true,
		Limit:      queryInt(c, "limit", defaultAuditLimit, maxAuditLimit),
		Skip:       queryInt(c, "skip", 0, -1),
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
			return
		}
		opts.StartTime = &t
	}

	entries, err := h.loggingService.QueryLogs(c.Request.Context(), opts)
	if err != nil {
		builder.FromError(err)
		return
	}
	total, err := h.loggingService.CountLogs(c.Request.Context(), opts)
	if err != nil {
		builder.FromError(err)
		return
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}
	builder.SuccessOK(dto.AuditLogResponse{Entries: entries, Total: total})
}

// respond audits a configuration change and writes the published snapshot
// or the mapped error.
func (h *AdminHandler) respond(c *gin.Context, action, message string, snap *model.PricingSnapshot, err error, fields map[string]interface{}) {
	if err != nil {
		h.fail(c, action, message+" failed", err, fields)
		return
	}
	c.Set(middleware.SnapshotVersionKey, snap.Version)
	middleware.AuditLog(h.loggingService, c, action, message, snap.Version, fields)
	NewResponseBuilder(c).SuccessOK(snap)
}

func (h *AdminHandler) fail(c *gin.Context, action, message string, err error, fields map[string]interface{}) {
	middleware.AuditLogError(h.loggingService, c, action, message, err, fields)
	NewResponseBuilder(c).FromError(err)
}

// queryInt reads a non-negative integer query parameter. Invalid values give
// def; max < 0 means unbounded.
func queryInt(c *gin.Context, name string, def, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	if max >= 0 && v > max {
		return max
	}
	return v
}
