package dto

import (
	"strings"

	"github.com/baryc/quote-service/internal/domain/model"
)

// PricingConfigRequest replaces the whole pricing configuration. Version and
// authorship are assigned by the server.
//
// @Description Full pricing configuration
type PricingConfigRequest struct {
	VATRate          float64               `json:"vat_rate" example:"0.2"`
	Catalog          model.Catalog         `json:"catalog"`
	Tariff           model.TransportTariff `json:"tariff"`
	Costs            model.CostBasisConfig `json:"costs"`
	TargetHourlyRate float64               `json:"target_hourly_rate" example:"50"`
} // @name PricingConfigRequest

// ToSnapshot converts the request to an unversioned snapshot.
func (r *PricingConfigRequest) ToSnapshot() *model.PricingSnapshot {
	return &model.PricingSnapshot{
		VATRate:          r.VATRate,
		Catalog:          r.Catalog,
		Tariff:           r.Tariff,
		Costs:            r.Costs,
		TargetHourlyRate: r.TargetHourlyRate,
	}
}

// AddServiceRequest adds a per-area service; its key is derived from Label.
//
// @Description Request to add a service to the catalog
// @Example {"label": "Ponçage de finition", "price_ttc_per_m2": 15}
type AddServiceRequest struct {
	Label           string   `json:"label" binding:"required,max=120" example:"Ponçage de finition"`
	PriceTTCPerArea *float64 `json:"price_ttc_per_m2" binding:"required,gte=0" example:"15"`
} // @name AddServiceRequest

// Validate performs custom validation on the request.
func (r *AddServiceRequest) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return &ValidationError{Field: "label", Message: "label is required"}
	}
	if r.PriceTTCPerArea == nil || *r.PriceTTCPerArea < 0 {
		return &ValidationError{Field: "price_ttc_per_m2", Message: "must be >= 0"}
	}
	return nil
}

// UpdateServiceRequest renames and/or reprices a service. Omitted fields are kept.
//
// @Description Request to update a catalog service
type UpdateServiceRequest struct {
	Label           *string  `json:"label,omitempty" example:"Ponçage fin"`
	PriceTTCPerArea *float64 `json:"price_ttc_per_m2,omitempty" example:"14"`
} // @name UpdateServiceRequest

// Validate performs custom validation on the request.
func (r *UpdateServiceRequest) Validate() error {
	if r.Label == nil && r.PriceTTCPerArea == nil {
		return &ValidationError{Field: "body", Message: "label or price_ttc_per_m2 is required"}
	}
	if r.PriceTTCPerArea != nil && *r.PriceTTCPerArea < 0 {
		return &ValidationError{Field: "price_ttc_per_m2", Message: "must be >= 0"}
	}
	return nil
}

// SetCostRequest sets the internal cost of a service. A null cost removes it.
//
// @Description Request to set or clear the internal cost of a service
// @Example {"cost": 6.5}
type SetCostRequest struct {
	Cost *float64 `json:"cost" example:"6.5"`
} // @name SetCostRequest

// Validate performs custom validation on the request.
func (r *SetCostRequest) Validate() error {
	if r.Cost != nil && *r.Cost < 0 {
		return &ValidationError{Field: "cost", Message: "must be >= 0"}
	}
	return nil
}

// AddServiceResponse is returned after a service was added.
//
// @Description Generated service key and the new configuration
type AddServiceResponse struct {
	Key      string                 `json:"key" example:"poncage-de-finition"`
	Snapshot *model.PricingSnapshot `json:"snapshot"`
} // @name AddServiceResponse

// AuditLogResponse is a page of audit log entries.
//
// @Description Page of audit log entries
type AuditLogResponse struct {
	Entries []model.LogEntry `json:"entries"`
	Total   int64            `json:"total" example:"42"`
} // @name AuditLogResponse
