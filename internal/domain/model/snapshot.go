package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidSnapshot wraps every validation failure of a PricingSnapshot.
var ErrInvalidSnapshot = errors.New("invalid pricing snapshot")

// DistanceBracket is a flat transport price for distances up to MaxKm (inclusive).
//
// @Description Flat transport price tier
type DistanceBracket struct {
	MaxKm    float64 `json:"max_km" bson:"max_km" example:"9.9"`
	PriceTTC float64 `json:"price_ttc" bson:"price_ttc" example:"79.90"`
	Label    string  `json:"label" bson:"label" example:"0-9.9km"`
}

// OpenEndedBracket prices distances past the last flat bracket as
// BaseTTC + PerKmTTC * (km - FromKm).
//
// @Description Per-kilometer transport tier past the flat brackets
type OpenEndedBracket struct {
	FromKm   float64 `json:"from_km" bson:"from_km" example:"40"`
	BaseTTC  float64 `json:"base_ttc" bson:"base_ttc" example:"149.90"`
	PerKmTTC float64 `json:"per_km_ttc" bson:"per_km_ttc" example:"3.00"`
	Label    string  `json:"label" bson:"label" example:"40km+"`
}

// TransportTariff is the distance bracket table plus the multi-item surcharge.
//
// @Description Transport tariff configuration
type TransportTariff struct {
	// Brackets must be sorted by MaxKm ascending
	Brackets  []DistanceBracket `json:"brackets" bson:"brackets"`
	OpenEnded OpenEndedBracket  `json:"open_ended" bson:"open_ended"`
	// SurchargePerExtraItem is the rate added per transported item beyond the first
	SurchargePerExtraItem float64 `json:"surcharge_per_extra_item" bson:"surcharge_per_extra_item" example:"0.15"`
}

// CostBasisConfig is the internal cost side of the pricing configuration.
// Nil margin rates mean "not configured".
//
// @Description Internal cost table and margin fallbacks
type CostBasisConfig struct {
	// CostsPerArea maps a service key to its internal cost per m²
	CostsPerArea map[string]float64 `json:"costs_per_m2,omitempty" bson:"costs_per_m2,omitempty"`
	// HardwareUnitCosts maps a hardware key to its internal cost per unit
	HardwareUnitCosts map[string]float64 `json:"hardware_unit_costs,omitempty" bson:"hardware_unit_costs,omitempty"`
	// MarginRateHT is preferred over MarginRateTTC when both are set
	MarginRateHT  *float64 `json:"margin_rate_ht,omitempty" bson:"margin_rate_ht,omitempty" example:"0.4"`
	MarginRateTTC *float64 `json:"margin_rate_ttc,omitempty" bson:"margin_rate_ttc,omitempty"`
}

// PricingSnapshot is one complete, internally consistent pricing
// configuration. A published snapshot is never modified; updates build a new
// one with Clone and publish it under a new Version.
//
// @Description Versioned pricing configuration
type PricingSnapshot struct {
	Version int `json:"version" bson:"version" example:"1"`
	// VATRate is a fraction, e.g. 0.20
	VATRate   float64         `json:"vat_rate" bson:"vat_rate" example:"0.2"`
	Catalog   Catalog         `json:"catalog" bson:"catalog"`
	Tariff    TransportTariff `json:"tariff" bson:"tariff"`
	Costs     CostBasisConfig `json:"costs" bson:"costs"`
	// TargetHourlyRate is the labor rate used for the breakeven hours bound
	TargetHourlyRate float64   `json:"target_hourly_rate" bson:"target_hourly_rate" example:"50"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	CreatedBy        string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
}

// Clone returns a deep copy that can be edited freely.
func (s *PricingSnapshot) Clone() *PricingSnapshot {
	out := *s
	out.Catalog = s.Catalog.Clone()
	out.Tariff.Brackets = append([]DistanceBracket(nil), s.Tariff.Brackets...)
	out.Costs.CostsPerArea = cloneFloatMap(s.Costs.CostsPerArea)
	out.Costs.HardwareUnitCosts = cloneFloatMap(s.Costs.HardwareUnitCosts)
	out.Costs.MarginRateHT = cloneFloatPtr(s.Costs.MarginRateHT)
	out.Costs.MarginRateTTC = cloneFloatPtr(s.Costs.MarginRateTTC)
	return &out
}

// Validate checks the snapshot for values the pricing engine cannot use
// meaningfully. The engine itself tolerates bad values; this guards the
// configuration write path.
func (s *PricingSnapshot) Validate() error {
	if !finite(s.VATRate) || s.VATRate < 0 || s.VATRate >= 1 {
		return fmt.Errorf("%w: vat_rate must be in [0,1)", ErrInvalidSnapshot)
	}
	if !finite(s.TargetHourlyRate) || s.TargetHourlyRate < 0 {
		return fmt.Errorf("%w: target_hourly_rate must be >= 0", ErrInvalidSnapshot)
	}

	seen := make(map[string]struct{}, len(s.Catalog.Services)+len(s.Catalog.Hardware))
	for _, svc := range s.Catalog.Services {
		if svc.Key == "" {
			return fmt.Errorf("%w: service key is empty", ErrInvalidSnapshot)
		}
		if _, dup := seen[svc.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidSnapshot, svc.Key)
		}
		seen[svc.Key] = struct{}{}
		if !finite(svc.PriceTTCPerArea) || svc.PriceTTCPerArea < 0 {
			return fmt.Errorf("%w: price of %q must be >= 0", ErrInvalidSnapshot, svc.Key)
		}
	}
	for _, hw := range s.Catalog.Hardware {
		if hw.Key == "" {
			return fmt.Errorf("%w: hardware key is empty", ErrInvalidSnapshot)
		}
		if _, dup := seen[hw.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidSnapshot, hw.Key)
		}
		seen[hw.Key] = struct{}{}
		if !finite(hw.UnitPriceTTC) || hw.UnitPriceTTC < 0 {
			return fmt.Errorf("%w: unit price of %q must be >= 0", ErrInvalidSnapshot, hw.Key)
		}
	}

	if err := s.Tariff.validate(); err != nil {
		return err
	}

	for key, cost := range s.Costs.CostsPerArea {
		if !finite(cost) || cost < 0 {
			return fmt.Errorf("%w: cost of %q must be >= 0", ErrInvalidSnapshot, key)
		}
	}
	for key, cost := range s.Costs.HardwareUnitCosts {
		if !finite(cost) || cost < 0 {
			return fmt.Errorf("%w: unit cost of %q must be >= 0", ErrInvalidSnapshot, key)
		}
	}
	for name, rate := range map[string]*float64{"margin_rate_ht": s.Costs.MarginRateHT, "margin_rate_ttc": s.Costs.MarginRateTTC} {
		if rate != nil && !finite(*rate) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidSnapshot, name)
		}
	}
	return nil
}

// validate enforces ascending brackets with non-decreasing prices so that
// transport never gets cheaper as distance grows.
func (t TransportTariff) validate() error {
	prevKm, prevPrice := -1.0, 0.0
	for i, b := range t.Brackets {
		if !finite(b.MaxKm) || b.MaxKm <= prevKm {
			return fmt.Errorf("%w: bracket %d max_km must be ascending", ErrInvalidSnapshot, i)
		}
		if !finite(b.PriceTTC) || b.PriceTTC < prevPrice {
			return fmt.Errorf("%w: bracket %d price must not decrease", ErrInvalidSnapshot, i)
		}
		prevKm, prevPrice = b.MaxKm, b.PriceTTC
	}
	oe := t.OpenEnded
	if !finite(oe.FromKm) || oe.FromKm < prevKm {
		return fmt.Errorf("%w: open-ended bracket must start after the last bracket", ErrInvalidSnapshot)
	}
	if !finite(oe.BaseTTC) || oe.BaseTTC < prevPrice {
		return fmt.Errorf("%w: open-ended base must not be below the last bracket", ErrInvalidSnapshot)
	}
	if !finite(oe.PerKmTTC) || oe.PerKmTTC < 0 {
		return fmt.Errorf("%w: per_km_ttc must be >= 0", ErrInvalidSnapshot)
	}
	if !finite(t.SurchargePerExtraItem) || t.SurchargePerExtraItem < 0 {
		return fmt.Errorf("%w: surcharge_per_extra_item must be >= 0", ErrInvalidSnapshot)
	}
	return nil
}

// Float returns a pointer to v, for optional configuration fields.
func Float(v float64) *float64 {
	return &v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func cloneFloatMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
