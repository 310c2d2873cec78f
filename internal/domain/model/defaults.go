package model

import "time"

// Default configuration values used to seed the first pricing snapshot.
const (
	DefaultVATRate               = 0.20
	DefaultTargetHourlyRate      = 50.0
	DefaultSurchargePerExtraItem = 0.15
)

// DefaultCatalog returns the workshop's standard services.
func DefaultCatalog() Catalog {
	return Catalog{
		Services: []Service{
			{Key: "sanding", Label: "Ponçage de finition", PriceTTCPerArea: 12},
			{Key: "media_blasting", Label: "Aérogommage", PriceTTCPerArea: 45},
			{Key: "paint_1_colour", Label: "Peinture 1 couleur", PriceTTCPerArea: 49},
			{Key: "paint_2_colours", Label: "Peinture 2 couleurs", PriceTTCPerArea: 89},
			{Key: "stain", Label: "Teinte", PriceTTCPerArea: 49},
			{Key: "varnish", Label: "Vernis", PriceTTCPerArea: 49},
			{Key: "consumables", Label: "Consommables", PriceTTCPerArea: 19},
		},
		Hardware: []HardwareService{
			{Key: "hardware_change", Label: "Changement de ferrures", UnitPriceTTC: 18},
			{Key: "hardware_polish", Label: "Polissage des ferrures", UnitPriceTTC: 12},
		},
	}
}

// DefaultTariff returns the standard transport tariff.
func DefaultTariff() TransportTariff {
	return TransportTariff{
		Brackets: []DistanceBracket{
			{MaxKm: 9.9, PriceTTC: 79.90, Label: "0-9.9km"},
			{MaxKm: 19.9, PriceTTC: 99.90, Label: "10-19.9km"},
			{MaxKm: 29.9, PriceTTC: 119.90, Label: "20-29.9km"},
			{MaxKm: 39.9, PriceTTC: 149.90, Label: "30-39.9km"},
		},
		OpenEnded:             OpenEndedBracket{FromKm: 40, BaseTTC: 149.90, PerKmTTC: 3.00, Label: "40km+"},
		SurchargePerExtraItem: DefaultSurchargePerExtraItem,
	}
}

// DefaultSnapshot returns version 0 of the pricing configuration. It has no
// cost table and no margin rate, so every cost resolves to unknown until an
// operator fills them in.
func DefaultSnapshot() *PricingSnapshot {
	return &PricingSnapshot{
		Version:          0,
		VATRate:          DefaultVATRate,
		Catalog:          DefaultCatalog(),
		Tariff:           DefaultTariff(),
		Costs:            CostBasisConfig{CostsPerArea: map[string]float64{}, HardwareUnitCosts: map[string]float64{}},
		TargetHourlyRate: DefaultTargetHourlyRate,
		CreatedAt:        time.Now().UTC(),
		CreatedBy:        "system",
	}
}
