package service

import (
	"github.com/shopspring/decimal"

	"github.com/baryc/quote-service/internal/domain/model"
)

// LegsDistanceKm converts one-way legs into the billed distance. A delivery
// to another address is two round trips (pickup, then drop); otherwise the
// pickup round trip is driven twice. The result is rounded to 0.1 km.
func LegsDistanceKm(legs model.TransportLegs) float64 {
	pickup, drop := dec(legs.PickupKm), dec(legs.DropKm)

	var total decimal.Decimal
	if legs.DeliveryDifferent && drop.IsPositive() {
		total = two.Mul(pickup).Add(two.Mul(drop))
	} else {
		total = decimal.NewFromInt(4).Mul(pickup)
	}
	return toFloat(total.Round(1))
}

// BilledDistanceKm returns the distance a transport quote is priced on.
// Legs win over DistanceKm when both are set.
func BilledDistanceKm(cfg model.TransportConfig) float64 {
	if cfg.Legs != nil {
		return LegsDistanceKm(*cfg.Legs)
	}
	return Sanitize(cfg.DistanceKm)
}
