package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baryc/quote-service/internal/domain/model"
)

func TestLegsDistanceKm(t *testing.T) {
	tests := []struct {
		name string
		legs model.TransportLegs
		want float64
	}{
		{"same address", model.TransportLegs{PickupKm: 10}, 40},
		{"different address", model.TransportLegs{PickupKm: 10, DropKm: 15, DeliveryDifferent: true}, 50},
		{"different address without drop", model.TransportLegs{PickupKm: 10, DeliveryDifferent: true}, 40},
		{"drop ignored when same address", model.TransportLegs{PickupKm: 10, DropKm: 15}, 40},
		{"rounded to 0.1 km", model.TransportLegs{PickupKm: 2.345}, 9.4},
		{"invalid values", model.TransportLegs{PickupKm: math.NaN(), DropKm: -3, DeliveryDifferent: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LegsDistanceKm(tt.legs))
		})
	}
}

func TestBilledDistanceKm(t *testing.T) {
	assert.Equal(t, 12.5, BilledDistanceKm(model.TransportConfig{DistanceKm: 12.5}))
	assert.Equal(t, 0.0, BilledDistanceKm(model.TransportConfig{DistanceKm: -1}))
	assert.Equal(t, 8.0, BilledDistanceKm(model.TransportConfig{
		DistanceKm: 12.5,
		Legs:       &model.TransportLegs{PickupKm: 2},
	}))
}
