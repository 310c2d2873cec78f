package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baryc/quote-service/internal/domain/model"
)

func TestQuoteRequest_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mode          model.TransportMode
		expectedError bool
	}{
		{"empty mode", "", false},
		{"self", model.TransportSelf, false},
		{"operator", model.TransportOperator, false},
		{"unknown", "teleport", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := QuoteRequest{Transport: model.TransportConfig{Mode: tt.mode}}
			err := req.Validate()
			if tt.expectedError {
				assert.ErrorIs(t, err, ErrInvalidTransportMode)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteRequest_ToInput(t *testing.T) {
	req := QuoteRequest{
		Dimensions: model.Dimensions{Length: 1, Width: 0.5, Height: 0.8},
		Services:   []string{"sanding", "varnish", "sanding"},
		Hardware:   map[string]int{"hardware_change": 2},
		ItemCount:  2,
	}

	in := req.ToInput()

	assert.Equal(t, map[string]bool{"sanding": true, "varnish": true}, in.Services)
	assert.Equal(t, model.TransportSelf, in.Transport.Mode)
	assert.Equal(t, 2, in.Hardware["hardware_change"])
	assert.Equal(t, 2, in.ItemCount)
}

func TestCostBasisRequest_ToInput(t *testing.T) {
	req := CostBasisRequest{
		Quote:           QuoteRequest{Services: []string{"stain"}},
		CostOverrides:   map[string]float64{"stain": 9},
		ExtraHourlyCost: 12,
	}
	require.NoError(t, req.Validate())

	in := req.ToInput()
	assert.True(t, in.Quote.Services["stain"])
	assert.Equal(t, 9.0, in.CostOverrides["stain"])
	assert.Equal(t, 12.0, in.ExtraHourlyCost)
}

func TestOrderTotalsRequest_Validate(t *testing.T) {
	line := model.OrderLine{Goods: model.Amounts{HT: 10, TVA: 2, TTC: 12}}

	assert.Error(t, (&OrderTotalsRequest{}).Validate())
	assert.NoError(t, (&OrderTotalsRequest{Lines: []model.OrderLine{line}}).Validate())
	assert.Error(t, (&OrderTotalsRequest{Lines: make([]model.OrderLine, maxOrderLines+1)}).Validate())
	assert.ErrorIs(t, (&OrderTotalsRequest{
		Lines:     []model.OrderLine{line},
		Transport: model.TransportConfig{Mode: "boat"},
	}).Validate(), ErrInvalidTransportMode)
}

func TestAdminRequests_Validate(t *testing.T) {
	neg := -1.0
	price := 15.0
	blank := "  "

	assert.NoError(t, (&AddServiceRequest{Label: "Cirage", PriceTTCPerArea: &price}).Validate())
	assert.Error(t, (&AddServiceRequest{Label: blank, PriceTTCPerArea: &price}).Validate())
	assert.Error(t, (&AddServiceRequest{Label: "Cirage"}).Validate())
	assert.Error(t, (&AddServiceRequest{Label: "Cirage", PriceTTCPerArea: &neg}).Validate())

	assert.Error(t, (&UpdateServiceRequest{}).Validate())
	assert.Error(t, (&UpdateServiceRequest{PriceTTCPerArea: &neg}).Validate())
	assert.NoError(t, (&UpdateServiceRequest{Label: &blank}).Validate())

	assert.NoError(t, (&SetCostRequest{}).Validate())
	assert.NoError(t, (&SetCostRequest{Cost: &price}).Validate())
	assert.Error(t, (&SetCostRequest{Cost: &neg}).Validate())
}

func TestPricingConfigRequest_ToSnapshot(t *testing.T) {
	req := PricingConfigRequest{VATRate: 0.1, Catalog: model.DefaultCatalog(), Tariff: model.DefaultTariff(), TargetHourlyRate: 40}

	snap := req.ToSnapshot()

	assert.Equal(t, 0, snap.Version)
	assert.Equal(t, 0.1, snap.VATRate)
	assert.NoError(t, snap.Validate())
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "lines", Message: "too many lines"}
	assert.Equal(t, "lines: too many lines", err.Error())
}
