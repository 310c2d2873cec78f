package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baryc/quote-service/internal/domain/model"
)

func TestHourlyCost(t *testing.T) {
	tests := []struct {
		name  string
		input model.HourlyCostInput
		want  model.HourlyCostResult
	}{
		{
			name: "full cost sheet",
			input: model.HourlyCostInput{
				BillableHours:      160,
				NonProductivePct:   25,
				FixedCosts:         map[string]float64{"rent": 800, "insurance": 100},
				NetSalary:          2000,
				NetToGross:         1.3,
				SocialChargesPct:   45,
				ConsumablesPerHour: 2,
				MaintenancePerHour: 1.5,
			},
			want: model.HourlyCostResult{
				ProductiveHours: 120,
				FixedCosts:      900,
				GrossSalary:     2600,
				EmployerCost:    3770,
				TotalCharges:    4670,
				FixedPerHour:    38.92,
				VariablePerHour: 3.5,
				CostPerHour:     42.42,
			},
		},
		{
			name: "missing coefficient means net equals gross",
			input: model.HourlyCostInput{
				BillableHours: 100,
				NetSalary:     1500,
			},
			want: model.HourlyCostResult{
				ProductiveHours: 100,
				GrossSalary:     1500,
				EmployerCost:    1500,
				TotalCharges:    1500,
				FixedPerHour:    15,
				CostPerHour:     15,
			},
		},
		{
			name: "no productive hours",
			input: model.HourlyCostInput{
				BillableHours:      100,
				NonProductivePct:   140,
				FixedCosts:         map[string]float64{"rent": 500, "bad": math.NaN()},
				ConsumablesPerHour: 4,
			},
			want: model.HourlyCostResult{
				FixedCosts:      500,
				TotalCharges:    500,
				VariablePerHour: 4,
				CostPerHour:     4,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HourlyCost(tt.input))
		})
	}
}
