package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/baryc/quote-service/internal/domain/model"
)

// HourlyCost computes what one productive hour costs the workshop from its
// monthly cost sheet. Its CostPerHour is meant to be used as the extra
// hourly cost of a cost-basis estimate.
func HourlyCost(in model.HourlyCostInput) model.HourlyCostResult {
	nonProd := decimal.Min(dec(in.NonProductivePct), hundred)
	productive := dec(in.BillableHours).Mul(one.Sub(nonProd.Div(hundred)))

	// Sum in key order so the result does not depend on map iteration.
	keys := make([]string, 0, len(in.FixedCosts))
	for k := range in.FixedCosts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fixed := decimal.Zero
	for _, k := range keys {
		fixed = fixed.Add(dec(in.FixedCosts[k]))
	}

	coeff := dec(in.NetToGross)
	if coeff.IsZero() {
		coeff = one
	}
	gross := dec(in.NetSalary).Mul(coeff)
	employer := gross.Mul(one.Add(dec(in.SocialChargesPct).Div(hundred)))
	charges := fixed.Add(employer)

	fixedPerHour := decimal.Zero
	if productive.IsPositive() {
		fixedPerHour = charges.Div(productive)
	}
	variable := dec(in.ConsumablesPerHour).Add(dec(in.MaintenancePerHour))

	return model.HourlyCostResult{
		ProductiveHours: money(productive),
		FixedCosts:      money(fixed),
		GrossSalary:     money(gross),
		EmployerCost:    money(employer),
		TotalCharges:    money(charges),
		FixedPerHour:    money(fixedPerHour),
		VariablePerHour: money(variable),
		CostPerHour:     money(fixedPerHour.Add(variable)),
	}
}
