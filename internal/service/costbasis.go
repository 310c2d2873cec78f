package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/baryc/quote-service/internal/domain/model"
)

// ResolveServiceCost returns the internal cost per m² of a service. The
// first rule that yields a finite, non-negative number wins:
//
//  1. a user override for the key
//  2. the configured cost table
//  3. the sale price reduced by the margin rate (HT rate preferred over TTC
//     rate, clamped to [0,1])
//
// When none applies the cost is unknown, which is distinct from 0.
func ResolveServiceCost(key string, overrides map[string]float64, snap *model.PricingSnapshot) model.CostResolution {
	if snap == nil {
		snap = model.DefaultSnapshot()
	}
	price, ok := snap.Catalog.ServicePrice(key)
	return resolveCost(key, overrides, snap.Costs.CostsPerArea, price, ok, snap.Costs)
}

// ResolveHardwareCost is ResolveServiceCost for per-unit hardware services.
func ResolveHardwareCost(key string, overrides map[string]float64, snap *model.PricingSnapshot) model.CostResolution {
	if snap == nil {
		snap = model.DefaultSnapshot()
	}
	price, ok := snap.Catalog.HardwarePrice(key)
	return resolveCost(key, overrides, snap.Costs.HardwareUnitCosts, price, ok, snap.Costs)
}

func resolveCost(key string, overrides, table map[string]float64, price float64, hasPrice bool, costs model.CostBasisConfig) model.CostResolution {
	if v, ok := overrides[key]; ok && validCost(v) {
		return known(key, v, model.CostSourceOverride)
	}
	if v, ok := table[key]; ok && validCost(v) {
		return known(key, v, model.CostSourceConfigured)
	}
	if rate, ok := marginRate(costs); ok && hasPrice && validCost(price) {
		cost := decimal.NewFromFloat(price).Mul(one.Sub(rate))
		return known(key, toFloat(cost), model.CostSourceMargin)
	}
	return model.CostResolution{Key: key, Source: model.CostSourceUnknown}
}

// marginRate picks the HT margin over the TTC one and clamps it to [0,1].
func marginRate(costs model.CostBasisConfig) (decimal.Decimal, bool) {
	for _, r := range []*float64{costs.MarginRateHT, costs.MarginRateTTC} {
		if r == nil || !finiteFloat(*r) {
			continue
		}
		v := *r
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return decimal.NewFromFloat(v), true
	}
	return decimal.Zero, false
}

// EstimateCostBasis prices the quote and sets the internal cost of every
// selected service and hardware unit against it. Unknown costs add nothing
// to the total and mark the result incomplete.
func EstimateCostBasis(in model.CostBasisInput, snap *model.PricingSnapshot) model.CostBasisResult {
	if snap == nil {
		snap = model.DefaultSnapshot()
	}

	pricing := ComputeQuote(in.Quote, snap)
	surface := decimal.NewFromFloat(pricing.TotalSurfaceM2)

	result := model.CostBasisResult{
		Pricing:  pricing,
		Services: []model.CostLine{},
		Hardware: []model.CostLine{},
	}
	total := decimal.Zero

	for _, svc := range snap.Catalog.Services {
		if !in.Quote.Services[svc.Key] {
			continue
		}
		line := costLine(ResolveServiceCost(svc.Key, in.CostOverrides, snap), surface)
		if !line.Known {
			result.Incomplete = true
		}
		total = total.Add(decimal.NewFromFloat(line.Contribution))
		result.Services = append(result.Services, line)
	}

	for _, hw := range snap.Catalog.Hardware {
		count := in.Quote.Hardware[hw.Key]
		if count <= 0 {
			continue
		}
		line := costLine(ResolveHardwareCost(hw.Key, in.CostOverrides, snap), decimal.NewFromInt(int64(count)))
		if !line.Known {
			result.Incomplete = true
		}
		total = total.Add(decimal.NewFromFloat(line.Contribution))
		result.Hardware = append(result.Hardware, line)
	}

	result.TotalCostBasis = money(total)

	ht := decimal.NewFromFloat(pricing.Goods.HT)
	margin := ht.Sub(total)
	if ht.IsPositive() {
		pct := money(margin.Div(ht).Mul(hundred))
		result.ProfitabilityPct = &pct
	}

	rate := dec(snap.TargetHourlyRate).Add(dec(in.ExtraHourlyCost))
	if rate.IsPositive() {
		result.MaxLaborHours = money(margin.Div(rate))
	}

	if surface.IsPositive() {
		perHT := money(ht.Div(surface))
		perTTC := money(decimal.NewFromFloat(pricing.Goods.TTC).Div(surface))
		result.SalePricePerAreaHT = &perHT
		result.SalePricePerAreaTTC = &perTTC
	}

	return result
}

func costLine(res model.CostResolution, quantity decimal.Decimal) model.CostLine {
	line := model.CostLine{CostResolution: res, Quantity: toFloat(quantity)}
	if res.Known {
		line.Contribution = money(decimal.NewFromFloat(*res.Value).Mul(quantity))
	}
	return line
}

func known(key string, v float64, source model.CostSource) model.CostResolution {
	return model.CostResolution{Key: key, Known: true, Value: &v, Source: source}
}

func validCost(v float64) bool {
	return finiteFloat(v) && v >= 0
}

func finiteFloat(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
