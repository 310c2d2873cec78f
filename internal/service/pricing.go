package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/baryc/quote-service/internal/domain/model"
)

// SurfaceStepM2 is the granularity treated surfaces are rounded up to.
const SurfaceStepM2 = 0.05

var (
	one      = decimal.NewFromInt(1)
	two      = decimal.NewFromInt(2)
	hundred  = decimal.NewFromInt(100)
	areaStep = decimal.NewFromFloat(SurfaceStepM2)
)

// Sanitize maps NaN, infinities and negative values to 0. Every numeric
// input of the pricing engine goes through it, so a half-typed value never
// stops a quote from being computed.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// dec converts a sanitized input to a decimal.
func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(Sanitize(v))
}

// toFloat converts d back to float64. A value beyond the float64 range
// counts as 0, like a non-finite input.
func toFloat(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// money rounds to cents and converts back to float64.
func money(d decimal.Decimal) float64 {
	return toFloat(d.Round(2))
}

// RawSurface returns the surface of an open box with no bottom:
// two side faces, the top and the front and back.
func RawSurface(d model.Dimensions) float64 {
	return toFloat(rawSurface(d))
}

func rawSurface(d model.Dimensions) decimal.Decimal {
	l, w, h := dec(d.Length), dec(d.Width), dec(d.Height)
	return two.Mul(l).Mul(h).Add(l.Mul(w)).Add(two.Mul(w).Mul(h))
}

// RoundUpToStep rounds v up to the next multiple of step. Non-positive
// values give 0; a non-positive step returns v unchanged.
func RoundUpToStep(v, step float64) float64 {
	if Sanitize(step) == 0 {
		return Sanitize(v)
	}
	return toFloat(roundUpToStep(dec(v), decimal.NewFromFloat(step)))
}

func roundUpToStep(v, step decimal.Decimal) decimal.Decimal {
	if !v.IsPositive() {
		return decimal.Zero
	}
	return v.Div(step).Ceil().Mul(step)
}

// TreatedSurface is the billed surface: RawSurface rounded up to 0.05 m².
func TreatedSurface(d model.Dimensions) float64 {
	return toFloat(treatedSurface(d))
}

func treatedSurface(d model.Dimensions) decimal.Decimal {
	return roundUpToStep(rawSurface(d), areaStep)
}

// SplitTTC derives HT and TVA from a tax-included amount. TTC is rounded,
// HT is computed from the unrounded TTC and rounded, and TVA is the
// difference of the two rounded values, so HT + TVA always equals TTC.
func SplitTTC(ttc, vatRate float64) model.Amounts {
	return splitTTC(dec(ttc), dec(vatRate))
}

func splitTTC(ttc, vat decimal.Decimal) model.Amounts {
	ttcR := ttc.Round(2)
	ht := ttc.Div(one.Add(vat)).Round(2)
	return model.Amounts{
		HT:  toFloat(ht),
		TVA: toFloat(ttcR.Sub(ht)),
		TTC: toFloat(ttcR),
	}
}

// GoodsTotal prices the selected services over the surface plus the
// hardware units. Keys missing from the catalog are ignored.
func GoodsTotal(surfaceM2 float64, services map[string]bool, hardware map[string]int, catalog model.Catalog, vatRate float64) model.Amounts {
	return splitTTC(goodsTTC(dec(surfaceM2), services, hardware, catalog), dec(vatRate))
}

func goodsTTC(surface decimal.Decimal, services map[string]bool, hardware map[string]int, catalog model.Catalog) decimal.Decimal {
	total := decimal.Zero
	for _, svc := range catalog.Services {
		if services[svc.Key] {
			total = total.Add(dec(svc.PriceTTCPerArea).Mul(surface))
		}
	}
	for _, hw := range catalog.Hardware {
		if count := hardware[hw.Key]; count > 0 {
			total = total.Add(dec(hw.UnitPriceTTC).Mul(decimal.NewFromInt(int64(count))))
		}
	}
	return total
}

// BracketBase returns the transport base price for a distance and the label
// of the bracket used. Bracket upper bounds are inclusive. Past the last
// bracket the open-ended tier adds PerKmTTC for every km beyond FromKm.
func BracketBase(km float64, tariff model.TransportTariff) (float64, string) {
	base, label := bracketBase(dec(km), tariff)
	return toFloat(base), label
}

func bracketBase(km decimal.Decimal, tariff model.TransportTariff) (decimal.Decimal, string) {
	for _, b := range tariff.Brackets {
		if km.LessThanOrEqual(dec(b.MaxKm)) {
			return dec(b.PriceTTC), b.Label
		}
	}
	oe := tariff.OpenEnded
	extra := decimal.Max(decimal.Zero, km.Sub(dec(oe.FromKm)))
	return dec(oe.BaseTTC).Add(dec(oe.PerKmTTC).Mul(extra)).Round(2), oe.Label
}

// SurchargeRate is the multi-item surcharge: perItem for every item beyond
// the first.
func SurchargeRate(itemCount int, perItem float64) float64 {
	return toFloat(surchargeRate(itemCount, dec(perItem)))
}

func surchargeRate(itemCount int, perItem decimal.Decimal) decimal.Decimal {
	if itemCount <= 1 {
		return decimal.Zero
	}
	return perItem.Mul(decimal.NewFromInt(int64(itemCount - 1)))
}

// TransportQuote prices transport. Self-service and an operator trip with
// no known distance both cost 0 and are told apart by their label.
func TransportQuote(cfg model.TransportConfig, itemCount int, tariff model.TransportTariff) model.TransportQuote {
	if cfg.Mode != model.TransportOperator {
		return model.TransportQuote{Label: model.TransportLabelSelfService}
	}

	km := dec(BilledDistanceKm(cfg))
	if km.IsZero() {
		return model.TransportQuote{Label: model.TransportLabelNotComputed}
	}

	raw, label := bracketBase(km, tariff)
	rate := surchargeRate(itemCount, dec(tariff.SurchargePerExtraItem))
	surcharge := raw.Mul(rate).Round(2)

	return model.TransportQuote{
		Raw:       toFloat(raw),
		Rate:      toFloat(rate),
		Surcharge: toFloat(surcharge),
		TTC:       money(raw.Add(surcharge)),
		Label:     label,
	}
}

// ComputeQuote prices one piece against a pricing snapshot. It never fails:
// invalid numbers count as 0 and a nil snapshot falls back to the defaults.
func ComputeQuote(in model.QuoteInput, snap *model.PricingSnapshot) model.PricingResult {
	if snap == nil {
		snap = model.DefaultSnapshot()
	}

	surface := treatedSurface(in.Dimensions)
	items := in.ItemCount
	if items < 1 {
		items = 1
	}

	return model.PricingResult{
		TotalSurfaceM2:  toFloat(surface),
		Goods:           splitTTC(goodsTTC(surface, in.Services, in.Hardware, snap.Catalog), dec(snap.VATRate)),
		Transport:       TransportQuote(in.Transport, items, snap.Tariff),
		SnapshotVersion: snap.Version,
	}
}
