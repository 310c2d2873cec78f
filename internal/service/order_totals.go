package service

import (
	"github.com/shopspring/decimal"

	"github.com/baryc/quote-service/internal/domain/model"
)

// OrderTotals sums the lines of an order and adds a single transport line
// priced for all pieces at once. Goods TVA is recomputed on the summed HT,
// which can differ by a cent from the sum of the line TVAs.
func OrderTotals(in model.OrderInput, snap *model.PricingSnapshot) model.OrderTotals {
	if snap == nil {
		snap = model.DefaultSnapshot()
	}
	vat := dec(snap.VATRate)

	goodsHT := decimal.Zero
	for _, line := range in.Lines {
		goodsHT = goodsHT.Add(dec(line.Goods.HT))
	}
	goodsHT = goodsHT.Round(2)
	goodsTVA := goodsHT.Mul(vat).Round(2)

	items := len(in.Lines)
	if items < 1 {
		items = 1
	}
	tq := TransportQuote(in.Transport, items, snap.Tariff)
	transport := splitTTC(decimal.NewFromFloat(tq.TTC), vat)

	totalHT := goodsHT.Add(decimal.NewFromFloat(transport.HT))
	totalTVA := goodsTVA.Add(decimal.NewFromFloat(transport.TVA))

	return model.OrderTotals{
		Goods: model.Amounts{
			HT:  toFloat(goodsHT),
			TVA: toFloat(goodsTVA),
			TTC: money(goodsHT.Add(goodsTVA)),
		},
		Transport:      transport,
		TransportQuote: tq,
		Total: model.Amounts{
			HT:  money(totalHT),
			TVA: money(totalTVA),
			TTC: money(totalHT.Add(totalTVA)),
		},
		ItemCount:       len(in.Lines),
		SnapshotVersion: snap.Version,
	}
}
