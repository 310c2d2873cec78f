package model

// CostSource tells which rule produced a resolved cost.
type CostSource string

const (
	CostSourceOverride   CostSource = "override"
	CostSourceConfigured CostSource = "configured"
	CostSourceMargin     CostSource = "margin"
	CostSourceUnknown    CostSource = "unknown"
)

// CostResolution is the internal cost of one service or hardware unit.
// An unknown cost has Known false and a nil Value; it is never reported as 0.
//
// @Description Resolved internal cost for one key
type CostResolution struct {
	Key    string     `json:"key" example:"sanding"`
	Known  bool       `json:"known" example:"true"`
	Value  *float64   `json:"value" example:"7.20"`
	Source CostSource `json:"source" example:"margin" enums:"override,configured,margin,unknown"`
}

// CostBasisInput is what the estimator needs besides the snapshot.
//
// @Description Quote plus cost-side inputs for the cost-basis analysis
type CostBasisInput struct {
	Quote QuoteInput `json:"quote"`
	// CostOverrides are user-entered costs per m² (services) or per unit
	// (hardware), keyed by catalog key; they win over everything else
	CostOverrides map[string]float64 `json:"cost_overrides,omitempty"`
	// ExtraHourlyCost is added to the target hourly rate for the breakeven bound
	ExtraHourlyCost float64 `json:"extra_hourly_cost,omitempty" example:"0"`
}

// CostLine is the contribution of one selected service or hardware key.
//
// @Description Cost contribution of one selected key
type CostLine struct {
	CostResolution
	// Quantity is the surface (m²) for services or the unit count for hardware
	Quantity float64 `json:"quantity" example:"2.90"`
	// Contribution is Value * Quantity; 0 when the cost is unknown
	Contribution float64 `json:"contribution" example:"20.88"`
}

// CostBasisResult is the cost-of-ownership view of one quote.
// Profitability and the per-m² sale prices are nil when undefined.
//
// @Description Cost basis, profitability and breakeven labor bound
type CostBasisResult struct {
	Pricing        PricingResult `json:"pricing"`
	Services       []CostLine    `json:"services"`
	Hardware       []CostLine    `json:"hardware"`
	TotalCostBasis float64       `json:"total_cost_basis" example:"20.88"`
	// Incomplete is true when at least one selected key has an unknown cost
	Incomplete bool `json:"incomplete" example:"false"`
	// ProfitabilityPct is (HT - cost) / HT * 100, nil when HT <= 0
	ProfitabilityPct *float64 `json:"profitability_pct" example:"28.00"`
	// MaxLaborHours is (HT - cost) / (target + extra hourly cost), 0 when that rate is <= 0
	MaxLaborHours       float64  `json:"max_labor_hours" example:"0.16"`
	SalePricePerAreaHT  *float64 `json:"sale_price_per_m2_ht" example:"10.00"`
	SalePricePerAreaTTC *float64 `json:"sale_price_per_m2_ttc" example:"12.00"`
}
