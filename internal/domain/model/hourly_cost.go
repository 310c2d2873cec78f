package model

// HourlyCostInput is the monthly cost sheet of the workshop.
//
// @Description Monthly workshop cost sheet
type HourlyCostInput struct {
	// BillableHours is the number of hours worked per month
	BillableHours float64 `json:"billable_hours" example:"151.67"`
	// NonProductivePct is the share of hours not billable to a job, in percent
	NonProductivePct float64 `json:"non_productive_pct" example:"20"`
	// FixedCosts are monthly charges (rent, insurance, loan, ...) keyed by name
	FixedCosts map[string]float64 `json:"fixed_costs,omitempty"`
	// NetSalary is the monthly net salary
	NetSalary float64 `json:"net_salary" example:"1800"`
	// NetToGross converts net to gross salary; 0 means 1
	NetToGross float64 `json:"net_to_gross" example:"1.3"`
	// SocialChargesPct is the employer contribution rate, in percent
	SocialChargesPct float64 `json:"social_charges_pct" example:"45"`
	// ConsumablesPerHour and MaintenancePerHour are variable costs per productive hour
	ConsumablesPerHour float64 `json:"consumables_per_hour" example:"3"`
	MaintenancePerHour float64 `json:"maintenance_per_hour" example:"1.5"`
}

// HourlyCostResult is the breakdown of the workshop hourly cost.
//
// @Description Hourly cost breakdown
type HourlyCostResult struct {
	ProductiveHours float64 `json:"productive_hours" example:"121.34"`
	FixedCosts      float64 `json:"fixed_costs" example:"1450.00"`
	GrossSalary     float64 `json:"gross_salary" example:"2340.00"`
	EmployerCost    float64 `json:"employer_cost" example:"3393.00"`
	TotalCharges    float64 `json:"total_charges" example:"4843.00"`
	FixedPerHour    float64 `json:"fixed_per_hour" example:"39.91"`
	VariablePerHour float64 `json:"variable_per_hour" example:"4.50"`
	CostPerHour     float64 `json:"cost_per_hour" example:"44.41"`
}
