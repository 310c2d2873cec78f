// Package model defines the core domain entities for the quote service.
package model

// Dimensions is the outer size of a piece of furniture, in meters.
//
// @Description Piece dimensions in meters
// @Example {"length": 1.0, "width": 0.5, "height": 0.8}
type Dimensions struct {
	// Length in meters
	Length float64 `json:"length" example:"1.0"`
	// Width in meters
	Width float64 `json:"width" example:"0.5"`
	// Height in meters
	Height float64 `json:"height" example:"0.8"`
}

// TransportMode says who handles logistics for a quote.
type TransportMode string

const (
	// TransportSelf means the customer brings and collects the piece.
	TransportSelf TransportMode = "self"
	// TransportOperator means the workshop picks up and delivers.
	TransportOperator TransportMode = "operator"
)

// Transport labels returned alongside zero-cost transport results.
const (
	TransportLabelSelfService = "self-service"
	TransportLabelNotComputed = "distance-not-computed"
)

// TransportLegs describes the one-way distances driven for a job.
// When delivery goes back to the pickup address the trip is done twice
// (pickup run and delivery run), each being a round trip.
//
// @Description One-way leg distances used to derive the billed distance
type TransportLegs struct {
	// PickupKm is the one-way distance from the workshop to the pickup address
	PickupKm float64 `json:"pickup_km" example:"12.4"`
	// DropKm is the one-way distance from the workshop to the delivery address
	DropKm float64 `json:"drop_km,omitempty" example:"0"`
	// DeliveryDifferent is true when the piece is delivered to another address
	DeliveryDifferent bool `json:"delivery_different,omitempty"`
}

// TransportConfig carries the transport choice for a quote.
//
// @Description Transport mode and billed distance
type TransportConfig struct {
	// Mode is "self" or "operator"
	Mode TransportMode `json:"mode" example:"operator" enums:"self,operator"`
	// DistanceKm is the billed distance; ignored when Legs is set
	DistanceKm float64 `json:"distance_km" example:"5"`
	// Legs, when present, replaces DistanceKm
	Legs *TransportLegs `json:"legs,omitempty"`
}

// QuoteInput is the request-scoped state needed to price one piece.
//
// @Description Everything needed to price a single piece
type QuoteInput struct {
	Dimensions Dimensions `json:"dimensions"`
	// Services maps a service key to whether it applies; absent keys are false
	Services map[string]bool `json:"services,omitempty"`
	// Hardware maps a hardware service key to a unit count
	Hardware  map[string]int  `json:"hardware,omitempty"`
	Transport TransportConfig `json:"transport"`
	// ItemCount is the number of pieces transported together; values below 1 count as 1
	ItemCount int `json:"item_count,omitempty" example:"1"`
}

// Amounts is a price split into HT, TVA and TTC.
//
// @Description Price excluding tax, tax amount and price including tax
type Amounts struct {
	HT  float64 `json:"ht" example:"29.00"`
	TVA float64 `json:"tva" example:"5.80"`
	TTC float64 `json:"ttc" example:"34.80"`
}

// TransportQuote is the transport part of a quote. All amounts are TTC.
//
// @Description Transport tariff breakdown
type TransportQuote struct {
	// Raw is the bracket base price
	Raw float64 `json:"raw" example:"164.90"`
	// Rate is the multi-item surcharge rate applied to Raw
	Rate float64 `json:"rate" example:"0.30"`
	// Surcharge is Raw * Rate, rounded
	Surcharge float64 `json:"surcharge" example:"49.47"`
	// TTC is Raw + Surcharge, rounded
	TTC float64 `json:"ttc" example:"214.37"`
	// Label is a short machine-readable tag for the tariff applied
	Label string `json:"label" example:"40km+"`
}

// PricingResult is the output of a quote computation. It is built fresh on
// every call and never modified afterwards.
//
// @Description Priced quote for a single piece
type PricingResult struct {
	// TotalSurfaceM2 is the treated surface, rounded up to 0.05 m²
	TotalSurfaceM2 float64        `json:"total_surface_m2" example:"2.90"`
	Goods          Amounts        `json:"goods"`
	Transport      TransportQuote `json:"transport"`
	// SnapshotVersion is the pricing configuration version used
	SnapshotVersion int `json:"snapshot_version" example:"1"`
}
