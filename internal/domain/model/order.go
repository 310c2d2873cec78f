package model

// OrderLine is one priced piece in an order.
//
// @Description One piece of an order
type OrderLine struct {
	Label string  `json:"label,omitempty" example:"Buffet"`
	Goods Amounts `json:"goods"`
}

// OrderInput groups several quoted pieces sharing one transport.
//
// @Description Order to total
type OrderInput struct {
	Lines     []OrderLine     `json:"lines"`
	Transport TransportConfig `json:"transport"`
}

// OrderTotals is the order-level breakdown. Transport is priced once with
// the number of lines as item count.
//
// @Description Order totals with a single transport line
type OrderTotals struct {
	Goods          Amounts        `json:"goods"`
	Transport      Amounts        `json:"transport"`
	TransportQuote TransportQuote `json:"transport_quote"`
	Total          Amounts        `json:"total"`
	ItemCount      int            `json:"item_count" example:"2"`
	// SnapshotVersion is the pricing version the transport was priced with
	SnapshotVersion int `json:"snapshot_version" example:"3"`
}
