package models

type MenuItem struct {
	ID        string   `json:"id"`
	StoreID   string   `json:"store_id"`
	OutletID  *string  `json:"outlet_id,omitempty"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Price     int64    `json:"price"`                // smallest currency unit
	CostPrice *int64   `json:"cost_price,omitempty"` // nil when the owner never entered one
	Variants  []string `json:"variants,omitempty"`
}

// MarginPct returns the gross margin percentage, and false when no cost
// price is known or the price is zero.
func (m *MenuItem) MarginPct() (float64, bool) {
	if m.CostPrice == nil || m.Price == 0 {
		return 0, false
	}
	return float64(m.Price-*m.CostPrice) / float64(m.Price) * 100, true
}
