package models

import "time"

const (
	RecommendationPending  = "pending"
	RecommendationApplied  = "applied"
	RecommendationRejected = "rejected"
)

const (
	FactorDirectionUp      = "up"
	FactorDirectionDown    = "down"
	FactorDirectionNeutral = "neutral"
)

type PricingFactor struct {
	Factor      string  `json:"factor"`
	Weight      float64 `json:"weight"` // (0, 1]
	Direction   string  `json:"direction"`
	Description string  `json:"description"`
}

// ImpactEstimate comes from a single fixed elasticity assumption; it is a
// heuristic, not a fitted or causal model.
type ImpactEstimate struct {
	RevenueChangePct     float64 `json:"revenue_change_pct"`
	VolumeChangePct      float64 `json:"volume_change_pct"`
	ProfitChangePct      float64 `json:"profit_change_pct"`
	MonthlyRevenueImpact int64   `json:"monthly_revenue_impact"`
}

type PricingRecommendation struct {
	ID               string          `json:"id"`
	StoreID          string          `json:"store_id"`
	OutletID         *string         `json:"outlet_id,omitempty"`
	ItemID           string          `json:"item_id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	CurrentPrice     int64           `json:"current_price"`
	RecommendedPrice int64           `json:"recommended_price"`
	ChangePct        float64         `json:"change_pct"`
	Confidence       float64         `json:"confidence"` // [0, 0.9]
	Reasoning        string          `json:"reasoning"`
	Impact           ImpactEstimate  `json:"impact"`
	Factors          []PricingFactor `json:"factors"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	ResolvedAt       *time.Time      `json:"resolved_at,omitempty"`
}
