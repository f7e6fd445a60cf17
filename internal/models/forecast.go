package models

import "time"

// DayForecast rows are upserted keyed by (outlet, date) so re-running the
// forecaster overwrites stale predictions instead of duplicating them. The
// actuals and accuracy fields are filled later, once the day has closed.
type DayForecast struct {
	Date             time.Time `json:"date"`
	DayOfWeek        string    `json:"day_of_week"`
	PredictedOrders  int       `json:"predicted_orders"`
	PredictedRevenue int64     `json:"predicted_revenue"`
	Confidence       float64   `json:"confidence"` // [0, 0.95]
	Factors          []string  `json:"factors"`    // never empty
	IsWeekend        bool      `json:"is_weekend"`
	IsHoliday        bool      `json:"is_holiday"`
	HolidayName      string    `json:"holiday_name,omitempty"`

	ActualOrders  *int     `json:"actual_orders,omitempty"`
	ActualRevenue *int64   `json:"actual_revenue,omitempty"`
	AccuracyScore *float64 `json:"accuracy_score,omitempty"`
}

type StockRecommendation struct {
	ItemID              string `json:"item_id"`
	Name                string `json:"name"`
	RecommendedQuantity int    `json:"recommended_quantity"` // >= 1
	Reason              string `json:"reason"`
}

type ForecastResult struct {
	Forecasts            []DayForecast         `json:"forecasts"`
	StockRecommendations []StockRecommendation `json:"stock_recommendations"`
	ModelAccuracy        float64               `json:"model_accuracy"`
	GeneratedAt          time.Time             `json:"generated_at"`
}

// SalesPatterns is what the pattern extractor derives from a daily series.
type SalesPatterns struct {
	DayOfWeekOrders  [7]float64 `json:"day_of_week_orders"`  // Sunday..Saturday
	DayOfWeekRevenue [7]int64   `json:"day_of_week_revenue"` // Sunday..Saturday
	DayOfWeekSamples [7]int     `json:"day_of_week_samples"`
	PopularDays      []string   `json:"popular_days"`
	SlowDays         []string   `json:"slow_days"`
	WeeklyTrend      float64    `json:"weekly_trend"` // signed fraction, 0 under 14 days
	DataConsistency  float64    `json:"data_consistency"`
	OverallAvgOrders float64    `json:"overall_avg_orders"`
}
