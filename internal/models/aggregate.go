package models

import "time"

// DailyAggregate is recomputed per request from source orders; it is never
// persisted directly.
type DailyAggregate struct {
	Date          time.Time `json:"date"`
	OrderCount    int       `json:"order_count"`
	Revenue       int64     `json:"revenue"`
	AvgOrderValue int64     `json:"avg_order_value"`
	ItemsSold     int       `json:"items_sold"`
}

type MenuItemAggregate struct {
	ItemID       string  `json:"item_id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	UnitPrice    int64   `json:"unit_price"`
	QuantitySold int     `json:"quantity_sold"`
	Revenue      int64   `json:"revenue"`
	OrderCount   int     `json:"order_count"`
	AvgPerOrder  float64 `json:"avg_per_order"`
}

// HourlyAggregate buckets are always fully populated for all 24 hours, so
// downstream code never branches on missing hours.
type HourlyAggregate struct {
	Hour       int   `json:"hour"`
	OrderCount int   `json:"order_count"`
	Revenue    int64 `json:"revenue"`
}

type PeriodTotals struct {
	OrderCount    int   `json:"order_count"`
	Revenue       int64 `json:"revenue"`
	AvgOrderValue int64 `json:"avg_order_value"`
}

type PeriodChanges struct {
	OrderCountPct    float64 `json:"order_count_pct"`
	RevenuePct       float64 `json:"revenue_pct"`
	AvgOrderValuePct float64 `json:"avg_order_value_pct"`
}

type PeriodComparison struct {
	Current  PeriodTotals  `json:"current"`
	Previous PeriodTotals  `json:"previous"`
	Changes  PeriodChanges `json:"changes"`
}
