package models

import "time"

// Order statuses. Only RevenueStatuses count toward aggregates; pending and
// cancelled orders are excluded everywhere by business rule.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

var RevenueStatuses = map[string]bool{
	OrderStatusConfirmed: true,
	OrderStatusPreparing: true,
	OrderStatusReady:     true,
	OrderStatusCompleted: true,
}

type Order struct {
	ID           string      `json:"id"`
	StoreID      string      `json:"store_id"`
	OutletID     *string     `json:"outlet_id,omitempty"`
	CustomerName *string     `json:"customer_name,omitempty"`
	Total        int64       `json:"total"` // smallest currency unit
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	Items        []OrderItem `json:"items"`
}

type OrderItem struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}
