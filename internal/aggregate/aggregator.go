package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/warungops/warungops/internal/models"
	"github.com/warungops/warungops/internal/repositories"
)

// Aggregator reduces raw transaction records into the shapes the decision
// modules consume. Every method is a pure read: no caching, no side effects,
// each call re-reads and re-aggregates. A store failure is returned as an
// error so callers can tell "no data" from "store unavailable".
type Aggregator struct {
	orders repositories.OrderRepository
	menu   repositories.MenuItemRepository
}

func New(orders repositories.OrderRepository, menu repositories.MenuItemRepository) *Aggregator {
	return &Aggregator{orders: orders, menu: menu}
}

// Daily returns one aggregate per calendar day with at least one counted
// order, sorted by date. Only revenue statuses count.
func (a *Aggregator) Daily(ctx context.Context, storeID string, outletID *string, start, end time.Time) ([]models.DailyAggregate, error) {
	orders, err := a.countedOrders(ctx, storeID, outletID, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*models.DailyAggregate)
	for _, order := range orders {
		day := dayStart(order.CreatedAt)
		key := day.Format("2006-01-02")
		agg, ok := byDay[key]
		if !ok {
			agg = &models.DailyAggregate{Date: day}
			byDay[key] = agg
		}
		agg.OrderCount++
		agg.Revenue += order.Total
		for _, item := range order.Items {
			agg.ItemsSold += item.Quantity
		}
	}

	result := make([]models.DailyAggregate, 0, len(byDay))
	for _, agg := range byDay {
		if agg.OrderCount > 0 {
			agg.AvgOrderValue = agg.Revenue / int64(agg.OrderCount)
		}
		result = append(result, *agg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// ByMenuItem returns per-item sales aggregates sorted by quantity sold,
// descending. Names, categories and unit prices come from the authoritative
// menu record; order lines only contribute quantities and order membership.
func (a *Aggregator) ByMenuItem(ctx context.Context, storeID string, outletID *string, start, end time.Time) ([]models.MenuItemAggregate, error) {
	orders, err := a.countedOrders(ctx, storeID, outletID, start, end)
	if err != nil {
		return nil, err
	}
	menu, err := a.menu.GetByStore(ctx, storeID, outletID)
	if err != nil {
		return nil, err
	}
	menuByID := make(map[string]*models.MenuItem, len(menu))
	for _, item := range menu {
		menuByID[item.ID] = item
	}

	byItem := make(map[string]*models.MenuItemAggregate)
	for _, order := range orders {
		seen := make(map[string]bool)
		for _, line := range order.Items {
			agg, ok := byItem[line.MenuItemID]
			if !ok {
				agg = &models.MenuItemAggregate{ItemID: line.MenuItemID, UnitPrice: line.UnitPrice}
				if menuItem, known := menuByID[line.MenuItemID]; known {
					agg.Name = menuItem.Name
					agg.Category = menuItem.Category
					agg.UnitPrice = menuItem.Price
				}
				byItem[line.MenuItemID] = agg
			}
			agg.QuantitySold += line.Quantity
			agg.Revenue += int64(line.Quantity) * line.UnitPrice
			if !seen[line.MenuItemID] {
				agg.OrderCount++
				seen[line.MenuItemID] = true
			}
		}
	}

	result := make([]models.MenuItemAggregate, 0, len(byItem))
	for _, agg := range byItem {
		if agg.OrderCount > 0 {
			agg.AvgPerOrder = float64(agg.QuantitySold) / float64(agg.OrderCount)
		}
		result = append(result, *agg)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].QuantitySold != result[j].QuantitySold {
			return result[i].QuantitySold > result[j].QuantitySold
		}
		return result[i].ItemID < result[j].ItemID
	})
	return result, nil
}

// Hourly returns all 24 hour buckets, zero-filled, so downstream code never
// branches on missing hours.
func (a *Aggregator) Hourly(ctx context.Context, storeID string, outletID *string, start, end time.Time) ([24]models.HourlyAggregate, error) {
	var buckets [24]models.HourlyAggregate
	for hour := range buckets {
		buckets[hour].Hour = hour
	}

	orders, err := a.countedOrders(ctx, storeID, outletID, start, end)
	if err != nil {
		return buckets, err
	}
	for _, order := range orders {
		hour := order.CreatedAt.Hour()
		buckets[hour].OrderCount++
		buckets[hour].Revenue += order.Total
	}
	return buckets, nil
}

// Compare reports the current window against the identically sized window
// immediately preceding it. A zero previous value with a non-zero current
// one reads as +100%, and two zeroes as 0%, so a fresh store never divides
// by zero or silently reports "no change".
func (a *Aggregator) Compare(ctx context.Context, storeID string, outletID *string, start, end time.Time) (models.PeriodComparison, error) {
	length := end.Sub(start)
	prevStart := start.Add(-length)

	current, err := a.totals(ctx, storeID, outletID, start, end)
	if err != nil {
		return models.PeriodComparison{}, fmt.Errorf("aggregate current window: %w", err)
	}
	previous, err := a.totals(ctx, storeID, outletID, prevStart, start)
	if err != nil {
		return models.PeriodComparison{}, fmt.Errorf("aggregate previous window: %w", err)
	}

	return models.PeriodComparison{
		Current:  current,
		Previous: previous,
		Changes: models.PeriodChanges{
			OrderCountPct:    pctChange(float64(previous.OrderCount), float64(current.OrderCount)),
			RevenuePct:       pctChange(float64(previous.Revenue), float64(current.Revenue)),
			AvgOrderValuePct: pctChange(float64(previous.AvgOrderValue), float64(current.AvgOrderValue)),
		},
	}, nil
}

func (a *Aggregator) totals(ctx context.Context, storeID string, outletID *string, start, end time.Time) (models.PeriodTotals, error) {
	orders, err := a.countedOrders(ctx, storeID, outletID, start, end)
	if err != nil {
		return models.PeriodTotals{}, err
	}
	totals := models.PeriodTotals{}
	for _, order := range orders {
		totals.OrderCount++
		totals.Revenue += order.Total
	}
	if totals.OrderCount > 0 {
		totals.AvgOrderValue = totals.Revenue / int64(totals.OrderCount)
	}
	return totals, nil
}

func (a *Aggregator) countedOrders(ctx context.Context, storeID string, outletID *string, start, end time.Time) ([]*models.Order, error) {
	orders, err := a.orders.GetByDateRange(ctx, storeID, outletID, start, end)
	if err != nil {
		return nil, err
	}
	counted := orders[:0:0]
	for _, order := range orders {
		if models.RevenueStatuses[order.Status] {
			counted = append(counted, order)
		}
	}
	return counted, nil
}

func pctChange(previous, current float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
