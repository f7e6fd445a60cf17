package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warungops/warungops/internal/models"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) GetByDateRange(ctx context.Context, storeID string, outletID *string, start, end time.Time) ([]*models.Order, error) {
	query := `
        SELECT id, store_id, outlet_id, customer_name, total, status, created_at
        FROM orders
        WHERE store_id = $1
          AND created_at >= $2 AND created_at < $3
          AND ($4::text IS NULL OR outlet_id = $4)
        ORDER BY created_at
    `
	rows, err := r.pool.Query(ctx, query, storeID, start, end, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	index := make(map[string]*models.Order)
	var ids []string
	for rows.Next() {
		order := &models.Order{}
		err := rows.Scan(
			&order.ID,
			&order.StoreID,
			&order.OutletID,
			&order.CustomerName,
			&order.Total,
			&order.Status,
			&order.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		index[order.ID] = order
		ids = append(ids, order.ID)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(ids) == 0 {
		return orders, nil
	}

	itemQuery := `
        SELECT order_id, menu_item_id, quantity, unit_price
        FROM order_items
        WHERE order_id = ANY($1)
    `
	itemRows, err := r.pool.Query(ctx, itemQuery, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		item := models.OrderItem{}
		if err := itemRows.Scan(&orderID, &item.MenuItemID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		if order, ok := index[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return orders, itemRows.Err()
}

func (r *OrderRepository) BulkCreate(ctx context.Context, orders []*models.Order) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"orders"},
		[]string{"id", "store_id", "outlet_id", "customer_name", "total", "status", "created_at"},
		pgx.CopyFromSlice(len(orders), func(i int) ([]interface{}, error) {
			return []interface{}{
				orders[i].ID,
				orders[i].StoreID,
				orders[i].OutletID,
				orders[i].CustomerName,
				orders[i].Total,
				orders[i].Status,
				orders[i].CreatedAt,
			}, nil
		}),
	)
	if err != nil {
		return err
	}

	var items [][]interface{}
	for _, order := range orders {
		for _, item := range order.Items {
			items = append(items, []interface{}{order.ID, item.MenuItemID, item.Quantity, item.UnitPrice})
		}
	}
	_, err = r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "menu_item_id", "quantity", "unit_price"},
		pgx.CopyFromRows(items),
	)
	return err
}
