package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warungops/warungops/internal/models"
	"github.com/warungops/warungops/internal/repositories"
)

type MenuItemRepository struct {
	pool *pgxpool.Pool
}

func NewMenuItemRepository(pool *pgxpool.Pool) *MenuItemRepository {
	return &MenuItemRepository{pool: pool}
}

func (r *MenuItemRepository) GetByStore(ctx context.Context, storeID string, outletID *string) ([]*models.MenuItem, error) {
	query := `
        SELECT id, store_id, outlet_id, name, category, price, cost_price, variants
        FROM menu_items
        WHERE store_id = $1
          AND ($2::text IS NULL OR outlet_id = $2 OR outlet_id IS NULL)
        ORDER BY name
    `
	rows, err := r.pool.Query(ctx, query, storeID, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.MenuItem
	for rows.Next() {
		item := &models.MenuItem{}
		err := rows.Scan(
			&item.ID,
			&item.StoreID,
			&item.OutletID,
			&item.Name,
			&item.Category,
			&item.Price,
			&item.CostPrice,
			&item.Variants,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *MenuItemRepository) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	query := `
        SELECT id, store_id, outlet_id, name, category, price, cost_price, variants
        FROM menu_items
        WHERE id = $1
    `
	item := &models.MenuItem{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.StoreID,
		&item.OutletID,
		&item.Name,
		&item.Category,
		&item.Price,
		&item.CostPrice,
		&item.Variants,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *MenuItemRepository) UpdatePrice(ctx context.Context, id string, price int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE menu_items SET price = $2, updated_at = now() WHERE id = $1`, id, price)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *MenuItemRepository) BulkCreate(ctx context.Context, items []*models.MenuItem) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"menu_items"},
		[]string{"id", "store_id", "outlet_id", "name", "category", "price", "cost_price", "variants"},
		pgx.CopyFromSlice(len(items), func(i int) ([]interface{}, error) {
			return []interface{}{
				items[i].ID,
				items[i].StoreID,
				items[i].OutletID,
				items[i].Name,
				items[i].Category,
				items[i].Price,
				items[i].CostPrice,
				items[i].Variants,
			}, nil
		}),
	)
	return err
}
