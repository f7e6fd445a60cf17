package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warungops/warungops/internal/models"
	"github.com/warungops/warungops/internal/repositories"
)

type PricingRepository struct {
	pool *pgxpool.Pool
}

func NewPricingRepository(pool *pgxpool.Pool) *PricingRepository {
	return &PricingRepository{pool: pool}
}

// Insert upserts each recommendation into its pending slot. When a pending
// row for the item already exists the row is refreshed in place and rec.ID is
// rewritten to the surviving row's id, so callers always hold an id that
// Resolve can find.
func (r *PricingRepository) Insert(ctx context.Context, recs []*models.PricingRecommendation) error {
	query := `
        INSERT INTO pricing_recommendations (
            id, store_id, outlet_id, item_id, name, category,
            current_price, recommended_price, change_pct, confidence,
            reasoning, impact, factors, status, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        ON CONFLICT (store_id, outlet_key, item_id) WHERE status = 'pending' DO UPDATE SET
            current_price = EXCLUDED.current_price,
            recommended_price = EXCLUDED.recommended_price,
            change_pct = EXCLUDED.change_pct,
            confidence = EXCLUDED.confidence,
            reasoning = EXCLUDED.reasoning,
            impact = EXCLUDED.impact,
            factors = EXCLUDED.factors,
            created_at = EXCLUDED.created_at
        RETURNING id
    `
	for _, rec := range recs {
		impact, err := json.Marshal(rec.Impact)
		if err != nil {
			return err
		}
		factors, err := json.Marshal(rec.Factors)
		if err != nil {
			return err
		}
		err = r.pool.QueryRow(ctx, query,
			rec.ID,
			rec.StoreID,
			rec.OutletID,
			rec.ItemID,
			rec.Name,
			rec.Category,
			rec.CurrentPrice,
			rec.RecommendedPrice,
			rec.ChangePct,
			rec.Confidence,
			rec.Reasoning,
			impact,
			factors,
			rec.Status,
			rec.CreatedAt,
		).Scan(&rec.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PricingRepository) GetByID(ctx context.Context, id string) (*models.PricingRecommendation, error) {
	query := `
        SELECT id, store_id, outlet_id, item_id, name, category,
               current_price, recommended_price, change_pct, confidence,
               reasoning, impact, factors, status, created_at, resolved_at
        FROM pricing_recommendations
        WHERE id = $1
    `
	rec := &models.PricingRecommendation{}
	var impact, factors []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.StoreID,
		&rec.OutletID,
		&rec.ItemID,
		&rec.Name,
		&rec.Category,
		&rec.CurrentPrice,
		&rec.RecommendedPrice,
		&rec.ChangePct,
		&rec.Confidence,
		&rec.Reasoning,
		&impact,
		&factors,
		&rec.Status,
		&rec.CreatedAt,
		&rec.ResolvedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(impact, &rec.Impact); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(factors, &rec.Factors); err != nil {
		return nil, err
	}
	return rec, nil
}

// Resolve flips a pending recommendation to applied or rejected. The status
// guard in the WHERE clause makes the transition once-only under concurrency.
func (r *PricingRepository) Resolve(ctx context.Context, id string, status string, finalPrice int64) (bool, error) {
	query := `
        UPDATE pricing_recommendations
        SET status = $2, recommended_price = $3, resolved_at = now()
        WHERE id = $1 AND status = 'pending'
    `
	tag, err := r.pool.Exec(ctx, query, id, status, finalPrice)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM pricing_recommendations WHERE id = $1)`, id).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, repositories.ErrNotFound
		}
		return false, nil
	}
	return true, nil
}
