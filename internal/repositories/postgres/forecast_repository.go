package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warungops/warungops/internal/models"
	"github.com/warungops/warungops/internal/repositories"
)

type ForecastRepository struct {
	pool *pgxpool.Pool
}

func NewForecastRepository(pool *pgxpool.Pool) *ForecastRepository {
	return &ForecastRepository{pool: pool}
}

func (r *ForecastRepository) Upsert(ctx context.Context, storeID string, outletID *string, forecasts []models.DayForecast) error {
	query := `
        INSERT INTO day_forecasts (
            store_id, outlet_id, forecast_date, day_of_week,
            predicted_orders, predicted_revenue, confidence, factors,
            is_weekend, is_holiday, holiday_name, generated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
        ON CONFLICT (store_id, outlet_key, forecast_date) DO UPDATE SET
            day_of_week = EXCLUDED.day_of_week,
            predicted_orders = EXCLUDED.predicted_orders,
            predicted_revenue = EXCLUDED.predicted_revenue,
            confidence = EXCLUDED.confidence,
            factors = EXCLUDED.factors,
            is_weekend = EXCLUDED.is_weekend,
            is_holiday = EXCLUDED.is_holiday,
            holiday_name = EXCLUDED.holiday_name,
            generated_at = now()
    `
	for _, f := range forecasts {
		var holidayName *string
		if f.HolidayName != "" {
			holidayName = &f.HolidayName
		}
		_, err := r.pool.Exec(ctx, query,
			storeID,
			outletID,
			f.Date,
			f.DayOfWeek,
			f.PredictedOrders,
			f.PredictedRevenue,
			f.Confidence,
			f.Factors,
			f.IsWeekend,
			f.IsHoliday,
			holidayName,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ForecastRepository) GetByDate(ctx context.Context, storeID string, outletID *string, date time.Time) (*models.DayForecast, error) {
	query := `
        SELECT forecast_date, day_of_week, predicted_orders, predicted_revenue,
               confidence, factors, is_weekend, is_holiday,
               COALESCE(holiday_name, ''), actual_orders, actual_revenue, accuracy_score
        FROM day_forecasts
        WHERE store_id = $1
          AND ($2::text IS NULL OR outlet_id = $2)
          AND forecast_date = $3
    `
	f := &models.DayForecast{}
	err := r.pool.QueryRow(ctx, query, storeID, outletID, date).Scan(
		&f.Date,
		&f.DayOfWeek,
		&f.PredictedOrders,
		&f.PredictedRevenue,
		&f.Confidence,
		&f.Factors,
		&f.IsWeekend,
		&f.IsHoliday,
		&f.HolidayName,
		&f.ActualOrders,
		&f.ActualRevenue,
		&f.AccuracyScore,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *ForecastRepository) RecentAccuracy(ctx context.Context, storeID string, outletID *string, limit int) ([]float64, error) {
	query := `
        SELECT accuracy_score
        FROM day_forecasts
        WHERE store_id = $1
          AND ($2::text IS NULL OR outlet_id = $2)
          AND accuracy_score IS NOT NULL
        ORDER BY forecast_date DESC
        LIMIT $3
    `
	rows, err := r.pool.Query(ctx, query, storeID, outletID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var score float64
		if err := rows.Scan(&score); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

func (r *ForecastRepository) RecordActuals(ctx context.Context, storeID string, outletID *string, date time.Time, actualOrders int, actualRevenue int64, accuracy float64) error {
	query := `
        UPDATE day_forecasts
        SET actual_orders = $4, actual_revenue = $5, accuracy_score = $6
        WHERE store_id = $1
          AND ($2::text IS NULL OR outlet_id = $2)
          AND forecast_date = $3
    `
	_, err := r.pool.Exec(ctx, query, storeID, outletID, date, actualOrders, actualRevenue, accuracy)
	return err
}
