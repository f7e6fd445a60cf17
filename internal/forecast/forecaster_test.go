package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warungops/warungops/internal/aggregate"
	"github.com/warungops/warungops/internal/models"
	"github.com/warungops/warungops/internal/repositories"
)

type stubOrderRepo struct {
	orders []*models.Order
}

func (s *stubOrderRepo) GetByDateRange(ctx context.Context, storeID string, outletID *string, start, end time.Time) ([]*models.Order, error) {
	var in []*models.Order
	for _, o := range s.orders {
		if !o.CreatedAt.Before(start) && o.CreatedAt.Before(end) {
			in = append(in, o)
		}
	}
	return in, nil
}

func (s *stubOrderRepo) BulkCreate(ctx context.Context, orders []*models.Order) error {
	s.orders = append(s.orders, orders...)
	return nil
}

type stubMenuRepo struct {
	items []*models.MenuItem
}

func (s *stubMenuRepo) GetByStore(ctx context.Context, storeID string, outletID *string) ([]*models.MenuItem, error) {
	return s.items, nil
}

func (s *stubMenuRepo) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	return nil, repositories.ErrNotFound
}

func (s *stubMenuRepo) UpdatePrice(ctx context.Context, id string, price int64) error { return nil }

func (s *stubMenuRepo) BulkCreate(ctx context.Context, items []*models.MenuItem) error { return nil }

type stubForecastStore struct {
	upserted  []models.DayForecast
	persisted map[string]*models.DayForecast
	accuracy  []float64
	recorded  []float64
}

func (s *stubForecastStore) Upsert(ctx context.Context, storeID string, outletID *string, forecasts []models.DayForecast) error {
	s.upserted = append(s.upserted, forecasts...)
	return nil
}

func (s *stubForecastStore) GetByDate(ctx context.Context, storeID string, outletID *string, date time.Time) (*models.DayForecast, error) {
	fc, ok := s.persisted[date.Format("2006-01-02")]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return fc, nil
}

func (s *stubForecastStore) RecentAccuracy(ctx context.Context, storeID string, outletID *string, limit int) ([]float64, error) {
	return s.accuracy, nil
}

func (s *stubForecastStore) RecordActuals(ctx context.Context, storeID string, outletID *string, date time.Time, actualOrders int, actualRevenue int64, accuracy float64) error {
	s.recorded = append(s.recorded, accuracy)
	return nil
}

func testConfig() models.ForecastConfig {
	return models.ForecastConfig{
		WeekendBoost:      1.2,
		HolidayBoost:      1.3,
		MaxDaysAhead:      14,
		HistoryDays:       30,
		MinHistoryDays:    3,
		AIMinHistoryDays:  7,
		StockSafetyFactor: 1.2,
		TopStockItems:     5,
		AccuracyWindow:    30,
		DefaultAccuracy:   0.7,
	}
}

// historyOrders generates days of steady history ending the day before now,
// with weekends running at the given multiple of the weekday volume.
func historyOrders(now time.Time, days, weekdayCount int, weekendFactor float64) []*models.Order {
	var orders []*models.Order
	for d := days; d >= 1; d-- {
		day := now.AddDate(0, 0, -d)
		count := weekdayCount
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			count = int(float64(weekdayCount) * weekendFactor)
		}
		for i := 0; i < count; i++ {
			orders = append(orders, &models.Order{
				ID:        day.Format("20060102") + string(rune('a'+i)),
				StoreID:   "s1",
				Status:    models.OrderStatusCompleted,
				Total:     25000,
				CreatedAt: day.Add(12 * time.Hour),
				Items:     []models.OrderItem{{MenuItemID: "m1", Quantity: 1, UnitPrice: 25000}},
			})
		}
	}
	return orders
}

func newTestForecaster(orders *stubOrderRepo, store *stubForecastStore, now time.Time) *Forecaster {
	agg := aggregate.New(orders, &stubMenuRepo{items: []*models.MenuItem{
		{ID: "m1", Name: "Nasi Goreng", Category: "makanan", Price: 25000},
	}})
	f := NewForecaster(testConfig(), agg, store, NewCalendar(nil), nil)
	f.now = func() time.Time { return now }
	return f
}

func TestForecastInsufficientHistory(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{orders: historyOrders(now, 2, 10, 1)}
	f := newTestForecaster(orders, &stubForecastStore{}, now)

	_, err := f.Forecast(context.Background(), "s1", nil, 7)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestForecastConfidenceBoundsAndFactors(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{orders: historyOrders(now, 28, 10, 1.5)}
	store := &stubForecastStore{}
	f := newTestForecaster(orders, store, now)

	result, err := f.Forecast(context.Background(), "s1", nil, 7)
	require.NoError(t, err)
	require.Len(t, result.Forecasts, 7)

	for _, day := range result.Forecasts {
		assert.GreaterOrEqual(t, day.Confidence, 0.0)
		assert.LessOrEqual(t, day.Confidence, 0.95)
		assert.NotEmpty(t, day.Factors)
	}
	assert.Len(t, store.upserted, 7)
}

func TestForecastSaturdayGetsWeekendBoost(t *testing.T) {
	// Wednesday morning; the 7-day window includes the coming Saturday.
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{orders: historyOrders(now, 28, 10, 1.5)}
	f := newTestForecaster(orders, &stubForecastStore{}, now)

	result, err := f.Forecast(context.Background(), "s1", nil, 7)
	require.NoError(t, err)

	var saturday, wednesday *models.DayForecast
	for i := range result.Forecasts {
		switch result.Forecasts[i].Date.Weekday() {
		case time.Saturday:
			saturday = &result.Forecasts[i]
		case time.Wednesday:
			wednesday = &result.Forecasts[i]
		}
	}
	require.NotNil(t, saturday)
	require.NotNil(t, wednesday)

	assert.True(t, saturday.IsWeekend)
	assert.Contains(t, saturday.Factors, "weekend boost")
	// weekend baseline is already higher, and the boost multiplies it again
	assert.Greater(t, saturday.PredictedOrders, wednesday.PredictedOrders)
}

func TestForecastHolidayBoostBeatsWeekend(t *testing.T) {
	// 2026-08-17 (Hari Kemerdekaan) is a Monday; forecast from the Friday before.
	now := time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{orders: historyOrders(now, 28, 10, 1)}
	f := newTestForecaster(orders, &stubForecastStore{}, now)

	result, err := f.Forecast(context.Background(), "s1", nil, 5)
	require.NoError(t, err)

	var holiday *models.DayForecast
	for i := range result.Forecasts {
		if result.Forecasts[i].IsHoliday {
			holiday = &result.Forecasts[i]
		}
	}
	require.NotNil(t, holiday)
	assert.Equal(t, "Hari Kemerdekaan", holiday.HolidayName)
	assert.Contains(t, holiday.Factors, "holiday: Hari Kemerdekaan")
}

func TestForecastDefaultAccuracyWhenNoHistory(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{orders: historyOrders(now, 10, 10, 1)}
	f := newTestForecaster(orders, &stubForecastStore{}, now)

	result, err := f.Forecast(context.Background(), "s1", nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.7, result.ModelAccuracy)
}

func TestForecastStockRecommendationsAtLeastOne(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{orders: historyOrders(now, 10, 3, 1)}
	f := newTestForecaster(orders, &stubForecastStore{}, now)

	result, err := f.Forecast(context.Background(), "s1", nil, 3)
	require.NoError(t, err)
	require.NotEmpty(t, result.StockRecommendations)
	for _, rec := range result.StockRecommendations {
		assert.GreaterOrEqual(t, rec.RecommendedQuantity, 1)
		assert.NotEmpty(t, rec.Reason)
	}
}

func TestForecastDaysAheadClamped(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{orders: historyOrders(now, 10, 10, 1)}
	f := newTestForecaster(orders, &stubForecastStore{}, now)

	result, err := f.Forecast(context.Background(), "s1", nil, 99)
	require.NoError(t, err)
	assert.Len(t, result.Forecasts, 14)

	result, err = f.Forecast(context.Background(), "s1", nil, -1)
	require.NoError(t, err)
	assert.Len(t, result.Forecasts, 1)
}

func TestReconcileScoresAccuracy(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC)

	orders := &stubOrderRepo{orders: historyOrders(now, 3, 10, 1)}
	store := &stubForecastStore{persisted: map[string]*models.DayForecast{
		"2026-08-18": {Date: yesterday, PredictedOrders: 10, PredictedRevenue: 250000},
	}}
	f := newTestForecaster(orders, store, now)

	require.NoError(t, f.Reconcile(context.Background(), "s1", nil, yesterday))
	require.Len(t, store.recorded, 1)
	// actuals match the prediction exactly, so the score is a perfect 1
	assert.InDelta(t, 1.0, store.recorded[0], 0.001)
}

func TestReconcileMissingForecast(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	f := newTestForecaster(&stubOrderRepo{}, &stubForecastStore{persisted: map[string]*models.DayForecast{}}, now)

	err := f.Reconcile(context.Background(), "s1", nil, now.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAccuracyScoreClamped(t *testing.T) {
	assert.Zero(t, accuracyScore(0, 5, 0, 100))
	assert.InDelta(t, 1.0, accuracyScore(10, 10, 100000, 100000), 0.001)
	// wildly wrong prediction clamps at 0 rather than going negative
	assert.Zero(t, accuracyScore(10, 100, 100000, 5000000))
}
