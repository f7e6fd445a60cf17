package repositories

import (
	"context"
	"time"

	"github.com/warungops/warungops/internal/models"
)

// ErrNotFound is returned by lookups for missing rows; postgres and in-memory
// implementations agree on it so callers never inspect driver errors.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }

type OrderRepository interface {
	// GetByDateRange returns every order (any status) for the tenant inside
	// [start, end), optionally restricted to one outlet. Line items included.
	GetByDateRange(ctx context.Context, storeID string, outletID *string, start, end time.Time) ([]*models.Order, error)
	BulkCreate(ctx context.Context, orders []*models.Order) error
}

type MenuItemRepository interface {
	GetByStore(ctx context.Context, storeID string, outletID *string) ([]*models.MenuItem, error)
	GetByID(ctx context.Context, id string) (*models.MenuItem, error)
	UpdatePrice(ctx context.Context, id string, price int64) error
	BulkCreate(ctx context.Context, items []*models.MenuItem) error
}

type ForecastRepository interface {
	// Upsert is keyed by (outlet, date); rerunning a forecast overwrites
	// stale rows rather than duplicating them.
	Upsert(ctx context.Context, storeID string, outletID *string, forecasts []models.DayForecast) error
	// GetByDate returns the persisted forecast for one day.
	GetByDate(ctx context.Context, storeID string, outletID *string, date time.Time) (*models.DayForecast, error)
	// RecentAccuracy returns the accuracy scores of the newest reconciled
	// forecasts, at most limit of them.
	RecentAccuracy(ctx context.Context, storeID string, outletID *string, limit int) ([]float64, error)
	// RecordActuals fills actual orders/revenue and the accuracy score for
	// one closed forecast day.
	RecordActuals(ctx context.Context, storeID string, outletID *string, date time.Time, actualOrders int, actualRevenue int64, accuracy float64) error
}

type PricingRepository interface {
	Insert(ctx context.Context, recs []*models.PricingRecommendation) error
	GetByID(ctx context.Context, id string) (*models.PricingRecommendation, error)
	// Resolve transitions a pending recommendation to applied or rejected.
	// It reports ErrNotFound when the row is missing and resolved=false when
	// the row exists but was already resolved.
	Resolve(ctx context.Context, id string, status string, finalPrice int64) (resolved bool, err error)
}

type ParseLogRepository interface {
	Append(ctx context.Context, entry *models.VoiceParseLog) error
}
