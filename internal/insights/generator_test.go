package insights

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warungops/warungops/internal/aggregate"
	"github.com/warungops/warungops/internal/cache"
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

func (s *stubOrderRepo) BulkCreate(ctx context.Context, orders []*models.Order) error { return nil }

type stubMenuRepo struct {
	items []*models.MenuItem
}

func (s *stubMenuRepo) GetByStore(ctx context.Context, storeID string, outletID *string) ([]*models.MenuItem, error) {
	return s.items, nil
}

func (s *stubMenuRepo) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	return nil, repositories.ErrNotFound
}

func (s *stubMenuRepo) UpdatePrice(ctx context.Context, id string, price int64) error  { return nil }
func (s *stubMenuRepo) BulkCreate(ctx context.Context, items []*models.MenuItem) error { return nil }

func weekOfOrders(now time.Time) []*models.Order {
	var orders []*models.Order
	for d := 1; d <= 7; d++ {
		day := now.AddDate(0, 0, -d)
		for i := 0; i < 8; i++ {
			orders = append(orders, &models.Order{
				ID:        day.Format("20060102") + string(rune('a'+i)),
				StoreID:   "s1",
				Status:    models.OrderStatusCompleted,
				Total:     30000,
				CreatedAt: day.Add(time.Duration(11+i%3) * time.Hour),
				Items:     []models.OrderItem{{MenuItemID: "m1", Quantity: 1, UnitPrice: 30000}},
			})
		}
	}
	return orders
}

func newTestGenerator(orders *stubOrderRepo, store cache.Cache, enhancer Enhancer, now time.Time) *Generator {
	agg := aggregate.New(orders, &stubMenuRepo{items: []*models.MenuItem{
		{ID: "m1", Name: "Nasi Goreng", Category: "makanan", Price: 30000},
	}})
	g := NewGenerator(models.InsightsConfig{CacheTTL: time.Hour}, agg, store, enhancer)
	g.now = func() time.Time { return now }
	return g
}

func TestGetUnknownPeriod(t *testing.T) {
	g := newTestGenerator(&stubOrderRepo{}, cache.NewMemory(), nil, time.Now())

	_, _, err := g.Get(context.Background(), "s1", nil, "fortnightly", false)
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestGetEmptyPeriodIsValid(t *testing.T) {
	g := newTestGenerator(&stubOrderRepo{}, cache.NewMemory(), nil, time.Now())

	result, cached, err := g.Get(context.Background(), "s1", nil, models.PeriodWeekly, false)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, emptySummary, result.Summary)
	assert.NotNil(t, result.Highlights)
	assert.Empty(t, result.Highlights)
	assert.NotNil(t, result.Recommendations)
}

func TestGetCacheHitReturnsIdenticalContent(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	g := newTestGenerator(&stubOrderRepo{orders: weekOfOrders(now)}, cache.NewMemory(), nil, now)

	first, cached, err := g.Get(context.Background(), "s1", nil, models.PeriodWeekly, false)
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := g.Get(context.Background(), "s1", nil, models.PeriodWeekly, false)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Highlights, second.Highlights)
	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

func TestGetForceRefreshSkipsCache(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	g := newTestGenerator(&stubOrderRepo{orders: weekOfOrders(now)}, cache.NewMemory(), nil, now)

	_, _, err := g.Get(context.Background(), "s1", nil, models.PeriodWeekly, false)
	require.NoError(t, err)

	_, cached, err := g.Get(context.Background(), "s1", nil, models.PeriodWeekly, true)
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestCacheKeysSeparateOutlets(t *testing.T) {
	outlet := "o1"
	assert.NotEqual(t, cacheKey("s1", nil, "daily"), cacheKey("s1", &outlet, "daily"))
	assert.NotEqual(t, cacheKey("s1", nil, "daily"), cacheKey("s1", nil, "weekly"))
}

func TestDeterministicFloorHighlights(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	g := newTestGenerator(&stubOrderRepo{orders: weekOfOrders(now)}, cache.NewMemory(), nil, now)

	result, _, err := g.Get(context.Background(), "s1", nil, models.PeriodWeekly, false)
	require.NoError(t, err)

	// previous window is empty so revenue reads as up 100%
	assert.Greater(t, result.Metrics.Changes.RevenuePct, 5.0)
	require.NotEmpty(t, result.Highlights)
	assert.Equal(t, "Revenue growing", result.Highlights[0].Title)
	assert.NotEmpty(t, result.TopItems)
	assert.NotEmpty(t, result.PeakHours)
	assert.NotEmpty(t, result.Recommendations)
}

type stubEnhancer struct {
	enrichment *models.InsightsEnrichment
	err        error
}

func (s *stubEnhancer) Generate(ctx context.Context, insights *models.BusinessInsights) (*models.InsightsEnrichment, error) {
	return s.enrichment, s.err
}

func TestEnhancerReplacesFloorWholesale(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	enhancer := &stubEnhancer{enrichment: &models.InsightsEnrichment{
		Summary:         "a sharper story",
		Highlights:      []models.InsightHighlight{{Title: "From the model", Kind: "neutral"}},
		Recommendations: []string{"do the thing"},
	}}
	g := newTestGenerator(&stubOrderRepo{orders: weekOfOrders(now)}, cache.NewMemory(), enhancer, now)

	result, _, err := g.Get(context.Background(), "s1", nil, models.PeriodWeekly, false)
	require.NoError(t, err)
	assert.Equal(t, "a sharper story", result.Summary)
	require.Len(t, result.Highlights, 1)
	assert.Equal(t, "From the model", result.Highlights[0].Title)
	assert.Equal(t, []string{"do the thing"}, result.Recommendations)
}

func TestEnhancerFailureKeepsFloor(t *testing.T) {
	now := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	enhancer := &stubEnhancer{err: assert.AnError}
	g := newTestGenerator(&stubOrderRepo{orders: weekOfOrders(now)}, cache.NewMemory(), enhancer, now)

	result, _, err := g.Get(context.Background(), "s1", nil, models.PeriodWeekly, false)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Summary)
	assert.NotEqual(t, "a sharper story", result.Summary)
}
