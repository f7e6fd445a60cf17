package pricing

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
	return s.orders, nil
}

func (s *stubOrderRepo) BulkCreate(ctx context.Context, orders []*models.Order) error { return nil }

type stubMenuRepo struct {
	items        []*models.MenuItem
	priceUpdates map[string]int64
}

func (s *stubMenuRepo) GetByStore(ctx context.Context, storeID string, outletID *string) ([]*models.MenuItem, error) {
	return s.items, nil
}

func (s *stubMenuRepo) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *stubMenuRepo) UpdatePrice(ctx context.Context, id string, price int64) error {
	if s.priceUpdates == nil {
		s.priceUpdates = make(map[string]int64)
	}
	s.priceUpdates[id] = price
	return nil
}

func (s *stubMenuRepo) BulkCreate(ctx context.Context, items []*models.MenuItem) error { return nil }

type stubPricingRepo struct {
	recs map[string]*models.PricingRecommendation
}

func newStubPricingRepo() *stubPricingRepo {
	return &stubPricingRepo{recs: make(map[string]*models.PricingRecommendation)}
}

// Insert mirrors the pending-slot upsert: an existing pending row for the
// same store/outlet/item keeps its id, and rec.ID is rewritten to it.
func (s *stubPricingRepo) Insert(ctx context.Context, recs []*models.PricingRecommendation) error {
	for _, rec := range recs {
		for id, existing := range s.recs {
			if existing.Status != models.RecommendationPending {
				continue
			}
			if existing.StoreID == rec.StoreID && existing.ItemID == rec.ItemID && sameOutlet(existing.OutletID, rec.OutletID) {
				rec.ID = id
				break
			}
		}
		copied := *rec
		s.recs[rec.ID] = &copied
	}
	return nil
}

func sameOutlet(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *stubPricingRepo) GetByID(ctx context.Context, id string) (*models.PricingRecommendation, error) {
	rec, ok := s.recs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (s *stubPricingRepo) Resolve(ctx context.Context, id string, status string, finalPrice int64) (bool, error) {
	rec, ok := s.recs[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if rec.Status != models.RecommendationPending {
		return false, nil
	}
	rec.Status = status
	rec.RecommendedPrice = finalPrice
	return true, nil
}

func testPricingConfig() models.PricingConfig {
	return models.PricingConfig{
		Elasticity:          -1.5,
		NoiseThresholdPct:   3.0,
		WindowDays:          30,
		FastMoverQty:        50,
		SlowMoverQty:        10,
		FastMoverRaisePct:   5,
		SlowMoverCutPct:     -10,
		LowMarginPct:        30,
		HighMarginPct:       70,
		LowMarginRaisePct:   10,
		HighMarginCutPct:    -5,
		CategoryBandPct:     20,
		UnderpricedRaisePct: 8,
	}
}

// salesOrders builds enough order lines for the given per-item quantities.
func salesOrders(quantities map[string]int, unitPrice int64) []*models.Order {
	var orders []*models.Order
	at := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	for itemID, total := range quantities {
		for total > 0 {
			qty := 2
			if total < 2 {
				qty = total
			}
			orders = append(orders, &models.Order{
				ID:        itemID + "-" + time.Now().Format("150405.000000000") + string(rune('a'+total%26)),
				StoreID:   "s1",
				Status:    models.OrderStatusCompleted,
				Total:     int64(qty) * unitPrice,
				CreatedAt: at,
				Items:     []models.OrderItem{{MenuItemID: itemID, Quantity: qty, UnitPrice: unitPrice}},
			})
			total -= qty
		}
	}
	return orders
}

func newTestEngine(cfg models.PricingConfig, menu *stubMenuRepo, orders *stubOrderRepo, store *stubPricingRepo) *Engine {
	agg := aggregate.New(orders, menu)
	e := NewEngine(cfg, agg, menu, store, nil)
	e.now = func() time.Time { return time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC) }
	return e
}

func TestRecommendEmptyMenu(t *testing.T) {
	e := newTestEngine(testPricingConfig(), &stubMenuRepo{}, &stubOrderRepo{}, newStubPricingRepo())

	_, err := e.Recommend(context.Background(), "s1", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyMenu)
}

func TestRecommendSlowMoverCut(t *testing.T) {
	menu := &stubMenuRepo{items: []*models.MenuItem{
		{ID: "m1", StoreID: "s1", Name: "Rendang", Category: "makanan", Price: 50000},
	}}
	orders := &stubOrderRepo{orders: salesOrders(map[string]int{"m1": 4}, 50000)}
	store := newStubPricingRepo()
	e := newTestEngine(testPricingConfig(), menu, orders, store)

	recs, err := e.Recommend(context.Background(), "s1", nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, int64(45000), rec.RecommendedPrice)
	assert.InDelta(t, -10, rec.ChangePct, 0.001)
	assert.True(t, EndsPsychological(rec.RecommendedPrice))
	assert.Equal(t, models.RecommendationPending, rec.Status)
	assert.NotEmpty(t, rec.Reasoning)
	// negative volume elasticity flips sign on a price cut
	assert.InDelta(t, 15, rec.Impact.VolumeChangePct, 0.001)
	// persisted for the later apply step
	assert.Len(t, store.recs, 1)
}

func TestRecommendNoiseThresholdBoundary(t *testing.T) {
	// 10300 rounds to 10500 with no other adjustment: a +1.9417% change.
	item := &models.MenuItem{ID: "m1", StoreID: "s1", Name: "Es Campur", Category: "minuman", Price: 10300}

	cfg := testPricingConfig()
	cfg.NoiseThresholdPct = 1.95
	e := newTestEngine(cfg, &stubMenuRepo{items: []*models.MenuItem{item}}, &stubOrderRepo{}, newStubPricingRepo())
	recs, err := e.Recommend(context.Background(), "s1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, recs, "change below the threshold must be suppressed")

	cfg.NoiseThresholdPct = 1.94
	e = newTestEngine(cfg, &stubMenuRepo{items: []*models.MenuItem{item}}, &stubOrderRepo{}, newStubPricingRepo())
	recs, err = e.Recommend(context.Background(), "s1", nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1, "change at or above the threshold must be emitted")
	assert.InDelta(t, 1.9417, recs[0].ChangePct, 0.001)
}

func TestRecommendNoFactorsNoRecommendation(t *testing.T) {
	// psychological price, no sales, no cost, single item so category
	// position is neutral: nothing fires
	menu := &stubMenuRepo{items: []*models.MenuItem{
		{ID: "m1", StoreID: "s1", Name: "Kopi", Category: "minuman", Price: 15000},
	}}
	e := newTestEngine(testPricingConfig(), menu, &stubOrderRepo{}, newStubPricingRepo())

	recs, err := e.Recommend(context.Background(), "s1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendLowMarginRaise(t *testing.T) {
	cost := int64(40000)
	menu := &stubMenuRepo{items: []*models.MenuItem{
		{ID: "m1", StoreID: "s1", Name: "Ayam Bakar", Category: "makanan", Price: 50000, CostPrice: &cost},
	}}
	e := newTestEngine(testPricingConfig(), menu, &stubOrderRepo{}, newStubPricingRepo())

	recs, err := e.Recommend(context.Background(), "s1", nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	// 20% margin is below the 30% floor; +10% lands on 55000
	assert.Equal(t, int64(55000), recs[0].RecommendedPrice)

	var found bool
	for _, factor := range recs[0].Factors {
		if factor.Factor == "margin" {
			found = true
			assert.Equal(t, models.FactorDirectionUp, factor.Direction)
		}
	}
	assert.True(t, found)
}

func TestConfidenceCapped(t *testing.T) {
	e := newTestEngine(testPricingConfig(), &stubMenuRepo{}, &stubOrderRepo{}, newStubPricingRepo())
	sales := models.MenuItemAggregate{QuantitySold: 500, OrderCount: 200}
	factors := make([]models.PricingFactor, 5)

	confidence := e.confidence(sales, factors)
	assert.LessOrEqual(t, confidence, 0.9)
	assert.GreaterOrEqual(t, confidence, 0.5)
}

func TestApplyOnceOnly(t *testing.T) {
	menu := &stubMenuRepo{items: []*models.MenuItem{
		{ID: "m1", StoreID: "s1", Name: "Rendang", Category: "makanan", Price: 50000},
	}}
	orders := &stubOrderRepo{orders: salesOrders(map[string]int{"m1": 4}, 50000)}
	store := newStubPricingRepo()
	e := newTestEngine(testPricingConfig(), menu, orders, store)

	recs, err := e.Recommend(context.Background(), "s1", nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	applied, err := e.Apply(context.Background(), recs[0].ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationApplied, applied.Status)
	assert.Equal(t, int64(45000), menu.priceUpdates["m1"])

	_, err = e.Apply(context.Background(), recs[0].ID, true, nil)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestRecommendAgainKeepsApplicableID(t *testing.T) {
	// regenerating recommendations refreshes the pending row instead of adding
	// a second one, and the returned id must still resolve through Apply
	menu := &stubMenuRepo{items: []*models.MenuItem{
		{ID: "m1", StoreID: "s1", Name: "Rendang", Category: "makanan", Price: 50000},
	}}
	orders := &stubOrderRepo{orders: salesOrders(map[string]int{"m1": 4}, 50000)}
	store := newStubPricingRepo()
	e := newTestEngine(testPricingConfig(), menu, orders, store)

	first, err := e.Recommend(context.Background(), "s1", nil, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := e.Recommend(context.Background(), "s1", nil, nil)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID, "pending slot keeps its id across regeneration")
	assert.Len(t, store.recs, 1, "one pending row per item, not one per run")

	applied, err := e.Apply(context.Background(), second[0].ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationApplied, applied.Status)
	assert.Equal(t, int64(45000), menu.priceUpdates["m1"])
}

func TestApplyRejectLeavesPriceAlone(t *testing.T) {
	menu := &stubMenuRepo{items: []*models.MenuItem{
		{ID: "m1", StoreID: "s1", Name: "Rendang", Category: "makanan", Price: 50000},
	}}
	orders := &stubOrderRepo{orders: salesOrders(map[string]int{"m1": 4}, 50000)}
	store := newStubPricingRepo()
	e := newTestEngine(testPricingConfig(), menu, orders, store)

	recs, err := e.Recommend(context.Background(), "s1", nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rejected, err := e.Apply(context.Background(), recs[0].ID, false, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationRejected, rejected.Status)
	assert.Empty(t, menu.priceUpdates)
}

func TestApplyWithOverridePrice(t *testing.T) {
	menu := &stubMenuRepo{items: []*models.MenuItem{
		{ID: "m1", StoreID: "s1", Name: "Rendang", Category: "makanan", Price: 50000},
	}}
	orders := &stubOrderRepo{orders: salesOrders(map[string]int{"m1": 4}, 50000)}
	e := newTestEngine(testPricingConfig(), menu, orders, newStubPricingRepo())

	recs, err := e.Recommend(context.Background(), "s1", nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	override := int64(47500)
	applied, err := e.Apply(context.Background(), recs[0].ID, true, &override)
	require.NoError(t, err)
	assert.Equal(t, override, applied.RecommendedPrice)
	assert.Equal(t, override, menu.priceUpdates["m1"])
}

func TestApplyUnknownID(t *testing.T) {
	e := newTestEngine(testPricingConfig(), &stubMenuRepo{}, &stubOrderRepo{}, newStubPricingRepo())

	_, err := e.Apply(context.Background(), "nope", true, nil)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
