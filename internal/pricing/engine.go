package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lucsky/cuid"
	"github.com/rs/zerolog/log"
	"github.com/warungops/warungops/internal/aggregate"
	"github.com/warungops/warungops/internal/models"
	"github.com/warungops/warungops/internal/repositories"
)

var (
	ErrEmptyMenu = errors.New("store has no menu items to price")
	// ErrAlreadyResolved guards the once-only apply action: a resolved
	// recommendation is never silently re-applied.
	ErrAlreadyResolved = errors.New("recommendation was already applied or rejected")
)

const maxConfidence = 0.9

// Enhancer adds narrative on top of deterministic recommendations; its
// failure leaves them untouched.
type Enhancer interface {
	Enrich(ctx context.Context, recs []*models.PricingRecommendation) ([]models.PricingEnrichment, error)
}

type NullEnhancer struct{}

func (NullEnhancer) Enrich(context.Context, []*models.PricingRecommendation) ([]models.PricingEnrichment, error) {
	return nil, nil
}

type Engine struct {
	cfg      models.PricingConfig
	agg      *aggregate.Aggregator
	menu     repositories.MenuItemRepository
	store    repositories.PricingRepository
	enhancer Enhancer
	now      func() time.Time
}

func NewEngine(cfg models.PricingConfig, agg *aggregate.Aggregator, menu repositories.MenuItemRepository, store repositories.PricingRepository, enhancer Enhancer) *Engine {
	if enhancer == nil {
		enhancer = NullEnhancer{}
	}
	return &Engine{cfg: cfg, agg: agg, menu: menu, store: store, enhancer: enhancer, now: time.Now}
}

// Recommend scores every menu item (or just itemIDs when given) across the
// independent pricing factors and emits a recommendation wherever the
// accumulated adjustment survives the noise filter. Emitting nothing for an
// item is a valid outcome, not an error.
func (e *Engine) Recommend(ctx context.Context, storeID string, outletID *string, itemIDs []string) ([]*models.PricingRecommendation, error) {
	menu, err := e.menu.GetByStore(ctx, storeID, outletID)
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	if len(menu) == 0 {
		return nil, ErrEmptyMenu
	}

	end := e.now()
	start := end.AddDate(0, 0, -e.cfg.WindowDays)
	itemAggs, err := e.agg.ByMenuItem(ctx, storeID, outletID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load item sales: %w", err)
	}
	aggByID := make(map[string]models.MenuItemAggregate, len(itemAggs))
	for _, agg := range itemAggs {
		aggByID[agg.ItemID] = agg
	}

	categoryAvg := categoryAverages(menu)

	var wanted map[string]bool
	if len(itemIDs) > 0 {
		wanted = make(map[string]bool, len(itemIDs))
		for _, id := range itemIDs {
			wanted[id] = true
		}
	}

	var recs []*models.PricingRecommendation
	for _, item := range menu {
		if wanted != nil && !wanted[item.ID] {
			continue
		}
		if rec := e.evaluate(storeID, outletID, item, aggByID[item.ID], categoryAvg[item.Category]); rec != nil {
			recs = append(recs, rec)
		}
	}
	if len(recs) == 0 {
		return recs, nil
	}

	e.enrich(ctx, recs)

	if err := e.store.Insert(ctx, recs); err != nil {
		return nil, fmt.Errorf("persist recommendations: %w", err)
	}
	return recs, nil
}

// evaluate runs the factor pipeline for one item; it returns nil when no
// factor fires or the resulting change is inside the noise threshold.
func (e *Engine) evaluate(storeID string, outletID *string, item *models.MenuItem, sales models.MenuItemAggregate, categoryAvg int64) *models.PricingRecommendation {
	if item.Price <= 0 {
		return nil
	}

	var factors []models.PricingFactor
	var adjustmentPct float64

	// sales velocity over the pricing window
	switch {
	case sales.QuantitySold > e.cfg.FastMoverQty:
		adjustmentPct += e.cfg.FastMoverRaisePct
		factors = append(factors, models.PricingFactor{
			Factor:      "sales_velocity",
			Weight:      0.3,
			Direction:   models.FactorDirectionUp,
			Description: fmt.Sprintf("sold %d in %d days, demand supports a higher price", sales.QuantitySold, e.cfg.WindowDays),
		})
	case sales.QuantitySold > 0 && sales.QuantitySold < e.cfg.SlowMoverQty:
		adjustmentPct += e.cfg.SlowMoverCutPct
		factors = append(factors, models.PricingFactor{
			Factor:      "sales_velocity",
			Weight:      0.3,
			Direction:   models.FactorDirectionDown,
			Description: fmt.Sprintf("only %d sold in %d days, a discount may move it", sales.QuantitySold, e.cfg.WindowDays),
		})
	}

	// margin, only when a cost price is known
	if margin, known := item.MarginPct(); known {
		switch {
		case margin < e.cfg.LowMarginPct:
			adjustmentPct += e.cfg.LowMarginRaisePct
			factors = append(factors, models.PricingFactor{
				Factor:      "margin",
				Weight:      0.3,
				Direction:   models.FactorDirectionUp,
				Description: fmt.Sprintf("margin is %.0f%%, below a sustainable level", margin),
			})
		case margin > e.cfg.HighMarginPct:
			adjustmentPct += e.cfg.HighMarginCutPct
			factors = append(factors, models.PricingFactor{
				Factor:      "margin",
				Weight:      0.3,
				Direction:   models.FactorDirectionDown,
				Description: fmt.Sprintf("margin is %.0f%%, room to be more competitive", margin),
			})
		}
	}

	// price relative to the category
	if categoryAvg > 0 {
		band := e.cfg.CategoryBandPct / 100
		switch {
		case float64(item.Price) > float64(categoryAvg)*(1+band):
			// informational only, no adjustment
			factors = append(factors, models.PricingFactor{
				Factor:      "category_position",
				Weight:      0.2,
				Direction:   models.FactorDirectionNeutral,
				Description: fmt.Sprintf("priced above the %s category average of %d", item.Category, categoryAvg),
			})
		case float64(item.Price) < float64(categoryAvg)*(1-band):
			adjustmentPct += e.cfg.UnderpricedRaisePct
			factors = append(factors, models.PricingFactor{
				Factor:      "category_position",
				Weight:      0.2,
				Direction:   models.FactorDirectionUp,
				Description: fmt.Sprintf("priced well below the %s category average of %d", item.Category, categoryAvg),
			})
		}
	}

	if !EndsPsychological(item.Price) {
		factors = append(factors, models.PricingFactor{
			Factor:      "psychological_ending",
			Weight:      0.1,
			Direction:   models.FactorDirectionNeutral,
			Description: "price does not end on a clean point",
		})
	}

	if len(factors) == 0 {
		return nil
	}

	recommended := RoundPsychological(int64(math.Round(float64(item.Price) * (1 + adjustmentPct/100))))
	changePct := float64(recommended-item.Price) / float64(item.Price) * 100
	if math.Abs(changePct) < e.cfg.NoiseThresholdPct {
		return nil
	}

	return &models.PricingRecommendation{
		ID:               cuid.New(),
		StoreID:          storeID,
		OutletID:         outletID,
		ItemID:           item.ID,
		Name:             item.Name,
		Category:         item.Category,
		CurrentPrice:     item.Price,
		RecommendedPrice: recommended,
		ChangePct:        changePct,
		Confidence:       e.confidence(sales, factors),
		Reasoning:        reasoning(factors),
		Impact:           e.estimateImpact(item, sales, changePct),
		Factors:          factors,
		Status:           models.RecommendationPending,
		CreatedAt:        e.now(),
	}
}

func (e *Engine) confidence(sales models.MenuItemAggregate, factors []models.PricingFactor) float64 {
	confidence := 0.5
	switch {
	case sales.QuantitySold > 50:
		confidence += 0.2
	case sales.QuantitySold > 20:
		confidence += 0.1
	}
	if sales.OrderCount > 30 {
		confidence += 0.1
	}
	confidence += math.Min(0.15, 0.05*float64(len(factors)))
	return math.Min(confidence, maxConfidence)
}

// estimateImpact projects the change through a single fixed elasticity.
// This is a heuristic, not a fitted or causal model, and callers are told so
// in the reasoning text.
func (e *Engine) estimateImpact(item *models.MenuItem, sales models.MenuItemAggregate, changePct float64) models.ImpactEstimate {
	volumePct := e.cfg.Elasticity * changePct
	revenuePct := ((1 + changePct/100) * (1 + volumePct/100)) * 100 - 100

	profitPct := revenuePct
	if margin, known := item.MarginPct(); known && margin > 0 {
		cost := *item.CostPrice
		oldUnitProfit := float64(item.Price - cost)
		newPrice := float64(item.Price) * (1 + changePct/100)
		newUnitProfit := newPrice - float64(cost)
		if oldUnitProfit > 0 {
			profitPct = (newUnitProfit*(1+volumePct/100)/oldUnitProfit)*100 - 100
		}
	}

	return models.ImpactEstimate{
		RevenueChangePct:     revenuePct,
		VolumeChangePct:      volumePct,
		ProfitChangePct:      profitPct,
		MonthlyRevenueImpact: int64(float64(sales.Revenue) * revenuePct / 100),
	}
}

func (e *Engine) enrich(ctx context.Context, recs []*models.PricingRecommendation) {
	enrichments, err := e.enhancer.Enrich(ctx, recs)
	if err != nil {
		log.Debug().Err(err).Msg("pricing enrichment skipped")
		return
	}
	byItem := make(map[string]*models.PricingRecommendation, len(recs))
	for _, rec := range recs {
		byItem[rec.ItemID] = rec
	}
	for _, enrichment := range enrichments {
		rec, ok := byItem[enrichment.ItemID]
		if !ok {
			continue
		}
		if enrichment.Reasoning != "" {
			rec.Reasoning = enrichment.Reasoning
		}
		rec.Factors = append(rec.Factors, enrichment.ExtraFactors...)
	}
}

// Apply resolves a pending recommendation exactly once. Approval writes the
// final price back to the menu item; rejection mutates nothing but the
// recommendation row.
func (e *Engine) Apply(ctx context.Context, id string, approved bool, overridePrice *int64) (*models.PricingRecommendation, error) {
	rec, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	finalPrice := rec.RecommendedPrice
	status := models.RecommendationRejected
	if approved {
		if overridePrice != nil && *overridePrice > 0 {
			finalPrice = *overridePrice
		}
		status = models.RecommendationApplied
	}

	resolved, err := e.store.Resolve(ctx, id, status, finalPrice)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, ErrAlreadyResolved
	}

	if approved {
		if err := e.menu.UpdatePrice(ctx, rec.ItemID, finalPrice); err != nil {
			return nil, fmt.Errorf("write new price: %w", err)
		}
		log.Info().Str("item_id", rec.ItemID).Int64("price", finalPrice).Msg("applied pricing recommendation")
	}

	rec.Status = status
	rec.RecommendedPrice = finalPrice
	return rec, nil
}

func categoryAverages(menu []*models.MenuItem) map[string]int64 {
	sums := make(map[string]int64)
	counts := make(map[string]int64)
	for _, item := range menu {
		sums[item.Category] += item.Price
		counts[item.Category]++
	}
	averages := make(map[string]int64, len(sums))
	for category, sum := range sums {
		averages[category] = sum / counts[category]
	}
	return averages
}

func reasoning(factors []models.PricingFactor) string {
	descriptions := make([]string, 0, len(factors))
	for _, factor := range factors {
		descriptions = append(descriptions, factor.Description)
	}
	return strings.Join(descriptions, "; ") + " (impact estimated from a fixed elasticity assumption)"
}
