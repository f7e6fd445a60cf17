package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/warungops/warungops/internal/aggregate"
	"github.com/warungops/warungops/internal/cache"
	"github.com/warungops/warungops/internal/models"
)

var ErrUnknownPeriod = errors.New("period must be daily, weekly or monthly")

const lowSellerQty = 5

// emptySummary is returned verbatim for periods with zero sales; an empty
// period is a valid result, not a failure.
const emptySummary = "No sales recorded in this period yet. Insights will appear once orders start coming in."

// Enhancer produces a richer summary/highlights/recommendations set. When it
// succeeds its output fully replaces the deterministic floor; when it fails
// the floor stands.
type Enhancer interface {
	Generate(ctx context.Context, insights *models.BusinessInsights) (*models.InsightsEnrichment, error)
}

type NullEnhancer struct{}

func (NullEnhancer) Generate(context.Context, *models.BusinessInsights) (*models.InsightsEnrichment, error) {
	return nil, nil
}

type Generator struct {
	cfg      models.InsightsConfig
	agg      *aggregate.Aggregator
	cache    cache.Cache
	enhancer Enhancer
	now      func() time.Time
}

func NewGenerator(cfg models.InsightsConfig, agg *aggregate.Aggregator, store cache.Cache, enhancer Enhancer) *Generator {
	if enhancer == nil {
		enhancer = NullEnhancer{}
	}
	return &Generator{cfg: cfg, agg: agg, cache: store, enhancer: enhancer, now: time.Now}
}

// Get returns the insight bundle for the period, serving an unexpired cached
// copy unless forceRefresh is set. The bool reports whether the cache served
// it. Two concurrent regenerations may race to write; last write wins, which
// is acceptable for advisory content.
func (g *Generator) Get(ctx context.Context, storeID string, outletID *string, period string, forceRefresh bool) (*models.BusinessInsights, bool, error) {
	days, err := periodDays(period)
	if err != nil {
		return nil, false, err
	}

	key := cacheKey(storeID, outletID, period)
	if !forceRefresh {
		if raw, ok := g.cache.Get(key); ok {
			var cached models.BusinessInsights
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, true, nil
			}
			log.Warn().Str("key", key).Msg("discarding undecodable cached insights")
		}
	}

	end := dayStart(g.now()).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	result, err := g.generate(ctx, storeID, outletID, period, start, end)
	if err != nil {
		return nil, false, err
	}

	if raw, err := json.Marshal(result); err == nil {
		g.cache.Set(key, raw, g.cfg.CacheTTL)
	}
	return result, false, nil
}

func (g *Generator) generate(ctx context.Context, storeID string, outletID *string, period string, start, end time.Time) (*models.BusinessInsights, error) {
	daily, err := g.agg.Daily(ctx, storeID, outletID, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate daily: %w", err)
	}

	result := &models.BusinessInsights{
		Period:      models.InsightPeriod{Start: start, End: end, Type: period},
		GeneratedAt: g.now(),
	}
	if len(daily) == 0 {
		result.Summary = emptySummary
		result.Highlights = []models.InsightHighlight{}
		result.Recommendations = []string{}
		return result, nil
	}

	items, err := g.agg.ByMenuItem(ctx, storeID, outletID, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate items: %w", err)
	}
	hourly, err := g.agg.Hourly(ctx, storeID, outletID, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate hourly: %w", err)
	}
	comparison, err := g.agg.Compare(ctx, storeID, outletID, start, end)
	if err != nil {
		return nil, fmt.Errorf("compare periods: %w", err)
	}

	result.Metrics = comparison
	result.TopItems = topN(items, 5)
	result.LowItems = lowSellers(items)
	result.PeakHours = peakHours(hourly, 3)
	g.deterministicFloor(result)

	if enrichment, err := g.enhancer.Generate(ctx, result); err != nil {
		log.Debug().Err(err).Msg("insights enrichment skipped, deterministic floor stands")
	} else if enrichment != nil {
		// the richer version replaces the floor wholesale, never merged
		result.Summary = enrichment.Summary
		result.Highlights = enrichment.Highlights
		result.Recommendations = enrichment.Recommendations
	}
	return result, nil
}

// deterministicFloor fills summary, highlights and recommendations from the
// aggregates alone. It is always valid on its own.
func (g *Generator) deterministicFloor(result *models.BusinessInsights) {
	changes := result.Metrics.Changes

	var trend string
	switch {
	case changes.RevenuePct > 5:
		trend = fmt.Sprintf("revenue is up %.1f%% against the previous period", changes.RevenuePct)
		result.Highlights = append(result.Highlights, models.InsightHighlight{
			Title:       "Revenue growing",
			Description: trend,
			Kind:        "positive",
		})
	case changes.RevenuePct < -5:
		trend = fmt.Sprintf("revenue is down %.1f%% against the previous period", -changes.RevenuePct)
		result.Highlights = append(result.Highlights, models.InsightHighlight{
			Title:       "Revenue declining",
			Description: trend,
			Kind:        "warning",
		})
	default:
		trend = "revenue is holding steady against the previous period"
	}

	if len(result.TopItems) > 0 {
		top := result.TopItems[0]
		result.Highlights = append(result.Highlights, models.InsightHighlight{
			Title:       "Top seller",
			Description: fmt.Sprintf("%s sold %d units", top.Name, top.QuantitySold),
			Kind:        "positive",
		})
	}
	for _, low := range result.LowItems {
		result.Highlights = append(result.Highlights, models.InsightHighlight{
			Title:       "Slow mover",
			Description: fmt.Sprintf("%s sold only %d units, consider a promotion or removal", low.Name, low.QuantitySold),
			Kind:        "warning",
		})
	}

	result.Summary = fmt.Sprintf("%d orders brought in %d this period; %s.",
		result.Metrics.Current.OrderCount, result.Metrics.Current.Revenue, trend)

	result.Recommendations = append(result.Recommendations,
		"review slow movers for promotions or menu changes")
	if len(result.PeakHours) > 0 {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("make sure staffing covers the %02d:00 peak", result.PeakHours[0].Hour))
	}
}

func periodDays(period string) (int, error) {
	switch period {
	case models.PeriodDaily:
		return 1, nil
	case models.PeriodWeekly:
		return 7, nil
	case models.PeriodMonthly:
		return 30, nil
	default:
		return 0, ErrUnknownPeriod
	}
}

func cacheKey(storeID string, outletID *string, period string) string {
	outlet := "all"
	if outletID != nil {
		outlet = *outletID
	}
	return fmt.Sprintf("insights:%s:%s:%s", storeID, outlet, period)
}

func topN(items []models.MenuItemAggregate, n int) []models.MenuItemAggregate {
	if len(items) > n {
		items = items[:n]
	}
	return items
}

func lowSellers(items []models.MenuItemAggregate) []models.MenuItemAggregate {
	var low []models.MenuItemAggregate
	for _, item := range items {
		if item.QuantitySold < lowSellerQty {
			low = append(low, item)
		}
	}
	return low
}

func peakHours(hourly [24]models.HourlyAggregate, n int) []models.HourlyAggregate {
	busy := make([]models.HourlyAggregate, 0, 24)
	for _, bucket := range hourly {
		if bucket.OrderCount > 0 {
			busy = append(busy, bucket)
		}
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].OrderCount > busy[j].OrderCount })
	if len(busy) > n {
		busy = busy[:n]
	}
	return busy
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
