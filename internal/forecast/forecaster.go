package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/warungops/warungops/internal/aggregate"
	"github.com/warungops/warungops/internal/models"
	"github.com/warungops/warungops/internal/repositories"
)

// ErrInsufficientData is the hard minimum: under three days of history there
// is nothing defensible to project from.
var ErrInsufficientData = errors.New("not enough sales history to forecast, need at least 3 days")

const maxConfidence = 0.95

// Enhancer supplies qualitative adjustments on top of a deterministic
// forecast. Implementations must treat their own failure as normal; the
// forecaster proceeds with the baseline whenever Enhance errors.
type Enhancer interface {
	Enhance(ctx context.Context, patterns models.SalesPatterns, forecasts []models.DayForecast) ([]models.ForecastAdjustment, error)
}

// NullEnhancer never adjusts anything. It is the construction-time choice
// when the AI overlay is disabled, which keeps "AI optional" a property of
// the wiring rather than a flag checked mid-computation.
type NullEnhancer struct{}

func (NullEnhancer) Enhance(context.Context, models.SalesPatterns, []models.DayForecast) ([]models.ForecastAdjustment, error) {
	return nil, nil
}

type Forecaster struct {
	cfg      models.ForecastConfig
	agg      *aggregate.Aggregator
	store    repositories.ForecastRepository
	calendar *Calendar
	enhancer Enhancer
	now      func() time.Time
}

func NewForecaster(cfg models.ForecastConfig, agg *aggregate.Aggregator, store repositories.ForecastRepository, calendar *Calendar, enhancer Enhancer) *Forecaster {
	if enhancer == nil {
		enhancer = NullEnhancer{}
	}
	return &Forecaster{
		cfg:      cfg,
		agg:      agg,
		store:    store,
		calendar: calendar,
		enhancer: enhancer,
		now:      time.Now,
	}
}

// Forecast projects up to daysAhead future days from the configured history
// window, persists every generated day keyed by (outlet, date), and returns
// the projection together with stock recommendations and model accuracy.
func (f *Forecaster) Forecast(ctx context.Context, storeID string, outletID *string, daysAhead int) (*models.ForecastResult, error) {
	if daysAhead < 1 {
		daysAhead = 1
	}
	if daysAhead > f.cfg.MaxDaysAhead {
		daysAhead = f.cfg.MaxDaysAhead
	}

	today := dayStart(f.now())
	historyStart := today.AddDate(0, 0, -f.cfg.HistoryDays)

	daily, err := f.agg.Daily(ctx, storeID, outletID, historyStart, today)
	if err != nil {
		return nil, fmt.Errorf("load daily history: %w", err)
	}
	if len(daily) < f.cfg.MinHistoryDays {
		return nil, ErrInsufficientData
	}

	patterns := ExtractPatterns(daily)
	forecasts := f.project(patterns, today, daysAhead)

	// The overlay only runs with a week of data behind it; with less it
	// would be speculating, and the deterministic result stands alone.
	if len(daily) >= f.cfg.AIMinHistoryDays {
		if adjustments, err := f.enhancer.Enhance(ctx, patterns, forecasts); err != nil {
			log.Debug().Err(err).Msg("forecast enhancement skipped")
		} else {
			mergeAdjustments(forecasts, adjustments)
		}
	}

	stock, err := f.stockRecommendations(ctx, storeID, outletID, historyStart, today, patterns, forecasts, len(daily))
	if err != nil {
		return nil, err
	}

	accuracy, err := f.modelAccuracy(ctx, storeID, outletID)
	if err != nil {
		return nil, err
	}

	if err := f.store.Upsert(ctx, storeID, outletID, forecasts); err != nil {
		return nil, fmt.Errorf("persist forecasts: %w", err)
	}

	return &models.ForecastResult{
		Forecasts:            forecasts,
		StockRecommendations: stock,
		ModelAccuracy:        accuracy,
		GeneratedAt:          f.now(),
	}, nil
}

// project builds the deterministic day-by-day projection. Confidence grows
// with the number of samples behind the matching weekday, not the whole
// history window, so a thin weekday stays honestly uncertain.
func (f *Forecaster) project(patterns models.SalesPatterns, today time.Time, daysAhead int) []models.DayForecast {
	forecasts := make([]models.DayForecast, 0, daysAhead)
	for i := 1; i <= daysAhead; i++ {
		date := today.AddDate(0, 0, i)
		dow := int(date.Weekday())

		baseOrders := patterns.DayOfWeekOrders[dow]
		baseRevenue := float64(patterns.DayOfWeekRevenue[dow])
		factors := []string{fmt.Sprintf("based on %s average", date.Weekday())}

		// trend effect grows with distance from today
		multiplier := 1 + patterns.WeeklyTrend*(float64(i)/7)
		if patterns.WeeklyTrend > 0.05 {
			factors = append(factors, "upward weekly revenue trend")
		} else if patterns.WeeklyTrend < -0.05 {
			factors = append(factors, "downward weekly revenue trend")
		}

		isWeekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
		holidayName, isHoliday := f.calendar.Lookup(date)
		switch {
		case isHoliday:
			multiplier *= f.cfg.HolidayBoost
			factors = append(factors, "holiday: "+holidayName)
		case isWeekend:
			multiplier *= f.cfg.WeekendBoost
			factors = append(factors, "weekend boost")
		}

		samples := patterns.DayOfWeekSamples[dow]
		confidence := 0.5 + math.Min(0.3, float64(samples)*0.1) + patterns.DataConsistency*0.2
		confidence = clamp(confidence, 0, maxConfidence)

		forecasts = append(forecasts, models.DayForecast{
			Date:             date,
			DayOfWeek:        date.Weekday().String(),
			PredictedOrders:  int(math.Round(math.Max(0, baseOrders*multiplier))),
			PredictedRevenue: int64(math.Max(0, baseRevenue*multiplier)),
			Confidence:       confidence,
			Factors:          factors,
			IsWeekend:        isWeekend,
			IsHoliday:        isHoliday,
			HolidayName:      holidayName,
		})
	}
	return forecasts
}

func mergeAdjustments(forecasts []models.DayForecast, adjustments []models.ForecastAdjustment) {
	byDate := make(map[string]int, len(forecasts))
	for i, fc := range forecasts {
		byDate[fc.Date.Format("2006-01-02")] = i
	}
	for _, adj := range adjustments {
		// merge by exact date only; anything else from the model is dropped
		i, ok := byDate[adj.Date]
		if !ok {
			continue
		}
		forecasts[i].Factors = append(forecasts[i].Factors, adj.AdditionalFactors...)
		forecasts[i].Confidence = clamp(forecasts[i].Confidence+adj.ConfidenceAdjustment, 0, maxConfidence)
	}
}

func (f *Forecaster) stockRecommendations(ctx context.Context, storeID string, outletID *string, historyStart, today time.Time, patterns models.SalesPatterns, forecasts []models.DayForecast, historyDays int) ([]models.StockRecommendation, error) {
	items, err := f.agg.ByMenuItem(ctx, storeID, outletID, historyStart, today)
	if err != nil {
		return nil, fmt.Errorf("load item history: %w", err)
	}
	if len(items) > f.cfg.TopStockItems {
		items = items[:f.cfg.TopStockItems]
	}
	if len(forecasts) == 0 || patterns.OverallAvgOrders == 0 {
		return nil, nil
	}

	tomorrow := forecasts[0]
	ratio := float64(tomorrow.PredictedOrders) / patterns.OverallAvgOrders

	var reason string
	switch {
	case ratio > 1.1:
		reason = "busier than usual tomorrow, stock up"
	case ratio < 0.9:
		reason = "slower than usual tomorrow, keep stock lean"
	default:
		reason = "typical day expected"
	}

	recs := make([]models.StockRecommendation, 0, len(items))
	for _, item := range items {
		avgDaily := float64(item.QuantitySold) / float64(historyDays)
		qty := int(math.Ceil(avgDaily * ratio * f.cfg.StockSafetyFactor))
		if qty < 1 {
			qty = 1
		}
		recs = append(recs, models.StockRecommendation{
			ItemID:              item.ItemID,
			Name:                item.Name,
			RecommendedQuantity: qty,
			Reason:              reason,
		})
	}
	return recs, nil
}

func (f *Forecaster) modelAccuracy(ctx context.Context, storeID string, outletID *string) (float64, error) {
	scores, err := f.store.RecentAccuracy(ctx, storeID, outletID, f.cfg.AccuracyWindow)
	if err != nil {
		return 0, fmt.Errorf("load accuracy history: %w", err)
	}
	if len(scores) == 0 {
		return f.cfg.DefaultAccuracy, nil
	}
	var sum float64
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores)), nil
}

// Reconcile fills a closed forecast day with actuals and scores it with a
// MAPE-like formula so future model accuracy reflects real performance.
func (f *Forecaster) Reconcile(ctx context.Context, storeID string, outletID *string, date time.Time) error {
	date = dayStart(date)
	predicted, err := f.store.GetByDate(ctx, storeID, outletID, date)
	if err != nil {
		return err
	}

	daily, err := f.agg.Daily(ctx, storeID, outletID, date, date.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("load actuals: %w", err)
	}
	var actualOrders int
	var actualRevenue int64
	if len(daily) > 0 {
		actualOrders = daily[0].OrderCount
		actualRevenue = daily[0].Revenue
	}

	accuracy := accuracyScore(predicted.PredictedOrders, actualOrders, predicted.PredictedRevenue, actualRevenue)
	return f.store.RecordActuals(ctx, storeID, outletID, date, actualOrders, actualRevenue, accuracy)
}

func accuracyScore(predictedOrders, actualOrders int, predictedRevenue, actualRevenue int64) float64 {
	if predictedOrders == 0 || predictedRevenue == 0 {
		return 0
	}
	orderErr := math.Abs(float64(predictedOrders-actualOrders)) / float64(predictedOrders)
	revenueErr := math.Abs(float64(predictedRevenue-actualRevenue)) / float64(predictedRevenue)
	return clamp(1-(orderErr+revenueErr)/2, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
