package engine

import (
	"context"
	"errors"
	"time"

	"github.com/warungops/warungops/internal/aggregate"
	"github.com/warungops/warungops/internal/ai"
	"github.com/warungops/warungops/internal/cache"
	"github.com/warungops/warungops/internal/forecast"
	"github.com/warungops/warungops/internal/insights"
	"github.com/warungops/warungops/internal/models"
	"github.com/warungops/warungops/internal/pricing"
	"github.com/warungops/warungops/internal/repositories"
	"github.com/warungops/warungops/internal/voice"
)

// Caller-facing failure taxonomy. AI failures never appear here: the
// overlay falling over always degrades to the deterministic baseline.
var (
	ErrInsufficientData = forecast.ErrInsufficientData
	ErrNotFound         = repositories.ErrNotFound
	ErrAlreadyResolved  = pricing.ErrAlreadyResolved
	ErrEmptyTranscript  = voice.ErrEmptyTranscript
)

// Deps carries the injected collaborators; every field with an interface
// type accepts an in-memory fake in tests.
type Deps struct {
	Orders    repositories.OrderRepository
	Menu      repositories.MenuItemRepository
	Forecasts repositories.ForecastRepository
	Pricing   repositories.PricingRepository
	ParseLog  repositories.ParseLogRepository
	Cache     cache.Cache
	Completer ai.Completer    // nil unless the AI overlay is configured
	Publisher voice.Publisher // nil unless Kafka is configured
}

// Engine is the decision engine's whole caller-facing surface. Transport,
// auth and request parsing live with the caller.
type Engine struct {
	cfg        *models.Config
	aggregator *aggregate.Aggregator
	forecaster *forecast.Forecaster
	pricer     *pricing.Engine
	insights   *insights.Generator
	voice      *voice.Parser
}

func New(cfg *models.Config, deps Deps) *Engine {
	aggregator := aggregate.New(deps.Orders, deps.Menu)

	// the AI overlay is a construction-time capability: either the real
	// enhancers are wired, or the Null ones are, and nothing downstream
	// checks a flag again
	var forecastEnhancer forecast.Enhancer = forecast.NullEnhancer{}
	var pricingEnhancer pricing.Enhancer = pricing.NullEnhancer{}
	var insightsEnhancer insights.Enhancer = insights.NullEnhancer{}
	var orderParser voice.AIParser = voice.NullAIParser{}
	if cfg.AI.Enabled && deps.Completer != nil {
		forecastEnhancer = ai.NewForecastEnhancer(deps.Completer)
		pricingEnhancer = ai.NewPricingEnhancer(deps.Completer)
		insightsEnhancer = ai.NewInsightsEnhancer(deps.Completer)
		orderParser = ai.NewOrderParser(deps.Completer)
	}

	calendar := forecast.NewCalendar(cfg.Holidays)

	return &Engine{
		cfg:        cfg,
		aggregator: aggregator,
		forecaster: forecast.NewForecaster(cfg.Forecast, aggregator, deps.Forecasts, calendar, forecastEnhancer),
		pricer:     pricing.NewEngine(cfg.Pricing, aggregator, deps.Menu, deps.Pricing, pricingEnhancer),
		insights:   insights.NewGenerator(cfg.Insights, aggregator, deps.Cache, insightsEnhancer),
		voice:      voice.NewParser(cfg.Voice, deps.Menu, deps.ParseLog, orderParser, deps.Publisher),
	}
}

func (e *Engine) GetForecast(ctx context.Context, storeID string, outletID *string, daysAhead int) (*models.ForecastResult, error) {
	return e.forecaster.Forecast(ctx, storeID, outletID, daysAhead)
}

func (e *Engine) ReconcileForecast(ctx context.Context, storeID string, outletID *string, date time.Time) error {
	return e.forecaster.Reconcile(ctx, storeID, outletID, date)
}

func (e *Engine) GetPricingRecommendations(ctx context.Context, storeID string, outletID *string, itemIDs []string) ([]*models.PricingRecommendation, error) {
	return e.pricer.Recommend(ctx, storeID, outletID, itemIDs)
}

func (e *Engine) ApplyRecommendation(ctx context.Context, id string, approved bool, overridePrice *int64) (*models.PricingRecommendation, error) {
	return e.pricer.Apply(ctx, id, approved, overridePrice)
}

// InsightsResponse reports whether the bundle came out of the cache.
type InsightsResponse struct {
	Insights *models.BusinessInsights `json:"insights"`
	Cached   bool                     `json:"cached"`
}

func (e *Engine) GetInsights(ctx context.Context, storeID string, outletID *string, period string, forceRefresh bool) (*InsightsResponse, error) {
	result, cached, err := e.insights.Get(ctx, storeID, outletID, period, forceRefresh)
	if err != nil {
		return nil, err
	}
	return &InsightsResponse{Insights: result, Cached: cached}, nil
}

func (e *Engine) ParseVoiceOrder(ctx context.Context, storeID string, outletID *string, transcript string) (*models.VoiceParseResult, error) {
	return e.voice.Parse(ctx, storeID, outletID, transcript)
}

// Describe turns an engine failure into the human-readable guidance callers
// surface to end users.
func Describe(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientData):
		return "Not enough sales history yet. Keep recording orders for at least 3 days and try again."
	case errors.Is(err, ErrNotFound):
		return "The requested record does not exist."
	case errors.Is(err, ErrAlreadyResolved):
		return "This recommendation was already applied or rejected and cannot be changed again."
	case errors.Is(err, ErrEmptyTranscript):
		return "The transcript was empty. Record the order again."
	case errors.Is(err, voice.ErrEmptyMenu), errors.Is(err, pricing.ErrEmptyMenu):
		return "No menu items found for this outlet. Add menu items first."
	case errors.Is(err, insights.ErrUnknownPeriod):
		return "Unknown period. Use daily, weekly or monthly."
	case err != nil:
		return "Something went wrong. Try again in a moment."
	}
	return ""
}
