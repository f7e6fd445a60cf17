package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/warungops/warungops/internal/models"
)

// The LLM-backed enhancer implementations. Each consumer package declares
// the interface it needs and owns a Null implementation; wiring one of these
// in is a construction-time decision driven by config.

type ForecastEnhancer struct {
	completer Completer
}

func NewForecastEnhancer(completer Completer) *ForecastEnhancer {
	return &ForecastEnhancer{completer: completer}
}

func (e *ForecastEnhancer) Enhance(ctx context.Context, patterns models.SalesPatterns, forecasts []models.DayForecast) ([]models.ForecastAdjustment, error) {
	summary := map[string]any{
		"popular_days":     patterns.PopularDays,
		"slow_days":        patterns.SlowDays,
		"weekly_trend":     patterns.WeeklyTrend,
		"data_consistency": patterns.DataConsistency,
		"forecasts":        forecasts,
	}
	user, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	system := "You are a restaurant demand analyst. Given a deterministic sales forecast and its " +
		"underlying patterns, reply with a JSON array of objects " +
		`{"date":"YYYY-MM-DD","additional_factors":[...],"confidence_adjustment":-0.1..0.1}` +
		" covering only dates where you have something qualitative to add."

	completion, err := e.completer.Complete(ctx, system, string(user))
	if err != nil {
		return nil, err
	}

	var adjustments []models.ForecastAdjustment
	if err := decodeLoose(completion.Data, &adjustments); err != nil {
		return nil, err
	}
	return adjustments, nil
}

type PricingEnhancer struct {
	completer Completer
}

func NewPricingEnhancer(completer Completer) *PricingEnhancer {
	return &PricingEnhancer{completer: completer}
}

func (e *PricingEnhancer) Enrich(ctx context.Context, recs []*models.PricingRecommendation) ([]models.PricingEnrichment, error) {
	user, err := json.Marshal(recs)
	if err != nil {
		return nil, err
	}

	system := "You are a restaurant pricing consultant. For each recommendation, reply with a JSON array of " +
		`{"item_id":"...","reasoning":"...","extra_factors":[{"factor":"...","weight":0.1,"direction":"up|down|neutral","description":"..."}]}` +
		". Keep reasoning under two sentences. Do not change any price."

	completion, err := e.completer.Complete(ctx, system, string(user))
	if err != nil {
		return nil, err
	}

	var enrichments []models.PricingEnrichment
	if err := decodeLoose(completion.Data, &enrichments); err != nil {
		return nil, err
	}
	return enrichments, nil
}

type InsightsEnhancer struct {
	completer Completer
}

func NewInsightsEnhancer(completer Completer) *InsightsEnhancer {
	return &InsightsEnhancer{completer: completer}
}

func (e *InsightsEnhancer) Generate(ctx context.Context, insights *models.BusinessInsights) (*models.InsightsEnrichment, error) {
	user, err := json.Marshal(insights)
	if err != nil {
		return nil, err
	}

	system := "You are a small-restaurant business advisor. Given period metrics, top and low sellers and peak " +
		"hours, reply with a JSON object " +
		`{"summary":"...","highlights":[{"title":"...","description":"...","kind":"positive|warning|neutral"}],"recommendations":["..."]}` +
		". Write for a busy owner: concrete, short, no filler."

	completion, err := e.completer.Complete(ctx, system, string(user))
	if err != nil {
		return nil, err
	}

	var enrichment models.InsightsEnrichment
	if err := decodeLoose(completion.Data, &enrichment); err != nil {
		return nil, err
	}
	if enrichment.Summary == "" {
		return nil, fmt.Errorf("insights enrichment missing summary")
	}
	return &enrichment, nil
}

// maxTranscriptWords bounds the transcript sent to the model; dictations run
// long when the mic stays open between orders.
const maxTranscriptWords = 120

type OrderParser struct {
	completer Completer
}

func NewOrderParser(completer Completer) *OrderParser {
	return &OrderParser{completer: completer}
}

func (p *OrderParser) Parse(ctx context.Context, transcript string, menu []*models.MenuItem) (*models.AIParsedOrder, error) {
	type catalogEntry struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Price    int64    `json:"price"`
		Variants []string `json:"variants,omitempty"`
	}
	catalog := make([]catalogEntry, 0, len(menu))
	for _, item := range menu {
		catalog = append(catalog, catalogEntry{ID: item.ID, Name: item.Name, Price: item.Price, Variants: item.Variants})
	}
	user, err := json.Marshal(map[string]any{
		"transcript": TruncateTranscript(transcript, maxTranscriptWords),
		"menu":       catalog,
	})
	if err != nil {
		return nil, err
	}

	system := "You convert spoken restaurant orders (often Indonesian) into structured items. Match the " +
		"transcript against the menu and reply with a JSON object " +
		`{"items":[{"item_id":"...","quantity":1,"confidence":0.0-1.0,"text_span":"...","variants":[],"notes":""}],` +
		`"unrecognized":["..."],"suggestions":["..."]}` +
		". Only use item_id values from the menu. Put spans you cannot match into unrecognized."

	completion, err := p.completer.Complete(ctx, system, string(user))
	if err != nil {
		return nil, err
	}

	var parsed models.AIParsedOrder
	if err := decodeLoose(completion.Data, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Items) == 0 && len(parsed.Unrecognized) == 0 {
		return nil, fmt.Errorf("ai parse produced no items")
	}
	return &parsed, nil
}

// decodeLoose tolerates the shapes LLMs actually return: numbers as strings,
// ints as floats, missing fields.
func decodeLoose(data json.RawMessage, out any) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode ai payload: %w", err)
	}
	return nil
}

// TruncateTranscript bounds prompt size for very long dictations.
func TruncateTranscript(transcript string, maxWords int) string {
	words := strings.Fields(transcript)
	if len(words) <= maxWords {
		return transcript
	}
	return strings.Join(words[:maxWords], " ")
}
