package models

// Shapes exchanged with the AI overlay. Every numeric field coming back from
// the model is advisory; authoritative values (prices above all) are always
// re-derived from store records before anything is returned to a caller.

// ForecastAdjustment is merged into a deterministic forecast by exact date
// match ("2006-01-02"); unknown dates are dropped.
type ForecastAdjustment struct {
	Date                 string   `json:"date" mapstructure:"date"`
	AdditionalFactors    []string `json:"additional_factors" mapstructure:"additional_factors"`
	ConfidenceAdjustment float64  `json:"confidence_adjustment" mapstructure:"confidence_adjustment"`
}

// PricingEnrichment is merged into a recommendation by exact item id match.
type PricingEnrichment struct {
	ItemID       string          `json:"item_id" mapstructure:"item_id"`
	Reasoning    string          `json:"reasoning" mapstructure:"reasoning"`
	ExtraFactors []PricingFactor `json:"extra_factors" mapstructure:"extra_factors"`
}

// InsightsEnrichment fully replaces the deterministic summary, highlights and
// recommendations when present; it is never merged field-by-field.
type InsightsEnrichment struct {
	Summary         string             `json:"summary" mapstructure:"summary"`
	Highlights      []InsightHighlight `json:"highlights" mapstructure:"highlights"`
	Recommendations []string           `json:"recommendations" mapstructure:"recommendations"`
}

type AIParsedItem struct {
	ItemID     string   `json:"item_id" mapstructure:"item_id"`
	Quantity   int      `json:"quantity" mapstructure:"quantity"`
	Confidence float64  `json:"confidence" mapstructure:"confidence"`
	TextSpan   string   `json:"text_span" mapstructure:"text_span"`
	Variants   []string `json:"variants" mapstructure:"variants"`
	Notes      string   `json:"notes" mapstructure:"notes"`
}

type AIParsedOrder struct {
	Items        []AIParsedItem `json:"items" mapstructure:"items"`
	Unrecognized []string       `json:"unrecognized" mapstructure:"unrecognized"`
	Suggestions  []string       `json:"suggestions" mapstructure:"suggestions"`
}
