package models

import "time"

const (
	ParsePathAI      = "ai"
	ParsePathPattern = "pattern"
)

type ParsedOrderItem struct {
	ItemID           string   `json:"item_id"`
	Name             string   `json:"name"`
	Quantity         int      `json:"quantity"` // >= 1
	UnitPrice        int64    `json:"unit_price"`
	Subtotal         int64    `json:"subtotal"`
	Confidence       float64  `json:"confidence"` // [0, 1]
	OriginalTextSpan string   `json:"original_text_span"`
	Variants         []string `json:"variants,omitempty"`
	Notes            string   `json:"notes,omitempty"`
}

type VoiceParseResult struct {
	Items             []ParsedOrderItem `json:"items"`
	Unrecognized      []string          `json:"unrecognized"`
	Total             int64             `json:"total"`
	OverallConfidence float64           `json:"overall_confidence"` // [0, 1]
	Suggestions       []string          `json:"suggestions,omitempty"`
	Path              string            `json:"path"` // "ai" or "pattern"
}

// VoiceParseLog rows are append-only; they are never updated after insert and
// feed later parse-quality reporting.
type VoiceParseLog struct {
	ID         string            `json:"id"`
	StoreID    string            `json:"store_id"`
	OutletID   *string           `json:"outlet_id,omitempty"`
	Transcript string            `json:"transcript"`
	Result     *VoiceParseResult `json:"result,omitempty"`
	Confidence float64           `json:"confidence"`
	Path       string            `json:"path"`
	Succeeded  bool              `json:"succeeded"`
	CreatedAt  time.Time         `json:"created_at"`
}
