package models

import "time"

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

type InsightHighlight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        string `json:"kind"` // "positive", "warning", "neutral"
}

type InsightPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"`
}

type BusinessInsights struct {
	Summary         string              `json:"summary"`
	Highlights      []InsightHighlight  `json:"highlights"`
	Metrics         PeriodComparison    `json:"metrics"`
	TopItems        []MenuItemAggregate `json:"top_items"`
	LowItems        []MenuItemAggregate `json:"low_items"`
	PeakHours       []HourlyAggregate   `json:"peak_hours"`
	Recommendations []string            `json:"recommendations"`
	Period          InsightPeriod       `json:"period"`
	GeneratedAt     time.Time           `json:"generated_at"`
}
