package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warungops/warungops/internal/models"
)

// 2026-08-03 is a Monday.
func daily(yyyymmdd string, orders int, revenue int64) models.DailyAggregate {
	date, _ := time.Parse("2006-01-02", yyyymmdd)
	return models.DailyAggregate{Date: date, OrderCount: orders, Revenue: revenue}
}

func TestExtractPatternsEmpty(t *testing.T) {
	patterns := ExtractPatterns(nil)
	assert.Zero(t, patterns.OverallAvgOrders)
	assert.Zero(t, patterns.DataConsistency)
	assert.Empty(t, patterns.PopularDays)
}

func TestExtractPatternsMissingWeekdayFallsBackToOverallMean(t *testing.T) {
	// Monday through Wednesday only; Saturday has no samples.
	series := []models.DailyAggregate{
		daily("2026-08-03", 10, 100000),
		daily("2026-08-04", 20, 200000),
		daily("2026-08-05", 30, 300000),
	}
	patterns := ExtractPatterns(series)

	assert.InDelta(t, 20, patterns.OverallAvgOrders, 0.001)
	saturday := int(time.Saturday)
	assert.Zero(t, patterns.DayOfWeekSamples[saturday])
	assert.InDelta(t, 20, patterns.DayOfWeekOrders[saturday], 0.001)
	assert.Equal(t, int64(200000), patterns.DayOfWeekRevenue[saturday])
}

func TestExtractPatternsPopularAndSlowDays(t *testing.T) {
	// Saturdays sell double the weekday volume, Mondays half.
	var series []models.DailyAggregate
	for week := 0; week < 3; week++ {
		base := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, week*7)
		series = append(series,
			models.DailyAggregate{Date: base, OrderCount: 5, Revenue: 50000},                    // Monday
			models.DailyAggregate{Date: base.AddDate(0, 0, 2), OrderCount: 10, Revenue: 100000}, // Wednesday
			models.DailyAggregate{Date: base.AddDate(0, 0, 5), OrderCount: 20, Revenue: 200000}, // Saturday
		)
	}
	patterns := ExtractPatterns(series)

	assert.Contains(t, patterns.PopularDays, "Saturday")
	assert.Contains(t, patterns.SlowDays, "Monday")
	assert.NotContains(t, patterns.PopularDays, "Wednesday")
	assert.NotContains(t, patterns.SlowDays, "Wednesday")
}

func TestWeeklyTrendNeedsTwoWeeks(t *testing.T) {
	var series []models.DailyAggregate
	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		series = append(series, models.DailyAggregate{Date: start.AddDate(0, 0, i), OrderCount: 10, Revenue: 100000})
	}
	assert.Zero(t, ExtractPatterns(series).WeeklyTrend)
}

func TestWeeklyTrendUpward(t *testing.T) {
	var series []models.DailyAggregate
	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		series = append(series, models.DailyAggregate{Date: start.AddDate(0, 0, i), OrderCount: 10, Revenue: 100000})
	}
	for i := 7; i < 14; i++ {
		series = append(series, models.DailyAggregate{Date: start.AddDate(0, 0, i), OrderCount: 10, Revenue: 110000})
	}
	assert.InDelta(t, 0.1, ExtractPatterns(series).WeeklyTrend, 0.001)
}

func TestConsistencySteadyStoreIsOne(t *testing.T) {
	var series []models.DailyAggregate
	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		series = append(series, models.DailyAggregate{Date: start.AddDate(0, 0, i), OrderCount: 10, Revenue: 100000})
	}
	assert.InDelta(t, 1.0, ExtractPatterns(series).DataConsistency, 0.001)
}

func TestConsistencyNeverNegative(t *testing.T) {
	series := []models.DailyAggregate{
		daily("2026-08-03", 1, 1000),
		daily("2026-08-04", 1, 1000000),
	}
	patterns := ExtractPatterns(series)
	assert.GreaterOrEqual(t, patterns.DataConsistency, 0.0)
}
