package forecast

import (
	"math"
	"time"

	"github.com/warungops/warungops/internal/models"
)

const (
	popularThreshold = 1.2 // day-of-week mean >20% above overall
	slowThreshold    = 0.8 // day-of-week mean >20% below overall
)

// ExtractPatterns reduces a daily series into the per-day-of-week baselines,
// the weekly trend and the consistency coefficient the forecaster projects
// from. The input is expected sorted by date ascending.
func ExtractPatterns(daily []models.DailyAggregate) models.SalesPatterns {
	patterns := models.SalesPatterns{}
	if len(daily) == 0 {
		return patterns
	}

	var totalOrders float64
	var totalRevenue float64
	var dowOrders, dowRevenue [7]float64
	for _, day := range daily {
		dow := int(day.Date.Weekday())
		dowOrders[dow] += float64(day.OrderCount)
		dowRevenue[dow] += float64(day.Revenue)
		patterns.DayOfWeekSamples[dow]++
		totalOrders += float64(day.OrderCount)
		totalRevenue += float64(day.Revenue)
	}

	overallOrders := totalOrders / float64(len(daily))
	overallRevenue := totalRevenue / float64(len(daily))
	patterns.OverallAvgOrders = overallOrders

	for dow := 0; dow < 7; dow++ {
		samples := patterns.DayOfWeekSamples[dow]
		if samples == 0 {
			// a day-of-week with no samples falls back to the overall
			// mean so every weekday always has a usable baseline
			patterns.DayOfWeekOrders[dow] = overallOrders
			patterns.DayOfWeekRevenue[dow] = int64(overallRevenue)
			continue
		}
		meanOrders := dowOrders[dow] / float64(samples)
		patterns.DayOfWeekOrders[dow] = meanOrders
		patterns.DayOfWeekRevenue[dow] = int64(dowRevenue[dow] / float64(samples))

		name := time.Weekday(dow).String()
		switch {
		case overallOrders > 0 && meanOrders > overallOrders*popularThreshold:
			patterns.PopularDays = append(patterns.PopularDays, name)
		case overallOrders > 0 && meanOrders < overallOrders*slowThreshold:
			patterns.SlowDays = append(patterns.SlowDays, name)
		}
	}

	patterns.WeeklyTrend = weeklyTrend(daily)
	patterns.DataConsistency = consistency(daily)
	return patterns
}

// weeklyTrend compares the mean revenue of the most recent 7 days against
// the 7 days before them; under 14 days of data there is no trend.
func weeklyTrend(daily []models.DailyAggregate) float64 {
	if len(daily) < 14 {
		return 0
	}
	recent := daily[len(daily)-7:]
	prior := daily[len(daily)-14 : len(daily)-7]

	var recentMean, priorMean float64
	for _, day := range recent {
		recentMean += float64(day.Revenue)
	}
	for _, day := range prior {
		priorMean += float64(day.Revenue)
	}
	recentMean /= 7
	priorMean /= 7
	if priorMean == 0 {
		return 0
	}
	return (recentMean - priorMean) / priorMean
}

// consistency is max(0, 1 − stddev/mean) over daily revenue: 1 for a
// perfectly steady store, 0 for chaotic or empty data.
func consistency(daily []models.DailyAggregate) float64 {
	if len(daily) == 0 {
		return 0
	}
	var mean float64
	for _, day := range daily {
		mean += float64(day.Revenue)
	}
	mean /= float64(len(daily))
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, day := range daily {
		diff := float64(day.Revenue) - mean
		variance += diff * diff
	}
	variance /= float64(len(daily))

	return math.Max(0, 1-math.Sqrt(variance)/mean)
}
